package loc

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestIsCommentOrBlank(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"", true},
		{"#", true},
		{"# comment", true},
		{"//", true},
		{"// todo", true},
		{"/* block", true},
		{"* continuation", true},
		{"'''", true},
		{`"""docstring`, true},
		{"x = 1", false},
		{"return a // trailing", false},
		{"a*b", false},
	}

	for _, tt := range tests {
		if got := IsCommentOrBlank(tt.line); got != tt.want {
			t.Errorf("IsCommentOrBlank(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		if got := Lines(tt.src); got != tt.want {
			t.Errorf("Lines(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	src := "package main\n\n// comment\nfunc main() {\n\t# not go but a comment marker\n}\n"
	if got := Count(src); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}
}

func TestRapidCount_NeverExceedsLines(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOf(rapid.SampledFrom([]string{"x := 1", "", "  ", "// c", "# c", "return"})).Draw(t, "lines")
		src := strings.Join(lines, "\n")
		if c, l := Count(src), Lines(src); c > l {
			t.Fatalf("Count = %d exceeds Lines = %d for %q", c, l, src)
		}
	})
}
