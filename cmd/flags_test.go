package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/masmgr/gitdrill/internal/bugfix"
	"github.com/masmgr/gitdrill/internal/git"
	"github.com/masmgr/gitdrill/internal/output"
)

func TestParseDateFlag(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		got, err := parseDateFlag("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.IsZero() {
			t.Fatalf("expected zero time, got %v", got)
		}
	})

	t.Run("ValidDate", func(t *testing.T) {
		got, err := parseDateFlag("2025-12-31")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("parseDateFlag(valid) = %v, want %v", got, want)
		}
	})

	t.Run("WithZone", func(t *testing.T) {
		got, err := parseDateFlag("2025-12-31T10:00:00+02:00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 12, 31, 8, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("parseDateFlag(zoned) = %v, want %v", got, want)
		}
	})

	t.Run("InvalidDate", func(t *testing.T) {
		if _, err := parseDateFlag("31-12-2025"); err == nil {
			t.Fatalf("expected error, got nil")
		}
	})
}

func TestGetOutputFormat(t *testing.T) {
	tests := []struct {
		input string
		want  output.OutputFormat
	}{
		{input: "json", want: output.FormatJSON},
		{input: "csv", want: output.FormatCSV},
		{input: "markdown", want: output.FormatMarkdown},
		{input: "md", want: output.FormatMarkdown},
		{input: "ci", want: output.FormatCI},
		{input: "ndjson", want: output.FormatCI},
		{input: "unknown", want: output.FormatConsole},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := getOutputFormat(tt.input); got != tt.want {
				t.Fatalf("getOutputFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIgnoreRevsPath(t *testing.T) {
	repo := t.TempDir()

	if got := ignoreRevsPath(repo, "", ""); got != "" {
		t.Fatalf("empty = %q, want empty", got)
	}

	abs := filepath.Join(t.TempDir(), "revs")
	if got := ignoreRevsPath(repo, abs, ".git-blame-ignore-revs"); got != abs {
		t.Fatalf("absolute = %q, want %q", got, abs)
	}

	want := filepath.Join(repo, ".git-blame-ignore-revs")
	if got := ignoreRevsPath(repo, "", ".git-blame-ignore-revs"); got != want {
		t.Fatalf("configured = %q, want %q", got, want)
	}

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.WriteFile("local-revs", []byte("\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if got := ignoreRevsPath(repo, "local-revs", ""); got != "local-revs" {
		t.Fatalf("existing relative = %q, want local-revs", got)
	}
}

func TestFindModification(t *testing.T) {
	commit := git.NewCommit(git.Commit{Hash: "abc"}, git.StaticModifications(
		git.Modification{NewPath: "a.go", ChangeType: git.ModificationAdd},
		git.Modification{OldPath: "old.go", NewPath: "new.go", ChangeType: git.ModificationRename},
	))

	mod, err := findModification(commit, "old.go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod.NewPath != "new.go" {
		t.Fatalf("matched %q, want new.go", mod.NewPath)
	}

	if _, err := findModification(commit, "missing.go"); !errors.Is(err, errFileNotModified) {
		t.Fatalf("missing file error = %v, want errFileNotModified", err)
	}
}

func TestBugfixSummaryOrdering(t *testing.T) {
	got := bugfixSummary(&bugfix.Summary{
		Commits:    []string{"a", "b", "c"},
		FileCounts: map[string]int{"z.go": 2, "a.go": 2, "m.go": 3, "b.go": 1},
	})
	if got.Commits != 3 {
		t.Fatalf("commits = %d, want 3", got.Commits)
	}
	want := []output.FileCount{{Path: "m.go", Count: 3}, {Path: "a.go", Count: 2}, {Path: "z.go", Count: 2}, {Path: "b.go", Count: 1}}
	if len(got.Files) != len(want) {
		t.Fatalf("files = %v, want %v", got.Files, want)
	}
	for i := range want {
		if got.Files[i] != want[i] {
			t.Fatalf("files = %v, want %v", got.Files, want)
		}
	}
}
