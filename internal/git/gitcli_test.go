package git

import "testing"

func TestParseGitVersion(t *testing.T) {
	tests := []struct {
		in           string
		major, minor int
		ok           bool
	}{
		{in: "git version 2.39.2\n", major: 2, minor: 39, ok: true},
		{in: "git version 2.23.0.windows.1", major: 2, minor: 23, ok: true},
		{in: "git version 1.8.3.1", major: 1, minor: 8, ok: true},
		{in: "hub version 2.14", ok: false},
		{in: "git version x.y", ok: false},
		{in: "", ok: false},
	}
	for _, tt := range tests {
		major, minor, ok := parseGitVersion(tt.in)
		if ok != tt.ok || major != tt.major || minor != tt.minor {
			t.Errorf("parseGitVersion(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tt.in, major, minor, ok, tt.major, tt.minor, tt.ok)
		}
	}
}

func TestParseBlameOutput(t *testing.T) {
	out := "" +
		"1111111111111111111111111111111111111111 (alice 2023-03-01 10:00:00 +0000 1) def f():\n" +
		"^222222222222222222222222222222222222222 (bob   2023-03-01 11:00:00 +0000 2)     return 1\n" +
		"3333333333333333333333333333333333333333 (carol 2023-03-01 12:00:00 +0000 3) \n"

	lines, err := parseBlameOutput([]byte(out))
	if err != nil {
		t.Fatalf("parseBlameOutput: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("lines = %d, expected 3", len(lines))
	}
	if lines[0].Commit != "1111111111111111111111111111111111111111" || lines[0].Text != "def f():" {
		t.Errorf("line 1 = %+v", lines[0])
	}
	if lines[1].Commit != "222222222222222222222222222222222222222" || lines[1].Text != "    return 1" {
		t.Errorf("line 2 = %+v", lines[1])
	}
	if lines[2].Text != "" {
		t.Errorf("line 3 text = %q, expected empty", lines[2].Text)
	}
}

func TestParseBlameOutput_Empty(t *testing.T) {
	lines, err := parseBlameOutput(nil)
	if err != nil {
		t.Fatalf("parseBlameOutput: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("lines = %d, expected 0", len(lines))
	}
}

func TestParseBlameOutput_Malformed(t *testing.T) {
	if _, err := parseBlameOutput([]byte("garbage\n")); err == nil {
		t.Error("expected error for malformed blame output")
	}
}
