package stats

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/masmgr/gitdrill/internal/git"
)

func modify(path, diff string) git.Modification {
	return git.Modification{OldPath: path, NewPath: path, ChangeType: git.ModificationModify, Diff: diff}
}

func TestCalculate(t *testing.T) {
	mods := []git.Modification{
		modify("src/app/main.go", "@@ -1,2 +1,3 @@\n a\n-b\n+B\n+C\n"),
		modify("src/lib/util.go", "@@ -1 +1 @@\n-x\n+y\n"),
		modify("docs/README.md", "@@ -0,0 +1 @@\n+hello\n"),
		modify("Makefile", "@@ -1 +0,0 @@\n-all:\n"),
	}

	s := Calculate(mods)

	if s.Files != 4 {
		t.Errorf("Files = %d, want 4", s.Files)
	}
	if s.Directories != 3 {
		t.Errorf("Directories = %d, want 3", s.Directories)
	}
	if s.Subsystems != 2 {
		t.Errorf("Subsystems = %d, want 2", s.Subsystems)
	}
	if s.LinesAdded != 4 || s.LinesDeleted != 3 {
		t.Errorf("lines = +%d -%d, want +4 -3", s.LinesAdded, s.LinesDeleted)
	}
	if s.Churn() != 7 {
		t.Errorf("Churn = %d, want 7", s.Churn())
	}
	if s.ChangeEntropy <= 0 || s.ChangeEntropy > 1 {
		t.Errorf("ChangeEntropy = %f, want in (0,1]", s.ChangeEntropy)
	}
}

func TestCalculate_RootFilesHaveOneSubsystem(t *testing.T) {
	s := Calculate([]git.Modification{modify("main.go", "")})
	if s.Directories != 0 || s.Subsystems != 1 {
		t.Errorf("Directories = %d, Subsystems = %d; want 0, 1", s.Directories, s.Subsystems)
	}
}

func TestCalculate_DirectoriesCaseInsensitive(t *testing.T) {
	s := Calculate([]git.Modification{modify("Src/a.go", ""), modify("src/b.go", "")})
	if s.Directories != 1 || s.Subsystems != 1 {
		t.Errorf("Directories = %d, Subsystems = %d; want 1, 1", s.Directories, s.Subsystems)
	}
}

func TestEntropy(t *testing.T) {
	tests := []struct {
		name   string
		churns []int
		want   float64
	}{
		{name: "none", churns: nil, want: 0},
		{name: "single", churns: []int{10}, want: 0},
		{name: "all zero", churns: []int{0, 0}, want: 1},
		{name: "uniform", churns: []int{5, 5, 5, 5}, want: 1},
		{name: "concentrated", churns: []int{10, 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Entropy(tt.churns); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Entropy(%v) = %f, want %f", tt.churns, got, tt.want)
			}
		})
	}
}

func TestRapidEntropy_Bounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		churns := rapid.SliceOfN(rapid.IntRange(0, 1000), 0, 50).Draw(t, "churns")
		got := Entropy(churns)
		if got < 0 || got > 1 {
			t.Fatalf("Entropy(%v) = %f, expected in [0,1]", churns, got)
		}
	})
}

func TestRapidEntropy_UniformMaximal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 20).Draw(t, "n")
		churn := rapid.IntRange(1, 500).Draw(t, "churn")

		churns := make([]int, n)
		for i := range churns {
			churns[i] = churn
		}
		if got := Entropy(churns); math.Abs(got-1) > 1e-9 {
			t.Fatalf("uniform entropy = %f, expected 1", got)
		}
	})
}
