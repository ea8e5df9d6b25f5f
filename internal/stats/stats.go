// Package stats computes per-commit change statistics.
package stats

import (
	"math"
	"strings"

	"github.com/masmgr/gitdrill/internal/git"
)

// CommitStats describes how widely and how heavily a commit changes the tree.
type CommitStats struct {
	Files         int
	Directories   int
	Subsystems    int // distinct top-level directories, at least 1
	LinesAdded    int
	LinesDeleted  int
	ChangeEntropy float64
}

// Churn returns lines added plus lines deleted.
func (s CommitStats) Churn() int {
	return s.LinesAdded + s.LinesDeleted
}

// Calculate derives the statistics of a set of modifications.
func Calculate(mods []git.Modification) CommitStats {
	dirs := make(map[string]struct{})
	subsystems := make(map[string]struct{})
	churns := make([]int, 0, len(mods))

	var s CommitStats
	s.Files = len(mods)
	for _, m := range mods {
		added, removed := m.Added(), m.Removed()
		s.LinesAdded += added
		s.LinesDeleted += removed
		churns = append(churns, added+removed)

		dir, sub := splitPath(m.Path())
		if dir != "" {
			dirs[strings.ToLower(dir)] = struct{}{}
		}
		if sub != "" {
			subsystems[strings.ToLower(sub)] = struct{}{}
		}
	}

	s.Directories = len(dirs)
	s.Subsystems = max(len(subsystems), 1)
	s.ChangeEntropy = Entropy(churns)
	return s
}

// Entropy returns the Shannon entropy of the churn distribution normalized
// to [0, 1]. A single file scores 0; files with no churn at all score 1.
func Entropy(churns []int) float64 {
	if len(churns) <= 1 {
		return 0
	}

	total := 0
	for _, c := range churns {
		total += c
	}
	if total == 0 {
		return 1
	}

	h := 0.0
	for _, c := range churns {
		if c > 0 {
			p := float64(c) / float64(total)
			h -= p * math.Log2(p)
		}
	}

	normalized := h / math.Log2(float64(len(churns)))
	return math.Min(math.Max(normalized, 0), 1)
}

// splitPath returns the directory of path and its first component.
// Files at the repository root have neither.
func splitPath(path string) (dir, subsystem string) {
	path = strings.ReplaceAll(path, "\\", "/")
	last := strings.LastIndex(path, "/")
	if last <= 0 {
		return "", ""
	}
	dir = path[:last]
	subsystem, _, _ = strings.Cut(path, "/")
	return dir, subsystem
}
