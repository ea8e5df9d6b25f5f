package cmd

import (
	"fmt"
	"sort"

	"github.com/masmgr/gitdrill/config"
	"github.com/masmgr/gitdrill/internal/bugfix"
	"github.com/masmgr/gitdrill/internal/output"
)

func newBugfixDetector(cfg *config.Config) (*bugfix.Detector, error) {
	detector, err := bugfix.NewDetector(cfg.Bugfix.Patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid bug pattern: %w", err)
	}
	return detector, nil
}

// bugfixSummary orders the per-file bug-fix counts for reporting.
func bugfixSummary(s *bugfix.Summary) *output.BugfixSummary {
	files := make([]output.FileCount, 0, len(s.FileCounts))
	for path, n := range s.FileCounts {
		files = append(files, output.FileCount{Path: path, Count: n})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Count != files[j].Count {
			return files[i].Count > files[j].Count
		}
		return files[i].Path < files[j].Path
	})
	return &output.BugfixSummary{Commits: len(s.Commits), Files: files}
}
