// Package bugfix classifies commits as bug fixes from their messages.
package bugfix

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/masmgr/gitdrill/internal/git"
)

// DefaultPatterns match the usual bug-fix vocabulary in commit messages.
var DefaultPatterns = []string{
	`\bfix(e[sd])?\b`,
	`\bbug(s|fix)?\b`,
	`\bhotfix\b`,
	`\bpatch(ed)?\b`,
	`\bcloses? #\d+\b`,
}

// Detector matches commit messages against case-insensitive patterns.
// It also serves as a traversal filter keeping only bug-fix commits.
type Detector struct {
	patterns []*regexp.Regexp
}

// NewDetector compiles patterns; blank entries are ignored.
func NewDetector(patterns []string) (*Detector, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "(?i)") {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("bugfix pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &Detector{patterns: compiled}, nil
}

// IsBugfix reports whether message matches any pattern.
func (d *Detector) IsBugfix(message string) bool {
	for _, re := range d.patterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// Name identifies the detector in filter traces.
func (d *Detector) Name() string {
	return "bugfix"
}

// Keep reports whether c is a bug-fix commit.
func (d *Detector) Keep(c *git.Commit) (bool, error) {
	return d.IsBugfix(c.Msg), nil
}

// Summary aggregates bug-fix commits and the files they touched.
type Summary struct {
	// Commits lists bug-fix commit hashes in input order.
	Commits []string
	// FileCounts maps each surviving file path to the number of bug-fix
	// commits touching it. Deleted files are not counted.
	FileCounts map[string]int
}

// Summarize classifies commits and counts bug fixes per file.
func (d *Detector) Summarize(commits []*git.Commit) (*Summary, error) {
	s := &Summary{FileCounts: make(map[string]int)}
	if len(d.patterns) == 0 {
		return s, nil
	}

	for _, c := range commits {
		if !d.IsBugfix(c.Msg) {
			continue
		}
		s.Commits = append(s.Commits, c.Hash)

		mods, err := c.Modifications()
		if err != nil {
			return nil, fmt.Errorf("modifications of %s: %w", c.Hash, err)
		}
		for _, m := range mods {
			if m.ChangeType == git.ModificationDelete {
				continue
			}
			s.FileCounts[m.Path()]++
		}
	}
	return s, nil
}
