// Package mining streams the commits of one or more repositories through a
// configurable filter pipeline.
package mining

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrInvalidConfig is returned when filter options contradict each other.
	ErrInvalidConfig = errors.New("invalid mining configuration")
	// ErrResolve is returned when a commit or tag named by the options
	// cannot be found in a repository.
	ErrResolve = errors.New("cannot resolve mining bound")
)

// Options selects which commits a traversal yields.
// Zero values mean "unset".
type Options struct {
	// Single restricts the traversal to one commit hash.
	Single string

	Since      time.Time
	To         time.Time
	FromCommit string
	ToCommit   string
	FromTag    string
	ToTag      string

	// ReversedOrder yields newest commits first.
	ReversedOrder bool
	OnlyInBranch  string

	OnlyModificationsWithFileTypes []string
	OnlyNoMerge                    bool
	// OnlyAuthors matches author names, not emails.
	OnlyAuthors  []string
	OnlyCommits  []string
	OnlyReleases bool
	// Filepath keeps only commits that touched this file, following renames.
	Filepath string

	// Include and Exclude are doublestar globs matched against modification
	// paths.
	Include []string
	Exclude []string
}

// Validate checks that the options are consistent.
func (o Options) Validate() error {
	if o.Single != "" {
		if !o.Since.IsZero() || !o.To.IsZero() || o.FromCommit != "" || o.ToCommit != "" || o.FromTag != "" || o.ToTag != "" {
			return fmt.Errorf("%w: a single commit cannot be combined with other range filters", ErrInvalidConfig)
		}
	}

	if countSet(!o.Since.IsZero(), o.FromCommit != "", o.FromTag != "") > 1 {
		return fmt.Errorf("%w: only one of since, from commit and from tag may be set", ErrInvalidConfig)
	}
	if countSet(!o.To.IsZero(), o.ToCommit != "", o.ToTag != "") > 1 {
		return fmt.Errorf("%w: only one of to, to commit and to tag may be set", ErrInvalidConfig)
	}

	for _, p := range append(append([]string{}, o.Include...), o.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: bad glob pattern %q", ErrInvalidConfig, p)
		}
	}
	return nil
}

func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a date bound. Values without a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse date %q", ErrInvalidConfig, s)
}
