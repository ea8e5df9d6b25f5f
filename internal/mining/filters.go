package mining

import (
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/masmgr/gitdrill/internal/git"
)

// Filter decides whether a commit is yielded.
type Filter interface {
	Name() string
	Keep(c *git.Commit) (bool, error)
}

// Context holds the bounds and commit sets resolved for one repository.
type Context struct {
	Since time.Time
	To    time.Time
	// FileCommits is nil unless a file path filter is active.
	FileCommits map[string]struct{}
	// Tagged is nil unless only releases are requested.
	Tagged map[string]struct{}
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc struct {
	name string
	keep func(c *git.Commit) (bool, error)
}

// NewFilter returns a named Filter backed by keep.
func NewFilter(name string, keep func(c *git.Commit) (bool, error)) FilterFunc {
	return FilterFunc{name: name, keep: keep}
}

func (f FilterFunc) Name() string                     { return f.name }
func (f FilterFunc) Keep(c *git.Commit) (bool, error) { return f.keep(c) }

func pure(name string, keep func(c *git.Commit) bool) FilterFunc {
	return NewFilter(name, func(c *git.Commit) (bool, error) { return keep(c), nil })
}

// buildFilters returns the active filters in evaluation order.
func buildFilters(opts Options, rc *Context) []Filter {
	var fs []Filter

	if opts.Single != "" {
		fs = append(fs, pure("single", func(c *git.Commit) bool {
			return c.Hash == opts.Single
		}))
	}

	if !rc.Since.IsZero() || !rc.To.IsZero() {
		since, to := rc.Since.UTC(), rc.To.UTC()
		fs = append(fs, pure("date", func(c *git.Commit) bool {
			when := c.CommitterDate.UTC()
			if !rc.Since.IsZero() && when.Before(since) {
				return false
			}
			if !rc.To.IsZero() && when.After(to) {
				return false
			}
			return true
		}))
	}

	if len(opts.OnlyModificationsWithFileTypes) > 0 {
		fs = append(fs, NewFilter("file-type", func(c *git.Commit) (bool, error) {
			return anyModification(c, func(m git.Modification) bool {
				name := m.Filename()
				for _, suffix := range opts.OnlyModificationsWithFileTypes {
					if strings.HasSuffix(name, suffix) {
						return true
					}
				}
				return false
			})
		}))
	}

	if opts.OnlyNoMerge {
		fs = append(fs, pure("no-merge", func(c *git.Commit) bool {
			return !c.Merge()
		}))
	}

	if len(opts.OnlyAuthors) > 0 {
		fs = append(fs, pure("author", func(c *git.Commit) bool {
			return slices.Contains(opts.OnlyAuthors, c.Author.Name)
		}))
	}

	if len(opts.OnlyCommits) > 0 {
		fs = append(fs, pure("commit", func(c *git.Commit) bool {
			return slices.Contains(opts.OnlyCommits, c.Hash)
		}))
	}

	if rc.FileCommits != nil {
		fs = append(fs, pure("filepath", func(c *git.Commit) bool {
			_, ok := rc.FileCommits[c.Hash]
			return ok
		}))
	}

	if rc.Tagged != nil {
		fs = append(fs, pure("release", func(c *git.Commit) bool {
			_, ok := rc.Tagged[c.Hash]
			return ok
		}))
	}

	if len(opts.Include) > 0 || len(opts.Exclude) > 0 {
		fs = append(fs, NewFilter("glob", func(c *git.Commit) (bool, error) {
			return anyModification(c, func(m git.Modification) bool {
				return matchesGlobs(m.Path(), opts.Include, opts.Exclude)
			})
		}))
	}

	return fs
}

func anyModification(c *git.Commit, pred func(m git.Modification) bool) (bool, error) {
	mods, err := c.Modifications()
	if err != nil {
		return false, err
	}
	for _, m := range mods {
		if pred(m) {
			return true, nil
		}
	}
	return false, nil
}

// matchesGlobs checks a path against exclude patterns first, then include
// patterns. An empty include list accepts everything not excluded.
func matchesGlobs(path string, include, exclude []string) bool {
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
	}

	if len(include) == 0 {
		return true
	}
	for _, pattern := range include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
