package git

import (
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/masmgr/gitdrill/internal/loc"
)

// Developer identifies a commit author or committer.
type Developer struct {
	Name  string
	Email string
}

// ModificationType represents the kind of change applied to a file.
type ModificationType int

const (
	ModificationUnknown ModificationType = iota
	ModificationAdd
	ModificationCopy
	ModificationRename
	ModificationDelete
	ModificationModify
)

// String returns a string representation of the modification type.
func (t ModificationType) String() string {
	switch t {
	case ModificationAdd:
		return "ADD"
	case ModificationCopy:
		return "COPY"
	case ModificationRename:
		return "RENAME"
	case ModificationDelete:
		return "DELETE"
	case ModificationModify:
		return "MODIFY"
	default:
		return "UNKNOWN"
	}
}

// Modification represents one file's change within a commit.
type Modification struct {
	OldPath    string // Empty for added files
	NewPath    string // Empty for deleted files
	ChangeType ModificationType
	// Diff is the unified diff of the file, starting at its first hunk header.
	Diff             string
	SourceCode       string
	SourceCodeBefore string
}

// Path returns the path of the file after the change, or before it for deletions.
func (m Modification) Path() string {
	if m.NewPath != "" {
		return m.NewPath
	}
	return m.OldPath
}

// Filename returns the base name of the modified file.
func (m Modification) Filename() string {
	return path.Base(strings.ReplaceAll(m.Path(), "\\", "/"))
}

// Added returns the number of lines added by the diff.
func (m Modification) Added() int {
	return countDiffLines(m.Diff, '+')
}

// Removed returns the number of lines removed by the diff.
func (m Modification) Removed() int {
	return countDiffLines(m.Diff, '-')
}

// NLOC returns the lines of code of the file after the change.
func (m Modification) NLOC() int {
	return loc.Count(m.SourceCode)
}

func countDiffLines(diff string, marker byte) int {
	header := strings.Repeat(string(marker), 3)
	n := 0
	for _, line := range strings.Split(strings.ReplaceAll(diff, "\r", ""), "\n") {
		if len(line) > 0 && line[0] == marker && !strings.HasPrefix(line, header) {
			n++
		}
	}
	return n
}

// ModificationLoader produces the modifications of a commit on demand.
type ModificationLoader func() ([]Modification, error)

// StaticModifications returns a loader yielding the given modifications.
func StaticModifications(mods ...Modification) ModificationLoader {
	return func() ([]Modification, error) {
		return mods, nil
	}
}

// Commit is a read-only snapshot of a Git commit.
type Commit struct {
	Hash          string
	Msg           string
	Author        Developer
	Committer     Developer
	AuthorDate    time.Time
	CommitterDate time.Time
	// Timezone offsets in seconds west of UTC, as git reports them.
	AuthorTimezone    int
	CommitterTimezone int
	Parents           []string
	ProjectName       string

	mods       *lazyModifications
	branches   func() ([]string, error)
	mainBranch string
}

type lazyModifications struct {
	once sync.Once
	load ModificationLoader
	mods []Modification
	err  error
}

// NewCommit returns a commit whose modifications are produced by load the
// first time they are requested.
func NewCommit(c Commit, load ModificationLoader) *Commit {
	c.mods = &lazyModifications{load: load}
	return &c
}

// Merge reports whether the commit has more than one parent.
func (c *Commit) Merge() bool {
	return len(c.Parents) > 1
}

// Modifications returns the files changed by the commit.
func (c *Commit) Modifications() ([]Modification, error) {
	if c.mods == nil || c.mods.load == nil {
		return nil, nil
	}
	c.mods.once.Do(func() {
		c.mods.mods, c.mods.err = c.mods.load()
	})
	return c.mods.mods, c.mods.err
}

// Branches returns the local branches whose history contains the commit.
// Commits built outside a repository report none.
func (c *Commit) Branches() ([]string, error) {
	if c.branches == nil {
		return nil, nil
	}
	return c.branches()
}

// InMainBranch reports whether the branch checked out when the repository
// was opened contains the commit.
func (c *Commit) InMainBranch() (bool, error) {
	if c.mainBranch == "" {
		return false, nil
	}
	branches, err := c.Branches()
	if err != nil {
		return false, err
	}
	return slices.Contains(branches, c.mainBranch), nil
}

// Subject returns the first line of the commit message.
func (c *Commit) Subject() string {
	if idx := strings.IndexAny(c.Msg, "\r\n"); idx != -1 {
		return c.Msg[:idx]
	}
	return c.Msg
}

// timezoneOffset converts a time's zone to seconds west of UTC.
func timezoneOffset(t time.Time) int {
	_, offset := t.Zone()
	return -offset
}
