package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// ErrNotFound is returned when a commit, tag or branch does not exist.
var ErrNotFound = errors.New("not found")

// Repository is a handle on a local Git repository.
// Working-tree operations (Checkout, Reset, Files) are serialized by an
// internal lock; history reads never take it.
type Repository struct {
	path       string
	repo       *gogit.Repository
	mainBranch string

	mu sync.Mutex

	goBlame   *GoGitBlame
	cliBlame  *CLIBlame
	probeOnce sync.Once
	git       gitProbe
}

// Open opens the repository at path.
func Open(path string) (*Repository, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	r := &Repository{
		path:     abs,
		repo:     repo,
		goBlame:  &GoGitBlame{repo: repo},
		cliBlame: NewCLIBlame(abs),
	}
	r.mainBranch = discoverMainBranch(repo)
	return r, nil
}

// discoverMainBranch returns the short name of the branch HEAD points to, or
// an empty string for a detached or unborn HEAD.
func discoverMainBranch(repo *gogit.Repository) string {
	head, err := repo.Head()
	if err != nil || !head.Name().IsBranch() {
		return ""
	}
	return head.Name().Short()
}

// Path returns the absolute path of the repository.
func (r *Repository) Path() string {
	return r.path
}

// ProjectName returns the name of the repository directory.
func (r *Repository) ProjectName() string {
	return filepath.Base(r.path)
}

// MainBranch returns the branch checked out when the repository was opened.
func (r *Repository) MainBranch() string {
	return r.mainBranch
}

// Head returns the commit HEAD points to.
func (r *Repository) Head() (*Commit, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return nil, err
	}
	c, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, err
	}
	return r.newCommit(c), nil
}

// ResolveCommit returns the commit identified by id (full or abbreviated
// hash, or any revision expression go-git understands).
func (r *Repository) ResolveCommit(id string) (*Commit, error) {
	h, err := r.resolveRevision(id)
	if err != nil {
		return nil, err
	}
	c, err := r.repo.CommitObject(*h)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("commit %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("commit %s: %w", id, err)
	}
	return r.newCommit(c), nil
}

// ResolveTag returns the commit the named tag refers to.
func (r *Repository) ResolveTag(name string) (*Commit, error) {
	ref, err := r.repo.Tag(name)
	if err != nil {
		if errors.Is(err, gogit.ErrTagNotFound) {
			return nil, fmt.Errorf("tag %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("tag %s: %w", name, err)
	}
	c, err := r.tagCommit(ref)
	if err != nil {
		return nil, fmt.Errorf("tag %s: %w", name, err)
	}
	return r.newCommit(c), nil
}

// tagCommit peels a tag reference, annotated or lightweight, to its commit.
func (r *Repository) tagCommit(ref *plumbing.Reference) (*object.Commit, error) {
	tag, err := r.repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		return tag.Commit()
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return r.repo.CommitObject(ref.Hash())
	default:
		return nil, err
	}
}

// TaggedCommits returns the hashes of all commits carrying at least one tag.
// Tags that do not point to a commit are skipped.
func (r *Repository) TaggedCommits() ([]string, error) {
	refs, err := r.repo.Tags()
	if err != nil {
		return nil, err
	}

	var hashes []string
	seen := make(map[string]struct{})
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		c, err := r.tagCommit(ref)
		if err != nil {
			return nil
		}
		h := c.Hash.String()
		if _, ok := seen[h]; !ok {
			seen[h] = struct{}{}
			hashes = append(hashes, h)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// ListCommits returns the commits reachable from branch (HEAD when empty).
// With reverse set, commits are produced oldest first, otherwise newest first.
// Commits are materialized one at a time as the sequence is consumed.
func (r *Repository) ListCommits(ctx context.Context, branch string, reverse bool) iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		from, err := r.resolveBranch(branch)
		if err != nil {
			yield(nil, err)
			return
		}

		cIter, err := r.repo.Log(&gogit.LogOptions{From: from, Order: gogit.LogOrderCommitterTime})
		if err != nil {
			yield(nil, err)
			return
		}
		defer cIter.Close()

		if !reverse {
			for {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return
				}
				c, err := cIter.Next()
				if err == io.EOF {
					return
				}
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(r.newCommit(c), nil) {
					return
				}
			}
		}

		// Oldest first needs the full hash list up front; commit objects are
		// still loaded lazily.
		var hashes []plumbing.Hash
		err = cIter.ForEach(func(c *object.Commit) error {
			hashes = append(hashes, c.Hash)
			return ctx.Err()
		})
		if err != nil {
			yield(nil, err)
			return
		}

		for i := len(hashes) - 1; i >= 0; i-- {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			c, err := r.repo.CommitObject(hashes[i])
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(r.newCommit(c), nil) {
				return
			}
		}
	}
}

// TotalCommits counts the commits reachable from HEAD.
func (r *Repository) TotalCommits(ctx context.Context) (int, error) {
	n := 0
	for _, err := range r.ListCommits(ctx, "", false) {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

func (r *Repository) resolveBranch(branch string) (plumbing.Hash, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" || strings.EqualFold(branch, "HEAD") {
		ref, err := r.repo.Head()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return ref.Hash(), nil
	}
	h, err := r.resolveRevision(branch)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return *h, nil
}

func (r *Repository) resolveRevision(rev string) (*plumbing.Hash, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("revision %s: %w", rev, ErrNotFound)
		}
		return nil, fmt.Errorf("revision %s: %w", rev, err)
	}
	return h, nil
}

// newCommit converts a go-git commit into a snapshot whose modifications are
// computed on first use.
func (r *Repository) newCommit(c *object.Commit) *Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	hash := c.Hash.String()
	commit := NewCommit(Commit{
		Hash:              hash,
		Msg:               strings.TrimSpace(c.Message),
		Author:            Developer{Name: c.Author.Name, Email: c.Author.Email},
		Committer:         Developer{Name: c.Committer.Name, Email: c.Committer.Email},
		AuthorDate:        c.Author.When,
		CommitterDate:     c.Committer.When,
		AuthorTimezone:    timezoneOffset(c.Author.When),
		CommitterTimezone: timezoneOffset(c.Committer.When),
		Parents:           parents,
		ProjectName:       r.ProjectName(),
	}, func() ([]Modification, error) {
		return r.modifications(c)
	})
	commit.mainBranch = r.mainBranch
	commit.branches = func() ([]string, error) {
		return r.Branches(hash)
	}
	return commit
}

// modifications diffs a commit against its parent. The root commit is diffed
// against the empty tree; merge commits report no modifications.
func (r *Repository) modifications(c *object.Commit) ([]Modification, error) {
	var parentTree *object.Tree
	switch c.NumParents() {
	case 0:
	case 1:
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}

	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(context.Background(), parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("diff tree of %s: %w", c.Hash, err)
	}

	mods := make([]Modification, 0, len(changes))
	for _, change := range changes {
		if change.From.TreeEntry.Mode == filemode.Submodule || change.To.TreeEntry.Mode == filemode.Submodule {
			continue
		}
		mod, err := modificationFromChange(change)
		if err != nil {
			return nil, fmt.Errorf("modification %s in %s: %w", change.String(), c.Hash, err)
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

func modificationFromChange(change *object.Change) (Modification, error) {
	mod := Modification{
		OldPath: change.From.Name,
		NewPath: change.To.Name,
	}

	action, err := change.Action()
	if err != nil {
		return mod, err
	}
	switch action {
	case merkletrie.Insert:
		mod.ChangeType = ModificationAdd
	case merkletrie.Delete:
		mod.ChangeType = ModificationDelete
	case merkletrie.Modify:
		if change.From.Name != change.To.Name {
			mod.ChangeType = ModificationRename
		} else {
			mod.ChangeType = ModificationModify
		}
	}

	patch, err := change.Patch()
	if err != nil {
		return mod, err
	}
	var buf bytes.Buffer
	if err := fdiff.NewUnifiedEncoder(&buf, fdiff.DefaultContextLines).Encode(patch); err != nil {
		return mod, err
	}
	mod.Diff = hunksOnly(buf.String())

	from, to, err := change.Files()
	if err != nil {
		return mod, err
	}
	mod.SourceCodeBefore = fileContents(from)
	mod.SourceCode = fileContents(to)
	return mod, nil
}

// hunksOnly strips the file header emitted by the unified encoder so the diff
// starts at its first hunk header. Binary and content-less patches yield "".
func hunksOnly(patch string) string {
	if strings.HasPrefix(patch, "@@") {
		return patch
	}
	if idx := strings.Index(patch, "\n@@"); idx != -1 {
		return patch[idx+1:]
	}
	return ""
}

func fileContents(f *object.File) string {
	if f == nil {
		return ""
	}
	if bin, err := f.IsBinary(); err != nil || bin {
		return ""
	}
	s, err := f.Contents()
	if err != nil {
		return ""
	}
	return s
}
