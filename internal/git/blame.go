package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// BlameLine is one line of a blamed file.
type BlameLine struct {
	// Commit identifies the commit that last touched the line. It is usually
	// the full hash; git prints boundary commits abbreviated by one
	// character, so callers resolve it before use.
	Commit string
	Text   string
}

var (
	_ BlameProvider = (*GoGitBlame)(nil)
	_ BlameProvider = (*CLIBlame)(nil)
)

// BlameProvider attributes every line of a file at a revision to a commit.
type BlameProvider interface {
	Blame(ctx context.Context, rev, path string) ([]BlameLine, error)
}

// GoGitBlame blames files in-process with go-git. It compares lines
// exactly, so whitespace-only changes take over a line; it serves only when
// no git executable is available.
type GoGitBlame struct {
	repo *gogit.Repository
}

// Blame implements BlameProvider.
func (b *GoGitBlame) Blame(ctx context.Context, rev, path string) ([]BlameLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h, err := b.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("blame %s at %s: %w", path, rev, ErrNotFound)
	}
	c, err := b.repo.CommitObject(*h)
	if err != nil {
		return nil, fmt.Errorf("blame %s at %s: %w", path, rev, err)
	}

	res, err := gogit.Blame(c, path)
	if err != nil {
		return nil, fmt.Errorf("blame %s at %s: %w", path, rev, err)
	}

	lines := make([]BlameLine, 0, len(res.Lines))
	for _, l := range res.Lines {
		lines = append(lines, BlameLine{Commit: l.Hash.String(), Text: l.Text})
	}
	return lines, nil
}

// ErrIgnoreRevsUnsupported is returned when ignore-aware blame is requested
// but the installed git cannot honour ignore revisions.
var ErrIgnoreRevsUnsupported = errors.New("git does not support --ignore-rev")

// Blame returns the blame of path at rev, ignoring whitespace changes. The
// git executable is used when present, go-git otherwise.
func (r *Repository) Blame(ctx context.Context, rev, path string) ([]BlameLine, error) {
	if !r.probe(ctx).found {
		return r.goBlame.Blame(ctx, rev, path)
	}
	hash, err := r.blameRevision(rev, path)
	if err != nil {
		return nil, err
	}
	return r.cliBlame.Blame(ctx, hash, path)
}

func (r *Repository) blameRevision(rev, path string) (string, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("blame %s at %s: %w", path, rev, ErrNotFound)
	}
	return h.String(), nil
}

type gitProbe struct {
	found      bool
	ignoreRevs bool
}

// probe checks the git executable once per repository.
func (r *Repository) probe(ctx context.Context) gitProbe {
	r.probeOnce.Do(func() {
		r.git.found, r.git.ignoreRevs = r.cliBlame.Probe(ctx)
	})
	return r.git
}

// IgnoreAwareBlameAvailable reports whether the git executable supports
// ignoring revisions during blame.
func (r *Repository) IgnoreAwareBlameAvailable(ctx context.Context) bool {
	return r.probe(ctx).ignoreRevs
}

// IgnoreAwareBlame blames path at rev, attributing lines touched only by the
// ignored revisions to the commits before them.
func (r *Repository) IgnoreAwareBlame(ctx context.Context, ignore []string, rev, path string) ([]BlameLine, error) {
	if !r.IgnoreAwareBlameAvailable(ctx) {
		return nil, ErrIgnoreRevsUnsupported
	}
	hash, err := r.blameRevision(rev, path)
	if err != nil {
		return nil, err
	}
	return r.cliBlame.BlameIgnoring(ctx, ignore, hash, path)
}
