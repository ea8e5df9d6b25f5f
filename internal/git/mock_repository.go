package git

import (
	"context"
	"fmt"
	"iter"
	"strings"
)

// MockRepository is an in-memory test double for Repository.
// Commits are listed oldest first.
type MockRepository struct {
	Commits []*Commit
	// Tags maps tag names to commit hashes.
	Tags map[string]string
	// Histories maps file paths to the hashes of commits touching them.
	Histories map[string][]string
	// Blames and IgnoreBlames are keyed by "rev:path".
	Blames       map[string][]BlameLine
	IgnoreBlames map[string][]BlameLine
	IgnoreAware  bool
	// IgnoreCalls records the ignore lists passed to IgnoreAwareBlame.
	IgnoreCalls [][]string
	Error       error
}

// ResolveCommit returns the commit whose hash starts with id.
func (m *MockRepository) ResolveCommit(id string) (*Commit, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	for _, c := range m.Commits {
		if id != "" && strings.HasPrefix(c.Hash, id) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("commit %s: %w", id, ErrNotFound)
}

// ResolveTag returns the commit a tag points to.
func (m *MockRepository) ResolveTag(name string) (*Commit, error) {
	h, ok := m.Tags[name]
	if !ok {
		return nil, fmt.Errorf("tag %s: %w", name, ErrNotFound)
	}
	return m.ResolveCommit(h)
}

// TaggedCommits returns the hashes of tagged commits.
func (m *MockRepository) TaggedCommits() ([]string, error) {
	hashes := make([]string, 0, len(m.Tags))
	for _, h := range m.Tags {
		hashes = append(hashes, h)
	}
	return hashes, nil
}

// ListCommits yields the configured commits. The branch is ignored.
func (m *MockRepository) ListCommits(ctx context.Context, _ string, reverse bool) iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		if m.Error != nil {
			yield(nil, m.Error)
			return
		}
		n := len(m.Commits)
		for i := range n {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			c := m.Commits[i]
			if !reverse {
				c = m.Commits[n-1-i]
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// FileHistory returns the configured history of path.
func (m *MockRepository) FileHistory(_ context.Context, path string) ([]string, error) {
	return m.Histories[path], nil
}

// Blame returns the configured blame of path at rev.
func (m *MockRepository) Blame(_ context.Context, rev, path string) ([]BlameLine, error) {
	lines, ok := m.Blames[rev+":"+path]
	if !ok {
		return nil, fmt.Errorf("blame %s at %s: %w", path, rev, ErrNotFound)
	}
	return lines, nil
}

// IgnoreAwareBlameAvailable reports the configured capability.
func (m *MockRepository) IgnoreAwareBlameAvailable(context.Context) bool {
	return m.IgnoreAware
}

// IgnoreAwareBlame returns the configured ignore-aware blame of path at rev.
func (m *MockRepository) IgnoreAwareBlame(_ context.Context, ignore []string, rev, path string) ([]BlameLine, error) {
	m.IgnoreCalls = append(m.IgnoreCalls, ignore)
	if !m.IgnoreAware {
		return nil, ErrIgnoreRevsUnsupported
	}
	lines, ok := m.IgnoreBlames[rev+":"+path]
	if !ok {
		return nil, fmt.Errorf("blame %s at %s: %w", path, rev, ErrNotFound)
	}
	return lines, nil
}
