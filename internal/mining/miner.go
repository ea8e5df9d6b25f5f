package mining

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/masmgr/gitdrill/internal/git"
)

// Source is the repository surface the pipeline reads.
type Source interface {
	ResolveCommit(id string) (*git.Commit, error)
	ResolveTag(name string) (*git.Commit, error)
	ListCommits(ctx context.Context, branch string, reverse bool) iter.Seq2[*git.Commit, error]
	TaggedCommits() ([]string, error)
	FileHistory(ctx context.Context, path string) ([]string, error)
}

var _ Source = (*git.Repository)(nil)
var _ Source = (*git.MockRepository)(nil)

// OpenFunc opens a repository location. The returned release function is
// called once the repository's commits have been consumed.
type OpenFunc func(ctx context.Context, location string) (Source, func() error, error)

// Miner traverses the commits of a list of repositories.
type Miner struct {
	paths  []string
	opts   Options
	open   OpenFunc
	extra  []Filter
	logger logrus.FieldLogger
}

// Option customizes a Miner.
type Option func(*Miner)

// WithLogger sets the logger used for progress and filter tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Miner) { m.logger = l }
}

// WithOpener replaces the function used to open repository locations.
func WithOpener(open OpenFunc) Option {
	return func(m *Miner) { m.open = open }
}

// WithFilter appends a filter evaluated after the built-in ones.
func WithFilter(f Filter) Option {
	return func(m *Miner) { m.extra = append(m.extra, f) }
}

// New validates opts and returns a Miner over paths. Remote locations
// (git@ or https:// URLs) are cloned into a temporary directory for the
// duration of their traversal.
func New(paths []string, opts Options, options ...Option) (*Miner, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no repository given", ErrInvalidConfig)
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("%w: empty repository path", ErrInvalidConfig)
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m := &Miner{
		paths: paths,
		opts:  opts,
		open:  OpenLocation,
	}
	for _, o := range options {
		o(m)
	}
	if m.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		m.logger = l
	}
	return m, nil
}

// OpenLocation opens a local repository, or clones a remote one into a
// temporary directory that is removed on release.
func OpenLocation(ctx context.Context, location string) (Source, func() error, error) {
	if !git.IsRemote(location) {
		r, err := git.Open(location)
		if err != nil {
			return nil, nil, err
		}
		return r, func() error { return nil }, nil
	}

	tmp, err := os.MkdirTemp("", "gitdrill-")
	if err != nil {
		return nil, nil, err
	}
	r, err := git.Clone(ctx, location, tmp)
	if err != nil {
		_ = git.Discard(tmp)
		return nil, nil, err
	}
	return r, func() error { return git.Discard(tmp) }, nil
}

// Traverse yields the commits surviving every filter, repository by
// repository. A yielded error ends the sequence. A repository is released,
// and a cloned one deleted, when its last commit has been consumed, so
// modifications must be read before advancing past a remote repository.
func (m *Miner) Traverse(ctx context.Context) iter.Seq2[*git.Commit, error] {
	return func(yield func(*git.Commit, error) bool) {
		log := m.logger.WithField("run", uuid.NewString())
		for _, location := range m.paths {
			if !m.traverseRepository(ctx, location, log, yield) {
				return
			}
		}
	}
}

// Commits collects the whole traversal. Modifications are loaded while each
// repository is still open, so they stay readable after temporary clones are
// removed.
func (m *Miner) Commits(ctx context.Context) ([]*git.Commit, error) {
	var commits []*git.Commit
	for c, err := range m.Traverse(ctx) {
		if err != nil {
			return nil, err
		}
		if _, err := c.Modifications(); err != nil {
			return nil, fmt.Errorf("modifications of %s: %w", c.Hash, err)
		}
		commits = append(commits, c)
	}
	return commits, nil
}

// traverseRepository yields the commits of one location and reports whether
// traversal should continue with the next one.
func (m *Miner) traverseRepository(ctx context.Context, location string, log logrus.FieldLogger, yield func(*git.Commit, error) bool) bool {
	log = log.WithField("repo", location)

	src, release, err := m.open(ctx, location)
	if err != nil {
		yield(nil, fmt.Errorf("open %s: %w", location, err))
		return false
	}
	defer func() {
		if err := release(); err != nil {
			log.WithError(err).Warn("failed to release repository")
		}
	}()

	rc, err := m.resolve(ctx, src, log)
	if err != nil {
		yield(nil, err)
		return false
	}
	filters := append(buildFilters(m.opts, rc), m.extra...)

	log.Info("analyzing repository")
	for c, err := range src.ListCommits(ctx, m.opts.OnlyInBranch, !m.opts.ReversedOrder) {
		if err != nil {
			yield(nil, fmt.Errorf("list commits of %s: %w", location, err))
			return false
		}

		clog := log.WithFields(logrus.Fields{
			"commit": c.Hash,
			"date":   c.CommitterDate,
			"author": c.Author.Name,
		})
		clog.Debug("commit")

		keep, err := applyFilters(filters, c, clog)
		if err != nil {
			yield(nil, fmt.Errorf("filter commit %s: %w", c.Hash, err))
			return false
		}
		if !keep {
			continue
		}
		if !yield(c, nil) {
			return false
		}
	}
	return true
}

func applyFilters(filters []Filter, c *git.Commit, log logrus.FieldLogger) (bool, error) {
	for _, f := range filters {
		ok, err := f.Keep(c)
		if err != nil {
			return false, err
		}
		if !ok {
			log.WithField("filter", f.Name()).Debug("commit filtered")
			return false, nil
		}
	}
	return true, nil
}

// resolve turns commit and tag bounds into dates and loads the commit sets
// needed by the file path and release filters.
func (m *Miner) resolve(ctx context.Context, src Source, log logrus.FieldLogger) (*Context, error) {
	rc := &Context{Since: m.opts.Since, To: m.opts.To}

	bound := func(kind, id string, lookup func(string) (*git.Commit, error)) (*git.Commit, error) {
		c, err := lookup(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %w", ErrResolve, kind, id, err)
		}
		return c, nil
	}

	switch {
	case m.opts.FromCommit != "":
		c, err := bound("commit", m.opts.FromCommit, src.ResolveCommit)
		if err != nil {
			return nil, err
		}
		rc.Since = c.CommitterDate
	case m.opts.FromTag != "":
		c, err := bound("tag", m.opts.FromTag, src.ResolveTag)
		if err != nil {
			return nil, err
		}
		rc.Since = c.CommitterDate
	}

	switch {
	case m.opts.ToCommit != "":
		c, err := bound("commit", m.opts.ToCommit, src.ResolveCommit)
		if err != nil {
			return nil, err
		}
		rc.To = c.CommitterDate
	case m.opts.ToTag != "":
		c, err := bound("tag", m.opts.ToTag, src.ResolveTag)
		if err != nil {
			return nil, err
		}
		rc.To = c.CommitterDate
	}

	if !rc.Since.IsZero() {
		rc.Since = rc.Since.UTC()
	}
	if !rc.To.IsZero() {
		rc.To = rc.To.UTC()
	}

	if m.opts.Filepath != "" {
		history, err := src.FileHistory(ctx, m.opts.Filepath)
		if err != nil {
			log.WithError(err).WithField("path", m.opts.Filepath).Warn("cannot read file history, no commit will match")
			history = nil
		}
		rc.FileCommits = toSet(history)
	}

	if m.opts.OnlyReleases {
		tagged, err := src.TaggedCommits()
		if err != nil {
			return nil, fmt.Errorf("%w: tagged commits: %w", ErrResolve, err)
		}
		rc.Tagged = toSet(tagged)
	}

	return rc, nil
}
