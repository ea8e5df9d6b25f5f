// Package szz attributes the lines deleted by a commit to the commits that
// introduced them.
package szz

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/masmgr/gitdrill/internal/diff"
	"github.com/masmgr/gitdrill/internal/git"
)

// Source is the repository surface the engine needs.
type Source interface {
	ResolveCommit(id string) (*git.Commit, error)
	Blame(ctx context.Context, rev, path string) ([]git.BlameLine, error)
	IgnoreAwareBlame(ctx context.Context, ignore []string, rev, path string) ([]git.BlameLine, error)
	IgnoreAwareBlameAvailable(ctx context.Context) bool
}

var _ Source = (*git.Repository)(nil)
var _ Source = (*git.MockRepository)(nil)

// AttributionMap maps a file path to the set of commits believed to have
// introduced the lines the analyzed commit deletes from it.
type AttributionMap map[string]map[string]struct{}

func (m AttributionMap) add(path, hash string) {
	set, ok := m[path]
	if !ok {
		set = make(map[string]struct{})
		m[path] = set
	}
	set[hash] = struct{}{}
}

func (m AttributionMap) merge(other AttributionMap) {
	for path, set := range other {
		for hash := range set {
			m.add(path, hash)
		}
	}
}

// Paths returns the attributed paths in sorted order.
func (m AttributionMap) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Commits returns the commits attributed to path in sorted order.
func (m AttributionMap) Commits(path string) []string {
	set := m[path]
	hashes := make([]string, 0, len(set))
	for h := range set {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes
}

// Options selects what to attribute and how to blame.
type Options struct {
	// Modification restricts attribution to one file; nil means every
	// modification of the commit.
	Modification *git.Modification
	// UseIgnoreAwareBlame enables blame that skips the revisions listed in
	// IgnoreRevsPath.
	UseIgnoreAwareBlame bool
	IgnoreRevsPath      string
}

// Engine computes attribution maps.
type Engine struct {
	src    Source
	logger logrus.FieldLogger
}

// NewEngine returns an engine reading from src. A nil logger discards logs.
func NewEngine(src Source, logger logrus.FieldLogger) *Engine {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Engine{src: src, logger: logger}
}

type blameFunc func(ctx context.Context, rev, path string) ([]git.BlameLine, error)

// Attribute returns, for each file of c, the commits that last touched the
// lines c deletes. Only a malformed diff aborts the call; blame failures skip
// the affected file.
func (e *Engine) Attribute(ctx context.Context, c *git.Commit, opts Options) (AttributionMap, error) {
	mods, err := e.targetModifications(c, opts)
	if err != nil {
		return nil, err
	}

	blame, err := e.selectBlame(ctx, opts)
	if err != nil {
		return nil, err
	}

	log := e.logger.WithField("commit", c.Hash)
	result := make(AttributionMap)
	for i := range mods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := e.attributeModification(ctx, c, &mods[i], blame, log)
		if err != nil {
			return nil, err
		}
		result.merge(part)
	}
	return result, nil
}

// LastModifiedLines is Attribute with ordinary blame over every modification.
func (e *Engine) LastModifiedLines(ctx context.Context, c *git.Commit) (AttributionMap, error) {
	return e.Attribute(ctx, c, Options{})
}

func (e *Engine) targetModifications(c *git.Commit, opts Options) ([]git.Modification, error) {
	if opts.Modification != nil {
		return []git.Modification{*opts.Modification}, nil
	}
	mods, err := c.Modifications()
	if err != nil {
		return nil, fmt.Errorf("modifications of %s: %w", c.Hash, err)
	}
	return mods, nil
}

func (e *Engine) selectBlame(ctx context.Context, opts Options) (blameFunc, error) {
	if !opts.UseIgnoreAwareBlame {
		return e.src.Blame, nil
	}

	ignore, err := ReadIgnoreRevs(opts.IgnoreRevsPath)
	if err != nil {
		return nil, err
	}
	if len(ignore) == 0 {
		return e.src.Blame, nil
	}
	if !e.src.IgnoreAwareBlameAvailable(ctx) {
		e.logger.WithField("ignore_revs", opts.IgnoreRevsPath).
			Warn("installed git cannot ignore revisions in blame, using ordinary blame")
		return e.src.Blame, nil
	}

	return func(ctx context.Context, rev, path string) ([]git.BlameLine, error) {
		return e.src.IgnoreAwareBlame(ctx, ignore, rev, path)
	}, nil
}

// attributeModification returns the contribution of one modification. A
// blame or resolution failure yields an empty contribution.
func (e *Engine) attributeModification(ctx context.Context, c *git.Commit, m *git.Modification, blame blameFunc, log logrus.FieldLogger) (AttributionMap, error) {
	blamePath := m.NewPath
	if m.ChangeType == git.ModificationRename || m.ChangeType == git.ModificationDelete {
		blamePath = m.OldPath
	}
	key := blamePath
	if m.ChangeType == git.ModificationRename {
		key = m.NewPath
	}

	parsed, err := diff.Parse(m.Diff)
	if err != nil {
		return nil, fmt.Errorf("diff of %s in %s: %w", m.Path(), c.Hash, err)
	}

	part := make(AttributionMap)
	if len(parsed.Deleted) == 0 {
		return part, nil
	}

	log = log.WithFields(logrus.Fields{"path": blamePath, "change": m.ChangeType.String()})

	lines, err := blame(ctx, c.Hash+"^", blamePath)
	if err != nil {
		log.WithError(err).Debug("blame failed, skipping modification")
		return make(AttributionMap), nil
	}

	for _, del := range parsed.Deleted {
		if IsUselessLine(strings.TrimSpace(del.Text)) {
			continue
		}
		idx := del.Number - 1
		if idx < 0 || idx >= len(lines) {
			log.WithField("line", del.Number).Debug("deleted line outside blame range, skipping modification")
			return make(AttributionMap), nil
		}

		token := strings.TrimLeft(lines[idx].Commit, "^")
		introducing, err := e.src.ResolveCommit(token)
		if err != nil {
			log.WithError(err).WithField("blamed", token).Debug("cannot resolve blamed commit, skipping modification")
			return make(AttributionMap), nil
		}
		part.add(key, introducing.Hash)
	}
	return part, nil
}
