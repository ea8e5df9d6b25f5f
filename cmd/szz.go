package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitdrill/internal/git"
	"github.com/masmgr/gitdrill/internal/mining"
	"github.com/masmgr/gitdrill/internal/output"
	"github.com/masmgr/gitdrill/internal/szz"
)

// SzzCmd returns the szz command.
func SzzCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{
			Name:  "commit",
			Usage: "Fix commit to analyze (default: every bug-fix commit of the traversal)",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "Restrict attribution to this file of --commit",
		},
		&cli.BoolFlag{
			Name:  "hyper-blame",
			Usage: "Blame while skipping the revisions listed in the ignore-revs file",
		},
		&cli.StringFlag{
			Name:  "ignore-revs",
			Usage: "File listing revisions to skip during blame (default: .git-blame-ignore-revs)",
		},
	)

	return &cli.Command{
		Name:    "szz",
		Aliases: []string{"blame"},
		Usage:   "Find the commits that introduced the lines deleted by bug-fix commits",
		Flags:   flags,
		Action:  szzAction,
	}
}

var errFileNotModified = errors.New("file not modified by commit")

func szzAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	if len(ctx.Repos) != 1 {
		return fmt.Errorf("%w: szz analyzes exactly one repository", mining.ErrInvalidConfig)
	}
	if c.String("file") != "" && c.String("commit") == "" {
		return fmt.Errorf("%w: --file requires --commit", mining.ErrInvalidConfig)
	}

	src, release, err := mining.OpenLocation(c.Context, ctx.Repos[0])
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			ctx.Logger.WithError(err).Warn("failed to release repository")
		}
	}()
	repo, ok := src.(*git.Repository)
	if !ok {
		return fmt.Errorf("unexpected repository type %T", src)
	}
	if total, err := repo.TotalCommits(c.Context); err == nil {
		ctx.Logger.WithFields(logrus.Fields{
			"repo":        repo.Path(),
			"commits":     total,
			"main_branch": repo.MainBranch(),
		}).Debug("repository opened")
	}

	opts := szz.Options{
		UseIgnoreAwareBlame: ctx.Config.Blame.IgnoreAware || c.Bool("hyper-blame"),
		IgnoreRevsPath:      ignoreRevsPath(repo.Path(), c.String("ignore-revs"), ctx.Config.Blame.IgnoreRevsFile),
	}
	engine := szz.NewEngine(repo, ctx.Logger)

	var fixes []*git.Commit
	if hash := c.String("commit"); hash != "" {
		commit, err := repo.ResolveCommit(hash)
		if err != nil {
			return err
		}
		if file := c.String("file"); file != "" {
			mod, err := findModification(commit, file)
			if err != nil {
				return err
			}
			opts.Modification = mod
		}
		fixes = []*git.Commit{commit}
	} else {
		fixes, err = bugfixCommits(c.Context, ctx, repo)
		if err != nil {
			return err
		}
	}

	report := &output.AttributionReport{
		Repo:        ctx.Repos[0],
		GeneratedAt: time.Now(),
	}
	for _, fix := range fixes {
		attribution, err := engine.Attribute(c.Context, fix, opts)
		if err != nil {
			return fmt.Errorf("attributing %s: %w", fix.Hash, err)
		}
		report.Items = append(report.Items, attributionItem(fix, attribution))
	}
	ctx.Logger.WithField("fixes", len(fixes)).Info("attribution finished")

	return writeAttributionReport(ctx, c, report)
}

// bugfixCommits traverses repo with the configured filters and keeps the
// commits whose message looks like a bug fix.
func bugfixCommits(ctx context.Context, cc *CommandContext, repo *git.Repository) ([]*git.Commit, error) {
	detector, err := newBugfixDetector(cc.Config)
	if err != nil {
		return nil, err
	}
	opener := func(context.Context, string) (mining.Source, func() error, error) {
		return repo, func() error { return nil }, nil
	}
	miner, err := mining.New([]string{repo.Path()}, cc.Options,
		mining.WithLogger(cc.Logger),
		mining.WithOpener(opener),
		mining.WithFilter(detector),
	)
	if err != nil {
		return nil, err
	}
	return miner.Commits(ctx)
}

func findModification(commit *git.Commit, file string) (*git.Modification, error) {
	mods, err := commit.Modifications()
	if err != nil {
		return nil, err
	}
	file = filepath.ToSlash(file)
	for i := range mods {
		if mods[i].NewPath == file || mods[i].OldPath == file {
			return &mods[i], nil
		}
	}
	return nil, fmt.Errorf("%s in %s: %w", file, commit.Hash, errFileNotModified)
}

// ignoreRevsPath resolves the ignore-revs file. A relative path that does
// not exist from the working directory is taken relative to the repository.
func ignoreRevsPath(repoPath, flagValue, configured string) string {
	p := flagValue
	if p == "" {
		p = configured
	}
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return filepath.Join(repoPath, p)
}

func attributionItem(fix *git.Commit, attribution szz.AttributionMap) output.AttributionItem {
	item := output.AttributionItem{
		Commit:  fix.Hash,
		Subject: fix.Subject(),
	}
	for _, path := range attribution.Paths() {
		item.Files = append(item.Files, output.AttributedFile{
			Path:    path,
			Commits: attribution.Commits(path),
		})
	}
	return item
}
