package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitdrill/internal/git"
	"github.com/masmgr/gitdrill/internal/mining"
	"github.com/masmgr/gitdrill/internal/output"
	"github.com/masmgr/gitdrill/internal/stats"
)

// CommitsCmd returns the commits command.
func CommitsCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.BoolFlag{
			Name:  "bugfix",
			Usage: "Only commits whose message matches a bug-fix pattern",
		},
		&cli.BoolFlag{
			Name:  "branches",
			Usage: "Report the local branches containing each commit",
		},
	)

	return &cli.Command{
		Name:    "commits",
		Aliases: []string{"log"},
		Usage:   "List the commits of one or more repositories with change statistics",
		Flags:   flags,
		Action:  commitsAction,
	}
}

func commitsAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	detector, err := newBugfixDetector(ctx.Config)
	if err != nil {
		return err
	}

	options := []mining.Option{mining.WithLogger(ctx.Logger)}
	if c.Bool("bugfix") {
		options = append(options, mining.WithFilter(detector))
	}
	miner, err := mining.New(ctx.Repos, ctx.Options, options...)
	if err != nil {
		return err
	}

	withBranches := c.Bool("branches")
	var items []output.CommitItem
	var commits []*git.Commit
	for commit, err := range miner.Traverse(c.Context) {
		if err != nil {
			return err
		}
		item, err := commitItem(commit, detector.IsBugfix(commit.Msg), withBranches)
		if err != nil {
			return err
		}
		items = append(items, item)
		commits = append(commits, commit)
	}
	ctx.Logger.WithField("commits", len(items)).Info("traversal finished")

	summary, err := detector.Summarize(commits)
	if err != nil {
		return err
	}

	report := &output.CommitReport{
		Repos:       ctx.Repos,
		Since:       optionalTime(ctx.Options.Since),
		Until:       optionalTime(ctx.Options.To),
		GeneratedAt: time.Now(),
		Items:       items,
		Bugfix:      bugfixSummary(summary),
	}
	return writeCommitReport(ctx, c, report)
}

func commitItem(commit *git.Commit, isBugfix, withBranches bool) (output.CommitItem, error) {
	mods, err := commit.Modifications()
	if err != nil {
		return output.CommitItem{}, fmt.Errorf("modifications of %s: %w", commit.Hash, err)
	}
	item := output.CommitItem{
		Hash:    commit.Hash,
		Project: commit.ProjectName,
		Author:  commit.Author.Name,
		When:    commit.CommitterDate,
		Subject: commit.Subject(),
		Merge:   commit.Merge(),
		Bugfix:  isBugfix,
		Stats:   stats.Calculate(mods),
	}
	if !withBranches {
		return item, nil
	}

	if item.Branches, err = commit.Branches(); err != nil {
		return output.CommitItem{}, fmt.Errorf("branches of %s: %w", commit.Hash, err)
	}
	inMain, err := commit.InMainBranch()
	if err != nil {
		return output.CommitItem{}, fmt.Errorf("branches of %s: %w", commit.Hash, err)
	}
	item.InMainBranch = &inMain
	return item, nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
