package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitdrill/internal/git"
	"github.com/masmgr/gitdrill/internal/mining"
)

// FilesCmd returns the files command.
func FilesCmd() *cli.Command {
	return &cli.Command{
		Name:  "files",
		Usage: "List the files of a local repository as of a commit",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "repo",
				Aliases: []string{"r"},
				Usage:   "Path to the Git repository",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:     "commit",
				Usage:    "Commit to check out",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Check out even though uncommitted changes in the working tree are discarded",
			},
		},
		Action: filesAction,
	}
}

func filesAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	if !c.Bool("force") {
		return fmt.Errorf("%w: files checks out --commit and discards uncommitted changes; pass --force", mining.ErrInvalidConfig)
	}

	location := c.String("repo")
	if git.IsRemote(location) {
		return fmt.Errorf("%w: files needs a local repository", mining.ErrInvalidConfig)
	}
	repo, err := git.Open(location)
	if err != nil {
		return err
	}
	if repo.MainBranch() == "" {
		return fmt.Errorf("%w: HEAD is detached, the working tree could not be restored", mining.ErrInvalidConfig)
	}

	log := ctx.Logger.WithField("repo", repo.Path())
	if err := repo.Checkout(c.String("commit")); err != nil {
		return err
	}
	defer func() {
		if err := repo.Reset(); err != nil {
			log.WithError(err).Error("failed to restore the main branch")
		}
	}()

	files, err := repo.Files()
	if err != nil {
		return err
	}
	rel := make([]string, 0, len(files))
	for _, f := range files {
		p, err := filepath.Rel(repo.Path(), f)
		if err != nil {
			return err
		}
		rel = append(rel, filepath.ToSlash(p))
	}
	sort.Strings(rel)

	for _, p := range rel {
		fmt.Fprintln(c.App.Writer, p)
	}
	log.WithFields(logrus.Fields{"commit": c.String("commit"), "files": len(rel)}).Info("listed files")
	return nil
}
