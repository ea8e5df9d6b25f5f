package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitdrill/config"
	"github.com/masmgr/gitdrill/internal/git"
	"github.com/masmgr/gitdrill/internal/logging"
	"github.com/masmgr/gitdrill/internal/mining"
	"github.com/masmgr/gitdrill/internal/output"
)

// CommandContext holds common state for command execution.
type CommandContext struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Repos   []string
	Options mining.Options
}

// NewCommandContext loads configuration, builds the logger and translates
// the traversal flags into mining options.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	opts, err := miningOptions(c, cfg)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Config:  cfg,
		Logger:  logger,
		Repos:   c.StringSlice("repo"),
		Options: opts,
	}, nil
}

// loadConfig loads configuration from file or defaults, then applies
// environment and CLI overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(cfg, c.String("env-file")); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if lvl := c.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if patterns := c.StringSlice("bug-patterns"); len(patterns) > 0 {
		cfg.Bugfix.Patterns = patterns
	}
	if b := c.String("branch"); b != "" {
		cfg.Mining.Branch = b
	}
	if c.IsSet("reverse") {
		cfg.Mining.ReversedOrder = c.Bool("reverse")
	}
	if c.IsSet("no-merges") {
		cfg.Mining.OnlyNoMerge = c.Bool("no-merges")
	}
	if f := c.String("format"); f != "" {
		cfg.Output.Format = f
	}
	if c.IsSet("top") {
		cfg.Output.Top = c.Int("top")
	}
	return cfg, nil
}

func miningOptions(c *cli.Context, cfg *config.Config) (mining.Options, error) {
	since, err := parseDateFlag(c.String("since"))
	if err != nil {
		return mining.Options{}, fmt.Errorf("invalid since date: %w", err)
	}
	to, err := parseDateFlag(c.String("to"))
	if err != nil {
		return mining.Options{}, fmt.Errorf("invalid to date: %w", err)
	}

	fromCommit, toCommit := c.String("from-commit"), c.String("to-commit")
	if spec := c.String("range"); spec != "" {
		if fromCommit != "" || toCommit != "" {
			return mining.Options{}, fmt.Errorf("%w: --range cannot be combined with --from-commit or --to-commit", mining.ErrInvalidConfig)
		}
		if fromCommit, toCommit, err = git.ParseRange(spec); err != nil {
			return mining.Options{}, fmt.Errorf("%w: %w", mining.ErrInvalidConfig, err)
		}
	}

	return mining.Options{
		Single:                         c.String("single"),
		Since:                          since,
		To:                             to,
		FromCommit:                     fromCommit,
		ToCommit:                       toCommit,
		FromTag:                        c.String("from-tag"),
		ToTag:                          c.String("to-tag"),
		ReversedOrder:                  cfg.Mining.ReversedOrder,
		OnlyInBranch:                   cfg.Mining.Branch,
		OnlyModificationsWithFileTypes: c.StringSlice("file-type"),
		OnlyNoMerge:                    cfg.Mining.OnlyNoMerge,
		OnlyAuthors:                    c.StringSlice("author"),
		OnlyCommits:                    c.StringSlice("only-commit"),
		OnlyReleases:                   c.Bool("releases"),
		Filepath:                       c.String("filepath"),
		Include:                        cfg.Filters.Include,
		Exclude:                        cfg.Filters.Exclude,
	}, nil
}

// OutputOptions creates OutputOptions from the resolved configuration.
func (ctx *CommandContext) OutputOptions(c *cli.Context) output.OutputOptions {
	opts := output.OutputOptions{
		Format:     getOutputFormat(ctx.Config.Output.Format),
		Top:        ctx.Config.Output.Top,
		OutputPath: c.String("output"),
	}
	if opts.OutputPath == "" {
		opts.Out = c.App.Writer
	}
	return opts
}
