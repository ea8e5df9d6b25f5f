package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitdrill/internal/mining"
	"github.com/masmgr/gitdrill/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "gitdrill",
		Usage:   "Mine Git history and trace deleted lines to the commits that introduced them",
		Version: "0.3.0",
		Commands: []*cli.Command{
			CommitsCmd(),
			SzzCmd(),
			FilesCmd(),
			InitConfigCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (trace, debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Environment file loaded before applying GITDRILL_* overrides",
				Value: ".env",
			},
		},
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path or clone URL of a Git repository (can be specified multiple times)",
			Value:   cli.NewStringSlice("."),
		},
		&cli.StringFlag{
			Name:  "single",
			Usage: "Only this commit hash",
		},
		&cli.StringFlag{
			Name:  "since",
			Usage: "Commits since this date (YYYY-MM-DD or RFC 3339, UTC when no zone)",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "Commits up to this date (YYYY-MM-DD or RFC 3339, UTC when no zone)",
		},
		&cli.StringFlag{
			Name:  "from-commit",
			Usage: "Commits since the date of this commit",
		},
		&cli.StringFlag{
			Name:  "to-commit",
			Usage: "Commits up to the date of this commit",
		},
		&cli.StringFlag{
			Name:  "from-tag",
			Usage: "Commits since the date of this tag",
		},
		&cli.StringFlag{
			Name:  "to-tag",
			Usage: "Commits up to the date of this tag",
		},
		&cli.StringFlag{
			Name:  "range",
			Usage: "Revision range 'from..to' (shorthand for --from-commit/--to-commit)",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Branch to traverse (default: HEAD)",
		},
		&cli.BoolFlag{
			Name:  "reverse",
			Usage: "Newest commits first",
		},
		&cli.BoolFlag{
			Name:  "no-merges",
			Usage: "Skip merge commits",
		},
		&cli.StringSliceFlag{
			Name:  "author",
			Usage: "Only commits by this author name (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "only-commit",
			Usage: "Only this commit hash (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "file-type",
			Usage: "Only commits modifying a file with this suffix, e.g. .go (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  "filepath",
			Usage: "Only commits that modified this file (renames followed)",
		},
		&cli.BoolFlag{
			Name:  "releases",
			Usage: "Only tagged commits",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "bug-patterns",
			Usage: "Regex patterns identifying bug-fix commits (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown, ci)",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of results to show (0: all)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
	}
}

// parseDateFlag parses a date flag. An empty value yields the zero time.
func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := mining.ParseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	case "ci", "ndjson":
		return output.FormatCI
	default:
		return output.FormatConsole
	}
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
