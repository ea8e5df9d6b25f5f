package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitdrill/internal/output"
)

func writeCommitReport(ctx *CommandContext, c *cli.Context, report *output.CommitReport) error {
	opts := ctx.OutputOptions(c)
	writer := output.NewCommitReportWriter(opts.Format)
	return writer.Write(report, opts)
}

func writeAttributionReport(ctx *CommandContext, c *cli.Context, report *output.AttributionReport) error {
	opts := ctx.OutputOptions(c)
	writer := output.NewAttributionReportWriter(opts.Format)
	return writer.Write(report, opts)
}
