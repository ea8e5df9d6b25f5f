package output

import (
	"fmt"
	"strings"
)

// MarkdownCommitWriter writes commit reports as Markdown.
type MarkdownCommitWriter struct{}

// Write outputs the commit report as a Markdown table.
func (w *MarkdownCommitWriter) Write(report *CommitReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Commit Traversal Results")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repositories:** %s\n\n", strings.Join(report.Repos, ", "))
	if label, value := dateRangeLabelAndValue(report.Since, report.Until); label != "" {
		fmt.Fprintf(out, "**%s:** %s\n\n", label, value)
	}
	fmt.Fprintf(out, "**Total Commits:** %d\n\n", len(report.Items))

	fmt.Fprintln(out, "| # | SHA | Date | Author | Files | + | - | Entropy | Message |")
	fmt.Fprintln(out, "|---|-----|------|--------|-------|---|---|---------|---------|")
	for i, item := range items {
		fmt.Fprintf(out, "| %d | `%s` | %s | %s | %d | %d | %d | %.2f | %s |\n",
			i+1, shortHash(item.Hash), item.When.Format(reportDateLayout), escapeMarkdown(item.Author),
			item.Stats.Files, item.Stats.LinesAdded, item.Stats.LinesDeleted, item.Stats.ChangeEntropy,
			escapeMarkdown(truncateMessage(item.Subject, 60)))
	}

	if report.Bugfix == nil || report.Bugfix.Commits == 0 {
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "## Bug-Fix Files")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Bug-fix commits:** %d\n\n", report.Bugfix.Commits)
	fmt.Fprintln(out, "| Path | Bug fixes |")
	fmt.Fprintln(out, "|------|-----------|")
	for _, f := range limitTop(report.Bugfix.Files, options.Top) {
		fmt.Fprintf(out, "| `%s` | %d |\n", f.Path, f.Count)
	}
	return nil
}

// MarkdownAttributionWriter writes attribution reports as Markdown.
type MarkdownAttributionWriter struct{}

// Write outputs one section per analyzed commit.
func (w *MarkdownAttributionWriter) Write(report *AttributionReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Bug-Introducing Commit Attribution")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.Repo)

	for _, item := range items {
		fmt.Fprintf(out, "## `%s` %s\n\n", shortHash(item.Commit), escapeMarkdown(item.Subject))
		if len(item.Files) == 0 {
			fmt.Fprintln(out, "_No attributable deleted lines._")
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintln(out, "| Path | Introducing commits |")
		fmt.Fprintln(out, "|------|---------------------|")
		for _, f := range item.Files {
			shorts := make([]string, 0, len(f.Commits))
			for _, c := range f.Commits {
				shorts = append(shorts, "`"+shortHash(c)+"`")
			}
			fmt.Fprintf(out, "| `%s` | %s |\n", f.Path, strings.Join(shorts, ", "))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
