package output

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// ConsoleCommitWriter writes commit reports to the console.
type ConsoleCommitWriter struct{}

// Write outputs the commit report as an aligned table.
func (w *ConsoleCommitWriter) Write(report *CommitReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, color.GreenString("Commit Traversal Results"))
	fmt.Fprintf(out, "Repositories: %s\n", strings.Join(report.Repos, ", "))
	if label, value := dateRangeLabelAndValue(report.Since, report.Until); label != "" {
		fmt.Fprintf(out, "%s: %s\n", label, value)
	}
	fmt.Fprintf(out, "Total commits: %d\n\n", len(report.Items))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSHA\tDate\tAuthor\tFiles\t+\t-\tEntropy\tMessage")
	for i, item := range items {
		subject := truncateMessage(item.Subject, 40)
		if item.Bugfix {
			subject = color.RedString(subject)
		} else if item.Merge {
			subject = color.CyanString(subject)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%.2f\t%s\n",
			i+1,
			shortHash(item.Hash),
			item.When.Format(reportDateLayout),
			item.Author,
			item.Stats.Files,
			item.Stats.LinesAdded,
			item.Stats.LinesDeleted,
			item.Stats.ChangeEntropy,
			subject,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if report.Bugfix == nil || report.Bugfix.Commits == 0 {
		return nil
	}
	fmt.Fprintf(out, "\n%s %d\n", color.RedString("Bug-fix commits:"), report.Bugfix.Commits)
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Path", "Bug fixes"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, f := range limitTop(report.Bugfix.Files, options.Top) {
		table.Append([]string{f.Path, fmt.Sprintf("%d", f.Count)})
	}
	table.Render()
	return nil
}

// ConsoleAttributionWriter writes attribution reports to the console.
type ConsoleAttributionWriter struct{}

// Write outputs one table per analyzed commit.
func (w *ConsoleAttributionWriter) Write(report *AttributionReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, color.GreenString("Bug-Introducing Commit Attribution"))
	fmt.Fprintf(out, "Repository: %s\n", report.Repo)
	fmt.Fprintf(out, "Commits analyzed: %d\n", len(report.Items))

	for _, item := range items {
		fmt.Fprintf(out, "\n%s %s\n", color.YellowString(shortHash(item.Commit)), truncateMessage(item.Subject, 60))
		if len(item.Files) == 0 {
			fmt.Fprintln(out, "  no attributable deleted lines")
			continue
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Path", "Introducing commits"})
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetAutoWrapText(false)
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})
		for _, f := range item.Files {
			shorts := make([]string, 0, len(f.Commits))
			for _, c := range f.Commits {
				shorts = append(shorts, shortHash(c))
			}
			table.Append([]string{f.Path, strings.Join(shorts, " ")})
		}
		table.SetFooter([]string{
			fmt.Sprintf("Files %d", len(item.Files)),
			fmt.Sprintf("Commits %d", item.IntroducingCount()),
		})
		table.Render()
	}
	return nil
}
