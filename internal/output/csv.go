package output

import (
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVCommitWriter writes commit reports as CSV.
type CSVCommitWriter struct{}

// Write outputs the commit report as CSV.
func (w *CSVCommitWriter) Write(report *CommitReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}
	writer := csv.NewWriter(out)

	headers := []string{"SHA", "Project", "When", "Author", "Merge", "Bugfix", "FileCount", "DirectoryCount",
		"SubsystemCount", "LinesAdded", "LinesDeleted", "ChangeEntropy", "Message"}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, item := range items {
		row := []string{
			item.Hash,
			item.Project,
			item.When.Format(reportDateTimeLayout),
			item.Author,
			strconv.FormatBool(item.Merge),
			strconv.FormatBool(item.Bugfix),
			strconv.Itoa(item.Stats.Files),
			strconv.Itoa(item.Stats.Directories),
			strconv.Itoa(item.Stats.Subsystems),
			strconv.Itoa(item.Stats.LinesAdded),
			strconv.Itoa(item.Stats.LinesDeleted),
			fmt.Sprintf("%.6f", item.Stats.ChangeEntropy),
			item.Subject,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVAttributionWriter writes attribution reports as CSV, one row per
// (fix commit, path, introducing commit) triple.
type CSVAttributionWriter struct{}

// Write outputs the attribution report as CSV.
func (w *CSVAttributionWriter) Write(report *AttributionReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}
	writer := csv.NewWriter(out)

	if err := writer.Write([]string{"FixCommit", "Path", "IntroducingCommit"}); err != nil {
		return err
	}
	for _, item := range items {
		for _, f := range item.Files {
			for _, c := range f.Commits {
				if err := writer.Write([]string{item.Commit, f.Path, c}); err != nil {
					return err
				}
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
