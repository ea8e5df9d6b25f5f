package output

import (
	"encoding/json"
	"fmt"
	"time"
)

// JSONCommitWriter writes commit reports as JSON.
type JSONCommitWriter struct{}

// JSONCommitReport is the JSON output structure for a commit traversal.
type JSONCommitReport struct {
	Repos        []string         `json:"repos"`
	Since        *string          `json:"since,omitempty"`
	Until        *string          `json:"until,omitempty"`
	GeneratedAt  string           `json:"generatedAt"`
	TotalCommits int                `json:"totalCommits"`
	Items        []JSONCommitItem   `json:"items"`
	Bugfix       *JSONBugfixSummary `json:"bugfix,omitempty"`
}

// JSONBugfixSummary is the JSON output structure for bug-fix aggregation.
type JSONBugfixSummary struct {
	Commits int             `json:"commits"`
	Files   []JSONFileCount `json:"files"`
}

// JSONFileCount is the bug-fix count of one file.
type JSONFileCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// JSONCommitItem is the JSON output structure for a single commit.
type JSONCommitItem struct {
	SHA     string            `json:"sha"`
	Project string            `json:"project"`
	When    string            `json:"when"`
	Author  string            `json:"author"`
	Message string            `json:"message"`
	Merge   bool              `json:"merge"`
	Bugfix  bool              `json:"bugfix"`
	Metrics JSONCommitMetrics `json:"metrics"`

	Branches     []string `json:"branches,omitempty"`
	InMainBranch *bool    `json:"inMainBranch,omitempty"`
}

// JSONCommitMetrics holds the statistics of a commit in JSON format.
type JSONCommitMetrics struct {
	FileCount      int     `json:"fileCount"`
	DirectoryCount int     `json:"directoryCount"`
	SubsystemCount int     `json:"subsystemCount"`
	LinesAdded     int     `json:"linesAdded"`
	LinesDeleted   int     `json:"linesDeleted"`
	TotalChurn     int     `json:"totalChurn"`
	ChangeEntropy  float64 `json:"changeEntropy"`
}

// Write outputs the commit report as JSON.
func (w *JSONCommitWriter) Write(report *CommitReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	jsonItems := make([]JSONCommitItem, len(items))
	for i, item := range items {
		jsonItems[i] = JSONCommitItem{
			SHA:     item.Hash,
			Project: item.Project,
			When:    item.When.Format(time.RFC3339),
			Author:  item.Author,
			Message: item.Subject,
			Merge:   item.Merge,
			Bugfix:  item.Bugfix,
			Metrics: JSONCommitMetrics{
				FileCount:      item.Stats.Files,
				DirectoryCount: item.Stats.Directories,
				SubsystemCount: item.Stats.Subsystems,
				LinesAdded:     item.Stats.LinesAdded,
				LinesDeleted:   item.Stats.LinesDeleted,
				TotalChurn:     item.Stats.Churn(),
				ChangeEntropy:  item.Stats.ChangeEntropy,
			},
			Branches:     item.Branches,
			InMainBranch: item.InMainBranch,
		}
	}

	var bugfix *JSONBugfixSummary
	if report.Bugfix != nil {
		files := limitTop(report.Bugfix.Files, options.Top)
		bugfix = &JSONBugfixSummary{Commits: report.Bugfix.Commits, Files: make([]JSONFileCount, len(files))}
		for i, f := range files {
			bugfix.Files[i] = JSONFileCount{Path: f.Path, Count: f.Count}
		}
	}

	return writeJSON(JSONCommitReport{
		Repos:        report.Repos,
		Since:        formatDate(report.Since),
		Until:        formatDate(report.Until),
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		TotalCommits: len(report.Items),
		Items:        jsonItems,
		Bugfix:       bugfix,
	}, options)
}

// JSONAttributionWriter writes attribution reports as JSON.
type JSONAttributionWriter struct{}

// JSONAttributionReport is the JSON output structure for attribution.
type JSONAttributionReport struct {
	Repo         string                `json:"repo"`
	GeneratedAt  string                `json:"generatedAt"`
	TotalCommits int                   `json:"totalCommits"`
	Items        []JSONAttributionItem `json:"items"`
}

// JSONAttributionItem maps the files of one analyzed commit to the commits
// that introduced their deleted lines.
type JSONAttributionItem struct {
	SHA         string              `json:"sha"`
	Message     string              `json:"message"`
	Introducing map[string][]string `json:"introducing"`
}

// Write outputs the attribution report as JSON.
func (w *JSONAttributionWriter) Write(report *AttributionReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	jsonItems := make([]JSONAttributionItem, len(items))
	for i, item := range items {
		files := make(map[string][]string, len(item.Files))
		for _, f := range item.Files {
			files[f.Path] = f.Commits
		}
		jsonItems[i] = JSONAttributionItem{SHA: item.Commit, Message: item.Subject, Introducing: files}
	}

	return writeJSON(JSONAttributionReport{
		Repo:         report.Repo,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		TotalCommits: len(report.Items),
		Items:        jsonItems,
	}, options)
}

func writeJSON(data interface{}, options OutputOptions) error {
	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
