package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// CICommitWriter writes commit reports as NDJSON (one JSON object per line)
// for CI pipelines.
type CICommitWriter struct{}

// CICommitSummary is the first line of commit CI output.
type CICommitSummary struct {
	Type         string `json:"type"`
	TotalCommits int    `json:"totalCommits"`
	BugfixCount  int    `json:"bugfixCount"`
	MergeCount   int    `json:"mergeCount"`
	TotalChurn   int    `json:"totalChurn"`
}

// CICommitEntry represents a single commit in CI output.
type CICommitEntry struct {
	Type    string `json:"type"`
	SHA     string `json:"sha"`
	When    string `json:"when"`
	Author  string `json:"author"`
	Files   int    `json:"files"`
	Churn   int    `json:"churn"`
	Bugfix  bool   `json:"bugfix"`
	Message string `json:"message"`
}

// Write outputs the commit report as NDJSON.
func (w *CICommitWriter) Write(report *CommitReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	summary := CICommitSummary{Type: "summary", TotalCommits: len(items)}
	for _, item := range items {
		if item.Bugfix {
			summary.BugfixCount++
		}
		if item.Merge {
			summary.MergeCount++
		}
		summary.TotalChurn += item.Stats.Churn()
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, item := range items {
		entry := CICommitEntry{
			Type:    "commit",
			SHA:     item.Hash,
			When:    item.When.Format(time.RFC3339),
			Author:  item.Author,
			Files:   item.Stats.Files,
			Churn:   item.Stats.Churn(),
			Bugfix:  item.Bugfix,
			Message: item.Subject,
		}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}
	return nil
}

// CIAttributionWriter writes attribution reports as NDJSON.
type CIAttributionWriter struct{}

// CIAttributionSummary is the first line of attribution CI output.
type CIAttributionSummary struct {
	Type              string `json:"type"`
	FixCommits        int    `json:"fixCommits"`
	AttributedFiles   int    `json:"attributedFiles"`
	IntroducingCommit int    `json:"introducingCommits"`
}

// CIAttributionEntry links one file of a fix commit to its introducing commits.
type CIAttributionEntry struct {
	Type        string   `json:"type"`
	Fix         string   `json:"fix"`
	Path        string   `json:"path"`
	Introducing []string `json:"introducing"`
}

// Write outputs the attribution report as NDJSON.
func (w *CIAttributionWriter) Write(report *AttributionReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	summary := CIAttributionSummary{Type: "summary", FixCommits: len(items)}
	introducing := make(map[string]struct{})
	for _, item := range items {
		summary.AttributedFiles += len(item.Files)
		for _, f := range item.Files {
			for _, c := range f.Commits {
				introducing[c] = struct{}{}
			}
		}
	}
	summary.IntroducingCommit = len(introducing)
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, item := range items {
		for _, f := range item.Files {
			entry := CIAttributionEntry{Type: "file", Fix: item.Commit, Path: f.Path, Introducing: f.Commits}
			if err := writeNDJSONLine(out, entry); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
