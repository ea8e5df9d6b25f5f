package output

import (
	"io"
	"time"

	"github.com/masmgr/gitdrill/internal/stats"
)

// Compile-time interface conformance checks.
var (
	_ CommitReportWriter = (*ConsoleCommitWriter)(nil)
	_ CommitReportWriter = (*JSONCommitWriter)(nil)
	_ CommitReportWriter = (*CSVCommitWriter)(nil)
	_ CommitReportWriter = (*MarkdownCommitWriter)(nil)
	_ CommitReportWriter = (*CICommitWriter)(nil)

	_ AttributionReportWriter = (*ConsoleAttributionWriter)(nil)
	_ AttributionReportWriter = (*JSONAttributionWriter)(nil)
	_ AttributionReportWriter = (*CSVAttributionWriter)(nil)
	_ AttributionReportWriter = (*MarkdownAttributionWriter)(nil)
	_ AttributionReportWriter = (*CIAttributionWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int
	OutputPath string
	// Out overrides both OutputPath and stdout when set.
	Out io.Writer
}

// CommitItem is one traversed commit with its change statistics.
type CommitItem struct {
	Hash    string
	Project string
	Author  string
	When    time.Time
	Subject string
	Merge   bool
	Bugfix  bool
	Stats   stats.CommitStats
	// Branches lists the local branches containing the commit; nil when
	// branch membership was not requested.
	Branches     []string
	InMainBranch *bool
}

// FileCount is the number of bug-fix commits that touched a file.
type FileCount struct {
	Path  string
	Count int
}

// BugfixSummary aggregates the bug-fix commits of a traversal.
type BugfixSummary struct {
	Commits int
	// Files is ordered by descending count, then path.
	Files []FileCount
}

// CommitReport holds the commits yielded by a traversal.
type CommitReport struct {
	Repos       []string
	Since       *time.Time
	Until       *time.Time
	GeneratedAt time.Time
	Items       []CommitItem
	Bugfix      *BugfixSummary
}

// AttributedFile lists the commits that introduced the lines a fix deleted
// from one file.
type AttributedFile struct {
	Path    string
	Commits []string
}

// AttributionItem is the attribution of one analyzed commit.
type AttributionItem struct {
	Commit  string
	Subject string
	Files   []AttributedFile
}

// IntroducingCount returns the number of distinct introducing commits.
func (a AttributionItem) IntroducingCount() int {
	seen := make(map[string]struct{})
	for _, f := range a.Files {
		for _, c := range f.Commits {
			seen[c] = struct{}{}
		}
	}
	return len(seen)
}

// AttributionReport holds the attribution of one or more fix commits.
type AttributionReport struct {
	Repo        string
	GeneratedAt time.Time
	Items       []AttributionItem
}

// CommitReportWriter writes commit reports.
type CommitReportWriter interface {
	Write(report *CommitReport, options OutputOptions) error
}

// AttributionReportWriter writes attribution reports.
type AttributionReportWriter interface {
	Write(report *AttributionReport, options OutputOptions) error
}

// NewCommitReportWriter creates a commit report writer for the specified format.
func NewCommitReportWriter(format OutputFormat) CommitReportWriter {
	switch format {
	case FormatJSON:
		return &JSONCommitWriter{}
	case FormatCSV:
		return &CSVCommitWriter{}
	case FormatMarkdown:
		return &MarkdownCommitWriter{}
	case FormatCI:
		return &CICommitWriter{}
	default:
		return &ConsoleCommitWriter{}
	}
}

// NewAttributionReportWriter creates an attribution report writer for the
// specified format.
func NewAttributionReportWriter(format OutputFormat) AttributionReportWriter {
	switch format {
	case FormatJSON:
		return &JSONAttributionWriter{}
	case FormatCSV:
		return &CSVAttributionWriter{}
	case FormatMarkdown:
		return &MarkdownAttributionWriter{}
	case FormatCI:
		return &CIAttributionWriter{}
	default:
		return &ConsoleAttributionWriter{}
	}
}
