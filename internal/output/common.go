package output

import (
	"io"
	"os"
	"time"
)

const (
	reportDateLayout     = "2006-01-02"
	reportDateTimeLayout = "2006-01-02T15:04:05"
)

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}

// dateRangeLabelAndValue describes the traversal window, or "" when unbounded.
func dateRangeLabelAndValue(since, until *time.Time) (string, string) {
	switch {
	case since != nil && until != nil:
		return "Period", since.Format(reportDateLayout) + " to " + until.Format(reportDateLayout)
	case since != nil:
		return "Since", since.Format(reportDateLayout)
	case until != nil:
		return "Until", until.Format(reportDateLayout)
	default:
		return "", ""
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(reportDateLayout)
	return &formatted
}

// openOutputWriter returns options.Out, the file at options.OutputPath, or
// stdout. The returned file, if any, must be closed by the caller.
func openOutputWriter(options OutputOptions) (io.Writer, *os.File, error) {
	if options.Out != nil {
		return options.Out, nil, nil
	}
	if options.OutputPath == "" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(options.OutputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}
