// Package diff parses unified diff text into numbered added and deleted lines.
package diff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	hunkPrefix     = "@@"
	noNewlineAtEOF = `\ No newline at end of file`
)

// ErrMalformedHunk is returned when a hunk header lacks its numeric ranges.
var ErrMalformedHunk = errors.New("malformed hunk header")

// Line is a single changed line. Number is 1-based and refers to the file
// before the change for deleted lines and after the change for added lines.
type Line struct {
	Number int
	Text   string
}

// Result holds the lines added and deleted by a diff, in diff order.
type Result struct {
	Added   []Line
	Deleted []Line
}

// Parse scans a unified diff and returns its added and deleted lines.
// Both running line counters advance on every line and are corrected for the
// side a line does not belong to; hunk headers reset them.
func Parse(text string) (*Result, error) {
	res := &Result{Added: []Line{}, Deleted: []Line{}}
	if text == "" {
		return res, nil
	}

	oldLine, newLine := 0, 0
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRightFunc(raw, unicode.IsSpace)
		oldLine++
		newLine++

		if strings.HasPrefix(line, hunkPrefix) {
			oldStart, newStart, err := ParseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			oldLine, newLine = oldStart-1, newStart-1
		}

		if strings.HasPrefix(line, "-") {
			res.Deleted = append(res.Deleted, Line{Number: oldLine, Text: line[1:]})
			newLine--
		}

		if strings.HasPrefix(line, "+") {
			res.Added = append(res.Added, Line{Number: newLine, Text: line[1:]})
			oldLine--
		}

		if line == noNewlineAtEOF {
			oldLine--
			newLine--
		}
	}

	return res, nil
}

// ParseHunkHeader returns the starting old and new line numbers declared by a
// hunk header such as "@@ -12,7 +12,8 @@ func main() {".
func ParseHunkHeader(line string) (oldStart, newStart int, err error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != hunkPrefix {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedHunk, line)
	}

	oldStart, err = parseRangeStart(fields[1], '-')
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrMalformedHunk, line, err)
	}
	newStart, err = parseRangeStart(fields[2], '+')
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrMalformedHunk, line, err)
	}
	return oldStart, newStart, nil
}

// parseRangeStart extracts the start of a "-l,s" or "+l,s" range.
func parseRangeStart(field string, sign byte) (int, error) {
	if len(field) < 2 || field[0] != sign {
		return 0, fmt.Errorf("expected range starting with %q, got %q", sign, field)
	}
	start, _, _ := strings.Cut(field[1:], ",")
	n, err := strconv.Atoi(start)
	if err != nil {
		return 0, fmt.Errorf("parse range start %q: %w", field, err)
	}
	return n, nil
}
