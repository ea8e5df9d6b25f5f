package loc

import "strings"

// commentPrefixes are the line openers treated as comment-only lines.
// This covers Java/C-style and Python comments and docstring delimiters.
var commentPrefixes = []string{"//", "#", "/*", "'''", `"""`, "*"}

// IsCommentOrBlank reports whether a trimmed source line carries no code:
// it is empty or starts with a recognized comment marker.
func IsCommentOrBlank(line string) bool {
	if line == "" {
		return true
	}
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Lines counts the number of lines in content.
// An empty source has 0 lines. A source with no trailing newline still counts its last line.
func Lines(src string) int {
	if src == "" {
		return 0
	}
	count := strings.Count(src, "\n")
	if src[len(src)-1] != '\n' {
		count++
	}
	return count
}

// Count returns the number of lines of code in src, skipping blank and
// comment-only lines.
func Count(src string) int {
	if src == "" {
		return 0
	}
	n := 0
	for _, line := range strings.Split(src, "\n") {
		if !IsCommentOrBlank(strings.TrimSpace(line)) {
			n++
		}
	}
	return n
}
