package szz

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/masmgr/gitdrill/internal/loc"
)

// IsUselessLine reports whether a trimmed source line carries no code: it is
// blank or starts with a comment marker.
func IsUselessLine(line string) bool {
	return loc.IsCommentOrBlank(line)
}

// ReadIgnoreRevs reads commit hashes to ignore during blame, one per line.
// Blank lines and lines starting with '#' are skipped.
func ReadIgnoreRevs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ignore revs file: %w", err)
	}
	defer f.Close()

	var hashes []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hashes = append(hashes, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ignore revs file: %w", err)
	}
	return hashes, nil
}
