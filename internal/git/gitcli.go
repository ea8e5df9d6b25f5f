package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// minIgnoreRevMajor and minIgnoreRevMinor are the first git release whose
// blame accepts --ignore-rev.
const (
	minIgnoreRevMajor = 2
	minIgnoreRevMinor = 23
)

// runGit runs git with args inside dir and returns its standard output.
func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	full := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// FileHistory returns the hashes of every commit that touched path, following
// renames.
func (r *Repository) FileHistory(ctx context.Context, path string) ([]string, error) {
	out, err := runGit(ctx, r.path, "log", "--follow", "--format=%H", "--", path)
	if err != nil {
		return nil, err
	}
	return splitHashes(out), nil
}

func splitHashes(out []byte) []string {
	var hashes []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if h := strings.TrimSpace(sc.Text()); h != "" {
			hashes = append(hashes, h)
		}
	}
	return hashes
}

// CLIBlame blames files with the git executable. It ignores whitespace
// changes and, on git 2.23 or later, can skip listed revisions.
type CLIBlame struct {
	dir string
}

// NewCLIBlame returns a blamer for the repository in dir.
func NewCLIBlame(dir string) *CLIBlame {
	return &CLIBlame{dir: dir}
}

// Probe runs `git version` and reports whether git could be executed and
// whether it accepts --ignore-rev.
func (b *CLIBlame) Probe(ctx context.Context) (found, ignoreRevs bool) {
	out, err := runGit(ctx, b.dir, "version")
	if err != nil {
		return false, false
	}
	major, minor, ok := parseGitVersion(string(out))
	if !ok {
		return true, false
	}
	return true, major > minIgnoreRevMajor || (major == minIgnoreRevMajor && minor >= minIgnoreRevMinor)
}

// Blame implements BlameProvider.
func (b *CLIBlame) Blame(ctx context.Context, rev, path string) ([]BlameLine, error) {
	return b.BlameIgnoring(ctx, nil, rev, path)
}

// BlameIgnoring blames path at rev, ignoring whitespace changes and the given
// revisions.
func (b *CLIBlame) BlameIgnoring(ctx context.Context, ignore []string, rev, path string) ([]BlameLine, error) {
	args := []string{"blame", "--root", "-w", "-l"}
	for _, h := range ignore {
		args = append(args, "--ignore-rev", h)
	}
	args = append(args, rev, "--", path)

	out, err := runGit(ctx, b.dir, args...)
	if err != nil {
		return nil, err
	}
	return parseBlameOutput(out)
}

// parseGitVersion extracts major and minor numbers from "git version X.Y.Z".
func parseGitVersion(s string) (major, minor int, ok bool) {
	fields := strings.Fields(s)
	if len(fields) < 3 || fields[0] != "git" || fields[1] != "version" {
		return 0, 0, false
	}
	parts := strings.SplitN(fields[2], ".", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// parseBlameOutput parses the default `git blame -l` format:
//
//	<hash> (<author> <date> <lineno>) <text>
//
// Boundary commits are prefixed with '^'; the marker is dropped.
func parseBlameOutput(out []byte) ([]BlameLine, error) {
	text := strings.TrimSuffix(string(out), "\n")
	if text == "" {
		return []BlameLine{}, nil
	}

	rawLines := strings.Split(text, "\n")
	lines := make([]BlameLine, 0, len(rawLines))
	for i, raw := range rawLines {
		sp := strings.IndexByte(raw, ' ')
		if sp <= 0 {
			return nil, fmt.Errorf("blame output line %d: missing commit hash", i+1)
		}
		hash := strings.TrimLeft(raw[:sp], "^")

		var content string
		if idx := strings.Index(raw, ") "); idx != -1 {
			content = raw[idx+2:]
		} else if strings.HasSuffix(raw, ")") {
			content = ""
		} else {
			return nil, fmt.Errorf("blame output line %d: missing metadata", i+1)
		}
		lines = append(lines, BlameLine{Commit: hash, Text: content})
	}
	return lines, nil
}
