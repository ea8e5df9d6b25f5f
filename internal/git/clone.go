package git

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// IsRemote reports whether location refers to a remote repository rather
// than a local path.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "git@") ||
		strings.HasPrefix(location, "https://") ||
		strings.HasPrefix(location, "http://") ||
		strings.HasPrefix(location, "ssh://")
}

// RepoNameFromURL returns the repository name encoded in a clone URL, without
// a trailing ".git".
func RepoNameFromURL(location string) (string, error) {
	p := location
	if strings.HasPrefix(location, "git@") {
		idx := strings.IndexByte(location, ':')
		if idx == -1 {
			return "", fmt.Errorf("malformed url %q", location)
		}
		p = location[idx+1:]
	} else {
		u, err := url.Parse(location)
		if err != nil {
			return "", fmt.Errorf("malformed url %q: %w", location, err)
		}
		p = u.Path
	}

	name := strings.TrimSuffix(path.Base(strings.TrimRight(p, "/")), ".git")
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("malformed url %q: no repository name", location)
	}
	return name, nil
}

// Clone clones the remote repository at location into a new directory under
// parent and opens it.
func Clone(ctx context.Context, location, parent string) (*Repository, error) {
	dest, err := cloneDestination(parent, location)
	if err != nil {
		return nil, err
	}
	if _, err := gogit.PlainCloneContext(ctx, dest, false, &gogit.CloneOptions{URL: location}); err != nil {
		return nil, fmt.Errorf("clone %s: %w", location, err)
	}
	return Open(dest)
}

// cloneDestination is the directory under parent that a clone of location
// is written to.
func cloneDestination(parent, location string) (string, error) {
	name, err := RepoNameFromURL(location)
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, name), nil
}

// Discard removes a cloned repository from disk.
func Discard(dir string) error {
	return os.RemoveAll(dir)
}
