package git

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

// Branches returns the sorted names of the local branches whose history
// contains the commit hash. The scratch checkout branch is not reported.
func (r *Repository) Branches(hash string) ([]string, error) {
	target, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("commit %s: %w", hash, ErrNotFound)
		}
		return nil, err
	}

	refs, err := r.repo.Branches()
	if err != nil {
		return nil, err
	}
	defer refs.Close()

	var names []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if name == scratchBranch {
			return nil
		}
		tip, err := r.repo.CommitObject(ref.Hash())
		if err != nil {
			return fmt.Errorf("branch %s: %w", name, err)
		}
		contains, err := target.IsAncestor(tip)
		if err != nil {
			return fmt.Errorf("branch %s: %w", name, err)
		}
		if contains {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// InMainBranch reports whether the main branch contains the commit hash.
func (r *Repository) InMainBranch(hash string) (bool, error) {
	if r.mainBranch == "" {
		return false, nil
	}
	branches, err := r.Branches(hash)
	if err != nil {
		return false, err
	}
	return slices.Contains(branches, r.mainBranch), nil
}
