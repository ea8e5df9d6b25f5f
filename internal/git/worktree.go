package git

import (
	"fmt"
	"io/fs"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// scratchBranch is the temporary branch used to check out arbitrary commits.
const scratchBranch = "_gitdrill"

// Checkout moves the working tree to the given commit on a scratch branch.
func (r *Repository) Checkout(hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, err := r.resolveRevision(hash)
	if err != nil {
		return err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}

	if err := r.checkoutBranchLocked(wt); err != nil {
		return err
	}
	if err := r.deleteScratchLocked(); err != nil {
		return err
	}

	return wt.Checkout(&gogit.CheckoutOptions{
		Hash:   *h,
		Branch: plumbing.NewBranchReferenceName(scratchBranch),
		Create: true,
		Force:  true,
	})
}

// Reset returns the working tree to the main branch and removes the scratch
// branch.
func (r *Repository) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := r.checkoutBranchLocked(wt); err != nil {
		return err
	}
	return r.deleteScratchLocked()
}

func (r *Repository) checkoutBranchLocked(wt *gogit.Worktree) error {
	if r.mainBranch == "" {
		return nil
	}
	err := wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(r.mainBranch),
		Force:  true,
	})
	if err != nil {
		return fmt.Errorf("checkout %s: %w", r.mainBranch, err)
	}
	return nil
}

func (r *Repository) deleteScratchLocked() error {
	name := plumbing.NewBranchReferenceName(scratchBranch)
	if _, err := r.repo.Reference(name, false); err != nil {
		return nil
	}
	return r.repo.Storer.RemoveReference(name)
}

// Files returns the absolute paths of all files in the working tree,
// excluding the .git directory.
func (r *Repository) Files() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var files []string
	err := filepath.WalkDir(r.path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
