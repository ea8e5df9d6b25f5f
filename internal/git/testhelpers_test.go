package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// fixture is a throwaway repository built with go-git.
type fixture struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree
	when time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &fixture{
		t:    t,
		dir:  dir,
		repo: repo,
		wt:   wt,
		when: time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) write(rel, content string) {
	f.t.Helper()
	full := filepath.Join(f.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		f.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		f.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := f.wt.Add(rel); err != nil {
		f.t.Fatalf("Add: %v", err)
	}
}

func (f *fixture) move(from, to string) {
	f.t.Helper()
	if _, err := f.wt.Move(from, to); err != nil {
		f.t.Fatalf("Move: %v", err)
	}
}

// commit records a commit one hour after the previous one.
func (f *fixture) commit(msg, author string) string {
	f.t.Helper()
	f.when = f.when.Add(time.Hour)
	sig := &object.Signature{Name: author, Email: author + "@example.com", When: f.when}
	h, err := f.wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		f.t.Fatalf("Commit: %v", err)
	}
	return h.String()
}

func (f *fixture) lightweightTag(name, hash string) {
	f.t.Helper()
	if _, err := f.repo.CreateTag(name, plumbing.NewHash(hash), nil); err != nil {
		f.t.Fatalf("CreateTag: %v", err)
	}
}

func (f *fixture) annotatedTag(name, hash string) {
	f.t.Helper()
	_, err := f.repo.CreateTag(name, plumbing.NewHash(hash), &gogit.CreateTagOptions{
		Tagger:  &object.Signature{Name: "rel", Email: "rel@example.com", When: f.when},
		Message: "release " + name,
	})
	if err != nil {
		f.t.Fatalf("CreateTag: %v", err)
	}
}

func (f *fixture) open() *Repository {
	f.t.Helper()
	r, err := Open(f.dir)
	if err != nil {
		f.t.Fatalf("Open: %v", err)
	}
	return r
}

// threeCommitRepo creates: add a.py, modify a.py, rename a.py to b.py.
func threeCommitRepo(t *testing.T) (*fixture, []string) {
	t.Helper()
	f := newFixture(t)

	f.write("a.py", "x = 1\n")
	h1 := f.commit("initial", "alice")

	f.write("a.py", "x = 1\ny = 2\n")
	h2 := f.commit("add y\n\nlonger body", "bob")

	f.move("a.py", "b.py")
	h3 := f.commit("rename", "alice")

	return f, []string{h1, h2, h3}
}
