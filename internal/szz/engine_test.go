package szz

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/masmgr/gitdrill/internal/diff"
	"github.com/masmgr/gitdrill/internal/git"
)

var (
	hashA   = strings.Repeat("a", 40)
	hashB   = strings.Repeat("b", 40)
	hashC   = strings.Repeat("c", 40)
	hashFix = strings.Repeat("f", 40)
)

func commitWith(hash string, mods ...git.Modification) *git.Commit {
	return git.NewCommit(git.Commit{Hash: hash, Msg: "fix"}, git.StaticModifications(mods...))
}

func newMock(fix *git.Commit) *git.MockRepository {
	return &git.MockRepository{
		Commits: []*git.Commit{
			git.NewCommit(git.Commit{Hash: hashA}, nil),
			git.NewCommit(git.Commit{Hash: hashB}, nil),
			git.NewCommit(git.Commit{Hash: hashC}, nil),
			fix,
		},
		Blames: map[string][]git.BlameLine{},
	}
}

func attribute(t *testing.T, src Source, fix *git.Commit, opts Options) AttributionMap {
	t.Helper()
	got, err := NewEngine(src, nil).Attribute(context.Background(), fix, opts)
	if err != nil {
		t.Fatalf("Attribute: %v", err)
	}
	return got
}

func expectPaths(t *testing.T, got AttributionMap, want ...string) {
	t.Helper()
	if paths := got.Paths(); !slices.Equal(paths, want) && !(len(paths) == 0 && len(want) == 0) {
		t.Fatalf("paths = %v, expected %v", paths, want)
	}
}

func expectCommits(t *testing.T, got AttributionMap, path string, want ...string) {
	t.Helper()
	if commits := got.Commits(path); !slices.Equal(commits, want) {
		t.Fatalf("commits of %s = %v, expected %v", path, commits, want)
	}
}

func TestAttribute_ModifyDeletedLine(t *testing.T) {
	mod := git.Modification{
		OldPath:    "a.py",
		NewPath:    "a.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -1,3 +1,2 @@\n x = 1\n-y = 2\n z = 3\n",
	}
	fix := commitWith(hashFix, mod)
	repo := newMock(fix)
	repo.Blames[hashFix+"^:a.py"] = []git.BlameLine{
		{Commit: hashA, Text: "x = 1"},
		{Commit: hashB, Text: "y = 2"},
		{Commit: hashA, Text: "z = 3"},
	}

	got := attribute(t, repo, fix, Options{})
	expectPaths(t, got, "a.py")
	expectCommits(t, got, "a.py", hashB)
}

func TestAttribute_RenameKeyedByNewPath(t *testing.T) {
	mod := git.Modification{
		OldPath:    "a.py",
		NewPath:    "b.py",
		ChangeType: git.ModificationRename,
		Diff:       "@@ -1,2 +1,1 @@\n-x = 1\n y = 2\n",
	}
	fix := commitWith(hashFix, mod)
	repo := newMock(fix)
	repo.Blames[hashFix+"^:a.py"] = []git.BlameLine{
		{Commit: hashA, Text: "x = 1"},
		{Commit: hashB, Text: "y = 2"},
	}

	got := attribute(t, repo, fix, Options{})
	expectPaths(t, got, "b.py")
	expectCommits(t, got, "b.py", hashA)
}

func TestAttribute_DeleteBlamesOldPath(t *testing.T) {
	mod := git.Modification{
		OldPath:    "gone.py",
		ChangeType: git.ModificationDelete,
		Diff:       "@@ -1,2 +0,0 @@\n-x = 1\n-y = 2\n",
	}
	fix := commitWith(hashFix, mod)
	repo := newMock(fix)
	repo.Blames[hashFix+"^:gone.py"] = []git.BlameLine{
		{Commit: hashA, Text: "x = 1"},
		{Commit: hashC, Text: "y = 2"},
	}

	got := attribute(t, repo, fix, Options{})
	expectCommits(t, got, "gone.py", hashA, hashC)
}

func TestAttribute_UselessLinesExcluded(t *testing.T) {
	mod := git.Modification{
		OldPath:    "a.py",
		NewPath:    "a.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -1,4 +1,1 @@\n-# comment\n-\n-   // note\n x = 1\n",
	}
	fix := commitWith(hashFix, mod)
	repo := newMock(fix)
	repo.Blames[hashFix+"^:a.py"] = []git.BlameLine{
		{Commit: hashA, Text: "# comment"},
		{Commit: hashB, Text: ""},
		{Commit: hashC, Text: "   // note"},
		{Commit: hashA, Text: "x = 1"},
	}

	got := attribute(t, repo, fix, Options{})
	expectPaths(t, got)
}

func TestAttribute_BoundaryMarkerStripped(t *testing.T) {
	mod := git.Modification{
		OldPath:    "a.py",
		NewPath:    "a.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -1 +1 @@\n-x = 1\n+x = 2\n",
	}
	fix := commitWith(hashFix, mod)
	repo := newMock(fix)
	repo.Blames[hashFix+"^:a.py"] = []git.BlameLine{{Commit: "^" + hashA[:39], Text: "x = 1"}}

	got := attribute(t, repo, fix, Options{})
	expectCommits(t, got, "a.py", hashA)
}

func TestAttribute_BlameFailureSkipsOnlyThatFile(t *testing.T) {
	missing := git.Modification{
		OldPath:    "missing.py",
		NewPath:    "missing.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -1 +1 @@\n-a = 1\n+a = 2\n",
	}
	present := git.Modification{
		OldPath:    "a.py",
		NewPath:    "a.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -1 +1 @@\n-x = 1\n+x = 2\n",
	}
	fix := commitWith(hashFix, missing, present)
	repo := newMock(fix)
	repo.Blames[hashFix+"^:a.py"] = []git.BlameLine{{Commit: hashC, Text: "x = 1"}}

	got := attribute(t, repo, fix, Options{})
	expectPaths(t, got, "a.py")
}

func TestAttribute_OutOfRangeBlameSkipsFile(t *testing.T) {
	mod := git.Modification{
		OldPath:    "a.py",
		NewPath:    "a.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -5 +5 @@\n-x = 1\n+x = 2\n",
	}
	fix := commitWith(hashFix, mod)
	repo := newMock(fix)
	repo.Blames[hashFix+"^:a.py"] = []git.BlameLine{{Commit: hashA, Text: "x = 1"}}

	got := attribute(t, repo, fix, Options{})
	expectPaths(t, got)
}

func TestAttribute_MalformedDiffAborts(t *testing.T) {
	mod := git.Modification{
		OldPath:    "a.py",
		NewPath:    "a.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -x +1 @@\n-x = 1\n",
	}
	fix := commitWith(hashFix, mod)

	_, err := NewEngine(newMock(fix), nil).Attribute(context.Background(), fix, Options{})
	if !errors.Is(err, diff.ErrMalformedHunk) {
		t.Fatalf("err = %v, expected ErrMalformedHunk", err)
	}
}

func TestAttribute_SingleModification(t *testing.T) {
	first := git.Modification{
		OldPath:    "a.py",
		NewPath:    "a.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -1 +1 @@\n-x = 1\n+x = 2\n",
	}
	second := git.Modification{
		OldPath:    "c.py",
		NewPath:    "c.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -1 +1 @@\n-q = 1\n+q = 2\n",
	}
	fix := commitWith(hashFix, first, second)
	repo := newMock(fix)
	repo.Blames[hashFix+"^:a.py"] = []git.BlameLine{{Commit: hashA, Text: "x = 1"}}
	repo.Blames[hashFix+"^:c.py"] = []git.BlameLine{{Commit: hashB, Text: "q = 1"}}

	got := attribute(t, repo, fix, Options{Modification: &second})
	expectPaths(t, got, "c.py")
}

func TestAttribute_Deterministic(t *testing.T) {
	mod := git.Modification{
		OldPath:    "a.py",
		NewPath:    "a.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -1,3 +1,1 @@\n-x = 1\n-y = 2\n z = 3\n",
	}
	fix := commitWith(hashFix, mod)
	repo := newMock(fix)
	repo.Blames[hashFix+"^:a.py"] = []git.BlameLine{
		{Commit: hashA, Text: "x = 1"},
		{Commit: hashB, Text: "y = 2"},
		{Commit: hashC, Text: "z = 3"},
	}

	engine := NewEngine(repo, nil)
	first, err := engine.LastModifiedLines(context.Background(), fix)
	if err != nil {
		t.Fatalf("LastModifiedLines: %v", err)
	}
	second, err := engine.LastModifiedLines(context.Background(), fix)
	if err != nil {
		t.Fatalf("LastModifiedLines: %v", err)
	}
	if !slices.Equal(first.Paths(), second.Paths()) || !slices.Equal(first.Commits("a.py"), second.Commits("a.py")) {
		t.Fatalf("runs differ: %v vs %v", first, second)
	}
	expectCommits(t, first, "a.py", hashA, hashB)
}

func ignoreFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), ".git-blame-ignore-revs")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func ignoreFixture() (*git.Commit, *git.MockRepository) {
	mod := git.Modification{
		OldPath:    "a.py",
		NewPath:    "a.py",
		ChangeType: git.ModificationModify,
		Diff:       "@@ -1 +1 @@\n-x = 1\n+x = 2\n",
	}
	fix := commitWith(hashFix, mod)
	repo := newMock(fix)
	repo.Blames[hashFix+"^:a.py"] = []git.BlameLine{{Commit: hashC, Text: "x = 1"}}
	repo.IgnoreBlames = map[string][]git.BlameLine{
		hashFix + "^:a.py": {{Commit: hashA, Text: "x = 1"}},
	}
	return fix, repo
}

func TestAttribute_IgnoreAwareBlame(t *testing.T) {
	fix, repo := ignoreFixture()
	repo.IgnoreAware = true
	path := ignoreFile(t, "# formatting\n\n"+hashC+"\n")

	got := attribute(t, repo, fix, Options{UseIgnoreAwareBlame: true, IgnoreRevsPath: path})
	expectCommits(t, got, "a.py", hashA)
	if len(repo.IgnoreCalls) != 1 || !slices.Equal(repo.IgnoreCalls[0], []string{hashC}) {
		t.Fatalf("ignore calls = %v, expected [[%s]]", repo.IgnoreCalls, hashC)
	}
}

func TestAttribute_IgnoreAwareFallsBackWhenUnavailable(t *testing.T) {
	fix, repo := ignoreFixture()
	path := ignoreFile(t, hashC+"\n")

	got := attribute(t, repo, fix, Options{UseIgnoreAwareBlame: true, IgnoreRevsPath: path})
	expectCommits(t, got, "a.py", hashC)
	if len(repo.IgnoreCalls) != 0 {
		t.Fatalf("ignore calls = %v, expected none", repo.IgnoreCalls)
	}
}

func TestAttribute_EmptyIgnoreListUsesOrdinaryBlame(t *testing.T) {
	fix, repo := ignoreFixture()
	repo.IgnoreAware = true
	path := ignoreFile(t, "# nothing yet\n")

	got := attribute(t, repo, fix, Options{UseIgnoreAwareBlame: true, IgnoreRevsPath: path})
	expectCommits(t, got, "a.py", hashC)
	if len(repo.IgnoreCalls) != 0 {
		t.Fatalf("ignore calls = %v, expected none", repo.IgnoreCalls)
	}
}

func TestAttribute_MissingIgnoreFile(t *testing.T) {
	fix, repo := ignoreFixture()
	repo.IgnoreAware = true

	_, err := NewEngine(repo, nil).Attribute(context.Background(), fix, Options{
		UseIgnoreAwareBlame: true,
		IgnoreRevsPath:      filepath.Join(t.TempDir(), "absent"),
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, expected os.ErrNotExist", err)
	}
}

func TestIsUselessLine(t *testing.T) {
	useless := []string{"", "#", "// x", "/* x", "* x", "'''", `"""doc`}
	for _, l := range useless {
		if !IsUselessLine(l) {
			t.Errorf("IsUselessLine(%q) = false, expected true", l)
		}
	}
	useful := []string{"x = 1", "return # trailing", "a / b"}
	for _, l := range useful {
		if IsUselessLine(l) {
			t.Errorf("IsUselessLine(%q) = true, expected false", l)
		}
	}
}

// gitRepo builds a throwaway repository whose single file a.py takes each
// content in turn. It returns the repository and the commit hashes.
func gitRepo(t *testing.T, contents ...string) (*git.Repository, []string) {
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

	when := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	hashes := make([]string, 0, len(contents))
	for i, content := range contents {
		if err := os.WriteFile(filepath.Join(dir, "a.py"), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := wt.Add("a.py"); err != nil {
			t.Fatalf("Add: %v", err)
		}
		when = when.Add(time.Hour)
		sig := &object.Signature{Name: "dev", Email: "dev@example.com", When: when}
		h, err := wt.Commit("change "+string(rune('a'+i)), &gogit.CommitOptions{Author: sig, Committer: sig})
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}
		hashes = append(hashes, h.String())
	}

	r, err := git.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r, hashes
}

func TestAttribute_GoGitRepository(t *testing.T) {
	r, hashes := gitRepo(t, "x = 1\ny = 2\n", "y = 2\n")
	fix, err := r.ResolveCommit(hashes[1])
	if err != nil {
		t.Fatalf("ResolveCommit: %v", err)
	}

	got := attribute(t, r, fix, Options{})
	expectCommits(t, got, "a.py", hashes[0])
}

func TestAttribute_ReformatIsNotBlamed(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
	r, hashes := gitRepo(t, "x=1\ny=2\nz=3\n", "x = 1\ny = 2\nz = 3\n", "x = 1\nz = 3\n")
	fix, err := r.ResolveCommit(hashes[2])
	if err != nil {
		t.Fatalf("ResolveCommit: %v", err)
	}

	got := attribute(t, r, fix, Options{})
	expectCommits(t, got, "a.py", hashes[0])
}
