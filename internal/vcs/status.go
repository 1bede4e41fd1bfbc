// Package vcs inspects the git working tree around a scan root.
package vcs

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when the path is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Worktree answers status questions for one repository.
type Worktree struct {
	root   string
	status git.Status
}

// Open finds the repository containing path, searching parent directories,
// and snapshots its status.
func Open(path string) (*Worktree, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, ErrNotRepository
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no work tree to protect.
		return nil, ErrNotRepository
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}

	root := wt.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return &Worktree{root: root, status: status}, nil
}

// Root returns the work tree root.
func (w *Worktree) Root() string {
	return w.root
}

// IsDirty reports whether the file at abs has staged, unstaged or untracked
// changes. Such files cannot be restored with a plain `git checkout` after
// an in-place rewrite.
func (w *Worktree) IsDirty(abs string) bool {
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return false
	}
	// Status keys are slash paths; a direct lookup avoids Status.File,
	// which inserts an untracked entry for unknown paths.
	fs, ok := w.status[filepath.ToSlash(rel)]
	if !ok {
		return false
	}
	return fs.Staging != git.Unmodified || fs.Worktree != git.Unmodified
}

// DirtyFiles returns the subset of abs paths that are dirty, in input order.
func (w *Worktree) DirtyFiles(paths []string) []string {
	var out []string
	for _, p := range paths {
		if w.IsDirty(p) {
			out = append(out, p)
		}
	}
	return out
}
