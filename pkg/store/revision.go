package store

import (
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// Revision returns the HEAD commit hash of the git repository containing
// path, or "" when path is not inside a repository or HEAD has no commit.
// In-memory sources (memory://...) have no revision.
func Revision(path string) string {
	if path == "" || strings.Contains(path, "://") {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	repo, err := gogit.PlainOpenWithOptions(filepath.Dir(abs), &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}
