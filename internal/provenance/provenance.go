// Package provenance identifies the configuration revision behind a
// run, so a result set can be traced back to the exact pipeline and
// filter definitions that produced it.
package provenance

import (
	"errors"
	"fmt"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// Info describes the repository state containing the run configuration.
type Info struct {
	Commit string
	Branch string
}

// ErrNoRepository means the config path is not inside a git repository;
// callers typically log and continue.
var ErrNoRepository = errors.New("no git repository found")

// Describe resolves the HEAD commit of the repository containing path.
func Describe(path string) (*Info, error) {
	dir := filepath.Dir(path)
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNoRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	return &Info{
		Commit: head.Hash().String(),
		Branch: head.Name().Short(),
	}, nil
}
