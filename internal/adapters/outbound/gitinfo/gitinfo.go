package gitinfo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
)

// GitInfoAdapter implements domain.GitInfo using go-git.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

// Revision returns the HEAD commit of the repository containing projectPath
// and whether the worktree has changes. Outside a repository, or in one
// without commits, it returns the zero revision and no error.
func (g *GitInfoAdapter) Revision(projectPath string) (domain.ProjectRevision, error) {
	repo, err := git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return domain.ProjectRevision{}, nil
		}
		return domain.ProjectRevision{}, fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return domain.ProjectRevision{}, nil
	}
	rev := domain.ProjectRevision{Commit: head.Hash().String()}

	wt, err := repo.Worktree()
	if err != nil {
		return rev, nil
	}
	status, err := wt.Status()
	if err != nil {
		return rev, fmt.Errorf("getting worktree status: %w", err)
	}
	rev.Dirty = !status.IsClean()
	return rev, nil
}

var _ domain.GitInfo = (*GitInfoAdapter)(nil)
