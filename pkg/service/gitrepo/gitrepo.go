// Package gitrepo resolves commit timestamps from a local git repository.
package gitrepo

import (
	"context"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
)

// Resolver implements interfaces.CommitResolver with go-git
type Resolver struct {
	path string
	repo *git.Repository
	// go-git object storage is not safe for concurrent reads
	mu sync.Mutex
}

// Open opens the repository at path, or at the nearest parent holding a .git
func Open(path string) (*Resolver, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open git repository", goerr.V("path", path))
	}
	return &Resolver{path: path, repo: repo}, nil
}

// CommitTime returns the committer timestamp of commit, with its original
// timezone. Abbreviated hashes are accepted.
func (r *Resolver) CommitTime(ctx context.Context, commit types.CommitHash) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, goerr.Wrap(err, "context done before commit lookup")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hash, err := r.repo.ResolveRevision(plumbing.Revision(commit.String()))
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "failed to resolve commit",
			goerr.V("commit", commit),
			goerr.V("repo", r.path))
	}

	obj, err := r.repo.CommitObject(*hash)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "failed to read commit object",
			goerr.V("commit", commit),
			goerr.V("repo", r.path))
	}

	return obj.Committer.When, nil
}
