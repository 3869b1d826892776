package gitrepo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/service/gitrepo"
)

func commitAt(t *testing.T, dir string, wt *git.Worktree, name string, when time.Time) types.CommitHash {
	t.Helper()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	_, err := wt.Add(name)
	gt.NoError(t, err)

	sig := &object.Signature{Name: "dev", Email: "dev@example.com", When: when}
	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	gt.NoError(t, err)
	return types.CommitHash(hash.String())
}

func TestResolver(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	gt.NoError(t, err)
	wt, err := repo.Worktree()
	gt.NoError(t, err)

	brt := time.FixedZone("", -3*60*60)
	first := time.Date(2025, 11, 10, 14, 30, 0, 0, brt)
	second := time.Date(2025, 11, 24, 9, 0, 0, 0, time.UTC)
	h1 := commitAt(t, dir, wt, "a.txt", first)
	h2 := commitAt(t, dir, wt, "b.txt", second)

	resolver, err := gitrepo.Open(dir)
	gt.NoError(t, err)
	ctx := context.Background()

	t.Run("full hash", func(t *testing.T) {
		ts, err := resolver.CommitTime(ctx, h1)
		gt.NoError(t, err)
		gt.True(t, ts.Equal(first))
		_, offset := ts.Zone()
		gt.Equal(t, offset, -3*60*60)
	})

	t.Run("abbreviated hash", func(t *testing.T) {
		ts, err := resolver.CommitTime(ctx, types.CommitHash(h2.String()[:10]))
		gt.NoError(t, err)
		gt.True(t, ts.Equal(second))
	})

	t.Run("unknown commit", func(t *testing.T) {
		_, err := resolver.CommitTime(ctx, "0123456789abcdef0123456789abcdef01234567")
		gt.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := resolver.CommitTime(cctx, h1)
		gt.Error(t, err)
	})

	t.Run("open from subdirectory", func(t *testing.T) {
		sub := filepath.Join(dir, "nested")
		gt.NoError(t, os.MkdirAll(sub, 0o755))
		r, err := gitrepo.Open(sub)
		gt.NoError(t, err)
		ts, err := r.CommitTime(ctx, h2)
		gt.NoError(t, err)
		gt.True(t, ts.Equal(second))
	})
}

func TestOpenNotARepository(t *testing.T) {
	_, err := gitrepo.Open(t.TempDir())
	gt.Error(t, err)
}
