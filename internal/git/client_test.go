package git

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/retry"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func commitFile(t *testing.T, r *git.Repository, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

// newRemote creates a bare remote seeded from a working repository.
func newRemote(t *testing.T) (bare string, seed *git.Repository, seedPath string) {
	t.Helper()
	tmp := t.TempDir()
	bare = filepath.Join(tmp, "remote.git")
	_, err := git.PlainInit(bare, true)
	require.NoError(t, err)

	seedPath = filepath.Join(tmp, "seed")
	seed, err = git.PlainInit(seedPath, false)
	require.NoError(t, err)
	_, err = seed.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{bare}})
	require.NoError(t, err)
	commitFile(t, seed, seedPath, "blogs.csv", "id,title\n1,First\n")
	require.NoError(t, seed.Push(&git.PushOptions{RemoteName: "origin"}))
	return bare, seed, seedPath
}

func TestSyncClonesThenPulls(t *testing.T) {
	bare, seed, seedPath := newRemote(t)
	checkout := filepath.Join(t.TempDir(), "repo")
	client := NewClient(retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 0), quiet)
	repo := Repository{URL: bare, Path: checkout}

	res, err := client.Sync(t.Context(), repo)
	require.NoError(t, err)
	assert.True(t, res.Cloned)
	assert.FileExists(t, filepath.Join(checkout, "blogs.csv"))

	res, err = client.Sync(t.Context(), repo)
	require.NoError(t, err)
	assert.False(t, res.Cloned)
	assert.False(t, res.Updated, "nothing new upstream")

	commitFile(t, seed, seedPath, "blogs.csv", "id,title\n1,First\n2,Second\n")
	require.NoError(t, seed.Push(&git.PushOptions{RemoteName: "origin"}))
	head, err := seed.Head()
	require.NoError(t, err)

	res, err = client.Sync(t.Context(), repo)
	require.NoError(t, err)
	assert.True(t, res.Updated)
	assert.Equal(t, head.Hash().String(), res.Commit)
	data, err := os.ReadFile(filepath.Join(checkout, "blogs.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Second")
}

func TestSyncMissingRepository(t *testing.T) {
	client := NewClient(retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 2), quiet)
	_, err := client.Sync(t.Context(), Repository{
		URL:  filepath.Join(t.TempDir(), "does-not-exist"),
		Path: filepath.Join(t.TempDir(), "repo"),
	})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryGit))
}

func TestAuthMethod(t *testing.T) {
	m, err := AuthMethod(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = AuthMethod(&config.AuthConfig{Type: config.AuthTypeToken, Token: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "http-basic-auth", m.Name())

	_, err = AuthMethod(&config.AuthConfig{Type: config.AuthTypeBasic, Username: "u"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	_, err = AuthMethod(&config.AuthConfig{Type: config.AuthTypeSSH, KeyPath: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	repo := FromConfig(&config.RepositoryConfig{URL: "https://example.com/blog.git", Branch: "main", WorkspaceDir: "/tmp/ws"})
	assert.Equal(t, Repository{URL: "https://example.com/blog.git", Branch: "main", Path: "/tmp/ws"}, repo)
}
