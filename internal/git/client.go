package git

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/retry"
)

// Repository identifies the content repository and where to check it out.
type Repository struct {
	URL    string
	Branch string // empty clones the remote HEAD
	Auth   *config.AuthConfig
	Path   string // local checkout directory
}

// FromConfig builds a Repository from configuration.
func FromConfig(rc *config.RepositoryConfig) Repository {
	return Repository{URL: rc.URL, Branch: rc.Branch, Auth: rc.Auth, Path: rc.WorkspaceDir}
}

// SyncResult describes what a sync did.
type SyncResult struct {
	Path     string
	Commit   string
	Cloned   bool
	Updated  bool
	Duration time.Duration
}

// Client clones and updates repositories.
type Client struct {
	policy retry.Policy
	logger *slog.Logger
}

// NewClient creates a client retrying transient failures with policy.
func NewClient(policy retry.Policy, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{policy: policy, logger: logger}
}

// Sync clones repo.Path when it holds no repository yet, otherwise pulls.
func (c *Client) Sync(ctx context.Context, repo Repository) (SyncResult, error) {
	start := time.Now()
	var res SyncResult
	err := c.policy.Do(ctx, isRetryable, func(attempt int, err error, wait time.Duration) {
		c.logger.Warn("Retrying git sync",
			logfields.Repository(repo.URL),
			slog.Int("attempt", attempt),
			logfields.Duration(wait),
			logfields.Error(err))
	}, func() error {
		var err error
		res, err = c.syncOnce(ctx, repo)
		return err
	})
	res.Duration = time.Since(start)
	return res, err
}

func (c *Client) syncOnce(ctx context.Context, repo Repository) (SyncResult, error) {
	if _, err := os.Stat(filepath.Join(repo.Path, ".git")); err != nil {
		return c.clone(ctx, repo)
	}
	return c.pull(ctx, repo)
}

func (c *Client) clone(ctx context.Context, repo Repository) (SyncResult, error) {
	c.logger.Debug("Cloning repository", logfields.Repository(repo.URL), logfields.Branch(repo.Branch), logfields.Path(repo.Path))
	if err := os.RemoveAll(repo.Path); err != nil {
		return SyncResult{}, errors.FileSystemError("clear clone directory").
			WithCause(err).WithContext("path", repo.Path).Build()
	}

	auth, err := AuthMethod(repo.Auth)
	if err != nil {
		return SyncResult{}, err
	}
	opts := &git.CloneOptions{URL: repo.URL, Auth: auth}
	if repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(repo.Branch)
		opts.SingleBranch = true
	}
	r, err := git.PlainCloneContext(ctx, repo.Path, false, opts)
	if err != nil {
		return SyncResult{}, classify("clone", repo, err)
	}
	commit := headCommit(r)
	c.logger.Info("Repository cloned", logfields.Repository(repo.URL), slog.String("commit", short(commit)), logfields.Path(repo.Path))
	return SyncResult{Path: repo.Path, Commit: commit, Cloned: true, Updated: true}, nil
}

func (c *Client) pull(ctx context.Context, repo Repository) (SyncResult, error) {
	r, err := git.PlainOpen(repo.Path)
	if err != nil {
		return SyncResult{}, errors.GitError("open repository").
			WithCause(err).WithContext("path", repo.Path).Build()
	}
	wt, err := r.Worktree()
	if err != nil {
		return SyncResult{}, errors.GitError("open worktree").WithCause(err).Build()
	}
	auth, err := AuthMethod(repo.Auth)
	if err != nil {
		return SyncResult{}, err
	}
	before := headCommit(r)

	opts := &git.PullOptions{RemoteName: "origin", Auth: auth, Force: true}
	if repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(repo.Branch)
		opts.SingleBranch = true
	}
	err = wt.PullContext(ctx, opts)
	if stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		c.logger.Debug("Repository already up to date", logfields.Repository(repo.URL))
		return SyncResult{Path: repo.Path, Commit: before}, nil
	}
	if err != nil {
		return SyncResult{}, classify("pull", repo, err)
	}
	after := headCommit(r)
	c.logger.Info("Repository updated", logfields.Repository(repo.URL), slog.String("commit", short(after)))
	return SyncResult{Path: repo.Path, Commit: after, Updated: after != before}, nil
}

func headCommit(r *git.Repository) string {
	ref, err := r.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

// classify maps go-git failures onto error categories. Authentication,
// missing repositories and non-fast-forward updates need the user.
func classify(op string, repo Repository, err error) error {
	b := errors.GitError(op+" repository").
		WithCause(err).
		WithContext("url", repo.URL).
		WithContext("branch", repo.Branch)

	msg := strings.ToLower(err.Error())
	switch {
	case stderrors.Is(err, transport.ErrAuthenticationRequired),
		stderrors.Is(err, transport.ErrAuthorizationFailed),
		strings.Contains(msg, "authentication"):
		b = b.UserAction().WithContext("reason", "auth")
	case stderrors.Is(err, transport.ErrRepositoryNotFound),
		strings.Contains(msg, "repository does not exist"),
		strings.Contains(msg, "couldn't find remote ref"):
		b = b.UserAction().WithContext("reason", "not_found")
	case stderrors.Is(err, git.ErrNonFastForwardUpdate):
		b = b.UserAction().WithContext("reason", "diverged")
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		b = b.WithRetry(errors.RetryNever)
	}
	return b.Build()
}

func isRetryable(err error) bool {
	ce, ok := errors.AsClassified(err)
	if !ok {
		return false
	}
	return ce.CanRetry()
}
