package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("site:\n  name: My Blog\n"))
	require.NoError(t, err)

	assert.Equal(t, "My Blog", cfg.Site.Name)
	assert.Equal(t, DefaultAuthor, cfg.Site.Author)
	assert.Equal(t, DefaultPlaceholderImage, cfg.Site.PlaceholderImage)
	assert.Equal(t, DefaultCSVPath, cfg.Content.CSVPath)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Directory)
	assert.True(t, cfg.Output.Clean)
	assert.Equal(t, 3, cfg.Pagination.PostsPerPage)
	assert.Equal(t, 2, cfg.Pagination.HomeLatest)
	assert.Equal(t, 2, cfg.Pagination.Related)
	assert.Equal(t, 300*time.Millisecond, cfg.Preview.Debounce)
	assert.Equal(t, DefaultInterval, cfg.Daemon.Schedule.Interval)
	assert.Equal(t, ".blogbuilder/events.db", cfg.Daemon.Storage.EventsDB)
	assert.Equal(t, "lastRun.json", cfg.Legacy.LastRunFile)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.True(t, Enabled(cfg.Content.Markdown.HardWraps))
	assert.Nil(t, cfg.Notify.NATS)
}

func TestParseExpandsEnvironment(t *testing.T) {
	t.Setenv("BLOG_TOKEN", "s3cret")
	cfg, err := Parse([]byte(`
content:
  repository:
    url: https://example.com/blog.git
    auth:
      type: token
      token: ${BLOG_TOKEN}
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Content.Repository)
	assert.Equal(t, "s3cret", cfg.Content.Repository.Auth.Token)
	assert.Equal(t, "main", cfg.Content.Repository.Branch)
}

func TestParseNormalizesLogging(t *testing.T) {
	cfg, err := Parse([]byte("logging:\n  level: WARNING\n  format: JSON\n"))
	require.NoError(t, err)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)

	var buf bytes.Buffer
	logger := slog.New(cfg.Logging.NewHandler(&buf, false))
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative page size", "pagination:\n  posts_per_page: -1\n", "posts_per_page"},
		{"relative base url", "site:\n  base_url: example.com\n", "base_url"},
		{"token without value", "content:\n  repository:\n    url: x\n    auth:\n      type: token\n", "token"},
		{"unknown auth type", "content:\n  repository:\n    url: x\n    auth:\n      type: kerberos\n", "type"},
		{"repository without url", "content:\n  repository:\n    branch: main\n", "url"},
		{"bad cron", "daemon:\n  schedule:\n    cron: \"* *\"\n", "cron"},
		{"nats without url", "notify:\n  nats:\n    subject: x\n", "url"},
		{"output root", "output:\n  directory: /\n", "directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("site: [unclosed"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blogbuilder.yaml")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	cfg, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSiteName, cfg.Site.Name)

	require.NoError(t, os.WriteFile(path, []byte("output:\n  directory: public\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "public", cfg.Output.Directory)
	assert.False(t, cfg.Output.Clean)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blogbuilder.yaml")

	require.NoError(t, Init(path, false))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.Site.BaseURL)
	assert.FileExists(t, filepath.Join(dir, "data", "blogs.csv"))
	assert.Equal(t, DefaultAboutPath, cfg.Site.AboutFile)
	about, err := os.ReadFile(filepath.Join(dir, DefaultAboutPath))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(about), "---\ndescription: "))
	assert.Contains(t, string(about), "## Our Story")

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	require.NoError(t, Init(path, true))
}
