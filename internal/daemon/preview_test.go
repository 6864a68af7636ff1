package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
)

func TestPreviewRebuildsOnChange(t *testing.T) {
	cfg, dir := testConfig(t, "")
	b := build.New(cfg, build.Options{LiveReload: true, Logger: quiet})

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- RunPreview(ctx, b, PreviewOptions{Debounce: 30 * time.Millisecond, Logger: quiet}) }()

	out := cfg.Output.Directory
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(out, "posts", "pastel-desk-setup.html"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	page, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), `src="/livereload.js"`)

	// Give the watcher time to register before editing.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "data", "blogs.csv"), onePost+
		"2,Cute Tech Gadgets,2025-02-01,,Pink keyboards,tech,3 min read,2025-02-01T09:00:00Z\n")

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(out, "posts", "cute-tech-gadgets.html"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("preview did not stop")
	}
}
