package daemon

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const onePost = `id,title,date,image,content,tags,readTime,updatedAt
1,Pastel Desk Setup,2025-01-15,,Soft colours,decor,4 min read,2025-01-15T09:00:00Z
`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

// testConfig writes onePost into a temp dir and returns a parsed config
// using it, with every port set to 0.
func testConfig(t *testing.T, extra string) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", "blogs.csv"), onePost)
	cfg, err := config.Parse([]byte(fmt.Sprintf(`site:
  name: Cute Finds
content:
  csv_path: %[1]s/data/blogs.csv
output:
  directory: %[1]s/out
  state_dir: %[1]s/state
%[2]s`, dir, extra)))
	require.NoError(t, err)
	cfg.Preview.Port = 0
	cfg.Daemon.HTTP.Port = 0
	return cfg, dir
}
