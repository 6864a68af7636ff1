package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Manager owns a workspace directory.
type Manager struct {
	baseDir    string
	dir        string
	persistent bool
	logger     *slog.Logger
	now        func() time.Time
}

// NewManager creates a manager handing out timestamped directories under baseDir.
func NewManager(baseDir string, logger *slog.Logger) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir, logger: orDefault(logger), now: time.Now}
}

// NewPersistentManager creates a manager for the fixed directory dir.
// Cleanup keeps it so the next sync can pull instead of clone.
func NewPersistentManager(dir string, logger *slog.Logger) *Manager {
	return &Manager{baseDir: filepath.Dir(dir), dir: dir, persistent: true, logger: orDefault(logger), now: time.Now}
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// Create ensures the workspace directory exists and returns its path.
func (m *Manager) Create() (string, error) {
	if m.persistent {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return "", errors.FileSystemError("create persistent workspace").
				WithCause(err).WithContext("path", m.dir).Build()
		}
		m.logger.Debug("Using persistent workspace", logfields.Path(m.dir))
		return m.dir, nil
	}

	dir := filepath.Join(m.baseDir, fmt.Sprintf("blogbuilder-%s", m.now().Format("20060102-150405.000")))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.FileSystemError("create workspace").
			WithCause(err).WithContext("path", dir).Build()
	}
	m.dir = dir
	m.logger.Info("Created workspace", logfields.Path(dir))
	return dir, nil
}

// Path returns the workspace directory ("" before Create for ephemeral managers).
func (m *Manager) Path() string { return m.dir }

// Persistent reports whether Cleanup keeps the directory.
func (m *Manager) Persistent() bool { return m.persistent }

// Cleanup removes an ephemeral workspace. Persistent workspaces are kept.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if m.persistent {
		m.logger.Debug("Keeping persistent workspace", logfields.Path(m.dir))
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return errors.FileSystemError("cleanup workspace").
			WithCause(err).WithContext("path", m.dir).Build()
	}
	m.logger.Info("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
