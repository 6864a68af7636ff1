package state

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// PostRecord remembers what was generated for one slug.
type PostRecord struct {
	Fingerprint string    `json:"fingerprint"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// LastRun is the content of lastRun.json.
type LastRun struct {
	LastRun time.Time             `json:"lastRun"`
	Posts   map[string]PostRecord `json:"posts,omitempty"`
}

// Fingerprint returns the stored fingerprint for slug, or "".
func (l LastRun) Fingerprint(slug string) string {
	return l.Posts[slug].Fingerprint
}

// Store reads and writes a LastRun file.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string { return s.path }

// Load returns the previous run. A missing or unreadable file yields the Unix
// epoch so every post is considered new.
func (s *Store) Load() LastRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	epoch := LastRun{LastRun: time.Unix(0, 0).UTC(), Posts: map[string]PostRecord{}}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Cannot read last run state, regenerating everything", logfields.Path(s.path), logfields.Error(err))
		}
		return epoch
	}
	var lr LastRun
	if err := json.Unmarshal(data, &lr); err != nil {
		s.logger.Warn("Corrupt last run state, regenerating everything", logfields.Path(s.path), logfields.Error(err))
		return epoch
	}
	if lr.Posts == nil {
		lr.Posts = map[string]PostRecord{}
	}
	return lr
}

// Save atomically replaces the state file.
func (s *Store) Save(lr LastRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := WriteJSON(s.path, lr); err != nil {
		return ferrors.FileSystemError("save last run state").WithCause(err).
			WithContext("path", s.path).Build()
	}
	return nil
}
