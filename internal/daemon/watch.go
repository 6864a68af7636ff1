package daemon

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// watchSet decides which filesystem events trigger a rebuild: changes to
// single files (watched through their parent directory) and anything below
// whole directory trees.
type watchSet struct {
	files  map[string]bool
	trees  []string
	ignore []string // never rebuild for these prefixes, e.g. the output dir
}

func newWatchSet() *watchSet {
	return &watchSet{files: map[string]bool{}}
}

func (w *watchSet) addFile(p string) {
	if p == "" {
		return
	}
	if abs, err := filepath.Abs(p); err == nil {
		w.files[abs] = true
	}
}

func (w *watchSet) addTree(p string) {
	if p == "" {
		return
	}
	if abs, err := filepath.Abs(p); err == nil {
		w.trees = append(w.trees, abs)
	}
}

func (w *watchSet) addIgnore(p string) {
	if p == "" {
		return
	}
	if abs, err := filepath.Abs(p); err == nil {
		w.ignore = append(w.ignore, abs)
	}
}

func within(p, dir string) bool {
	return p == dir || strings.HasPrefix(p, dir+string(filepath.Separator))
}

// relevant reports whether an event on path p should trigger a rebuild.
func (w *watchSet) relevant(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if within(abs, dir) {
			return false
		}
	}
	if w.files[abs] {
		return true
	}
	for _, dir := range w.trees {
		if within(abs, dir) {
			return true
		}
	}
	return false
}

// register adds the parent directories of watched files and every
// directory of the watched trees to the watcher. Missing paths are skipped
// and returned so callers can log them.
func (w *watchSet) register(watcher *fsnotify.Watcher) (missing []string, err error) {
	parents := map[string]bool{}
	for f := range w.files {
		parents[filepath.Dir(f)] = true
	}
	for dir := range parents {
		if addErr := watcher.Add(dir); addErr != nil {
			missing = append(missing, dir)
		}
	}
	for _, root := range w.trees {
		walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			return watcher.Add(p)
		})
		if walkErr != nil {
			if isNotExist(walkErr) {
				missing = append(missing, root)
				continue
			}
			return missing, ferrors.FileSystemError("watch directory").WithCause(walkErr).WithContext("path", root).Build()
		}
	}
	return missing, nil
}

// handleCreate starts watching directories created inside a watched tree.
func (w *watchSet) handleCreate(watcher *fsnotify.Watcher, p string) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return
	}
	for _, root := range w.trees {
		if within(abs, root) {
			_ = filepath.WalkDir(abs, func(sub string, d fs.DirEntry, err error) error {
				if err == nil && d.IsDir() {
					_ = watcher.Add(sub)
				}
				return nil
			})
			return
		}
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
