package filestore

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watch follows the directory rather than the file: an atomic rename
// replaces the inode, which would silently end a watch on the file itself.
func (s *Store) watch(dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	s.watcher = w

	s.stopped.Add(1)
	go s.watchLoop(w)
	return nil
}

func (s *Store) watchLoop(w *fsnotify.Watcher) {
	defer s.stopped.Done()
	defer w.Close()

	target := filepath.Clean(s.path)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if isTempFile(event.Name) || filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if s.invalidate() {
				s.logger.Debug("Tree file changed on disk",
					zap.String("file", event.Name),
					zap.String("operation", event.Op.String()),
				)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Error("File watcher error", zap.Error(err))

		case <-s.stopCh:
			return
		}
	}
}
