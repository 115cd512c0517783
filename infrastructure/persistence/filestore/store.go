// Package filestore keeps the tree document as a single JSON file on disk.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/stoat/Mewton-family-tree/application/ports"
	"github.com/stoat/Mewton-family-tree/domain/tree"
	"github.com/stoat/Mewton-family-tree/infrastructure/persistence"
	apperrors "github.com/stoat/Mewton-family-tree/pkg/errors"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Backend names this store in logs and metrics.
const Backend = "file"

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Options configures where the document lives.
type Options struct {
	// Dir is created when absent.
	Dir string
	// FileName defaults to tree.json.
	FileName string
	// SeedPath is copied into place on first start when it exists.
	SeedPath string
	// Watch enables invalidation of the cached document when the file is
	// changed by another process.
	Watch bool
}

// Store implements ports.TreeStore on top of a file.
type Store struct {
	path     string
	seedPath string
	logger   *zap.Logger
	bg       *persistence.Background

	mu     sync.RWMutex
	cached []byte

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	stopped sync.WaitGroup
}

var _ ports.TreeStore = (*Store)(nil)

// Open prepares the storage location and makes sure a document exists.
// Any failure here is a StorageUnavailable error; the server must not start.
func Open(ctx context.Context, opts Options, logger *zap.Logger, observer ports.StoreObserver) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FileName == "" {
		opts.FileName = "tree.json"
	}
	if err := os.MkdirAll(opts.Dir, dirPerm); err != nil {
		return nil, apperrors.NewStorageUnavailableError(opts.Dir, err)
	}

	s := &Store{
		path:     filepath.Join(opts.Dir, opts.FileName),
		seedPath: opts.SeedPath,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
	s.bg = persistence.NewBackground(Backend, func(_ context.Context, doc []byte) error {
		return writeFileAtomic(s.path, doc, filePerm)
	}, logger, observer)

	if _, err := s.Load(ctx); err != nil {
		return nil, apperrors.NewStorageUnavailableError(s.path, err)
	}

	if opts.Watch {
		if err := s.watch(opts.Dir); err != nil {
			// The store works without the watcher; only external edits go unseen.
			logger.Warn("Failed to watch tree file", zap.String("path", s.path), zap.Error(err))
		}
	}

	logger.Info("File store ready", zap.String("path", s.path), zap.Bool("watch", s.watcher != nil))
	return s, nil
}

// Path returns the location of the document.
func (s *Store) Path() string {
	return s.path
}

// Load implements ports.TreeStore.
func (s *Store) Load(ctx context.Context) (json.RawMessage, error) {
	s.mu.RLock()
	if s.cached != nil {
		doc := clone(s.cached)
		s.mu.RUnlock()
		return doc, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return clone(s.cached), nil
	}

	doc, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc, err = s.initialize()
	}
	if err != nil {
		return nil, err
	}
	s.cached = doc
	return clone(doc), nil
}

// initialize writes the first document: the seed file when one is present,
// otherwise the empty tree.
func (s *Store) initialize() ([]byte, error) {
	doc, err := s.seed()
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(s.path, doc, filePerm); err != nil {
		return nil, err
	}
	s.logger.Info("Initialized tree file", zap.String("path", s.path), zap.Int("bytes", len(doc)))
	return doc, nil
}

func (s *Store) seed() ([]byte, error) {
	if s.seedPath != "" {
		doc, err := os.ReadFile(s.seedPath)
		switch {
		case err == nil:
			s.logger.Info("Seeding tree from file", zap.String("seed", s.seedPath))
			return doc, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read seed %s: %w", s.seedPath, err)
		}
	}
	return tree.Encode(tree.Empty())
}

// Save implements ports.TreeStore. The document becomes visible to Load
// immediately; the file is written in the background.
func (s *Store) Save(ctx context.Context, doc json.RawMessage) error {
	s.mu.Lock()
	s.cached = clone(doc)
	s.mu.Unlock()

	return s.bg.Submit(doc)
}

// Flush implements ports.TreeStore.
func (s *Store) Flush(ctx context.Context) error {
	return s.bg.Wait(ctx)
}

// Close implements ports.TreeStore.
func (s *Store) Close(ctx context.Context) error {
	if s.watcher != nil {
		close(s.stopCh)
		s.stopped.Wait()
		s.watcher = nil
	}
	return s.bg.Close(ctx)
}

// invalidate drops the cached copy so the next Load reads the file. Events
// caused by our own pending writes are ignored, otherwise a slow write could
// make Load return an older document than the one last saved.
func (s *Store) invalidate() bool {
	if s.bg.Pending() > 0 {
		return false
	}
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
	return true
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
