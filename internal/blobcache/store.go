package blobcache

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"streamcheck/internal/logging"
)

const lockFileName = ".lock"

// Store reads and writes raw blobs under a root directory. A nil Store is a
// valid, permanently empty cache.
type Store struct {
	root   string
	logger *slog.Logger

	mu   sync.Mutex
	lock *flock.Flock
}

// New initialises a store rooted at dir.
func New(dir string, logger *slog.Logger) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{
		root:   abs,
		logger: logging.NewComponentLogger(logger, "cache"),
		lock:   flock.New(filepath.Join(abs, lockFileName)),
	}, nil
}

// Dir exposes the backing directory for inspection.
func (s *Store) Dir() string {
	if s == nil {
		return ""
	}
	return s.root
}

// Path maps a key to its file path. ok is false for keys that would escape the root.
func (s *Store) Path(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	rel := filepath.FromSlash(strings.TrimSpace(key))
	if rel == "" || !filepath.IsLocal(rel) || rel == lockFileName {
		return "", false
	}
	return filepath.Join(s.root, rel), true
}

// ReadBytes returns the blob stored under key.
func (s *Store) ReadBytes(key string) ([]byte, bool) {
	path, ok := s.Path(key)
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("cache read failed; treating as miss",
				logging.String("key", key),
				logging.Error(err))
		}
		return nil, false
	}
	return data, true
}

// WriteBytes stores data under key, replacing any previous blob.
func (s *Store) WriteBytes(key string, data []byte) error {
	if s == nil {
		return nil
	}
	path, ok := s.Path(key)
	if !ok {
		return fmt.Errorf("invalid cache key %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release cache lock", logging.Error(err))
		}
	}()

	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return err
	}
	s.logger.Debug("cache stored",
		logging.String("key", key),
		logging.Int("bytes", len(data)))
	return nil
}

func isNullDocument(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Clear removes the given namespace directories under the lock. Missing
// namespaces are ignored.
func (s *Store) Clear(namespaces ...string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release cache lock", logging.Error(err))
		}
	}()

	for _, ns := range namespaces {
		path, ok := s.Path(ns)
		if !ok {
			return fmt.Errorf("invalid cache namespace %q", ns)
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove %s: %w", ns, err)
		}
		s.logger.Debug("cache namespace cleared", logging.String("namespace", ns))
	}
	return nil
}
