package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"rewatch/internal/fileutil"
	"rewatch/internal/logging"
	"rewatch/internal/services"
)

const lockRetryDelay = 100 * time.Millisecond

// ErrLocked is returned when another process holds the catalog lock.
var ErrLocked = errors.New("catalog is locked by another process")

// Store reads and writes the catalog file.
type Store struct {
	path   string
	backup bool
	logger *slog.Logger
	lock   *flock.Flock
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithBackup keeps a copy of the previous file at <path>.bak before each save.
func WithBackup(enabled bool) StoreOption {
	return func(s *Store) { s.backup = enabled }
}

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore constructs a Store for the catalog at path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:   path,
		logger: logging.NewNop(),
		lock:   flock.New(path + ".lock"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "catalog")
	return s
}

// Path returns the catalog file location.
func (s *Store) Path() string {
	return s.path
}

// Lock acquires the advisory lock, polling until ctx is done. The returned
// function releases it.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrPersistence, "catalog", "lock", ErrLocked.Error(), ctx.Err())
		}
		return nil, services.Wrap(services.ErrPersistence, "catalog", "lock", "acquire lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrPersistence, "catalog", "lock", ErrLocked.Error(), ErrLocked)
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			logging.WarnWithContext(s.logger, "catalog unlock failed", "catalog_unlock_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+s.path+".lock if no rewatch process is running"),
				logging.String(logging.FieldImpact, "later runs may wait for the lock"))
		}
	}, nil
}

// Load reads the catalog. A missing file yields an empty catalog.
func (s *Store) Load(_ context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("catalog file not found; starting empty",
				logging.String("path", s.path),
				logging.String(logging.FieldEventType, "catalog_missing"))
			return &Catalog{Episodes: []Entry{}}, nil
		}
		return nil, services.Wrap(services.ErrPersistence, "catalog", "load", "read catalog", err)
	}
	cat, err := Decode(data)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "catalog", "load", s.path, err)
	}
	s.logger.Debug("catalog loaded",
		logging.String("path", s.path),
		logging.Int("episodes", cat.Len()))
	return cat, nil
}

// Save validates and atomically writes the catalog, optionally keeping a
// backup of the file it replaces.
func (s *Store) Save(_ context.Context, cat *Catalog) error {
	if cat == nil {
		return services.Wrap(services.ErrPersistence, "catalog", "save", "nil catalog", nil)
	}
	if err := cat.Validate(); err != nil {
		return services.Wrap(services.ErrPersistence, "catalog", "save", "validate", err)
	}
	data, err := Encode(cat)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "catalog", "save", "encode", err)
	}

	if s.backup {
		if err := fileutil.CopyFile(s.path, s.path+".bak", 0o644); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrPersistence, "catalog", "save", "write backup", err)
		}
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return services.Wrap(services.ErrPersistence, "catalog", "save", "write catalog", err)
	}

	s.logger.Info("catalog saved",
		logging.String("path", s.path),
		logging.Int("episodes", cat.Len()),
		logging.String(logging.FieldEventType, "catalog_saved"))
	return nil
}

// Decode parses a catalog document.
func Decode(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	cat.normalize()
	return &cat, nil
}

// Encode renders the catalog with two-space indentation and a trailing newline.
func Encode(cat *Catalog) ([]byte, error) {
	clone := cat.Clone()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(clone); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
