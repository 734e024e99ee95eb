package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store is a catalog database handle.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// ErrLocked is returned when another writer holds the catalog.
var ErrLocked = errors.New("catalog is locked by another writer")

// Writes that hit SQLITE_BUSY are retried with doubling waits. The
// busy_timeout pragma covers most contention, this handles the rest.
var busyWaits = []time.Duration{
	10 * time.Millisecond,
	20 * time.Millisecond,
	40 * time.Millisecond,
	80 * time.Millisecond,
}

func busy(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_BUSY
	}
	return false
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	for _, wait := range busyWaits {
		if !busy(err) {
			break
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		res, err = s.db.ExecContext(ctx, query, args...)
	}
	return res, err
}

// LockPath returns the advisory lock file guarding the catalog at path.
func LockPath(path string) string { return path + ".lock" }

// connPragmas are applied by the driver to every pooled connection.
var connPragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
}

func dsn(path string) string {
	q := url.Values{"_pragma": connPragmas}
	return path + "?" + q.Encode()
}

func ensureParent(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("catalog path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure catalog directory: %w", err)
	}
	return nil
}

// Open connects to the catalog at path, creating it if needed. It does not
// take the writer lock; use OpenWriter for batch runs.
func Open(path string) (*Store, error) {
	if err := ensureParent(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenWriter opens the catalog holding its advisory lock. It returns
// ErrLocked without waiting when another process holds it.
func OpenWriter(path string) (*Store, error) {
	if err := ensureParent(path); err != nil {
		return nil, err
	}
	lock := flock.New(LockPath(path))
	switch ok, err := lock.TryLock(); {
	case err != nil:
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	case !ok:
		return nil, ErrLocked
	}
	store, err := Open(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	store.lock = lock
	return store, nil
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Close closes the database and releases the writer lock if held.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("release catalog lock: %w", unlockErr)
		}
	}
	return err
}
