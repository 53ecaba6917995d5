package utils

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	homedir "github.com/mitchellh/go-homedir"
)

// lockRetryDelay is how often a waiting import polls the lock file.
const lockRetryDelay = 250 * time.Millisecond

// DBLock serializes imports into one SQLite file through "<db>.lock".
type DBLock struct {
	lock *flock.Flock
	path string
}

func NewDBLock(dbPath string) (*DBLock, error) {
	absPath, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolving db path: %w", err)
	}
	path := absPath + ".lock"
	return &DBLock{lock: flock.New(path), path: path}, nil
}

// Lock blocks until the lock is held or ctx is done.
func (l *DBLock) Lock(ctx context.Context) error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", l.path, err)
	}
	if ok {
		return nil
	}

	Log.WithField("lock", l.path).Warn("Database is busy with another import, waiting")
	ok, err = l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("waiting for %s: %w", l.path, ctx.Err())
	}
	return nil
}

func (l *DBLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unlocking %s: %w", l.path, err)
	}
	return nil
}

// GetAbsDBPath defaults to ~/.config/upgradefeed/upgrades.sqlite.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "upgradefeed", "upgrades.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}
