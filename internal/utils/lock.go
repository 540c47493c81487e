package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix = ".lock"
	lockRetryDelay = 50 * time.Millisecond
)

// DBLock serializes writes to the local storage file across shopscope
// processes, e.g. a running web console and a CLI invocation.
type DBLock struct {
	lock *flock.Flock
	path string
}

// NewDBLock creates the lock guarding the storage file at dbPath.
func NewDBLock(dbPath string) (*DBLock, error) {
	absPath, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute db path: %w", err)
	}
	lockPath := absPath + lockFileSuffix
	return &DBLock{
		lock: flock.New(lockPath),
		path: lockPath,
	}, nil
}

// Do runs fn while holding the lock. It waits for other holders until ctx
// is done.
func (l *DBLock) Do(ctx context.Context, fn func() error) error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	if !locked {
		Log.Debugf("Another shopscope process is writing to %s, waiting for it to finish...", l.path)
		if locked, err = l.lock.TryLockContext(ctx, lockRetryDelay); err != nil || !locked {
			return fmt.Errorf("failed to acquire lock on %s after waiting: %w", l.path, err)
		}
	}
	defer l.unlock()
	return fn()
}

func (l *DBLock) unlock() {
	if err := l.lock.Unlock(); err != nil && !os.IsNotExist(err) {
		Log.Warnf("Failed to release lock on %s: %v", l.path, err)
	}
}

// GetAbsDBPath resolves the database path. An empty path means the default
// location under the user's config directory.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "shopscope", "shopscope.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}
