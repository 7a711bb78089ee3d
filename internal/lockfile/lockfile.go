// Package lockfile serializes launches of the same executable across
// processes with an advisory file lock per executable.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const retryDelay = 100 * time.Millisecond

type Locker struct {
	dir string
}

func New(dir string) *Locker {
	return &Locker{dir: dir}
}

// Path returns the lock file used for exePath: <dir>/<basename>.lock.
func (l *Locker) Path(exePath string) string {
	name := strings.ToLower(filepath.Base(exePath))
	return filepath.Join(l.dir, name+".lock")
}

// Acquire blocks until the lock for exePath is held or ctx is done.
// The holder's pid is written into the lock file.
func (l *Locker) Acquire(ctx context.Context, exePath string) (func() error, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	path := l.Path(exePath)
	lock := flock.New(path)

	locked, err := lock.TryLockContext(ctx, retryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock acquisition failed: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("launch lock held: %s", path)
	}

	if err := os.WriteFile(path, fmt.Appendf([]byte{}, "%d", os.Getpid()), 0644); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("writing lock holder: %w", err)
	}

	return lock.Unlock, nil
}

// Holder returns the pid recorded by the last process that took the lock
// for exePath, 0 if none.
func (l *Locker) Holder(exePath string) (int, error) {
	data, err := os.ReadFile(l.Path(exePath))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read lock file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return 0, nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in lock file: %w", err)
	}
	return pid, nil
}
