// SPDX-License-Identifier: MPL-2.0

package fslock

import (
	"context"
	"crypto/md5" //nolint:gosec // lock names must match other ham installations on the host
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	// lockPrefix is the well-known lock directory prefix shared by all ham processes.
	lockPrefix = "ham.lock."

	// DefaultPollInterval is how often Acquire retries a contended lock.
	DefaultPollInterval = 50 * time.Millisecond
)

// ErrLocked is returned when the lock is held by another holder.
var ErrLocked = errors.New("lock is held by another process")

type (
	// Lock is a held lock. The zero value and nil are already released.
	Lock struct {
		path string
	}

	// CannotAcquireLockError is returned when the lock directory cannot be created.
	CannotAcquireLockError struct {
		Path string
		Err  error
	}
)

// Path returns the lock directory path for identity under tempRoot.
// An empty tempRoot means os.TempDir().
func Path(tempRoot, identity string) string {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	sum := md5.Sum([]byte(identity)) //nolint:gosec // naming only
	return filepath.Join(tempRoot, lockPrefix+hex.EncodeToString(sum[:]))
}

// TryAcquire makes a single attempt to take the lock. A contended lock
// yields a CannotAcquireLockError wrapping ErrLocked.
func TryAcquire(tempRoot, identity string) (*Lock, error) {
	lockPath := Path(tempRoot, identity)
	if err := os.Mkdir(lockPath, 0o700); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, &CannotAcquireLockError{Path: lockPath, Err: ErrLocked}
		}
		return nil, &CannotAcquireLockError{Path: lockPath, Err: err}
	}
	return &Lock{path: lockPath}, nil
}

// Acquire polls TryAcquire until it succeeds, ctx is done, or wait elapses.
// A wait of zero or less makes exactly one attempt.
func Acquire(ctx context.Context, tempRoot, identity string, wait time.Duration) (*Lock, error) {
	lock, err := TryAcquire(tempRoot, identity)
	if err == nil || wait <= 0 || !errors.Is(err, ErrLocked) {
		return lock, err
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(DefaultPollInterval)
	defer ticker.Stop()

	slog.Debug("waiting for lock", "path", Path(tempRoot, identity), "wait", wait)
	for {
		select {
		case <-ctx.Done():
			return nil, err
		case <-ticker.C:
			lock, err = TryAcquire(tempRoot, identity)
			if err == nil || !errors.Is(err, ErrLocked) {
				return lock, err
			}
		}
	}
}

// Path returns the lock directory, or "" once released.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release removes the lock directory. It is safe to call multiple times and
// on a nil receiver; subsequent calls are no-ops.
func (l *Lock) Release() {
	if l == nil || l.path == "" {
		return
	}
	if err := os.RemoveAll(l.path); err != nil {
		slog.Debug("lock release failed", "path", l.path, "error", err)
	}
	l.path = ""
}

// Error implements the error interface.
func (e *CannotAcquireLockError) Error() string {
	return fmt.Sprintf("cannot acquire lock %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CannotAcquireLockError) Unwrap() error { return e.Err }
