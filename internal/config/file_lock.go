package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
)

const (
	// Config writes are tiny, so a holder past this deadline is a stale
	// lock left by a crashed writer.
	lockAcquireTimeout = 5 * time.Second
	lockRetryDelay     = 50 * time.Millisecond
)

// FileLock serializes config file writes across processes. Acquisition
// polls with a deadline instead of blocking indefinitely.
type FileLock struct {
	filePath string
	timeout  time.Duration
	flock    *flock.Flock
}

// NewFileLock creates a lock guarding the config file at the given path
func NewFileLock(filePath string) *FileLock {
	slog.Debug("creating config file lock", "file_path", filePath)

	return &FileLock{
		filePath: filePath,
		timeout:  lockAcquireTimeout,
		flock:    flock.New(filePath),
	}
}

// Lock acquires the exclusive lock, retrying until the deadline passes
func (fl *FileLock) Lock() error {
	slog.Debug("acquiring config file lock", "file_path", fl.filePath)

	ctx, cancel := context.WithTimeout(context.Background(), fl.timeout)
	defer cancel()

	if _, err := fl.flock.TryLockContext(ctx, lockRetryDelay); err != nil {
		slog.Error("failed to acquire config file lock",
			"file_path", fl.filePath,
			"timeout", fl.timeout,
			"error", err)
		return fmt.Errorf("failed to lock %s: %w", fl.filePath, err)
	}

	slog.Debug("config file lock acquired", "file_path", fl.filePath)
	return nil
}

// Unlock releases the file lock
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		slog.Error("failed to release config file lock",
			"file_path", fl.filePath,
			"error", err)
		return err
	}

	slog.Debug("config file lock released", "file_path", fl.filePath)
	return nil
}
