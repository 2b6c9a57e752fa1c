package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/logger"
)

var findProcessFunc = ps.FindProcess

// ErrLockTimeout is returned when another process holds the store lock for too long
var ErrLockTimeout = errors.New("timed out waiting for storage lock")

// fileLock is an exclusive lockfile holding the owner's PID. A lockfile whose
// PID no longer names a running process is treated as stale and removed.
type fileLock struct {
	path string
}

func newFileLock(path string) *fileLock {
	return &fileLock{path: path}
}

func (l *fileLock) Acquire(ctx context.Context) error {
	deadline := time.Now().Add(constants.LockAcquireTimeout)
	for {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(l.path)
				return fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lockfile: %w", err)
		}

		if l.isStale() {
			logger.Warn("Removing stale storage lock", "path", l.path)
			if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove stale lockfile: %w", err)
			}
			continue
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", ErrLockTimeout, l.path)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(constants.LockRetryDelay):
		}
	}
}

func (l *fileLock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release lockfile: %w", err)
	}
	return nil
}

// isStale reports whether the lockfile's owner is gone. A lockfile without a
// readable PID is stale once it is older than the acquire timeout, which
// covers a crash between creating the file and writing the PID.
func (l *fileLock) isStale() bool {
	info, err := os.Stat(l.path)
	if err != nil {
		return false
	}
	content, err := os.ReadFile(l.path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return time.Since(info.ModTime()) > constants.LockAcquireTimeout
	}
	if pid == os.Getpid() {
		return false
	}
	process, err := findProcessFunc(pid)
	return err == nil && process == nil
}
