package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	homedir "github.com/mitchellh/go-homedir"
)

const (
	lockFileSuffix = ".lock"
)

// ErrStateLocked is returned by TryLock when another recdash process holds the state file.
var ErrStateLocked = fmt.Errorf("state file is in use by another recdash process")

// StateLock manages a file-based lock for the SQLite state file.
type StateLock struct {
	lock *flock.Flock
	path string
}

// NewStateLock creates a new lock for the given state file path.
func NewStateLock(statePath string) (*StateLock, error) {
	absPath, err := GetAbsStatePath(statePath)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute state path: %w", err)
	}
	lockPath := absPath + lockFileSuffix
	return &StateLock{
		lock: flock.New(lockPath),
		path: lockPath,
	}, nil
}

// Path returns the lock file location.
func (l *StateLock) Path() string { return l.path }

// TryLock acquires the lock without waiting.
func (l *StateLock) TryLock() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	if !locked {
		return ErrStateLocked
	}
	return nil
}

// Lock acquires the lock, waiting if necessary.
// It will print a message if it has to wait.
func (l *StateLock) Lock() error {
	err := l.TryLock()
	if err == nil {
		return nil
	}
	if err != ErrStateLocked {
		return err
	}
	fmt.Fprintf(os.Stderr, "Another recdash process is using the state file, waiting for it to finish...\n")
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s after waiting: %w", l.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (l *StateLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil {
		// Suppress error if the lock file doesn't exist, as it means we don't hold the lock.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// GetAbsStatePath resolves the state file path, defaulting to ~/.config/recdash/recdash.sqlite.
func GetAbsStatePath(statePath string) (string, error) {
	if statePath == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "recdash", "recdash.sqlite"), nil
	}
	expanded, err := homedir.Expand(statePath)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}
