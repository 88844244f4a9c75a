// Package lock keeps two rmirror processes from writing the same
// destination at once.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

var ErrLocked = errors.New("destination is locked by another rmirror process")

// DestinationLock is an advisory lock on one destination directory. The
// lock file lives under lockDir, keyed by the absolute destination path.
type DestinationLock struct {
	Destination string
	flock       *flock.Flock
}

// New prepares a lock for destination without acquiring it
func New(lockDir, destination string) (*DestinationLock, error) {
	abs, err := filepath.Abs(destination)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination %s: %w", destination, err)
	}
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte(abs)).String() + ".lock"
	return &DestinationLock{
		Destination: abs,
		flock:       flock.New(filepath.Join(lockDir, name)),
	}, nil
}

// Path returns the lock file path
func (l *DestinationLock) Path() string {
	return l.flock.Path()
}

// Acquire takes the lock without blocking. It returns ErrLocked when
// another process holds it.
func (l *DestinationLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.flock.Path()), 0700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", l.Destination, err)
	}
	if !locked {
		return ErrLocked
	}
	return nil
}

// Release drops the lock and removes the lock file. It is a no-op when the
// lock is not held by this process.
func (l *DestinationLock) Release() error {
	if !l.flock.Locked() {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", l.Destination, err)
	}
	return os.Remove(l.flock.Path())
}
