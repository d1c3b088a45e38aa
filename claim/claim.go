// Package claim implements a non-blocking, process-wide exclusive claim
// backed by flock(2). The first claimant wins; everyone else is told so
// immediately.
package claim

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrClaimed is returned by Acquire when another holder has the claim.
var ErrClaimed = errors.New("already claimed by another process")

// DefaultPath returns the lock file location: loglux.lock in
// $XDG_RUNTIME_DIR, or in the temp dir if that isn't set.
func DefaultPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "loglux.lock")
}

// A Lock is a held claim.
type Lock struct {
	f *os.File
}

// Acquire tries to take the claim on the lock file at path, creating the
// file if necessary. It never blocks.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrClaimed
		}
		return nil, err
	}
	return &Lock{f: f}, nil
}

// Release gives up the claim.
func (l *Lock) Release() error {
	// Closing the file drops the lock even if the unlock fails.
	err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	return err
}
