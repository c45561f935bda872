//go:build unix

package jsonl

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockExclusive blocks until an exclusive advisory lock is held on f
func lockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

// lockShared blocks until a shared advisory lock is held on f
func lockShared(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_SH)
}

func unlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
