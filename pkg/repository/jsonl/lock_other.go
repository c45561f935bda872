//go:build !unix

package jsonl

import "os"

// Advisory locking is unavailable; appends are still serialized within the process.

func lockExclusive(f *os.File) error { return nil }

func lockShared(f *os.File) error { return nil }

func unlock(f *os.File) error { return nil }
