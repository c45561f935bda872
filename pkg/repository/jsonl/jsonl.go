package jsonl

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
)

const (
	// SolvesFileName is the verified-solve memory log
	SolvesFileName = "solved_memory.jsonl"
	// CorrectionsFileName is the HITL correction log
	CorrectionsFileName = "hitl_corrections.jsonl"
)

// JSONL stores memory as two append-only newline-delimited JSON logs in a directory.
// Appends from goroutines and from other processes sharing the directory are serialized.
type JSONL struct {
	dir    string
	memory *memoryRepository
}

var _ interfaces.Repository = &JSONL{}

// New creates the directory if needed and returns a repository backed by it
func New(dir string) (*JSONL, error) {
	if dir == "" {
		return nil, goerr.New("jsonl directory is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, goerr.Wrap(err, "failed to create jsonl directory", goerr.V("dir", dir))
	}

	return &JSONL{
		dir: dir,
		memory: &memoryRepository{
			solves:      newLogFile(filepath.Join(dir, SolvesFileName)),
			corrections: newLogFile(filepath.Join(dir, CorrectionsFileName)),
		},
	}, nil
}

func (j *JSONL) Memory() interfaces.MemoryRepository {
	return j.memory
}

// Dir returns the directory holding the log files
func (j *JSONL) Dir() string {
	return j.dir
}

func (j *JSONL) Close() error {
	return nil
}
