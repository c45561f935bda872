package interfaces

import (
	"context"
	"errors"

	"github.com/secmon-lab/ganit/pkg/domain/model"
)

// ErrRecordExists is returned when an append reuses the ID of a stored record
var ErrRecordExists = errors.New("record already exists")

// MemoryRepository is the append-only store of verified solves and HITL corrections.
// Implementations must make each append atomic with respect to other appends and
// to concurrent reads: a reader never observes a partially written record.
type MemoryRepository interface {
	// AppendSolve stamps a UTC timestamp (and an ID if empty) and appends a verified solve
	AppendSolve(ctx context.Context, record *model.SolveRecord) (*model.SolveRecord, error)

	// AppendCorrection stamps a UTC timestamp (and an ID if empty) and appends a HITL correction
	AppendCorrection(ctx context.Context, correction *model.Correction) (*model.Correction, error)

	// ListSolves returns every verified solve in write order
	ListSolves(ctx context.Context) ([]*model.SolveRecord, error)

	// ListCorrections returns every HITL correction in write order
	ListCorrections(ctx context.Context) ([]*model.Correction, error)

	// FindSolvesByEmbedding performs vector similarity search using cosine distance.
	// Returns up to limit records most similar to the given embedding; records
	// without an embedding are skipped.
	FindSolvesByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.SolveRecord, error)
}
