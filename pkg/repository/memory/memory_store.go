package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/utils/vector"
)

type memoryRepository struct {
	mu          sync.RWMutex
	solves      []*model.SolveRecord
	corrections []*model.Correction
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{}
}

func (r *memoryRepository) AppendSolve(ctx context.Context, record *model.SolveRecord) (*model.SolveRecord, error) {
	created := record.Clone()
	if created.ID == "" {
		created.ID = model.NewSolveRecordID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.solves {
		if s.ID == created.ID {
			return nil, goerr.Wrap(interfaces.ErrRecordExists, "solve record already exists", goerr.V("id", created.ID))
		}
	}

	created.Timestamp = time.Now().UTC()
	r.solves = append(r.solves, created)
	return created.Clone(), nil
}

func (r *memoryRepository) AppendCorrection(ctx context.Context, correction *model.Correction) (*model.Correction, error) {
	created := *correction
	if created.ID == "" {
		created.ID = model.NewCorrectionID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.corrections {
		if c.ID == created.ID {
			return nil, goerr.Wrap(interfaces.ErrRecordExists, "correction already exists", goerr.V("id", created.ID))
		}
	}

	created.Timestamp = time.Now().UTC()
	r.corrections = append(r.corrections, &created)
	result := created
	return &result, nil
}

func (r *memoryRepository) ListSolves(ctx context.Context) ([]*model.SolveRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.SolveRecord, len(r.solves))
	for i, s := range r.solves {
		result[i] = s.Clone()
	}
	return result, nil
}

func (r *memoryRepository) ListCorrections(ctx context.Context) ([]*model.Correction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Correction, len(r.corrections))
	for i, c := range r.corrections {
		copied := *c
		result[i] = &copied
	}
	return result, nil
}

func (r *memoryRepository) FindSolvesByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.SolveRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ranked := vector.TopK(embedding, r.solves, func(s *model.SolveRecord) []float32 {
		return s.Embedding
	}, limit)

	result := make([]*model.SolveRecord, len(ranked))
	for i, c := range ranked {
		result[i] = c.Item.Clone()
	}
	return result, nil
}
