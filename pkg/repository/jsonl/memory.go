package jsonl

import (
	"context"
	"time"

	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/utils/vector"
)

type memoryRepository struct {
	solves      *logFile
	corrections *logFile
}

func (r *memoryRepository) AppendSolve(ctx context.Context, record *model.SolveRecord) (*model.SolveRecord, error) {
	created := record.Clone()
	if created.ID == "" {
		created.ID = model.NewSolveRecordID()
	}
	created.Timestamp = time.Now().UTC()

	if err := r.solves.append(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *memoryRepository) AppendCorrection(ctx context.Context, correction *model.Correction) (*model.Correction, error) {
	created := *correction
	if created.ID == "" {
		created.ID = model.NewCorrectionID()
	}
	created.Timestamp = time.Now().UTC()

	if err := r.corrections.append(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *memoryRepository) ListSolves(ctx context.Context) ([]*model.SolveRecord, error) {
	return readAll[model.SolveRecord](ctx, r.solves)
}

func (r *memoryRepository) ListCorrections(ctx context.Context) ([]*model.Correction, error) {
	return readAll[model.Correction](ctx, r.corrections)
}

func (r *memoryRepository) FindSolvesByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.SolveRecord, error) {
	solves, err := r.ListSolves(ctx)
	if err != nil {
		return nil, err
	}

	ranked := vector.TopK(embedding, solves, func(s *model.SolveRecord) []float32 {
		return s.Embedding
	}, limit)

	result := make([]*model.SolveRecord, len(ranked))
	for i, c := range ranked {
		result[i] = c.Item
	}
	return result, nil
}
