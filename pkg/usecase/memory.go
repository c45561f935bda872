package usecase

import (
	"context"
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/model/config"
	"github.com/secmon-lab/ganit/pkg/utils/logging"
	"github.com/secmon-lab/ganit/pkg/utils/metrics"
	"github.com/secmon-lab/ganit/pkg/utils/vector"
)

// MemoryUseCase recalls and records verified solves
type MemoryUseCase struct {
	repo     interfaces.Repository
	embedder interfaces.Embedder
	cfg      config.Pipeline
}

func NewMemoryUseCase(repo interfaces.Repository, embedder interfaces.Embedder, cfg config.Pipeline) *MemoryUseCase {
	return &MemoryUseCase{
		repo:     repo,
		embedder: embedder,
		cfg:      cfg,
	}
}

// Recall returns at most topK past verified solves whose similarity to query strictly
// exceeds the recall threshold, most similar first. topK <= 0 uses the configured default.
// Every stored solve is a candidate: records without a usable embedding (none stored, or
// one from a different embedder) have their original input embedded on demand.
func (uc *MemoryUseCase) Recall(ctx context.Context, query string, topK int) ([]*model.RecalledMemory, error) {
	if topK <= 0 {
		topK = uc.cfg.RecallTopK
	}
	if strings.TrimSpace(query) == "" {
		return []*model.RecalledMemory{}, nil
	}

	emb, err := uc.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	all, err := uc.repo.Memory().ListSolves(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list verified solves")
	}

	var stale []*model.SolveRecord
	for _, r := range all {
		if len(r.Embedding) != len(emb) {
			stale = append(stale, r)
		}
	}

	// Stale records may occupy search slots, so ask for enough to cover them
	indexed, err := uc.repo.Memory().FindSolvesByEmbedding(ctx, emb, topK+len(stale))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search verified solves", goerr.V("top_k", topK))
	}

	candidates := make([]*model.SolveRecord, 0, len(indexed)+len(stale))
	for _, r := range indexed {
		if len(r.Embedding) == len(emb) {
			candidates = append(candidates, r)
		}
	}

	if len(stale) > 0 {
		texts := make([]string, len(stale))
		for i, r := range stale {
			texts[i] = r.OriginalInput
		}
		vectors, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed stored solves", goerr.V("count", len(texts)))
		}
		if len(vectors) != len(stale) {
			return nil, goerr.New("embedder returned unexpected vector count",
				goerr.V("expected", len(stale)),
				goerr.V("actual", len(vectors)))
		}
		for i, r := range stale {
			backfilled := r.Clone()
			backfilled.Embedding = vectors[i]
			candidates = append(candidates, backfilled)
		}
	}

	ranked := vector.TopK(emb, candidates, func(r *model.SolveRecord) []float32 { return r.Embedding }, len(candidates))

	recalled := make([]*model.RecalledMemory, 0, topK)
	for _, scored := range ranked {
		if len(recalled) >= topK {
			break
		}
		if scored.Score <= uc.cfg.RecallThreshold {
			break
		}
		recalled = append(recalled, &model.RecalledMemory{
			Similarity:    math.Round(scored.Score*1000) / 1000,
			FinalAnswer:   scored.Item.FinalAnswer,
			ParsedProblem: scored.Item.ParsedProblem.Clone(),
		})
	}

	logging.From(ctx).Debug("memory recalled",
		"candidates", len(candidates),
		"backfilled", len(stale),
		"recalled", len(recalled),
	)
	return recalled, nil
}

// RecordSolve stores a completed run as a verified solve
func (uc *MemoryUseCase) RecordSolve(ctx context.Context, run *model.Run, feedback *string) (*model.SolveRecord, error) {
	if run == nil || run.Parsed == nil || run.Solution == nil || run.Verification == nil {
		return nil, goerr.New("run is not complete")
	}

	emb, err := uc.embed(ctx, run.Input)
	if err != nil {
		return nil, err
	}

	record := &model.SolveRecord{
		OriginalInput:      run.Input,
		ParsedProblem:      run.Parsed.Clone(),
		RetrievedContext:   run.Retrieved,
		FinalAnswer:        run.Solution.FinalAnswer,
		VerifierConfidence: run.Verification.Confidence,
		UserFeedback:       feedback,
		Embedding:          emb,
	}

	created, err := uc.repo.Memory().AppendSolve(ctx, record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append verified solve", goerr.V(RunIDKey, run.ID))
	}
	metrics.RecordAppend(metrics.KindSolve)

	return created, nil
}

// ListSolves returns every stored verified solve in write order
func (uc *MemoryUseCase) ListSolves(ctx context.Context) ([]*model.SolveRecord, error) {
	solves, err := uc.repo.Memory().ListSolves(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list verified solves")
	}
	return solves, nil
}

func (uc *MemoryUseCase) embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := uc.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed text")
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, goerr.New("embedder returned no vector")
	}
	return vectors[0], nil
}
