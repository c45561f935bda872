package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/model/config"
	"github.com/secmon-lab/ganit/pkg/domain/types"
	"github.com/secmon-lab/ganit/pkg/repository/jsonl"
	"github.com/secmon-lab/ganit/pkg/repository/memory"
	"github.com/secmon-lab/ganit/pkg/service/embedding"
	"github.com/secmon-lab/ganit/pkg/usecase"
)

func newCompletedRun(input string) *model.Run {
	return &model.Run{
		ID:    model.NewRunID(),
		Input: input,
		Parsed: &model.ParsedProblem{
			Text:        input,
			Topic:       types.TopicAlgebra,
			Variables:   []string{"x"},
			Assumptions: []string{model.DefaultAssumption},
		},
		Retrieved:    []*model.Chunk{{Text: "linear equations", Topic: "algebra"}},
		Solution:     &model.SolverOutput{FinalAnswer: "x = 2", Confidence: 0.9},
		Verification: &model.VerifierOutput{Confidence: 0.9, IsCorrect: true},
	}
}

func TestMemoryRecall(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store recalls nothing", func(t *testing.T) {
		uc := usecase.NewMemoryUseCase(memory.New(), embedding.NewHashing(), config.DefaultPipeline())
		recalled, err := uc.Recall(ctx, "Solve x + 2 = 4", 1)
		gt.NoError(t, err).Required()
		gt.Value(t, recalled).NotNil()
		gt.Array(t, recalled).Length(0)
	})

	t.Run("blank query recalls nothing", func(t *testing.T) {
		uc := usecase.NewMemoryUseCase(memory.New(), embedding.NewHashing(), config.DefaultPipeline())
		recalled, err := uc.Recall(ctx, "  ", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, recalled).Length(0)
	})

	t.Run("identical problem is recalled", func(t *testing.T) {
		uc := usecase.NewMemoryUseCase(memory.New(), embedding.NewHashing(), config.DefaultPipeline())
		_, err := uc.RecordSolve(ctx, newCompletedRun("Solve x + 2 = 4"), nil)
		gt.NoError(t, err).Required()

		recalled, err := uc.Recall(ctx, "Solve x + 2 = 4", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, recalled).Length(1).Required()
		gt.Value(t, recalled[0].Similarity).Equal(1.0)
		gt.Value(t, recalled[0].FinalAnswer).Equal("x = 2")
		gt.Value(t, recalled[0].ParsedProblem.Topic).Equal(types.TopicAlgebra)
	})

	t.Run("dissimilar problem is filtered by threshold", func(t *testing.T) {
		uc := usecase.NewMemoryUseCase(memory.New(), embedding.NewHashing(), config.DefaultPipeline())
		_, err := uc.RecordSolve(ctx, newCompletedRun("Solve x + 2 = 4"), nil)
		gt.NoError(t, err).Required()

		recalled, err := uc.Recall(ctx, "What is the determinant of the identity matrix", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, recalled).Length(0)
	})

	t.Run("top-k bounds the result", func(t *testing.T) {
		cfg := config.DefaultPipeline()
		cfg.RecallThreshold = 0
		uc := usecase.NewMemoryUseCase(memory.New(), embedding.NewHashing(), cfg)
		for _, in := range []string{"Solve x + 2 = 4", "Solve x + 3 = 4", "Solve x + 4 = 4"} {
			_, err := uc.RecordSolve(ctx, newCompletedRun(in), nil)
			gt.NoError(t, err).Required()
		}

		recalled, err := uc.Recall(ctx, "Solve x + 2 = 4", 2)
		gt.NoError(t, err).Required()
		gt.Array(t, recalled).Length(2).Required()
		gt.Value(t, recalled[0].Similarity).Equal(1.0)
		gt.Number(t, recalled[1].Similarity).LessOrEqual(recalled[0].Similarity)

		recalled, err = uc.Recall(ctx, "Solve x + 2 = 4", 0)
		gt.NoError(t, err).Required()
		gt.Array(t, recalled).Length(1)
	})

	t.Run("record without embedding is scored on demand", func(t *testing.T) {
		repo := memory.New()
		_, err := repo.Memory().AppendSolve(ctx, &model.SolveRecord{
			OriginalInput: "Solve x + 2 = 4",
			ParsedProblem: &model.ParsedProblem{Text: "Solve x + 2 = 4", Topic: types.TopicAlgebra},
			FinalAnswer:   "x = 2",
		})
		gt.NoError(t, err).Required()

		uc := usecase.NewMemoryUseCase(repo, embedding.NewHashing(), config.DefaultPipeline())
		recalled, err := uc.Recall(ctx, "Solve x + 2 = 4", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, recalled).Length(1).Required()
		gt.Value(t, recalled[0].Similarity).Equal(1.0)
		gt.Value(t, recalled[0].FinalAnswer).Equal("x = 2")

		// the stored record is left untouched
		solves, err := repo.Memory().ListSolves(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, solves[0].Embedding).Length(0)
	})

	t.Run("embedding from another embedder is replaced", func(t *testing.T) {
		repo := memory.New()
		small := usecase.NewMemoryUseCase(repo, embedding.NewHashing(embedding.WithDimension(16)), config.DefaultPipeline())
		_, err := small.RecordSolve(ctx, newCompletedRun("Solve x + 2 = 4"), nil)
		gt.NoError(t, err).Required()

		uc := usecase.NewMemoryUseCase(repo, embedding.NewHashing(), config.DefaultPipeline())
		recalled, err := uc.Recall(ctx, "Solve x + 2 = 4", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, recalled).Length(1).Required()
		gt.Value(t, recalled[0].Similarity).Equal(1.0)
	})

	t.Run("legacy log line is recalled", func(t *testing.T) {
		dir := t.TempDir()
		line := `{"original_input": "Solve x + 2 = 4", "parsed_problem": {"problem_text": "Solve x + 2 = 4", "topic": "algebra", "variables": ["x"], "constraints": [], "assumptions": ["variables are real unless specified"], "needs_clarification": false, "clarification_questions": []}, "retrieved_context": [], "final_answer": "x = 2", "verifier_confidence": 0.9, "user_feedback": null, "timestamp": "2025-01-01T00:00:00"}` + "\n"
		gt.NoError(t, os.WriteFile(filepath.Join(dir, jsonl.SolvesFileName), []byte(line), 0600)).Required()

		repo, err := jsonl.New(dir)
		gt.NoError(t, err).Required()
		uc := usecase.NewMemoryUseCase(repo, embedding.NewHashing(), config.DefaultPipeline())

		recalled, err := uc.Recall(ctx, "Solve x + 2 = 4", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, recalled).Length(1).Required()
		gt.Value(t, recalled[0].Similarity).Equal(1.0)
		gt.Value(t, recalled[0].FinalAnswer).Equal("x = 2")
		gt.Value(t, recalled[0].ParsedProblem.Topic).Equal(types.TopicAlgebra)
	})

	t.Run("embedder failure is an error", func(t *testing.T) {
		uc := usecase.NewMemoryUseCase(memory.New(), failingEmbedder{}, config.DefaultPipeline())
		_, err := uc.Recall(ctx, "Solve x + 2 = 4", 1)
		gt.Error(t, err)
	})
}

func TestMemoryRecordSolve(t *testing.T) {
	ctx := context.Background()

	t.Run("stores snapshot of the run", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewMemoryUseCase(repo, embedding.NewHashing(), config.DefaultPipeline())
		run := newCompletedRun("Solve x + 2 = 4")
		feedback := "thanks"

		created, err := uc.RecordSolve(ctx, run, &feedback)
		gt.NoError(t, err).Required()
		gt.String(t, string(created.ID)).NotEqual("")
		gt.Value(t, created.VerifierConfidence).Equal(0.9)
		gt.Value(t, *created.UserFeedback).Equal("thanks")

		run.Parsed.Variables[0] = "y"
		solves, err := uc.ListSolves(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, solves).Length(1).Required()
		gt.Value(t, solves[0].ParsedProblem.Variables).Equal([]string{"x"})
	})

	t.Run("incomplete run is rejected", func(t *testing.T) {
		uc := usecase.NewMemoryUseCase(memory.New(), embedding.NewHashing(), config.DefaultPipeline())
		_, err := uc.RecordSolve(ctx, &model.Run{Input: "x"}, nil)
		gt.Error(t, err)
		_, err = uc.RecordSolve(ctx, nil, nil)
		gt.Error(t, err)
	})
}
