package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/repository/memory"
)

type mockRetriever struct {
	chunks []*model.Chunk
	err    error

	mu      sync.Mutex
	queries []string
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string) ([]*model.Chunk, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	return m.chunks, m.err
}

type mockNotifier struct {
	mu   sync.Mutex
	runs []*model.Run
	err  error
}

func (m *mockNotifier) NotifyReview(ctx context.Context, run *model.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return m.err
}

func (m *mockNotifier) notified() []*model.Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Run(nil), m.runs...)
}

// faultyRepository wraps the in-memory repository and fails selected operations
type faultyRepository struct {
	base       *memory.Memory
	failFind   bool
	failAppend bool
}

func (r *faultyRepository) Memory() interfaces.MemoryRepository {
	return &faultyMemory{MemoryRepository: r.base.Memory(), repo: r}
}

func (r *faultyRepository) Close() error {
	return r.base.Close()
}

type faultyMemory struct {
	interfaces.MemoryRepository
	repo *faultyRepository
}

func (m *faultyMemory) FindSolvesByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.SolveRecord, error) {
	if m.repo.failFind {
		return nil, errors.New("vector search unavailable")
	}
	return m.MemoryRepository.FindSolvesByEmbedding(ctx, embedding, limit)
}

func (m *faultyMemory) AppendSolve(ctx context.Context, record *model.SolveRecord) (*model.SolveRecord, error) {
	if m.repo.failAppend {
		return nil, errors.New("disk full")
	}
	return m.MemoryRepository.AppendSolve(ctx, record)
}

type mockImageReader struct {
	result *model.OCRResult
	err    error
}

func (m *mockImageReader) Run(ctx context.Context, imagePath string) (*model.OCRResult, error) {
	return m.result, m.err
}

type mockAudioTranscriber struct {
	result *model.ASRResult
	err    error
}

func (m *mockAudioTranscriber) Transcribe(ctx context.Context, audioPath string) (*model.ASRResult, error) {
	return m.result, m.err
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding backend unavailable")
}

func calculusChunks() []*model.Chunk {
	return []*model.Chunk{
		{Text: "lim sin x / x = 1", Topic: "calculus", Difficulty: "easy", Source: "calculus.md"},
	}
}
