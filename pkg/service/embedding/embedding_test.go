package embedding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/service/embedding"
	"github.com/secmon-lab/ganit/pkg/utils/vector"
)

type mockLLMClient struct {
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (m *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, nil
}

func (m *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return m.generateEmbeddingFn(ctx, dimension, input)
}

func embedOne(t *testing.T, e *embedding.Hashing, text string) []float32 {
	t.Helper()
	vecs, err := e.Embed(context.Background(), []string{text})
	gt.NoError(t, err).Required()
	gt.Array(t, vecs).Length(1).Required()
	return vecs[0]
}

func TestHashingDeterministic(t *testing.T) {
	e := embedding.NewHashing()
	a := embedOne(t, e, "Find the limit of sin(x)/x as x → 0")
	b := embedOne(t, e, "Find the limit of sin(x)/x as x → 0")

	gt.Array(t, a).Length(model.EmbeddingDimension)
	gt.Value(t, a).Equal(b)
	gt.Number(t, vector.CosineSimilarity(a, b)).Greater(0.999)
}

func TestHashingSimilarity(t *testing.T) {
	e := embedding.NewHashing()
	base := embedOne(t, e, "Find the limit of sin(x)/x as x approaches 0")
	near := embedOne(t, e, "find the LIMIT of sin(x)/x as x approaches 0 ")
	far := embedOne(t, e, "What is the probability of rolling two sixes with dice?")

	gt.Number(t, vector.CosineSimilarity(base, near)).Greater(0.99)
	gt.Number(t, vector.CosineSimilarity(base, far)).Less(0.5)
}

func TestHashingEmptyText(t *testing.T) {
	e := embedding.NewHashing(embedding.WithDimension(16))
	v := embedOne(t, e, "   ")
	gt.Array(t, v).Length(16)
	for _, x := range v {
		gt.Value(t, x).Equal(float32(0))
	}
}

func TestLLMEmbedder(t *testing.T) {
	t.Run("requires client", func(t *testing.T) {
		_, err := embedding.NewLLM(nil)
		gt.Error(t, err)
	})

	t.Run("converts to float32", func(t *testing.T) {
		client := &mockLLMClient{generateEmbeddingFn: func(ctx context.Context, dim int, input []string) ([][]float64, error) {
			gt.Number(t, dim).Equal(model.EmbeddingDimension)
			out := make([][]float64, len(input))
			for i := range input {
				out[i] = []float64{0.5, float64(i)}
			}
			return out, nil
		}}
		e, err := embedding.NewLLM(client)
		gt.NoError(t, err).Required()

		vecs, err := e.Embed(context.Background(), []string{"a", "b"})
		gt.NoError(t, err).Required()
		gt.Value(t, vecs).Equal([][]float32{{0.5, 0}, {0.5, 1}})
	})

	t.Run("count mismatch", func(t *testing.T) {
		client := &mockLLMClient{generateEmbeddingFn: func(ctx context.Context, dim int, input []string) ([][]float64, error) {
			return [][]float64{{1}}, nil
		}}
		e, err := embedding.NewLLM(client)
		gt.NoError(t, err).Required()

		_, err = e.Embed(context.Background(), []string{"a", "b"})
		gt.Error(t, err)
	})

	t.Run("provider error", func(t *testing.T) {
		client := &mockLLMClient{generateEmbeddingFn: func(ctx context.Context, dim int, input []string) ([][]float64, error) {
			return nil, errors.New("quota exceeded")
		}}
		e, err := embedding.NewLLM(client)
		gt.NoError(t, err).Required()

		_, err = e.Embed(context.Background(), []string{"a"})
		gt.Error(t, err)
	})
}
