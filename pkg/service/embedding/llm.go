package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
)

// LLM generates embeddings with an LLM provider through gollem
type LLM struct {
	client    gollem.LLMClient
	dimension int
}

var _ interfaces.Embedder = &LLM{}

func NewLLM(client gollem.LLMClient) (*LLM, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &LLM{
		client:    client,
		dimension: model.EmbeddingDimension,
	}, nil
}

func (e *LLM) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings, err := e.client.GenerateEmbedding(ctx, e.dimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embeddings", goerr.V("count", len(texts)))
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("expected", len(texts)),
			goerr.V("actual", len(embeddings)))
	}

	result := make([][]float32, len(embeddings))
	for i, emb64 := range embeddings {
		if len(emb64) == 0 {
			return nil, goerr.New("embedding generation returned empty vector", goerr.V("index", i))
		}
		emb32 := make([]float32, len(emb64))
		for j, v := range emb64 {
			emb32[j] = float32(v)
		}
		result[i] = emb32
	}
	return result, nil
}
