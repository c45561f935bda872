package interfaces

import (
	"context"

	"github.com/secmon-lab/ganit/pkg/domain/model"
)

// KnowledgeRetriever returns grounding chunks for a query.
// An empty result means no grounding is available and is terminal for the run.
type KnowledgeRetriever interface {
	Retrieve(ctx context.Context, query string) ([]*model.Chunk, error)
}

// Embedder converts texts into embedding vectors of a fixed dimension
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
