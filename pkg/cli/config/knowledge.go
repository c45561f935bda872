package config

import (
	"context"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/service/knowledge"
	"github.com/secmon-lab/ganit/pkg/utils/logging"
	"github.com/secmon-lab/ganit/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// Knowledge holds CLI flags for the grounding knowledge base
type Knowledge struct {
	source        string
	topK          int
	minSimilarity float64
	chunkSize     int
}

func (k *Knowledge) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "knowledge-base",
			Aliases:     []string{"kb"},
			Usage:       "Knowledge base location: local directory or gs://bucket/prefix",
			Category:    "Knowledge",
			Sources:     cli.EnvVars("GANIT_KNOWLEDGE_BASE"),
			Destination: &k.source,
		},
		&cli.IntFlag{
			Name:        "knowledge-top-k",
			Usage:       "Number of chunks retrieved per problem",
			Category:    "Knowledge",
			Value:       knowledge.DefaultTopK,
			Sources:     cli.EnvVars("GANIT_KNOWLEDGE_TOP_K"),
			Destination: &k.topK,
		},
		&cli.FloatFlag{
			Name:        "knowledge-min-similarity",
			Usage:       "Minimum cosine similarity for a chunk to count as grounding",
			Category:    "Knowledge",
			Value:       knowledge.DefaultMinSimilarity,
			Sources:     cli.EnvVars("GANIT_KNOWLEDGE_MIN_SIMILARITY"),
			Destination: &k.minSimilarity,
		},
		&cli.IntFlag{
			Name:        "knowledge-chunk-size",
			Usage:       "Chunk size in characters",
			Category:    "Knowledge",
			Value:       knowledge.DefaultChunkSize,
			Sources:     cli.EnvVars("GANIT_KNOWLEDGE_CHUNK_SIZE"),
			Destination: &k.chunkSize,
		},
	}
}

func (k Knowledge) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", k.source),
		slog.Int("top_k", k.topK),
		slog.Float64("min_similarity", k.minSimilarity),
		slog.Int("chunk_size", k.chunkSize),
	)
}

// Configure loads and indexes the knowledge base. It returns nil when no knowledge
// base is configured; every run then ends without grounding.
func (k *Knowledge) Configure(ctx context.Context, embedder interfaces.Embedder) (interfaces.KnowledgeRetriever, error) {
	if k.source == "" {
		logging.Default().Warn("Knowledge base not configured, runs will end without grounding")
		return nil, nil
	}

	opts := []knowledge.Option{
		knowledge.WithTopK(k.topK),
		knowledge.WithMinSimilarity(k.minSimilarity),
		knowledge.WithChunkSize(k.chunkSize),
	}

	if bucket, prefix, ok := knowledge.ParseGCSURL(k.source); ok {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
		}
		defer safe.Close(ctx, client)

		r, err := knowledge.New(ctx, knowledge.NewGCSLoader(client, bucket, prefix), embedder, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build knowledge base", goerr.V("source", k.source))
		}
		return r, nil
	}

	r, err := knowledge.New(ctx, knowledge.NewDirLoader(k.source), embedder, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build knowledge base", goerr.V("source", k.source))
	}
	return r, nil
}
