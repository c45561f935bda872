package knowledge

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/utils/logging"
	"github.com/secmon-lab/ganit/pkg/utils/vector"
)

const (
	DefaultChunkSize     = 300
	DefaultTopK          = 4
	DefaultMinSimilarity = 0.05

	topicGeneral = "general"
)

type indexedChunk struct {
	chunk     *model.Chunk
	embedding []float32
}

// Retriever is an in-memory vector index over chunked knowledge-base documents
type Retriever struct {
	embedder      interfaces.Embedder
	chunks        []indexedChunk
	chunkSize     int
	topK          int
	minSimilarity float64
}

var _ interfaces.KnowledgeRetriever = &Retriever{}

type Option func(*Retriever)

// WithChunkSize sets the chunk length in characters
func WithChunkSize(n int) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithMinSimilarity drops chunks whose cosine similarity to the query is below min
func WithMinSimilarity(min float64) Option {
	return func(r *Retriever) {
		r.minSimilarity = min
	}
}

// New loads every document, chunks it and embeds the chunks
func New(ctx context.Context, loader Loader, embedder interfaces.Embedder, opts ...Option) (*Retriever, error) {
	if loader == nil {
		return nil, goerr.New("knowledge loader is required")
	}
	if embedder == nil {
		return nil, goerr.New("embedder is required")
	}

	r := &Retriever{
		embedder:      embedder,
		chunkSize:     DefaultChunkSize,
		topK:          DefaultTopK,
		minSimilarity: DefaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(r)
	}

	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load knowledge documents")
	}
	if err := r.ingest(ctx, docs); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("knowledge base ingested",
		"documents", len(docs),
		"chunks", len(r.chunks),
	)
	return r, nil
}

func (r *Retriever) ingest(ctx context.Context, docs []Document) error {
	var chunks []*model.Chunk
	for _, doc := range docs {
		topic := InferTopicFromName(doc.Name)
		for _, text := range ChunkText(doc.Content, r.chunkSize) {
			if strings.TrimSpace(text) == "" {
				continue
			}
			chunks = append(chunks, &model.Chunk{
				Text:       text,
				Topic:      topic,
				Difficulty: InferDifficulty(text),
				Source:     doc.Name,
			})
		}
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return goerr.Wrap(err, "failed to embed knowledge chunks", goerr.V("chunks", len(chunks)))
	}
	if len(embeddings) != len(chunks) {
		return goerr.New("embedding count mismatch",
			goerr.V("chunks", len(chunks)),
			goerr.V("embeddings", len(embeddings)))
	}

	r.chunks = make([]indexedChunk, len(chunks))
	for i, c := range chunks {
		r.chunks[i] = indexedChunk{chunk: c, embedding: embeddings[i]}
	}
	return nil
}

// Size returns the number of indexed chunks
func (r *Retriever) Size() int {
	return len(r.chunks)
}

// Retrieve returns up to topK chunks most similar to query. An empty result means
// nothing in the knowledge base is close enough to ground an answer.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]*model.Chunk, error) {
	if len(r.chunks) == 0 || strings.TrimSpace(query) == "" {
		return []*model.Chunk{}, nil
	}

	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}
	if len(embeddings) != 1 {
		return nil, goerr.New("embedder returned no query vector")
	}

	ranked := vector.TopK(embeddings[0], r.chunks, func(c indexedChunk) []float32 {
		return c.embedding
	}, r.topK)

	result := make([]*model.Chunk, 0, len(ranked))
	for _, s := range ranked {
		if s.Score < r.minSimilarity {
			continue
		}
		copied := *s.Item.chunk
		result = append(result, &copied)
	}
	return result, nil
}

// ChunkText splits text into consecutive pieces of at most size characters
func ChunkText(text string, size int) []string {
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// InferTopicFromName maps a document name to a topic label
func InferTopicFromName(name string) string {
	lowered := strings.ToLower(name)
	rules := []struct {
		keyword string
		topic   string
	}{
		{"algebra", "algebra"},
		{"calculus", "calculus"},
		{"probability", "probability"},
		{"linear", "linear_algebra"},
	}
	for _, rule := range rules {
		if strings.Contains(lowered, rule.keyword) {
			return rule.topic
		}
	}
	return topicGeneral
}

// InferDifficulty labels a chunk "medium" when it touches determinants or conditional probability
func InferDifficulty(text string) string {
	if strings.Contains(text, "determinant") || strings.Contains(text, "conditional") {
		return "medium"
	}
	return "easy"
}

// Sources returns the distinct document names in the index, sorted
func (r *Retriever) Sources() []string {
	seen := map[string]struct{}{}
	for _, c := range r.chunks {
		seen[c.chunk.Source] = struct{}{}
	}
	sources := make([]string, 0, len(seen))
	for s := range seen {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}
