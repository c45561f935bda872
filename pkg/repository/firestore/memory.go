package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SolveEmbeddingField is the document field holding the solve embedding.
// The vector index created by the migrate command targets this field.
const SolveEmbeddingField = "Embedding"

// maxNearestLimit is the largest limit Firestore accepts for FindNearest
const maxNearestLimit = 1000

// chunkDoc is the Firestore representation of a retrieved knowledge chunk
type chunkDoc struct {
	Text       string `firestore:"Text"`
	Topic      string `firestore:"Topic"`
	Difficulty string `firestore:"Difficulty"`
	Source     string `firestore:"Source"`
}

// solveDoc is the Firestore document representation of model.SolveRecord.
// Embedding is stored as firestore.Vector32 for FindNearest vector search.
type solveDoc struct {
	ID                 model.SolveRecordID  `firestore:"ID"`
	OriginalInput      string               `firestore:"OriginalInput"`
	ParsedProblem      *model.ParsedProblem `firestore:"ParsedProblem"`
	RetrievedContext   []chunkDoc           `firestore:"RetrievedContext"`
	FinalAnswer        string               `firestore:"FinalAnswer"`
	VerifierConfidence float64              `firestore:"VerifierConfidence"`
	UserFeedback       *string              `firestore:"UserFeedback"`
	Embedding          firestore.Vector32   `firestore:"Embedding,omitempty"`
	Timestamp          time.Time            `firestore:"Timestamp"`
}

func toSolveDoc(r *model.SolveRecord) *solveDoc {
	doc := &solveDoc{
		ID:                 r.ID,
		OriginalInput:      r.OriginalInput,
		ParsedProblem:      r.ParsedProblem,
		RetrievedContext:   make([]chunkDoc, 0, len(r.RetrievedContext)),
		FinalAnswer:        r.FinalAnswer,
		VerifierConfidence: r.VerifierConfidence,
		UserFeedback:       r.UserFeedback,
		Timestamp:          r.Timestamp,
	}
	for _, c := range r.RetrievedContext {
		if c == nil {
			continue
		}
		doc.RetrievedContext = append(doc.RetrievedContext, chunkDoc{
			Text:       c.Text,
			Topic:      c.Topic,
			Difficulty: c.Difficulty,
			Source:     c.Source,
		})
	}
	if len(r.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(r.Embedding)
	}
	return doc
}

func fromSolveDoc(d *solveDoc) *model.SolveRecord {
	r := &model.SolveRecord{
		ID:                 d.ID,
		OriginalInput:      d.OriginalInput,
		ParsedProblem:      d.ParsedProblem,
		RetrievedContext:   make([]*model.Chunk, len(d.RetrievedContext)),
		FinalAnswer:        d.FinalAnswer,
		VerifierConfidence: d.VerifierConfidence,
		UserFeedback:       d.UserFeedback,
		Timestamp:          d.Timestamp,
	}
	for i, c := range d.RetrievedContext {
		r.RetrievedContext[i] = &model.Chunk{
			Text:       c.Text,
			Topic:      c.Topic,
			Difficulty: c.Difficulty,
			Source:     c.Source,
		}
	}
	if len(d.Embedding) > 0 {
		r.Embedding = []float32(d.Embedding)
	}
	return r
}

type memoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMemoryRepository(client *firestore.Client) *memoryRepository {
	return &memoryRepository{
		client:           client,
		collectionPrefix: "",
	}
}

// SolvesCollection returns the name of the verified-solve collection for a prefix
func SolvesCollection(prefix string) string {
	if prefix != "" {
		return prefix + "_solves"
	}
	return "solves"
}

func (r *memoryRepository) solvesCollection() string {
	return SolvesCollection(r.collectionPrefix)
}

func (r *memoryRepository) correctionsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_corrections"
	}
	return "corrections"
}

// AppendSolve uses Create so an existing record is never overwritten
func (r *memoryRepository) AppendSolve(ctx context.Context, record *model.SolveRecord) (*model.SolveRecord, error) {
	created := record.Clone()
	if created.ID == "" {
		created.ID = model.NewSolveRecordID()
	}
	created.Timestamp = time.Now().UTC()

	docRef := r.client.Collection(r.solvesCollection()).Doc(string(created.ID))
	if _, err := docRef.Create(ctx, toSolveDoc(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrRecordExists, "solve record already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to append solve record", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *memoryRepository) AppendCorrection(ctx context.Context, correction *model.Correction) (*model.Correction, error) {
	created := *correction
	if created.ID == "" {
		created.ID = model.NewCorrectionID()
	}
	created.Timestamp = time.Now().UTC()

	docRef := r.client.Collection(r.correctionsCollection()).Doc(string(created.ID))
	if _, err := docRef.Create(ctx, &created); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrRecordExists, "correction already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to append correction", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *memoryRepository) ListSolves(ctx context.Context) ([]*model.SolveRecord, error) {
	iter := r.client.Collection(r.solvesCollection()).
		OrderBy("Timestamp", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	solves := make([]*model.SolveRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate solve records")
		}

		var d solveDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal solve record", goerr.V("docID", doc.Ref.ID))
		}
		solves = append(solves, fromSolveDoc(&d))
	}

	return solves, nil
}

func (r *memoryRepository) ListCorrections(ctx context.Context) ([]*model.Correction, error) {
	iter := r.client.Collection(r.correctionsCollection()).
		OrderBy("Timestamp", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	corrections := make([]*model.Correction, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate corrections")
		}

		var c model.Correction
		if err := doc.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal correction", goerr.V("docID", doc.Ref.ID))
		}
		corrections = append(corrections, &c)
	}

	return corrections, nil
}

func (r *memoryRepository) FindSolvesByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.SolveRecord, error) {
	if len(embedding) == 0 || limit <= 0 {
		return []*model.SolveRecord{}, nil
	}
	limit = min(limit, maxNearestLimit)

	vq := r.client.Collection(r.solvesCollection()).
		FindNearest(SolveEmbeddingField, firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine, nil)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	solves := make([]*model.SolveRecord, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate solve vector search results")
		}

		var d solveDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal solve record from vector search")
		}
		solves = append(solves, fromSolveDoc(&d))
	}

	return solves, nil
}
