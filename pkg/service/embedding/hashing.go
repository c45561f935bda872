package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
)

// Hashing is an offline embedder that maps word and character-trigram features into a
// fixed-size vector by feature hashing. Equal texts always produce equal vectors.
type Hashing struct {
	dimension int
}

var _ interfaces.Embedder = &Hashing{}

type HashingOption func(*Hashing)

// WithDimension overrides the vector size (default model.EmbeddingDimension)
func WithDimension(dim int) HashingOption {
	return func(h *Hashing) {
		if dim > 0 {
			h.dimension = dim
		}
	}
}

func NewHashing(opts ...HashingOption) *Hashing {
	h := &Hashing{dimension: model.EmbeddingDimension}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hashing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = h.embed(text)
	}
	return result, nil
}

func (h *Hashing) embed(text string) []float32 {
	vec := make([]float32, h.dimension)

	for _, word := range tokenize(text) {
		h.add(vec, "w:"+word, 1.0)
		padded := "^" + word + "$"
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			h.add(vec, "t:"+string(runes[i:i+3]), 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// add hashes feature into a bucket; one hash bit picks the sign to reduce collision bias
func (h *Hashing) add(vec []float32, feature string, weight float32) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()

	idx := int(sum % uint64(len(vec)))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

// tokenize lowercases text and splits it on anything that is not a letter, digit or
// one of the symbols that carry meaning in math text.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		return !strings.ContainsRune("^/*+-=<>≤≥", r)
	})
}
