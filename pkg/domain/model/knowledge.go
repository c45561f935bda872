package model

// EmbeddingDimension is the dimension of the embedding vector
// Gemini text-embedding-004 uses 768 dimensions
const EmbeddingDimension = 768

// Chunk is a piece of grounding knowledge returned by the knowledge retriever
type Chunk struct {
	Text       string `json:"text"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Source     string `json:"source"`
}
