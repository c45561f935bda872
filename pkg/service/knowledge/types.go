package knowledge

import "context"

// Document is a raw knowledge-base file before chunking
type Document struct {
	// Name is the file or object name; it drives topic inference
	Name    string
	Content string
}

// Loader reads the knowledge-base documents from some storage
type Loader interface {
	Load(ctx context.Context) ([]Document, error)
}
