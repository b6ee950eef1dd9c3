// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, not concrete implementations;
// adapters implement them.
package ports

import (
	"context"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/entities"
)

// EmbeddingService generates vector embeddings for text.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CompleteOptions controls a single completion request.
type CompleteOptions struct {
	// Temperature is the sampling temperature; lower is more deterministic.
	// The retrieval stage requests 0 to minimise paraphrase drift from the
	// matched facts.
	Temperature float64

	// MaxTokens caps the generated length. Zero means the service default.
	MaxTokens int
}

// CompletionService generates text from a language model.
type CompletionService interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
}

// VectorStore holds embedded chunks and answers nearest-neighbour queries.
type VectorStore interface {
	// Store saves chunks with their embeddings.
	Store(ctx context.Context, chunks []entities.Chunk) error

	// Search finds the topK chunks most similar to the query embedding,
	// ordered by descending score.
	Search(ctx context.Context, embedding []float32, topK int) ([]entities.ScoredChunk, error)
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events until ctx ends.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
