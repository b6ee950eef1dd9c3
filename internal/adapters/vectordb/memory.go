// Package vectordb provides vector store adapters.
// The index is built once at startup and queried for the process lifetime, so
// an in-memory store with a linear cosine scan is all the data scale needs.
package vectordb

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/entities"
)

// InMemoryStore implements ports.VectorStore over a slice of embedded chunks.
type InMemoryStore struct {
	mu     sync.RWMutex
	chunks []entities.Chunk
}

// NewInMemoryStore creates an empty in-memory vector store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Store saves chunks with their embeddings.
func (s *InMemoryStore) Store(ctx context.Context, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = append(s.chunks, chunks...)
	return nil
}

// Len returns the number of stored chunks.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Search finds the topK chunks most similar to the query embedding.
func (s *InMemoryStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]entities.ScoredChunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		results = append(results, entities.ScoredChunk{
			Chunk: chunk,
			Score: cosineSimilarity(embedding, chunk.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
