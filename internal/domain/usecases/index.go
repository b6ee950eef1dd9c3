// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces - no framework
// code, no external dependencies.
package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/entities"
	"github.com/0xcro3dile/catalogchat-go/internal/domain/ports"
)

// Default chunk geometry, matching the splitter settings the catalog data was
// tuned for.
const (
	DefaultChunkSize    = 1536
	DefaultChunkOverlap = 200
)

// ChunkHeader returns the provenance header every chunk of a document starts with.
func ChunkHeader(document string) string {
	return fmt.Sprintf("DOCUMENT NAME: %s\n\n---\n\n", document)
}

// ChunkDocument splits text into chunks of at most targetSize characters.
// Every chunk is prefixed with the document header; every chunk after the
// first is additionally prefixed with the trailing overlapSize characters of
// its predecessor's body. The overlap is a physical copy, not a reference, so
// each chunk is a self-contained retrieval unit.
func ChunkDocument(text, document string, targetSize, overlapSize int) []entities.Chunk {
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}
	if overlapSize < 0 {
		overlapSize = 0
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	header := ChunkHeader(document)

	var bodies []string
	for start := 0; start < len(text); start += targetSize {
		end := start + targetSize
		if end > len(text) {
			end = len(text)
		}
		bodies = append(bodies, text[start:end])
	}

	chunks := make([]entities.Chunk, 0, len(bodies))
	for i, body := range bodies {
		var overlap string
		if i > 0 {
			prev := bodies[i-1]
			cut := len(prev) - overlapSize
			if cut < 0 {
				cut = 0
			}
			overlap = prev[cut:]
		}

		c := entities.Chunk{
			ID:       chunkID(document, i),
			Document: document,
			Body:     body,
			Overlap:  overlap,
			Text:     header + overlap + body,
			Index:    i,
		}
		c.PrevOverlap = [2]int{len(header), len(header) + len(overlap)}
		c.NextOverlap = [2]int{len(c.Text), len(c.Text)}
		if i < len(bodies)-1 {
			dup := overlapSize
			if dup > len(body) {
				dup = len(body)
			}
			c.NextOverlap = [2]int{len(c.Text) - dup, len(c.Text)}
		}
		chunks = append(chunks, c)
	}

	return chunks
}

// chunkID creates a deterministic ID for a chunk.
func chunkID(document string, index int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", document, index)))
	return hex.EncodeToString(hash[:8])
}

// IndexUseCase builds the searchable index: chunk, embed once per chunk, store.
type IndexUseCase struct {
	embedder     ports.EmbeddingService
	vectorStore  ports.VectorStore
	chunkSize    int
	chunkOverlap int
}

// NewIndexUseCase creates an IndexUseCase with injected dependencies.
func NewIndexUseCase(
	embedder ports.EmbeddingService,
	vectorStore ports.VectorStore,
	chunkSize, chunkOverlap int,
) *IndexUseCase {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return &IndexUseCase{
		embedder:     embedder,
		vectorStore:  vectorStore,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Build chunks every document under the given document name, embeds each
// chunk exactly once and stores the vectors. Any embedding failure is fatal
// to the build; a partial index is never accepted.
func (uc *IndexUseCase) Build(ctx context.Context, document string, documents []string) (int, error) {
	var chunks []entities.Chunk
	for _, doc := range documents {
		chunks = append(chunks, ChunkDocument(doc, document, uc.chunkSize, uc.chunkOverlap)...)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding %q chunks: %w", document, err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := uc.vectorStore.Store(ctx, chunks); err != nil {
		return 0, fmt.Errorf("storing %q chunks: %w", document, err)
	}
	return len(chunks), nil
}

// Retriever answers similarity queries against the built index. Failures are
// wrapped in ErrRetrievalUnavailable so the resolution chain can treat them
// as "no usable text" and fall back.
type Retriever struct {
	embedder    ports.EmbeddingService
	vectorStore ports.VectorStore
}

// NewRetriever creates a Retriever over the given embedder and store.
func NewRetriever(embedder ports.EmbeddingService, vectorStore ports.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, vectorStore: vectorStore}
}

// Search embeds the query and returns the topK nearest chunks by descending
// similarity score.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]entities.ScoredChunk, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", entities.ErrRetrievalUnavailable, err)
	}
	results, err := r.vectorStore.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: searching vectors: %v", entities.ErrRetrievalUnavailable, err)
	}
	return results, nil
}
