package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/entities"
	"github.com/0xcro3dile/catalogchat-go/internal/domain/ports"
)

// mockSearcher implements ChunkSearcher for testing.
type mockSearcher struct {
	calls   int
	results []entities.ScoredChunk
	err     error
}

func (m *mockSearcher) Search(ctx context.Context, query string, topK int) ([]entities.ScoredChunk, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockCompleter implements ports.CompletionService; responses are consumed in
// call order so a single mock can script both stages.
type mockCompleter struct {
	calls     int
	prompts   []string
	temps     []float64
	responses []string
	errs      []error
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string, opts ports.CompleteOptions) (string, error) {
	i := m.calls
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.temps = append(m.temps, opts.Temperature)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", nil
}

func someChunks() []entities.ScoredChunk {
	return []entities.ScoredChunk{
		{Chunk: entities.Chunk{ID: "c1", Text: "DOCUMENT NAME: dataset\n\n---\n\nprice: 100"}, Score: 0.9},
	}
}

func TestResolve_RetrievalWins(t *testing.T) {
	searcher := &mockSearcher{results: someChunks()}
	completer := &mockCompleter{responses: []string{"The price is 100."}}
	chain := NewResolverChain(searcher, completer, 4)
	sctx := NewSessionContext()

	res := chain.Resolve(context.Background(), sctx, "price?", "price? augmented")

	assert.Equal(t, ResolvedByRetrieval, res.Outcome)
	assert.Equal(t, "The price is 100.", res.Answer)
	// The fallback stage is never invoked on retrieval success.
	assert.Equal(t, 1, completer.calls)

	turns := sctx.Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, entities.Turn{Role: entities.RoleUser, Text: "price?"}, turns[0])
	assert.Equal(t, entities.Turn{Role: entities.RoleAssistant, Text: "The price is 100."}, turns[1])
}

func TestResolve_RetrievalUsesZeroTemperature(t *testing.T) {
	searcher := &mockSearcher{results: someChunks()}
	completer := &mockCompleter{responses: []string{"answer"}}
	chain := NewResolverChain(searcher, completer, 4)

	chain.Resolve(context.Background(), NewSessionContext(), "q", "q")

	require.Len(t, completer.temps, 1)
	assert.Zero(t, completer.temps[0])
	assert.Contains(t, completer.prompts[0], "DOCUMENT NAME: dataset")
	assert.Contains(t, completer.prompts[0], "Question: q")
}

func TestResolve_FallsBackOnEmptyRetrievalText(t *testing.T) {
	searcher := &mockSearcher{results: someChunks()}
	completer := &mockCompleter{responses: []string{"   \n", "fallback answer"}}
	chain := NewResolverChain(searcher, completer, 4)
	sctx := NewSessionContext()

	res := chain.Resolve(context.Background(), sctx, "q", "q augmented")

	assert.Equal(t, ResolvedByConversation, res.Outcome)
	assert.Equal(t, "fallback answer", res.Answer)
	assert.Equal(t, 2, completer.calls)
	assert.Equal(t, 2, sctx.Len())
}

func TestResolve_FallsBackOnRetrievalUnavailable(t *testing.T) {
	searcher := &mockSearcher{err: fmt.Errorf("%w: embeddings down", entities.ErrRetrievalUnavailable)}
	completer := &mockCompleter{responses: []string{"conversational answer"}}
	chain := NewResolverChain(searcher, completer, 4)
	sctx := NewSessionContext()

	res := chain.Resolve(context.Background(), sctx, "q", "q")

	assert.Equal(t, ResolvedByConversation, res.Outcome)
	assert.Equal(t, "conversational answer", res.Answer)
	// Retrieval never reached the completer; only the fallback call happened.
	assert.Equal(t, 1, completer.calls)
}

func TestResolve_ConversationSeesHistory(t *testing.T) {
	searcher := &mockSearcher{err: fmt.Errorf("%w: down", entities.ErrRetrievalUnavailable)}
	completer := &mockCompleter{responses: []string{"sure"}}
	chain := NewResolverChain(searcher, completer, 4)

	sctx := NewSessionContext()
	sctx.Append(entities.RoleUser, "earlier question")
	sctx.Append(entities.RoleAssistant, "earlier answer")

	chain.Resolve(context.Background(), sctx, "q", "q augmented")

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "Human: earlier question")
	assert.Contains(t, completer.prompts[0], "AI: earlier answer")
	assert.Contains(t, completer.prompts[0], "Human: q augmented")
}

func TestResolve_TotalFailure(t *testing.T) {
	searcher := &mockSearcher{results: someChunks()}
	completer := &mockCompleter{responses: []string{"", ""}}
	chain := NewResolverChain(searcher, completer, 4)
	sctx := NewSessionContext()

	res := chain.Resolve(context.Background(), sctx, "q", "q")

	assert.Equal(t, Unresolved, res.Outcome)
	assert.Equal(t, "Unable to find an answer.", res.Answer)
	// Each stage was attempted exactly once, and the session gained nothing.
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, 2, completer.calls)
	assert.Zero(t, sctx.Len())
}

func TestResolve_CompletionUnavailableAdvancesStages(t *testing.T) {
	searcher := &mockSearcher{results: someChunks()}
	unavailable := fmt.Errorf("%w: llm down", entities.ErrCompletionUnavailable)
	completer := &mockCompleter{errs: []error{unavailable, unavailable}}
	chain := NewResolverChain(searcher, completer, 4)
	sctx := NewSessionContext()

	res := chain.Resolve(context.Background(), sctx, "q", "q")

	assert.Equal(t, Unresolved, res.Outcome)
	assert.Equal(t, NoAnswerSentinel, res.Answer)
	assert.Zero(t, sctx.Len())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "retrieval", ResolvedByRetrieval.String())
	assert.Equal(t, "conversation", ResolvedByConversation.String())
	assert.Equal(t, "unresolved", Unresolved.String())
}
