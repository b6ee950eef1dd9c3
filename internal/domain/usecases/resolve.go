package usecases

import (
	"context"
	"strings"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/entities"
	"github.com/0xcro3dile/catalogchat-go/internal/domain/ports"
)

// NoAnswerSentinel is returned when neither resolution stage produces text.
const NoAnswerSentinel = "Unable to find an answer."

// Outcome identifies which stage of the resolution chain produced the answer.
type Outcome int

const (
	// ResolvedByRetrieval means the retrieval QA stage answered.
	ResolvedByRetrieval Outcome = iota
	// ResolvedByConversation means the conversational fallback answered.
	ResolvedByConversation
	// Unresolved means both stages failed and the sentinel was returned.
	Unresolved
)

func (o Outcome) String() string {
	switch o {
	case ResolvedByRetrieval:
		return "retrieval"
	case ResolvedByConversation:
		return "conversation"
	default:
		return "unresolved"
	}
}

// Resolution is the enumerated result of a resolution attempt.
type Resolution struct {
	Outcome Outcome
	Answer  string
}

// ChunkSearcher is the slice of Retriever the resolver needs.
type ChunkSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]entities.ScoredChunk, error)
}

// ResolverChain answers an augmented query in fixed stage order, terminal on
// first success:
//
//	RETRIEVAL -> CONVERSATION -> UNRESOLVED
//
// Retrieval goes first because grounded context is least likely to
// hallucinate; open-ended conversation is the fallback precisely because it
// improvises more. No stage is retried within a request - each generative
// call is attempted exactly once.
type ResolverChain struct {
	retriever ChunkSearcher
	completer ports.CompletionService
	topK      int
}

// NewResolverChain creates a ResolverChain with injected dependencies.
func NewResolverChain(retriever ChunkSearcher, completer ports.CompletionService, topK int) *ResolverChain {
	if topK <= 0 {
		topK = 4
	}
	return &ResolverChain{
		retriever: retriever,
		completer: completer,
		topK:      topK,
	}
}

// Resolve runs the chain for one request. On success the original message and
// the answer are appended to the session as a user/assistant turn pair; the
// unresolved sentinel never mutates the session. Retrieval or completion
// unavailability is downgraded to "no usable text", never surfaced to the
// caller as a hard failure.
func (c *ResolverChain) Resolve(ctx context.Context, sctx *SessionContext, original, augmented string) Resolution {
	if answer, ok := c.retrieve(ctx, augmented); ok {
		sctx.Append(entities.RoleUser, original)
		sctx.Append(entities.RoleAssistant, answer)
		return Resolution{Outcome: ResolvedByRetrieval, Answer: answer}
	}

	if answer, ok := c.converse(ctx, sctx, augmented); ok {
		sctx.Append(entities.RoleUser, original)
		sctx.Append(entities.RoleAssistant, answer)
		return Resolution{Outcome: ResolvedByConversation, Answer: answer}
	}

	return Resolution{Outcome: Unresolved, Answer: NoAnswerSentinel}
}

// retrieve runs the retrieval QA stage: top-k chunks stuffed into one
// combined-context prompt, completed at temperature zero.
func (c *ResolverChain) retrieve(ctx context.Context, query string) (string, bool) {
	results, err := c.retriever.Search(ctx, query, c.topK)
	if err != nil {
		return "", false
	}

	contexts := make([]string, len(results))
	for i, r := range results {
		contexts[i] = r.Chunk.Text
	}

	answer, err := c.completer.Complete(ctx, qaPrompt(query, contexts), ports.CompleteOptions{Temperature: 0})
	if err != nil {
		return "", false
	}
	answer = strings.TrimSpace(answer)
	return answer, answer != ""
}

// converse runs the conversational fallback seeded with the full session history.
func (c *ResolverChain) converse(ctx context.Context, sctx *SessionContext, query string) (string, bool) {
	answer, err := c.completer.Complete(ctx, ConversationPrompt(sctx.Snapshot(), query), ports.CompleteOptions{Temperature: 0.7})
	if err != nil {
		return "", false
	}
	answer = strings.TrimSpace(answer)
	return answer, answer != ""
}

// qaPrompt builds the combined-context completion request for the retrieval stage.
func qaPrompt(query string, contexts []string) string {
	var sb strings.Builder
	sb.WriteString("Use the following pieces of context to answer the question at the end. ")
	sb.WriteString("If you don't know the answer, just say that you don't know, don't try to make up an answer.\n\n")
	sb.WriteString(strings.Join(contexts, "\n\n"))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\nHelpful Answer:")
	return sb.String()
}

// ConversationPrompt builds the fallback-stage prompt from the session
// history plus the current input.
func ConversationPrompt(history []entities.Turn, input string) string {
	var sb strings.Builder
	sb.WriteString("The following is a friendly conversation between a human and an AI. ")
	sb.WriteString("The AI is talkative and provides lots of specific details from its context. ")
	sb.WriteString("If the AI does not know the answer to a question, it truthfully says it does not know.\n\n")
	sb.WriteString("Current conversation:\n")
	for _, turn := range history {
		switch turn.Role {
		case entities.RoleAssistant:
			sb.WriteString("AI: ")
		default:
			sb.WriteString("Human: ")
		}
		sb.WriteString(turn.Text)
		sb.WriteByte('\n')
	}
	sb.WriteString("Human: ")
	sb.WriteString(input)
	sb.WriteString("\nAI:")
	return sb.String()
}
