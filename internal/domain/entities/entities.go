// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

// Product is a single catalog row. Numeric-looking fields are kept as the raw
// source strings; parsing happens where the value is consumed, so a malformed
// price surfaces as NaN in computed facts rather than as a load failure.
type Product struct {
	Name     string
	Weight   string
	Price    string
	Shipping map[string]string // delivery method -> weight-based shipping surcharge
}

// DeliveryRule is a single delivery-pricing row.
type DeliveryRule struct {
	Location string
	Rules    string
	Weight   string
	Operator string
	Price    string
}

// AreaCode maps a postal-style code to its canonical area name, delivery
// method, surcharge and scheduled delivery dates.
type AreaCode struct {
	Code          string
	Name          string
	Method        string
	Charge        string
	DeliveryDates []string
}

// Chunk is a bounded span of source text used as a retrieval unit.
// Text is the embedded form: document header, then the duplicated tail of the
// predecessor's body, then the body itself. The duplication is deliberate so
// each chunk stands alone with its own provenance and local context.
type Chunk struct {
	ID       string
	Document string
	Body     string
	Overlap  string // trailing overlap-size characters of the predecessor's body
	Text     string
	Index    int

	// Char ranges within Text shared with the neighbouring chunks.
	// PrevOverlap covers the duplicated prefix, NextOverlap the tail of Body
	// that the successor duplicates. Start == End means no overlap.
	PrevOverlap [2]int
	NextOverlap [2]int

	Embedding []float32
}

// ScoredChunk is a search hit with its similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Turn is a single entry in a session's conversation history.
type Turn struct {
	Role string
	Text string
}

// Roles for session turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
