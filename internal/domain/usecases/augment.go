package usecases

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/catalog"
	"github.com/0xcro3dile/catalogchat-go/internal/domain/entities"
)

// clarifyInstruction is appended when the user asks about shipping charges
// without naming a location: the downstream resolver must ask for the area
// instead of computing anything.
// The wording deliberately avoids the "shipping"/"charge" trigger pair so a
// clarified message stays stable under re-augmentation.
const clarifyInstruction = "\n\nInstruction: do not calculate or guess any delivery cost. Ask the user for their area code or delivery location."

// dateLayout is the calendar-date format used by the delivery_date column.
const dateLayout = "2006-01-02"

// maxDeliveryDates is how many upcoming delivery dates a fact block carries.
const maxDeliveryDates = 3

// Augmenter rewrites incoming messages with deterministically computed facts
// before they reach any generative model. The model cannot reliably do exact
// arithmetic or exact table lookup, so prices, surcharges and delivery dates
// are injected as literal text.
type Augmenter struct {
	catalog *catalog.Store
	now     func() time.Time
}

// NewAugmenter creates an Augmenter over the given catalog.
func NewAugmenter(store *catalog.Store) *Augmenter {
	return &Augmenter{catalog: store, now: time.Now}
}

// Augment applies the fixed-priority rewrite rules to message and returns the
// augmented query. Session state (the active product) is read and updated on
// the explicit session context, never on the Augmenter itself.
//
// The pass is single-shot stable: a message that was already rewritten no
// longer matches the area-code or canonical-name triggers, so re-augmenting
// it appends nothing.
func (a *Augmenter) Augment(sctx *SessionContext, message string) string {
	// 1. An exact area code becomes the canonical location name.
	if area, ok := a.catalog.AreaByCode(message); ok {
		message = area.Name
	}

	// 2. A mentioned product becomes the session's active product until replaced.
	if p, ok := a.catalog.ProductMentionedIn(message); ok {
		sctx.ActiveProduct = &p
	}

	// 3. Shipping-charge questions without a location get a clarification
	// request, not an answer.
	lower := strings.ToLower(message)
	if strings.Contains(lower, "shipping") && strings.Contains(lower, "charge") {
		return message + clarifyInstruction
	}

	// 4. A bare canonical location name triggers the full fact computation.
	if area, ok := a.catalog.AreaByName(message); ok {
		return message + a.factBlock(sctx, area)
	}

	return message
}

// factBlock computes the charges and upcoming delivery dates for the named
// area using the session's active product. Malformed numeric fields (and a
// missing active product) propagate as NaN into the block rather than
// aborting; the value is surfaced to the user as-is.
func (a *Augmenter) factBlock(sctx *SessionContext, area entities.AreaCode) string {
	areaCharge := parseAmount(area.Charge)

	weightSurcharge := math.NaN()
	productPrice := math.NaN()
	if p := sctx.ActiveProduct; p != nil {
		productPrice = parseAmount(p.Price)
		if raw, ok := a.catalog.ShippingSurcharge(*p, area.Method); ok {
			weightSurcharge = parseAmount(raw)
		}
	}

	shippingCharge := areaCharge + weightSurcharge
	grandTotal := productPrice + shippingCharge
	dates := upcomingDates(area.DeliveryDates, today(a.now()), maxDeliveryDates)

	var sb strings.Builder
	sb.WriteString("\n\nAnswer using exactly these computed facts:\n")
	sb.WriteString("Area charge: ")
	sb.WriteString(formatAmount(areaCharge))
	sb.WriteString("\nWeight-based surcharge: ")
	sb.WriteString(formatAmount(weightSurcharge))
	sb.WriteString("\nDelivery charge: ")
	sb.WriteString(formatAmount(shippingCharge))
	sb.WriteString("\nProduct price: ")
	sb.WriteString(formatAmount(productPrice))
	sb.WriteString("\nGrand total: ")
	sb.WriteString(formatAmount(grandTotal))
	sb.WriteString("\nUpcoming delivery dates: ")
	sb.WriteString(strings.Join(dates, ", "))
	return sb.String()
}

// parseAmount parses a raw numeric field. Failures become NaN - a documented
// weak point of the source data, reproduced instead of masked.
func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// today truncates now to midnight so a delivery scheduled for today still counts.
func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// upcomingDates returns up to n dates on or after today, ascending.
// Unparseable dates are skipped.
func upcomingDates(raw []string, today time.Time, n int) []string {
	type parsed struct {
		t time.Time
		s string
	}
	var future []parsed
	for _, s := range raw {
		t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), today.Location())
		if err != nil {
			continue
		}
		if t.Before(today) {
			continue
		}
		future = append(future, parsed{t: t, s: t.Format(dateLayout)})
	}
	sort.Slice(future, func(i, j int) bool { return future[i].t.Before(future[j].t) })
	if len(future) > n {
		future = future[:n]
	}
	dates := make([]string, len(future))
	for i, p := range future {
		dates[i] = p.s
	}
	return dates
}
