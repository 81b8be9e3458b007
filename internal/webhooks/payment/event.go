package paymentwebhook

// EventTypeSucceeded is the only event type that settles an order. All
// other types are acknowledged and ignored.
const EventTypeSucceeded = "payment_intent.succeeded"

// Event is the provider-neutral confirmation envelope. The stripe and
// square controllers translate their native payloads into this shape
// before handing it to the reconciler.
type Event struct {
	ID          string
	Type        string
	AmountCents int64
	Metadata    map[string]string
}

// Outcome classifies what the reconciler did with an event.
type Outcome string

const (
	OutcomeProcessed  Outcome = "processed"
	OutcomeIgnored    Outcome = "ignored"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeOrphan     Outcome = "orphan_order"
)

// Result is the acknowledgment returned for every non-malformed event.
type Result struct {
	Outcome Outcome `json:"outcome"`
	OrderID int64   `json:"order_id,omitempty"`
}
