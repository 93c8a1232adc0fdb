package domain

// OutcomeKind classifies a single scan.
type OutcomeKind string

const (
	OutcomeConfirmed  OutcomeKind = "confirmed"
	OutcomeDuplicate  OutcomeKind = "duplicate"
	OutcomeOutOfRoute OutcomeKind = "out_of_route"
	OutcomeSkipped    OutcomeKind = "skipped"
)

// SkipReason explains why a scan left every route untouched.
type SkipReason string

const (
	SkipInvalidIdentifier SkipReason = "invalid_identifier"
	SkipUnknownRoute      SkipReason = "unknown_route"
	SkipNoOp              SkipReason = "no_op"
)

// Outcome is the result of recording one scan against the active route.
// A bad scan is reported here, never as an error: the station must keep
// accepting input.
type Outcome struct {
	Kind       OutcomeKind
	Reason     SkipReason
	RouteID    string
	Identifier Identifier

	// Route resolved as the true owner when the scan was classified.
	OwnerRouteID string

	// Set for duplicates: the stored count before and after this scan.
	PriorCount int
	Count      int

	// Routes whose stale residue for Identifier was purged by this scan.
	PurgedFrom []string

	// The active route after mutation; nil when skipped.
	Route *Route
}

func (o Outcome) Skipped() bool { return o.Kind == OutcomeSkipped }

// NeedsAttention reports whether the operator should be alerted.
func (o Outcome) NeedsAttention() bool {
	return o.Kind == OutcomeDuplicate || o.Kind == OutcomeOutOfRoute
}
