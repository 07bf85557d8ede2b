// internal/stream/aggregator.go
package stream

import "ctsubs/internal/core/domain"

// Outcome es el resultado de ofrecer un Result al agregador.
type Outcome int

const (
	Accepted Outcome = iota
	DuplicateDropped
)

// String convierte el outcome a string
func (o Outcome) String() string {
	if o == Accepted {
		return "accepted"
	}
	return "duplicate"
}

// Aggregator deduplica resultados por Subject y conserva el orden de llegada.
// The first result seen for a subject wins. Not safe for concurrent use.
type Aggregator struct {
	seen    map[string]struct{}
	results []domain.Result
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{seen: make(map[string]struct{})}
}

// Offer adds r unless its subject was already accepted.
func (a *Aggregator) Offer(r domain.Result) Outcome {
	if _, dup := a.seen[r.Subject]; dup {
		return DuplicateDropped
	}
	a.seen[r.Subject] = struct{}{}
	a.results = append(a.results, r)
	return Accepted
}

// Count returns the number of accepted results.
func (a *Aggregator) Count() int {
	return len(a.results)
}

// Results returns a copy of the accepted results in arrival order.
func (a *Aggregator) Results() []domain.Result {
	out := make([]domain.Result, len(a.results))
	copy(out, a.results)
	return out
}
