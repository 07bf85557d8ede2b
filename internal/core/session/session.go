// internal/core/session/session.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ctsubs/internal/core/domain"
	"ctsubs/internal/core/ports"
	"ctsubs/internal/platform/logx"
	"ctsubs/internal/stream"
)

// Session es una ejecución de búsqueda para un target.
//
// A Session is never reused: every Start creates a new one. Its fields are
// guarded by the owning Controller's mutex.
type Session struct {
	mu *sync.Mutex

	id     string
	target string
	state  domain.State
	err    error

	framer *stream.Framer
	agg    *stream.Aggregator

	ctx    context.Context
	cancel context.CancelFunc
	body   ports.Stream // transporte activo; nil fuera de Active

	log       logx.Logger
	startedAt time.Time
	endedAt   time.Time
	done      chan struct{}
}

func newSession(parent context.Context, mu *sync.Mutex, target string, log logx.Logger, now time.Time) *Session {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()
	return &Session{
		mu:        mu,
		id:        id,
		target:    target,
		state:     domain.StateActive,
		framer:    stream.NewFramer(),
		agg:       stream.NewAggregator(),
		ctx:       ctx,
		cancel:    cancel,
		log:       log.With("session", id, "target", target),
		startedAt: now,
		done:      make(chan struct{}),
	}
}

// ID returns the session UUID.
func (s *Session) ID() string { return s.id }

// Target returns the validated search target.
func (s *Session) Target() string { return s.target }

// State returns the current lifecycle state.
func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that moved the session to Errored, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Count returns the number of unique results so far.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Count()
}

// Results returns the unique results in arrival order.
func (s *Session) Results() []domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Results()
}

// Done is closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session ends or ctx is done and returns the final state.
func (s *Session) Wait(ctx context.Context) (domain.State, error) {
	select {
	case <-s.done:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// Report builds the export snapshot of the session.
func (s *Session) Report() domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := domain.Report{
		SessionID:  s.id,
		Domain:     s.target,
		State:      s.state,
		Count:      s.agg.Count(),
		Subdomains: s.agg.Results(),
		StartedAt:  s.startedAt,
		EndedAt:    s.endedAt,
	}
	if s.err != nil {
		r.Error = UserMessage(s.err)
	}
	if !s.endedAt.IsZero() {
		r.Duration = s.endedAt.Sub(s.startedAt).Round(time.Millisecond).String()
	}
	return r
}
