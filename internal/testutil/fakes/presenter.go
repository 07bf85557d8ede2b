// internal/testutil/fakes/presenter.go
package fakes

import (
	"sync"

	"ctsubs/internal/core/domain"
	"ctsubs/internal/core/ports"
)

// RecordingPresenter guarda cada notificación en orden de llegada.
type RecordingPresenter struct {
	mu     sync.Mutex
	events []ports.Notification
	inner  ports.FuncPresenter
}

// NewRecordingPresenter crea un presenter vacío.
func NewRecordingPresenter() *RecordingPresenter {
	r := &RecordingPresenter{}
	r.inner = ports.FuncPresenter{Sink: r.record}
	return r
}

func (r *RecordingPresenter) record(n ports.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, n)
}

func (r *RecordingPresenter) OnStarted(target string) { r.inner.OnStarted(target) }
func (r *RecordingPresenter) OnResult(res domain.Result, count int) {
	r.inner.OnResult(res, count)
}
func (r *RecordingPresenter) OnNoResults()          { r.inner.OnNoResults() }
func (r *RecordingPresenter) OnCompleted(count int) { r.inner.OnCompleted(count) }
func (r *RecordingPresenter) OnCancelled()          { r.inner.OnCancelled() }
func (r *RecordingPresenter) OnError(msg string)    { r.inner.OnError(msg) }

// Events returns a copy of everything recorded so far.
func (r *RecordingPresenter) Events() []ports.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.Notification(nil), r.events...)
}

// Types returns the notification types in order.
func (r *RecordingPresenter) Types() []ports.NotificationType {
	events := r.Events()
	out := make([]ports.NotificationType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

// Results returns the results passed to OnResult, in order.
func (r *RecordingPresenter) Results() []domain.Result {
	var out []domain.Result
	for _, e := range r.Events() {
		if e.Type == ports.NotificationResult && e.Result != nil {
			out = append(out, *e.Result)
		}
	}
	return out
}

// Count returns how many notifications of type t were recorded.
func (r *RecordingPresenter) Count(t ports.NotificationType) int {
	n := 0
	for _, e := range r.Events() {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Terminals returns how many terminal notifications were recorded.
func (r *RecordingPresenter) Terminals() int {
	n := 0
	for _, e := range r.Events() {
		if e.Type.IsTerminal() {
			n++
		}
	}
	return n
}

// Last returns the most recent notification.
func (r *RecordingPresenter) Last() (ports.Notification, bool) {
	events := r.Events()
	if len(events) == 0 {
		return ports.Notification{}, false
	}
	return events[len(events)-1], true
}
