// internal/core/ports/presenter.go
package ports

import (
	"time"

	"ctsubs/internal/core/domain"
)

// Presenter es el port de presentación: recibe las notificaciones de ciclo de
// vida y de resultados de una sesión de búsqueda.
//
// Calls arrive in session order and never concurrently. Every session ends
// with exactly one of OnCompleted, OnNoResults, OnCancelled or OnError.
// Callbacks run without the controller lock: they may read the session or
// call Cancel, and the resulting OnCancelled arrives after the current
// callback returns. Starting a new search or waiting on the session from
// inside a callback must happen on another goroutine.
type Presenter interface {
	OnStarted(target string)
	OnResult(result domain.Result, runningCount int)
	OnNoResults()
	OnCompleted(finalCount int)
	OnCancelled()
	OnError(message string)
}

// NotificationType identifica cada callback del Presenter.
type NotificationType string

const (
	NotificationStarted   NotificationType = "search.started"
	NotificationResult    NotificationType = "result.found"
	NotificationNoResults NotificationType = "search.no_results"
	NotificationCompleted NotificationType = "search.completed"
	NotificationCancelled NotificationType = "search.cancelled"
	NotificationError     NotificationType = "search.failed"
)

// IsTerminal reports whether the notification closes a session.
func (t NotificationType) IsTerminal() bool {
	switch t {
	case NotificationNoResults, NotificationCompleted, NotificationCancelled, NotificationError:
		return true
	}
	return false
}

// Notification is a flattened Presenter call, used by line-oriented
// presenters and by recorders in tests.
type Notification struct {
	Type      NotificationType `json:"type"`
	Timestamp time.Time        `json:"ts"`
	Target    string           `json:"target,omitempty"`
	Result    *domain.Result   `json:"result,omitempty"`
	Count     int              `json:"count,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// NotificationSink receives flattened notifications.
type NotificationSink func(Notification)

// FuncPresenter adapts a NotificationSink to the Presenter interface.
type FuncPresenter struct {
	Sink NotificationSink
	Now  func() time.Time
}

func (p FuncPresenter) emit(n Notification) {
	if p.Sink == nil {
		return
	}
	if p.Now != nil {
		n.Timestamp = p.Now()
	} else {
		n.Timestamp = time.Now()
	}
	p.Sink(n)
}

func (p FuncPresenter) OnStarted(target string) {
	p.emit(Notification{Type: NotificationStarted, Target: target})
}

func (p FuncPresenter) OnResult(result domain.Result, runningCount int) {
	r := result
	p.emit(Notification{Type: NotificationResult, Result: &r, Count: runningCount})
}

func (p FuncPresenter) OnNoResults() {
	p.emit(Notification{Type: NotificationNoResults})
}

func (p FuncPresenter) OnCompleted(finalCount int) {
	p.emit(Notification{Type: NotificationCompleted, Count: finalCount})
}

func (p FuncPresenter) OnCancelled() {
	p.emit(Notification{Type: NotificationCancelled})
}

func (p FuncPresenter) OnError(message string) {
	p.emit(Notification{Type: NotificationError, Message: message})
}

// MultiPresenter fans out every notification to several presenters in order.
type MultiPresenter []Presenter

func (m MultiPresenter) OnStarted(target string) {
	for _, p := range m {
		p.OnStarted(target)
	}
}

func (m MultiPresenter) OnResult(result domain.Result, runningCount int) {
	for _, p := range m {
		p.OnResult(result, runningCount)
	}
}

func (m MultiPresenter) OnNoResults() {
	for _, p := range m {
		p.OnNoResults()
	}
}

func (m MultiPresenter) OnCompleted(finalCount int) {
	for _, p := range m {
		p.OnCompleted(finalCount)
	}
}

func (m MultiPresenter) OnCancelled() {
	for _, p := range m {
		p.OnCancelled()
	}
}

func (m MultiPresenter) OnError(message string) {
	for _, p := range m {
		p.OnError(message)
	}
}
