// internal/platform/ui/noop_presenter.go
package ui

import "ctsubs/internal/core/domain"

// NoopPresenter es una implementación vacía del Presenter
// que no produce ninguna salida. Útil para modo quiet o headless.
type NoopPresenter struct{}

// NewNoopPresenter crea una instancia del presenter sin salida
func NewNoopPresenter() *NoopPresenter {
	return &NoopPresenter{}
}

func (n *NoopPresenter) OnStarted(target string)                         {}
func (n *NoopPresenter) OnResult(result domain.Result, runningCount int) {}
func (n *NoopPresenter) OnNoResults()                                    {}
func (n *NoopPresenter) OnCompleted(finalCount int)                      {}
func (n *NoopPresenter) OnCancelled()                                    {}
func (n *NoopPresenter) OnError(message string)                          {}
