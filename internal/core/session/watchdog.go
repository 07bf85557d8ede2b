// internal/core/session/watchdog.go
package session

import (
	"time"

	"ctsubs/internal/platform/errors"
)

// Watchdog falla una sesión que no terminó dentro del timeout.
type Watchdog struct {
	timer *time.Timer
}

// NewWatchdog arms a timer that moves s to Errored with ErrTimeout if it is
// still the Active session after timeout. A non-positive timeout disables it.
func NewWatchdog(c *Controller, s *Session, timeout time.Duration) *Watchdog {
	w := &Watchdog{}
	if c == nil || s == nil || timeout <= 0 {
		return w
	}
	w.timer = time.AfterFunc(timeout, func() {
		c.failIfCurrent(s, errors.Wrapf(errors.ErrTimeout, "no completion after %s", timeout))
	})
	go func() {
		<-s.Done()
		w.Stop()
	}()
	return w
}

// Stop disarms the watchdog. Safe on a disabled watchdog.
func (w *Watchdog) Stop() bool {
	if w == nil || w.timer == nil {
		return false
	}
	return w.timer.Stop()
}
