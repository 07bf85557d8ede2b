package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ctsubs/internal/core/domain"
	"ctsubs/internal/core/ports"
	"ctsubs/internal/platform/errors"
	"ctsubs/internal/testutil/fakes"
)

func TestWatchdog_FailsStalledSession(t *testing.T) {
	tr := &fakes.ScriptedTransport{}
	c, rec, _ := newController(t, tr)

	s, _ := c.Start(context.Background(), "example.com")
	w := NewWatchdog(c, s, 20*time.Millisecond)
	defer w.Stop()

	assert.Equal(t, domain.StateErrored, waitDone(t, s))
	assert.True(t, errors.IsTimeout(s.Err()))
	assert.True(t, tr.Stream(0).Closed())
	last, _ := rec.Last()
	assert.Equal(t, ports.NotificationError, last.Type)
	assert.Equal(t, "Search timed out", last.Message)
}

func TestWatchdog_DoesNotTouchNewerSession(t *testing.T) {
	tr := &fakes.ScriptedTransport{}
	c, _, _ := newController(t, tr)

	first, _ := c.Start(context.Background(), "example.com")
	w := NewWatchdog(c, first, 20*time.Millisecond)
	defer w.Stop()
	second, _ := c.Start(context.Background(), "example.org")
	defer c.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, domain.StateCancelled, first.State())
	assert.Equal(t, domain.StateActive, second.State())
}

func TestWatchdog_Disabled(t *testing.T) {
	w := NewWatchdog(nil, nil, 0)
	assert.False(t, w.Stop())

	var nilW *Watchdog
	assert.False(t, nilW.Stop())
}
