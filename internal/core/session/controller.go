// internal/core/session/controller.go
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"ctsubs/internal/core/domain"
	"ctsubs/internal/core/ports"
	"ctsubs/internal/platform/errors"
	"ctsubs/internal/platform/logx"
	"ctsubs/internal/platform/metrics"
	"ctsubs/internal/stream"
)

const defaultChunkSize = 4096

// Options configura el Controller.
type Options struct {
	Transport ports.Transport
	Presenter ports.Presenter

	// Validate normaliza el target; por defecto domain.ValidateTarget.
	Validate func(raw string) (string, error)

	Logger    logx.Logger
	Metrics   *metrics.Recorder
	ChunkSize int
	Now       func() time.Time
}

// Controller es la máquina de estados de búsqueda. Owns at most one Active
// session and at most one open transport at any instant.
//
// Every transition and every chunk is handled while holding mu. Presenter
// notifications are queued under mu and delivered by flush once mu is
// released, one deliverer at a time, so callbacks see a single ordered
// sequence and may call Cancel or Fail themselves. The blocking read runs on
// a pump goroutine per session.
type Controller struct {
	transport ports.Transport
	presenter ports.Presenter
	validate  func(string) (string, error)
	logger    logx.Logger
	metrics   *metrics.Recorder
	chunkSize int
	now       func() time.Time

	startMu sync.Mutex // serializa Start/Lookup
	mu      sync.Mutex
	current *Session

	outbox     []func() // notificaciones pendientes, bajo mu
	delivering bool
}

// NewController crea un Controller.
func NewController(opts Options) *Controller {
	if opts.Presenter == nil {
		opts.Presenter = ports.FuncPresenter{}
	}
	if opts.Validate == nil {
		opts.Validate = domain.ValidateTarget
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		transport: opts.Transport,
		presenter: opts.Presenter,
		validate:  opts.Validate,
		logger:    opts.Logger.With("component", "session"),
		metrics:   opts.Metrics,
		chunkSize: opts.ChunkSize,
		now:       opts.Now,
	}
}

// Start valida raw y abre una nueva búsqueda en streaming.
//
// An invalid target returns an error and leaves the controller untouched.
// Otherwise any Active session is cancelled (its transport closed) before
// the new transport is opened. Transport failures are reported through the
// Presenter and the returned Session, not as an error.
func (c *Controller) Start(ctx context.Context, raw string) (*Session, error) {
	if c.transport == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "no transport configured")
	}
	target, err := c.validate(raw)
	if err != nil {
		c.logger.Warn("rejected search target", "input", raw, "error", err.Error())
		return nil, err
	}
	defer c.flush()

	// Cancela antes de esperar startMu: aborta un Open en curso.
	c.Cancel()

	c.startMu.Lock()
	defer c.startMu.Unlock()

	s := c.begin(ctx, target)

	body, err := c.transport.Open(s.ctx, target)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != s || s.state != domain.StateActive {
		if body != nil {
			_ = body.Close()
		}
		return s, nil
	}
	if err != nil {
		c.abortLocked(s, err)
		return s, nil
	}

	s.body = body
	s.log.Debug("stream opened")
	go c.pump(s, body)
	return s, nil
}

// Lookup runs a one-shot search through searcher. Results go through the
// same aggregator and notifications as a streamed search.
func (c *Controller) Lookup(ctx context.Context, raw string, searcher ports.Searcher) (*Session, error) {
	if searcher == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "no searcher configured")
	}
	target, err := c.validate(raw)
	if err != nil {
		c.logger.Warn("rejected search target", "input", raw, "error", err.Error())
		return nil, err
	}
	defer c.flush()

	c.Cancel()

	c.startMu.Lock()
	defer c.startMu.Unlock()

	s := c.begin(ctx, target)

	resp, err := searcher.Search(s.ctx, target)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != s || s.state != domain.StateActive {
		return s, nil
	}
	if err != nil {
		c.abortLocked(s, err)
		return s, nil
	}
	if resp.Error != "" {
		c.failLocked(s, &errors.RemoteError{Message: resp.Error})
		return s, nil
	}

	for _, r := range resp.Subdomains {
		res, err := domain.NewResult(r.Subject, string(r.Source))
		if err != nil {
			c.metrics.MalformedRecord()
			s.log.Warn("dropping malformed record", "reason", err.Error(), "subdomain", r.Subject)
			continue
		}
		c.offerLocked(s, res)
	}
	c.completeLocked(s)
	return s, nil
}

// Cancel detiene la sesión activa. Devuelve false si no había ninguna.
func (c *Controller) Cancel() bool {
	defer c.flush()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelLocked()
}

// Fail moves the Active session to Errored with err (e.g. an external
// timeout). Returns false if no session was Active.
func (c *Controller) Fail(err error) bool {
	defer c.flush()
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.current
	if s == nil || s.state != domain.StateActive {
		return false
	}
	c.failLocked(s, err)
	return true
}

// Current returns the latest session, or nil before the first Start.
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Active reports whether a session is Active.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.state == domain.StateActive
}

func (c *Controller) begin(ctx context.Context, target string) *Session {
	defer c.flush()
	c.mu.Lock()
	defer c.mu.Unlock()

	// otro Start pudo colarse entre Cancel y startMu
	c.cancelLocked()

	s := newSession(ctx, &c.mu, target, c.logger, c.now())
	c.current = s
	c.metrics.SessionStarted()
	s.log.Info("search started")
	c.notifyLocked(func() { c.presenter.OnStarted(target) })
	return s
}

// pump lee el stream y entrega cada chunk bajo el lock.
func (c *Controller) pump(s *Session, body ports.Stream) {
	stop := context.AfterFunc(s.ctx, func() { _ = body.Close() })
	defer stop()

	buf := make([]byte, c.chunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 && !c.processChunk(s, buf[:n]) {
			return
		}
		if err != nil {
			c.endOfStream(s, err)
			return
		}
	}
}

// processChunk returns false once s is no longer the Active session; the
// chunk is then discarded.
func (c *Controller) processChunk(s *Session, chunk []byte) bool {
	defer c.flush()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != s || s.state != domain.StateActive {
		return false
	}
	for _, line := range s.framer.Feed(chunk) {
		c.handleLineLocked(s, line)
		if s.state != domain.StateActive {
			return false
		}
	}
	return true
}

func (c *Controller) endOfStream(s *Session, readErr error) {
	defer c.flush()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != s || s.state != domain.StateActive {
		return
	}
	if line, ok := s.framer.Flush(); ok {
		c.handleLineLocked(s, line)
		if s.state != domain.StateActive {
			return
		}
	}

	if errors.Is(readErr, io.EOF) {
		c.failLocked(s, errors.ErrStreamClosed)
		return
	}
	c.abortLocked(s, errors.Transport("read stream", readErr))
}

func (c *Controller) handleLineLocked(s *Session, line string) {
	ev := stream.Decode(line)
	switch ev.Kind {
	case stream.EventIgnorable:
		return
	case stream.EventNamed:
		if ev.IsCompletion() {
			c.completeLocked(s)
			return
		}
		s.log.Debug("ignoring named event", "event", ev.Name)
	case stream.EventData:
		res, err := stream.DecodeRecord(ev.Payload)
		if err != nil {
			c.metrics.MalformedRecord()
			var mre *stream.MalformedRecordError
			if errors.As(err, &mre) {
				s.log.Warn("dropping malformed record", "reason", mre.Reason, "payload", mre.Payload)
			} else {
				s.log.Warn("dropping malformed record", "error", err.Error())
			}
			return
		}
		c.offerLocked(s, res)
	}
}

func (c *Controller) offerLocked(s *Session, res domain.Result) {
	if s.agg.Offer(res) == stream.DuplicateDropped {
		c.metrics.DuplicateDropped()
		s.log.Debug("duplicate result dropped", "subdomain", res.Subject, "source", res.Source.String())
		return
	}
	if !res.Source.IsKnown() {
		s.log.Debug("unrecognized source label", "subdomain", res.Subject, "source", res.Source.String())
	}
	c.metrics.ResultAccepted(res.Source.Label())
	count := s.agg.Count()
	c.notifyLocked(func() { c.presenter.OnResult(res, count) })
}

func (c *Controller) cancelLocked() bool {
	s := c.current
	if s == nil || s.state != domain.StateActive {
		return false
	}
	c.finishLocked(s, domain.StateCancelled)
	s.log.Info("search cancelled", "results", s.agg.Count())
	c.notifyLocked(c.presenter.OnCancelled)
	c.closeDoneLocked(s)
	return true
}

func (c *Controller) completeLocked(s *Session) {
	c.finishLocked(s, domain.StateCompleted)
	count := s.agg.Count()
	s.log.Info("search completed", "results", count, "duration", s.endedAt.Sub(s.startedAt).Round(time.Millisecond))
	if count == 0 {
		c.notifyLocked(c.presenter.OnNoResults)
	} else {
		c.notifyLocked(func() { c.presenter.OnCompleted(count) })
	}
	c.closeDoneLocked(s)
}

func (c *Controller) failLocked(s *Session, err error) {
	s.err = err
	c.finishLocked(s, domain.StateErrored)
	s.log.Err(err, "results", s.agg.Count())
	msg := UserMessage(err)
	c.notifyLocked(func() { c.presenter.OnError(msg) })
	c.closeDoneLocked(s)
}

// abortLocked clasifica un error de transporte: si el contexto padre fue
// cancelado es una cancelación, no un fallo.
func (c *Controller) abortLocked(s *Session, err error) {
	switch ctxErr := s.ctx.Err(); {
	case errors.Is(ctxErr, context.Canceled):
		c.cancelLocked()
	case errors.Is(ctxErr, context.DeadlineExceeded):
		c.failLocked(s, errors.Wrap(errors.ErrTimeout, "search deadline exceeded"))
	default:
		c.failLocked(s, err)
	}
}

// finishLocked leaves Active: closes the transport and releases the session.
// Callers queue the Presenter notification and then the close of s.done.
func (c *Controller) finishLocked(s *Session, state domain.State) {
	s.state = state
	s.endedAt = c.now()
	if s.body != nil {
		_ = s.body.Close()
		s.body = nil
	}
	s.cancel()
	if s.framer.Buffered() {
		s.log.Debug("discarding partial line", "state", state.String())
	}
	s.framer.Reset()
	c.metrics.SessionEnded(state.String(), s.endedAt.Sub(s.startedAt))
}

// notifyLocked encola una llamada al Presenter; flush la entrega fuera de mu.
func (c *Controller) notifyLocked(fn func()) {
	c.outbox = append(c.outbox, fn)
}

// closeDoneLocked releases waiters only after the terminal notification has
// been delivered.
func (c *Controller) closeDoneLocked(s *Session) {
	c.notifyLocked(func() { close(s.done) })
}

// flush entrega las notificaciones pendientes en orden, sin mantener mu.
// If another goroutine is already delivering (including the caller's own
// callback, re-entering through Cancel) flush returns and that deliverer
// drains what was queued.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	for len(c.outbox) > 0 {
		batch := c.outbox
		c.outbox = nil
		c.mu.Unlock()
		for _, fn := range batch {
			fn()
		}
		c.mu.Lock()
	}
	c.delivering = false
	c.mu.Unlock()
}

// failIfCurrent is used by watchers bound to one session; it never touches
// a newer session.
func (c *Controller) failIfCurrent(s *Session, err error) bool {
	defer c.flush()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != s || s.state != domain.StateActive {
		return false
	}
	c.failLocked(s, err)
	return true
}
