// internal/testutil/fakes/transport.go
package fakes

import (
	"context"
	"io"
	"sync"

	"ctsubs/internal/core/domain"
	"ctsubs/internal/core/ports"
)

// ScriptedStream entrega chunks empujados desde el test.
// Read blocks until a chunk arrives, the script ends or the stream is closed.
type ScriptedStream struct {
	chunks    chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	pending []byte
	endErr  error
}

// NewScriptedStream creates an open stream with nothing queued.
func NewScriptedStream() *ScriptedStream {
	return &ScriptedStream{
		chunks: make(chan []byte, 1024),
		closed: make(chan struct{}),
	}
}

// Push queues one chunk.
func (s *ScriptedStream) Push(chunks ...string) {
	for _, c := range chunks {
		s.chunks <- []byte(c)
	}
}

// End makes Read return io.EOF once queued chunks are drained.
func (s *ScriptedStream) End() {
	s.EndWith(nil)
}

// EndWith makes Read return err (io.EOF when nil) after the queue drains.
func (s *ScriptedStream) EndWith(err error) {
	s.mu.Lock()
	s.endErr = err
	s.mu.Unlock()
	close(s.chunks)
}

func (s *ScriptedStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	if len(s.pending) > 0 {
		n := copy(p, s.pending)
		s.pending = s.pending[n:]
		s.mu.Unlock()
		return n, nil
	}
	s.mu.Unlock()

	select {
	case <-s.closed:
		return 0, io.ErrClosedPipe
	default:
	}

	select {
	case <-s.closed:
		return 0, io.ErrClosedPipe
	case c, ok := <-s.chunks:
		if !ok {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.endErr != nil {
				return 0, s.endErr
			}
			return 0, io.EOF
		}
		s.mu.Lock()
		n := copy(p, c)
		s.pending = c[n:]
		s.mu.Unlock()
		return n, nil
	}
}

// Close unblocks any pending Read. Safe to call more than once.
func (s *ScriptedStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// Closed reports whether Close was called.
func (s *ScriptedStream) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// ScriptedTransport implementa ports.Transport sobre ScriptedStreams.
//
// Chunks, when set, are queued on every opened stream; End then closes the
// script so the stream reports EOF afterwards.
type ScriptedTransport struct {
	Chunks  []string
	End     bool
	OpenErr error
	// Gate, when non-nil, blocks Open until it is closed or ctx is done.
	Gate chan struct{}

	mu         sync.Mutex
	streams    []*ScriptedStream
	targets    []string
	overlapped int
}

func (t *ScriptedTransport) Open(ctx context.Context, target string) (ports.Stream, error) {
	t.mu.Lock()
	t.targets = append(t.targets, target)
	for _, s := range t.streams {
		if !s.Closed() {
			t.overlapped++
		}
	}
	gate := t.Gate
	t.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if t.OpenErr != nil {
		return nil, t.OpenErr
	}

	s := NewScriptedStream()
	s.Push(t.Chunks...)
	if t.End {
		s.End()
	}

	t.mu.Lock()
	t.streams = append(t.streams, s)
	t.mu.Unlock()
	return s, nil
}

// Opens returns how many times Open was called.
func (t *ScriptedTransport) Opens() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.targets)
}

// Targets returns the targets passed to Open.
func (t *ScriptedTransport) Targets() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.targets...)
}

// Stream returns the i-th successfully opened stream, or nil.
func (t *ScriptedTransport) Stream(i int) *ScriptedStream {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.streams) {
		return nil
	}
	return t.streams[i]
}

// Streams returns how many streams were handed out.
func (t *ScriptedTransport) Streams() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.streams)
}

// Overlaps counts Opens that happened while an earlier stream was still open.
func (t *ScriptedTransport) Overlaps() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.overlapped
}

// StaticSearcher implementa ports.Searcher con una respuesta fija.
type StaticSearcher struct {
	Response domain.SearchResponse
	Err      error

	mu    sync.Mutex
	calls int
}

func (s *StaticSearcher) Search(ctx context.Context, target string) (domain.SearchResponse, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.SearchResponse{}, err
	}
	if s.Err != nil {
		return domain.SearchResponse{}, s.Err
	}
	resp := s.Response
	if resp.Domain == "" {
		resp.Domain = target
	}
	return resp, nil
}

// Calls returns how many searches were issued.
func (s *StaticSearcher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
