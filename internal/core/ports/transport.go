// internal/core/ports/transport.go
package ports

import (
	"context"
	"io"

	"ctsubs/internal/core/domain"
)

// Stream is the open response body of a discovery request.
// Close must be safe to call more than once and must unblock a pending Read.
type Stream = io.ReadCloser

// Transport abre la petición de descubrimiento en streaming.
type Transport interface {
	// Open sends {"domain": target} and returns the event stream once the
	// server answered with a 2xx status.
	Open(ctx context.Context, target string) (Stream, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, target string) (Stream, error)

func (f TransportFunc) Open(ctx context.Context, target string) (Stream, error) {
	return f(ctx, target)
}

// Searcher es el modo one-shot: una sola respuesta con todos los resultados.
type Searcher interface {
	Search(ctx context.Context, target string) (domain.SearchResponse, error)
}
