// internal/adapters/transport/client.go
package transport

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"ctsubs/internal/core/domain"
	"ctsubs/internal/platform/errors"
	"ctsubs/internal/platform/httpclient"
	"ctsubs/internal/platform/logx"
	"ctsubs/internal/platform/validator"
)

// Endpoints of the discovery server.
const (
	StreamPath = "/api/stream"
	SearchPath = "/api/search"
)

// Client habla con el servidor de descubrimiento. It implements
// ports.Transport (streaming) and ports.Searcher (one-shot).
type Client struct {
	http   *httpclient.Client
	base   string
	logger logx.Logger
}

// searchRequest es el cuerpo de ambas peticiones.
type searchRequest struct {
	Domain string `json:"domain"`
}

// New creates a Client for the server at baseURL.
func New(baseURL string, hc *httpclient.Client, logger logx.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !validator.IsURL(baseURL) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid server url %q", baseURL)
	}
	if logger == nil {
		logger = logx.Discard()
	}
	if hc == nil {
		var err error
		hc, err = httpclient.New(httpclient.DefaultConfig(), logger)
		if err != nil {
			return nil, err
		}
	}
	return &Client{http: hc, base: baseURL, logger: logger.With("component", "transport")}, nil
}

// Open sends the streaming request and returns the decoded body once the
// server answered 2xx. Non-2xx statuses return *errors.StatusError.
func (c *Client) Open(ctx context.Context, target string) (io.ReadCloser, error) {
	body, err := json.Marshal(searchRequest{Domain: target})
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}

	resp, err := c.http.PostJSON(ctx, c.base+StreamPath, body, "text/event-stream")
	if err != nil {
		return nil, err
	}
	if err := httpclient.CheckStatus(resp); err != nil {
		msg := readErrorText(resp)
		c.logger.Warn("stream request rejected", "status", resp.StatusCode, "body", msg)
		return nil, err
	}

	rc, err := decodeBody(resp)
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	c.logger.Debug("stream response accepted",
		"content_type", resp.Header.Get("Content-Type"),
		"content_encoding", resp.Header.Get("Content-Encoding"),
	)
	return rc, nil
}

// Search runs the one-shot request. A JSON error message from the server
// is returned as *errors.RemoteError.
func (c *Client) Search(ctx context.Context, target string) (domain.SearchResponse, error) {
	body, err := json.Marshal(searchRequest{Domain: target})
	if err != nil {
		return domain.SearchResponse{}, errors.Wrap(err, "encode request")
	}

	resp, err := c.http.PostJSON(ctx, c.base+SearchPath, body, "application/json")
	if err != nil {
		return domain.SearchResponse{}, err
	}

	rc, err := decodeBody(resp)
	if err != nil {
		_ = resp.Body.Close()
		return domain.SearchResponse{}, err
	}
	defer rc.Close()

	var out domain.SearchResponse
	decodeErr := json.NewDecoder(rc).Decode(&out)

	if statusErr := httpclient.CheckStatus(resp); statusErr != nil {
		if decodeErr == nil && out.Error != "" {
			return domain.SearchResponse{}, &errors.RemoteError{Code: resp.StatusCode, Message: out.Error}
		}
		return domain.SearchResponse{}, statusErr
	}
	if decodeErr != nil {
		return domain.SearchResponse{}, errors.Transport("decode search response", decodeErr)
	}
	return out, nil
}

// decodedBody cierra el body original junto con los lectores intermedios.
type decodedBody struct {
	io.Reader
	closers []io.Closer
}

func (b *decodedBody) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// decodeBody undoes Content-Encoding (gzip, br) and converts a non-UTF-8
// charset to UTF-8.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	out := &decodedBody{Reader: resp.Body, closers: []io.Closer{resp.Body}}

	switch enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Transport("gzip body", err)
		}
		out.Reader = zr
		out.closers = append(out.closers, zr)
	case "br":
		out.Reader = brotli.NewReader(resp.Body)
	default:
		return nil, errors.Wrapf(errors.ErrTransport, "unsupported content encoding %q", enc)
	}

	if dec := charsetDecoder(resp.Header.Get("Content-Type")); dec != nil {
		out.Reader = transform.NewReader(out.Reader, dec)
	}
	return out, nil
}

// charsetDecoder returns nil for UTF-8 or unknown charsets.
func charsetDecoder(contentType string) transform.Transformer {
	if contentType == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	label := params["charset"]
	if label == "" {
		return nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil || name == "utf-8" {
		return nil
	}
	return enc.NewDecoder()
}

func readErrorText(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return strings.TrimSpace(string(b))
}
