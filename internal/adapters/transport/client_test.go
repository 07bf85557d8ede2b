package transport

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"ctsubs/internal/core/domain"
	"ctsubs/internal/platform/errors"
	"ctsubs/internal/platform/logx"
	"ctsubs/internal/testutil"
)

// fakeServer emula el servidor de descubrimiento.
type fakeServer struct {
	lines    []string
	encoding string // "", "gzip", "br"
	charset  string
	status   int
	hold     bool // mantiene el stream abierto tras las líneas

	gotDomains chan string
}

func (f *fakeServer) router() http.Handler {
	r := chi.NewRouter()
	r.Post(StreamPath, f.stream)
	r.Post(SearchPath, f.search)
	return r
}

func (f *fakeServer) readDomain(r *http.Request) string {
	var req searchRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if f.gotDomains != nil {
		f.gotDomains <- req.Domain
	}
	return req.Domain
}

func (f *fakeServer) stream(w http.ResponseWriter, r *http.Request) {
	f.readDomain(r)
	if r.Header.Get("Accept") != "text/event-stream" {
		http.Error(w, "bad accept", http.StatusNotAcceptable)
		return
	}
	if f.status != 0 {
		http.Error(w, "Invalid domain format", f.status)
		return
	}

	ct := "text/event-stream"
	if f.charset != "" {
		ct += "; charset=" + f.charset
	}
	w.Header().Set("Content-Type", ct)
	if f.encoding != "" {
		w.Header().Set("Content-Encoding", f.encoding)
	}

	flusher := w.(http.Flusher)
	var out io.Writer = w
	var flushEnc func()
	switch f.encoding {
	case "gzip":
		zw := gzip.NewWriter(w)
		defer zw.Close()
		out, flushEnc = zw, func() { _ = zw.Flush() }
	case "br":
		bw := brotli.NewWriter(w)
		defer bw.Close()
		out, flushEnc = bw, func() { _ = bw.Flush() }
	}

	for _, line := range f.lines {
		payload := []byte(line + "\n")
		if f.charset == "iso-8859-1" {
			payload, _ = charmap.ISO8859_1.NewEncoder().Bytes(payload)
		}
		_, _ = out.Write(payload)
		if flushEnc != nil {
			flushEnc()
		}
		flusher.Flush()
	}
	if f.hold {
		<-r.Context().Done()
	}
}

func (f *fakeServer) search(w http.ResponseWriter, r *http.Request) {
	d := f.readDomain(r)
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_ = json.NewEncoder(w).Encode(domain.SearchResponse{Error: "Invalid domain format"})
		return
	}
	_ = json.NewEncoder(w).Encode(domain.SearchResponse{
		Domain: d,
		Subdomains: []domain.Result{
			{Subject: "a." + d, Source: domain.SourceCertificateTransparency},
			{Subject: "b." + d, Source: domain.SourceDNSEnumeration},
		},
	})
}

func newTestClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", nil, logx.Discard())
	require.NoError(t, err)
	return c
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestNew_RejectsInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:9382", "ftp://example.com"} {
		_, err := New(raw, nil, nil)
		assert.True(t, errors.IsInvalidInput(err), "url %q", raw)
	}
}

func TestOpen_Encodings(t *testing.T) {
	lines := []string{testutil.FixtureCTLine, "", testutil.FixtureCompleteEvent}
	want := strings.Join(lines, "\n") + "\n"

	for _, enc := range []string{"", "gzip", "br"} {
		t.Run("encoding="+enc, func(t *testing.T) {
			f := &fakeServer{lines: lines, encoding: enc, gotDomains: make(chan string, 1)}
			c := newTestClient(t, f)

			rc, err := c.Open(context.Background(), "example.com")
			require.NoError(t, err)

			assert.Equal(t, want, readAll(t, rc))
			assert.Equal(t, "example.com", <-f.gotDomains)
		})
	}
}

func TestOpen_Latin1Charset(t *testing.T) {
	f := &fakeServer{lines: []string{`data: {"subdomain":"café.example.com","source":"DNS Enum"}`}, charset: "iso-8859-1"}
	c := newTestClient(t, f)

	rc, err := c.Open(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Contains(t, readAll(t, rc), "café.example.com")
}

func TestOpen_NonSuccessStatus(t *testing.T) {
	f := &fakeServer{status: http.StatusBadRequest}
	c := newTestClient(t, f)

	rc, err := c.Open(context.Background(), "example.com")
	require.Error(t, err)
	assert.Nil(t, rc)

	var se *errors.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "HTTP 400: Bad Request", se.Error())
}

func TestOpen_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(base, nil, nil)
	require.NoError(t, err)

	_, err = c.Open(context.Background(), "example.com")
	assert.True(t, errors.Is(err, errors.ErrTransport))
}

func TestOpen_CloseUnblocksRead(t *testing.T) {
	f := &fakeServer{lines: []string{testutil.FixtureCTLine}, hold: true}
	c := newTestClient(t, f)

	rc, err := c.Open(context.Background(), "example.com")
	require.NoError(t, err)

	buf := make([]byte, 512)
	n, err := rc.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "a.example.com")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, err := rc.Read(buf); err != nil {
				return
			}
		}
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, rc.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Read still blocked after Close")
	}
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, &fakeServer{})

	resp, err := c.Search(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Equal(t, "example.com", resp.Domain)
	require.Len(t, resp.Subdomains, 2)
	assert.Equal(t, "a.example.com", resp.Subdomains[0].Subject)
	assert.Equal(t, domain.SourceCertificateTransparency, resp.Subdomains[0].Source)
}

func TestSearch_ServerErrorMessage(t *testing.T) {
	c := newTestClient(t, &fakeServer{status: http.StatusBadRequest})

	_, err := c.Search(context.Background(), "example.com")

	var remote *errors.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "Invalid domain format", remote.Message)
	assert.Equal(t, http.StatusBadRequest, remote.Code)
	assert.True(t, errors.Is(err, errors.ErrUnexpectedStatus))
}

func TestCharsetDecoder(t *testing.T) {
	tests := []struct {
		contentType string
		wantNil     bool
	}{
		{"", true},
		{"text/event-stream", true},
		{"text/event-stream; charset=utf-8", true},
		{"text/event-stream; charset=UTF-8", true},
		{"text/event-stream; charset=latin1", false},
		{"text/event-stream; charset=windows-1252", false},
		{"text/event-stream; charset=bogus", true},
		{";;;", true},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.wantNil, charsetDecoder(tt.contentType) == nil)
		})
	}
}
