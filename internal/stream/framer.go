// internal/stream/framer.go
package stream

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Framer convierte chunks de tamaño arbitrario en líneas completas.
//
// Bytes of a multi-byte rune split across chunks are held back until the
// rune is complete; invalid UTF-8 becomes U+FFFD. A Framer is not safe for
// concurrent use.
type Framer struct {
	dec     *encoding.Decoder
	tail    []byte // prefijo incompleto de una runa
	pending string // línea parcial
}

// NewFramer creates an empty framer.
func NewFramer() *Framer {
	return &Framer{dec: unicode.UTF8.NewDecoder()}
}

// Feed appends chunk to the buffer and returns every line it completed, in
// order, without the trailing newline. The last unterminated piece stays
// buffered.
func (f *Framer) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	data := append(f.tail, chunk...)
	complete, rest := splitIncompleteRune(data)
	f.tail = append([]byte(nil), rest...)

	f.pending += f.decode(complete)
	if !strings.Contains(f.pending, "\n") {
		return nil
	}

	parts := strings.Split(f.pending, "\n")
	f.pending = parts[len(parts)-1]
	return parts[:len(parts)-1]
}

// Flush returns the remaining unterminated line at end of stream and resets
// the framer. ok is false when nothing was buffered.
func (f *Framer) Flush() (line string, ok bool) {
	line = f.pending + f.decode(f.tail)
	f.Reset()
	if line == "" {
		return "", false
	}
	return line, true
}

// Buffered reports whether a partial line or rune is waiting for more input.
func (f *Framer) Buffered() bool {
	return f.pending != "" || len(f.tail) > 0
}

// Reset discards any buffered input.
func (f *Framer) Reset() {
	f.tail = nil
	f.pending = ""
}

func (f *Framer) decode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, _, err := transform.Bytes(f.dec, b)
	if err != nil {
		// el decoder UTF-8 no falla con atEOF; por si acaso, reemplazo manual
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}

// splitIncompleteRune separates a trailing, not yet complete UTF-8 sequence.
func splitIncompleteRune(b []byte) (complete, rest []byte) {
	start := len(b) - (utf8.UTFMax - 1)
	if start < 0 {
		start = 0
	}
	for i := len(b) - 1; i >= start; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if !utf8.FullRune(b[i:]) {
			return b[:i], b[i:]
		}
		break
	}
	return b, nil
}
