// internal/stream/decoder.go
package stream

import (
	"encoding/json"
	"fmt"
	"strings"

	"ctsubs/internal/core/domain"
	"ctsubs/internal/platform/errors"
)

// Framing markers and completion signals of the discovery stream.
const (
	DataPrefix  = "data: "
	EventPrefix = "event: "

	// CompleteEvent is the name carried by "event: complete".
	CompleteEvent = "complete"

	// CompletionSentinel is the data payload some servers send instead of
	// a completion event.
	CompletionSentinel = `{"message": "Search completed"}`

	completionMessage = "Search completed"
)

// EventKind clasifica una línea del stream.
type EventKind int

const (
	EventIgnorable EventKind = iota
	EventData
	EventNamed
)

// String convierte el tipo a string
func (k EventKind) String() string {
	switch k {
	case EventIgnorable:
		return "ignorable"
	case EventData:
		return "data"
	case EventNamed:
		return "named"
	default:
		return "unknown"
	}
}

// Event is the decoded form of one line.
type Event struct {
	Kind    EventKind
	Payload string // solo EventData
	Name    string // solo EventNamed
}

// IsCompletion reports whether the event ends the search successfully.
func (e Event) IsCompletion() bool {
	return e.Kind == EventNamed && e.Name == CompleteEvent
}

// Decode classifies a complete line. A data line whose payload is the
// completion sentinel is returned as the named complete event.
func Decode(line string) Event {
	line = strings.TrimSuffix(line, "\r")

	switch {
	case strings.HasPrefix(line, DataPrefix):
		payload := line[len(DataPrefix):]
		if isCompletionPayload(payload) {
			return Event{Kind: EventNamed, Name: CompleteEvent}
		}
		return Event{Kind: EventData, Payload: payload}
	case strings.HasPrefix(line, EventPrefix):
		name := strings.TrimSpace(line[len(EventPrefix):])
		if name == "" {
			return Event{Kind: EventIgnorable}
		}
		return Event{Kind: EventNamed, Name: name}
	default:
		return Event{Kind: EventIgnorable}
	}
}

func isCompletionPayload(payload string) bool {
	payload = strings.TrimSpace(payload)
	if payload == CompletionSentinel {
		return true
	}
	if !strings.Contains(payload, `"message"`) {
		return false
	}

	var msg struct {
		Message   string  `json:"message"`
		Subdomain *string `json:"subdomain"`
	}
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return false
	}
	return msg.Message == completionMessage && msg.Subdomain == nil
}

// wireRecord es el shape JSON de cada resultado en el stream.
type wireRecord struct {
	Subdomain *string `json:"subdomain"`
	Source    *string `json:"source"`
}

// MalformedRecordError describes a data payload that could not become a Result.
type MalformedRecordError struct {
	Reason  string
	Payload string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: %s", e.Reason)
}

// Unwrap lets callers match with errors.ErrMalformedRecord.
func (e *MalformedRecordError) Unwrap() error {
	return errors.ErrMalformedRecord
}

// DecodeRecord parses a data payload into a Result. Both subdomain and
// source must be present and non-empty; otherwise a *MalformedRecordError
// is returned.
func DecodeRecord(payload string) (domain.Result, error) {
	malformed := func(reason string) (domain.Result, error) {
		return domain.Result{}, &MalformedRecordError{Reason: reason, Payload: payload}
	}

	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return malformed("empty payload")
	}

	var rec wireRecord
	if err := json.Unmarshal([]byte(trimmed), &rec); err != nil {
		return malformed("invalid json: " + err.Error())
	}
	if rec.Subdomain == nil {
		return malformed("missing field subdomain")
	}
	if rec.Source == nil {
		return malformed("missing field source")
	}

	res, err := domain.NewResult(*rec.Subdomain, *rec.Source)
	if err != nil {
		return malformed(err.Error())
	}
	return res, nil
}
