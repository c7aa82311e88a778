// Package mapper turns raw event-stream messages into normalized log events.
//
// Map is total: malformed input becomes a synthetic error-severity event
// instead of an error return, so ingestion never has to handle failure.
package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"activitylog/models"

	"github.com/google/uuid"
)

const (
	EventParseError   = "parse.error"
	EventMappingError = "mapping.error"
	unknownEventType  = "unknown"
)

// Raw is one message as delivered by the event stream: the envelope type,
// the data body and the optional envelope id.
type Raw struct {
	Type string
	Data string
	ID   string
}

type options struct {
	id  string
	at  time.Time
	now func() time.Time
}

type Option func(*options)

// WithID fixes the event id instead of using the envelope id or generating one.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithTime fixes the receive timestamp.
func WithTime(t time.Time) Option {
	return func(o *options) { o.at = t }
}

// WithClock replaces time.Now for generated timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Map converts a raw message into a LogEvent. It never panics and never
// returns an empty event.
func Map(raw Raw, opts ...Option) (event models.LogEvent) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	ts := o.at
	if ts.IsZero() {
		ts = o.now()
	}
	id := o.id
	if id == "" {
		id = raw.ID
	}
	if id == "" {
		id = NewID(ts)
	}

	payload, err := decodePayload(raw.Data)
	if err != nil {
		return failure(id, ts, EventParseError, fmt.Sprintf("Failed to parse event: %v", err), raw.Data)
	}

	eventType := resolveEventType(payload, raw.Type)

	defer func() {
		if r := recover(); r != nil {
			event = failure(id, ts, EventMappingError, fmt.Sprintf("Failed to describe %s event: %v", eventType, r), raw.Data)
		}
	}()

	fields := Normalize(payload)
	channel, _ := payload["_channel"].(string)

	return models.LogEvent{
		ID:        id,
		Timestamp: ts,
		Category:  CategoryFor(eventType),
		Severity:  SeverityFor(eventType),
		EventType: eventType,
		Message:   Message(eventType, fields),
		Payload:   payload,
		Channel:   channel,
	}
}

// NewID returns "<unix-millis>-<12 random hex chars>".
func NewID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%d-%s", t.UnixMilli(), suffix[:12])
}

var errNotObject = errors.New("event data is not a JSON object")

func decodePayload(data string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

func resolveEventType(payload map[string]any, envelopeType string) string {
	if t, ok := payload["event"].(string); ok && t != "" {
		return t
	}
	if envelopeType != "" {
		return envelopeType
	}
	return unknownEventType
}

func failure(id string, ts time.Time, eventType, message, rawData string) models.LogEvent {
	return models.LogEvent{
		ID:        id,
		Timestamp: ts,
		Category:  models.CategoryHealth,
		Severity:  models.SeverityError,
		EventType: eventType,
		Message:   message,
		Payload:   map[string]any{"rawData": rawData},
	}
}
