package transport

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

const maxLineSize = 1024 * 1024

// Message is one dispatched server-sent event. ID is only set when the
// event carried its own id field.
type Message struct {
	Type string
	Data string
	ID   string
}

// Reader splits an event stream into messages. Comment lines (keepalives)
// are skipped and an unterminated trailing event is discarded.
type Reader struct {
	scanner *bufio.Scanner
	lastID  string
	retry   time.Duration
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next blocks until a full event arrives. It returns io.EOF when the stream
// ends cleanly.
func (r *Reader) Next() (Message, error) {
	var (
		eventType string
		data      strings.Builder
		hasData   bool
		id        string
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()

		if line == "" {
			if !hasData {
				eventType, id = "", ""
				continue
			}
			if eventType == "" {
				eventType = "message"
			}
			return Message{
				Type: eventType,
				Data: strings.TrimSuffix(data.String(), "\n"),
				ID:   id,
			}, nil
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			eventType = value
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			hasData = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				id = value
				r.lastID = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				r.retry = time.Duration(ms) * time.Millisecond
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Message{}, err
	}
	return Message{}, io.EOF
}

// Retry is the reconnection delay last requested by the server, or zero.
func (r *Reader) Retry() time.Duration {
	return r.retry
}

// LastID is the most recent id seen on the stream, used for Last-Event-ID.
func (r *Reader) LastID() string {
	return r.lastID
}
