package transport

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, stream string) ([]Message, *Reader) {
	t.Helper()
	r := NewReader(strings.NewReader(stream))
	var out []Message
	for {
		msg, err := r.Next()
		if err == io.EOF {
			return out, r
		}
		require.NoError(t, err)
		out = append(out, msg)
	}
}

func TestReader(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []Message
	}{
		{
			name:   "default type",
			stream: "data: {\"event\":\"job.started\"}\n\n",
			want:   []Message{{Type: "message", Data: `{"event":"job.started"}`}},
		},
		{
			name:   "named event with id",
			stream: "event: connected\nid: abc\ndata: {}\n\n",
			want:   []Message{{Type: "connected", Data: "{}", ID: "abc"}},
		},
		{
			name:   "multi-line data",
			stream: "data: one\ndata: two\n\n",
			want:   []Message{{Type: "message", Data: "one\ntwo"}},
		},
		{
			name:   "keepalive comments skipped",
			stream: ": keepalive\n\ndata: x\n: keepalive\n\n",
			want:   []Message{{Type: "message", Data: "x"}},
		},
		{
			name:   "no space after colon",
			stream: "data:x\n\n",
			want:   []Message{{Type: "message", Data: "x"}},
		},
		{
			name:   "event without data is dropped",
			stream: "event: ping\n\ndata: y\n\n",
			want:   []Message{{Type: "message", Data: "y"}},
		},
		{
			name:   "unterminated trailing event discarded",
			stream: "data: a\n\ndata: b\n",
			want:   []Message{{Type: "message", Data: "a"}},
		},
		{
			name:   "id does not leak to next event",
			stream: "id: 1\ndata: a\n\ndata: b\n\n",
			want: []Message{
				{Type: "message", Data: "a", ID: "1"},
				{Type: "message", Data: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := readAll(t, tt.stream)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReaderState(t *testing.T) {
	_, r := readAll(t, "retry: 2500\nid: 7\ndata: a\n\nid: bad\x00\ndata: b\n\nretry: nope\n\n")
	assert.Equal(t, 2500*time.Millisecond, r.Retry())
	assert.Equal(t, "7", r.LastID())
}
