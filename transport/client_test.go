package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientURL(t *testing.T) {
	c := NewClient("http://localhost:8765/", WithChannels("jobs", "health"))
	assert.Equal(t, "http://localhost:8765/api/events/subscribe?channels=jobs%2Chealth", c.URL())

	c = NewClient("http://localhost:8765")
	assert.Contains(t, c.URL(), "channels=jobs%2Chealth%2Cexport%2Cspeakers%2Csettings")
}

func TestBackoff(t *testing.T) {
	c := NewClient("http://x", WithBackoff(time.Second, 30*time.Second))

	tests := []struct {
		attempt int
		retry   time.Duration
		want    time.Duration
	}{
		{1, 0, time.Second},
		{2, 0, 2 * time.Second},
		{3, 0, 4 * time.Second},
		{5, 0, 16 * time.Second},
		{6, 0, 30 * time.Second},
		{50, 0, 30 * time.Second},
		{3, 500 * time.Millisecond, 500 * time.Millisecond},
		{1, time.Hour, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%v", tt.attempt, tt.retry), func(t *testing.T) {
			assert.Equal(t, tt.want, c.backoff(tt.attempt, tt.retry))
		})
	}
}

func TestRunReconnects(t *testing.T) {
	var (
		mu      sync.Mutex
		lastIDs []string
		calls   int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		lastIDs = append(lastIDs, r.Header.Get("Last-Event-ID"))
		mu.Unlock()

		assert.Equal(t, SubscribePath, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "retry: 10\n")
		fmt.Fprintf(w, "id: evt-%d\ndata: {\"event\":\"job.progress\",\"n\":%d}\n\n", n, n)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("secret"), WithBackoff(time.Millisecond, 20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []Message
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, func(m Message) {
			got = append(got, m)
			if len(got) == 4 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	require.Len(t, got, 4)
	assert.Equal(t, "evt-1", got[0].ID)
	assert.Equal(t, EventDisconnected, got[1].Type)
	assert.Equal(t, "evt-2", got[2].ID)
	assert.Equal(t, EventDisconnected, got[3].Type)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(got[1].Data), &payload))
	assert.Equal(t, EventDisconnected, payload["event"])
	assert.EqualValues(t, 1, payload["attempt"])

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(lastIDs), 2)
	assert.Equal(t, "", lastIDs[0])
	assert.Equal(t, "evt-1", lastIDs[1])
}

func TestRunStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithBackoff(time.Millisecond, 4*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts []float64
	err := c.Run(ctx, func(m Message) {
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(m.Data), &payload))
		assert.Contains(t, payload["error"], "HTTP 503")
		attempts = append(attempts, payload["attempt"].(float64))
		if len(attempts) == 3 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []float64{1, 2, 3}, attempts)
}
