// Package transport subscribes to the backend event stream and hands every
// message to a callback, reconnecting with backoff until cancelled.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	SubscribePath = "/api/events/subscribe"

	// EventDisconnected is emitted by Run each time the stream drops.
	EventDisconnected = "transport.disconnected"

	DefaultMinBackoff = time.Second
	DefaultMaxBackoff = 30 * time.Second

	maxErrorBody = 512
)

var DefaultChannels = []string{"jobs", "health", "export", "speakers", "settings"}

// StatusError is returned for a non-2xx subscribe response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	channels   []string
	token      string
	httpClient *http.Client
	minBackoff time.Duration
	maxBackoff time.Duration
	log        *log.Entry

	lastID string
}

type Option func(*Client)

func WithChannels(channels ...string) Option {
	return func(c *Client) {
		if len(channels) > 0 {
			c.channels = channels
		}
	}
}

// WithHTTPClient replaces the default client. It must not set a Timeout,
// which would cut long-lived streams.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the first reconnect delay and the cap it doubles up to.
func WithBackoff(first, limit time.Duration) Option {
	return func(c *Client) {
		if first > 0 {
			c.minBackoff = first
		}
		if limit >= c.minBackoff {
			c.maxBackoff = limit
		}
	}
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(l *log.Entry) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		channels:   DefaultChannels,
		httpClient: &http.Client{},
		minBackoff: DefaultMinBackoff,
		maxBackoff: DefaultMaxBackoff,
		log:        log.WithField("component", "transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL is the subscribe endpoint including the channel list.
func (c *Client) URL() string {
	q := url.Values{}
	q.Set("channels", strings.Join(c.channels, ","))
	return c.baseURL + SubscribePath + "?" + q.Encode()
}

// Run streams messages into handle until ctx is cancelled, which is the only
// way it returns. handle is called from a single goroutine. After every
// dropped connection a synthetic transport.disconnected message is delivered
// before the reconnect delay.
func (c *Client) Run(ctx context.Context, handle func(Message)) error {
	attempt := 0
	for {
		connected, retry, err := c.stream(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			attempt = 0
		}
		attempt++

		wait := c.backoff(attempt, retry)
		if err == nil {
			err = io.EOF
		}
		c.log.WithError(err).WithFields(log.Fields{
			"attempt": attempt,
			"retry":   wait,
		}).Warn("event stream disconnected")
		handle(disconnected(err, attempt, wait))

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// stream runs one connection. connected reports whether the server accepted
// the subscription; retry is the server-requested delay, if any.
func (c *Client) stream(ctx context.Context, handle func(Message)) (connected bool, retry time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return false, 0, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.lastID != "" {
		req.Header.Set("Last-Event-ID", c.lastID)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return false, 0, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.log.WithField("url", c.URL()).Info("event stream connected")

	r := NewReader(resp.Body)
	for {
		msg, err := r.Next()
		if id := r.LastID(); id != "" {
			c.lastID = id
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			return true, r.Retry(), err
		}
		handle(msg)
	}
}

// backoff doubles from minBackoff per attempt up to maxBackoff. A server
// retry hint replaces the computed delay but is still capped.
func (c *Client) backoff(attempt int, retry time.Duration) time.Duration {
	if retry > 0 {
		return min(retry, c.maxBackoff)
	}
	d := c.minBackoff
	for i := 1; i < attempt && d < c.maxBackoff; i++ {
		d *= 2
	}
	return min(d, c.maxBackoff)
}

func disconnected(err error, attempt int, wait time.Duration) Message {
	data, _ := json.Marshal(map[string]any{
		"event":   EventDisconnected,
		"error":   err.Error(),
		"attempt": attempt,
		"retryMs": wait.Milliseconds(),
	})
	return Message{Type: EventDisconnected, Data: string(data)}
}
