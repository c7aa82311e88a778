// Package store owns the activity log: a capped, arrival-ordered buffer of
// log events plus the filter configuration used to view it.
//
// A Store is created once at startup, loaded with Load and released with
// Close. All methods are safe for concurrent use; readers receive copies.
package store

import (
	"context"
	"sync"
	"time"

	"activitylog/filter"
	"activitylog/mapper"
	"activitylog/models"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxEvents = 1000
	DefaultDebounce  = 250 * time.Millisecond

	subscriberBuffer = 128
)

type ChangeKind int

const (
	EventAdded ChangeKind = iota
	EventsCleared
	FiltersChanged
)

func (k ChangeKind) String() string {
	switch k {
	case EventAdded:
		return "event_added"
	case EventsCleared:
		return "events_cleared"
	case FiltersChanged:
		return "filters_changed"
	}
	return "unknown"
}

// Change is delivered to subscribers after every mutation. Event is set for
// EventAdded only.
type Change struct {
	Kind  ChangeKind
	Event *models.LogEvent
}

type Stats struct {
	Buffered             int   `json:"buffered"`
	Capacity             int   `json:"capacity"`
	Added                int64 `json:"added"`
	Evicted              int64 `json:"evicted"`
	Duplicates           int64 `json:"duplicates"`
	DroppedNotifications int64 `json:"dropped_notifications"`
	Subscribers          int   `json:"subscribers"`
}

type Store struct {
	mu          sync.RWMutex
	events      []models.LogEvent
	ids         map[string]struct{}
	filters     models.FilterState
	subscribers map[chan Change]struct{}
	stats       Stats
	closed      bool

	maxEvents  int
	honorEmpty bool
	debounce   time.Duration
	prefs      PreferenceStore
	saver      *saver
	now        func() time.Time
	log        *log.Entry
}

type Option func(*Store)

// WithMaxEvents sets the buffer capacity. Values below 1 keep the default.
func WithMaxEvents(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEvents = n
		}
	}
}

// WithPreferences sets where filter preferences are loaded from and saved to.
func WithPreferences(p PreferenceStore) Option {
	return func(s *Store) { s.prefs = p }
}

// WithDebounce sets how long preference writes are coalesced. Zero writes
// synchronously.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithHonorEmptyFilters makes Load keep persisted empty category or severity
// lists instead of falling back to the defaults.
func WithHonorEmptyFilters(honor bool) Option {
	return func(s *Store) { s.honorEmpty = honor }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *log.Entry) Option {
	return func(s *Store) { s.log = l }
}

func New(opts ...Option) *Store {
	s := &Store{
		ids:         make(map[string]struct{}),
		filters:     models.DefaultFilterState(),
		subscribers: make(map[chan Change]struct{}),
		maxEvents:   DefaultMaxEvents,
		debounce:    DefaultDebounce,
		prefs:       NopPreferences{},
		now:         time.Now,
		log:         log.WithField("component", "store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stats.Capacity = s.maxEvents
	s.saver = newSaver(s.prefs, s.debounce, s.log)
	return s
}

// Load replaces the filter state with persisted preferences merged over the
// defaults. Read failures are logged and leave the defaults in place.
func (s *Store) Load(ctx context.Context) {
	start := time.Now()
	p, err := s.prefs.LoadPreferences(ctx)
	if err != nil {
		s.log.WithError(err).Warn("failed to load preferences, using defaults")
		p = nil
	}
	filters := MergePreferences(p, s.honorEmpty)

	s.mu.Lock()
	filters.SearchQuery = ""
	s.filters = filters
	s.mu.Unlock()

	s.log.WithFields(log.Fields{
		"duration":   time.Since(start),
		"categories": len(filters.Categories),
		"severities": len(filters.Severities),
		"time_range": filters.TimeRange,
	}).Debug("Load")
	s.notify(Change{Kind: FiltersChanged})
}

// Close flushes a pending preference write and closes every subscription.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subscribers
	s.subscribers = make(map[chan Change]struct{})
	s.mu.Unlock()

	s.saver.close()
	for ch := range subs {
		close(ch)
	}
}

// AddEvent appends e, filling in a missing id, timestamp, category and
// severity, and evicts from the head once capacity is exceeded. An event
// whose id is already buffered is dropped; AddEvent reports whether e was
// stored.
func (s *Store) AddEvent(e models.LogEvent) bool {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	if e.ID == "" {
		e.ID = mapper.NewID(e.Timestamp)
	}
	if !e.Category.Valid() {
		e.Category = models.CategoryHealth
	}
	if !e.Severity.Valid() {
		e.Severity = models.SeverityInfo
	}
	if e.Message == "" {
		e.Message = mapper.Humanize(e.EventType)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if _, dup := s.ids[e.ID]; dup {
		s.stats.Duplicates++
		s.mu.Unlock()
		s.log.WithFields(log.Fields{"id": e.ID, "event_type": e.EventType}).Debug("dropping duplicate event")
		return false
	}

	s.events = append(s.events, e)
	s.ids[e.ID] = struct{}{}
	s.stats.Added++
	if over := len(s.events) - s.maxEvents; over > 0 {
		for _, old := range s.events[:over] {
			delete(s.ids, old.ID)
		}
		clear(s.events[:over])
		s.events = s.events[over:]
		s.stats.Evicted += int64(over)
	}
	s.mu.Unlock()

	s.notify(Change{Kind: EventAdded, Event: &e})
	return true
}

// Ingest maps a raw stream message and adds the result. The bool is false
// when the event was a duplicate or the store is closed.
func (s *Store) Ingest(raw mapper.Raw) (models.LogEvent, bool) {
	e := mapper.Map(raw, mapper.WithClock(s.now))
	return e, s.AddEvent(e)
}

// ClearEvents empties the buffer. Filters are untouched.
func (s *Store) ClearEvents() {
	s.mu.Lock()
	clear(s.events)
	s.events = nil
	s.ids = make(map[string]struct{})
	s.mu.Unlock()

	s.notify(Change{Kind: EventsCleared})
}

// Events returns a copy of the buffer in arrival order.
func (s *Store) Events() []models.LogEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LogEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *Store) Capacity() int {
	return s.maxEvents
}

// Filters returns a copy of the current filter state.
func (s *Store) Filters() models.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Clone()
}

// FilteredEvents evaluates the current filters against the buffer. The
// result is computed on every call.
func (s *Store) FilteredEvents() []models.LogEvent {
	s.mu.RLock()
	events := make([]models.LogEvent, len(s.events))
	copy(events, s.events)
	filters := s.filters.Clone()
	s.mu.RUnlock()

	return filter.Apply(events, filters, s.now())
}

// Visible reports whether e passes the current filters.
func (s *Store) Visible(e models.LogEvent) bool {
	s.mu.RLock()
	filters := s.filters.Clone()
	s.mu.RUnlock()
	filters.SearchQuery = filter.NormalizeQuery(filters.SearchQuery)
	return filter.Matches(e, filters, s.now())
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.stats
	st.Buffered = len(s.events)
	st.Subscribers = len(s.subscribers)
	return st
}

// Subscribe returns a channel that receives a Change after every mutation.
// Slow subscribers miss notifications rather than block writers.
func (s *Store) Subscribe() <-chan Change {
	ch := make(chan Change, subscriberBuffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers[ch] = struct{}{}
	return ch
}

func (s *Store) Unsubscribe(sub <-chan Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		if ch == sub {
			delete(s.subscribers, ch)
			close(ch)
			return
		}
	}
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	subs := make([]chan Change, 0, len(s.subscribers))
	for ch := range s.subscribers {
		subs = append(subs, ch)
	}
	s.mu.RUnlock()

	dropped := 0
	for _, ch := range subs {
		if !trySend(ch, c) {
			dropped++
		}
	}
	if dropped == 0 {
		return
	}
	s.mu.Lock()
	s.stats.DroppedNotifications += int64(dropped)
	s.mu.Unlock()
}

// trySend delivers without blocking. A channel closed by a concurrent
// Unsubscribe counts as a drop.
func trySend(ch chan Change, c Change) (sent bool) {
	defer func() {
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case ch <- c:
		return true
	default:
		return false
	}
}
