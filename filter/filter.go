// Package filter holds the predicates that decide which log events are
// visible under a FilterState. All functions are pure.
package filter

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"activitylog/models"
)

// Matches reports whether e passes every predicate of f at time now.
func Matches(e models.LogEvent, f models.FilterState, now time.Time) bool {
	return MatchCategory(e, f) &&
		MatchSeverity(e, f) &&
		MatchTimeRange(e, f.TimeRange, now) &&
		MatchSearch(e, f.SearchQuery)
}

// Apply returns the events that match f, in arrival order.
func Apply(events []models.LogEvent, f models.FilterState, now time.Time) []models.LogEvent {
	query := NormalizeQuery(f.SearchQuery)
	f.SearchQuery = query

	out := make([]models.LogEvent, 0, len(events))
	for _, e := range events {
		if Matches(e, f, now) {
			out = append(out, e)
		}
	}
	return out
}

func MatchCategory(e models.LogEvent, f models.FilterState) bool {
	return f.Categories.Has(e.Category)
}

func MatchSeverity(e models.LogEvent, f models.FilterState) bool {
	return f.Severities.Has(e.Severity)
}

// MatchTimeRange applies relative windows against now and compares local
// calendar dates for "today". Unknown ranges behave like "all".
func MatchTimeRange(e models.LogEvent, r models.TimeRange, now time.Time) bool {
	if window, ok := r.Window(); ok {
		return now.Sub(e.Timestamp) <= window
	}
	if r == models.TimeRangeToday {
		return sameLocalDay(e.Timestamp, now)
	}
	return true
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// MatchSearch does a case-insensitive substring match against the event
// type, the message, the category label and finally the JSON payload.
// An empty query matches everything. Whitespace in the query is significant.
func MatchSearch(e models.LogEvent, query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}

	if containsFold(e.EventType, q) || containsFold(e.Message, q) ||
		containsFold(e.Category.Label(), q) || containsFold(string(e.Category), q) {
		return true
	}

	if len(e.Payload) == 0 {
		return false
	}
	payload, err := payloadText(e.Payload)
	if err != nil {
		return false
	}
	return containsFold(payload, q)
}

// payloadText renders the payload as JSON without HTML escaping, so the text
// searched is the text shown.
func payloadText(payload map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// containsFold expects needle to be lower-cased already.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
