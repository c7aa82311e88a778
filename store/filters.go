package store

import (
	"encoding/json"
	"fmt"

	"activitylog/models"
)

// Filter keys accepted by SetFilter. The camelCase spellings used by the
// persisted preferences are accepted as aliases.
const (
	KeyCategories  = "categories"
	KeySeverities  = "severities"
	KeyTimeRange   = "time_range"
	KeySearchQuery = "search_query"
	KeyAutoScroll  = "auto_scroll"
)

var keyAliases = map[string]string{
	"timeRange":   KeyTimeRange,
	"searchQuery": KeySearchQuery,
	"autoScroll":  KeyAutoScroll,
}

// FilterKeyError is returned by SetFilter for a key that is not a
// FilterState field.
type FilterKeyError struct {
	Key string
}

func (e *FilterKeyError) Error() string {
	return fmt.Sprintf("unknown filter key %q", e.Key)
}

// FilterValueError wraps a value that could not be applied to a known key.
type FilterValueError struct {
	Key string
	Err error
}

func (e *FilterValueError) Error() string {
	return fmt.Sprintf("invalid value for filter %q: %v", e.Key, e.Err)
}

func (e *FilterValueError) Unwrap() error {
	return e.Err
}

// SetFilter replaces one FilterState field from its JSON encoding.
func (s *Store) SetFilter(key string, value json.RawMessage) error {
	if alias, ok := keyAliases[key]; ok {
		key = alias
	}

	switch key {
	case KeyCategories:
		var set models.CategorySet
		if err := json.Unmarshal(value, &set); err != nil {
			return &FilterValueError{Key: key, Err: err}
		}
		s.SetCategories(set)
	case KeySeverities:
		var set models.SeveritySet
		if err := json.Unmarshal(value, &set); err != nil {
			return &FilterValueError{Key: key, Err: err}
		}
		s.SetSeverities(set)
	case KeyTimeRange:
		var r models.TimeRange
		if err := json.Unmarshal(value, &r); err != nil {
			return &FilterValueError{Key: key, Err: err}
		}
		return s.SetTimeRange(r)
	case KeySearchQuery:
		var q string
		if err := json.Unmarshal(value, &q); err != nil {
			return &FilterValueError{Key: key, Err: err}
		}
		s.SetSearchQuery(q)
	case KeyAutoScroll:
		var on bool
		if err := json.Unmarshal(value, &on); err != nil {
			return &FilterValueError{Key: key, Err: err}
		}
		s.SetAutoScroll(on)
	default:
		return &FilterKeyError{Key: key}
	}
	return nil
}

func (s *Store) SetCategories(set models.CategorySet) {
	s.updateFilters(true, func(f *models.FilterState) {
		f.Categories = set.Clone()
	})
}

func (s *Store) SetSeverities(set models.SeveritySet) {
	s.updateFilters(true, func(f *models.FilterState) {
		f.Severities = set.Clone()
	})
}

func (s *Store) SetTimeRange(r models.TimeRange) error {
	if !r.Valid() {
		return &FilterValueError{Key: KeyTimeRange, Err: fmt.Errorf("unknown time range %q", r)}
	}
	s.updateFilters(true, func(f *models.FilterState) {
		f.TimeRange = r
	})
	return nil
}

// SetSearchQuery stores the query as typed; it is normalized when evaluated.
// The query is never persisted.
func (s *Store) SetSearchQuery(q string) {
	s.updateFilters(false, func(f *models.FilterState) {
		f.SearchQuery = q
	})
}

func (s *Store) SetAutoScroll(on bool) {
	s.updateFilters(true, func(f *models.FilterState) {
		f.AutoScroll = on
	})
}

// ToggleAutoScroll flips auto-scroll and returns the new value.
func (s *Store) ToggleAutoScroll() bool {
	var on bool
	s.updateFilters(true, func(f *models.FilterState) {
		f.AutoScroll = !f.AutoScroll
		on = f.AutoScroll
	})
	return on
}

func (s *Store) ToggleCategory(c models.Category) {
	s.updateFilters(true, func(f *models.FilterState) {
		if f.Categories.Has(c) {
			delete(f.Categories, c)
		} else {
			f.Categories[c] = struct{}{}
		}
	})
}

func (s *Store) ToggleSeverity(sev models.Severity) {
	s.updateFilters(true, func(f *models.FilterState) {
		if f.Severities.Has(sev) {
			delete(f.Severities, sev)
		} else {
			f.Severities[sev] = struct{}{}
		}
	})
}

// CycleTimeRange advances to the next time range and returns it.
func (s *Store) CycleTimeRange() models.TimeRange {
	var r models.TimeRange
	s.updateFilters(true, func(f *models.FilterState) {
		f.TimeRange = f.TimeRange.Next()
		r = f.TimeRange
	})
	return r
}

// SetFilters replaces the whole filter state. Invalid time ranges fall back
// to the default.
func (s *Store) SetFilters(next models.FilterState) {
	if !next.TimeRange.Valid() {
		next.TimeRange = models.TimeRangeAll
	}
	if next.Categories == nil {
		next.Categories = models.NewCategorySet()
	}
	if next.Severities == nil {
		next.Severities = models.NewSeveritySet()
	}
	s.updateFilters(true, func(f *models.FilterState) {
		*f = next.Clone()
	})
}

// ResetFilters restores the defaults. Calling it repeatedly is a no-op after
// the first call.
func (s *Store) ResetFilters() {
	s.updateFilters(true, func(f *models.FilterState) {
		*f = models.DefaultFilterState()
	})
}

func (s *Store) updateFilters(persist bool, mutate func(f *models.FilterState)) {
	s.mu.Lock()
	next := s.filters.Clone()
	mutate(&next)
	s.filters = next
	prefs := models.PreferencesFrom(next)
	s.mu.Unlock()

	if persist {
		s.saver.schedule(prefs)
	}
	s.notify(Change{Kind: FiltersChanged})
}

// MergePreferences overlays persisted preferences on the defaults. Unknown
// category, severity and time range names are ignored. A persisted list that
// resolves to nothing falls back to the default set unless honorEmpty is
// set and the list was stored empty on purpose.
func MergePreferences(p *models.Preferences, honorEmpty bool) models.FilterState {
	f := models.DefaultFilterState()
	if p == nil {
		return f
	}

	if raw := p.Filters.Categories; raw != nil {
		set := models.NewCategorySet()
		for _, name := range raw {
			if c := models.Category(name); c.Valid() {
				set[c] = struct{}{}
			}
		}
		if len(set) > 0 || (honorEmpty && len(raw) == 0) {
			f.Categories = set
		}
	}

	if raw := p.Filters.Severities; raw != nil {
		set := models.NewSeveritySet()
		for _, name := range raw {
			if sev := models.Severity(name); sev.Valid() {
				set[sev] = struct{}{}
			}
		}
		if len(set) > 0 || (honorEmpty && len(raw) == 0) {
			f.Severities = set
		}
	}

	if r := models.TimeRange(p.Filters.TimeRange); r.Valid() {
		f.TimeRange = r
	}
	if p.AutoScroll != nil {
		f.AutoScroll = *p.AutoScroll
	}
	return f
}
