package models

import (
	"encoding/json"
	"time"
)

// TimeRange selects how far back the activity feed looks.
type TimeRange string

const (
	TimeRangeFiveMinutes TimeRange = "5min"
	TimeRangeHour        TimeRange = "1hour"
	TimeRangeToday       TimeRange = "today"
	TimeRangeAll         TimeRange = "all"
)

var AllTimeRanges = []TimeRange{
	TimeRangeFiveMinutes,
	TimeRangeHour,
	TimeRangeToday,
	TimeRangeAll,
}

func (r TimeRange) Valid() bool {
	switch r {
	case TimeRangeFiveMinutes, TimeRangeHour, TimeRangeToday, TimeRangeAll:
		return true
	}
	return false
}

// Window returns the sliding duration for relative ranges. Ok is false for
// "today" and "all", which are not simple durations.
func (r TimeRange) Window() (time.Duration, bool) {
	switch r {
	case TimeRangeFiveMinutes:
		return 5 * time.Minute, true
	case TimeRangeHour:
		return time.Hour, true
	}
	return 0, false
}

// Next cycles through the ranges in display order.
func (r TimeRange) Next() TimeRange {
	for i, tr := range AllTimeRanges {
		if tr == r {
			return AllTimeRanges[(i+1)%len(AllTimeRanges)]
		}
	}
	return TimeRangeAll
}

func (r TimeRange) Label() string {
	switch r {
	case TimeRangeFiveMinutes:
		return "Last 5 minutes"
	case TimeRangeHour:
		return "Last hour"
	case TimeRangeToday:
		return "Today"
	}
	return "All"
}

// CategorySet is the set of enabled categories. It serializes as a list in
// canonical order; unknown names are dropped on decode.
type CategorySet map[Category]struct{}

func NewCategorySet(categories ...Category) CategorySet {
	s := make(CategorySet, len(categories))
	for _, c := range categories {
		s[c] = struct{}{}
	}
	return s
}

func (s CategorySet) Has(c Category) bool {
	_, ok := s[c]
	return ok
}

func (s CategorySet) List() []Category {
	out := []Category{}
	for _, c := range AllCategories {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s CategorySet) Clone() CategorySet {
	return NewCategorySet(s.List()...)
}

func (s CategorySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *CategorySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := make(CategorySet, len(names))
	for _, n := range names {
		if c := Category(n); c.Valid() {
			set[c] = struct{}{}
		}
	}
	*s = set
	return nil
}

// SeveritySet is the set of enabled severities.
type SeveritySet map[Severity]struct{}

func NewSeveritySet(severities ...Severity) SeveritySet {
	s := make(SeveritySet, len(severities))
	for _, sev := range severities {
		s[sev] = struct{}{}
	}
	return s
}

func (s SeveritySet) Has(sev Severity) bool {
	_, ok := s[sev]
	return ok
}

func (s SeveritySet) List() []Severity {
	out := []Severity{}
	for _, sev := range AllSeverities {
		if s.Has(sev) {
			out = append(out, sev)
		}
	}
	return out
}

func (s SeveritySet) Clone() SeveritySet {
	return NewSeveritySet(s.List()...)
}

func (s SeveritySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *SeveritySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := make(SeveritySet, len(names))
	for _, n := range names {
		if sev := Severity(n); sev.Valid() {
			set[sev] = struct{}{}
		}
	}
	*s = set
	return nil
}

// FilterState is the user-controlled view configuration of the activity feed.
type FilterState struct {
	Categories  CategorySet `json:"categories"`
	Severities  SeveritySet `json:"severities"`
	TimeRange   TimeRange   `json:"time_range"`
	SearchQuery string      `json:"search_query"`
	AutoScroll  bool        `json:"auto_scroll"`
}

// DefaultFilterState enables everything, shows all time and follows new events.
func DefaultFilterState() FilterState {
	return FilterState{
		Categories: NewCategorySet(AllCategories...),
		Severities: NewSeveritySet(AllSeverities...),
		TimeRange:  TimeRangeAll,
		AutoScroll: true,
	}
}

func (f FilterState) Clone() FilterState {
	out := f
	out.Categories = f.Categories.Clone()
	out.Severities = f.Severities.Clone()
	return out
}

// Equal compares two filter states by value.
func (f FilterState) Equal(o FilterState) bool {
	if f.TimeRange != o.TimeRange || f.SearchQuery != o.SearchQuery || f.AutoScroll != o.AutoScroll {
		return false
	}
	if len(f.Categories) != len(o.Categories) || len(f.Severities) != len(o.Severities) {
		return false
	}
	for c := range f.Categories {
		if !o.Categories.Has(c) {
			return false
		}
	}
	for s := range f.Severities {
		if !o.Severities.Has(s) {
			return false
		}
	}
	return true
}

// PreferencesKey is the namespaced key the persisted preferences live under.
const PreferencesKey = "activity-log-preferences"

// Preferences is the persisted subset of FilterState. SearchQuery is never stored.
type Preferences struct {
	Filters    PersistedFilters `json:"filters"`
	AutoScroll *bool            `json:"autoScroll,omitempty"`
}

type PersistedFilters struct {
	Categories []string `json:"categories"`
	Severities []string `json:"severities"`
	TimeRange  string   `json:"timeRange"`
}

// PreferencesFrom captures the persisted part of a filter state.
func PreferencesFrom(f FilterState) Preferences {
	p := Preferences{
		Filters: PersistedFilters{
			Categories: []string{},
			Severities: []string{},
			TimeRange:  string(f.TimeRange),
		},
	}
	for _, c := range f.Categories.List() {
		p.Filters.Categories = append(p.Filters.Categories, string(c))
	}
	for _, s := range f.Severities.List() {
		p.Filters.Severities = append(p.Filters.Severities, string(s))
	}
	autoScroll := f.AutoScroll
	p.AutoScroll = &autoScroll
	return p
}
