package models

import (
	"time"
)

// Category is the domain area an event belongs to.
type Category string

const (
	CategoryTTS           Category = "tts"
	CategoryQuality       Category = "quality"
	CategoryExport        Category = "export"
	CategoryHealth        Category = "health"
	CategorySpeakers      Category = "speakers"
	CategorySettings      Category = "settings"
	CategoryChapter       Category = "chapter"
	CategorySegment       Category = "segment"
	CategoryPronunciation Category = "pronunciation"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryTTS,
	CategoryQuality,
	CategoryExport,
	CategoryHealth,
	CategorySpeakers,
	CategorySettings,
	CategoryChapter,
	CategorySegment,
	CategoryPronunciation,
}

// Label is the display string used by the renderer and by search.
func (c Category) Label() string {
	switch c {
	case CategoryTTS:
		return "TTS"
	case CategoryQuality:
		return "Quality"
	case CategoryExport:
		return "Export"
	case CategoryHealth:
		return "Health"
	case CategorySpeakers:
		return "Speakers"
	case CategorySettings:
		return "Settings"
	case CategoryChapter:
		return "Chapter"
	case CategorySegment:
		return "Segment"
	case CategoryPronunciation:
		return "Pronunciation"
	}
	return string(c)
}

func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity is the importance of an event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var AllSeverities = []Severity{
	SeverityInfo,
	SeveritySuccess,
	SeverityWarning,
	SeverityError,
}

func (s Severity) Valid() bool {
	for _, known := range AllSeverities {
		if s == known {
			return true
		}
	}
	return false
}

// LogEvent is one normalized backend occurrence shown in the activity feed.
// Events are never mutated after they enter the store.
type LogEvent struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Category  Category       `json:"category"`
	Severity  Severity       `json:"severity"`
	EventType string         `json:"event_type"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	Channel   string         `json:"channel,omitempty"`
}

type EventsResponse struct {
	Events  []LogEvent `json:"events"`
	Total   int        `json:"total"`
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
	HasMore bool       `json:"has_more"`
}

type EventsQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// RawEvent is the JSON form of a transport message accepted by the ingest endpoint.
type RawEvent struct {
	Type string `json:"type"`
	Data string `json:"data" binding:"required"`
	ID   string `json:"id"`
}
