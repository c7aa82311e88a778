package mapper

import (
	"strings"

	"activitylog/models"
)

// categoryPrefixes maps event type prefixes to categories. Resolution is
// longest-prefix-match, so table order carries no meaning.
var categoryPrefixes = map[string]models.Category{
	"segment":       models.CategorySegment,
	"job":           models.CategoryTTS,
	"tts":           models.CategoryTTS,
	"generation":    models.CategoryTTS,
	"quality":       models.CategoryQuality,
	"export":        models.CategoryExport,
	"health":        models.CategoryHealth,
	"engine":        models.CategoryHealth,
	"docker":        models.CategoryHealth,
	"connected":     models.CategoryHealth,
	"transport":     models.CategoryHealth,
	"speaker":       models.CategorySpeakers,
	"settings":      models.CategorySettings,
	"chapter":       models.CategoryChapter,
	"project":       models.CategoryChapter,
	"import":        models.CategoryChapter,
	"pronunciation": models.CategoryPronunciation,
}

// CategoryFor returns the category of the longest table prefix that matches
// eventType on a separator boundary. Unmatched types belong to health.
func CategoryFor(eventType string) models.Category {
	t := strings.ToLower(eventType)

	best := ""
	category := models.CategoryHealth
	for prefix, c := range categoryPrefixes {
		if len(prefix) <= len(best) || !hasBoundaryPrefix(t, prefix) {
			continue
		}
		best = prefix
		category = c
	}
	return category
}

// hasBoundaryPrefix reports whether s starts with prefix and the prefix ends
// at the end of s or at a separator ('.', '_', '-' or ':').
func hasBoundaryPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	if len(s) == len(prefix) {
		return true
	}
	switch s[len(prefix)] {
	case '.', '_', '-', ':':
		return true
	}
	return false
}
