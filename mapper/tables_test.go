package mapper

import (
	"encoding/json"
	"testing"
	"unicode/utf8"

	"activitylog/models"

	"github.com/stretchr/testify/assert"
)

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		eventType string
		expected  models.Category
	}{
		{"segment.completed", models.CategorySegment},
		{"job.progress", models.CategoryTTS},
		{"quality.job.started", models.CategoryQuality},
		{"export.failed", models.CategoryExport},
		{"engine.model_loaded", models.CategoryHealth},
		{"health.update", models.CategoryHealth},
		{"speaker.sample_added", models.CategorySpeakers},
		{"settings.reset", models.CategorySettings},
		{"chapter.updated", models.CategoryChapter},
		{"project.created", models.CategoryChapter},
		{"pronunciation.rule.created", models.CategoryPronunciation},
		{"SEGMENT.STARTED", models.CategorySegment},
		{"segment", models.CategorySegment},
		{"segments.reordered", models.CategoryHealth},
		{"jobless.thing", models.CategoryHealth},
		{"", models.CategoryHealth},
		{"totally.unknown", models.CategoryHealth},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			assert.Equal(t, tt.expected, CategoryFor(tt.eventType))
		})
	}
}

func TestCategoryFor_LongestPrefixWins(t *testing.T) {
	categoryPrefixes["quality.job"] = models.CategoryTTS
	defer delete(categoryPrefixes, "quality.job")

	for i := 0; i < 50; i++ {
		assert.Equal(t, models.CategoryTTS, CategoryFor("quality.job.started"))
		assert.Equal(t, models.CategoryQuality, CategoryFor("quality.segment.analyzed"))
	}
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		eventType string
		expected  models.Severity
	}{
		{"job.failed", models.SeverityError},
		{"engine.error", models.SeverityError},
		{"job.completed", models.SeveritySuccess},
		{"speaker.created", models.SeveritySuccess},
		{"speaker.sample_deleted", models.SeveritySuccess},
		{"engine.enabled", models.SeveritySuccess},
		{"job.cancelled", models.SeverityWarning},
		{"engine.disabled", models.SeverityWarning},
		{"engine.stopped", models.SeverityWarning},
		{"transport.disconnected", models.SeverityWarning},
		{"job.started", models.SeverityInfo},
		{"export.progress", models.SeverityInfo},
		{"job.resumed", models.SeverityInfo},
		{"chapter.updated", models.SeverityInfo},
		{"Job.FAILED", models.SeverityError},
		{"settings.reset", models.SeverityInfo},
		{"cleanup.failed_after_completed", models.SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			assert.Equal(t, tt.expected, SeverityFor(tt.eventType))
		})
	}
}

func TestNormalize(t *testing.T) {
	f := Normalize(map[string]any{
		"segment_id":  "snake",
		"chapterId":   "camel",
		"chapter_id":  "loses",
		"_channel":    "jobs",
		"total__segs": json.Number("3"),
	})

	assert.Equal(t, "snake", f.String("segmentId"))
	assert.Equal(t, "camel", f.String("chapterId"))
	assert.Equal(t, "jobs", f.String("_channel"))
	assert.Equal(t, "3", f.String("totalSegs"))
	_, hasSnake := f["segment_id"]
	assert.False(t, hasSnake)
}

func TestFields_Accessors(t *testing.T) {
	f := Fields{
		"n":     json.Number("46.5"),
		"f":     12.0,
		"s":     "7",
		"b":     true,
		"list":  []any{"a", "b"},
		"obj":   map[string]any{"x": 1},
		"empty": "",
	}

	n, ok := f.Float("n")
	assert.True(t, ok)
	assert.Equal(t, 46.5, n)

	i, ok := f.Int("s")
	assert.True(t, ok)
	assert.Equal(t, 7, i)

	_, ok = f.Float("obj")
	assert.False(t, ok)

	assert.Equal(t, "12", f.String("f"))
	assert.Equal(t, "true", f.String("b"))
	assert.Equal(t, "", f.String("obj"))
	assert.Equal(t, 2, f.Len("list"))
	assert.Equal(t, 0, f.Len("obj"))
	assert.Equal(t, "7", f.First("empty", "missing", "s"))
}

func TestMessage(t *testing.T) {
	tests := []struct {
		eventType string
		fields    Fields
		expected  string
	}{
		{
			eventType: "job.progress",
			fields:    Fields{"jobId": "job-12345678", "processedSegments": json.Number("23"), "totalSegments": json.Number("50"), "progress": json.Number("46")},
			expected:  "TTS job job-1234: 23/50 segments (46%)",
		},
		{
			eventType: "job.created",
			fields:    Fields{"jobId": "job-1", "chapterId": "ch-1", "segmentIds": []any{"a", "b", "c"}},
			expected:  "TTS job job-1 queued for chapter ch-1 (3 segments)",
		},
		{
			eventType: "health.update",
			fields:    Fields{"status": "ok", "activeJobs": json.Number("2")},
			expected:  "Backend ok (2 active jobs)",
		},
		{
			eventType: "engine.model_loaded",
			fields:    Fields{"variantId": "xtts:local", "modelName": "v2.0.3"},
			expected:  "Engine xtts:local loaded model v2.0.3",
		},
		{
			eventType: "speaker.created",
			fields:    Fields{"name": "John Doe", "speakerId": "spk-123"},
			expected:  `Speaker "John Doe" created`,
		},
		{
			eventType: "pronunciation.rule.created",
			fields:    Fields{"pattern": "Dr.", "replacement": "Doctor"},
			expected:  "Pronunciation rule created: Dr. -> Doctor",
		},
		{
			eventType: "segment.failed",
			fields:    Fields{"segmentId": "seg"},
			expected:  "Segment seg failed",
		},
		{
			eventType: "engine.started",
			fields:    Fields{},
			expected:  "Engine - started",
		},
		{
			eventType: "",
			fields:    Fields{},
			expected:  "Unknown event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			assert.Equal(t, tt.expected, Message(tt.eventType, tt.fields))
		})
	}
}

func TestMessage_EveryTemplateToleratesEmptyFields(t *testing.T) {
	for eventType, fn := range messages {
		assert.NotPanics(t, func() {
			assert.NotEmpty(t, fn(Fields{}), eventType)
		}, eventType)
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		eventType string
		expected  string
	}{
		{"engine.model_loaded", "Engine model loaded"},
		{"élan.started", "Élan started"},
		{"..", "Unknown event"},
		{"", "Unknown event"},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			got := Humanize(tt.eventType)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestMultibyteKeysAndIDs(t *testing.T) {
	assert.Equal(t, "chapterÉtat", camelCase("chapter_état"))
	assert.Equal(t, "éééééééé", shortID("ééééééééé"))
	assert.Equal(t, "abcdefgh", shortID("abcdefghijkl"))
	assert.Equal(t, "abc", shortID("abc"))
	assert.True(t, utf8.ValidString(shortID("片段片段片段片段片段")))
	assert.Equal(t, "片段片段片段片段", shortID("片段片段片段片段片段"))
}
