package mapper

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type messageFunc func(f Fields) string

// messages holds the templates for event types the backend is known to emit.
var messages = map[string]messageFunc{
	"connected": func(f Fields) string {
		if n := f.Len("channels"); n > 0 {
			return fmt.Sprintf("Connected to event stream (%d channels)", n)
		}
		return "Connected to event stream"
	},
	"transport.disconnected": func(f Fields) string {
		return withReason("Disconnected from event stream", f)
	},

	"job.created": func(f Fields) string {
		return fmt.Sprintf("TTS job %s queued for chapter %s (%s)", f.ShortID("jobId"), f.ShortID("chapterId"), segmentCount(f))
	},
	"job.started": func(f Fields) string {
		return fmt.Sprintf("TTS job %s started (%s)", f.ShortID("jobId"), segmentCount(f))
	},
	"job.progress": func(f Fields) string {
		msg := fmt.Sprintf("TTS job %s: %s/%s segments%s",
			f.ShortID("jobId"), orDash(f.String("processedSegments")), orDash(f.String("totalSegments")), percent(f, "progress"))
		if detail := f.String("message"); detail != "" {
			msg += " - " + detail
		}
		return msg
	},
	"job.completed": func(f Fields) string {
		return fmt.Sprintf("TTS job %s completed (%s)", f.ShortID("jobId"), segmentCount(f))
	},
	"job.failed": func(f Fields) string {
		return withReason(fmt.Sprintf("TTS job %s failed", f.ShortID("jobId")), f)
	},
	"job.cancelled": func(f Fields) string {
		return fmt.Sprintf("TTS job %s cancelled", f.ShortID("jobId"))
	},
	"job.resumed": func(f Fields) string {
		return fmt.Sprintf("TTS job %s resumed", f.ShortID("jobId"))
	},

	"segment.started": func(f Fields) string {
		return fmt.Sprintf("Segment %s generating", f.ShortID("segmentId"))
	},
	"segment.completed": func(f Fields) string {
		return fmt.Sprintf("Segment %s generated", f.ShortID("segmentId"))
	},
	"segment.failed": func(f Fields) string {
		return withReason(fmt.Sprintf("Segment %s failed", f.ShortID("segmentId")), f)
	},
	"segment.updated": func(f Fields) string {
		if status := f.String("status"); status != "" {
			return fmt.Sprintf("Segment %s updated (%s)", f.ShortID("segmentId"), status)
		}
		return fmt.Sprintf("Segment %s updated", f.ShortID("segmentId"))
	},

	"chapter.updated": func(f Fields) string {
		if title := f.String("title"); title != "" {
			return fmt.Sprintf("Chapter %q updated", title)
		}
		return fmt.Sprintf("Chapter %s updated", f.ShortID("chapterId"))
	},
	"project.created": func(f Fields) string {
		return fmt.Sprintf("Project %s created", nameOrID(f, "title", "projectId"))
	},
	"project.updated": func(f Fields) string {
		return fmt.Sprintf("Project %s updated", nameOrID(f, "title", "projectId"))
	},
	"project.deleted": func(f Fields) string {
		return fmt.Sprintf("Project %s deleted", nameOrID(f, "title", "projectId"))
	},
	"project.reordered": func(f Fields) string {
		return "Projects reordered"
	},
	"import.started": func(f Fields) string {
		return withDetail("Import started", f)
	},
	"import.progress": func(f Fields) string {
		return withDetail("Import"+percent(f, "progress"), f)
	},
	"import.completed": func(f Fields) string {
		return fmt.Sprintf("Import completed: %s", nameOrID(f, "projectTitle", "projectId"))
	},
	"import.failed": func(f Fields) string {
		return withReason("Import failed", f)
	},

	"export.started": func(f Fields) string {
		return fmt.Sprintf("Export %s started", f.ShortID("exportId"))
	},
	"export.progress": func(f Fields) string {
		return fmt.Sprintf("Export %s%s", f.ShortID("exportId"), percent(f, "progress"))
	},
	"export.completed": func(f Fields) string {
		if path := f.First("outputPath", "filePath"); path != "" {
			return fmt.Sprintf("Export %s completed: %s", f.ShortID("exportId"), path)
		}
		return fmt.Sprintf("Export %s completed", f.ShortID("exportId"))
	},
	"export.failed": func(f Fields) string {
		return withReason(fmt.Sprintf("Export %s failed", f.ShortID("exportId")), f)
	},

	"quality.job.created": func(f Fields) string {
		return fmt.Sprintf("Quality check %s queued (%s)", f.ShortID("jobId"), segmentCount(f))
	},
	"quality.job.started": func(f Fields) string {
		return fmt.Sprintf("Quality check %s started", f.ShortID("jobId"))
	},
	"quality.job.progress": func(f Fields) string {
		return fmt.Sprintf("Quality check %s%s", f.ShortID("jobId"), percent(f, "progress"))
	},
	"quality.job.completed": func(f Fields) string {
		return fmt.Sprintf("Quality check %s completed", f.ShortID("jobId"))
	},
	"quality.job.failed": func(f Fields) string {
		return withReason(fmt.Sprintf("Quality check %s failed", f.ShortID("jobId")), f)
	},
	"quality.job.cancelled": func(f Fields) string {
		return fmt.Sprintf("Quality check %s cancelled", f.ShortID("jobId"))
	},
	"quality.segment.analyzed": func(f Fields) string {
		if status := f.String("qualityStatus"); status != "" {
			return fmt.Sprintf("Segment %s analyzed: %s", f.ShortID("segmentId"), status)
		}
		return fmt.Sprintf("Segment %s analyzed", f.ShortID("segmentId"))
	},

	"health.update": func(f Fields) string {
		status := orDash(f.String("status"))
		if jobs, ok := f.Int("activeJobs"); ok {
			return fmt.Sprintf("Backend %s (%d active jobs)", status, jobs)
		}
		return fmt.Sprintf("Backend %s", status)
	},

	"engine.starting": func(f Fields) string { return fmt.Sprintf("Engine %s starting", engineName(f)) },
	"engine.started":  func(f Fields) string { return fmt.Sprintf("Engine %s started", engineName(f)) },
	"engine.stopping": func(f Fields) string { return fmt.Sprintf("Engine %s stopping", engineName(f)) },
	"engine.stopped":  func(f Fields) string { return fmt.Sprintf("Engine %s stopped", engineName(f)) },
	"engine.enabled":  func(f Fields) string { return fmt.Sprintf("Engine %s enabled", engineName(f)) },
	"engine.disabled": func(f Fields) string { return fmt.Sprintf("Engine %s disabled", engineName(f)) },
	"engine.error": func(f Fields) string {
		return withReason(fmt.Sprintf("Engine %s error", engineName(f)), f)
	},
	"engine.model_loaded": func(f Fields) string {
		return fmt.Sprintf("Engine %s loaded model %s", engineName(f), orDash(f.First("modelName", "model")))
	},
	"engine.status": func(f Fields) string {
		return "Engine status refreshed"
	},

	"speaker.created": func(f Fields) string {
		return fmt.Sprintf("Speaker %s created", nameOrID(f, "name", "speakerId"))
	},
	"speaker.updated": func(f Fields) string {
		return fmt.Sprintf("Speaker %s updated", nameOrID(f, "name", "speakerId"))
	},
	"speaker.deleted": func(f Fields) string {
		return fmt.Sprintf("Speaker %s deleted", nameOrID(f, "name", "speakerId"))
	},
	"speaker.sample_added": func(f Fields) string {
		return fmt.Sprintf("Sample added to speaker %s", nameOrID(f, "name", "speakerId"))
	},
	"speaker.sample_deleted": func(f Fields) string {
		return fmt.Sprintf("Sample removed from speaker %s", nameOrID(f, "name", "speakerId"))
	},

	"settings.updated": func(f Fields) string {
		if key := f.String("key"); key != "" {
			return fmt.Sprintf("Settings updated: %s", key)
		}
		return "Settings updated"
	},
	"settings.reset": func(f Fields) string {
		return "Settings reset to defaults"
	},

	"pronunciation.rule.created": func(f Fields) string {
		return fmt.Sprintf("Pronunciation rule created: %s", rule(f))
	},
	"pronunciation.rule.updated": func(f Fields) string {
		return fmt.Sprintf("Pronunciation rule updated: %s", rule(f))
	},
	"pronunciation.rule.deleted": func(f Fields) string {
		return fmt.Sprintf("Pronunciation rule %s deleted", f.ShortID("ruleId"))
	},
	"pronunciation.rule.bulk_change": func(f Fields) string {
		return fmt.Sprintf("Pronunciation rules bulk %s: %s rules", orDash(f.String("action")), orDash(f.String("count")))
	},
	"pronunciation.rules.imported": func(f Fields) string {
		return fmt.Sprintf("Pronunciation rules imported: %s", orDash(f.First("imported", "count")))
	},
}

// Message returns the human-readable line for an event type. Types without a
// template are humanized.
func Message(eventType string, f Fields) string {
	if fn, ok := messages[eventType]; ok {
		return fn(f)
	}
	return Humanize(eventType)
}

// Humanize turns "engine.model_loaded" into "Engine model loaded".
func Humanize(eventType string) string {
	s := strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(eventType)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "Unknown event"
	}
	return upperFirst(s)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func percent(f Fields, key string) string {
	p, ok := f.Float(key)
	if !ok {
		return ""
	}
	return fmt.Sprintf(" (%.0f%%)", p)
}

func segmentCount(f Fields) string {
	if n, ok := f.Int("totalSegments"); ok {
		return fmt.Sprintf("%d segments", n)
	}
	if n := f.Len("segmentIds"); n > 0 {
		return fmt.Sprintf("%d segments", n)
	}
	return "segments unknown"
}

func withReason(prefix string, f Fields) string {
	if reason := f.First("error", "errorMessage", "reason"); reason != "" {
		return prefix + ": " + reason
	}
	return prefix
}

func withDetail(prefix string, f Fields) string {
	if detail := f.String("message"); detail != "" {
		return prefix + ": " + detail
	}
	return prefix
}

func nameOrID(f Fields, nameKey, idKey string) string {
	if name := f.String(nameKey); name != "" {
		return fmt.Sprintf("%q", name)
	}
	return orDash(f.ShortID(idKey))
}

func engineName(f Fields) string {
	return orDash(f.First("variantId", "engineName", "engine"))
}

func rule(f Fields) string {
	pattern := f.String("pattern")
	if pattern == "" {
		return orDash(f.ShortID("ruleId"))
	}
	return fmt.Sprintf("%s -> %s", pattern, f.String("replacement"))
}
