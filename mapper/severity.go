package mapper

import (
	"strings"

	"activitylog/models"
)

type severityRule struct {
	severity models.Severity
	keywords []string
}

// severityRules is evaluated top to bottom; the first keyword found anywhere
// in the event type decides. Errors outrank everything else.
var severityRules = []severityRule{
	{models.SeverityError, []string{"failed", "error"}},
	{models.SeveritySuccess, []string{"completed", "success", "created", "deleted", "enabled", "loaded", "added", "imported"}},
	{models.SeverityWarning, []string{"cancelled", "warning", "disabled", "disconnected", "stopped", "stopping"}},
	{models.SeverityInfo, []string{"started", "starting", "progress", "resumed", "updated"}},
}

// SeverityFor classifies an event type by keyword. Unmatched types are info.
func SeverityFor(eventType string) models.Severity {
	t := strings.ToLower(eventType)
	for _, rule := range severityRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.severity
			}
		}
	}
	return models.SeverityInfo
}
