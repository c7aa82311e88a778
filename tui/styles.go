package tui

import (
	"activitylog/models"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	Title    lipgloss.Style
	Status   lipgloss.Style
	ChipOn   lipgloss.Style
	ChipOff  lipgloss.Style
	Selected lipgloss.Style
	Time     lipgloss.Style
	Category lipgloss.Style
	Payload  lipgloss.Style
	Empty    lipgloss.Style
	Border   lipgloss.Style

	severity map[models.Severity]lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		ChipOn:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1),
		ChipOff:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
		Selected: lipgloss.NewStyle().Reverse(true),
		Time:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Category: lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Width(13),
		Payload:  lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")),
		severity: map[models.Severity]lipgloss.Style{
			models.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Width(7),
			models.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Width(7),
			models.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Width(7),
			models.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Width(7),
		},
	}
}

func (s styles) Severity(sev models.Severity) lipgloss.Style {
	if st, ok := s.severity[sev]; ok {
		return st
	}
	return s.severity[models.SeverityInfo]
}
