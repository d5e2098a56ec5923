// Package view derives display data for analysis reports.
package view

import "github.com/weddingguard/backend/model"

// Badge is the display metadata for one severity or checklist status.
type Badge struct {
	Color   string `json:"color"`
	Label   string `json:"label"`
	Variant string `json:"variant"`
	Icon    string `json:"icon,omitempty"`
}

// SeverityColor maps a severity to its theme color.
func SeverityColor(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "destructive"
	case model.SeverityMedium:
		return "warning"
	case model.SeverityLow:
		return "info"
	default:
		return "muted"
	}
}

// SeverityLabel maps a severity to its Korean label.
func SeverityLabel(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "높음"
	case model.SeverityMedium:
		return "중간"
	case model.SeverityLow:
		return "낮음"
	default:
		return "알 수 없음"
	}
}

func severityVariant(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "destructive"
	case model.SeverityMedium:
		return "secondary"
	default:
		return "default"
	}
}

// SeverityBadge bundles color, label and badge variant for a severity.
func SeverityBadge(s model.Severity) Badge {
	return Badge{
		Color:   SeverityColor(s),
		Label:   SeverityLabel(s),
		Variant: severityVariant(s),
	}
}

// StatusIcon names the icon drawn next to a checklist item.
func StatusIcon(s model.ChecklistStatus) string {
	switch s {
	case model.StatusOK:
		return "check-circle"
	case model.StatusRisky:
		return "alert-triangle"
	default:
		return "alert-circle"
	}
}

func StatusColor(s model.ChecklistStatus) string {
	switch s {
	case model.StatusOK:
		return "success"
	case model.StatusRisky:
		return "destructive"
	case model.StatusMissing:
		return "warning"
	default:
		return "muted-foreground"
	}
}

func StatusLabel(s model.ChecklistStatus) string {
	switch s {
	case model.StatusOK:
		return "양호"
	case model.StatusRisky:
		return "위험"
	case model.StatusMissing:
		return "누락"
	default:
		return "해당없음"
	}
}

func statusVariant(s model.ChecklistStatus) string {
	switch s {
	case model.StatusOK:
		return "default"
	case model.StatusRisky:
		return "destructive"
	case model.StatusMissing:
		return "secondary"
	default:
		return "outline"
	}
}

// StatusBadge bundles icon, color, label and badge variant for a status.
func StatusBadge(s model.ChecklistStatus) Badge {
	return Badge{
		Color:   StatusColor(s),
		Label:   StatusLabel(s),
		Variant: statusVariant(s),
		Icon:    StatusIcon(s),
	}
}
