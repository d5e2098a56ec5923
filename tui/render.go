// Package tui is the terminal front-end. It drives the same shell.ViewState
// as the web pages and renders reports with lipgloss and glamour.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/weddingguard/backend/model"
	"github.com/weddingguard/backend/shell"
	"github.com/weddingguard/backend/view"
)

// Palette
var (
	Accent      = lipgloss.Color("#8BC34A")
	Muted       = lipgloss.Color("#8a94a6")
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	MutedStyle    = lipgloss.NewStyle().Foreground(Muted)
	ErrorStyle    = lipgloss.NewStyle().Foreground(Destructive)
	ActiveTab     = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(Accent).Padding(0, 1)
	InactiveTab   = lipgloss.NewStyle().Foreground(Muted).Padding(0, 1)
	ActiveNavItem = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	HelpStyle     = lipgloss.NewStyle().Foreground(Muted).Italic(true)
)

// themeColor maps the badge color names produced by the view package.
func themeColor(name string) lipgloss.Color {
	switch name {
	case "destructive":
		return Destructive
	case "success":
		return Success
	case "warning":
		return Warning
	case "info":
		return Info
	default:
		return Muted
	}
}

// BadgeStyle is the lipgloss style for a severity or status badge.
func BadgeStyle(b view.Badge) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(themeColor(b.Color))
}

// glyph maps the icon names used by the web pages to terminal symbols.
func glyph(icon string) string {
	switch icon {
	case "check-circle":
		return "✓"
	case "alert-triangle":
		return "⚠"
	case "alert-circle":
		return "!"
	default:
		return ""
	}
}

// RenderBadge renders a badge as colored "[icon label]" text.
func RenderBadge(b view.Badge) string {
	label := b.Label
	if g := glyph(b.Icon); g != "" {
		label = g + " " + label
	}
	return BadgeStyle(b).Render("[" + label + "]")
}

// TallyLine renders the per-severity clause counts.
func TallyLine(t view.Tally) string {
	parts := []string{
		BadgeStyle(view.SeverityBadge(model.SeverityHigh)).Render(fmt.Sprintf("높음 %d", t.High)),
		BadgeStyle(view.SeverityBadge(model.SeverityMedium)).Render(fmt.Sprintf("중간 %d", t.Medium)),
		BadgeStyle(view.SeverityBadge(model.SeverityLow)).Render(fmt.Sprintf("낮음 %d", t.Low)),
	}
	return strings.Join(parts, MutedStyle.Render(" · "))
}

// TabTitle is the Korean label of a report tab.
func TabTitle(tab shell.Tab) string {
	switch tab {
	case shell.TabClauses:
		return "조항별 분석"
	case shell.TabChecklist:
		return "체크리스트"
	default:
		return "전체 요약"
	}
}

// Markdown builds the markdown for one tab of a report. A raw-text report
// has no tabs and renders its text verbatim in a code block.
func Markdown(vm view.ReportViewModel, tab shell.Tab) string {
	var b strings.Builder
	if vm.Kind == model.ReportRawText {
		b.WriteString("# 분석 결과\n\n```\n")
		b.WriteString(vm.RawText)
		if !strings.HasSuffix(vm.RawText, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n")
		return b.String()
	}

	switch tab {
	case shell.TabClauses:
		writeClauses(&b, vm)
	case shell.TabChecklist:
		writeChecklist(&b, vm)
	default:
		writeSummary(&b, vm)
	}
	return b.String()
}

func writeSummary(b *strings.Builder, vm view.ReportViewModel) {
	fmt.Fprintf(b, "# 전체 요약\n\n**전체 위험도: %s**\n\n", vm.Overall.Label)
	fmt.Fprintf(b, "| 높음 | 중간 | 낮음 |\n|---|---|---|\n| %d | %d | %d |\n\n", vm.Tally.High, vm.Tally.Medium, vm.Tally.Low)
	if vm.Summary.Text != "" {
		b.WriteString(vm.Summary.Text)
		b.WriteString("\n\n")
	}
	if len(vm.Summary.MainIssues) > 0 {
		b.WriteString("## 주요 이슈\n\n")
		for _, issue := range vm.Summary.MainIssues {
			fmt.Fprintf(b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}
}

func writeClauses(b *strings.Builder, vm view.ReportViewModel) {
	b.WriteString("# 조항별 분석\n\n")
	if len(vm.Clauses) == 0 {
		b.WriteString("_분석된 조항이 없습니다._\n")
		return
	}
	for i, c := range vm.Clauses {
		title := c.Title
		if title == "" {
			title = c.ID
		}
		fmt.Fprintf(b, "## %d. %s (위험도: %s)\n\n", i+1, title, c.Badge.Label)
		if len(c.RiskTags) > 0 {
			fmt.Fprintf(b, "태그: `%s`\n\n", strings.Join(c.RiskTags, "` `"))
		}
		if c.UserClauseText != "" {
			fmt.Fprintf(b, "> %s\n\n", strings.ReplaceAll(c.UserClauseText, "\n", "\n> "))
		}
		if c.SpanHint != nil && c.SpanHint.Snippet != "" {
			fmt.Fprintf(b, "**문제 부분:** %s\n\n", c.SpanHint.Snippet)
		}
		if c.Reason != "" {
			fmt.Fprintf(b, "**이유:** %s\n\n", c.Reason)
		}
		writeOptional(b, "표준 약관", c.StandardReference)
		writeOptional(b, "수정 제안", c.SuggestedRevision)
		writeOptional(b, "업체에 물어볼 질문", c.QuestionForVendor)
	}
}

func writeOptional(b *strings.Builder, label string, value *string) {
	if value == nil || *value == "" {
		return
	}
	fmt.Fprintf(b, "**%s:** %s\n\n", label, *value)
}

func writeChecklist(b *strings.Builder, vm view.ReportViewModel) {
	b.WriteString("# 체크리스트\n\n")
	if len(vm.Checklist) == 0 {
		b.WriteString("_체크리스트 항목이 없습니다._\n")
		return
	}
	for _, item := range vm.Checklist {
		fmt.Fprintf(b, "## %s %s (%s)\n\n", glyph(item.Badge.Icon), item.Title, item.Badge.Label)
		if item.Comment != "" {
			b.WriteString(item.Comment)
			b.WriteString("\n\n")
		}
		if len(item.Related) == 0 {
			continue
		}
		refs := make([]string, 0, len(item.Related))
		for _, r := range item.Related {
			if r.Linked {
				refs = append(refs, fmt.Sprintf("%s %s", r.ID, r.Title))
			} else {
				refs = append(refs, r.ID)
			}
		}
		fmt.Fprintf(b, "관련 조항: %s\n\n", strings.Join(refs, ", "))
	}
}

// Renderer turns report markdown into styled terminal text.
type Renderer struct {
	style string
	width int
	term  *glamour.TermRenderer
}

// NewRenderer builds a glamour renderer. Style "auto" picks a style from the
// terminal background; any other value names a glamour standard style such
// as "dark", "light" or "notty".
func NewRenderer(style string, width int) (*Renderer, error) {
	if width <= 0 {
		width = 80
	}
	opt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		opt = glamour.WithAutoStyle()
	}
	term, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Renderer{style: style, width: width, term: term}, nil
}

// Width is the wrap width the renderer was built for.
func (r *Renderer) Width() int {
	return r.width
}

// Resize returns a renderer for a new width, or r itself if the width is
// unchanged.
func (r *Renderer) Resize(width int) (*Renderer, error) {
	if width == r.width {
		return r, nil
	}
	return NewRenderer(r.style, width)
}

// Render renders markdown. On a glamour failure the markdown is returned as is.
func (r *Renderer) Render(md string) string {
	out, err := r.term.Render(md)
	if err != nil {
		return md
	}
	return out
}

// RenderReport renders one tab of a report with a header line.
func (r *Renderer) RenderReport(vm view.ReportViewModel, tab shell.Tab) string {
	var b strings.Builder
	if vm.Kind != model.ReportRawText {
		b.WriteString(TitleStyle.Render("전체 위험도 "))
		b.WriteString(RenderBadge(vm.Overall))
		b.WriteString("  ")
		b.WriteString(TallyLine(vm.Tally))
		b.WriteString("\n")
	}
	b.WriteString(r.Render(Markdown(vm, tab)))
	return b.String()
}
