package web

import (
	"time"

	"github.com/weddingguard/backend/shell"
	"github.com/weddingguard/backend/view"
)

// Page is the template data for one render of the site.
type Page struct {
	Section     shell.Section
	NavItems    []NavItem
	Loading     bool
	LastError   string
	MaxUploadMB int64
	Accept      string

	ModalOpen  bool
	AnalysisID string
	Tab        shell.Tab
	TabLinks   []TabLink
	Report     view.ReportViewModel

	Toast *ToastView
}

type NavItem struct {
	Section shell.Section
	Label   string
	Active  bool
}

type TabLink struct {
	Tab    shell.Tab
	Label  string
	Count  int
	Active bool
}

// ToastView carries the toast and how many milliseconds it has left, so
// the browser hides it at the end of its own lifetime.
type ToastView struct {
	ID          string
	Message     string
	Kind        shell.ToastKind
	RemainingMS int64
}

var navLabels = map[shell.Section]string{
	shell.SectionHome:    "홈",
	shell.SectionAnalyze: "계약서 분석",
}

// TabLabel is the display name of a report tab.
func TabLabel(tab shell.Tab) string {
	switch tab {
	case shell.TabClauses:
		return "조항별 분석"
	case shell.TabChecklist:
		return "체크리스트"
	default:
		return "전체 요약"
	}
}

// NewPage derives the template data from a session's state at now.
func NewPage(state *shell.ViewState, maxUploadBytes int64, now time.Time) *Page {
	p := &Page{
		Section:     state.Section,
		Loading:     state.Loading(),
		LastError:   state.LastError,
		MaxUploadMB: maxUploadBytes / (1024 * 1024),
		Accept:      "image/jpeg,image/jpg,image/png,application/pdf",
		ModalOpen:   state.ModalOpen,
		AnalysisID:  state.AnalysisID,
		Tab:         state.Tab,
	}

	for _, section := range []shell.Section{shell.SectionHome, shell.SectionAnalyze} {
		p.NavItems = append(p.NavItems, NavItem{
			Section: section,
			Label:   navLabels[section],
			Active:  section == state.Section,
		})
	}

	if state.ModalOpen {
		p.Report = view.Build(state.Report)
		for _, tab := range shell.Tabs {
			link := TabLink{Tab: tab, Label: TabLabel(tab), Active: tab == state.Tab}
			switch tab {
			case shell.TabClauses:
				link.Count = len(p.Report.Clauses)
			case shell.TabChecklist:
				link.Count = len(p.Report.Checklist)
			}
			p.TabLinks = append(p.TabLinks, link)
		}
	}

	if toast := state.ActiveToast(now); toast != nil {
		p.Toast = &ToastView{
			ID:          toast.ID,
			Message:     toast.Message,
			Kind:        toast.Kind,
			RemainingMS: toast.Remaining(now).Milliseconds(),
		}
	}
	return p
}
