package view

import (
	"strconv"

	"github.com/weddingguard/backend/model"
)

// Tally counts clauses per known severity. Clauses with any other severity
// are not counted.
type Tally struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Total is the number of counted clauses.
func (t Tally) Total() int {
	return t.High + t.Medium + t.Low
}

// ReportViewModel is everything the report modal needs to render.
type ReportViewModel struct {
	Kind      model.ReportKind `json:"kind"`
	RawText   string           `json:"raw_text,omitempty"`
	Overall   Badge            `json:"overall"`
	Tally     Tally            `json:"tally"`
	Summary   SummaryTab       `json:"summary"`
	Clauses   []ClauseView     `json:"clauses"`
	Checklist []ChecklistView  `json:"checklist"`
}

type SummaryTab struct {
	Text       string   `json:"text"`
	MainIssues []string `json:"main_issues"`
}

type ClauseView struct {
	model.Clause
	Anchor string `json:"anchor"`
	Badge  Badge  `json:"badge"`
}

type ChecklistView struct {
	model.ChecklistItem
	Badge   Badge           `json:"badge"`
	Related []RelatedClause `json:"related"`
}

// RelatedClause is a checklist reference into the clause list. Linked is
// false when no clause carries the referenced id.
type RelatedClause struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Anchor string `json:"anchor,omitempty"`
	Linked bool   `json:"linked"`
}

// CountSeverities tallies high, medium and low clauses.
func CountSeverities(clauses []model.Clause) Tally {
	var t Tally
	for _, c := range clauses {
		switch c.Severity {
		case model.SeverityHigh:
			t.High++
		case model.SeverityMedium:
			t.Medium++
		case model.SeverityLow:
			t.Low++
		}
	}
	return t
}

// Build derives the view model for a report. It never fails: a nil report
// or missing fields produce empty tabs and an unknown overall risk.
func Build(report *model.Report) ReportViewModel {
	vm := ReportViewModel{
		Kind:      model.ReportStructured,
		Overall:   SeverityBadge(""),
		Summary:   SummaryTab{MainIssues: []string{}},
		Clauses:   []ClauseView{},
		Checklist: []ChecklistView{},
	}
	if report == nil {
		return vm
	}
	if report.IsRawText() {
		vm.Kind = model.ReportRawText
		vm.RawText = report.RawText
		return vm
	}

	result := report.Result
	if result == nil {
		return vm
	}

	if s := result.ContractSummary; s != nil {
		vm.Overall = SeverityBadge(s.OverallRiskLevel)
		vm.Summary.Text = s.Summary
		vm.Summary.MainIssues = append(vm.Summary.MainIssues, s.MainIssues...)
	}

	vm.Tally = CountSeverities(result.ClauseAnalysis)

	byID := make(map[string]int, len(result.ClauseAnalysis))
	for i, c := range result.ClauseAnalysis {
		if _, seen := byID[c.ID]; c.ID != "" && !seen {
			byID[c.ID] = i
		}
		vm.Clauses = append(vm.Clauses, ClauseView{
			Clause: c,
			Anchor: "clause-" + strconv.Itoa(i+1),
			Badge:  SeverityBadge(c.Severity),
		})
	}

	for _, item := range result.ChecklistEvaluation {
		related := make([]RelatedClause, 0, len(item.RelatedClauses))
		for _, id := range item.RelatedClauses {
			ref := RelatedClause{ID: id}
			if i, ok := byID[id]; ok {
				ref.Title = vm.Clauses[i].Title
				ref.Anchor = vm.Clauses[i].Anchor
				ref.Linked = true
			}
			related = append(related, ref)
		}
		vm.Checklist = append(vm.Checklist, ChecklistView{
			ChecklistItem: item,
			Badge:         StatusBadge(item.Status),
			Related:       related,
		})
	}

	return vm
}
