package model

// Severity is the risk level attached to a clause or to the whole contract.
// Values outside the known set are kept verbatim so they can be displayed as
// unknown.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ChecklistStatus is the outcome of one checklist criterion.
type ChecklistStatus string

const (
	StatusOK            ChecklistStatus = "ok"
	StatusRisky         ChecklistStatus = "risky"
	StatusMissing       ChecklistStatus = "missing"
	StatusNotApplicable ChecklistStatus = "not_applicable"
)

// AnalysisResult is the structured body returned by the analysis webhook.
// Every field is optional; absent fields stay nil or empty.
type AnalysisResult struct {
	ContractSummary     *ContractSummary `json:"contract_summary,omitempty" msgpack:"contract_summary,omitempty"`
	ClauseAnalysis      []Clause         `json:"clause_analysis,omitempty" msgpack:"clause_analysis,omitempty"`
	ChecklistEvaluation []ChecklistItem  `json:"checklist_evaluation,omitempty" msgpack:"checklist_evaluation,omitempty"`
}

type ContractSummary struct {
	OverallRiskLevel Severity `json:"overall_risk_level,omitempty" msgpack:"overall_risk_level,omitempty"`
	Summary          string   `json:"summary,omitempty" msgpack:"summary,omitempty"`
	MainIssues       []string `json:"main_issues,omitempty" msgpack:"main_issues,omitempty"`
}

// Clause is one extracted provision of the contract.
type Clause struct {
	ID                string    `json:"clause_id,omitempty" msgpack:"clause_id,omitempty"`
	Title             string    `json:"title,omitempty" msgpack:"title,omitempty"`
	Severity          Severity  `json:"severity,omitempty" msgpack:"severity,omitempty"`
	RiskTags          []string  `json:"risk_tags,omitempty" msgpack:"risk_tags,omitempty"`
	UserClauseText    string    `json:"user_clause_text,omitempty" msgpack:"user_clause_text,omitempty"`
	SpanHint          *SpanHint `json:"span_hint,omitempty" msgpack:"span_hint,omitempty"`
	StandardReference *string   `json:"standard_reference,omitempty" msgpack:"standard_reference,omitempty"`
	Reason            string    `json:"reason,omitempty" msgpack:"reason,omitempty"`
	SuggestedRevision *string   `json:"suggested_revision,omitempty" msgpack:"suggested_revision,omitempty"`
	QuestionForVendor *string   `json:"question_for_vendor,omitempty" msgpack:"question_for_vendor,omitempty"`
}

type SpanHint struct {
	Snippet string `json:"snippet,omitempty" msgpack:"snippet,omitempty"`
}

// ChecklistItem is one fixed evaluation criterion scored against the contract.
// RelatedClauses are soft references to Clause.ID and may dangle.
type ChecklistItem struct {
	ID             string          `json:"checklist_id,omitempty" msgpack:"checklist_id,omitempty"`
	Title          string          `json:"title,omitempty" msgpack:"title,omitempty"`
	Status         ChecklistStatus `json:"status,omitempty" msgpack:"status,omitempty"`
	Comment        string          `json:"comment,omitempty" msgpack:"comment,omitempty"`
	RelatedClauses []string        `json:"related_clauses,omitempty" msgpack:"related_clauses,omitempty"`
}

// ReportKind tags which representation a Report carries.
type ReportKind string

const (
	ReportStructured ReportKind = "structured"
	ReportRawText    ReportKind = "raw_text"
)

// Report is what the report modal shows: either a structured analysis or a
// legacy plain-text contract rendered verbatim.
type Report struct {
	Kind    ReportKind      `json:"kind" msgpack:"kind"`
	Result  *AnalysisResult `json:"result,omitempty" msgpack:"result,omitempty"`
	RawText string          `json:"raw_text,omitempty" msgpack:"raw_text,omitempty"`
}

// NewStructuredReport wraps a parsed result. A nil result is treated as an
// empty one.
func NewStructuredReport(result *AnalysisResult) *Report {
	if result == nil {
		result = &AnalysisResult{}
	}
	return &Report{Kind: ReportStructured, Result: result}
}

func NewRawTextReport(text string) *Report {
	return &Report{Kind: ReportRawText, RawText: text}
}

// IsRawText reports whether the report is rendered as plain text.
func (r *Report) IsRawText() bool {
	return r != nil && r.Kind == ReportRawText
}
