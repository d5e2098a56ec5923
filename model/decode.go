package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// ErrInvalidJSON is returned by ParseReport when the body is not JSON at all.
var ErrInvalidJSON = errors.New("response is not valid JSON")

// ParseReport turns a webhook body into a Report. Only syntactically invalid
// JSON is an error. A top-level string becomes a raw text report, an object
// is decoded field by field, and anything else yields an empty structured
// report. Fields with an unexpected JSON type are dropped.
func ParseReport(body []byte) (*Report, error) {
	if !json.Valid(body) {
		return nil, ErrInvalidJSON
	}

	trimmed := bytes.TrimSpace(body)
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, err
		}
		return NewRawTextReport(text), nil
	case '{':
		var result AnalysisResult
		if err := json.Unmarshal(trimmed, &result); err != nil {
			return nil, err
		}
		return NewStructuredReport(&result), nil
	default:
		return NewStructuredReport(nil), nil
	}
}

// UnmarshalJSON decodes leniently; see ParseReport.
func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	fields, ok := objectFields(data)
	if !ok {
		*r = AnalysisResult{}
		return nil
	}

	var out AnalysisResult
	if raw, ok := fields["contract_summary"]; ok {
		if summaryFields, ok := objectFields(raw); ok {
			out.ContractSummary = &ContractSummary{
				OverallRiskLevel: Severity(looseString(summaryFields["overall_risk_level"])),
				Summary:          looseString(summaryFields["summary"]),
				MainIssues:       looseStrings(summaryFields["main_issues"]),
			}
		}
	}

	for _, raw := range looseArray(fields["clause_analysis"]) {
		clauseFields, ok := objectFields(raw)
		if !ok {
			continue
		}
		clause := Clause{
			ID:                looseString(clauseFields["clause_id"]),
			Title:             looseString(clauseFields["title"]),
			Severity:          Severity(looseString(clauseFields["severity"])),
			RiskTags:          looseStrings(clauseFields["risk_tags"]),
			UserClauseText:    looseString(clauseFields["user_clause_text"]),
			StandardReference: optionalString(clauseFields["standard_reference"]),
			Reason:            looseString(clauseFields["reason"]),
			SuggestedRevision: optionalString(clauseFields["suggested_revision"]),
			QuestionForVendor: optionalString(clauseFields["question_for_vendor"]),
		}
		if hintFields, ok := objectFields(clauseFields["span_hint"]); ok {
			if snippet := looseString(hintFields["snippet"]); snippet != "" {
				clause.SpanHint = &SpanHint{Snippet: snippet}
			}
		}
		out.ClauseAnalysis = append(out.ClauseAnalysis, clause)
	}

	for _, raw := range looseArray(fields["checklist_evaluation"]) {
		itemFields, ok := objectFields(raw)
		if !ok {
			continue
		}
		out.ChecklistEvaluation = append(out.ChecklistEvaluation, ChecklistItem{
			ID:             looseString(itemFields["checklist_id"]),
			Title:          looseString(itemFields["title"]),
			Status:         ChecklistStatus(looseString(itemFields["status"])),
			Comment:        looseString(itemFields["comment"]),
			RelatedClauses: looseStrings(itemFields["related_clauses"]),
		})
	}

	*r = out
	return nil
}

func objectFields(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func looseArray(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

// looseString accepts JSON strings and numbers; everything else is "".
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

func optionalString(raw json.RawMessage) *string {
	s := looseString(raw)
	if s == "" {
		return nil
	}
	return &s
}

func looseStrings(raw json.RawMessage) []string {
	var out []string
	for _, item := range looseArray(raw) {
		if s := looseString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
