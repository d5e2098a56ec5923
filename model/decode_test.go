package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportStructured(t *testing.T) {
	body := `{
		"contract_summary": {"overall_risk_level": "high", "summary": "위약금 조항 주의", "main_issues": ["a", "b"]},
		"clause_analysis": [
			{"clause_id": "c1", "title": "환불", "severity": "high", "risk_tags": ["환불"],
			 "user_clause_text": "환불 불가", "span_hint": {"snippet": "불가"},
			 "standard_reference": "표준약관 제5조", "reason": "과도함",
			 "suggested_revision": "일부 환불", "question_for_vendor": "환불 기준은?"}
		],
		"checklist_evaluation": [
			{"checklist_id": "k1", "title": "환불 규정", "status": "risky", "comment": "확인 필요", "related_clauses": ["c1", "c9"]}
		]
	}`

	report, err := ParseReport([]byte(body))
	require.NoError(t, err)
	require.Equal(t, ReportStructured, report.Kind)
	require.NotNil(t, report.Result.ContractSummary)

	summary := report.Result.ContractSummary
	assert.Equal(t, SeverityHigh, summary.OverallRiskLevel)
	assert.Equal(t, []string{"a", "b"}, summary.MainIssues)

	require.Len(t, report.Result.ClauseAnalysis, 1)
	clause := report.Result.ClauseAnalysis[0]
	assert.Equal(t, "c1", clause.ID)
	require.NotNil(t, clause.SpanHint)
	assert.Equal(t, "불가", clause.SpanHint.Snippet)
	require.NotNil(t, clause.StandardReference)
	assert.Equal(t, "표준약관 제5조", *clause.StandardReference)

	require.Len(t, report.Result.ChecklistEvaluation, 1)
	assert.Equal(t, StatusRisky, report.Result.ChecklistEvaluation[0].Status)
	assert.Equal(t, []string{"c1", "c9"}, report.Result.ChecklistEvaluation[0].RelatedClauses)
}

func TestParseReportMissingFields(t *testing.T) {
	report, err := ParseReport([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, ReportStructured, report.Kind)
	assert.Nil(t, report.Result.ContractSummary)
	assert.Empty(t, report.Result.ClauseAnalysis)
	assert.Empty(t, report.Result.ChecklistEvaluation)
}

func TestParseReportWrongFieldTypes(t *testing.T) {
	body := `{
		"contract_summary": "not an object",
		"clause_analysis": [42, {"clause_id": 7, "title": ["x"], "severity": "weird", "suggested_revision": ""}],
		"checklist_evaluation": {"oops": true}
	}`

	report, err := ParseReport([]byte(body))
	require.NoError(t, err)
	assert.Nil(t, report.Result.ContractSummary)
	require.Len(t, report.Result.ClauseAnalysis, 1)

	clause := report.Result.ClauseAnalysis[0]
	assert.Equal(t, "7", clause.ID)
	assert.Empty(t, clause.Title)
	assert.Equal(t, Severity("weird"), clause.Severity)
	assert.Nil(t, clause.SuggestedRevision)
	assert.Empty(t, report.Result.ChecklistEvaluation)
}

func TestParseReportTopLevelString(t *testing.T) {
	report, err := ParseReport([]byte(`"제1조 (목적) 본 계약은..."`))
	require.NoError(t, err)
	assert.True(t, report.IsRawText())
	assert.Equal(t, "제1조 (목적) 본 계약은...", report.RawText)
}

func TestParseReportOtherTopLevel(t *testing.T) {
	for _, body := range []string{`[1,2]`, `null`, `12`, ` true `} {
		report, err := ParseReport([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, ReportStructured, report.Kind, body)
		assert.NotNil(t, report.Result, body)
	}
}

func TestParseReportInvalid(t *testing.T) {
	for _, body := range []string{"", "{not json", "   "} {
		_, err := ParseReport([]byte(body))
		assert.True(t, errors.Is(err, ErrInvalidJSON), "body %q", body)
	}
}

func TestNewStructuredReportNil(t *testing.T) {
	report := NewStructuredReport(nil)
	require.NotNil(t, report.Result)
	assert.False(t, report.IsRawText())

	var nilReport *Report
	assert.False(t, nilReport.IsRawText())
}
