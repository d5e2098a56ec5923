// Package shell holds the presentation state shared by the web and terminal
// front-ends. All transitions go through ViewState methods so they can be
// tested without rendering anything.
package shell

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/weddingguard/backend/model"
)

type Section string

const (
	SectionHome    Section = "home"
	SectionAnalyze Section = "analyze"
)

type UploadPhase string

const (
	UploadIdle    UploadPhase = "idle"
	UploadLoading UploadPhase = "loading"
	UploadError   UploadPhase = "error"
)

type Tab string

const (
	TabSummary   Tab = "summary"
	TabClauses   Tab = "clauses"
	TabChecklist Tab = "checklist"
)

// Tabs lists report tabs in display order.
var Tabs = []Tab{TabSummary, TabClauses, TabChecklist}

// User-facing messages.
const (
	MsgAnalyzing       = "계약서를 분석하고 있습니다..."
	MsgAnalysisDone    = "계약서 분석이 완료되었습니다!"
	MsgAnalysisFailed  = "계약서 분석 중 오류가 발생했습니다. 다시 시도해주세요."
	MsgAnalysisToast   = "계약서 분석 중 오류가 발생했습니다."
	MsgUploadInFlight  = "이미 분석이 진행 중입니다. 잠시만 기다려주세요."
	MsgTooManyRequests = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."
)

var (
	ErrUploadInProgress = errors.New("an analysis is already in progress")
	ErrUnknownSection   = errors.New("unknown section")
	ErrUnknownTab       = errors.New("unknown report tab")
	ErrModalClosed      = errors.New("report modal is not open")
)

// ViewState is the complete UI state of one user.
type ViewState struct {
	Section    Section       `json:"section" msgpack:"section"`
	Upload     UploadPhase   `json:"upload" msgpack:"upload"`
	Attempt    string        `json:"attempt,omitempty" msgpack:"attempt,omitempty"`
	LastError  string        `json:"last_error,omitempty" msgpack:"last_error,omitempty"`
	ModalOpen  bool          `json:"modal_open" msgpack:"modal_open"`
	Tab        Tab           `json:"tab" msgpack:"tab"`
	Report     *model.Report `json:"report,omitempty" msgpack:"report,omitempty"`
	AnalysisID string        `json:"analysis_id,omitempty" msgpack:"analysis_id,omitempty"`
	Toast      *Toast        `json:"toast,omitempty" msgpack:"toast,omitempty"`
}

// New returns the initial state: analyze section, idle upload, modal closed.
func New() *ViewState {
	return &ViewState{
		Section: SectionAnalyze,
		Upload:  UploadIdle,
		Tab:     TabSummary,
	}
}

// Navigate switches the visible section.
func (s *ViewState) Navigate(section Section) error {
	switch section {
	case SectionHome, SectionAnalyze:
		s.Section = section
		return nil
	default:
		return ErrUnknownSection
	}
}

// Loading reports whether an analysis request is in flight.
func (s *ViewState) Loading() bool {
	return s.Upload == UploadLoading
}

// BeginUpload moves to loading and returns the attempt id that must be
// passed to CompleteUpload or FailUpload. A second call while loading is
// refused.
func (s *ViewState) BeginUpload(now time.Time) (string, error) {
	if s.Loading() {
		return "", ErrUploadInProgress
	}
	s.Section = SectionAnalyze
	s.Upload = UploadLoading
	s.Attempt = uuid.NewString()
	s.LastError = ""
	s.ShowToast(MsgAnalyzing, ToastInfo, now)
	return s.Attempt, nil
}

// RejectFile records a validation failure. No request is made, so the
// upload phase is left as it was.
func (s *ViewState) RejectFile(reason string, now time.Time) {
	s.LastError = reason
	s.ShowToast(reason, ToastError, now)
}

// CompleteUpload applies a successful analysis. It returns false, leaving
// the state untouched, when attempt is not the request currently in flight.
func (s *ViewState) CompleteUpload(attempt string, report *model.Report, analysisID string, now time.Time) bool {
	if !s.current(attempt) {
		return false
	}
	s.Upload = UploadIdle
	s.Attempt = ""
	s.OpenReport(report, analysisID)
	s.ShowToast(MsgAnalysisDone, ToastSuccess, now)
	return true
}

// FailUpload applies a failed analysis; the modal is not touched.
func (s *ViewState) FailUpload(attempt string, now time.Time) bool {
	if !s.current(attempt) {
		return false
	}
	s.Upload = UploadError
	s.Attempt = ""
	s.LastError = MsgAnalysisFailed
	s.ShowToast(MsgAnalysisToast, ToastError, now)
	return true
}

func (s *ViewState) current(attempt string) bool {
	return s.Loading() && attempt != "" && attempt == s.Attempt
}

// OpenReport replaces the active report and opens the modal on the summary tab.
func (s *ViewState) OpenReport(report *model.Report, analysisID string) {
	s.Report = report
	s.AnalysisID = analysisID
	s.ModalOpen = true
	s.Tab = TabSummary
}

// CloseModal discards the active report.
func (s *ViewState) CloseModal() {
	s.ModalOpen = false
	s.Report = nil
	s.AnalysisID = ""
	s.Tab = TabSummary
}

// SelectTab changes the report tab while the modal is open.
func (s *ViewState) SelectTab(tab Tab) error {
	if !s.ModalOpen {
		return ErrModalClosed
	}
	if !ValidTab(tab) {
		return ErrUnknownTab
	}
	s.Tab = tab
	return nil
}

func ValidTab(tab Tab) bool {
	for _, t := range Tabs {
		if t == tab {
			return true
		}
	}
	return false
}
