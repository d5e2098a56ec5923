package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weddingguard/backend/middleware"
	"github.com/weddingguard/backend/service"
	"github.com/weddingguard/backend/shell"
	"github.com/weddingguard/backend/view"
)

// ReportResponse is a report rendered for API clients.
type ReportResponse struct {
	AnalysisID string               `json:"analysis_id,omitempty"`
	Report     view.ReportViewModel `json:"report"`
}

// StateResponse mirrors the page state of the session.
type StateResponse struct {
	Section    shell.Section         `json:"section"`
	Upload     shell.UploadPhase     `json:"upload"`
	LastError  string                `json:"last_error,omitempty"`
	ModalOpen  bool                  `json:"modal_open"`
	Tab        shell.Tab             `json:"tab"`
	AnalysisID string                `json:"analysis_id,omitempty"`
	Report     *view.ReportViewModel `json:"report,omitempty"`
	Toast      *ToastResponse        `json:"toast,omitempty"`
}

type ToastResponse struct {
	ID          string          `json:"id"`
	Message     string          `json:"message"`
	Kind        shell.ToastKind `json:"kind"`
	RemainingMS int64           `json:"remaining_ms"`
}

func apiError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"code": code, "message": message})
}

// APIAnalyze accepts a multipart upload and answers with the report.
func (h *Handler) APIAnalyze(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	header, err := h.formFile(c)
	var analysis *service.Analysis
	if err != nil {
		_, _, err = h.reject(sessionID, err)
	} else {
		_, analysis, err = h.analyze(c.Request.Context(), sessionID, header)
	}

	var verr *service.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, ReportResponse{
			AnalysisID: analysis.ID,
			Report:     view.Build(analysis.Report),
		})
	case errors.As(err, &verr):
		apiError(c, http.StatusBadRequest, "invalid_file", verr.Reason())
	case errors.Is(err, shell.ErrUploadInProgress):
		apiError(c, http.StatusConflict, "analysis_in_progress", shell.MsgUploadInFlight)
	default:
		_ = c.Error(err)
		apiError(c, http.StatusBadGateway, "analysis_failed", shell.MsgAnalysisFailed)
	}
}

// APIExample returns the bundled demo report. ?variant=text selects the
// plain-text contract.
func (h *Handler) APIExample(c *gin.Context) {
	report, err := service.ExampleReport(service.ExampleVariant(c.Query("variant")))
	if err != nil {
		_ = c.Error(err)
		apiError(c, http.StatusInternalServerError, "internal", "Internal server error")
		return
	}
	c.JSON(http.StatusOK, ReportResponse{Report: view.Build(report)})
}

// APIState returns the session's current state.
func (h *Handler) APIState(c *gin.Context) {
	state, err := h.store.Get(middleware.GetSessionID(c))
	if err != nil {
		_ = c.Error(err)
		apiError(c, http.StatusInternalServerError, "internal", "Internal server error")
		return
	}
	c.JSON(http.StatusOK, newStateResponse(state, h.now()))
}

// APIArchived returns an archived report by analysis id.
func (h *Handler) APIArchived(c *gin.Context) {
	analysisID := c.Param("id")
	report, err := h.loadArchived(c.Request.Context(), analysisID)
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		apiError(c, http.StatusNotFound, "not_found", MsgReportNotFound)
		return
	case err != nil:
		_ = c.Error(err)
		apiError(c, http.StatusBadGateway, "archive_unavailable", MsgReportNotFound)
		return
	}
	c.JSON(http.StatusOK, ReportResponse{AnalysisID: analysisID, Report: view.Build(report)})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().Format(time.RFC3339),
		"sessions":  h.store.Count(),
	})
}

func newStateResponse(state *shell.ViewState, now time.Time) StateResponse {
	resp := StateResponse{
		Section:    state.Section,
		Upload:     state.Upload,
		LastError:  state.LastError,
		ModalOpen:  state.ModalOpen,
		Tab:        state.Tab,
		AnalysisID: state.AnalysisID,
	}
	if state.ModalOpen {
		vm := view.Build(state.Report)
		resp.Report = &vm
	}
	if toast := state.ActiveToast(now); toast != nil {
		resp.Toast = &ToastResponse{
			ID:          toast.ID,
			Message:     toast.Message,
			Kind:        toast.Kind,
			RemainingMS: toast.Remaining(now).Milliseconds(),
		}
	}
	return resp
}
