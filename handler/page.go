package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weddingguard/backend/middleware"
	"github.com/weddingguard/backend/pkg/logger"
	"github.com/weddingguard/backend/service"
	"github.com/weddingguard/backend/shell"
	"github.com/weddingguard/backend/web"
)

// Index renders the page for the caller's current state.
func (h *Handler) Index(c *gin.Context) {
	state, err := h.store.Get(middleware.GetSessionID(c))
	if err != nil {
		h.pageError(c, err)
		return
	}
	h.render(c, http.StatusOK, state)
}

// Section switches between the home and analyze sections.
func (h *Handler) Section(c *gin.Context) {
	section := shell.Section(c.Param("section"))
	_, err := h.store.Update(middleware.GetSessionID(c), func(s *shell.ViewState) error {
		return s.Navigate(section)
	})
	if errors.Is(err, shell.ErrUnknownSection) {
		c.String(http.StatusNotFound, "unknown section")
		return
	}
	if err != nil {
		h.pageError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Analyze handles the upload form. Whatever the outcome, the browser is
// sent back to the page, which shows the report or the error toast.
func (h *Handler) Analyze(limiter *middleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := middleware.GetSessionID(c)

		if !limiter.Allow(middleware.LimitKey(c)) {
			logger.Warn(c.Request.Context(), "rate limit exceeded")
			h.toast(c, shell.MsgTooManyRequests, shell.ToastError)
			c.Redirect(http.StatusSeeOther, "/")
			return
		}

		header, err := h.formFile(c)
		if err != nil {
			_, _, err = h.reject(sessionID, err)
		} else {
			_, _, err = h.analyze(c.Request.Context(), sessionID, header)
		}
		if errors.Is(err, shell.ErrUploadInProgress) {
			h.toast(c, shell.MsgUploadInFlight, shell.ToastInfo)
		}

		c.Redirect(http.StatusSeeOther, "/")
	}
}

// Example opens the bundled demo report. It never calls the analysis service.
func (h *Handler) Example(c *gin.Context) {
	variant := service.ExampleStructured
	if c.PostForm("variant") == string(service.ExampleText) {
		variant = service.ExampleText
	}
	if _, err := h.openExample(middleware.GetSessionID(c), variant); err != nil {
		h.pageError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Tab switches the report tab.
func (h *Handler) Tab(c *gin.Context) {
	tab := shell.Tab(c.Param("tab"))
	_, err := h.store.Update(middleware.GetSessionID(c), func(s *shell.ViewState) error {
		return s.SelectTab(tab)
	})
	switch {
	case errors.Is(err, shell.ErrUnknownTab):
		c.String(http.StatusNotFound, "unknown tab")
		return
	case err != nil && !errors.Is(err, shell.ErrModalClosed):
		h.pageError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// CloseReport closes the modal and discards the report.
func (h *Handler) CloseReport(c *gin.Context) {
	_, err := h.store.Update(middleware.GetSessionID(c), func(s *shell.ViewState) error {
		s.CloseModal()
		return nil
	})
	if err != nil {
		h.pageError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Archived reopens a report saved by an earlier analysis.
func (h *Handler) Archived(c *gin.Context) {
	analysisID := c.Param("id")
	sessionID := middleware.GetSessionID(c)

	report, err := h.loadArchived(c.Request.Context(), analysisID)
	if err != nil {
		logger.Warn(logger.WithAnalysisID(c.Request.Context(), analysisID), "archived report unavailable", "error", err)
		state, uerr := h.store.Update(sessionID, func(s *shell.ViewState) error {
			s.ShowToast(MsgReportNotFound, shell.ToastError, h.now())
			return nil
		})
		if uerr != nil {
			h.pageError(c, uerr)
			return
		}
		h.render(c, http.StatusNotFound, state)
		return
	}

	_, err = h.store.Update(sessionID, func(s *shell.ViewState) error {
		if err := s.Navigate(shell.SectionAnalyze); err != nil {
			return err
		}
		s.OpenReport(report, analysisID)
		return nil
	})
	if err != nil {
		h.pageError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) toast(c *gin.Context, message string, kind shell.ToastKind) {
	_, err := h.store.Update(middleware.GetSessionID(c), func(s *shell.ViewState) error {
		s.ShowToast(message, kind, h.now())
		return nil
	})
	if err != nil {
		logger.Error(c.Request.Context(), "failed to store toast", "error", err)
	}
}

func (h *Handler) render(c *gin.Context, status int, state *shell.ViewState) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := h.renderer.Render(c.Writer, web.NewPage(state, h.maxUpload, h.now())); err != nil {
		logger.Error(c.Request.Context(), "failed to render page", "error", err)
	}
}

func (h *Handler) pageError(c *gin.Context, err error) {
	logger.Error(c.Request.Context(), "page request failed", "error", err)
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Internal server error")
}
