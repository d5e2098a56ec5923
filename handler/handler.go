package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weddingguard/backend/model"
	"github.com/weddingguard/backend/pkg/logger"
	"github.com/weddingguard/backend/service"
	"github.com/weddingguard/backend/shell"
	"github.com/weddingguard/backend/web"
)

// MsgReportNotFound is shown when an archived report cannot be loaded.
const MsgReportNotFound = "보관된 분석 결과를 찾을 수 없습니다."

// Handler serves the browser pages and the JSON API. Every route reads or
// updates the ViewState of the caller's session.
type Handler struct {
	store     *service.SessionStore
	analyzer  service.Analyzer
	archive   service.ReportArchive
	validator *service.Validator
	renderer  *web.Renderer
	maxUpload int64
	now       func() time.Time
}

// Options wires a Handler. Archive may be nil.
type Options struct {
	Store          *service.SessionStore
	Analyzer       service.Analyzer
	Archive        service.ReportArchive
	Renderer       *web.Renderer
	MaxUploadBytes int64
}

func New(opts Options) *Handler {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = service.MaxUploadBytes
	}
	return &Handler{
		store:     opts.Store,
		analyzer:  opts.Analyzer,
		archive:   opts.Archive,
		validator: service.NewValidator(maxUpload),
		renderer:  opts.Renderer,
		maxUpload: maxUpload,
		now:       time.Now,
	}
}

// formFile returns the first file of the multipart field "file". The body
// is capped slightly above the upload limit so an oversized upload is
// reported as too large without being read in full.
func (h *Handler) formFile(c *gin.Context) (*multipart.FileHeader, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			// the part header was never parsed, so name and size are unknown
			logger.Warn(c.Request.Context(), "upload body exceeds limit",
				"body_limit", tooLarge.Limit,
				"content_length", c.Request.ContentLength,
			)
			return nil, &service.ValidationError{Kind: service.ErrFileTooLarge}
		}
		return nil, service.NoFileError()
	}
	files := form.File["file"]
	if len(files) == 0 {
		return nil, service.NoFileError()
	}
	return files[0], nil
}

// analyze runs one upload for a session: validate, take the loading guard,
// call the analysis service outside the store lock, then apply the outcome
// if this attempt is still the one in flight.
func (h *Handler) analyze(ctx context.Context, sessionID string, header *multipart.FileHeader) (*shell.ViewState, *service.Analysis, error) {
	log := logger.WithContext(ctx)

	file := service.UploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	if err := h.validator.Validate(file); err != nil {
		return h.reject(sessionID, err)
	}

	var attempt string
	state, err := h.store.Update(sessionID, func(s *shell.ViewState) error {
		var err error
		attempt, err = s.BeginUpload(h.now())
		return err
	})
	if err != nil {
		log.Warn("upload refused", "error", err)
		return state, nil, err
	}
	// a panic past this point must not leave the session stuck in loading
	defer func() {
		if r := recover(); r != nil {
			h.store.Update(sessionID, func(s *shell.ViewState) error {
				s.FailUpload(attempt, h.now())
				return nil
			})
			panic(r)
		}
	}()

	content, err := header.Open()
	if err != nil {
		state, _ = h.store.Update(sessionID, func(s *shell.ViewState) error {
			s.FailUpload(attempt, h.now())
			return nil
		})
		return state, nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer content.Close()
	file.Content = content

	analysis, err := h.analyzer.Submit(ctx, file)
	if err != nil {
		log.Error("analysis failed", "error", err, "filename", file.Filename)
		state, _ = h.store.Update(sessionID, func(s *shell.ViewState) error {
			if !s.FailUpload(attempt, h.now()) {
				log.Warn("stale analysis failure ignored", "attempt", attempt)
			}
			return nil
		})
		return state, nil, err
	}

	h.archiveReport(ctx, analysis)

	state, err = h.store.Update(sessionID, func(s *shell.ViewState) error {
		if !s.CompleteUpload(attempt, analysis.Report, analysis.ID, h.now()) {
			log.Warn("stale analysis result ignored", "attempt", attempt, "analysis_id", analysis.ID)
		}
		return nil
	})
	return state, analysis, err
}

func (h *Handler) reject(sessionID string, err error) (*shell.ViewState, *service.Analysis, error) {
	reason := err.Error()
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		reason = verr.Reason()
	}
	state, uerr := h.store.Update(sessionID, func(s *shell.ViewState) error {
		s.RejectFile(reason, h.now())
		return nil
	})
	if uerr != nil {
		return state, nil, uerr
	}
	return state, nil, err
}

func (h *Handler) archiveReport(ctx context.Context, analysis *service.Analysis) {
	if h.archive == nil {
		return
	}
	if err := h.archive.Save(ctx, analysis.ID, analysis.Body); err != nil {
		logger.Warn(logger.WithAnalysisID(ctx, analysis.ID), "failed to archive report", "error", err)
	}
}

// loadArchived fetches and parses an archived report.
func (h *Handler) loadArchived(ctx context.Context, analysisID string) (*model.Report, error) {
	if h.archive == nil {
		return nil, service.ErrReportNotFound
	}
	body, err := h.archive.Load(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	return model.ParseReport(body)
}

// openExample puts the bundled demo report in front of the session.
func (h *Handler) openExample(sessionID string, variant service.ExampleVariant) (*shell.ViewState, error) {
	report, err := service.ExampleReport(variant)
	if err != nil {
		return nil, err
	}
	return h.store.Update(sessionID, func(s *shell.ViewState) error {
		if err := s.Navigate(shell.SectionAnalyze); err != nil {
			return err
		}
		s.OpenReport(report, "")
		return nil
	})
}
