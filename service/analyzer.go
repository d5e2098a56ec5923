package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/google/uuid"

	"github.com/weddingguard/backend/config"
	"github.com/weddingguard/backend/model"
	"github.com/weddingguard/backend/pkg/logger"
)

var (
	ErrTransport         = errors.New("analysis request failed")
	ErrServerStatus      = errors.New("analysis service returned an error status")
	ErrEmptyResponse     = errors.New("analysis service returned an empty response")
	ErrMalformedResponse = errors.New("analysis service returned a malformed response")
)

// AnalysisError describes why a submission produced no report. Kind is one
// of the Err* sentinels above; StatusCode is set for ErrServerStatus.
type AnalysisError struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *AnalysisError) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AnalysisError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Analysis is a successful submission.
type Analysis struct {
	ID     string
	Report *model.Report
	// Body is the raw webhook response, kept for archiving.
	Body []byte
}

// Analyzer submits contract files for analysis.
type Analyzer interface {
	Submit(ctx context.Context, file UploadedFile) (*Analysis, error)
}

// AnalyzerService posts files to the external analysis webhook. It makes
// exactly one request per call and never retries.
type AnalyzerService struct {
	config     *config.AnalysisConfig
	httpClient *http.Client
}

func NewAnalyzerService(cfg *config.AnalysisConfig) *AnalyzerService {
	return &AnalyzerService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// Submit sends file as multipart form data and parses the response.
func (s *AnalyzerService) Submit(ctx context.Context, file UploadedFile) (*Analysis, error) {
	id := uuid.New().String()
	ctx = logger.WithAnalysisID(ctx, id)
	log := logger.WithContext(ctx)

	body, contentType, err := s.buildForm(file)
	if err != nil {
		return nil, &AnalysisError{Kind: ErrTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.EndpointURL, body)
	if err != nil {
		return nil, &AnalysisError{Kind: ErrTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)

	log.Info("submitting contract for analysis",
		"filename", file.Filename,
		"content_type", file.ContentType,
		"size", file.Size,
	)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error("analysis request failed", "error", err)
		return nil, &AnalysisError{Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read analysis response", "error", err)
		return nil, &AnalysisError{Kind: ErrTransport, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("analysis service returned error status",
			"status", resp.StatusCode,
			"body", truncate(respBody, 2048),
		)
		return nil, &AnalysisError{Kind: ErrServerStatus, StatusCode: resp.StatusCode}
	}

	if len(respBody) == 0 {
		log.Error("analysis service returned empty body")
		return nil, &AnalysisError{Kind: ErrEmptyResponse}
	}

	report, err := model.ParseReport(respBody)
	if err != nil {
		log.Error("failed to parse analysis response",
			"error", err,
			"body", truncate(respBody, 2048),
		)
		return nil, &AnalysisError{Kind: ErrMalformedResponse, Err: err}
	}

	log.Info("analysis completed", "kind", report.Kind, "bytes", len(respBody))
	return &Analysis{ID: id, Report: report, Body: respBody}, nil
}

func (s *AnalyzerService) buildForm(file UploadedFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(s.config.FieldName), escapeQuotes(file.Filename)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if file.Content != nil {
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to read upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
