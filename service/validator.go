package service

import (
	"errors"
	"io"
	"mime"
	"strings"

	"github.com/weddingguard/backend/config"
)

// MaxUploadBytes is the largest contract file accepted.
const MaxUploadBytes = config.DefaultMaxUploadBytes

// AllowedContentTypes are the declared media types accepted for upload.
var AllowedContentTypes = []string{"image/jpeg", "image/jpg", "image/png", "application/pdf"}

var (
	ErrNoFile          = errors.New("no file provided")
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var rejectionReasons = map[error]string{
	ErrNoFile:          "업로드할 파일을 선택해주세요.",
	ErrFileTooLarge:    "파일 크기는 10MB를 초과할 수 없습니다.",
	ErrUnsupportedType: "JPG, PNG, PDF 형식만 지원됩니다.",
}

// ValidationError is a rejected upload. Reason is safe to show to users.
type ValidationError struct {
	Kind        error
	Filename    string
	ContentType string
	Size        int64
}

func (e *ValidationError) Error() string {
	if e.Filename == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Filename
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Reason is the localized message for the rejection.
func (e *ValidationError) Reason() string {
	return rejectionReasons[e.Kind]
}

// UploadedFile is a contract file selected by the user. It lives only for
// the duration of one submission.
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Validator gates uploads before any network activity.
type Validator struct {
	maxBytes int64
}

func NewValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}
	return &Validator{maxBytes: maxBytes}
}

// Validate accepts or rejects a file. The size limit is checked before the
// media type.
func (v *Validator) Validate(f UploadedFile) error {
	if f.Size > v.maxBytes {
		return &ValidationError{Kind: ErrFileTooLarge, Filename: f.Filename, ContentType: f.ContentType, Size: f.Size}
	}
	if !AllowedContentType(f.ContentType) {
		return &ValidationError{Kind: ErrUnsupportedType, Filename: f.Filename, ContentType: f.ContentType, Size: f.Size}
	}
	return nil
}

// ValidateUpload checks a file against the default limits.
func ValidateUpload(name, contentType string, size int64) error {
	return NewValidator(MaxUploadBytes).Validate(UploadedFile{Filename: name, ContentType: contentType, Size: size})
}

// NoFileError is returned when a form carries no file at all.
func NoFileError() error {
	return &ValidationError{Kind: ErrNoFile}
}

// AllowedContentType reports whether a declared media type is accepted.
// Parameters such as charset are ignored.
func AllowedContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	mediaType = strings.ToLower(mediaType)
	for _, allowed := range AllowedContentTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}
