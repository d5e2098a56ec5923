package service

import (
	"bytes"
	"container/list"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/weddingguard/backend/config"
)

// ErrReportNotFound is returned when an archived report does not exist.
var ErrReportNotFound = errors.New("archived report not found")

// ReportArchive keeps raw analysis responses so a report can be reopened.
type ReportArchive interface {
	Save(ctx context.Context, analysisID string, body []byte) error
	Load(ctx context.Context, analysisID string) ([]byte, error)
}

// MinioArchive stores reports as JSON objects in a MinIO bucket.
type MinioArchive struct {
	client *minio.Client
	bucket string
	config *config.ArchiveConfig
}

func NewMinioArchive(cfg *config.ArchiveConfig) (*MinioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioArchive{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *MinioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (a *MinioArchive) Save(ctx context.Context, analysisID string, body []byte) error {
	name, err := a.ObjectName(analysisID)
	if err != nil {
		return err
	}
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to archive report: %w", err)
	}
	return nil
}

func (a *MinioArchive) Load(ctx context.Context, analysisID string) ([]byte, error) {
	name, err := a.ObjectName(analysisID)
	if err != nil {
		return nil, err
	}
	obj, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open archived report: %w", err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to read archived report: %w", err)
	}
	return body, nil
}

// ObjectName maps an analysis id to its object key. Only UUIDs are
// accepted so ids from URLs cannot escape the prefix.
func (a *MinioArchive) ObjectName(analysisID string) (string, error) {
	id, err := uuid.Parse(analysisID)
	if err != nil {
		return "", ErrReportNotFound
	}
	return path.Join(a.config.Prefix, id.String()+".json"), nil
}

// MemoryArchive is an in-process ReportArchive, used when MinIO is disabled.
// It holds at most maxReports reports, each for at most ttl, and drops the
// oldest first.
type MemoryArchive struct {
	mu         sync.Mutex
	reports    map[string]*list.Element
	order      *list.List // oldest save at the front
	maxReports int        // 0 = unlimited
	ttl        time.Duration
	now        func() time.Time
}

type archivedReport struct {
	id      string
	body    []byte
	savedAt time.Time
}

func NewMemoryArchive(maxReports int, ttl time.Duration) *MemoryArchive {
	if maxReports < 0 {
		maxReports = 0
	}
	return &MemoryArchive{
		reports:    make(map[string]*list.Element),
		order:      list.New(),
		maxReports: maxReports,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (m *MemoryArchive) Save(_ context.Context, analysisID string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := &archivedReport{id: analysisID, body: append([]byte(nil), body...), savedAt: m.now()}
	if el, ok := m.reports[analysisID]; ok {
		el.Value = report
		m.order.MoveToBack(el)
	} else {
		m.reports[analysisID] = m.order.PushBack(report)
	}
	m.prune()
	return nil
}

func (m *MemoryArchive) Load(_ context.Context, analysisID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune()
	el, ok := m.reports[analysisID]
	if !ok {
		return nil, ErrReportNotFound
	}
	return append([]byte(nil), el.Value.(*archivedReport).body...), nil
}

// Len returns the number of reports held.
func (m *MemoryArchive) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

// prune drops expired reports and the oldest ones above maxReports.
// Must be called with lock held
func (m *MemoryArchive) prune() {
	var cutoff time.Time
	if m.ttl > 0 {
		cutoff = m.now().Add(-m.ttl)
	}
	for el := m.order.Front(); el != nil; el = m.order.Front() {
		report := el.Value.(*archivedReport)
		overCap := m.maxReports > 0 && m.order.Len() > m.maxReports
		expired := m.ttl > 0 && report.savedAt.Before(cutoff)
		if !overCap && !expired {
			return
		}
		m.order.Remove(el)
		delete(m.reports, report.id)
	}
}
