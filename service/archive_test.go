package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/weddingguard/backend/config"
)

func TestNewMinioArchive(t *testing.T) {
	cfg := &config.ArchiveConfig{
		Enabled:   true,
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "contract-reports",
		Prefix:    "reports",
	}

	archive, err := NewMinioArchive(cfg)
	if err != nil {
		t.Fatalf("NewMinioArchive failed: %v", err)
	}
	if archive.bucket != "contract-reports" {
		t.Errorf("Expected bucket contract-reports, got %s", archive.bucket)
	}
}

func TestMinioArchiveObjectName(t *testing.T) {
	archive := &MinioArchive{config: &config.ArchiveConfig{Prefix: "reports"}}

	tests := []struct {
		name     string
		id       string
		expected string
		wantErr  bool
	}{
		{
			name:     "uuid",
			id:       "0b5c2a5e-8f43-4c8e-9d55-6d3f2a1b7c90",
			expected: "reports/0b5c2a5e-8f43-4c8e-9d55-6d3f2a1b7c90.json",
		},
		{
			name:     "uppercase uuid is normalized",
			id:       "0B5C2A5E-8F43-4C8E-9D55-6D3F2A1B7C90",
			expected: "reports/0b5c2a5e-8f43-4c8e-9d55-6d3f2a1b7c90.json",
		},
		{name: "path traversal", id: "../../etc/passwd", wantErr: true},
		{name: "empty", id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := archive.ObjectName(tt.id)
			if tt.wantErr {
				if !errors.Is(err, ErrReportNotFound) {
					t.Errorf("Expected ErrReportNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if name != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, name)
			}
		})
	}
}

func TestMemoryArchive(t *testing.T) {
	ctx := context.Background()
	archive := NewMemoryArchive(10, time.Hour)

	if _, err := archive.Load(ctx, "missing"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("Expected ErrReportNotFound, got %v", err)
	}

	body := []byte(`{"clause_analysis":[]}`)
	if err := archive.Save(ctx, "a1", body); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	body[0] = 'x'

	got, err := archive.Load(ctx, "a1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != `{"clause_analysis":[]}` {
		t.Errorf("Stored body was mutated: %s", got)
	}
}

func newTestArchive(maxReports int, ttl time.Duration) (*MemoryArchive, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	archive := NewMemoryArchive(maxReports, ttl)
	archive.now = clock.Now
	return archive, clock
}

func TestMemoryArchiveMaxReports(t *testing.T) {
	ctx := context.Background()
	archive, clock := newTestArchive(3, 0)

	for i := 0; i < 1000; i++ {
		archive.Save(ctx, fmt.Sprintf("a%d", i), []byte(`{}`))
		clock.Advance(time.Second)
	}
	if archive.Len() != 3 {
		t.Fatalf("Expected 3 reports, got %d", archive.Len())
	}
	if _, err := archive.Load(ctx, "a996"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("Expected oldest report evicted, got %v", err)
	}
	for _, id := range []string{"a997", "a998", "a999"} {
		if _, err := archive.Load(ctx, id); err != nil {
			t.Errorf("Expected %s to remain, got %v", id, err)
		}
	}
}

func TestMemoryArchiveTTL(t *testing.T) {
	ctx := context.Background()
	archive, clock := newTestArchive(0, time.Hour)

	archive.Save(ctx, "old", []byte(`{}`))
	clock.Advance(40 * time.Minute)
	archive.Save(ctx, "new", []byte(`{}`))
	clock.Advance(30 * time.Minute)

	if _, err := archive.Load(ctx, "old"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("Expected expired report to be gone, got %v", err)
	}
	if _, err := archive.Load(ctx, "new"); err != nil {
		t.Errorf("Expected recent report, got %v", err)
	}
	if archive.Len() != 1 {
		t.Errorf("Expected expired report dropped from memory, got %d", archive.Len())
	}
}

func TestMemoryArchiveResaveRefreshes(t *testing.T) {
	ctx := context.Background()
	archive, clock := newTestArchive(2, 0)

	archive.Save(ctx, "a", []byte(`1`))
	clock.Advance(time.Second)
	archive.Save(ctx, "b", []byte(`2`))
	clock.Advance(time.Second)
	archive.Save(ctx, "a", []byte(`3`))
	archive.Save(ctx, "c", []byte(`4`))

	if _, err := archive.Load(ctx, "b"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("Expected b evicted as the oldest save, got %v", err)
	}
	got, err := archive.Load(ctx, "a")
	if err != nil || string(got) != "3" {
		t.Errorf("Expected refreshed body 3, got %q (%v)", got, err)
	}
}
