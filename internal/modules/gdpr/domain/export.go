package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

var (
	ErrExportNotFound = errors.New("export request not found")
)

type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportRequest tracks one data-export job. ObjectKey is set once the
// worker has uploaded the bundle.
type ExportRequest struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	UserID      uuid.UUID    `db:"user_id" json:"user_id"`
	Status      ExportStatus `db:"status" json:"status"`
	ObjectKey   *string      `db:"object_key" json:"-"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	CompletedAt *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}

type ExportRepository interface {
	Create(ctx context.Context, export *ExportRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*ExportRequest, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, objectKey string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// ObjectStore is the blob backend export bundles are written to.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	PresignGet(ctx context.Context, key string, expiration time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}
