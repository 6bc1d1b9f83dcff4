package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/notifeed/notifeed/internal/modules/gdpr/domain"
)

type PgExportRepository struct {
	db *sqlx.DB
}

func NewPgExportRepository(db *sqlx.DB) *PgExportRepository {
	return &PgExportRepository{db: db}
}

func (r *PgExportRepository) Create(ctx context.Context, export *domain.ExportRequest) error {
	if export.ID == uuid.Nil {
		export.ID = uuid.New()
	}
	if export.Status == "" {
		export.Status = domain.ExportStatusPending
	}
	if export.CreatedAt.IsZero() {
		export.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO gdpr_exports (id, user_id, status, object_key, created_at, completed_at)
		VALUES (:id, :user_id, :status, :object_key, :created_at, :completed_at)`

	if _, err := r.db.NamedExecContext(ctx, query, export); err != nil {
		return fmt.Errorf("failed to create export request: %w", err)
	}
	return nil
}

func (r *PgExportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExportRequest, error) {
	var export domain.ExportRequest
	err := r.db.GetContext(ctx, &export, `SELECT * FROM gdpr_exports WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExportNotFound
		}
		return nil, fmt.Errorf("failed to get export request: %w", err)
	}
	return &export, nil
}

func (r *PgExportRepository) MarkCompleted(ctx context.Context, id uuid.UUID, objectKey string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE gdpr_exports SET status = $1, object_key = $2, completed_at = NOW() WHERE id = $3`,
		domain.ExportStatusCompleted, objectKey, id)
	if err != nil {
		return fmt.Errorf("failed to mark export completed: %w", err)
	}
	return checkAffected(result)
}

func (r *PgExportRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE gdpr_exports SET status = $1, completed_at = NOW() WHERE id = $2`,
		domain.ExportStatusFailed, id)
	if err != nil {
		return fmt.Errorf("failed to mark export failed: %w", err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check export update result: %w", err)
	}
	if rows == 0 {
		return domain.ErrExportNotFound
	}
	return nil
}
