package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/notifeed/notifeed/internal/modules/theme/domain"
)

type PgThemeRepository struct {
	db *sqlx.DB
}

func NewPgThemeRepository(db *sqlx.DB) *PgThemeRepository {
	return &PgThemeRepository{db: db}
}

func (r *PgThemeRepository) Create(ctx context.Context, theme *domain.Theme) error {
	if theme.ID == uuid.Nil {
		theme.ID = uuid.New()
	}
	now := time.Now().UTC()
	if theme.CreatedAt.IsZero() {
		theme.CreatedAt = now
	}
	theme.UpdatedAt = now

	query := `
		INSERT INTO themes (id, company_id, name, colors, font_family, base_font_size_px, radius_px, is_default, created_at, updated_at)
		VALUES (:id, :company_id, :name, :colors, :font_family, :base_font_size_px, :radius_px, :is_default, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, theme)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrThemeNameTaken
		}
		return fmt.Errorf("failed to create theme: %w", err)
	}
	return nil
}

func (r *PgThemeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Theme, error) {
	var theme domain.Theme
	err := r.db.GetContext(ctx, &theme, `SELECT * FROM themes WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrThemeNotFound
		}
		return nil, fmt.Errorf("failed to get theme: %w", err)
	}
	return &theme, nil
}

func (r *PgThemeRepository) GetDefault(ctx context.Context, companyID uuid.UUID) (*domain.Theme, error) {
	var theme domain.Theme
	err := r.db.GetContext(ctx, &theme,
		`SELECT * FROM themes WHERE company_id = $1 AND is_default = TRUE`, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrThemeNotFound
		}
		return nil, fmt.Errorf("failed to get default theme: %w", err)
	}
	return &theme, nil
}

func (r *PgThemeRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Theme, error) {
	var themes []domain.Theme
	err := r.db.SelectContext(ctx, &themes,
		`SELECT * FROM themes WHERE company_id = $1 ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	return themes, nil
}

func (r *PgThemeRepository) Update(ctx context.Context, theme *domain.Theme) error {
	theme.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE themes
		SET name = :name, colors = :colors, font_family = :font_family,
		    base_font_size_px = :base_font_size_px, radius_px = :radius_px, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, theme)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrThemeNameTaken
		}
		return fmt.Errorf("failed to update theme: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return domain.ErrThemeNotFound
	}
	return nil
}

func (r *PgThemeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM themes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return domain.ErrThemeNotFound
	}
	return nil
}

// SetDefault flips the default flag to the given theme inside a single
// transaction so a company never has two defaults.
func (r *PgThemeRepository) SetDefault(ctx context.Context, companyID, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE themes SET is_default = FALSE WHERE company_id = $1 AND is_default = TRUE`, companyID); err != nil {
		return fmt.Errorf("failed to clear default theme: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE themes SET is_default = TRUE, updated_at = NOW() WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to set default theme: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check default theme result: %w", err)
	}
	if rows == 0 {
		return domain.ErrThemeNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit default theme: %w", err)
	}
	return nil
}
