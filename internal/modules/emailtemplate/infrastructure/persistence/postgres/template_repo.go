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
	"github.com/notifeed/notifeed/internal/modules/emailtemplate/domain"
)

type PgTemplateRepository struct {
	db *sqlx.DB
}

func NewPgTemplateRepository(db *sqlx.DB) *PgTemplateRepository {
	return &PgTemplateRepository{db: db}
}

func (r *PgTemplateRepository) Create(ctx context.Context, tmpl *domain.EmailTemplate) error {
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	now := time.Now().UTC()
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = now
	}
	tmpl.UpdatedAt = now

	query := `
		INSERT INTO email_templates (id, company_id, name, subject, body, variables, created_at, updated_at)
		VALUES (:id, :company_id, :name, :subject, :body, :variables, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, tmpl)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrTemplateNameTaken
		}
		return fmt.Errorf("failed to create email template: %w", err)
	}
	return nil
}

func (r *PgTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailTemplate, error) {
	var tmpl domain.EmailTemplate
	err := r.db.GetContext(ctx, &tmpl, `SELECT * FROM email_templates WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get email template: %w", err)
	}
	return &tmpl, nil
}

func (r *PgTemplateRepository) List(ctx context.Context, filter domain.TemplateFilter, limit, offset int) ([]domain.EmailTemplate, int, error) {
	query := `SELECT *, COUNT(*) OVER() as total_count FROM email_templates WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.CompanyID != nil {
		query += fmt.Sprintf(" AND company_id = $%d", argID)
		args = append(args, *filter.CompanyID)
		argID++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argID)
		args = append(args, "%"+filter.Search+"%")
		argID++
	}

	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	type row struct {
		domain.EmailTemplate
		TotalCount int `db:"total_count"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list email templates: %w", err)
	}

	templates := make([]domain.EmailTemplate, 0, len(rows))
	total := 0
	for _, rw := range rows {
		templates = append(templates, rw.EmailTemplate)
		total = rw.TotalCount
	}
	return templates, total, nil
}

func (r *PgTemplateRepository) Update(ctx context.Context, tmpl *domain.EmailTemplate) error {
	tmpl.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE email_templates
		SET name = :name, subject = :subject, body = :body, variables = :variables, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, tmpl)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrTemplateNameTaken
		}
		return fmt.Errorf("failed to update email template: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *PgTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete email template: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}
