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
	"github.com/notifeed/notifeed/internal/modules/tenant/domain"
)

type PgCompanyRepository struct {
	db *sqlx.DB
}

func NewCompanyRepository(db *sqlx.DB) *PgCompanyRepository {
	return &PgCompanyRepository{db: db}
}

func (r *PgCompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now()
	}
	if company.UpdatedAt.IsZero() {
		company.UpdatedAt = company.CreatedAt
	}
	query := `
		INSERT INTO companies (id, name, slug, plan, active, created_at, updated_at)
		VALUES (:id, :name, :slug, :plan, :active, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, company)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *PgCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	company := &domain.Company{}
	err := r.db.GetContext(ctx, company, `SELECT * FROM companies WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

func (r *PgCompanyRepository) GetBySlug(ctx context.Context, slug string) (*domain.Company, error) {
	company := &domain.Company{}
	err := r.db.GetContext(ctx, company, `SELECT * FROM companies WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

// List applies search and plan filters and returns one page with the
// total match count from a window function.
func (r *PgCompanyRepository) List(ctx context.Context, filter domain.CompanyFilter, limit, offset int) ([]domain.Company, int, error) {
	var results []struct {
		domain.Company
		TotalCount int `db:"total_count"`
	}

	query := `
		SELECT *, COUNT(*) OVER() as total_count
		FROM companies
		WHERE 1=1
	`
	args := []interface{}{}
	argID := 1

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR slug ILIKE $%d)", argID, argID)
		args = append(args, "%"+filter.Search+"%")
		argID++
	}
	if filter.Plan != "" {
		query += fmt.Sprintf(" AND plan = $%d", argID)
		args = append(args, filter.Plan)
		argID++
	}
	if filter.Active != nil {
		query += fmt.Sprintf(" AND active = $%d", argID)
		args = append(args, *filter.Active)
		argID++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, err
	}

	companies := make([]domain.Company, len(results))
	total := 0
	for i, row := range results {
		companies[i] = row.Company
		total = row.TotalCount
	}
	return companies, total, nil
}

func (r *PgCompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	company.UpdatedAt = time.Now()
	query := `
		UPDATE companies
		SET name = :name, slug = :slug, plan = :plan, active = :active, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, company)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrSlugTaken
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrCompanyNotFound
	}
	return nil
}

func (r *PgCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrCompanyNotFound
	}
	return nil
}

func (r *PgCompanyRepository) AddMember(ctx context.Context, member *domain.Member) error {
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO company_members (id, company_id, user_id, role, created_at)
		VALUES (:id, :company_id, :user_id, :role, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, member)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return domain.ErrMemberAlreadyExists
			case "23503":
				return domain.ErrCompanyNotFound
			}
		}
		return err
	}
	return nil
}

func (r *PgCompanyRepository) ListMembers(ctx context.Context, companyID uuid.UUID) ([]domain.Member, error) {
	query := `
		SELECT * FROM company_members
		WHERE company_id = $1
		ORDER BY created_at ASC
	`
	var members []domain.Member
	if err := r.db.SelectContext(ctx, &members, query, companyID); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PgCompanyRepository) UpdateMemberRole(ctx context.Context, companyID, userID uuid.UUID, role domain.MemberRole) error {
	query := `
		UPDATE company_members
		SET role = $1
		WHERE company_id = $2 AND user_id = $3
	`
	res, err := r.db.ExecContext(ctx, query, role, companyID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *PgCompanyRepository) RemoveMember(ctx context.Context, companyID, userID uuid.UUID) error {
	query := `DELETE FROM company_members WHERE company_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, companyID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}
