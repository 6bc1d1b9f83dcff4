package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrTemplateNotFound  = errors.New("email template not found")
	ErrTemplateNameTaken = errors.New("email template name already taken for this company")
)

// EmailTemplate is a per-company notification email layout. Subject and Body
// are text/template sources; Variables lists the placeholder names the
// template expects, used to build sample data for previews.
type EmailTemplate struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	CompanyID uuid.UUID      `db:"company_id" json:"company_id"`
	Name      string         `db:"name" json:"name"`
	Subject   string         `db:"subject" json:"subject"`
	Body      string         `db:"body" json:"body"`
	Variables pq.StringArray `db:"variables" json:"variables"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

type TemplateFilter struct {
	CompanyID *uuid.UUID
	Search    string
}

type TemplateRepository interface {
	Create(ctx context.Context, tmpl *EmailTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*EmailTemplate, error)
	List(ctx context.Context, filter TemplateFilter, limit, offset int) ([]EmailTemplate, int, error)
	Update(ctx context.Context, tmpl *EmailTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}
