package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/tenant/domain"
)

var ErrInvalidMemberRole = errors.New("invalid member role")

type CreateCompanyRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
	Slug string `json:"slug" validate:"omitempty,min=2,max=64"`
	Plan string `json:"plan" validate:"required,oneof=free pro enterprise"`
}

type UpdateCompanyRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Plan   *string `json:"plan,omitempty" validate:"omitempty,oneof=free pro enterprise"`
	Active *bool   `json:"active,omitempty"`
}

type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=owner admin member"`
}

type TenantService struct {
	repo     domain.CompanyRepository
	validate *validator.Validate
}

func NewTenantService(repo domain.CompanyRepository) *TenantService {
	return &TenantService{
		repo:     repo,
		validate: validator.New(),
	}
}

// Slugify lowercases the name and collapses everything that is not a
// letter or digit into single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func (s *TenantService) Create(ctx context.Context, req CreateCompanyRequest) (*domain.Company, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	company := &domain.Company{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      slug,
		Plan:      domain.Plan(req.Plan),
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TenantService) GetBySlug(ctx context.Context, slug string) (*domain.Company, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *TenantService) List(ctx context.Context, filter domain.CompanyFilter, limit, offset int) ([]domain.Company, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// Update patches the provided fields onto the stored company.
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*domain.Company, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Plan != nil {
		company.Plan = domain.Plan(*req.Plan)
	}
	if req.Active != nil {
		company.Active = *req.Active
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *TenantService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *TenantService) AddMember(ctx context.Context, companyID uuid.UUID, req AddMemberRequest) (*domain.Member, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	member := &domain.Member{
		ID:        uuid.New(),
		CompanyID: companyID,
		UserID:    req.UserID,
		Role:      domain.MemberRole(req.Role),
		CreatedAt: time.Now(),
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *TenantService) ListMembers(ctx context.Context, companyID uuid.UUID) ([]domain.Member, error) {
	return s.repo.ListMembers(ctx, companyID)
}

func (s *TenantService) UpdateMemberRole(ctx context.Context, companyID, userID uuid.UUID, role domain.MemberRole) error {
	if !role.Valid() {
		return ErrInvalidMemberRole
	}
	return s.repo.UpdateMemberRole(ctx, companyID, userID, role)
}

func (s *TenantService) RemoveMember(ctx context.Context, companyID, userID uuid.UUID) error {
	return s.repo.RemoveMember(ctx, companyID, userID)
}
