package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/tenant/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCompanyRepository struct {
	mock.Mock
}

func (m *mockCompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *mockCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *mockCompanyRepository) GetBySlug(ctx context.Context, slug string) (*domain.Company, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *mockCompanyRepository) List(ctx context.Context, filter domain.CompanyFilter, limit, offset int) ([]domain.Company, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	var companies []domain.Company
	if args.Get(0) != nil {
		companies = args.Get(0).([]domain.Company)
	}
	return companies, args.Int(1), args.Error(2)
}

func (m *mockCompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *mockCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCompanyRepository) AddMember(ctx context.Context, member *domain.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *mockCompanyRepository) ListMembers(ctx context.Context, companyID uuid.UUID) ([]domain.Member, error) {
	args := m.Called(ctx, companyID)
	var members []domain.Member
	if args.Get(0) != nil {
		members = args.Get(0).([]domain.Member)
	}
	return members, args.Error(1)
}

func (m *mockCompanyRepository) UpdateMemberRole(ctx context.Context, companyID, userID uuid.UUID, role domain.MemberRole) error {
	return m.Called(ctx, companyID, userID, role).Error(0)
}

func (m *mockCompanyRepository) RemoveMember(ctx context.Context, companyID, userID uuid.UUID) error {
	return m.Called(ctx, companyID, userID).Error(0)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme-corp", Slugify("Acme Corp"))
	assert.Equal(t, "acme-corp", Slugify("  Acme -- Corp!  "))
	assert.Equal(t, "r2-d2", Slugify("R2/D2"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestTenantService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("generates slug from name", func(t *testing.T) {
		repo := new(mockCompanyRepository)
		svc := NewTenantService(repo)

		var created *domain.Company
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Company")).Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Company)
		}).Return(nil).Once()

		company, err := svc.Create(ctx, CreateCompanyRequest{Name: "Acme Corp", Plan: "pro"})
		require.NoError(t, err)
		assert.Equal(t, "acme-corp", company.Slug)
		assert.Equal(t, domain.PlanPro, company.Plan)
		assert.True(t, company.Active)
		assert.Equal(t, created, company)
	})

	t.Run("explicit slug wins", func(t *testing.T) {
		repo := new(mockCompanyRepository)
		svc := NewTenantService(repo)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Company")).Return(nil).Once()

		company, err := svc.Create(ctx, CreateCompanyRequest{Name: "Acme Corp", Slug: "acme", Plan: "free"})
		require.NoError(t, err)
		assert.Equal(t, "acme", company.Slug)
	})

	t.Run("validation failures", func(t *testing.T) {
		repo := new(mockCompanyRepository)
		svc := NewTenantService(repo)

		_, err := svc.Create(ctx, CreateCompanyRequest{Name: "A", Plan: "pro"})
		assert.Error(t, err)

		_, err = svc.Create(ctx, CreateCompanyRequest{Name: "Acme", Plan: "platinum"})
		assert.Error(t, err)

		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("slug conflict propagates", func(t *testing.T) {
		repo := new(mockCompanyRepository)
		svc := NewTenantService(repo)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Company")).Return(domain.ErrSlugTaken).Once()

		_, err := svc.Create(ctx, CreateCompanyRequest{Name: "Acme", Plan: "pro"})
		assert.ErrorIs(t, err, domain.ErrSlugTaken)
	})
}

func TestTenantService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("patches only provided fields", func(t *testing.T) {
		repo := new(mockCompanyRepository)
		svc := NewTenantService(repo)

		existing := &domain.Company{ID: id, Name: "Acme", Slug: "acme", Plan: domain.PlanFree, Active: true}
		repo.On("GetByID", ctx, id).Return(existing, nil).Once()

		var updated *domain.Company
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Company")).Run(func(args mock.Arguments) {
			updated = args.Get(1).(*domain.Company)
		}).Return(nil).Once()

		newPlan := "enterprise"
		inactive := false
		company, err := svc.Update(ctx, id, UpdateCompanyRequest{Plan: &newPlan, Active: &inactive})
		require.NoError(t, err)
		assert.Equal(t, "Acme", company.Name)
		assert.Equal(t, domain.PlanEnterprise, company.Plan)
		assert.False(t, company.Active)
		assert.Equal(t, updated, company)
	})

	t.Run("missing company", func(t *testing.T) {
		repo := new(mockCompanyRepository)
		svc := NewTenantService(repo)
		repo.On("GetByID", ctx, id).Return(nil, domain.ErrCompanyNotFound).Once()

		_, err := svc.Update(ctx, id, UpdateCompanyRequest{})
		assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
	})
}

func TestTenantService_Members(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	userID := uuid.New()

	t.Run("add member", func(t *testing.T) {
		repo := new(mockCompanyRepository)
		svc := NewTenantService(repo)

		var added *domain.Member
		repo.On("AddMember", ctx, mock.AnythingOfType("*domain.Member")).Run(func(args mock.Arguments) {
			added = args.Get(1).(*domain.Member)
		}).Return(nil).Once()

		member, err := svc.AddMember(ctx, companyID, AddMemberRequest{UserID: userID, Role: "admin"})
		require.NoError(t, err)
		assert.Equal(t, companyID, member.CompanyID)
		assert.Equal(t, domain.MemberRoleAdmin, member.Role)
		assert.Equal(t, added, member)
	})

	t.Run("invalid role rejected before repo", func(t *testing.T) {
		repo := new(mockCompanyRepository)
		svc := NewTenantService(repo)

		_, err := svc.AddMember(ctx, companyID, AddMemberRequest{UserID: userID, Role: "janitor"})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)

		err = svc.UpdateMemberRole(ctx, companyID, userID, "janitor")
		assert.ErrorIs(t, err, ErrInvalidMemberRole)
	})

	t.Run("role update and removal delegate", func(t *testing.T) {
		repo := new(mockCompanyRepository)
		svc := NewTenantService(repo)

		repo.On("UpdateMemberRole", ctx, companyID, userID, domain.MemberRoleOwner).Return(nil).Once()
		require.NoError(t, svc.UpdateMemberRole(ctx, companyID, userID, domain.MemberRoleOwner))

		repo.On("RemoveMember", ctx, companyID, userID).Return(domain.ErrMemberNotFound).Once()
		assert.ErrorIs(t, svc.RemoveMember(ctx, companyID, userID), domain.ErrMemberNotFound)
	})
}
