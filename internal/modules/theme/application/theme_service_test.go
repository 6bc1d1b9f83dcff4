package application_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/theme/application"
	"github.com/notifeed/notifeed/internal/modules/theme/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockThemeRepository struct {
	mock.Mock
}

func (m *mockThemeRepository) Create(ctx context.Context, theme *domain.Theme) error {
	return m.Called(ctx, theme).Error(0)
}

func (m *mockThemeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Theme, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Theme), args.Error(1)
}

func (m *mockThemeRepository) GetDefault(ctx context.Context, companyID uuid.UUID) (*domain.Theme, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Theme), args.Error(1)
}

func (m *mockThemeRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Theme, error) {
	args := m.Called(ctx, companyID)
	var themes []domain.Theme
	if args.Get(0) != nil {
		themes = args.Get(0).([]domain.Theme)
	}
	return themes, args.Error(1)
}

func (m *mockThemeRepository) Update(ctx context.Context, theme *domain.Theme) error {
	return m.Called(ctx, theme).Error(0)
}

func (m *mockThemeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockThemeRepository) SetDefault(ctx context.Context, companyID, id uuid.UUID) error {
	return m.Called(ctx, companyID, id).Error(0)
}

func TestRenderCSS(t *testing.T) {
	theme := &domain.Theme{
		Colors: domain.ColorMap{
			"primary":    "#1a2b3c",
			"background": "#ffffff",
		},
		FontFamily:     "Inter, sans-serif",
		BaseFontSizePx: 16,
		RadiusPx:       8,
	}

	css := application.RenderCSS(theme)
	assert.Equal(t, ":root {\n"+
		"  --color-background: #ffffff;\n"+
		"  --color-primary: #1a2b3c;\n"+
		"  --font-family: Inter, sans-serif;\n"+
		"  --font-size-base: 16px;\n"+
		"  --radius: 8px;\n"+
		"}\n", css)
}

func TestThemeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("persists valid theme", func(t *testing.T) {
		repo := new(mockThemeRepository)
		service := application.NewThemeService(repo)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Theme")).Return(nil).Once()

		theme, err := service.Create(ctx, application.CreateThemeRequest{
			CompanyID:      uuid.New(),
			Name:           "midnight",
			Colors:         map[string]string{"primary": "#1a2b3c"},
			FontFamily:     "Inter, sans-serif",
			BaseFontSizePx: 16,
			RadiusPx:       8,
		})
		require.NoError(t, err)
		assert.Equal(t, "midnight", theme.Name)
		repo.AssertNotCalled(t, "SetDefault")
	})

	t.Run("marks default when requested", func(t *testing.T) {
		repo := new(mockThemeRepository)
		service := application.NewThemeService(repo)
		companyID := uuid.New()
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Theme")).Return(nil).Once()
		repo.On("SetDefault", mock.Anything, companyID, mock.AnythingOfType("uuid.UUID")).Return(nil).Once()

		_, err := service.Create(ctx, application.CreateThemeRequest{
			CompanyID:      companyID,
			Name:           "midnight",
			Colors:         map[string]string{"primary": "#1a2b3c"},
			FontFamily:     "Inter",
			BaseFontSizePx: 16,
			IsDefault:      true,
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid color value", func(t *testing.T) {
		repo := new(mockThemeRepository)
		service := application.NewThemeService(repo)

		_, err := service.Create(ctx, application.CreateThemeRequest{
			CompanyID:      uuid.New(),
			Name:           "midnight",
			Colors:         map[string]string{"primary": "blueish"},
			FontFamily:     "Inter",
			BaseFontSizePx: 16,
		})
		var colorErr *application.InvalidColorError
		require.ErrorAs(t, err, &colorErr)
		assert.Equal(t, "primary", colorErr.Key)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects out-of-range font size", func(t *testing.T) {
		repo := new(mockThemeRepository)
		service := application.NewThemeService(repo)

		_, err := service.Create(ctx, application.CreateThemeRequest{
			CompanyID:      uuid.New(),
			Name:           "midnight",
			Colors:         map[string]string{"primary": "#fff"},
			FontFamily:     "Inter",
			BaseFontSizePx: 64,
		})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestThemeService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	repo := new(mockThemeRepository)
	service := application.NewThemeService(repo)
	repo.On("GetByID", mock.Anything, id).Return(&domain.Theme{
		ID:             id,
		Name:           "midnight",
		Colors:         domain.ColorMap{"primary": "#1a2b3c"},
		FontFamily:     "Inter",
		BaseFontSizePx: 16,
		RadiusPx:       8,
	}, nil).Once()

	var updated *domain.Theme
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Theme")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*domain.Theme)
		}).Return(nil).Once()

	radius := 12
	_, err := service.Update(ctx, id, application.UpdateThemeRequest{RadiusPx: &radius})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.RadiusPx)
	assert.Equal(t, "midnight", updated.Name)
	assert.Equal(t, domain.ColorMap{"primary": "#1a2b3c"}, updated.Colors)
}

func TestThemeService_SetDefault(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	companyID := uuid.New()

	repo := new(mockThemeRepository)
	service := application.NewThemeService(repo)
	repo.On("GetByID", mock.Anything, id).
		Return(&domain.Theme{ID: id, CompanyID: companyID}, nil).Once()
	repo.On("SetDefault", mock.Anything, companyID, id).Return(nil).Once()

	theme, err := service.SetDefault(ctx, id)
	require.NoError(t, err)
	assert.True(t, theme.IsDefault)
	repo.AssertExpectations(t)
}
