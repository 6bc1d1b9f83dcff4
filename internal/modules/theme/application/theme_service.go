package application

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/theme/domain"
)

var colorValuePattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

type InvalidColorError struct {
	Key   string
	Value string
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("color %q has invalid value %q", e.Key, e.Value)
}

type CreateThemeRequest struct {
	CompanyID      uuid.UUID         `json:"company_id" validate:"required"`
	Name           string            `json:"name" validate:"required,min=2,max=120"`
	Colors         map[string]string `json:"colors" validate:"required,min=1"`
	FontFamily     string            `json:"font_family" validate:"required"`
	BaseFontSizePx int               `json:"base_font_size_px" validate:"required,min=8,max=32"`
	RadiusPx       int               `json:"radius_px" validate:"min=0,max=64"`
	IsDefault      bool              `json:"is_default"`
}

type UpdateThemeRequest struct {
	Name           *string           `json:"name" validate:"omitempty,min=2,max=120"`
	Colors         map[string]string `json:"colors" validate:"omitempty,min=1"`
	FontFamily     *string           `json:"font_family"`
	BaseFontSizePx *int              `json:"base_font_size_px" validate:"omitempty,min=8,max=32"`
	RadiusPx       *int              `json:"radius_px" validate:"omitempty,min=0,max=64"`
}

type ThemeService struct {
	repo     domain.ThemeRepository
	validate *validator.Validate
}

func NewThemeService(repo domain.ThemeRepository) *ThemeService {
	return &ThemeService{
		repo:     repo,
		validate: validator.New(),
	}
}

func (s *ThemeService) Create(ctx context.Context, req CreateThemeRequest) (*domain.Theme, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if err := checkColors(req.Colors); err != nil {
		return nil, err
	}

	theme := &domain.Theme{
		CompanyID:      req.CompanyID,
		Name:           req.Name,
		Colors:         req.Colors,
		FontFamily:     req.FontFamily,
		BaseFontSizePx: req.BaseFontSizePx,
		RadiusPx:       req.RadiusPx,
		IsDefault:      req.IsDefault,
	}
	if err := s.repo.Create(ctx, theme); err != nil {
		return nil, err
	}
	if req.IsDefault {
		if err := s.repo.SetDefault(ctx, theme.CompanyID, theme.ID); err != nil {
			return nil, err
		}
	}
	return theme, nil
}

func (s *ThemeService) Get(ctx context.Context, id uuid.UUID) (*domain.Theme, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ThemeService) GetDefault(ctx context.Context, companyID uuid.UUID) (*domain.Theme, error) {
	return s.repo.GetDefault(ctx, companyID)
}

func (s *ThemeService) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Theme, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *ThemeService) Update(ctx context.Context, id uuid.UUID, req UpdateThemeRequest) (*domain.Theme, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Colors != nil {
		if err := checkColors(req.Colors); err != nil {
			return nil, err
		}
	}

	theme, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		theme.Name = *req.Name
	}
	if req.Colors != nil {
		theme.Colors = req.Colors
	}
	if req.FontFamily != nil {
		theme.FontFamily = *req.FontFamily
	}
	if req.BaseFontSizePx != nil {
		theme.BaseFontSizePx = *req.BaseFontSizePx
	}
	if req.RadiusPx != nil {
		theme.RadiusPx = *req.RadiusPx
	}

	if err := s.repo.Update(ctx, theme); err != nil {
		return nil, err
	}
	return theme, nil
}

func (s *ThemeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *ThemeService) SetDefault(ctx context.Context, id uuid.UUID) (*domain.Theme, error) {
	theme, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetDefault(ctx, theme.CompanyID, theme.ID); err != nil {
		return nil, err
	}
	theme.IsDefault = true
	return theme, nil
}

// CSS renders a theme as a :root custom-property block. Color keys are
// sorted so output is stable across requests.
func (s *ThemeService) CSS(ctx context.Context, id uuid.UUID) (string, error) {
	theme, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return RenderCSS(theme), nil
}

func RenderCSS(theme *domain.Theme) string {
	keys := make([]string, 0, len(theme.Colors))
	for k := range theme.Colors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  --color-%s: %s;\n", k, theme.Colors[k])
	}
	fmt.Fprintf(&b, "  --font-family: %s;\n", theme.FontFamily)
	fmt.Fprintf(&b, "  --font-size-base: %dpx;\n", theme.BaseFontSizePx)
	fmt.Fprintf(&b, "  --radius: %dpx;\n", theme.RadiusPx)
	b.WriteString("}\n")
	return b.String()
}

func checkColors(colors map[string]string) error {
	for k, v := range colors {
		if !colorValuePattern.MatchString(v) {
			return &InvalidColorError{Key: k, Value: v}
		}
	}
	return nil
}
