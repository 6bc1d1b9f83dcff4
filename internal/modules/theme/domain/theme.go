package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrThemeNotFound  = errors.New("theme not found")
	ErrThemeNameTaken = errors.New("theme name already taken for this company")
)

// ColorMap stores named colors as a JSONB column.
type ColorMap map[string]string

func (c ColorMap) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

func (c *ColorMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = ColorMap{}
		return nil
	default:
		return fmt.Errorf("unsupported color map source type %T", src)
	}
}

// Theme is a per-company visual configuration. At most one theme per
// company is the default.
type Theme struct {
	ID             uuid.UUID `db:"id" json:"id"`
	CompanyID      uuid.UUID `db:"company_id" json:"company_id"`
	Name           string    `db:"name" json:"name"`
	Colors         ColorMap  `db:"colors" json:"colors"`
	FontFamily     string    `db:"font_family" json:"font_family"`
	BaseFontSizePx int       `db:"base_font_size_px" json:"base_font_size_px"`
	RadiusPx       int       `db:"radius_px" json:"radius_px"`
	IsDefault      bool      `db:"is_default" json:"is_default"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type ThemeRepository interface {
	Create(ctx context.Context, theme *Theme) error
	GetByID(ctx context.Context, id uuid.UUID) (*Theme, error)
	GetDefault(ctx context.Context, companyID uuid.UUID) (*Theme, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]Theme, error)
	Update(ctx context.Context, theme *Theme) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetDefault(ctx context.Context, companyID, id uuid.UUID) error
}
