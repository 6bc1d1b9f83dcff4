package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Known notification types. The vocabulary is open: companies can emit
// custom tags and the feed treats them as opaque strings.
const (
	TypeWelcome     = "welcome"
	TypeSecurity    = "security"
	TypeSystem      = "system"
	TypeReport      = "report"
	TypeFeature     = "feature"
	TypeMaintenance = "maintenance"
	TypeUrgent      = "urgent"
	TypeInfo        = "info"
)

type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	Type      string    `json:"type" db:"type"`
	Link      *string   `json:"link,omitempty" db:"link"`
	Read      bool      `json:"read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
)
