package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/pkg/feed"
)

// NotificationRepository is the persistence contract. List applies the
// feed's filter criteria server-side and reports the total match count so
// handlers can derive pagination.
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	List(ctx context.Context, userID uuid.UUID, filters feed.Filters, limit, offset int) ([]Notification, int, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkManyAsRead(ctx context.Context, notificationIDs []uuid.UUID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, notificationID, userID uuid.UUID) error
	DeleteMany(ctx context.Context, notificationIDs []uuid.UUID, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}
