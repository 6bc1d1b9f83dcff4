package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/notifeed/notifeed/internal/modules/notification/domain"
	"github.com/notifeed/notifeed/pkg/feed"
)

type PgNotificationRepository struct {
	db *sqlx.DB
}

func NewPgNotificationRepository(db *sqlx.DB) *PgNotificationRepository {
	return &PgNotificationRepository{db: db}
}

func (r *PgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	query := `
		INSERT INTO notifications (id, user_id, message, type, link, is_read, created_at, updated_at)
		VALUES (:id, :user_id, :message, :type, :link, :is_read, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, n)
	return err
}

// List applies the feed filter criteria and returns one page together with
// the total match count, computed by a window function in the same query.
func (r *PgNotificationRepository) List(ctx context.Context, userID uuid.UUID, filters feed.Filters, limit, offset int) ([]domain.Notification, int, error) {
	var results []struct {
		domain.Notification
		TotalCount int `db:"total_count"`
	}

	query := `
		SELECT *, COUNT(*) OVER() as total_count
		FROM notifications
		WHERE user_id = $1
	`
	args := []interface{}{userID}
	argID := 2

	if filters.Search != "" {
		query += fmt.Sprintf(" AND message ILIKE $%d", argID)
		args = append(args, "%"+filters.Search+"%")
		argID++
	}

	if len(filters.Types) > 0 {
		query += fmt.Sprintf(" AND type = ANY($%d)", argID)
		args = append(args, pq.Array(filters.Types))
		argID++
	}

	switch filters.Status {
	case feed.StatusRead:
		query += " AND is_read = TRUE"
	case feed.StatusUnread:
		query += " AND is_read = FALSE"
	}

	if filters.DateRange != nil {
		query += fmt.Sprintf(" AND created_at >= $%d AND created_at <= $%d", argID, argID+1)
		args = append(args, filters.DateRange.From, filters.DateRange.To)
		argID += 2
	}

	orderBy := "created_at DESC"
	switch filters.SortBy {
	case feed.SortOldest:
		orderBy = "created_at ASC"
	case feed.SortType:
		orderBy = "type ASC, created_at DESC"
	}
	query += " ORDER BY " + orderBy

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, err
	}

	notifications := make([]domain.Notification, len(results))
	total := 0
	for i, row := range results {
		notifications[i] = row.Notification
		total = row.TotalCount
	}
	return notifications, total, nil
}

// Recent returns the newest notifications regardless of filters, used by
// the fast dropdown path where the extra filter joins are not worth it.
func (r *PgNotificationRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var notifications []domain.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *PgNotificationRepository) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *PgNotificationRepository) MarkManyAsRead(ctx context.Context, notificationIDs []uuid.UUID, userID uuid.UUID) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = NOW()
		WHERE id = ANY($1) AND user_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, pq.Array(notificationIDs), userID)
	return err
}

func (r *PgNotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND is_read = FALSE
	`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *PgNotificationRepository) Delete(ctx context.Context, notificationID, userID uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *PgNotificationRepository) DeleteMany(ctx context.Context, notificationIDs []uuid.UUID, userID uuid.UUID) error {
	if len(notificationIDs) == 0 {
		return nil
	}
	query := `DELETE FROM notifications WHERE id = ANY($1) AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, pq.Array(notificationIDs), userID)
	return err
}

func (r *PgNotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

// ListAllForUser returns every notification a user has, newest first.
// Used by the data-export worker.
func (r *PgNotificationRepository) ListAllForUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	query := `SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	var notifications []domain.Notification
	err := r.db.SelectContext(ctx, &notifications, query, userID)
	return notifications, err
}

// DeleteAllForUser removes every notification a user has. Used by the
// account-erasure worker.
func (r *PgNotificationRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
