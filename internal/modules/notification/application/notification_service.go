package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/notification/domain"
	"github.com/notifeed/notifeed/internal/modules/notification/infrastructure/websocket"
	"github.com/notifeed/notifeed/internal/shared/logger"
	"github.com/notifeed/notifeed/pkg/feed"
	"github.com/sirupsen/logrus"
)

const recentCacheTTL = 30 * time.Second

// Cache is the small slice of redis the service needs. Get returns
// ("", nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// DigestEnqueuer schedules the background email digest job.
type DigestEnqueuer interface {
	EnqueueDigest(ctx context.Context, userID, templateID uuid.UUID) error
}

type NotificationService struct {
	repo    domain.NotificationRepository
	hub     *websocket.Hub
	cache   Cache
	digests DigestEnqueuer
	log     *logrus.Entry
}

func NewNotificationService(repo domain.NotificationRepository, hub *websocket.Hub, cache Cache, digests DigestEnqueuer) *NotificationService {
	return &NotificationService{
		repo:    repo,
		hub:     hub,
		cache:   cache,
		digests: digests,
		log:     logger.New("notification-service"),
	}
}

func recentCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:recent:%s", userID)
}

// Create persists the notification, pushes it over the websocket to the
// owning user and invalidates the recent cache.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, message, notificationType string, link *string) (*domain.Notification, error) {
	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Message:   message,
		Type:      notificationType,
		Link:      link,
		Read:      false,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.invalidateRecent(ctx, userID)

	if msgBytes, err := json.Marshal(notification); err == nil {
		s.hub.SendToUser(userID, msgBytes)
	}
	return notification, nil
}

// SendDigest schedules an email digest of the user's unread
// notifications, rendered with the given template.
func (s *NotificationService) SendDigest(ctx context.Context, userID, templateID uuid.UUID) error {
	if s.digests == nil {
		return fmt.Errorf("digest scheduling is not configured")
	}
	if err := s.digests.EnqueueDigest(ctx, userID, templateID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "template_id": templateID}).Info("Digest scheduled")
	return nil
}

func (s *NotificationService) GetHub() *websocket.Hub {
	return s.hub
}

// List returns one filtered page plus the total match count.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filters feed.Filters, limit, offset int) ([]domain.Notification, int, error) {
	return s.repo.List(ctx, userID, filters, limit, offset)
}

// Recent serves the fast dropdown window, cached per user for a short
// TTL. Cache failures fall through to the repository.
func (s *NotificationService) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	key := recentCacheKey(userID)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var notifications []domain.Notification
		if err := json.Unmarshal([]byte(cached), &notifications); err == nil && len(notifications) >= limit {
			return notifications[:limit], nil
		}
	}

	notifications, err := s.repo.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(notifications); err == nil {
		if err := s.cache.Set(ctx, key, string(data), recentCacheTTL); err != nil {
			s.log.WithError(err).Warn("failed to cache recent notifications")
		}
	}
	return notifications, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		return err
	}
	s.invalidateRecent(ctx, userID)
	return nil
}

func (s *NotificationService) MarkManyAsRead(ctx context.Context, notificationIDs []uuid.UUID, userID uuid.UUID) error {
	if err := s.repo.MarkManyAsRead(ctx, notificationIDs, userID); err != nil {
		return err
	}
	s.invalidateRecent(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateRecent(ctx, userID)
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, notificationID, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, notificationID, userID); err != nil {
		return err
	}
	s.invalidateRecent(ctx, userID)
	return nil
}

func (s *NotificationService) DeleteMany(ctx context.Context, notificationIDs []uuid.UUID, userID uuid.UUID) error {
	if err := s.repo.DeleteMany(ctx, notificationIDs, userID); err != nil {
		return err
	}
	s.invalidateRecent(ctx, userID)
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) invalidateRecent(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Del(ctx, recentCacheKey(userID)); err != nil {
		s.log.WithError(err).Warn("failed to invalidate recent cache")
	}
}
