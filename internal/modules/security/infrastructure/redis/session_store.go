package redis

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/security/domain"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "sessions:"
	revokedKeyPrefix = "revoked:"
)

// RedisSessionStore keeps one hash per user (field = token id) plus a
// marker key per revoked token. Both expire with the session TTL so
// stale entries clean themselves up.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(userID uuid.UUID) string {
	return sessionKeyPrefix + userID.String()
}

func (s *RedisSessionStore) Record(ctx context.Context, userID uuid.UUID, tokenID, userAgent, ip string) error {
	now := time.Now()
	session := domain.Session{
		TokenID:   tokenID,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		CreatedAt: now,
		LastSeen:  now,
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	key := sessionKey(userID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, tokenID, data)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSessionStore) List(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	entries, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, 0, len(entries))
	for _, raw := range entries {
		var session domain.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, userID uuid.UUID, tokenID string) error {
	removed, err := s.client.HDel(ctx, sessionKey(userID), tokenID).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrSessionNotFound
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", s.ttl).Err()
}

func (s *RedisSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Touch bumps the LastSeen timestamp. Unknown sessions are ignored; the
// token may predate the registry.
func (s *RedisSessionStore) Touch(ctx context.Context, userID uuid.UUID, tokenID string) error {
	key := sessionKey(userID)
	raw, err := s.client.HGet(ctx, key, tokenID).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return err
	}
	session.LastSeen = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, key, tokenID, data).Err()
}
