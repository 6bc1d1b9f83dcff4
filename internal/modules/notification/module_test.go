package notification_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/notifeed/notifeed/internal/modules/notification"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModule(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := sqlx.NewDb(sqlDB, "sqlmock")
	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	m := notification.NewModule(db, redisClient, nil)
	defer m.Shutdown()
	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPHandler())
	assert.NotNil(t, m.Service())
	assert.NotNil(t, m.Hub())
	assert.NotNil(t, m.Repository())
}
