package gdpr_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifeed/notifeed/internal/modules/gdpr"
)

type noopStore struct{}

func (noopStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	return nil
}

func (noopStore) PresignGet(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "", nil
}

func (noopStore) Delete(ctx context.Context, key string) error { return nil }

type noopEnqueuer struct{}

func (noopEnqueuer) EnqueueExport(ctx context.Context, exportID, userID uuid.UUID) error { return nil }
func (noopEnqueuer) EnqueueErasure(ctx context.Context, userID uuid.UUID) error          { return nil }

func TestNewModule(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	module := gdpr.NewModule(sqlx.NewDb(mockDB, "sqlmock"), noopStore{}, noopEnqueuer{}, 0)
	assert.NotNil(t, module.Service())
	assert.NotNil(t, module.ExportRepository())
	assert.NotNil(t, module.HTTPHandler())
}
