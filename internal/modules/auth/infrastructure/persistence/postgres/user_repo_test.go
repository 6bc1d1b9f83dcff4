package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/notifeed/notifeed/internal/modules/auth/domain"
	"github.com/notifeed/notifeed/internal/modules/auth/infrastructure/persistence/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(sqlDB, "sqlmock"), mock, func() { _ = sqlDB.Close() }
}

func userRows(u *domain.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role"}).
		AddRow(u.ID, u.Email, u.PasswordHash, u.Name, u.Role)
}

func TestPgUserRepository_CreateAndGets(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	u := &domain.User{ID: uuid.New(), Email: "a@a.com", PasswordHash: "hash", Name: "A", Role: domain.RoleAdmin}
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})
	err := repo.Create(ctx, u)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	mock.ExpectQuery(`SELECT \* FROM users WHERE email = \$1`).WithArgs(u.Email).WillReturnRows(userRows(u))
	got, err := repo.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	mock.ExpectQuery(`SELECT \* FROM users WHERE email = \$1`).WithArgs("missing@x.com").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).WithArgs(u.ID).WillReturnRows(userRows(u))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	missingID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).WithArgs(missingID).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(ctx, missingID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_FinderAndAnonymize(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	u := &domain.User{ID: uuid.New(), Email: "a@a.com", Role: domain.RoleViewer}
	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).WithArgs(u.ID).WillReturnRows(userRows(u))
	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(u.ID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	exists, err := repo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectExec(`UPDATE users`).WithArgs(u.ID).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Anonymize(ctx, u.ID))

	mock.ExpectExec(`UPDATE users`).WithArgs(u.ID).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Anonymize(ctx, u.ID), domain.ErrUserNotFound)

	mock.ExpectExec(`UPDATE users`).WithArgs(u.ID).WillReturnError(errors.New("exec fail"))
	assert.EqualError(t, repo.Anonymize(ctx, u.ID), "exec fail")

	require.NoError(t, mock.ExpectationsWereMet())
}
