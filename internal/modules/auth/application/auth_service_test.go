package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/auth/domain"
	"github.com/notifeed/notifeed/internal/shared/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Anonymize(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type recordedSession struct {
	userID    uuid.UUID
	tokenID   string
	userAgent string
	ip        string
}

type sessionRecorderStub struct {
	recorded []recordedSession
	err      error
}

func (s *sessionRecorderStub) Record(_ context.Context, userID uuid.UUID, tokenID, userAgent, ip string) error {
	s.recorded = append(s.recorded, recordedSession{userID, tokenID, userAgent, ip})
	return s.err
}

func TestRegister_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewAuthService(repo, nil, "secret", time.Hour)
	ctx := context.Background()

	req := RegisterRequest{
		Email:    "test@example.com",
		Password: "password123",
		Name:     "Test User",
		Role:     "manager",
	}

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()
	user, err := svc.Register(ctx, req)
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, req.Email, user.Email)
	assert.Equal(t, domain.RoleManager, user.Role)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestRegister_InvalidInput(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewAuthService(repo, nil, "secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Password: "password123", Name: "Test"})
	assert.EqualError(t, err, "email is required")

	_, err = svc.Register(ctx, RegisterRequest{Email: "test@example.com", Password: "password123"})
	assert.EqualError(t, err, "name is required")

	_, err = svc.Register(ctx, RegisterRequest{Email: "test@example.com", Password: "short", Name: "Test"})
	assert.EqualError(t, err, "password must be at least 8 characters")

	_, err = svc.Register(ctx, RegisterRequest{Email: "invalid-email", Password: "password123", Name: "Test", Role: "admin"})
	assert.EqualError(t, err, "invalid email format")

	_, err = svc.Register(ctx, RegisterRequest{Email: "test@example.com", Password: "password123", Name: "Test", Role: "superuser"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestRegister_RepoError(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewAuthService(repo, nil, "secret", time.Hour)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(domain.ErrUserAlreadyExists).Once()
	_, err := svc.Register(ctx, RegisterRequest{
		Email:    "test@example.com",
		Password: "password123",
		Name:     "Test",
		Role:     "viewer",
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestLogin_SuccessRecordsSession(t *testing.T) {
	repo := new(mockUserRepository)
	sessions := &sessionRecorderStub{}
	svc := NewAuthService(repo, sessions, "secret", time.Hour)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        "test@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	repo.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

	token, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "password123"}, ClientInfo{UserAgent: "feedtail/1.0", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := utils.ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	require.Len(t, sessions.recorded, 1)
	assert.Equal(t, user.ID, sessions.recorded[0].userID)
	assert.Equal(t, claims.ID, sessions.recorded[0].tokenID)
	assert.Equal(t, "feedtail/1.0", sessions.recorded[0].userAgent)
	assert.Equal(t, "10.0.0.1", sessions.recorded[0].ip)
}

func TestLogin_Failures(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewAuthService(repo, nil, "secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{}, ClientInfo{})
	assert.EqualError(t, err, "missing email or password")

	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrUserNotFound).Once()
	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "password123"}, ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.DefaultCost)
	user := &domain.User{ID: uuid.New(), Email: "test@example.com", PasswordHash: string(hash)}
	repo.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
	_, err = svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "wrong-password"}, ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	repo.On("GetByEmail", ctx, "db@example.com").Return(nil, errors.New("db down")).Once()
	_, err = svc.Login(ctx, LoginRequest{Email: "db@example.com", Password: "password123"}, ClientInfo{})
	assert.EqualError(t, err, "db down")
}

func TestLogin_SessionRecorderFailureDoesNotBlockLogin(t *testing.T) {
	repo := new(mockUserRepository)
	sessions := &sessionRecorderStub{err: errors.New("redis down")}
	svc := NewAuthService(repo, sessions, "secret", time.Hour)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &domain.User{ID: uuid.New(), Email: "test@example.com", PasswordHash: string(hash), Role: domain.RoleViewer}
	repo.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()

	token, err := svc.Login(ctx, LoginRequest{Email: "test@example.com", Password: "password123"}, ClientInfo{})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestGoogleLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("existing user", func(t *testing.T) {
		repo := new(mockUserRepository)
		svc := NewAuthService(repo, nil, "secret", time.Hour)
		svc.googleTokenValidator = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			assert.Equal(t, "google-token", token)
			assert.Equal(t, "client-id", audience)
			return &idtoken.Payload{Claims: map[string]interface{}{
				"email": "existing@example.com",
				"name":  "Existing",
			}}, nil
		}

		user := &domain.User{ID: uuid.New(), Email: "existing@example.com", Role: domain.RoleManager}
		repo.On("GetByEmail", ctx, "existing@example.com").Return(user, nil).Once()

		token, err := svc.GoogleLogin(ctx, "client-id", GoogleLoginRequest{Token: "google-token"}, ClientInfo{})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("provisions new user as viewer", func(t *testing.T) {
		repo := new(mockUserRepository)
		svc := NewAuthService(repo, nil, "secret", time.Hour)
		svc.googleTokenValidator = func(context.Context, string, string) (*idtoken.Payload, error) {
			return &idtoken.Payload{Claims: map[string]interface{}{
				"email":   "new@example.com",
				"name":    "New User",
				"picture": "https://example.com/p.png",
			}}, nil
		}

		repo.On("GetByEmail", ctx, "new@example.com").Return(nil, domain.ErrUserNotFound).Once()
		var created *domain.User
		repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.User)
		}).Return(nil).Once()

		token, err := svc.GoogleLogin(ctx, "client-id", GoogleLoginRequest{Token: "t"}, ClientInfo{})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		require.NotNil(t, created)
		assert.Equal(t, domain.RoleViewer, created.Role)
		require.NotNil(t, created.AvatarURL)
		assert.Equal(t, "https://example.com/p.png", *created.AvatarURL)
	})

	t.Run("invalid token", func(t *testing.T) {
		repo := new(mockUserRepository)
		svc := NewAuthService(repo, nil, "secret", time.Hour)
		svc.googleTokenValidator = func(context.Context, string, string) (*idtoken.Payload, error) {
			return nil, errors.New("bad token")
		}

		_, err := svc.GoogleLogin(ctx, "client-id", GoogleLoginRequest{Token: "t"}, ClientInfo{})
		assert.EqualError(t, err, "invalid google token")
	})

	t.Run("missing email claim", func(t *testing.T) {
		repo := new(mockUserRepository)
		svc := NewAuthService(repo, nil, "secret", time.Hour)
		svc.googleTokenValidator = func(context.Context, string, string) (*idtoken.Payload, error) {
			return &idtoken.Payload{Claims: map[string]interface{}{"name": "No Email"}}, nil
		}

		_, err := svc.GoogleLogin(ctx, "client-id", GoogleLoginRequest{Token: "t"}, ClientInfo{})
		assert.EqualError(t, err, "email not provided by google")
	})
}

func TestValidateToken_RoundTrip(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewAuthService(repo, nil, "secret", time.Hour)

	userID := uuid.New()
	token, _, err := utils.GenerateToken("secret", time.Hour, userID, "admin")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = svc.ValidateToken("garbage")
	assert.Error(t, err)
}
