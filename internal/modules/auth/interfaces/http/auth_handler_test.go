package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/gateway/middleware"
	"github.com/notifeed/notifeed/internal/modules/auth/application"
	"github.com/notifeed/notifeed/internal/modules/auth/domain"
	auth_http "github.com/notifeed/notifeed/internal/modules/auth/interfaces/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authServiceStub struct {
	registerFn    func(context.Context, application.RegisterRequest) (*domain.User, error)
	loginFn       func(context.Context, application.LoginRequest, application.ClientInfo) (string, error)
	getUserFn     func(context.Context, uuid.UUID) (*domain.User, error)
	googleLoginFn func(context.Context, string, application.GoogleLoginRequest, application.ClientInfo) (string, error)
}

func (s authServiceStub) Register(ctx context.Context, req application.RegisterRequest) (*domain.User, error) {
	return s.registerFn(ctx, req)
}

func (s authServiceStub) Login(ctx context.Context, req application.LoginRequest, client application.ClientInfo) (string, error) {
	return s.loginFn(ctx, req, client)
}

func (s authServiceStub) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUserFn(ctx, id)
}

func (s authServiceStub) GoogleLogin(ctx context.Context, clientID string, req application.GoogleLoginRequest, client application.ClientInfo) (string, error) {
	return s.googleLoginFn(ctx, clientID, req, client)
}

func jsonRequest(method, path string, body any) *stdhttp.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h := auth_http.NewAuthHandler(authServiceStub{
			registerFn: func(_ context.Context, req application.RegisterRequest) (*domain.User, error) {
				return &domain.User{ID: uuid.New(), Email: req.Email, Name: req.Name, Role: domain.UserRole(req.Role)}, nil
			},
		}, "client-id")

		w := httptest.NewRecorder()
		h.Register(w, jsonRequest(stdhttp.MethodPost, "/auth/register", application.RegisterRequest{
			Email: "a@b.com", Password: "password123", Name: "A", Role: "viewer",
		}))
		assert.Equal(t, stdhttp.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "a@b.com")
		assert.NotContains(t, w.Body.String(), "password_hash")
	})

	t.Run("conflict", func(t *testing.T) {
		h := auth_http.NewAuthHandler(authServiceStub{
			registerFn: func(context.Context, application.RegisterRequest) (*domain.User, error) {
				return nil, domain.ErrUserAlreadyExists
			},
		}, "client-id")

		w := httptest.NewRecorder()
		h.Register(w, jsonRequest(stdhttp.MethodPost, "/auth/register", application.RegisterRequest{}))
		assert.Equal(t, stdhttp.StatusConflict, w.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		h := auth_http.NewAuthHandler(authServiceStub{}, "client-id")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(stdhttp.MethodPost, "/auth/register", bytes.NewReader([]byte("{")))
		h.Register(w, req)
		assert.Equal(t, stdhttp.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success passes client info", func(t *testing.T) {
		var gotClient application.ClientInfo
		h := auth_http.NewAuthHandler(authServiceStub{
			loginFn: func(_ context.Context, req application.LoginRequest, client application.ClientInfo) (string, error) {
				assert.Equal(t, "a@b.com", req.Email)
				gotClient = client
				return "jwt-token", nil
			},
		}, "client-id")

		w := httptest.NewRecorder()
		req := jsonRequest(stdhttp.MethodPost, "/auth/login", application.LoginRequest{Email: "a@b.com", Password: "pw"})
		req.Header.Set("User-Agent", "feedtail/1.0")
		req.RemoteAddr = "10.1.2.3:5555"
		h.Login(w, req)

		assert.Equal(t, stdhttp.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "jwt-token")
		assert.Equal(t, "feedtail/1.0", gotClient.UserAgent)
		assert.Equal(t, "10.1.2.3", gotClient.IP)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		h := auth_http.NewAuthHandler(authServiceStub{
			loginFn: func(context.Context, application.LoginRequest, application.ClientInfo) (string, error) {
				return "", domain.ErrInvalidCredentials
			},
		}, "client-id")

		w := httptest.NewRecorder()
		h.Login(w, jsonRequest(stdhttp.MethodPost, "/auth/login", application.LoginRequest{Email: "a@b.com", Password: "x"}))
		assert.Equal(t, stdhttp.StatusUnauthorized, w.Code)
	})

	t.Run("service error", func(t *testing.T) {
		h := auth_http.NewAuthHandler(authServiceStub{
			loginFn: func(context.Context, application.LoginRequest, application.ClientInfo) (string, error) {
				return "", errors.New("db down")
			},
		}, "client-id")

		w := httptest.NewRecorder()
		h.Login(w, jsonRequest(stdhttp.MethodPost, "/auth/login", application.LoginRequest{Email: "a@b.com", Password: "x"}))
		assert.Equal(t, stdhttp.StatusInternalServerError, w.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	userID := uuid.New()

	t.Run("unauthenticated", func(t *testing.T) {
		h := auth_http.NewAuthHandler(authServiceStub{}, "client-id")
		w := httptest.NewRecorder()
		h.Me(w, httptest.NewRequest(stdhttp.MethodGet, "/me", nil))
		assert.Equal(t, stdhttp.StatusUnauthorized, w.Code)
	})

	t.Run("found", func(t *testing.T) {
		h := auth_http.NewAuthHandler(authServiceStub{
			getUserFn: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
				assert.Equal(t, userID, id)
				return &domain.User{ID: id, Email: "me@example.com", Role: domain.RoleAdmin}, nil
			},
		}, "client-id")

		req := httptest.NewRequest(stdhttp.MethodGet, "/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUserId, userID))
		w := httptest.NewRecorder()
		h.Me(w, req)

		assert.Equal(t, stdhttp.StatusOK, w.Code)
		var user domain.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
		assert.Equal(t, "me@example.com", user.Email)
	})

	t.Run("not found", func(t *testing.T) {
		h := auth_http.NewAuthHandler(authServiceStub{
			getUserFn: func(context.Context, uuid.UUID) (*domain.User, error) {
				return nil, domain.ErrUserNotFound
			},
		}, "client-id")

		req := httptest.NewRequest(stdhttp.MethodGet, "/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUserId, userID))
		w := httptest.NewRecorder()
		h.Me(w, req)
		assert.Equal(t, stdhttp.StatusNotFound, w.Code)
	})
}

func TestAuthHandler_GoogleLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := auth_http.NewAuthHandler(authServiceStub{
			googleLoginFn: func(_ context.Context, clientID string, req application.GoogleLoginRequest, _ application.ClientInfo) (string, error) {
				assert.Equal(t, "client-id", clientID)
				assert.Equal(t, "google-token", req.Token)
				return "jwt-token", nil
			},
		}, "client-id")

		w := httptest.NewRecorder()
		h.GoogleLogin(w, jsonRequest(stdhttp.MethodPost, "/auth/google", application.GoogleLoginRequest{Token: "google-token"}))
		assert.Equal(t, stdhttp.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "jwt-token")
	})

	t.Run("rejected", func(t *testing.T) {
		h := auth_http.NewAuthHandler(authServiceStub{
			googleLoginFn: func(context.Context, string, application.GoogleLoginRequest, application.ClientInfo) (string, error) {
				return "", errors.New("invalid google token")
			},
		}, "client-id")

		w := httptest.NewRecorder()
		h.GoogleLogin(w, jsonRequest(stdhttp.MethodPost, "/auth/google", application.GoogleLoginRequest{Token: "bad"}))
		assert.Equal(t, stdhttp.StatusUnauthorized, w.Code)
	})
}
