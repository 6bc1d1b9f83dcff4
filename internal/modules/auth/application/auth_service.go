package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/modules/auth/domain"
	"github.com/notifeed/notifeed/internal/shared/logger"
	"github.com/notifeed/notifeed/internal/shared/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// ClientInfo carries request metadata recorded alongside each session.
type ClientInfo struct {
	UserAgent string
	IP        string
}

// SessionRecorder is implemented by the security module. A nil recorder
// disables session tracking.
type SessionRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, tokenID, userAgent, ip string) error
}

type AuthService struct {
	repo                 domain.UserRepository
	sessions             SessionRecorder
	jwtSecret            string
	jwtExpiry            time.Duration
	googleTokenValidator func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
	log                  *logrus.Entry
}

func NewAuthService(repo domain.UserRepository, sessions SessionRecorder, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		repo:                 repo,
		sessions:             sessions,
		jwtSecret:            jwtSecret,
		jwtExpiry:            jwtExpiry,
		googleTokenValidator: idtoken.Validate,
		log:                  logger.New("auth-service"),
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if req.Email == "" {
		return nil, errors.New("email is required")
	}
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if !utils.IsValidEmail(req.Email) {
		return nil, errors.New("invalid email format")
	}

	role := domain.UserRole(req.Role)
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hashedPass),
		Name:         req.Name,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user, issues a JWT and records the session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client ClientInfo) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", errors.New("missing email or password")
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Do not reveal whether the account exists.
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	return s.issueToken(ctx, user, client)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*utils.CustomClaims, error) {
	return utils.ValidateToken(tokenStr, s.jwtSecret)
}

// GoogleLogin verifies a Google ID token, provisioning the account on
// first sign-in, and issues an application JWT.
func (s *AuthService) GoogleLogin(ctx context.Context, googleClientID string, req GoogleLoginRequest, client ClientInfo) (string, error) {
	validate := s.googleTokenValidator
	if validate == nil {
		validate = idtoken.Validate
	}

	payload, err := validate(ctx, req.Token, googleClientID)
	if err != nil {
		s.log.WithError(err).Warn("google token validation failed")
		return "", errors.New("invalid google token")
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	if email == "" {
		return "", errors.New("email not provided by google")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", err
		}
		user = &domain.User{
			ID:        uuid.New(),
			Email:     email,
			Name:      name,
			Role:      domain.RoleViewer,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if picture != "" {
			user.AvatarURL = &picture
		}
		if createErr := s.repo.Create(ctx, user); createErr != nil {
			return "", createErr
		}
		s.log.WithField("email", email).Info("provisioned user from google sign-in")
	}

	return s.issueToken(ctx, user, client)
}

func (s *AuthService) issueToken(ctx context.Context, user *domain.User, client ClientInfo) (string, error) {
	token, tokenID, err := utils.GenerateToken(s.jwtSecret, s.jwtExpiry, user.ID, string(user.Role))
	if err != nil {
		return "", err
	}
	if s.sessions != nil {
		if err := s.sessions.Record(ctx, user.ID, tokenID, client.UserAgent, client.IP); err != nil {
			s.log.WithError(err).Warn("failed to record session")
		}
	}
	return token, nil
}
