package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/utils"
)

// LoginInput is the admin login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Admin     models.AdminUser `json:"admin"`
}

// AuthService authenticates back-office operators.
type AuthService struct {
	admins    repository.AdminRepository
	jwtSecret string
	ttl       time.Duration
	logger    *zap.Logger
}

func NewAuthService(admins repository.AdminRepository, jwtSecret string, ttl time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{admins: admins, jwtSecret: jwtSecret, ttl: ttl, logger: logger}
}

func invalidCredentials() *ServiceError {
	return &ServiceError{Kind: KindUnauthorized, Message: "Invalid email or password"}
}

// Login checks the credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	admin, err := s.admins.FindByEmail(ctx, input.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, invalidCredentials()
		}
		return nil, storageError("Failed to fetch admin", err)
	}
	if !admin.IsActive || !utils.CheckPassword(admin.PasswordHash, input.Password) {
		s.logger.Warn("admin login rejected", zap.String("email", input.Email))
		return nil, invalidCredentials()
	}

	token, err := utils.GenerateToken(s.jwtSecret, admin.ID, admin.Email, s.ttl)
	if err != nil {
		return nil, &ServiceError{Kind: KindStorage, Message: "Failed to issue token", Err: err}
	}

	s.logger.Info("admin logged in", zap.String("admin_id", admin.ID.String()))
	return &LoginResult{Token: token, ExpiresAt: time.Now().Add(s.ttl), Admin: *admin}, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist.
// An empty password skips seeding.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.admins.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !repository.IsNotFound(err) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooShort) {
			return validationError("ADMIN_PASSWORD must be at least %d characters", utils.MinPasswordLength)
		}
		return err
	}
	admin := &models.AdminUser{
		Email:        strings.ToLower(email),
		DisplayName:  "Administrator",
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", admin.Email))
	return nil
}
