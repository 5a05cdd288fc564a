// Package service contains the application's business logic.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ripple/internal/config"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns registration, login, account deletion and token issuance.
type AuthService struct {
	userRepo repository.UserRepository
	config   *config.Config
}

type RegisterInput struct {
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

// TokenOutput is the login response payload.
type TokenOutput struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		config:   cfg,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}
	if len(in.Username) > 64 {
		return nil, models.NewValidationError("Username too long (max 64 characters)")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.UsersRegisteredTotal.Inc()
	return user, nil
}

// Login verifies credentials and returns a bearer token. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenOutput, error) {
	user, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewForbiddenError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewForbiddenError("Invalid credentials")
	}

	token, err := s.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &TokenOutput{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

// DeleteAccount removes the user together with their posts and votes.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.userRepo.Delete(ctx, userID)
}

// GenerateToken creates a JWT token for the given user ID and username
func (s *AuthService) GenerateToken(userID uint, username string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      s.config.JWTIssuer,
		"aud":      s.config.JWTAudience,
		"exp":      now.Add(time.Duration(s.config.JWTExpiryMins) * time.Minute).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
