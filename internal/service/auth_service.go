package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/review-bot-api/internal/models"
	appErrors "github.com/noah-isme/review-bot-api/pkg/errors"
)

// AuthConfig defines the admin panel authentication parameters. There
// is no user table: administrators are the configured IDs and they
// share the panel password hash.
type AuthConfig struct {
	AdminIDs           []int64
	PanelPasswordHash  string
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// AuthService issues and validates admin panel tokens. Refresh tokens
// are held in memory; a restart simply forces a fresh login.
type AuthService struct {
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	admins    map[int64]struct{}
	now       func() time.Time

	mu      sync.Mutex
	refresh map[string]models.RefreshToken
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	admins := make(map[int64]struct{}, len(config.AdminIDs))
	for _, id := range config.AdminIDs {
		admins[id] = struct{}{}
	}
	return &AuthService{
		validator: validate,
		logger:    logger,
		config:    config,
		admins:    admins,
		now:       time.Now,
		refresh:   make(map[string]models.RefreshToken),
	}
}

// Login authenticates an administrator and returns an issued token pair.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	if _, ok := s.admins[req.AdminID]; !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid admin id or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.config.PanelPasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid admin id or password")
	}

	accessToken, err := s.generateAccessToken(req.AdminID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	refreshToken := s.issueRefreshToken(req.AdminID)

	s.logger.Info("admin logged in", zap.Int64("admin_id", req.AdminID))

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		ExpiresIn:    int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:     s.now().UTC(),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The used token is
// always invalidated, even when the exchange fails later on.
func (s *AuthService) Refresh(ctx context.Context, token string) (*models.LoginResponse, error) {
	s.mu.Lock()
	stored, ok := s.refresh[token]
	delete(s.refresh, token)
	s.mu.Unlock()

	if !ok || stored.Revoked || s.now().UTC().After(stored.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token is expired or revoked")
	}
	if _, admin := s.admins[stored.AdminID]; !admin {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "administrator no longer configured")
	}

	accessToken, err := s.generateAccessToken(stored.AdminID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	refreshToken := s.issueRefreshToken(stored.AdminID)

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		ExpiresIn:    int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:     s.now().UTC(),
	}, nil
}

// Logout revokes the provided refresh token. Unknown tokens are a
// no-op: the caller holds nothing usable either way.
func (s *AuthService) Logout(ctx context.Context, token string) {
	s.mu.Lock()
	delete(s.refresh, token)
	s.mu.Unlock()
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if _, admin := s.admins[claims.AdminID]; !admin {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "administrator no longer configured")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(adminID int64) (string, error) {
	now := s.now().UTC()
	claims := models.AdminClaims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", adminID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenExpiry)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func (s *AuthService) issueRefreshToken(adminID int64) models.RefreshToken {
	refreshToken := models.RefreshToken{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().UTC().Add(s.config.RefreshTokenExpiry),
	}
	s.mu.Lock()
	s.refresh[refreshToken.Token] = refreshToken
	s.mu.Unlock()
	return refreshToken
}
