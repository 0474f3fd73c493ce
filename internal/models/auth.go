package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims are the JWT claims carried by admin panel tokens.
type AdminClaims struct {
	AdminID int64 `json:"adminId"`
	jwt.RegisteredClaims
}

// LoginRequest carries admin panel credentials.
type LoginRequest struct {
	AdminID  int64  `json:"adminId" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse returns the issued token pair.
type LoginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresIn    int64     `json:"expiresIn"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// RefreshToken is a stored opaque token exchangeable for a new pair.
type RefreshToken struct {
	ID        string
	AdminID   int64
	Token     string
	ExpiresAt time.Time
	Revoked   bool
}
