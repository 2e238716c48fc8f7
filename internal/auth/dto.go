// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/selfmode/selfmode-api/internal/user"
)

type RegisterRequest struct {
	Email     string  `json:"email"     validate:"required,email,max=255"`
	Password  string  `json:"password"  validate:"required,min=8,max=128"`
	FirstName string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string  `json:"lastName"  validate:"required,min=1,max=100"`
	BirthDate string  `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresIn   int       `json:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type AuthResponse struct {
	User  user.ProfileResponse `json:"user"`
	Token TokenResponse        `json:"token"`
}

type VerifyResponse struct {
	Valid bool                 `json:"valid"`
	User  user.ProfileResponse `json:"user"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

func toSessionResponse(s *Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
