package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the domain layer
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         *string   `json:"email,omitempty"`
	Name          string    `json:"name"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	GoogleID      *string   `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserResponse is the public representation of a user
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts a User to a UserResponse
func (u *User) ToResponse() *UserResponse {
	response := &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}

	if u.Email != nil {
		response.Email = *u.Email
	}
	if u.AvatarURL != nil {
		response.AvatarURL = *u.AvatarURL
	}

	return response
}

// RefreshToken represents a stored refresh token
type RefreshToken struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Revoked   bool       `json:"revoked"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type CreateUserParams struct {
	Email         *string
	PasswordHash  *string
	Name          string
	AvatarURL     *string
	GoogleID      *string
	EmailVerified bool
}

type CreateRefreshTokenParams struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
}

// UserRepository is the storage contract for users and refresh tokens.
type UserRepository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	GetUserWithPassword(ctx context.Context, email string) (*User, string, error)
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateRefreshToken(ctx context.Context, params CreateRefreshTokenParams) (*RefreshToken, error)
	GetRefreshTokenByHash(ctx context.Context, hash string) (*RefreshToken, error)
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
	RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error
}
