package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/markpoint/backend/internal/auth"
	"github.com/markpoint/backend/pkg/validator"
)

// AuthService handles registration, login and token refresh. This core does
// not decide authorization; handlers get an authenticated user and the mark
// path enforces ownership itself.
type AuthService struct {
	users      UserRepository
	jwtManager *auth.JWTManager
	googleAuth *auth.GoogleAuthVerifier
}

func NewAuthService(users UserRepository, jwtManager *auth.JWTManager, googleAuth *auth.GoogleAuthVerifier) *AuthService {
	return &AuthService{
		users:      users,
		jwtManager: jwtManager,
		googleAuth: googleAuth,
	}
}

// AuthResult bundles a user with a fresh token pair.
type AuthResult struct {
	User   *UserResponse   `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = validator.SanitizeEmail(email)

	var errs validator.ValidationErrors
	if !validator.ValidateEmail(email) {
		errs.Add("email", "invalid email address")
	}
	if !validator.ValidateName(name) {
		errs.Add("name", "must be between 2 and 100 characters")
	}
	errs = append(errs, validator.ValidatePassword(password)...)
	if errs.HasErrors() {
		return nil, errs
	}

	exists, err := s.users.UserExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, CreateUserParams{
		Email:        &email,
		PasswordHash: &hash,
		Name:         validator.SanitizeString(name, 100),
	})
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = validator.SanitizeEmail(email)

	user, hash, err := s.users.GetUserWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if hash == "" || auth.VerifyPassword(password, hash) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// GoogleLogin verifies a Google ID token and signs the user in, creating the
// account on first sight.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.googleAuth == nil || !s.googleAuth.IsConfigured() {
		return nil, ErrInvalidCredentials
	}

	googleUser, err := s.googleAuth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByGoogleID(ctx, googleUser.GoogleID)
	if errors.Is(err, ErrUserNotFound) {
		user, err = s.users.CreateUser(ctx, CreateUserParams{
			Email:         &googleUser.Email,
			Name:          googleUser.Name,
			AvatarURL:     &googleUser.Picture,
			GoogleID:      &googleUser.GoogleID,
			EmailVerified: googleUser.EmailVerified,
		})
	}
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrTokenRevoked
	}

	hash := auth.HashToken(refreshToken)
	if _, err := s.users.GetRefreshTokenByHash(ctx, hash); err != nil {
		return nil, ErrTokenRevoked
	}
	if err := s.users.RevokeRefreshTokenByHash(ctx, hash); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.users.RevokeRefreshTokenByHash(ctx, auth.HashToken(refreshToken))
}

func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.users.RevokeUserRefreshTokens(ctx, userID)
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *User) (*AuthResult, error) {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	tokens, err := s.jwtManager.GenerateTokenPair(user.ID, email)
	if err != nil {
		return nil, err
	}

	_, err = s.users.CreateRefreshToken(ctx, CreateRefreshTokenParams{
		UserID:    user.ID,
		TokenHash: auth.HashToken(tokens.RefreshToken),
		ExpiresAt: tokens.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user.ToResponse(), Tokens: tokens}, nil
}
