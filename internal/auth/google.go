package auth

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

var (
	ErrInvalidGoogleToken = errors.New("invalid Google ID token")
	ErrGoogleEmailMissing = errors.New("email not found in Google token")
)

// GoogleUser represents the user info from Google
type GoogleUser struct {
	GoogleID      string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleAuthVerifier handles Google ID token verification
type GoogleAuthVerifier struct {
	clientIDs []string
}

// NewGoogleAuthVerifier creates a new Google auth verifier
func NewGoogleAuthVerifier(clientIDs []string) *GoogleAuthVerifier {
	return &GoogleAuthVerifier{clientIDs: clientIDs}
}

// IsConfigured returns true if Google sign-in is configured
func (v *GoogleAuthVerifier) IsConfigured() bool {
	return len(v.clientIDs) > 0 && v.clientIDs[0] != ""
}

// VerifyIDToken verifies a Google ID token and returns the user info
func (v *GoogleAuthVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUser, error) {
	var payload *idtoken.Payload
	for _, clientID := range v.clientIDs {
		p, err := idtoken.Validate(ctx, idToken, clientID)
		if err == nil {
			payload = p
			break
		}
	}
	if payload == nil {
		return nil, ErrInvalidGoogleToken
	}

	user := &GoogleUser{}

	sub, ok := payload.Claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidGoogleToken
	}
	user.GoogleID = sub

	email, ok := payload.Claims["email"].(string)
	if !ok {
		return nil, ErrGoogleEmailMissing
	}
	user.Email = email

	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		user.EmailVerified = verified
	}
	if name, ok := payload.Claims["name"].(string); ok {
		user.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		user.Picture = picture
	}

	return user, nil
}
