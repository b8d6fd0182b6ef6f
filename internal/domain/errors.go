package domain

import "errors"

var (
	// Mark mutation path.
	ErrMarkNotFound      = errors.New("mark not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrNotMarkOwner      = errors.New("not the mark owner")
	ErrEditWindowExpired = errors.New("mark edit window has expired")

	// Auth.
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("refresh token revoked or expired")

	// Chat.
	ErrChatNotFound       = errors.New("chat not found")
	ErrNotChatParticipant = errors.New("not a chat participant")

	// Comments and reactions.
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the comment owner")

	// Subscriptions.
	ErrPlanNotFound         = errors.New("plan not found")
	ErrAlreadySubscribed    = errors.New("already subscribed to an active plan")
	ErrSubscriptionNotFound = errors.New("no active subscription")
)
