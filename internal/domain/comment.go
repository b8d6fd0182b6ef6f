package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Comment is a user's remark on a mark.
type Comment struct {
	ID        uuid.UUID     `json:"id"`
	MarkID    uuid.UUID     `json:"mark_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"created_at"`
	User      *UserResponse `json:"user,omitempty"`
}

// Reaction is a single-kind reaction of a user to a mark; one per
// (mark, user) pair, last kind wins.
type Reaction struct {
	MarkID    uuid.UUID `json:"mark_id"`
	UserID    uuid.UUID `json:"user_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentRepository interface {
	CreateComment(ctx context.Context, markID, userID uuid.UUID, text string) (*Comment, error)
	GetComments(ctx context.Context, markID uuid.UUID, limit, offset int) ([]*Comment, error)
	DeleteComment(ctx context.Context, commentID uuid.UUID) error
	GetCommentByID(ctx context.Context, commentID uuid.UUID) (*Comment, error)
	SetReaction(ctx context.Context, markID, userID uuid.UUID, kind string) (*Reaction, error)
	RemoveReaction(ctx context.Context, markID, userID uuid.UUID) error
	CountReactions(ctx context.Context, markID uuid.UUID) (map[string]int, error)
}
