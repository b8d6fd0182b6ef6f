package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/markpoint/backend/pkg/validator"
)

type CommentService struct {
	comments     CommentRepository
	marks        MarkRepository
	notifService *NotificationService
}

func NewCommentService(comments CommentRepository, marks MarkRepository, notifService *NotificationService) *CommentService {
	return &CommentService{
		comments:     comments,
		marks:        marks,
		notifService: notifService,
	}
}

func (s *CommentService) AddComment(ctx context.Context, userID, markID uuid.UUID, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		var errs validator.ValidationErrors
		errs.Add("text", "must not be empty")
		return nil, errs
	}

	mark, err := s.marks.GetMarkByID(ctx, markID)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.CreateComment(ctx, markID, userID, validator.SanitizeString(text, 2000))
	if err != nil {
		return nil, err
	}

	if s.notifService != nil && mark.UserID != userID {
		go func() {
			_ = s.notifService.SendNotification(
				context.Background(),
				mark.UserID,
				"comment",
				"New comment on "+mark.Name,
				text,
				map[string]interface{}{"mark_id": markID.String()},
			)
		}()
	}

	return comment, nil
}

func (s *CommentService) GetComments(ctx context.Context, markID uuid.UUID, limit, offset int) ([]*Comment, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.comments.GetComments(ctx, markID, limit, offset)
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotCommentOwner
	}
	return s.comments.DeleteComment(ctx, commentID)
}

func (s *CommentService) React(ctx context.Context, userID, markID uuid.UUID, kind string) (*Reaction, error) {
	if kind == "" {
		var errs validator.ValidationErrors
		errs.Add("kind", "must not be empty")
		return nil, errs
	}

	exists, err := s.marks.MarkExists(ctx, markID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrMarkNotFound
	}

	return s.comments.SetReaction(ctx, markID, userID, kind)
}

func (s *CommentService) Unreact(ctx context.Context, userID, markID uuid.UUID) error {
	return s.comments.RemoveReaction(ctx, markID, userID)
}

func (s *CommentService) ReactionCounts(ctx context.Context, markID uuid.UUID) (map[string]int, error) {
	return s.comments.CountReactions(ctx, markID)
}
