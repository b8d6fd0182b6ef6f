package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/markpoint/backend/internal/domain"
)

// CreateComment persists a comment on a mark
func (r *PostgresRepository) CreateComment(ctx context.Context, markID, userID uuid.UUID, text string) (*domain.Comment, error) {
	query := `
		INSERT INTO comments (mark_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, mark_id, user_id, text, created_at
	`
	var c domain.Comment
	err := r.db.QueryRow(ctx, query, markID, userID, text).Scan(&c.ID, &c.MarkID, &c.UserID, &c.Text, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCommentByID retrieves a single comment
func (r *PostgresRepository) GetCommentByID(ctx context.Context, commentID uuid.UUID) (*domain.Comment, error) {
	query := `SELECT id, mark_id, user_id, text, created_at FROM comments WHERE id = $1`
	var c domain.Comment
	err := r.db.QueryRow(ctx, query, commentID).Scan(&c.ID, &c.MarkID, &c.UserID, &c.Text, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetComments returns a mark's comments with author info, newest first
func (r *PostgresRepository) GetComments(ctx context.Context, markID uuid.UUID, limit, offset int) ([]*domain.Comment, error) {
	query := `
		SELECT c.id, c.mark_id, c.user_id, c.text, c.created_at,
		       u.id, u.name, u.avatar_url, u.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.mark_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, markID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		var u domain.UserResponse
		var avatar *string
		if err := rows.Scan(&c.ID, &c.MarkID, &c.UserID, &c.Text, &c.CreatedAt, &u.ID, &u.Name, &avatar, &u.CreatedAt); err != nil {
			return nil, err
		}
		if avatar != nil {
			u.AvatarURL = *avatar
		}
		c.User = &u
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment
func (r *PostgresRepository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	return err
}

// SetReaction upserts a user's reaction to a mark; last kind wins
func (r *PostgresRepository) SetReaction(ctx context.Context, markID, userID uuid.UUID, kind string) (*domain.Reaction, error) {
	query := `
		INSERT INTO reactions (mark_id, user_id, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (mark_id, user_id) DO UPDATE SET kind = EXCLUDED.kind, created_at = NOW()
		RETURNING mark_id, user_id, kind, created_at
	`
	var re domain.Reaction
	err := r.db.QueryRow(ctx, query, markID, userID, kind).Scan(&re.MarkID, &re.UserID, &re.Kind, &re.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &re, nil
}

// RemoveReaction deletes a user's reaction; no-op if absent
func (r *PostgresRepository) RemoveReaction(ctx context.Context, markID, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reactions WHERE mark_id = $1 AND user_id = $2`, markID, userID)
	return err
}

// CountReactions returns reaction counts per kind for a mark
func (r *PostgresRepository) CountReactions(ctx context.Context, markID uuid.UUID) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT kind, COUNT(*) FROM reactions WHERE mark_id = $1 GROUP BY kind`, markID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		counts[kind] = count
	}
	return counts, rows.Err()
}
