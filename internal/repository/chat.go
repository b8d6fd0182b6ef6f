package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/markpoint/backend/internal/domain"
)

// CreateChat creates a chat between two users, or returns the existing one.
// Participant pairs are unique regardless of order.
func (r *PostgresRepository) CreateChat(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Chat, error) {
	existing, err := r.findChatBetween(ctx, user1ID, user2ID)
	if err != nil {
		return nil, err
	}
	if existing != uuid.Nil {
		return r.GetChatByID(ctx, existing)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var chatID uuid.UUID
	err = tx.QueryRow(ctx, `INSERT INTO chats DEFAULT VALUES RETURNING id`).Scan(&chatID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2), ($1, $3)`, chatID, user1ID, user2ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetChatByID(ctx, chatID)
}

func (r *PostgresRepository) findChatBetween(ctx context.Context, user1ID, user2ID uuid.UUID) (uuid.UUID, error) {
	query := `
		SELECT p1.chat_id
		FROM chat_participants p1
		JOIN chat_participants p2 ON p2.chat_id = p1.chat_id
		WHERE p1.user_id = $1 AND p2.user_id = $2
	`
	var chatID uuid.UUID
	err := r.db.QueryRow(ctx, query, user1ID, user2ID).Scan(&chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return chatID, nil
}

// GetChatByID retrieves a chat with its participants
func (r *PostgresRepository) GetChatByID(ctx context.Context, chatID uuid.UUID) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.db.QueryRow(ctx, `SELECT id, created_at, updated_at FROM chats WHERE id = $1`, chatID).
		Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChatNotFound
		}
		return nil, err
	}

	users, err := r.getChatUsers(ctx, chatID)
	if err != nil {
		return nil, err
	}
	chat.Users = users

	return &chat, nil
}

func (r *PostgresRepository) getChatUsers(ctx context.Context, chatID uuid.UUID) ([]*domain.UserResponse, error) {
	query := `
		SELECT u.id, u.name, u.avatar_url, u.created_at
		FROM chat_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.chat_id = $1
	`
	rows, err := r.db.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.UserResponse
	for rows.Next() {
		var u domain.UserResponse
		var avatar *string
		if err := rows.Scan(&u.ID, &u.Name, &avatar, &u.CreatedAt); err != nil {
			return nil, err
		}
		if avatar != nil {
			u.AvatarURL = *avatar
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// GetChatsByUserID returns a user's chats with participants and last message,
// most recently active first
func (r *PostgresRepository) GetChatsByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Chat, error) {
	query := `
		SELECT c.id, c.created_at, c.updated_at
		FROM chats c
		JOIN chat_participants p ON p.chat_id = c.id
		WHERE p.user_id = $1
		ORDER BY c.updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*domain.Chat
	for rows.Next() {
		var chat domain.Chat
		if err := rows.Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, &chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, chat := range chats {
		users, err := r.getChatUsers(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		chat.Users = users

		last, err := r.getLastMessage(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		chat.LastMessage = last
	}

	return chats, nil
}

func (r *PostgresRepository) getLastMessage(ctx context.Context, chatID uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, content, read_at, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var m domain.Message
	err := r.db.QueryRow(ctx, query, chatID).Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.ReadAt, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// CreateMessage stores a message and touches the chat's activity timestamp
func (r *PostgresRepository) CreateMessage(ctx context.Context, chatID, senderID uuid.UUID, content string) (*domain.Message, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO messages (chat_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, chat_id, sender_id, content, read_at, created_at
	`
	var m domain.Message
	err = tx.QueryRow(ctx, query, chatID, senderID, content).Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.ReadAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE chats SET updated_at = NOW() WHERE id = $1`, chatID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMessages returns a chat's messages, newest first
func (r *PostgresRepository) GetMessages(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, content, read_at, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, chatID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
