package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/markpoint/backend/internal/domain"
)

// CreateNotification stores a notification for later retrieval
func (r *PostgresRepository) CreateNotification(ctx context.Context, userID uuid.UUID, typeStr, title, body string, data map[string]interface{}) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (user_id, type, title, body, data)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.Exec(ctx, query, userID, typeStr, title, body, dataJSON)
	return err
}

// GetNotifications returns a user's notifications, newest first
func (r *PostgresRepository) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, type, title, body, data, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var dataJSON []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &dataJSON, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
				return nil, err
			}
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags a notification as read
func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, notificationID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, notificationID)
	return err
}

// UpdateFCMToken stores the device push token for a user
func (r *PostgresRepository) UpdateFCMToken(ctx context.Context, userID uuid.UUID, fcmToken string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET fcm_token = $1, updated_at = NOW() WHERE id = $2`, fcmToken, userID)
	return err
}

// GetFCMTokens returns push tokens for a user
func (r *PostgresRepository) GetFCMTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT fcm_token FROM users WHERE id = $1 AND fcm_token IS NOT NULL AND fcm_token != ''`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
