package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/fcm"
)

type NotificationService struct {
	repo      NotificationRepository
	fcmClient *fcm.Client
	logger    *zap.Logger
}

func NewNotificationService(repo NotificationRepository, fcmClient *fcm.Client, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		fcmClient: fcmClient,
		logger:    logger,
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.GetNotifications(ctx, userID, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.repo.MarkNotificationRead(ctx, notificationID)
}

// SendNotification stores the notification and pushes to the user's devices.
// A failed push never fails the operation that triggered it.
func (s *NotificationService) SendNotification(ctx context.Context, userID uuid.UUID, typeStr, title, body string, data map[string]interface{}) error {
	if err := s.repo.CreateNotification(ctx, userID, typeStr, title, body, data); err != nil {
		return err
	}

	if s.fcmClient == nil {
		return nil
	}

	strData := make(map[string]string, len(data)+1)
	for k, v := range data {
		strData[k] = fmt.Sprintf("%v", v)
	}
	strData["type"] = typeStr

	tokens, err := s.repo.GetFCMTokens(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to get fcm tokens", zap.String("user_id", userID.String()), zap.Error(err))
		return nil
	}

	for _, token := range tokens {
		if token == "" {
			continue
		}
		go func(t string) {
			_ = s.fcmClient.Send(context.Background(), t, title, body, strData)
		}(token)
	}
	return nil
}

func (s *NotificationService) UpdateFCMToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.repo.UpdateFCMToken(ctx, userID, token)
}
