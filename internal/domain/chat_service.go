package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type ChatService struct {
	repo         ChatRepository
	notifService *NotificationService
}

func NewChatService(repo ChatRepository, notifService *NotificationService) *ChatService {
	return &ChatService{
		repo:         repo,
		notifService: notifService,
	}
}

func (s *ChatService) CreateChat(ctx context.Context, user1ID, user2ID uuid.UUID) (*Chat, error) {
	if user1ID == user2ID {
		return nil, errors.New("cannot chat with self")
	}
	return s.repo.CreateChat(ctx, user1ID, user2ID)
}

func (s *ChatService) GetUserChats(ctx context.Context, userID uuid.UUID) ([]*Chat, error) {
	return s.repo.GetChatsByUserID(ctx, userID)
}

func (s *ChatService) GetChat(ctx context.Context, chatID uuid.UUID) (*Chat, error) {
	return s.repo.GetChatByID(ctx, chatID)
}

func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID uuid.UUID, content string) (*Message, error) {
	chat, err := s.repo.GetChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	var receiverID uuid.UUID
	var senderName string
	isParticipant := false
	for _, u := range chat.Users {
		if u.ID == senderID {
			isParticipant = true
			senderName = u.Name
		} else {
			receiverID = u.ID
		}
	}
	if !isParticipant {
		return nil, ErrNotChatParticipant
	}

	msg, err := s.repo.CreateMessage(ctx, chatID, senderID, content)
	if err != nil {
		return nil, err
	}

	// Offline push is best effort and must not hold up the sender.
	if s.notifService != nil && receiverID != uuid.Nil {
		go func() {
			_ = s.notifService.SendNotification(
				context.Background(),
				receiverID,
				"message",
				senderName,
				content,
				map[string]interface{}{"chat_id": chatID.String()},
			)
		}()
	}

	return msg, nil
}

func (s *ChatService) GetMessages(ctx context.Context, userID, chatID uuid.UUID, limit, offset int) ([]*Message, error) {
	chat, err := s.repo.GetChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	isParticipant := false
	for _, u := range chat.Users {
		if u.ID == userID {
			isParticipant = true
		}
	}
	if !isParticipant {
		return nil, ErrNotChatParticipant
	}

	if limit <= 0 {
		limit = 50
	}
	return s.repo.GetMessages(ctx, chatID, limit, offset)
}
