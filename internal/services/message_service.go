package services

import (
	"context"
	"time"

	"liminmarket/internal/models"
	"liminmarket/internal/repositories"
)

type MessageService struct {
	MessageRepo *repositories.MessageRepository
	ChatRepo    *repositories.ChatRepository
	Push        *PushService
}

// SendMessage persists the message and notifies the recipient. Push delivery
// is best effort; a push failure never fails the send.
func (s *MessageService) SendMessage(ctx context.Context, senderID int, chatID int, text string) (models.Message, error) {
	chat, err := s.ChatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return models.Message{}, err
	}
	if chat.BuyerID != senderID && chat.SellerID != senderID {
		return models.Message{}, models.ErrNotOwner
	}

	receiverID := chat.BuyerID
	if senderID == chat.BuyerID {
		receiverID = chat.SellerID
	}

	msg, err := s.MessageRepo.CreateMessage(ctx, models.Message{
		ChatID:     chatID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return models.Message{}, err
	}

	if s.Push != nil {
		s.Push.NotifyNewMessage(ctx, msg)
	}
	return msg, nil
}

func (s *MessageService) GetMessagesForChat(ctx context.Context, callerID, chatID int) ([]models.Message, error) {
	chat, err := s.ChatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.BuyerID != callerID && chat.SellerID != callerID {
		return nil, models.ErrNotOwner
	}

	if err := s.MessageRepo.MarkRead(ctx, chatID, callerID); err != nil {
		return nil, err
	}
	return s.MessageRepo.GetMessagesByChatID(ctx, chatID)
}

func (s *MessageService) DeleteMessage(ctx context.Context, callerID, messageID int) error {
	return s.MessageRepo.DeleteMessage(ctx, messageID, callerID)
}
