package services

import (
	"context"
	"time"

	"liminmarket/internal/models"
	"liminmarket/internal/repositories"
)

type ChatService struct {
	ChatRepo    *repositories.ChatRepository
	ListingRepo *repositories.ListingRepository
}

// OpenChat returns the existing chat between the caller and the listing's
// seller, creating it on first contact.
func (s *ChatService) OpenChat(ctx context.Context, callerID, listingID int) (models.Chat, error) {
	listing, err := s.ListingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		return models.Chat{}, err
	}

	existing, err := s.ChatRepo.GetChatByParticipants(ctx, listingID, callerID, listing.UserID)
	if err != nil {
		return models.Chat{}, err
	}
	if existing.ID != 0 {
		return existing, nil
	}

	return s.ChatRepo.CreateChat(ctx, models.Chat{
		ListingID: listingID,
		BuyerID:   callerID,
		SellerID:  listing.UserID,
		CreatedAt: time.Now(),
	})
}

func (s *ChatService) GetChatByID(ctx context.Context, callerID, chatID int) (models.Chat, error) {
	chat, err := s.ChatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return models.Chat{}, err
	}
	if chat.BuyerID != callerID && chat.SellerID != callerID {
		return models.Chat{}, models.ErrNotOwner
	}
	return chat, nil
}

func (s *ChatService) GetChatsByUserID(ctx context.Context, userID int) ([]models.Chat, error) {
	return s.ChatRepo.GetChatsByUserID(ctx, userID)
}

func (s *ChatService) DeleteChat(ctx context.Context, callerID, chatID int) error {
	chat, err := s.ChatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return err
	}
	if chat.BuyerID != callerID && chat.SellerID != callerID {
		return models.ErrNotOwner
	}
	return s.ChatRepo.DeleteChat(ctx, chatID)
}
