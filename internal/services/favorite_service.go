package services

import (
	"context"

	"liminmarket/internal/models"
	"liminmarket/internal/repositories"
)

type FavoriteService struct {
	FavoriteRepo *repositories.FavoriteRepository
}

func (s *FavoriteService) AddToFavorites(ctx context.Context, userID, listingID int) error {
	return s.FavoriteRepo.AddFavorite(ctx, userID, listingID)
}

func (s *FavoriteService) RemoveFromFavorites(ctx context.Context, userID, listingID int) error {
	return s.FavoriteRepo.RemoveFavorite(ctx, userID, listingID)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, listingID int) (bool, error) {
	return s.FavoriteRepo.IsFavorite(ctx, userID, listingID)
}

func (s *FavoriteService) GetFavoritesByUser(ctx context.Context, userID int) ([]models.Listing, error) {
	return s.FavoriteRepo.GetFavoritesByUser(ctx, userID)
}
