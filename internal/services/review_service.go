package services

import (
	"context"

	"liminmarket/internal/models"
	"liminmarket/internal/repositories"
)

type ReviewService struct {
	ReviewRepo *repositories.ReviewRepository
}

func (s *ReviewService) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	return s.ReviewRepo.CreateReview(ctx, review)
}

func (s *ReviewService) GetReviewsByListingID(ctx context.Context, listingID int) ([]models.Review, float64, error) {
	reviews, err := s.ReviewRepo.GetReviewsByListingID(ctx, listingID)
	if err != nil {
		return nil, 0, err
	}
	avg, err := s.ReviewRepo.GetAverageRating(ctx, listingID)
	if err != nil {
		return nil, 0, err
	}
	return reviews, avg, nil
}

// UpdateReview verifies the caller wrote the review before changing it.
func (s *ReviewService) UpdateReview(ctx context.Context, callerID int, review models.Review) (models.Review, error) {
	existing, err := s.ReviewRepo.GetReviewByID(ctx, review.ID)
	if err != nil {
		return models.Review{}, err
	}
	if existing.UserID != callerID {
		return models.Review{}, models.ErrNotOwner
	}
	review.UserID = callerID
	return s.ReviewRepo.UpdateReview(ctx, review)
}

func (s *ReviewService) DeleteReview(ctx context.Context, callerID, reviewID int) error {
	existing, err := s.ReviewRepo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if existing.UserID != callerID {
		return models.ErrNotOwner
	}
	return s.ReviewRepo.DeleteReview(ctx, reviewID, callerID)
}
