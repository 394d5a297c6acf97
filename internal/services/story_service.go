package services

import (
	"context"
	"time"

	"liminmarket/internal/models"
	"liminmarket/internal/repositories"
)

type StoryService struct {
	StoryRepo *repositories.StoryRepository
}

func (s *StoryService) CreateStory(ctx context.Context, story models.Story) (models.Story, error) {
	now := time.Now()
	story.CreatedAt = now
	story.ExpiresAt = now.Add(models.StoryTTL)
	return s.StoryRepo.CreateStory(ctx, story)
}

func (s *StoryService) GetActiveStories(ctx context.Context) ([]models.Story, error) {
	return s.StoryRepo.GetActiveStories(ctx)
}

func (s *StoryService) DeleteStory(ctx context.Context, callerID, storyID int) error {
	story, err := s.StoryRepo.GetStoryByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID != callerID {
		return models.ErrNotOwner
	}
	return s.StoryRepo.DeleteStory(ctx, storyID, callerID)
}
