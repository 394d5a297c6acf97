package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"liminmarket/internal/models"
)

type StoryRepository struct {
	DB *sql.DB
}

func (r *StoryRepository) CreateStory(ctx context.Context, story models.Story) (models.Story, error) {
	result, err := r.DB.ExecContext(ctx,
		`INSERT INTO stories (user_id, listing_id, image_url, caption, expired, created_at, expires_at)
         VALUES (?, ?, ?, ?, 0, ?, ?)`,
		story.UserID, story.ListingID, story.ImageURL, story.Caption, story.CreatedAt, story.ExpiresAt,
	)
	if err != nil {
		return models.Story{}, err
	}
	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Story{}, err
	}
	story.ID = int(lastID)
	return story, nil
}

// GetActiveStories returns unexpired stories, newest first.
func (r *StoryRepository) GetActiveStories(ctx context.Context) ([]models.Story, error) {
	query := `
        SELECT id, user_id, listing_id, image_url, caption, expired, created_at, expires_at
        FROM stories WHERE expired = 0 ORDER BY created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []models.Story
	for rows.Next() {
		var s models.Story
		if err := rows.Scan(&s.ID, &s.UserID, &s.ListingID, &s.ImageURL, &s.Caption, &s.Expired, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

func (r *StoryRepository) GetStoryByID(ctx context.Context, id int) (models.Story, error) {
	query := `
        SELECT id, user_id, listing_id, image_url, caption, expired, created_at, expires_at
        FROM stories WHERE id = ?
    `
	var s models.Story
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.ListingID, &s.ImageURL, &s.Caption, &s.Expired, &s.CreatedAt, &s.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Story{}, models.ErrStoryNotFound
	}
	if err != nil {
		return models.Story{}, err
	}
	return s, nil
}

func (r *StoryRepository) DeleteStory(ctx context.Context, id, userID int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM stories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrStoryNotFound
	}
	return nil
}

// ExpireStories marks stories past their expiry. Run by the background sweeper.
func (r *StoryRepository) ExpireStories(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE stories SET expired = 1 WHERE expired = 0 AND expires_at < ?`, now,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
