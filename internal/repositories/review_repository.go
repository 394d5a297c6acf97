package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"liminmarket/internal/models"
)

type ReviewRepository struct {
	DB *sql.DB
}

func (r *ReviewRepository) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	query := `
        INSERT INTO reviews (listing_id, user_id, rating, comment, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	result, err := r.DB.ExecContext(ctx, query,
		review.ListingID, review.UserID, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		return models.Review{}, err
	}
	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Review{}, err
	}
	review.ID = int(lastID)
	return review, nil
}

func (r *ReviewRepository) GetReviewsByListingID(ctx context.Context, listingID int) ([]models.Review, error) {
	query := `
        SELECT rv.id, rv.listing_id, rv.user_id, u.name, rv.rating, rv.comment, rv.created_at, rv.updated_at
        FROM reviews rv
        JOIN users u ON rv.user_id = u.id
        WHERE rv.listing_id = ?
        ORDER BY rv.created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.ListingID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepository) GetReviewByID(ctx context.Context, id int) (models.Review, error) {
	query := `SELECT id, listing_id, user_id, rating, comment, created_at, updated_at FROM reviews WHERE id = ?`

	var rv models.Review
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&rv.ID, &rv.ListingID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Review{}, models.ErrReviewNotFound
	}
	if err != nil {
		return models.Review{}, err
	}
	return rv, nil
}

func (r *ReviewRepository) UpdateReview(ctx context.Context, review models.Review) (models.Review, error) {
	updatedAt := time.Now()
	result, err := r.DB.ExecContext(ctx,
		`UPDATE reviews SET rating = ?, comment = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		review.Rating, review.Comment, updatedAt, review.ID, review.UserID,
	)
	if err != nil {
		return models.Review{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.Review{}, err
	}
	if affected == 0 {
		return models.Review{}, models.ErrReviewNotFound
	}
	review.UpdatedAt = &updatedAt
	return review, nil
}

func (r *ReviewRepository) DeleteReview(ctx context.Context, id, userID int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM reviews WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrReviewNotFound
	}
	return nil
}

// GetAverageRating returns the mean rating for a listing, 0 when unreviewed.
func (r *ReviewRepository) GetAverageRating(ctx context.Context, listingID int) (float64, error) {
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		`SELECT AVG(rating) FROM reviews WHERE listing_id = ?`, listingID,
	).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}
