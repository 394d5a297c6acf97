package repositories

import (
	"context"
	"database/sql"

	"liminmarket/internal/models"
)

type FavoriteRepository struct {
	DB *sql.DB
}

func (r *FavoriteRepository) AddFavorite(ctx context.Context, userID, listingID int) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT IGNORE INTO favorites (user_id, listing_id, created_at) VALUES (?, ?, NOW())`,
		userID, listingID,
	)
	return err
}

func (r *FavoriteRepository) RemoveFavorite(ctx context.Context, userID, listingID int) error {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND listing_id = ?`, userID, listingID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNoRecord
	}
	return nil
}

func (r *FavoriteRepository) IsFavorite(ctx context.Context, userID, listingID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = ? AND listing_id = ?)`,
		userID, listingID,
	).Scan(&exists)
	return exists, err
}

func (r *FavoriteRepository) GetFavoritesByUser(ctx context.Context, userID int) ([]models.Listing, error) {
	query := `SELECT` + listingColumns + `
        FROM favorites f
        JOIN listings l ON f.listing_id = l.id
        WHERE f.user_id = ?
        ORDER BY f.created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
