package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"liminmarket/internal/models"
)

type ListingRepository struct {
	DB *sql.DB
}

// listingAttrs groups the category-specific bags into one JSON column.
type listingAttrs struct {
	RealEstate *models.RealEstateAttrs `json:"real_estate,omitempty"`
	Vehicle    *models.VehicleAttrs    `json:"vehicle,omitempty"`
	Job        *models.JobAttrs        `json:"job,omitempty"`
	Service    *models.ServiceAttrs    `json:"service,omitempty"`
}

func (r *ListingRepository) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	query := `
        INSERT INTO listings (title, description, category, price, location, listing_mode, listing_type,
                              user_id, seller_name, seller_phone, image_url, images, variants, attributes,
                              status, created_at, expires_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
	imagesJSON, err := json.Marshal(listing.Images)
	if err != nil {
		return models.Listing{}, err
	}
	variantsJSON, err := json.Marshal(listing.Variants)
	if err != nil {
		return models.Listing{}, err
	}
	attrsJSON, err := json.Marshal(listingAttrs{
		RealEstate: listing.RealEstate,
		Vehicle:    listing.Vehicle,
		Job:        listing.Job,
		Service:    listing.Service,
	})
	if err != nil {
		return models.Listing{}, err
	}

	result, err := r.DB.ExecContext(ctx, query,
		listing.Title,
		listing.Description,
		listing.Category,
		listing.Price,
		listing.Location,
		listing.ListingMode,
		listing.ListingType,
		listing.UserID,
		listing.SellerName,
		listing.SellerPhone,
		listing.ImageURL,
		string(imagesJSON),
		string(variantsJSON),
		string(attrsJSON),
		listing.Status,
		listing.CreatedAt,
		listing.ExpiresAt,
	)
	if err != nil {
		return models.Listing{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Listing{}, err
	}
	listing.ID = int(lastID)
	return listing, nil
}

const listingColumns = `
        l.id, l.title, l.description, l.category, l.price, l.location,
        l.listing_mode, l.listing_type, l.user_id, l.seller_name, l.seller_phone,
        l.image_url, l.images, l.variants, l.attributes, l.status,
        l.created_at, l.updated_at, l.expires_at`

func scanListing(row interface {
	Scan(dest ...interface{}) error
}) (models.Listing, error) {
	var l models.Listing
	var imagesJSON, variantsJSON, attrsJSON []byte
	err := row.Scan(
		&l.ID, &l.Title, &l.Description, &l.Category, &l.Price, &l.Location,
		&l.ListingMode, &l.ListingType, &l.UserID, &l.SellerName, &l.SellerPhone,
		&l.ImageURL, &imagesJSON, &variantsJSON, &attrsJSON, &l.Status,
		&l.CreatedAt, &l.UpdatedAt, &l.ExpiresAt,
	)
	if err != nil {
		return models.Listing{}, err
	}

	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &l.Images); err != nil {
			return models.Listing{}, fmt.Errorf("failed to decode images json: %w", err)
		}
	}
	if len(variantsJSON) > 0 {
		if err := json.Unmarshal(variantsJSON, &l.Variants); err != nil {
			return models.Listing{}, fmt.Errorf("failed to decode variants json: %w", err)
		}
	}
	if len(attrsJSON) > 0 {
		var attrs listingAttrs
		if err := json.Unmarshal(attrsJSON, &attrs); err != nil {
			return models.Listing{}, fmt.Errorf("failed to decode attributes json: %w", err)
		}
		l.RealEstate = attrs.RealEstate
		l.Vehicle = attrs.Vehicle
		l.Job = attrs.Job
		l.Service = attrs.Service
	}
	return l, nil
}

func (r *ListingRepository) GetListingByID(ctx context.Context, id int) (models.Listing, error) {
	query := `SELECT` + listingColumns + ` FROM listings l WHERE l.id = ?`

	listing, err := scanListing(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, models.ErrListingNotFound
	}
	if err != nil {
		return models.Listing{}, err
	}
	return listing, nil
}

// GetActiveListings returns the full active set; the feed engine derives its
// buckets from this slice in memory.
func (r *ListingRepository) GetActiveListings(ctx context.Context) ([]models.Listing, error) {
	query := `SELECT` + listingColumns + ` FROM listings l WHERE l.status = ? ORDER BY l.created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, models.ListingStatusActive)
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

func (r *ListingRepository) GetListingsByUserID(ctx context.Context, userID int) ([]models.Listing, error) {
	query := `SELECT` + listingColumns + ` FROM listings l WHERE l.user_id = ? ORDER BY l.created_at DESC`

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

func (r *ListingRepository) UpdateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	query := `
        UPDATE listings
        SET title = ?, description = ?, category = ?, price = ?, location = ?,
            listing_mode = ?, listing_type = ?, seller_name = ?, seller_phone = ?,
            image_url = ?, images = ?, variants = ?, attributes = ?, status = ?, updated_at = ?
        WHERE id = ? AND user_id = ?
    `
	imagesJSON, err := json.Marshal(listing.Images)
	if err != nil {
		return models.Listing{}, fmt.Errorf("failed to marshal images: %w", err)
	}
	variantsJSON, err := json.Marshal(listing.Variants)
	if err != nil {
		return models.Listing{}, fmt.Errorf("failed to marshal variants: %w", err)
	}
	attrsJSON, err := json.Marshal(listingAttrs{
		RealEstate: listing.RealEstate,
		Vehicle:    listing.Vehicle,
		Job:        listing.Job,
		Service:    listing.Service,
	})
	if err != nil {
		return models.Listing{}, fmt.Errorf("failed to marshal attributes: %w", err)
	}

	updatedAt := time.Now()
	result, err := r.DB.ExecContext(ctx, query,
		listing.Title, listing.Description, listing.Category, listing.Price, listing.Location,
		listing.ListingMode, listing.ListingType, listing.SellerName, listing.SellerPhone,
		listing.ImageURL, string(imagesJSON), string(variantsJSON), string(attrsJSON),
		listing.Status, updatedAt,
		listing.ID, listing.UserID,
	)
	if err != nil {
		return models.Listing{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.Listing{}, err
	}
	if affected == 0 {
		return models.Listing{}, models.ErrListingNotFound
	}
	listing.UpdatedAt = &updatedAt
	return listing, nil
}

// UpdateStatus flips the lifecycle status. The user_id filter keeps the
// query itself owner-scoped on top of the service-layer ownership check.
func (r *ListingRepository) UpdateStatus(ctx context.Context, id, userID int, status string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE listings SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		status, time.Now(), id, userID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) ExtendListing(ctx context.Context, id, userID int, expiresAt time.Time) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE listings SET expires_at = ?, status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		expiresAt, models.ListingStatusActive, time.Now(), id, userID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) DeleteListing(ctx context.Context, id, userID int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrListingNotFound
	}
	return nil
}

// ExpireListings flips active listings whose expiry has passed. Run
// periodically by the background sweeper.
func (r *ListingRepository) ExpireListings(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE listings SET status = ? WHERE status = ? AND expires_at IS NOT NULL AND expires_at < ?`,
		models.ListingStatusExpired, models.ListingStatusActive, now,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
