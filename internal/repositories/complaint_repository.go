package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"liminmarket/internal/models"
)

type ComplaintRepository struct {
	DB *sql.DB
}

func (r *ComplaintRepository) CreateComplaint(ctx context.Context, c models.Complaint) (models.Complaint, error) {
	result, err := r.DB.ExecContext(ctx,
		`INSERT INTO complaints (listing_id, user_id, reason, details, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		c.ListingID, c.UserID, c.Reason, c.Details, models.ComplaintStatusOpen, c.CreatedAt,
	)
	if err != nil {
		return models.Complaint{}, err
	}
	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Complaint{}, err
	}
	c.ID = int(lastID)
	c.Status = models.ComplaintStatusOpen
	return c, nil
}

func (r *ComplaintRepository) GetOpenComplaints(ctx context.Context) ([]models.Complaint, error) {
	query := `
        SELECT id, listing_id, user_id, reason, details, status, created_at
        FROM complaints WHERE status = ? ORDER BY created_at ASC
    `
	rows, err := r.DB.QueryContext(ctx, query, models.ComplaintStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		var c models.Complaint
		if err := rows.Scan(&c.ID, &c.ListingID, &c.UserID, &c.Reason, &c.Details, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

func (r *ComplaintRepository) GetComplaintByID(ctx context.Context, id int) (models.Complaint, error) {
	query := `
        SELECT id, listing_id, user_id, reason, details, status, created_at
        FROM complaints WHERE id = ?
    `
	var c models.Complaint
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.ListingID, &c.UserID, &c.Reason, &c.Details, &c.Status, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Complaint{}, models.ErrComplaintNotFound
	}
	if err != nil {
		return models.Complaint{}, err
	}
	return c, nil
}

func (r *ComplaintRepository) ResolveComplaint(ctx context.Context, id, adminID int, status string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE complaints SET status = ?, resolved_by = ?, resolved_at = ? WHERE id = ? AND status = ?`,
		status, adminID, time.Now(), id, models.ComplaintStatusOpen,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrComplaintNotFound
	}
	return nil
}
