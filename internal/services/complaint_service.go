package services

import (
	"context"
	"time"

	"liminmarket/internal/models"
	"liminmarket/internal/repositories"
)

type ComplaintService struct {
	ComplaintRepo *repositories.ComplaintRepository
	Listings      *ListingService
}

func (s *ComplaintService) CreateComplaint(ctx context.Context, c models.Complaint) (models.Complaint, error) {
	c.CreatedAt = time.Now()
	return s.ComplaintRepo.CreateComplaint(ctx, c)
}

func (s *ComplaintService) GetOpenComplaints(ctx context.Context) ([]models.Complaint, error) {
	return s.ComplaintRepo.GetOpenComplaints(ctx)
}

// ResolveComplaint closes a complaint. When upheld, the reported listing is
// hidden; when dismissed, the listing is left alone.
func (s *ComplaintService) ResolveComplaint(ctx context.Context, adminID, complaintID int, uphold bool) error {
	complaint, err := s.ComplaintRepo.GetComplaintByID(ctx, complaintID)
	if err != nil {
		return err
	}

	status := models.ComplaintStatusDismissed
	if uphold {
		status = models.ComplaintStatusResolved
		if err := s.Listings.HideListingAsAdmin(ctx, complaint.ListingID); err != nil {
			return err
		}
	}
	return s.ComplaintRepo.ResolveComplaint(ctx, complaintID, adminID, status)
}
