package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"liminmarket/internal/models"
	"liminmarket/internal/services"
)

type ComplaintHandler struct {
	Service *services.ComplaintService
}

func (h *ComplaintHandler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var complaint models.Complaint
	if err := json.NewDecoder(r.Body).Decode(&complaint); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if complaint.ListingID == 0 || complaint.Reason == "" {
		http.Error(w, "listing_id and reason are required", http.StatusBadRequest)
		return
	}
	complaint.UserID = userID

	created, err := h.Service.CreateComplaint(r.Context(), complaint)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			http.Error(w, "Listing does not exist", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create complaint", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *ComplaintHandler) GetOpenComplaints(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.Service.GetOpenComplaints(r.Context())
	if err != nil {
		http.Error(w, "Failed to get complaints", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(complaints)
}

// ResolveComplaint closes a complaint; admin only. The body carries the
// verdict: {"uphold": true} hides the reported listing.
func (h *ComplaintHandler) ResolveComplaint(w http.ResponseWriter, r *http.Request) {
	adminID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	complaintID, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid complaint id", http.StatusBadRequest)
		return
	}

	var req struct {
		Uphold bool `json:"uphold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.ResolveComplaint(r.Context(), adminID, complaintID, req.Uphold); err != nil {
		switch {
		case errors.Is(err, models.ErrComplaintNotFound):
			http.Error(w, "Complaint not found", http.StatusNotFound)
		case errors.Is(err, models.ErrListingNotFound):
			http.Error(w, "Listing not found", http.StatusNotFound)
		default:
			http.Error(w, "Failed to resolve complaint", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
}
