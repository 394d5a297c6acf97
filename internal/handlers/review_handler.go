package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"liminmarket/internal/models"
	"liminmarket/internal/services"
)

type ReviewHandler struct {
	Service *services.ReviewService
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	review.UserID = userID

	created, err := h.Service.CreateReview(r.Context(), review)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			http.Error(w, "Listing does not exist", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create review", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *ReviewHandler) GetReviewsByListingID(w http.ResponseWriter, r *http.Request) {
	listingID, err := getIntParam(r, "listing_id")
	if err != nil {
		http.Error(w, "Invalid listing_id", http.StatusBadRequest)
		return
	}

	reviews, avg, err := h.Service.GetReviewsByListingID(r.Context(), listingID)
	if err != nil {
		http.Error(w, "Failed to get reviews", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"reviews":        reviews,
		"average_rating": avg,
	})
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	reviewID, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid review id", http.StatusBadRequest)
		return
	}

	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	review.ID = reviewID

	updated, err := h.Service.UpdateReview(r.Context(), userID, review)
	if err != nil {
		writeReviewError(w, err)
		return
	}
	json.NewEncoder(w).Encode(updated)
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	reviewID, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid review id", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteReview(r.Context(), userID, reviewID); err != nil {
		writeReviewError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrReviewNotFound):
		http.Error(w, "Review not found", http.StatusNotFound)
	case errors.Is(err, models.ErrNotOwner):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "Failed to update review", http.StatusInternalServerError)
	}
}
