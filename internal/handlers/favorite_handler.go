package handlers

import (
	"encoding/json"
	"net/http"

	"liminmarket/internal/services"
)

type FavoriteHandler struct {
	Service *services.FavoriteService
}

func (h *FavoriteHandler) AddToFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	listingID, err := getIntParam(r, "listing_id")
	if err != nil {
		http.Error(w, "Invalid listing_id", http.StatusBadRequest)
		return
	}

	if err := h.Service.AddToFavorites(r.Context(), userID, listingID); err != nil {
		if isForeignKeyConstraintError(err) {
			http.Error(w, "Listing does not exist", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to add to favorites", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *FavoriteHandler) RemoveFromFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	listingID, err := getIntParam(r, "listing_id")
	if err != nil {
		http.Error(w, "Invalid listing_id", http.StatusBadRequest)
		return
	}

	if err := h.Service.RemoveFromFavorites(r.Context(), userID, listingID); err != nil {
		http.Error(w, "Failed to remove from favorites", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *FavoriteHandler) IsFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	listingID, err := getIntParam(r, "listing_id")
	if err != nil {
		http.Error(w, "Invalid listing_id", http.StatusBadRequest)
		return
	}

	liked, err := h.Service.IsFavorite(r.Context(), userID, listingID)
	if err != nil {
		http.Error(w, "Failed to check favorite status", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"liked": liked})
}

func (h *FavoriteHandler) GetFavoritesByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	favs, err := h.Service.GetFavoritesByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to get favorites", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(favs)
}
