package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"liminmarket/internal/models"
	"liminmarket/internal/services"
)

type StoryHandler struct {
	Service *services.StoryService
}

func (h *StoryHandler) CreateStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var story models.Story
	if err := json.NewDecoder(r.Body).Decode(&story); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if story.ImageURL == "" {
		http.Error(w, "image_url is required", http.StatusBadRequest)
		return
	}
	story.UserID = userID

	created, err := h.Service.CreateStory(r.Context(), story)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			http.Error(w, "Listing does not exist", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create story", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *StoryHandler) GetActiveStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.Service.GetActiveStories(r.Context())
	if err != nil {
		http.Error(w, "Failed to get stories", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stories)
}

func (h *StoryHandler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	storyID, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid story id", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteStory(r.Context(), userID, storyID); err != nil {
		switch {
		case errors.Is(err, models.ErrStoryNotFound):
			http.Error(w, "Story not found", http.StatusNotFound)
		case errors.Is(err, models.ErrNotOwner):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			http.Error(w, "Failed to delete story", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
}
