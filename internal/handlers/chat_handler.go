package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"liminmarket/internal/models"
	"liminmarket/internal/services"
)

type ChatHandler struct {
	Service *services.ChatService
}

// OpenChat starts (or resumes) a conversation about a listing.
func (h *ChatHandler) OpenChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		ListingID int `json:"listing_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ListingID == 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	chat, err := h.Service.OpenChat(r.Context(), userID, req.ListingID)
	if err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to open chat", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(chat)
}

func (h *ChatHandler) GetChatByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid chat id", http.StatusBadRequest)
		return
	}

	chat, err := h.Service.GetChatByID(r.Context(), userID, chatID)
	if err != nil {
		writeChatError(w, err)
		return
	}
	json.NewEncoder(w).Encode(chat)
}

func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.Service.GetChatsByUserID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to get chats", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(chats)
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid chat id", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteChat(r.Context(), userID, chatID); err != nil {
		writeChatError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrChatNotFound):
		http.Error(w, "Chat not found", http.StatusNotFound)
	case errors.Is(err, models.ErrNotOwner):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "Failed to access chat", http.StatusInternalServerError)
	}
}
