package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"liminmarket/internal/feed"
	"liminmarket/internal/models"
	"liminmarket/internal/services"
)

const maxSubmissionSize = 32 << 20

type ListingHandler struct {
	Service   *services.ListingService
	Analytics *services.AnalyticsService
}

// CreateListing accepts a multipart submission: text fields plus the photo
// files under "images". Category attribute bags arrive as JSON form values.
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	form, files, err := parseSubmission(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	listing, err := h.Service.SubmitListing(r.Context(), userID, form, files, nil)
	if err != nil {
		writeSubmissionError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(listing)
}

// UpdateListing re-submits an existing listing. Kept photos arrive as a JSON
// array of variant sets in the "kept_variants" field; new photos under
// "images" go through the full pipeline again.
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	listingID, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	form, files, err := parseSubmission(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var kept []models.ImageVariants
	if raw := r.FormValue("kept_variants"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &kept); err != nil {
			http.Error(w, "Invalid kept_variants", http.StatusBadRequest)
			return
		}
	}

	listing, err := h.Service.UpdateListing(r.Context(), userID, listingID, form, kept, files, nil)
	if err != nil {
		writeSubmissionError(w, err)
		return
	}
	json.NewEncoder(w).Encode(listing)
}

func (h *ListingHandler) GetListingByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	listing, err := h.Service.GetListingByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get listing", http.StatusInternalServerError)
		return
	}

	h.Analytics.RecordView(r.Context(), id)
	listing.Views, listing.Contacts = h.Analytics.GetCounters(r.Context(), id)
	json.NewEncoder(w).Encode(listing)
}

// ContactSeller records the contact event and returns the seller's phone.
func (h *ListingHandler) ContactSeller(w http.ResponseWriter, r *http.Request) {
	id, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	listing, err := h.Service.GetListingByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get listing", http.StatusInternalServerError)
		return
	}

	h.Analytics.RecordContact(r.Context(), id)
	json.NewEncoder(w).Encode(map[string]string{"phone": listing.SellerPhone})
}

// GetFilteredListings runs the feed pipeline over the active listings.
func (h *ListingHandler) GetFilteredListings(w http.ResponseWriter, r *http.Request) {
	var req models.ListingFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	listings, err := h.Service.GetActiveListings(r.Context())
	if err != nil {
		http.Error(w, "Failed to get listings", http.StatusInternalServerError)
		return
	}

	result := feed.Apply(listings, req)
	json.NewEncoder(w).Encode(models.ListingListResponse{Listings: result, Total: len(result)})
}

// GetFeedBucket serves the price-derived home screen rails: hot, dollar, free.
func (h *ListingHandler) GetFeedBucket(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Service.GetActiveListings(r.Context())
	if err != nil {
		http.Error(w, "Failed to get listings", http.StatusInternalServerError)
		return
	}

	var result []models.Listing
	switch getParam(r, "bucket") {
	case "hot":
		result = feed.HotDeals(listings)
	case "dollar":
		result = feed.DollarBucket(listings)
	case "free":
		result = feed.Free(listings)
	default:
		http.Error(w, "Unknown feed bucket", http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(models.ListingListResponse{Listings: result, Total: len(result)})
}

func (h *ListingHandler) GetListingsByUserID(w http.ResponseWriter, r *http.Request) {
	userID, err := getIntParam(r, "user_id")
	if err != nil {
		http.Error(w, "Invalid user_id", http.StatusBadRequest)
		return
	}

	listings, err := h.Service.GetListingsByUserID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to get listings", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(listings)
}

func (h *ListingHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.MarkSold)
}

func (h *ListingHandler) HideListing(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.HideListing)
}

func (h *ListingHandler) ExtendListing(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.Service.ExtendListing)
}

func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	listingID, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteListing(r.Context(), userID, listingID); err != nil {
		writeOwnershipError(w, err)
		return
	}
	h.Analytics.DeleteCounters(r.Context(), listingID)
	w.WriteHeader(http.StatusOK)
}

func (h *ListingHandler) changeStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, callerID, listingID int) error) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	listingID, err := getIntParam(r, "id")
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), userID, listingID); err != nil {
		writeOwnershipError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeOwnershipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrListingNotFound):
		http.Error(w, "Listing not found", http.StatusNotFound)
	case errors.Is(err, models.ErrNotOwner):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "Failed to update listing", http.StatusInternalServerError)
	}
}

// writeSubmissionError maps pipeline failures onto HTTP statuses. Structural
// validation and policy rejections are both client errors; only genuine
// infrastructure failures surface as 500.
func writeSubmissionError(w http.ResponseWriter, err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"errors": vErr.Fields})
		return
	}

	var pErr *services.PolicyError
	if errors.As(err, &pErr) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": pErr.Message})
		return
	}

	switch {
	case errors.Is(err, models.ErrListingNotFound):
		http.Error(w, "Listing not found", http.StatusNotFound)
	case errors.Is(err, models.ErrNotOwner):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case isForeignKeyConstraintError(err):
		http.Error(w, "Referenced record does not exist", http.StatusBadRequest)
	default:
		log.Printf("submission error: %v", err)
		http.Error(w, "Failed to save listing", http.StatusInternalServerError)
	}
}

func parseSubmission(r *http.Request) (services.ListingForm, []services.ImageFile, error) {
	if err := r.ParseMultipartForm(maxSubmissionSize); err != nil {
		return services.ListingForm{}, nil, errors.New("invalid multipart form")
	}

	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	form := services.ListingForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       price,
		IsFree:      r.FormValue("is_free") == "true",
		Category:    r.FormValue("category"),
		Location:    r.FormValue("location"),
		Phone:       r.FormValue("phone"),
		ListingMode: r.FormValue("listing_mode"),
		ListingType: r.FormValue("listing_type"),
	}

	if err := decodeAttrs(r.FormValue("real_estate"), &form.RealEstate); err != nil {
		return services.ListingForm{}, nil, err
	}
	if err := decodeAttrs(r.FormValue("vehicle"), &form.Vehicle); err != nil {
		return services.ListingForm{}, nil, err
	}
	if err := decodeAttrs(r.FormValue("job"), &form.Job); err != nil {
		return services.ListingForm{}, nil, err
	}
	if err := decodeAttrs(r.FormValue("service"), &form.Service); err != nil {
		return services.ListingForm{}, nil, err
	}

	var files []services.ImageFile
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			f, err := header.Open()
			if err != nil {
				return services.ListingForm{}, nil, errors.New("failed to read uploaded file")
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return services.ListingForm{}, nil, errors.New("failed to read uploaded file")
			}
			files = append(files, services.ImageFile{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return form, files, nil
}

func decodeAttrs[T any](raw string, dst *T) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return errors.New("invalid attribute payload")
	}
	return nil
}
