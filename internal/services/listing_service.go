package services

import (
	"context"
	"strings"
	"time"

	"liminmarket/internal/models"
	"liminmarket/internal/moderation"

	img "liminmarket/internal/imaging"
)

const listingLifetime = 30 * 24 * time.Hour

// Categories where a price is not required.
var priceOptionalCategories = map[string]bool{
	"jobs":     true,
	"services": true,
}

// Categories where photos are not required.
var imageOptionalCategories = map[string]bool{
	"jobs":     true,
	"services": true,
}

// Placeholder shown when a listing has no photos.
var categoryPlaceholders = map[string]string{
	"vehicles":    "/static/placeholders/vehicles.jpg",
	"real-estate": "/static/placeholders/real-estate.jpg",
	"jobs":        "/static/placeholders/jobs.jpg",
	"services":    "/static/placeholders/services.jpg",
}

const defaultPlaceholder = "/static/placeholders/generic.jpg"

// ImageScreener screens a photo before upload. Implemented by
// moderation.ImageModerator; it fails open on internal errors.
type ImageScreener interface {
	ModerateImage(ctx context.Context, image []byte, contentType string) moderation.ModerationResult
}

// VariantUploader produces and stores the four renditions of a photo.
// Implemented by imaging.Generator; it fails closed.
type VariantUploader interface {
	UploadListingImage(ctx context.Context, data []byte, contentType string, onProgress img.ProgressFunc) (*models.ImageVariants, error)
	RemoveListingImage(ctx context.Context, set models.ImageVariants) error
}

// SellerDirectory resolves the authenticated caller's profile so a listing
// can carry the denormalized seller fields. Satisfied by
// repositories.UserRepository.
type SellerDirectory interface {
	GetUserByID(ctx context.Context, id int) (models.User, error)
}

// ImageFile is one photo attached to a submission.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ValidationError carries the field-keyed error map from structural
// validation. No network or storage call happens when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "validation failed: " + strings.Join(keys, ", ")
}

// PolicyError is a blocking content-policy rejection (text or image).
type PolicyError struct {
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

// ListingForm is the submission state for create and edit. The
// category-specific attribute bags live at the top level so a category
// switch can clear them.
type ListingForm struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	IsFree      bool    `json:"is_free"`
	Category    string  `json:"category"`
	Location    string  `json:"location"`
	Phone       string  `json:"phone"`
	ListingMode string  `json:"listing_mode"`
	ListingType string  `json:"listing_type"`

	RealEstate *models.RealEstateAttrs `json:"real_estate,omitempty"`
	Vehicle    *models.VehicleAttrs    `json:"vehicle,omitempty"`
	Job        *models.JobAttrs        `json:"job,omitempty"`
	Service    *models.ServiceAttrs    `json:"service,omitempty"`
}

// SetCategory switches the form's category. Every specialized attribute bag
// is cleared on a switch, no matter which category is being left or entered.
// A user who toggles away and back loses typed attribute input; this data
// hygiene is intentional, if surprising, and keeps stale cross-category
// attributes out of the payload.
func (f *ListingForm) SetCategory(category string) {
	if category == f.Category {
		return
	}
	f.Category = category
	f.RealEstate = nil
	f.Vehicle = nil
	f.Job = nil
	f.Service = nil
}

// Validate populates the field error map. Every rule runs; there is no
// early return here, so the caller sees all structural problems at once.
func (f *ListingForm) Validate(imageCount int) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(f.Description) == "" {
		errs["description"] = "description is required"
	}
	if f.Price <= 0 && !f.IsFree && !priceOptionalCategories[normalizeCategory(f.Category)] {
		errs["price"] = "price must be greater than zero, or mark the listing as free"
	}
	if strings.TrimSpace(f.Category) == "" {
		errs["category"] = "category is required"
	}
	if strings.TrimSpace(f.Location) == "" {
		errs["location"] = "location is required"
	}
	if strings.TrimSpace(f.Phone) == "" {
		errs["phone"] = "phone is required"
	}
	if imageCount == 0 &&
		!imageOptionalCategories[normalizeCategory(f.Category)] &&
		f.ListingMode != models.ListingModeSeeking {
		errs["images"] = "at least one photo is required"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// ListingStore is the persistence surface the service needs; satisfied by
// repositories.ListingRepository.
type ListingStore interface {
	CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error)
	GetListingByID(ctx context.Context, id int) (models.Listing, error)
	GetActiveListings(ctx context.Context) ([]models.Listing, error)
	GetListingsByUserID(ctx context.Context, userID int) ([]models.Listing, error)
	UpdateListing(ctx context.Context, listing models.Listing) (models.Listing, error)
	UpdateStatus(ctx context.Context, id, userID int, status string) error
	ExtendListing(ctx context.Context, id, userID int, expiresAt time.Time) error
	DeleteListing(ctx context.Context, id, userID int) error
}

type ListingService struct {
	ListingRepo    ListingStore
	ImageModerator ImageScreener
	Variants       VariantUploader
	Sellers        SellerDirectory
}

// SubmitListing runs the full submission pipeline for a new listing:
// structural validation, text moderation, sequential per-image moderation,
// sequential variant generation, payload assembly, persistence.
//
// Every stage is terminal on failure; there are no retries. Image files are
// processed in order and the first failure's message wins, so the error a
// caller sees always belongs to the earliest offending file.
func (s *ListingService) SubmitListing(ctx context.Context, callerID int, form ListingForm, files []ImageFile, onProgress img.ProgressFunc) (models.Listing, error) {
	if errs := form.Validate(len(files)); errs != nil {
		return models.Listing{}, &ValidationError{Fields: errs}
	}

	if res := moderation.ModerateListing(form.Title, form.Description); !res.IsAllowed {
		return models.Listing{}, &PolicyError{Message: res.Message}
	}

	// Resolved before any storage work so a missing caller record cannot
	// leave uploads behind. The name and phone are denormalized onto the
	// listing row.
	seller, err := s.Sellers.GetUserByID(ctx, callerID)
	if err != nil {
		return models.Listing{}, err
	}

	// All photos must clear moderation before any of them is uploaded, so a
	// rejection never leaves a partial upload behind.
	for _, file := range files {
		if res := s.ImageModerator.ModerateImage(ctx, file.Data, file.ContentType); !res.IsAllowed {
			return models.Listing{}, &PolicyError{Message: res.Message}
		}
	}

	var variants []models.ImageVariants
	for _, file := range files {
		set, err := s.Variants.UploadListingImage(ctx, file.Data, file.ContentType, onProgress)
		if err != nil {
			return models.Listing{}, err
		}
		variants = append(variants, *set)
	}

	listing := s.assemble(seller, form, variants)
	return s.ListingRepo.CreateListing(ctx, listing)
}

// UpdateListing re-runs the pipeline for an existing listing. New photos go
// through moderation and variant generation; kept photos are passed through
// untouched.
func (s *ListingService) UpdateListing(ctx context.Context, callerID, listingID int, form ListingForm, keptVariants []models.ImageVariants, newFiles []ImageFile, onProgress img.ProgressFunc) (models.Listing, error) {
	existing, err := s.ListingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		return models.Listing{}, err
	}
	if existing.UserID != callerID {
		return models.Listing{}, models.ErrNotOwner
	}

	if errs := form.Validate(len(keptVariants) + len(newFiles)); errs != nil {
		return models.Listing{}, &ValidationError{Fields: errs}
	}
	if res := moderation.ModerateListing(form.Title, form.Description); !res.IsAllowed {
		return models.Listing{}, &PolicyError{Message: res.Message}
	}

	seller, err := s.Sellers.GetUserByID(ctx, callerID)
	if err != nil {
		return models.Listing{}, err
	}

	for _, file := range newFiles {
		if res := s.ImageModerator.ModerateImage(ctx, file.Data, file.ContentType); !res.IsAllowed {
			return models.Listing{}, &PolicyError{Message: res.Message}
		}
	}

	variants := append([]models.ImageVariants{}, keptVariants...)
	for _, file := range newFiles {
		set, err := s.Variants.UploadListingImage(ctx, file.Data, file.ContentType, onProgress)
		if err != nil {
			return models.Listing{}, err
		}
		variants = append(variants, *set)
	}

	updated := s.assemble(seller, form, variants)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.ExpiresAt = existing.ExpiresAt
	updated.Status = existing.Status

	saved, err := s.ListingRepo.UpdateListing(ctx, updated)
	if err != nil {
		return models.Listing{}, err
	}
	s.removeVariants(ctx, droppedVariants(existing.Variants, keptVariants)...)
	return saved, nil
}

// droppedVariants reports the previously stored sets absent from the kept
// list; their objects are no longer referenced by anything.
func droppedVariants(previous, kept []models.ImageVariants) []models.ImageVariants {
	keep := make(map[models.ImageVariants]bool, len(kept))
	for _, set := range kept {
		keep[set] = true
	}
	var dropped []models.ImageVariants
	for _, set := range previous {
		if !keep[set] {
			dropped = append(dropped, set)
		}
	}
	return dropped
}

// assemble merges common fields, the denormalized seller fields and the
// category-specific attribute bag.
func (s *ListingService) assemble(seller models.User, form ListingForm, variants []models.ImageVariants) models.Listing {
	price := form.Price
	if form.IsFree {
		price = 0
	}

	mode := form.ListingMode
	if mode == "" {
		mode = models.ListingModeOffering
	}

	now := time.Now()
	expires := now.Add(listingLifetime)

	listing := models.Listing{
		Title:       form.Title,
		Description: form.Description,
		Category:    form.Category,
		Price:       price,
		Location:    form.Location,
		ListingMode: mode,
		ListingType: form.ListingType,
		UserID:      seller.ID,
		SellerName:  seller.Name,
		SellerPhone: form.Phone,
		Variants:    variants,
		Status:      models.ListingStatusActive,
		CreatedAt:   now,
		ExpiresAt:   &expires,
		RealEstate:  form.RealEstate,
		Vehicle:     form.Vehicle,
		Job:         form.Job,
		Service:     form.Service,
	}

	for _, v := range variants {
		listing.Images = append(listing.Images, v.Medium)
	}
	if len(variants) > 0 {
		listing.ImageURL = variants[0].Medium
	} else {
		listing.ImageURL = placeholderFor(form.Category)
	}
	return listing
}

func placeholderFor(category string) string {
	if url, ok := categoryPlaceholders[normalizeCategory(category)]; ok {
		return url
	}
	return defaultPlaceholder
}

func (s *ListingService) GetListingByID(ctx context.Context, id int) (models.Listing, error) {
	return s.ListingRepo.GetListingByID(ctx, id)
}

func (s *ListingService) GetActiveListings(ctx context.Context) ([]models.Listing, error) {
	return s.ListingRepo.GetActiveListings(ctx)
}

func (s *ListingService) GetListingsByUserID(ctx context.Context, userID int) ([]models.Listing, error) {
	return s.ListingRepo.GetListingsByUserID(ctx, userID)
}

// requireOwner loads the listing and verifies the caller owns it. The
// repository queries are owner-scoped too; this check makes the rule explicit
// at the application boundary instead of relying on the WHERE clause alone.
func (s *ListingService) requireOwner(ctx context.Context, callerID, listingID int) error {
	listing, err := s.ListingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.UserID != callerID {
		return models.ErrNotOwner
	}
	return nil
}

func (s *ListingService) DeleteListing(ctx context.Context, callerID, listingID int) error {
	listing, err := s.ListingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.UserID != callerID {
		return models.ErrNotOwner
	}
	if err := s.ListingRepo.DeleteListing(ctx, listingID, callerID); err != nil {
		return err
	}
	s.removeVariants(ctx, listing.Variants...)
	return nil
}

// removeVariants deletes stored renditions once nothing references them. The
// row change has already committed, so a failed object delete only leaves an
// orphan behind a random key; it never fails the request.
func (s *ListingService) removeVariants(ctx context.Context, sets ...models.ImageVariants) {
	if s.Variants == nil {
		return
	}
	for _, set := range sets {
		s.Variants.RemoveListingImage(ctx, set)
	}
}

func (s *ListingService) MarkSold(ctx context.Context, callerID, listingID int) error {
	if err := s.requireOwner(ctx, callerID, listingID); err != nil {
		return err
	}
	return s.ListingRepo.UpdateStatus(ctx, listingID, callerID, models.ListingStatusSold)
}

func (s *ListingService) HideListing(ctx context.Context, callerID, listingID int) error {
	if err := s.requireOwner(ctx, callerID, listingID); err != nil {
		return err
	}
	return s.ListingRepo.UpdateStatus(ctx, listingID, callerID, models.ListingStatusHidden)
}

// ExtendListing pushes the expiry out by one more lifetime and reactivates
// the listing.
func (s *ListingService) ExtendListing(ctx context.Context, callerID, listingID int) error {
	if err := s.requireOwner(ctx, callerID, listingID); err != nil {
		return err
	}
	return s.ListingRepo.ExtendListing(ctx, listingID, callerID, time.Now().Add(listingLifetime))
}

// HideListingAsAdmin bypasses the ownership check; used when resolving a
// complaint.
func (s *ListingService) HideListingAsAdmin(ctx context.Context, listingID int) error {
	listing, err := s.ListingRepo.GetListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	return s.ListingRepo.UpdateStatus(ctx, listingID, listing.UserID, models.ListingStatusHidden)
}
