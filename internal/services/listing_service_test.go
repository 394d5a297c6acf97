package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	img "liminmarket/internal/imaging"
	"liminmarket/internal/models"
	"liminmarket/internal/moderation"
)

type fakeStore struct {
	listings map[int]models.Listing
	nextID   int
	created  int
}

func newFakeStore(seed ...models.Listing) *fakeStore {
	s := &fakeStore{listings: make(map[int]models.Listing), nextID: 1}
	for _, l := range seed {
		s.listings[l.ID] = l
		if l.ID >= s.nextID {
			s.nextID = l.ID + 1
		}
	}
	return s
}

func (s *fakeStore) CreateListing(_ context.Context, l models.Listing) (models.Listing, error) {
	l.ID = s.nextID
	s.nextID++
	s.listings[l.ID] = l
	s.created++
	return l, nil
}

func (s *fakeStore) GetListingByID(_ context.Context, id int) (models.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return models.Listing{}, models.ErrListingNotFound
	}
	return l, nil
}

func (s *fakeStore) GetActiveListings(context.Context) ([]models.Listing, error) { return nil, nil }

func (s *fakeStore) GetListingsByUserID(context.Context, int) ([]models.Listing, error) {
	return nil, nil
}

func (s *fakeStore) UpdateListing(_ context.Context, l models.Listing) (models.Listing, error) {
	s.listings[l.ID] = l
	return l, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id, userID int, status string) error {
	l, ok := s.listings[id]
	if !ok || l.UserID != userID {
		return models.ErrListingNotFound
	}
	l.Status = status
	s.listings[id] = l
	return nil
}

func (s *fakeStore) ExtendListing(_ context.Context, id, userID int, expiresAt time.Time) error {
	l, ok := s.listings[id]
	if !ok || l.UserID != userID {
		return models.ErrListingNotFound
	}
	l.ExpiresAt = &expiresAt
	s.listings[id] = l
	return nil
}

func (s *fakeStore) DeleteListing(_ context.Context, id, userID int) error {
	l, ok := s.listings[id]
	if !ok || l.UserID != userID {
		return models.ErrListingNotFound
	}
	delete(s.listings, id)
	return nil
}

// fakeScreener rejects files whose payload matches reject.
type fakeScreener struct {
	reject string
	calls  []string
}

func (f *fakeScreener) ModerateImage(_ context.Context, image []byte, _ string) moderation.ModerationResult {
	f.calls = append(f.calls, string(image))
	if f.reject != "" && string(image) == f.reject {
		return moderation.ModerationResult{IsAllowed: false, Message: "image rejected: " + f.reject}
	}
	return moderation.ModerationResult{IsAllowed: true}
}

// fakeVariants uploads nothing; it fabricates a full variant set per call,
// optionally failing on a given payload, and records removed sets.
type fakeVariants struct {
	failOn  string
	uploads int
	removed []models.ImageVariants
}

func (f *fakeVariants) UploadListingImage(_ context.Context, data []byte, _ string, _ img.ProgressFunc) (*models.ImageVariants, error) {
	if f.failOn != "" && string(data) == f.failOn {
		return nil, errors.New("failed to upload full variant: storage unavailable")
	}
	f.uploads++
	base := fmt.Sprintf("https://cdn.test/%s-%d", data, f.uploads)
	return &models.ImageVariants{
		Thumb:    base + "-thumb.jpg",
		Medium:   base + "-medium.jpg",
		Full:     base + "-full.jpg",
		Original: base + "-original.jpg",
	}, nil
}

func (f *fakeVariants) RemoveListingImage(_ context.Context, set models.ImageVariants) error {
	f.removed = append(f.removed, set)
	return nil
}

// fakeSellers serves the one profile the tests submit as.
type fakeSellers struct {
	users map[int]models.User
}

func (f *fakeSellers) GetUserByID(_ context.Context, id int) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func validForm() ListingForm {
	return ListingForm{
		Title:       "Mountain bike",
		Description: "Barely used",
		Price:       250,
		Category:    "Sports",
		Location:    "Springfield",
		Phone:       "+15550100",
		ListingMode: models.ListingModeOffering,
	}
}

func newService(store *fakeStore, screener *fakeScreener, variants *fakeVariants) *ListingService {
	return &ListingService{
		ListingRepo:    store,
		ImageModerator: screener,
		Variants:       variants,
		Sellers: &fakeSellers{users: map[int]models.User{
			7: {ID: 7, Name: "Aigerim S.", Phone: "+77010000007", Role: "client"},
		}},
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	form := ListingForm{}
	errs := form.Validate(0)
	for _, field := range []string{"title", "description", "price", "category", "location", "phone", "images"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected error for field %q, got %v", field, errs)
		}
	}
}

func TestValidateFreeListingSkipsPrice(t *testing.T) {
	form := validForm()
	form.Price = 0
	form.IsFree = true
	if errs := form.Validate(1); errs != nil {
		t.Errorf("free listing should validate, got %v", errs)
	}
}

func TestValidatePriceOptionalCategories(t *testing.T) {
	for _, category := range []string{"Jobs", "Services"} {
		form := validForm()
		form.Category = category
		form.Price = 0
		if errs := form.Validate(0); errs != nil {
			t.Errorf("%s: price and images should be optional, got %v", category, errs)
		}
	}
}

func TestValidateSeekingModeSkipsImages(t *testing.T) {
	form := validForm()
	form.Category = "Electronics"
	form.ListingMode = models.ListingModeSeeking
	if errs := form.Validate(0); errs != nil {
		t.Errorf("seeking mode must not require images regardless of category, got %v", errs)
	}
}

func TestSetCategoryClearsAttributeBags(t *testing.T) {
	form := validForm()
	form.SetCategory("Vehicles")
	form.Vehicle = &models.VehicleAttrs{Make: "Toyota"}

	form.SetCategory("Jobs")
	if form.Vehicle != nil {
		t.Errorf("vehicle attributes must be cleared on category switch, got %+v", form.Vehicle)
	}

	// Toggling back does not restore the lost input.
	form.SetCategory("Vehicles")
	if form.Vehicle != nil {
		t.Error("attributes must stay cleared after toggling back")
	}
}

func TestSetCategorySameCategoryKeepsAttributes(t *testing.T) {
	form := validForm()
	form.SetCategory("Vehicles")
	form.Vehicle = &models.VehicleAttrs{Make: "Toyota"}
	form.SetCategory("Vehicles")
	if form.Vehicle == nil {
		t.Error("re-selecting the current category is not a switch")
	}
}

func TestSubmitListingValidationHaltsBeforePipeline(t *testing.T) {
	screener := &fakeScreener{}
	variants := &fakeVariants{}
	svc := newService(newFakeStore(), screener, variants)

	_, err := svc.SubmitListing(context.Background(), 7, ListingForm{}, []ImageFile{{Data: []byte("a")}}, nil)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(screener.calls) != 0 || variants.uploads != 0 {
		t.Error("no moderation or upload may run when structural validation fails")
	}
}

func TestSubmitListingBlockedTitle(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeScreener{}, &fakeVariants{})

	form := validForm()
	form.Title = "Hate the world"
	_, err := svc.SubmitListing(context.Background(), 7, form, nil, nil)

	var pErr *PolicyError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PolicyError, got %v", err)
	}
	if store.created != 0 {
		t.Error("nothing may be persisted after a content rejection")
	}
}

func TestSubmitListingFirstRejectedImageAborts(t *testing.T) {
	screener := &fakeScreener{reject: "img2"}
	variants := &fakeVariants{}
	svc := newService(newFakeStore(), screener, variants)

	form := validForm()
	files := []ImageFile{
		{Data: []byte("img1"), ContentType: "image/jpeg"},
		{Data: []byte("img2"), ContentType: "image/jpeg"},
		{Data: []byte("img3"), ContentType: "image/jpeg"},
	}
	_, err := svc.SubmitListing(context.Background(), 7, form, files, nil)

	var pErr *PolicyError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PolicyError, got %v", err)
	}
	if pErr.Message != "image rejected: img2" {
		t.Errorf("error must belong to the first rejected file, got %q", pErr.Message)
	}
	if variants.uploads != 0 {
		t.Error("no upload may happen when any image is rejected")
	}
}

func TestSubmitListingVariantFailureAborts(t *testing.T) {
	store := newFakeStore()
	variants := &fakeVariants{failOn: "img2"}
	svc := newService(store, &fakeScreener{}, variants)

	form := validForm()
	files := []ImageFile{
		{Data: []byte("img1"), ContentType: "image/jpeg"},
		{Data: []byte("img2"), ContentType: "image/jpeg"},
	}
	_, err := svc.SubmitListing(context.Background(), 7, form, files, nil)
	if err == nil {
		t.Fatal("expected upload failure to abort the submission")
	}
	if store.created != 0 {
		t.Error("nothing may be persisted after a variant failure")
	}
}

func TestSubmitListingSuccess(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeScreener{}, &fakeVariants{})

	form := validForm()
	files := []ImageFile{{Data: []byte("img1"), ContentType: "image/jpeg"}}
	listing, err := svc.SubmitListing(context.Background(), 7, form, files, nil)
	if err != nil {
		t.Fatalf("SubmitListing: %v", err)
	}

	if listing.UserID != 7 {
		t.Errorf("seller reference: got %d", listing.UserID)
	}
	if listing.Status != models.ListingStatusActive {
		t.Errorf("status: got %q", listing.Status)
	}
	if len(listing.Variants) != 1 || !listing.Variants[0].Complete() {
		t.Fatalf("expected one complete variant set, got %+v", listing.Variants)
	}
	if listing.ImageURL != listing.Variants[0].Medium {
		t.Errorf("primary image should be the first medium URL, got %q", listing.ImageURL)
	}
	if listing.ExpiresAt == nil || !listing.ExpiresAt.After(time.Now()) {
		t.Error("expiry must be set in the future")
	}
}

func TestSubmitListingCarriesSellerIdentity(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeScreener{}, &fakeVariants{})

	form := validForm()
	files := []ImageFile{{Data: []byte("img1"), ContentType: "image/jpeg"}}
	listing, err := svc.SubmitListing(context.Background(), 7, form, files, nil)
	if err != nil {
		t.Fatalf("SubmitListing: %v", err)
	}

	if listing.SellerName != "Aigerim S." {
		t.Errorf("seller name must come from the caller's profile, got %q", listing.SellerName)
	}
	if listing.SellerPhone != form.Phone {
		t.Errorf("seller phone must come from the form, got %q", listing.SellerPhone)
	}

	if _, err := svc.SubmitListing(context.Background(), 9, form, files, nil); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("unknown caller must fail the submission, got %v", err)
	}
	if store.created != 1 {
		t.Errorf("only the known caller's listing may persist, got %d", store.created)
	}
}

func TestSubmitListingFreePriceSentinel(t *testing.T) {
	svc := newService(newFakeStore(), &fakeScreener{}, &fakeVariants{})

	form := validForm()
	form.Price = 40
	form.IsFree = true
	form.Category = "Jobs"
	listing, err := svc.SubmitListing(context.Background(), 7, form, nil, nil)
	if err != nil {
		t.Fatalf("SubmitListing: %v", err)
	}
	if listing.Price != 0 {
		t.Errorf("free flag must force the zero-price sentinel, got %v", listing.Price)
	}
}

func TestSubmitListingPlaceholderWhenNoImages(t *testing.T) {
	svc := newService(newFakeStore(), &fakeScreener{}, &fakeVariants{})

	form := validForm()
	form.Category = "Jobs"
	listing, err := svc.SubmitListing(context.Background(), 7, form, nil, nil)
	if err != nil {
		t.Fatalf("SubmitListing: %v", err)
	}
	if listing.ImageURL != categoryPlaceholders["jobs"] {
		t.Errorf("expected jobs placeholder, got %q", listing.ImageURL)
	}
}

func TestMutationsRequireOwnership(t *testing.T) {
	store := newFakeStore(models.Listing{ID: 1, UserID: 7, Status: models.ListingStatusActive})
	svc := newService(store, &fakeScreener{}, &fakeVariants{})

	if err := svc.MarkSold(context.Background(), 8, 1); !errors.Is(err, models.ErrNotOwner) {
		t.Errorf("MarkSold by non-owner: got %v", err)
	}
	if err := svc.DeleteListing(context.Background(), 8, 1); !errors.Is(err, models.ErrNotOwner) {
		t.Errorf("DeleteListing by non-owner: got %v", err)
	}
	if err := svc.MarkSold(context.Background(), 7, 1); err != nil {
		t.Errorf("MarkSold by owner: got %v", err)
	}
	if store.listings[1].Status != models.ListingStatusSold {
		t.Errorf("status after MarkSold: got %q", store.listings[1].Status)
	}
}

func TestUpdateListingKeepsIdentityAndOwnership(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	store := newFakeStore(models.Listing{ID: 3, UserID: 7, Status: models.ListingStatusActive, CreatedAt: created})
	svc := newService(store, &fakeScreener{}, &fakeVariants{})

	form := validForm()
	if _, err := svc.UpdateListing(context.Background(), 9, 3, form, nil, nil, nil); !errors.Is(err, models.ErrNotOwner) {
		t.Fatalf("update by non-owner: got %v", err)
	}

	kept := []models.ImageVariants{{Thumb: "t", Medium: "m", Full: "f", Original: "o"}}
	updated, err := svc.UpdateListing(context.Background(), 7, 3, form, kept, nil, nil)
	if err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	if updated.ID != 3 || !updated.CreatedAt.Equal(created) {
		t.Errorf("identity fields must survive an update: %+v", updated)
	}
	if len(updated.Variants) != 1 || updated.Variants[0].Medium != "m" {
		t.Errorf("kept variants must pass through untouched: %+v", updated.Variants)
	}
	if updated.SellerName != "Aigerim S." {
		t.Errorf("an edit must re-resolve the seller name, got %q", updated.SellerName)
	}
}

func TestUpdateListingRemovesDroppedVariants(t *testing.T) {
	keptSet := models.ImageVariants{Thumb: "kt", Medium: "km", Full: "kf", Original: "ko"}
	droppedSet := models.ImageVariants{Thumb: "dt", Medium: "dm", Full: "df", Original: "do"}
	store := newFakeStore(models.Listing{
		ID: 5, UserID: 7, Status: models.ListingStatusActive,
		Variants: []models.ImageVariants{keptSet, droppedSet},
	})
	variants := &fakeVariants{}
	svc := newService(store, &fakeScreener{}, variants)

	updated, err := svc.UpdateListing(context.Background(), 7, 5, validForm(), []models.ImageVariants{keptSet}, nil, nil)
	if err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	if len(updated.Variants) != 1 {
		t.Fatalf("expected one kept set, got %+v", updated.Variants)
	}
	if len(variants.removed) != 1 || variants.removed[0] != droppedSet {
		t.Errorf("only the dropped set's objects may be removed, got %+v", variants.removed)
	}
}

func TestDeleteListingRemovesStoredVariants(t *testing.T) {
	set := models.ImageVariants{Thumb: "t", Medium: "m", Full: "f", Original: "o"}
	store := newFakeStore(models.Listing{
		ID: 4, UserID: 7, Status: models.ListingStatusActive,
		Variants: []models.ImageVariants{set},
	})
	variants := &fakeVariants{}
	svc := newService(store, &fakeScreener{}, variants)

	if err := svc.DeleteListing(context.Background(), 7, 4); err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}
	if _, ok := store.listings[4]; ok {
		t.Error("listing row must be gone")
	}
	if len(variants.removed) != 1 || variants.removed[0] != set {
		t.Errorf("stored renditions must be removed with the listing, got %+v", variants.removed)
	}
}
