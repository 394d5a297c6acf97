package feed

import (
	"testing"
	"time"

	"liminmarket/internal/models"
)

func pricedListings(prices ...float64) []models.Listing {
	out := make([]models.Listing, len(prices))
	for i, p := range prices {
		out[i] = models.Listing{ID: i + 1, Price: p}
	}
	return out
}

func prices(listings []models.Listing) []float64 {
	out := make([]float64, len(listings))
	for i, l := range listings {
		out[i] = l.Price
	}
	return out
}

func equalPrices(a []float64, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPriceBuckets(t *testing.T) {
	listings := pricedListings(0, 25, 75, 150)

	if got := prices(HotDeals(listings)); !equalPrices(got, []float64{25, 75}) {
		t.Errorf("hot deals: got %v, want [25 75]", got)
	}
	if got := prices(Free(listings)); !equalPrices(got, []float64{0}) {
		t.Errorf("free: got %v, want [0]", got)
	}
	if got := prices(DollarBucket(listings)); !equalPrices(got, []float64{25}) {
		t.Errorf("dollar bucket: got %v, want [25]", got)
	}
}

func TestDollarBucketIncludesBoundary(t *testing.T) {
	got := prices(DollarBucket(pricedListings(50, 50.01)))
	if !equalPrices(got, []float64{50}) {
		t.Errorf("dollar bucket boundary: got %v, want [50]", got)
	}
}

func TestSortPriceLow(t *testing.T) {
	got := Apply(pricedListings(50, 10, 30), models.ListingFilterRequest{SortOption: SortPriceLow})
	if !equalPrices(prices(got), []float64{10, 30, 50}) {
		t.Errorf("price-low: got %v", prices(got))
	}
}

func TestSortExpiringMissingExpiryLast(t *testing.T) {
	soon := time.Now().Add(time.Hour)
	later := time.Now().Add(48 * time.Hour)
	listings := []models.Listing{
		{ID: 1, ExpiresAt: nil},
		{ID: 2, ExpiresAt: &later},
		{ID: 3, ExpiresAt: &soon},
	}

	got := Apply(listings, models.ListingFilterRequest{SortOption: SortExpiring})
	if got[0].ID != 3 || got[1].ID != 2 || got[2].ID != 1 {
		t.Errorf("expiring sort order wrong: %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestSortNewestFirst(t *testing.T) {
	now := time.Now()
	listings := []models.Listing{
		{ID: 1, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 2, CreatedAt: now},
		{ID: 3, CreatedAt: now.Add(-time.Hour)},
	}
	got := Apply(listings, models.ListingFilterRequest{SortOption: SortNewest})
	if got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 1 {
		t.Errorf("newest sort order wrong: %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestSortStability(t *testing.T) {
	// Equal prices keep their original relative order; no hidden tie-break.
	listings := []models.Listing{
		{ID: 1, Price: 10},
		{ID: 2, Price: 10},
		{ID: 3, Price: 5},
		{ID: 4, Price: 10},
	}
	got := Apply(listings, models.ListingFilterRequest{SortOption: SortPriceLow})
	wantIDs := []int{3, 1, 2, 4}
	for i, w := range wantIDs {
		if got[i].ID != w {
			t.Fatalf("stability broken: got IDs %v", idsOf(got))
		}
	}
}

func idsOf(listings []models.Listing) []int {
	out := make([]int, len(listings))
	for i, l := range listings {
		out[i] = l.ID
	}
	return out
}

func TestWantedFilter(t *testing.T) {
	listings := []models.Listing{
		{ID: 1, ListingMode: models.ListingModeOffering},
		{ID: 2, ListingMode: models.ListingModeSeeking},
	}
	got := Apply(listings, models.ListingFilterRequest{ActiveFilter: FilterWanted})
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("wanted filter: got %v", idsOf(got))
	}
}

func TestNearbyFilter(t *testing.T) {
	listings := []models.Listing{
		{ID: 1, Location: "Springfield"},
		{ID: 2, Location: "Shelbyville"},
	}
	got := Apply(listings, models.ListingFilterRequest{ActiveFilter: FilterNearby, Location: "Springfield"})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("nearby filter: got %v", idsOf(got))
	}
}

func TestUnder50Filter(t *testing.T) {
	listings := pricedListings(0, 25, 50, 75)

	got := Apply(listings, models.ListingFilterRequest{ActiveFilter: FilterUnder50})
	if !equalPrices(prices(got), []float64{25}) {
		t.Errorf("under-50 excludes free by default: got %v", prices(got))
	}
}

func TestCategoryAndNamedFilterCompose(t *testing.T) {
	listings := []models.Listing{
		{ID: 1, Category: "Electronics", ListingType: "wholesale"},
		{ID: 2, Category: "Electronics"},
		{ID: 3, Category: "Furniture", ListingType: "wholesale"},
	}
	got := Apply(listings, models.ListingFilterRequest{Category: "Electronics", ActiveFilter: FilterWholesale})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("composed filter: got %v", idsOf(got))
	}
}

func TestCategoryNameActsAsFilter(t *testing.T) {
	listings := []models.Listing{
		{ID: 1, Category: "Vehicles"},
		{ID: 2, Category: "Electronics"},
	}
	got := Apply(listings, models.ListingFilterRequest{ActiveFilter: "vehicles"})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("category-name filter: got %v", idsOf(got))
	}
}

func TestPriceRangeInclusiveBounds(t *testing.T) {
	from, to := 10.0, 30.0
	got := Apply(pricedListings(5, 10, 20, 30, 31), models.ListingFilterRequest{PriceFrom: &from, PriceTo: &to, SortOption: SortPriceLow})
	if !equalPrices(prices(got), []float64{10, 20, 30}) {
		t.Errorf("price range: got %v", prices(got))
	}
}

func TestFreeOnlyOverridesPriceRange(t *testing.T) {
	from := 10.0
	got := Apply(pricedListings(0, 10, 20), models.ListingFilterRequest{FreeOnly: true, PriceFrom: &from})
	if !equalPrices(prices(got), []float64{0}) {
		t.Errorf("free-only: got %v", prices(got))
	}
}
