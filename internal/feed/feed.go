package feed

import (
	"sort"
	"strings"
	"time"

	"liminmarket/internal/models"
)

// Sort options accepted by Apply.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortExpiring  = "expiring"
)

// Named filters selectable by the client.
const (
	FilterWanted    = "wanted"
	FilterNearby    = "nearby"
	FilterUnder50   = "under-50"
	FilterWholesale = "wholesale"
)

// Listings without an expiry sort after everything else.
var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// HotDeals returns listings priced strictly between 0 and 100.
func HotDeals(listings []models.Listing) []models.Listing {
	return filter(listings, func(l models.Listing) bool {
		return l.Price > 0 && l.Price < 100
	})
}

// DollarBucket returns listings priced in (0, 50].
func DollarBucket(listings []models.Listing) []models.Listing {
	return filter(listings, func(l models.Listing) bool {
		return l.Price > 0 && l.Price <= 50
	})
}

// Free returns listings with the zero-price sentinel.
func Free(listings []models.Listing) []models.Listing {
	return filter(listings, func(l models.Listing) bool {
		return l.Price == 0
	})
}

// Apply runs the composable filter pipeline and then sorts. Stages run in a
// fixed order: category equality, the named active filter, then either the
// free-only filter or the inclusive price range, then the comparator. The
// sort is stable and intentionally has no secondary tie-break key.
func Apply(listings []models.Listing, req models.ListingFilterRequest) []models.Listing {
	result := listings

	if req.Category != "" {
		result = filter(result, func(l models.Listing) bool {
			return l.Category == req.Category
		})
	}

	if req.ActiveFilter != "" {
		result = applyNamedFilter(result, req)
	}

	if req.FreeOnly {
		result = Free(result)
	} else if req.PriceFrom != nil || req.PriceTo != nil {
		result = filter(result, func(l models.Listing) bool {
			if req.PriceFrom != nil && l.Price < *req.PriceFrom {
				return false
			}
			if req.PriceTo != nil && l.Price > *req.PriceTo {
				return false
			}
			return true
		})
	}

	return sortListings(result, req.SortOption)
}

func applyNamedFilter(listings []models.Listing, req models.ListingFilterRequest) []models.Listing {
	switch req.ActiveFilter {
	case FilterWanted:
		return filter(listings, func(l models.Listing) bool {
			return l.ListingMode == models.ListingModeSeeking
		})
	case FilterNearby:
		return filter(listings, func(l models.Listing) bool {
			return l.Location == req.Location
		})
	case FilterUnder50:
		return filter(listings, func(l models.Listing) bool {
			if req.FreeOnly {
				return l.Price >= 0 && l.Price < 50
			}
			return l.Price > 0 && l.Price < 50
		})
	case FilterWholesale:
		return filter(listings, func(l models.Listing) bool {
			return l.ListingType == FilterWholesale
		})
	default:
		// Any other name is treated as a category filter.
		return filter(listings, func(l models.Listing) bool {
			return strings.EqualFold(l.Category, req.ActiveFilter)
		})
	}
}

func sortListings(listings []models.Listing, option string) []models.Listing {
	out := make([]models.Listing, len(listings))
	copy(out, listings)

	switch option {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortExpiring:
		sort.SliceStable(out, func(i, j int) bool {
			return expiryOf(out[i]).Before(expiryOf(out[j]))
		})
	case SortNewest:
		fallthrough
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

func expiryOf(l models.Listing) time.Time {
	if l.ExpiresAt == nil {
		return farFuture
	}
	return *l.ExpiresAt
}

func filter(listings []models.Listing, keep func(models.Listing) bool) []models.Listing {
	var out []models.Listing
	for _, l := range listings {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
