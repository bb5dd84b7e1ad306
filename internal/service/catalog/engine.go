package catalog

import (
	"sort"
	"strings"

	"github.com/crunchfoods/crunch-cli/internal/domain"
)

// Apply computes the visible listing set from the full collection and the
// active refinements. It is a pure function: the input slice is never
// mutated and identical inputs always produce identical output, so it can
// be re-run on every state change.
func Apply(
	listings []domain.Restaurant,
	selectedCity string,
	query string,
	filters domain.Filters,
	sortMode Sort,
) []domain.Restaurant {
	canonicalCity := ""
	if strings.TrimSpace(selectedCity) != "" {
		canonicalCity = domain.CanonicalCity(selectedCity)
	}
	loweredQuery := strings.ToLower(strings.TrimSpace(query))
	selectedDiets := domain.CanonicalDietTags(filters.Diets)

	filtered := make([]domain.Restaurant, 0, len(listings))
	for _, r := range listings {
		if canonicalCity != "" && domain.CanonicalCity(r.City) != canonicalCity {
			continue
		}
		if !matchesQuery(r, loweredQuery) {
			continue
		}
		if len(selectedDiets) > 0 && !matchesAnyDiet(r, selectedDiets) {
			continue
		}
		if len(filters.Oils) > 0 && !matchesAnyOil(r, filters.Oils) {
			continue
		}
		if filters.Neighborhood != "" && r.Neighborhood != filters.Neighborhood {
			continue
		}
		if filters.PriceRange != "" && r.PriceRange != filters.PriceRange {
			continue
		}
		if filters.VerifiedOnly && !r.Verified() {
			continue
		}
		filtered = append(filtered, r)
	}

	sortListings(filtered, sortMode)
	return filtered
}

func matchesQuery(r domain.Restaurant, loweredQuery string) bool {
	if loweredQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), loweredQuery) ||
		strings.Contains(strings.ToLower(r.Cuisine), loweredQuery) ||
		strings.Contains(strings.ToLower(r.Neighborhood), loweredQuery)
}

func matchesAnyDiet(r domain.Restaurant, selected []string) bool {
	for _, tag := range selected {
		if r.HasDietaryTag(tag) {
			return true
		}
	}
	return false
}

func matchesAnyOil(r domain.Restaurant, selected []string) bool {
	for _, oil := range selected {
		if r.UsesOil(oil) {
			return true
		}
	}
	return false
}

// sortListings orders the already-copied visible set in place. Ties keep
// their fetch order; the default name mode leaves fetch order untouched
// because the backend already returns rows sorted by name.
func sortListings(listings []domain.Restaurant, sortMode Sort) {
	switch sortMode {
	case SortRating:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Rating > listings[j].Rating
		})
	case SortPrice:
		sort.SliceStable(listings, func(i, j int) bool {
			return len(listings[i].PriceRange) < len(listings[j].PriceRange)
		})
	case SortVerified:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Verified() && !listings[j].Verified()
		})
	case SortUpdated:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].LastUpdated.After(listings[j].LastUpdated)
		})
	}
}

// Neighborhoods lists the distinct neighborhoods present in the
// collection, sorted, for filter menus.
func Neighborhoods(listings []domain.Restaurant) []string {
	seen := make(map[string]struct{}, len(listings))
	out := make([]string, 0, len(listings))
	for _, r := range listings {
		if r.Neighborhood == "" {
			continue
		}
		if _, dup := seen[r.Neighborhood]; dup {
			continue
		}
		seen[r.Neighborhood] = struct{}{}
		out = append(out, r.Neighborhood)
	}
	sort.Strings(out)
	return out
}

// OilsInUse lists the distinct raw oil names present in the collection,
// sorted, for filter menus.
func OilsInUse(listings []domain.Restaurant) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range listings {
		for _, oil := range r.OilsUsed {
			if oil == "" {
				continue
			}
			if _, dup := seen[oil]; dup {
				continue
			}
			seen[oil] = struct{}{}
			out = append(out, oil)
		}
	}
	sort.Strings(out)
	return out
}
