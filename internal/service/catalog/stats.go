package catalog

import (
	"sort"

	"github.com/crunchfoods/crunch-cli/internal/domain"
)

// BuildStats summarizes the collection the way the home screen counters
// do: totals, verified share, and per-city / per-diet breakdowns.
func BuildStats(listings []domain.Restaurant) map[string]any {
	verified := 0
	rated := 0
	ratingSum := 0.0
	cityCounts := map[string]int{}
	dietCounts := map[string]int{}
	priceCounts := map[string]int{}

	for _, r := range listings {
		if r.Verified() {
			verified++
		}
		if r.Rating > 0 {
			rated++
			ratingSum += r.Rating
		}
		if r.City != "" {
			cityCounts[r.City]++
		}
		for _, tag := range r.DietaryTags {
			dietCounts[tag]++
		}
		if r.PriceRange != "" {
			priceCounts[r.PriceRange]++
		}
	}

	averageRating := 0.0
	if rated > 0 {
		averageRating = ratingSum / float64(rated)
	}

	return map[string]any{
		"total":          len(listings),
		"verified":       verified,
		"average_rating": averageRating,
		"cities":         countRows(cityCounts),
		"dietary_tags":   countRows(dietCounts),
		"price_ranges":   countRows(priceCounts),
	}
}

// countRows renders a count map as rows ordered by count descending,
// then name, so table output is stable.
func countRows(counts map[string]int) []map[string]any {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	rows := make([]map[string]any, 0, len(names))
	for _, name := range names {
		rows = append(rows, map[string]any{"name": name, "count": counts[name]})
	}
	return rows
}
