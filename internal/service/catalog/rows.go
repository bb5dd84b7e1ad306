package catalog

import "github.com/crunchfoods/crunch-cli/internal/domain"

// BuildListingRows shapes the visible set for envelope output.
func BuildListingRows(listings []domain.Restaurant) []map[string]any {
	rows := make([]map[string]any, 0, len(listings))
	for _, r := range listings {
		rows = append(rows, map[string]any{
			"id":           r.ID,
			"name":         r.Name,
			"city":         r.City,
			"neighborhood": r.Neighborhood,
			"cuisine":      r.Cuisine,
			"price_range":  r.PriceRange,
			"rating":       r.Rating,
			"review_count": r.ReviewCount,
			"dietary_tags": r.DietaryTags,
			"oils_used":    r.OilsUsed,
			"verified":     r.Verified(),
			"last_updated": r.FormatLastUpdated(),
		})
	}
	return rows
}

// BuildRestaurantDetail shapes one listing for detail output. The map
// link is included only when the map capability produced one.
func BuildRestaurantDetail(r domain.Restaurant, mapURL string) map[string]any {
	dishes := make([]map[string]any, 0, len(r.RecommendedDishes))
	for _, dish := range r.RecommendedDishes {
		dishes = append(dishes, map[string]any{"name": dish.Name, "notes": dish.Notes})
	}
	links := make([]map[string]any, 0, len(r.SocialLinks))
	for _, link := range r.SocialLinks {
		links = append(links, map[string]any{"platform": link.Platform, "url": link.URL})
	}

	var methodValue any
	if r.VerificationMethod != "" {
		methodValue = string(r.VerificationMethod)
	}
	var dateValue any
	if r.VerificationDate != "" {
		dateValue = r.VerificationDate
	}

	data := map[string]any{
		"id":           r.ID,
		"name":         r.Name,
		"address":      r.Address,
		"neighborhood": r.Neighborhood,
		"city":         r.City,
		"cuisine":      r.Cuisine,
		"hours":        r.Hours,
		"phone":        r.Phone,
		"email":        r.Email,
		"website":      r.Website,
		"price_range":  r.PriceRange,
		"dietary_tags": r.DietaryTags,
		"oils_used":    r.OilsUsed,
		"oils_avoided": r.OilsAvoided,
		"verification": map[string]any{
			"verified": r.Verified(),
			"method":   methodValue,
			"date":     dateValue,
		},
		"rating":             r.Rating,
		"review_count":       r.ReviewCount,
		"image_url":          r.ImageURL,
		"image_urls":         r.ImageURLs,
		"recommended_dishes": dishes,
		"social_links":       links,
		"last_updated":       r.FormatLastUpdated(),
	}
	if r.Latitude != nil && r.Longitude != nil {
		data["coordinates"] = map[string]any{
			"latitude":  *r.Latitude,
			"longitude": *r.Longitude,
		}
	}
	if mapURL != "" {
		data["map_url"] = mapURL
	}
	return data
}
