package domain

import (
	"fmt"
	"strings"
)

// FormatPriceRange renders the price tier.
func (r Restaurant) FormatPriceRange() string {
	if r.PriceRange == "" {
		return "-"
	}
	return r.PriceRange
}

// FormatRating renders the rating with its review volume.
func (r Restaurant) FormatRating() string {
	if r.Rating <= 0 && r.ReviewCount == 0 {
		return "(Not yet rated)"
	}
	if r.ReviewCount == 0 {
		return fmt.Sprintf("%.1f", r.Rating)
	}
	return fmt.Sprintf("%.1f (%d reviews)", r.Rating, r.ReviewCount)
}

// FormatDietaryTags renders the canonical tag list.
func (r Restaurant) FormatDietaryTags() string {
	if len(r.DietaryTags) == 0 {
		return "-"
	}
	return strings.Join(r.DietaryTags, ", ")
}

// FormatOils renders the kitchen oil list.
func (r Restaurant) FormatOils() string {
	if len(r.OilsUsed) == 0 {
		return "-"
	}
	return strings.Join(r.OilsUsed, ", ")
}

// FormatVerification renders the verification badge line.
func (r Restaurant) FormatVerification() string {
	if r.VerificationMethod == "" {
		return "(Unverified)"
	}
	if r.VerificationDate == "" {
		return string(r.VerificationMethod)
	}
	return fmt.Sprintf("%s (%s)", r.VerificationMethod, r.VerificationDate)
}

// FormatCity renders the market, falling back to the neighborhood.
func (r Restaurant) FormatCity() string {
	if r.City != "" {
		return r.City
	}
	if r.Neighborhood != "" {
		return r.Neighborhood
	}
	return "-"
}

// FormatHours renders the posted hours.
func (r Restaurant) FormatHours() string {
	if r.Hours == "" {
		return "-"
	}
	return r.Hours
}

// FormatLastUpdated renders the freshness date.
func (r Restaurant) FormatLastUpdated() string {
	if r.LastUpdated.IsZero() {
		return "-"
	}
	return r.LastUpdated.Format("2006-01-02")
}

// FormatAmenities renders the known amenity flags, skipping unknowns.
func (r Restaurant) FormatAmenities() string {
	parts := make([]string, 0, 4)
	add := func(flag *bool, label string) {
		if flag != nil && *flag {
			parts = append(parts, label)
		}
	}
	add(r.OutdoorSeating, "outdoor seating")
	add(r.Delivery, "delivery")
	add(r.FamilyFriendly, "family friendly")
	add(r.CeliacSafe, "celiac safe")
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

// FormatDishes renders the recommended dish list.
func (r Restaurant) FormatDishes() string {
	if len(r.RecommendedDishes) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(r.RecommendedDishes))
	for _, dish := range r.RecommendedDishes {
		if dish.Notes == "" {
			parts = append(parts, dish.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", dish.Name, dish.Notes))
	}
	return strings.Join(parts, ", ")
}

// FormatSocialLinks renders platform: url pairs.
func (r Restaurant) FormatSocialLinks() string {
	if len(r.SocialLinks) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(r.SocialLinks))
	for _, link := range r.SocialLinks {
		parts = append(parts, fmt.Sprintf("%s: %s", link.Platform, link.URL))
	}
	return strings.Join(parts, ", ")
}

// FormatCoordinates renders the map position.
func (r Restaurant) FormatCoordinates() string {
	if r.Latitude == nil || r.Longitude == nil {
		return "-"
	}
	return fmt.Sprintf("%.5f, %.5f", *r.Latitude, *r.Longitude)
}

// FormatNotes renders submission notes clipped for table cells.
func (p PendingSubmission) FormatNotes() string {
	if p.Notes == "" {
		return "-"
	}
	if len(p.Notes) > 60 {
		return p.Notes[:60] + "..."
	}
	return p.Notes
}

// FormatCreatedAt renders the submission date.
func (p PendingSubmission) FormatCreatedAt() string {
	if p.CreatedAt.IsZero() {
		return "-"
	}
	return p.CreatedAt.Format("2006-01-02")
}
