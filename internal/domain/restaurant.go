package domain

import "time"

// VerificationMethod describes how a listing's dietary claims were checked.
type VerificationMethod string

const (
	VerificationTeamCalled  VerificationMethod = "Crunch Team Called"
	VerificationTeamVisited VerificationMethod = "Crunch Team Visited"
	VerificationOwner       VerificationMethod = "Owner Submitted"
)

// Verified reports whether the method counts as an external check by the
// Crunch team rather than a self-reported owner submission.
func (m VerificationMethod) Verified() bool {
	return m == VerificationTeamCalled || m == VerificationTeamVisited
}

// PriceTiers lists the accepted price range symbols from cheapest to priciest.
var PriceTiers = []string{"$", "$$", "$$$", "$$$$"}

// RecommendedDish is a dish the directory highlights for a listing.
type RecommendedDish struct {
	Name  string
	Notes string
}

// SocialLink points at a restaurant profile on an external platform.
type SocialLink struct {
	Platform string
	URL      string
}

// Restaurant is the normalized directory listing. Every instance is produced
// by NormalizeRestaurant; raw backend rows never travel past the gateway.
type Restaurant struct {
	ID           string
	Name         string
	Address      string
	Neighborhood string
	City         string
	Cuisine      string
	Hours        string
	Phone        string
	Email        string
	Website      string

	PriceRange  string
	DietaryTags []string
	OilsUsed    []string
	OilsAvoided []string

	VerificationMethod VerificationMethod
	VerificationDate   string

	Rating      float64
	ReviewCount int

	ImageURL  string
	ImageURLs []string

	Latitude  *float64
	Longitude *float64

	OutdoorSeating *bool
	Delivery       *bool
	FamilyFriendly *bool
	CeliacSafe     *bool

	RecommendedDishes []RecommendedDish
	SocialLinks       []SocialLink

	LastUpdated time.Time
}

// Verified reports whether the listing passed an external Crunch team check.
func (r Restaurant) Verified() bool {
	return r.VerificationMethod.Verified()
}

// HasDietaryTag reports whether the listing carries the canonical tag.
func (r Restaurant) HasDietaryTag(tag string) bool {
	want := CanonicalDiet(tag)
	for _, have := range r.DietaryTags {
		if have == want {
			return true
		}
	}
	return false
}

// UsesOil reports whether the listing names the oil in its kitchen list.
// Oils have no canonical table, so the raw spellings are compared as-is.
func (r Restaurant) UsesOil(oil string) bool {
	for _, have := range r.OilsUsed {
		if have == oil {
			return true
		}
	}
	return false
}

// SubmissionStatus tracks a pending submission through moderation.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// PendingSubmission is a community-suggested restaurant awaiting moderation.
// It carries only the fields a visitor can supply; the rest are filled with
// placeholders when the submission is approved into the public directory.
type PendingSubmission struct {
	ID           string
	Name         string
	Address      string
	Neighborhood string
	City         string
	Cuisine      string
	Phone        string
	Email        string
	Website      string
	Notes        string
	Status       SubmissionStatus
	CreatedAt    time.Time
}

// Suggestion is the payload a visitor sends from the suggest form. Name
// and address are required; everything else is optional.
type Suggestion struct {
	Name         string
	Address      string
	Neighborhood string
	City         string
	Cuisine      string
	Phone        string
	Email        string
	Website      string
	Notes        string
}
