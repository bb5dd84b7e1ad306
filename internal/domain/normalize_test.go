package domain

import (
	"testing"
	"time"
)

func TestNormalizeRestaurantFullRow(t *testing.T) {
	row := map[string]any{
		"id":                  "rest-1",
		"name":                "  Bone Broth Kitchen ",
		"address":             "123 Greenwich St",
		"neighborhood":        "Tribeca",
		"city":                "nyc",
		"cuisine":             "American",
		"hours":               "Mon-Fri 9-5",
		"phone":               "+1 212 555 0100",
		"email":               "hello@bonebroth.example",
		"website":             "https://bonebroth.example",
		"price_range":         "$$",
		"dietary_tags":        []any{"gf", "Keto", "keto"},
		"oils_used":           "Tallow, Olive Oil",
		"oils_avoided":        []any{"Canola"},
		"verification_method": "Team visited the kitchen in March",
		"verification_date":   "2024-03-10T12:00:00Z",
		"rating":              4.6,
		"review_count":        float64(18),
		"image_url":           "https://cdn.example/bone-broth.jpg",
		"latitude":            40.7163,
		"longitude":           -74.0086,
		"outdoor_seating":     true,
		"last_updated":        "2024-04-01",
	}

	r := NormalizeRestaurant(row)

	if r.ID != "rest-1" {
		t.Fatalf("expected id rest-1, got %q", r.ID)
	}
	if r.Name != "Bone Broth Kitchen" {
		t.Fatalf("expected trimmed name, got %q", r.Name)
	}
	if r.City != "New York City" {
		t.Fatalf("expected canonical city, got %q", r.City)
	}
	if len(r.DietaryTags) != 2 || r.DietaryTags[0] != "Gluten-Free" || r.DietaryTags[1] != "Keto" {
		t.Fatalf("expected canonical deduplicated tags, got %v", r.DietaryTags)
	}
	if len(r.OilsUsed) != 2 || r.OilsUsed[0] != "Tallow" {
		t.Fatalf("expected delimited oils split, got %v", r.OilsUsed)
	}
	if r.VerificationMethod != VerificationTeamVisited {
		t.Fatalf("expected visited classification, got %q", r.VerificationMethod)
	}
	if r.VerificationDate != "2024-03-10" {
		t.Fatalf("expected date-only verification date, got %q", r.VerificationDate)
	}
	if !r.Verified() {
		t.Fatalf("expected visited listing to count as verified")
	}
	if r.PriceRange != "$$" {
		t.Fatalf("expected price range $$, got %q", r.PriceRange)
	}
	if r.ImageURL != "https://cdn.example/bone-broth.jpg" {
		t.Fatalf("expected primary image kept, got %q", r.ImageURL)
	}
	if r.Latitude == nil || *r.Latitude != 40.7163 {
		t.Fatalf("expected latitude pointer, got %v", r.Latitude)
	}
	if r.OutdoorSeating == nil || !*r.OutdoorSeating {
		t.Fatalf("expected outdoor seating flag set")
	}
	if r.FamilyFriendly != nil {
		t.Fatalf("expected absent amenity to stay nil, got %v", r.FamilyFriendly)
	}
	want := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	if !r.LastUpdated.Equal(want) {
		t.Fatalf("expected last updated %v, got %v", want, r.LastUpdated)
	}
}

func TestNormalizeRestaurantNeverPanicsOnJunk(t *testing.T) {
	rows := []map[string]any{
		nil,
		{},
		{"id": map[string]any{"weird": true}},
		{"name": 42.0, "rating": "not a number", "price_range": []any{"$"}},
		{"dietary_tags": map[string]any{"unexpected": []any{1, 2}}},
		{"images": "{broken json", "image_url": "not-a-url"},
		{"recommended_dishes": 12.5, "social_links": true},
		{"latitude": "abc", "outdoor_seating": "maybe"},
		{"last_updated": "yesterday", "verification_date": []any{}},
		{"city": 404.0, "address": nil, "hours": map[string]any{"mon": 1.0}},
	}

	for i, row := range rows {
		r := NormalizeRestaurant(row)
		if r.ImageURL == "" {
			t.Fatalf("row %d: expected placeholder or image, got empty", i)
		}
		if r.LastUpdated.IsZero() {
			t.Fatalf("row %d: expected last updated fallback, got zero", i)
		}
		if r.Rating < 0 || r.Rating > 5 {
			t.Fatalf("row %d: rating out of range: %v", i, r.Rating)
		}
	}
}

func TestNormalizeRestaurantImagePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		row     map[string]any
		want    string
		gallery int
	}{
		{
			name: "absolute primary wins",
			row: map[string]any{
				"image_url": "https://cdn.example/a.jpg",
				"images":    []any{"https://cdn.example/b.jpg"},
			},
			want:    "https://cdn.example/a.jpg",
			gallery: 2,
		},
		{
			name: "relative primary falls through to gallery",
			row: map[string]any{
				"image_url": "/uploads/a.jpg",
				"images":    []any{"https://cdn.example/b.jpg"},
			},
			want:    "https://cdn.example/b.jpg",
			gallery: 1,
		},
		{
			name: "array of objects",
			row: map[string]any{
				"images": []any{
					map[string]any{"src": "https://cdn.example/c.jpg"},
					map[string]any{"url": "https://cdn.example/d.jpg"},
				},
			},
			want:    "https://cdn.example/c.jpg",
			gallery: 2,
		},
		{
			name: "json encoded string column",
			row: map[string]any{
				"images": `["https://cdn.example/e.jpg","https://cdn.example/f.jpg"]`,
			},
			want:    "https://cdn.example/e.jpg",
			gallery: 2,
		},
		{
			name: "object with nested images array",
			row: map[string]any{
				"images": map[string]any{"images": []any{"https://cdn.example/g.jpg"}},
			},
			want:    "https://cdn.example/g.jpg",
			gallery: 1,
		},
		{
			name: "plain string column",
			row: map[string]any{
				"images": "https://cdn.example/h.jpg",
			},
			want:    "https://cdn.example/h.jpg",
			gallery: 1,
		},
		{
			name:    "placeholder when nothing resolves",
			row:     map[string]any{"image_url": "uploads/x.jpg", "images": []any{"nope"}},
			want:    PlaceholderImageURL,
			gallery: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NormalizeRestaurant(tc.row)
			if r.ImageURL != tc.want {
				t.Fatalf("expected image %q, got %q", tc.want, r.ImageURL)
			}
			if len(r.ImageURLs) != tc.gallery {
				t.Fatalf("expected %d gallery entries, got %v", tc.gallery, r.ImageURLs)
			}
		})
	}
}

func TestNormalizeRestaurantCityInference(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
		want string
	}{
		{
			name: "explicit alias",
			row:  map[string]any{"city": "Brooklyn"},
			want: "New York City",
		},
		{
			name: "embedded city join",
			row:  map[string]any{"cities": map[string]any{"name": "Austin"}},
			want: "Austin",
		},
		{
			name: "free text city with known substring",
			row:  map[string]any{"city": "Downtown Miami area"},
			want: "Miami",
		},
		{
			name: "unknown explicit city resolves empty",
			row:  map[string]any{"city": "Philadelphia"},
			want: "",
		},
		{
			name: "inferred from address when city missing",
			row:  map[string]any{"address": "500 Congress Ave, Austin, TX"},
			want: "Austin",
		},
		{
			name: "inferred from neighborhood",
			row:  map[string]any{"neighborhood": "Wynwood"},
			want: "Miami",
		},
		{
			name: "no signal stays empty",
			row:  map[string]any{"address": "1 Main St, Boise"},
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NormalizeRestaurant(tc.row)
			if r.City != tc.want {
				t.Fatalf("expected city %q, got %q", tc.want, r.City)
			}
		})
	}
}

func TestClassifyVerification(t *testing.T) {
	tests := []struct {
		input string
		want  VerificationMethod
	}{
		{"", ""},
		{"   ", ""},
		{"Crunch Team Visited", VerificationTeamVisited},
		{"we stopped by in person", VerificationTeamVisited},
		{"Phone call with the owner", VerificationTeamCalled},
		{"spoke with the chef", VerificationTeamCalled},
		{"submitted through the owner portal", VerificationOwner},
		{"Owner Submitted", VerificationOwner},
	}

	for _, tc := range tests {
		if got := ClassifyVerification(tc.input); got != tc.want {
			t.Fatalf("ClassifyVerification(%q): want %q, got %q", tc.input, tc.want, got)
		}
	}
}

func TestNormalizeRestaurantPriceRange(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{"$", "$"},
		{" $$$ ", "$$$"},
		{"$$$$$", ""},
		{"cheap", ""},
		{float64(2), "$$"},
		{float64(0), ""},
		{float64(9), ""},
	}

	for _, tc := range tests {
		r := NormalizeRestaurant(map[string]any{"price_range": tc.input})
		if r.PriceRange != tc.want {
			t.Fatalf("price_range %v: want %q, got %q", tc.input, tc.want, r.PriceRange)
		}
	}
}

func TestNormalizeRestaurantClampsRating(t *testing.T) {
	r := NormalizeRestaurant(map[string]any{"rating": 7.2})
	if r.Rating != 5 {
		t.Fatalf("expected rating clamped to 5, got %v", r.Rating)
	}
	r = NormalizeRestaurant(map[string]any{"rating": -1.0})
	if r.Rating != 0 {
		t.Fatalf("expected rating clamped to 0, got %v", r.Rating)
	}
}

func TestNormalizeRestaurantDietaryTagShapes(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
		want []string
	}{
		{
			name: "delimited string",
			row:  map[string]any{"dietary_tags": "keto; gluten free | paleo"},
			want: []string{"Keto", "Gluten-Free", "Paleo"},
		},
		{
			name: "json encoded array",
			row:  map[string]any{"dietary_tags": `["vegan","plant based"]`},
			want: []string{"Vegan"},
		},
		{
			name: "association rows from a relational embed",
			row: map[string]any{
				"dietary_tags": []any{
					map[string]any{"dietary_tags": map[string]any{"name": "Seed Oil Free"}},
					map[string]any{"dietary_tags": map[string]any{"name": "Whole 30"}},
				},
			},
			want: []string{"Seed Oil Free", "Whole30"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NormalizeRestaurant(tc.row)
			if len(r.DietaryTags) != len(tc.want) {
				t.Fatalf("expected tags %v, got %v", tc.want, r.DietaryTags)
			}
			for i := range tc.want {
				if r.DietaryTags[i] != tc.want[i] {
					t.Fatalf("expected tags %v, got %v", tc.want, r.DietaryTags)
				}
			}
		})
	}
}

func TestNormalizeRestaurantDishShapes(t *testing.T) {
	r := NormalizeRestaurant(map[string]any{
		"recommended_dishes": []any{
			"Ribeye",
			map[string]any{"name": "Duck Fat Fries", "notes": "cooked in tallow"},
		},
	})
	if len(r.RecommendedDishes) != 2 {
		t.Fatalf("expected 2 dishes, got %v", r.RecommendedDishes)
	}
	if r.RecommendedDishes[1].Notes != "cooked in tallow" {
		t.Fatalf("expected dish notes kept, got %+v", r.RecommendedDishes[1])
	}

	r = NormalizeRestaurant(map[string]any{
		"recommended_dishes": map[string]any{"Burger": "no seed oils", "Avocado Toast": ""},
	})
	if len(r.RecommendedDishes) != 2 || r.RecommendedDishes[0].Name != "Avocado Toast" {
		t.Fatalf("expected name-keyed object decoded in sorted order, got %v", r.RecommendedDishes)
	}

	r = NormalizeRestaurant(map[string]any{
		"recommended_dishes": `[{"title":"Pastured Eggs Benedict"}]`,
	})
	if len(r.RecommendedDishes) != 1 || r.RecommendedDishes[0].Name != "Pastured Eggs Benedict" {
		t.Fatalf("expected json string dishes decoded, got %v", r.RecommendedDishes)
	}
}

func TestNormalizeRestaurantSocialLinkShapes(t *testing.T) {
	r := NormalizeRestaurant(map[string]any{
		"social_links": map[string]any{
			"twitter":   "https://x.com/crunchspot",
			"instagram": "https://instagram.com/crunchspot",
		},
	})
	if len(r.SocialLinks) != 2 {
		t.Fatalf("expected 2 links, got %v", r.SocialLinks)
	}
	if r.SocialLinks[0].Platform != "instagram" {
		t.Fatalf("expected platform order to put instagram first, got %v", r.SocialLinks)
	}

	r = NormalizeRestaurant(map[string]any{
		"social_links": []any{"https://www.tiktok.com/@crunchspot"},
	})
	if len(r.SocialLinks) != 1 || r.SocialLinks[0].Platform != "tiktok" {
		t.Fatalf("expected platform inferred from host, got %v", r.SocialLinks)
	}

	r = NormalizeRestaurant(map[string]any{
		"social_links": `{"url":"https://unknown.example/profile"}`,
	})
	if len(r.SocialLinks) != 1 || r.SocialLinks[0].Platform != "website" {
		t.Fatalf("expected unknown host to fall back to website, got %v", r.SocialLinks)
	}
}

func TestNormalizePendingSubmission(t *testing.T) {
	row := map[string]any{
		"id":         "sub-9",
		"name":       "Raw Bar",
		"city":       "sf bay area",
		"notes":      "friend recommended",
		"status":     "Pending",
		"created_at": "2024-05-01T09:30:00Z",
	}

	p := NormalizePendingSubmission(row)
	if p.ID != "sub-9" || p.Name != "Raw Bar" {
		t.Fatalf("unexpected submission: %+v", p)
	}
	if p.City != "San Francisco" {
		t.Fatalf("expected canonical city, got %q", p.City)
	}
	if p.Status != SubmissionPending {
		t.Fatalf("expected pending status, got %q", p.Status)
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("expected created_at parsed")
	}
}

func TestNormalizeRestaurantTagListsAreNeverNil(t *testing.T) {
	r := NormalizeRestaurant(map[string]any{"id": "1", "name": "Bare Row"})
	if r.DietaryTags == nil || r.OilsUsed == nil || r.OilsAvoided == nil {
		t.Fatalf("tag lists must decode to arrays even when absent: %+v", r)
	}
}
