package catalog

import (
	"testing"

	"github.com/crunchfoods/crunch-cli/internal/domain"
)

func TestBuildStats(t *testing.T) {
	all := []domain.Restaurant{
		listing("A", "Miami", []string{"Keto"}, withRating(4.0), withPrice("$$"), withVerification(domain.VerificationTeamVisited)),
		listing("B", "Miami", []string{"Keto", "Paleo"}, withRating(5.0), withPrice("$")),
		listing("C", "Austin", nil, withPrice("$$")),
	}

	stats := BuildStats(all)

	if got := stats["total"]; got != 3 {
		t.Fatalf("unexpected total: %v", got)
	}
	if got := stats["verified"]; got != 1 {
		t.Fatalf("unexpected verified count: %v", got)
	}
	if got := stats["average_rating"]; got != 4.5 {
		t.Fatalf("unexpected average rating: %v", got)
	}

	cities, ok := stats["cities"].([]map[string]any)
	if !ok || len(cities) != 2 {
		t.Fatalf("unexpected cities rows: %v", stats["cities"])
	}
	if cities[0]["name"] != "Miami" || cities[0]["count"] != 2 {
		t.Fatalf("expected Miami first: %v", cities)
	}

	diets, ok := stats["dietary_tags"].([]map[string]any)
	if !ok || len(diets) != 2 {
		t.Fatalf("unexpected diet rows: %v", stats["dietary_tags"])
	}
	if diets[0]["name"] != "Keto" || diets[0]["count"] != 2 {
		t.Fatalf("expected Keto first: %v", diets)
	}

	prices, ok := stats["price_ranges"].([]map[string]any)
	if !ok || len(prices) != 2 || prices[0]["name"] != "$$" {
		t.Fatalf("unexpected price rows: %v", stats["price_ranges"])
	}
}

func TestBuildStatsEmptyCollection(t *testing.T) {
	stats := BuildStats(nil)
	if stats["total"] != 0 || stats["verified"] != 0 || stats["average_rating"] != 0.0 {
		t.Fatalf("unexpected empty stats: %v", stats)
	}
}

func TestBuildRestaurantDetailOptionalSections(t *testing.T) {
	lat, lon := 25.7617, -80.1918
	r := listing("A", "Miami", []string{"Keto"}, withVerification(domain.VerificationTeamCalled))
	r.Latitude = &lat
	r.Longitude = &lon
	r.VerificationDate = "2024-03-10"

	detail := BuildRestaurantDetail(r, "https://maps.example/static.png")
	verification, ok := detail["verification"].(map[string]any)
	if !ok || verification["verified"] != true || verification["method"] != string(domain.VerificationTeamCalled) {
		t.Fatalf("unexpected verification block: %v", detail["verification"])
	}
	if verification["date"] != "2024-03-10" {
		t.Fatalf("unexpected verification date: %v", verification["date"])
	}
	if _, ok := detail["coordinates"]; !ok {
		t.Fatalf("expected coordinates block")
	}
	if detail["map_url"] != "https://maps.example/static.png" {
		t.Fatalf("unexpected map url: %v", detail["map_url"])
	}

	bare := BuildRestaurantDetail(listing("B", "", nil), "")
	if _, ok := bare["coordinates"]; ok {
		t.Fatalf("coordinates should be omitted without both halves")
	}
	if _, ok := bare["map_url"]; ok {
		t.Fatalf("map url should be omitted when empty")
	}
	verification, ok = bare["verification"].(map[string]any)
	if !ok || verification["verified"] != false || verification["method"] != nil {
		t.Fatalf("unexpected unverified block: %v", bare["verification"])
	}
}
