package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
)

func TestCitiesListsEveryLaunchCity(t *testing.T) {
	deps := Dependencies{
		Directory: &testDirectoryAPI{
			cityRowsFn: func(context.Context) ([]map[string]any, error) {
				return []map[string]any{
					{"id": "city-nyc", "name": "New York City"},
					{"id": "city-atx", "name": "Austin"},
				}, nil
			},
		},
		Store: &testStateStore{},
	}

	out, err := executeCommand(deps, "cities", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}

	payload := mustJSON(t, out)
	meta := payloadMap(t, payload["meta"])
	if meta["view"] != "home" || meta["city"] != "all" {
		t.Fatalf("unexpected meta: %v", meta)
	}
	data := payloadMap(t, payload["data"])
	cities := payloadSlice(t, data["cities"])
	if len(cities) != len(domain.CityNames()) {
		t.Fatalf("expected %d cities, got %d", len(domain.CityNames()), len(cities))
	}

	listed := map[string]bool{}
	ids := map[string]string{}
	for _, value := range cities {
		entry := payloadMap(t, value)
		listed[asString(entry["name"])] = asBool(entry["listed"])
		ids[asString(entry["name"])] = asString(entry["id"])
	}
	if !listed["New York City"] || ids["New York City"] != "city-nyc" {
		t.Fatalf("expected New York City to be listed with its id, got listed=%v id=%q", listed["New York City"], ids["New York City"])
	}
	if listed["Miami"] {
		t.Fatalf("expected Miami to be unlisted without an index row")
	}
}

func TestCitiesWithCountsQueriesPerCity(t *testing.T) {
	var seenQueries []directory.RestaurantPageQuery
	deps := Dependencies{
		Directory: &testDirectoryAPI{
			cityRowsFn: func(context.Context) ([]map[string]any, error) {
				return []map[string]any{{"id": "city-nyc", "name": "New York City"}}, nil
			},
			restaurantPageFn: func(_ context.Context, query directory.RestaurantPageQuery) (directory.RestaurantPage, error) {
				seenQueries = append(seenQueries, query)
				return directory.RestaurantPage{Total: 7, HasTotal: true}, nil
			},
		},
		Store: &testStateStore{},
	}

	out, err := executeCommand(deps, "cities", "--counts", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}

	if len(seenQueries) != len(domain.CityNames()) {
		t.Fatalf("expected one count query per city, got %d", len(seenQueries))
	}
	for _, query := range seenQueries {
		if query.Limit != 1 {
			t.Fatalf("count queries must ask for a single row, got %+v", query)
		}
	}

	cities := payloadSlice(t, payloadMap(t, mustJSON(t, out)["data"])["cities"])
	for _, value := range cities {
		entry := payloadMap(t, value)
		if asInt(entry["restaurants"]) != 7 {
			t.Fatalf("expected count 7 for %v, got %v", entry["name"], entry["restaurants"])
		}
	}
}

func TestCitiesIndexFailureWarnsAndOmitsIDs(t *testing.T) {
	deps := Dependencies{
		Directory: &testDirectoryAPI{
			cityRowsFn: func(context.Context) ([]map[string]any, error) {
				return nil, &directory.UpstreamRequestError{Method: "GET", URL: "/cities", StatusCode: 502}
			},
		},
		Store: &testStateStore{},
	}

	out, err := executeCommand(deps, "cities", "--format", "json")
	if err != nil {
		t.Fatalf("index failure must degrade, not fail: %v\noutput:\n%s", err, out)
	}

	payload := mustJSON(t, out)
	warnings := payloadSlice(t, payload["warnings"])
	if len(warnings) != 1 || !strings.Contains(asString(warnings[0]), "ids omitted") {
		t.Fatalf("expected index warning, got %v", warnings)
	}
	for _, value := range payloadSlice(t, payloadMap(t, payload["data"])["cities"]) {
		entry := payloadMap(t, value)
		if asBool(entry["listed"]) {
			t.Fatalf("no city can be listed without an index, got %v", entry)
		}
	}
}
