package cli

import (
	"context"
	"strings"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/service/pager"
)

const maxListingPages = 50

type listingScope struct {
	City        string
	Listings    []domain.Restaurant
	Total       int
	HasTotal    bool
	HasMore     bool
	PagesLoaded int
	Warnings    []string
}

// loadListings pulls backend pages through the paging coordinator. The
// city index is adopted before the first fetch when it is available, so
// scoped queries narrow by city id instead of the relation name join.
// Index failures degrade to the name join with a warning.
func loadListings(ctx context.Context, deps Dependencies, city string, pages int, all bool) (listingScope, error) {
	scope := listingScope{City: city, Warnings: []string{}}
	coordinator := pager.NewCoordinator(deps.Directory)
	coordinator.SelectCity(city)

	if strings.TrimSpace(city) != "" {
		if rows, err := deps.Directory.CityRows(ctx); err != nil {
			scope.Warnings = append(scope.Warnings, "city index unavailable; narrowing by relation name join")
		} else if _, err := coordinator.AdoptCityIndex(ctx, cityIndexFromRows(rows)); err != nil {
			return scope, err
		}
	}

	if err := coordinator.Fetch(ctx, true); err != nil {
		return scope, err
	}
	scope.PagesLoaded = 1
	for coordinator.HasMore() && (all || scope.PagesLoaded < pages) && scope.PagesLoaded < maxListingPages {
		if err := coordinator.Fetch(ctx, false); err != nil {
			return scope, err
		}
		scope.PagesLoaded++
	}

	scope.Listings = coordinator.Restaurants()
	scope.Total, scope.HasTotal = coordinator.Total()
	scope.HasMore = coordinator.HasMore()
	return scope, nil
}

func cityIndexFromRows(rows []map[string]any) map[string]string {
	index := make(map[string]string, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(asString(row["name"]))
		id := strings.TrimSpace(asString(row["id"]))
		if name == "" || id == "" {
			continue
		}
		index[name] = id
	}
	return index
}
