package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/geo"
	"github.com/crunchfoods/crunch-cli/internal/service/catalog"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/spf13/cobra"
)

func newRestaurantCommand(deps Dependencies) *cobra.Command {
	restaurant := &cobra.Command{
		Use:   "restaurant",
		Short: "Inspect a single restaurant listing.",
	}
	restaurant.AddCommand(newRestaurantShowCommand(deps))
	return restaurant
}

func newRestaurantShowCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var id string
	var withMap bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show full details for one restaurant, including oils and verification.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewResults)
			if strings.TrimSpace(id) == "" {
				return emitError(cmd, format, city, view, flags.Output, "CRUNCH_INVALID_ARGUMENT", requiredArg("--id"))
			}

			row, err := deps.Directory.RestaurantByID(cmd.Context(), strings.TrimSpace(id))
			if err != nil {
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}
			if len(row) == 0 {
				return emitError(cmd, format, city, view, flags.Output, "CRUNCH_NOT_FOUND", fmt.Sprintf("restaurant id %q not found", strings.TrimSpace(id)))
			}
			listing := domain.NormalizeRestaurant(row)

			warnings := []string{}
			mapURL := ""
			if withMap {
				mapURL, warnings = resolveMapLink(cmd.Context(), deps, listing, warnings)
			}
			data := catalog.BuildRestaurantDetail(listing, mapURL)

			if format == output.FormatTable {
				return writeTable(cmd, buildRestaurantDetailTable(data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, warnings, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Restaurant id")
	cmd.Flags().BoolVar(&withMap, "map", false, "Include a static map link (uses listing coordinates, or geocodes the address when a map token is configured)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		panic(err)
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

// resolveMapLink prefers published coordinates over geocoding; every
// failure degrades to a warning so the detail output still renders.
func resolveMapLink(ctx context.Context, deps Dependencies, listing domain.Restaurant, warnings []string) (string, []string) {
	if deps.Maps == nil || !deps.Maps.Enabled() {
		return "", append(warnings, "map link skipped: no map access token configured")
	}

	var point geo.Point
	if listing.Latitude != nil && listing.Longitude != nil {
		point = geo.Point{Lat: *listing.Latitude, Lon: *listing.Longitude}
	} else {
		address := strings.TrimSpace(listing.Address)
		if address == "" {
			return "", append(warnings, "map link skipped: listing has no address to geocode")
		}
		if city := strings.TrimSpace(listing.City); city != "" {
			address = address + ", " + city
		}
		resolved, err := deps.Maps.Geocode(ctx, address)
		if err != nil {
			return "", append(warnings, "map link skipped: geocoding failed")
		}
		point = resolved
	}

	url, err := deps.Maps.StaticMapURL(point)
	if err != nil {
		return "", append(warnings, "map link skipped: "+err.Error())
	}
	return url, warnings
}

func buildRestaurantDetailTable(data map[string]any) string {
	rows := [][]string{
		{"Name", asString(data["name"])},
		{"Address", fallbackString(asString(data["address"]), "-")},
		{"Neighborhood", fallbackString(asString(data["neighborhood"]), "-")},
		{"City", fallbackString(asString(data["city"]), "-")},
		{"Cuisine", fallbackString(asString(data["cuisine"]), "-")},
		{"Hours", fallbackString(asString(data["hours"]), "-")},
		{"Phone", fallbackString(asString(data["phone"]), "-")},
		{"Email", fallbackString(asString(data["email"]), "-")},
		{"Website", fallbackString(asString(data["website"]), "-")},
		{"Price", fallbackString(asString(data["price_range"]), "-")},
		{"Rating", formatRating(data["rating"])},
		{"Reviews", asString(asInt(data["review_count"]))},
		{"Diets", fallbackString(stringsJoin(asSlice(data["dietary_tags"]), ", "), "-")},
		{"Oils used", fallbackString(stringsJoin(asSlice(data["oils_used"]), ", "), "-")},
		{"Oils avoided", fallbackString(stringsJoin(asSlice(data["oils_avoided"]), ", "), "-")},
		{"Verified", verificationLabel(asMap(data["verification"]))},
	}
	if coords := asMap(data["coordinates"]); coords != nil {
		rows = append(rows, []string{"Coordinates", fmt.Sprintf("%v, %v", coords["latitude"], coords["longitude"])})
	}
	if mapURL := asString(data["map_url"]); mapURL != "" {
		rows = append(rows, []string{"Map", mapURL})
	}
	rows = append(rows, []string{"Updated", fallbackString(asString(data["last_updated"]), "-")})

	sections := []string{output.RenderTable("Restaurant: "+asString(data["name"]), []string{"Field", "Value"}, rows)}

	if dishes := asSlice(data["recommended_dishes"]); len(dishes) > 0 {
		dishRows := [][]string{}
		for _, value := range dishes {
			dish := asMap(value)
			dishRows = append(dishRows, []string{asString(dish["name"]), fallbackString(asString(dish["notes"]), "-")})
		}
		sections = append(sections, output.RenderTable("Recommended dishes", []string{"Dish", "Notes"}, dishRows))
	}
	if links := asSlice(data["social_links"]); len(links) > 0 {
		linkRows := [][]string{}
		for _, value := range links {
			link := asMap(value)
			linkRows = append(linkRows, []string{asString(link["platform"]), asString(link["url"])})
		}
		sections = append(sections, output.RenderTable("Social", []string{"Platform", "URL"}, linkRows))
	}
	return strings.Join(sections, "\n\n")
}

func verificationLabel(verification map[string]any) string {
	label := boolToYesNo(asBool(verification["verified"]))
	method := asString(verification["method"])
	if method == "" {
		return label
	}
	label += " (" + method
	if date := asString(verification["date"]); date != "" {
		label += ", " + date
	}
	return label + ")"
}
