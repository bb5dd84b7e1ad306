package cli

import (
	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/spf13/cobra"
)

func newCitiesCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var withCounts bool

	cmd := &cobra.Command{
		Use:   "cities",
		Short: "List launch cities and their backend ids.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			view := string(domain.ViewHome)

			warnings := []string{}
			index := map[string]string{}
			if rows, err := deps.Directory.CityRows(cmd.Context()); err != nil {
				warnings = append(warnings, "city index unavailable; ids omitted")
			} else {
				index = cityIndexFromRows(rows)
			}

			cities := make([]map[string]any, 0, len(domain.CityNames()))
			for _, name := range domain.CityNames() {
				entry := map[string]any{
					"name":   name,
					"id":     index[name],
					"listed": index[name] != "",
				}
				if withCounts {
					count, ok := cityListingCount(cmd, deps, name, index[name])
					if ok {
						entry["restaurants"] = count
					} else {
						warnings = append(warnings, "restaurant count unavailable for "+name)
					}
				}
				cities = append(cities, entry)
			}
			data := map[string]any{"cities": cities, "count": len(cities)}

			if format == output.FormatTable {
				return writeTable(cmd, buildCitiesTable(data, withCounts), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(""), view, data, warnings, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().BoolVar(&withCounts, "counts", false, "Include per-city restaurant counts (one extra request per city)")
	addGlobalFlags(cmd, &flags)
	return cmd
}

// cityListingCount asks for a single row with an exact count attached.
func cityListingCount(cmd *cobra.Command, deps Dependencies, name string, id string) (int, bool) {
	query := directory.RestaurantPageQuery{Limit: 1}
	if id != "" {
		query.CityID = id
	} else {
		query.CityName = name
	}
	page, err := deps.Directory.RestaurantPage(cmd.Context(), query)
	if err != nil || !page.HasTotal {
		return 0, false
	}
	return page.Total, true
}

func buildCitiesTable(data map[string]any, withCounts bool) string {
	headers := []string{"City", "ID", "Listed"}
	if withCounts {
		headers = append(headers, "Restaurants")
	}
	rows := [][]string{}
	for _, value := range asSlice(data["cities"]) {
		entry := asMap(value)
		row := []string{
			asString(entry["name"]),
			fallbackString(asString(entry["id"]), "-"),
			boolToYesNo(asBool(entry["listed"])),
		}
		if withCounts {
			count := "-"
			if _, ok := entry["restaurants"]; ok {
				count = asString(asInt(entry["restaurants"]))
			}
			row = append(row, count)
		}
		rows = append(rows, row)
	}
	return output.RenderTable("Cities", headers, rows)
}
