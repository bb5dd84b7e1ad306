package cli

import (
	"strings"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/service/catalog"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/spf13/cobra"
)

func newStatsCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the directory: totals, verified share, and breakdowns.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewHome)

			scope, err := loadListings(cmd.Context(), deps, city, 0, true)
			if err != nil {
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}

			visible := catalog.Apply(scope.Listings, city, "", domain.Filters{}, catalog.SortDefault)
			data := catalog.BuildStats(visible)
			data["city"] = resolveCityLabel(city)
			data["neighborhoods"] = catalog.Neighborhoods(visible)
			data["oils_in_use"] = catalog.OilsInUse(visible)
			data["pages_loaded"] = scope.PagesLoaded
			if scope.HasTotal {
				data["collection_total"] = scope.Total
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildStatsTable(data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, scope.Warnings, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	addGlobalFlags(cmd, &flags)
	return cmd
}

func buildStatsTable(data map[string]any) string {
	summary := [][]string{
		{"City scope", asString(data["city"])},
		{"Restaurants", asString(asInt(data["total"]))},
		{"Verified", asString(asInt(data["verified"]))},
		{"Average rating", formatRating(data["average_rating"])},
		{"Neighborhoods", fallbackString(stringsJoin(asSlice(data["neighborhoods"]), ", "), "-")},
		{"Oils in use", fallbackString(stringsJoin(asSlice(data["oils_in_use"]), ", "), "-")},
	}
	sections := []string{output.RenderTable("Directory stats", []string{"Field", "Value"}, summary)}
	sections = append(sections, buildCountTable("By city", asSlice(data["cities"])))
	sections = append(sections, buildCountTable("By dietary tag", asSlice(data["dietary_tags"])))
	sections = append(sections, buildCountTable("By price tier", asSlice(data["price_ranges"])))
	return strings.Join(sections, "\n\n")
}

func buildCountTable(title string, rows []any) string {
	tableRows := [][]string{}
	for _, value := range rows {
		row := asMap(value)
		tableRows = append(tableRows, []string{asString(row["name"]), asString(asInt(row["count"]))})
	}
	return output.RenderTable(title, []string{"Name", "Count"}, tableRows)
}
