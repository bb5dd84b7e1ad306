package cli

import (
	"fmt"
	"strings"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/service/catalog"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/spf13/cobra"
)

func newSearchCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var query string
	var diets []string
	var oils []string
	var neighborhood string
	var priceRange string
	var verifiedOnly bool
	var sortValue string
	var pages int
	var fetchAll bool
	var limit int
	var limitSet bool
	var offset int
	var offsetSet bool
	var page int
	var pageSet bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search restaurants by name, cuisine, or neighborhood.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("%s", requiredArg("--query"))
			}
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewResults)

			sortMode, err := catalog.ParseSort(sortValue)
			if err != nil {
				return emitError(cmd, format, city, view, flags.Output, "CRUNCH_INVALID_ARGUMENT", err.Error())
			}
			var limitPtr *int
			if limitSet {
				limitPtr = &limit
			}
			resolvedOffset, err := resolvePageOffset(limit, limitSet, offset, offsetSet, page, pageSet)
			if err != nil {
				return err
			}
			if pages < 1 {
				return fmt.Errorf("--pages must be >= 1")
			}

			scope, err := loadListings(cmd.Context(), deps, city, pages, fetchAll)
			if err != nil {
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}

			filters := domain.Filters{
				Diets:        flattenListFlag(diets),
				Oils:         flattenListFlag(oils),
				Neighborhood: strings.TrimSpace(neighborhood),
				PriceRange:   strings.TrimSpace(priceRange),
				VerifiedOnly: verifiedOnly,
			}
			data := buildListingResult(scope, query, filters, sortMode)
			paginateFlatRows(data, "restaurants", limitPtr, resolvedOffset)
			if pageSet {
				data["page"] = page
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildSearchTable(data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, scope.Warnings, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search query matched against name, cuisine, and neighborhood")
	cmd.Flags().StringArrayVar(&diets, "diet", nil, "Dietary tag to match (repeatable or comma separated; any selected tag matches)")
	cmd.Flags().StringArrayVar(&oils, "oil", nil, "Cooking oil to match against the oils-used list (repeatable; exact published spelling)")
	cmd.Flags().StringVar(&neighborhood, "neighborhood", "", "Exact neighborhood filter")
	cmd.Flags().StringVar(&priceRange, "price", "", "Exact price tier filter ($ through $$$$)")
	cmd.Flags().BoolVar(&verifiedOnly, "verified", false, "Only include listings carrying the verified badge")
	cmd.Flags().StringVar(&sortValue, "sort", string(catalog.SortDefault), "Sort mode: name, rating, price, verified, or updated")
	cmd.Flags().IntVar(&pages, "pages", 1, "Backend pages to fetch before filtering (20 rows per page)")
	cmd.Flags().BoolVar(&fetchAll, "all", false, "Fetch every backend page before filtering")
	cmd.Flags().IntVar(&limit, "limit", 0, "Limit returned rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset returned rows")
	cmd.Flags().IntVar(&page, "page", 0, "1-based page number (requires --limit; cannot be combined with --offset)")
	if err := cmd.MarkFlagRequired("query"); err != nil {
		panic(err)
	}
	addGlobalFlags(cmd, &flags)
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		limitSet = cmd.Flags().Changed("limit")
		offsetSet = cmd.Flags().Changed("offset")
		pageSet = cmd.Flags().Changed("page")
	}

	return cmd
}

func buildSearchTable(data map[string]any) string {
	headers := []string{"ID", "Name", "Neighborhood", "Cuisine", "Price", "Rating", "Diets", "Verified"}
	rows := [][]string{}
	for _, value := range asSlice(data["restaurants"]) {
		row := asMap(value)
		diets := stringsJoin(asSlice(row["dietary_tags"]), ", ")
		rows = append(rows, []string{
			fallbackString(asString(row["id"]), "-"),
			asString(row["name"]),
			fallbackString(asString(row["neighborhood"]), "-"),
			fallbackString(asString(row["cuisine"]), "-"),
			fallbackString(asString(row["price_range"]), "-"),
			formatRating(row["rating"]),
			fallbackString(diets, "-"),
			boolToYesNo(asBool(row["verified"])),
		})
	}
	return output.RenderTable("Search: "+asString(data["query"]), headers, rows)
}
