package cli

import (
	"errors"
	"time"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/service/moderation"
	"github.com/crunchfoods/crunch-cli/internal/service/notify"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/spf13/cobra"
)

func newSuggestCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var name string
	var address string
	var neighborhood string
	var cityValue string
	var cuisine string
	var phone string
	var email string
	var website string
	var notes string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest a restaurant for the directory (goes into the moderation queue).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewSuggest)
			if cityValue == "" {
				cityValue = city
			}

			notices := notify.NewCenter()
			suggestion := domain.Suggestion{
				Name:         name,
				Address:      address,
				Neighborhood: neighborhood,
				City:         cityValue,
				Cuisine:      cuisine,
				Phone:        phone,
				Email:        email,
				Website:      website,
				Notes:        notes,
			}
			submitted, err := moderation.NewService(deps.Directory).SubmitSuggestion(cmd.Context(), suggestion)
			if err != nil {
				if errors.Is(err, moderation.ErrValidation) {
					notices.Error(err.Error())
					return validationError(err, format, city, view, flags.Output, cmd)
				}
				notices.Error("Something went wrong. Please try again.")
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}
			notices.Success("Thanks! Your suggestion is in the review queue.")

			data := map[string]any{
				"submission": buildPendingRow(submitted),
				"notices":    noticeRows(notices.Drain()),
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildSuggestTable(data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, []string{}, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Restaurant name")
	cmd.Flags().StringVar(&address, "address", "", "Street address")
	cmd.Flags().StringVar(&neighborhood, "neighborhood", "", "Neighborhood")
	cmd.Flags().StringVar(&cityValue, "suggest-city", "", "City for the suggestion (defaults to the active city scope)")
	cmd.Flags().StringVar(&cuisine, "cuisine", "", "Cuisine")
	cmd.Flags().StringVar(&phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&email, "email", "", "Contact email")
	cmd.Flags().StringVar(&website, "website", "", "Website (https:// is added when the scheme is missing)")
	cmd.Flags().StringVar(&notes, "notes", "", "Why this spot belongs in the directory")
	if err := cmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagRequired("address"); err != nil {
		panic(err)
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func buildPendingRow(p domain.PendingSubmission) map[string]any {
	row := map[string]any{
		"id":           p.ID,
		"name":         p.Name,
		"address":      p.Address,
		"neighborhood": p.Neighborhood,
		"city":         p.City,
		"cuisine":      p.Cuisine,
		"phone":        p.Phone,
		"email":        p.Email,
		"website":      p.Website,
		"notes":        p.Notes,
		"status":       string(p.Status),
	}
	if !p.CreatedAt.IsZero() {
		row["submitted_at"] = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return row
}

func noticeRows(notices []notify.Notice) []map[string]any {
	rows := make([]map[string]any, 0, len(notices))
	for _, notice := range notices {
		rows = append(rows, map[string]any{
			"kind":    string(notice.Kind),
			"message": notice.Message,
		})
	}
	return rows
}

func buildSuggestTable(data map[string]any) string {
	submission := asMap(data["submission"])
	rows := [][]string{
		{"ID", fallbackString(asString(submission["id"]), "-")},
		{"Name", asString(submission["name"])},
		{"Address", asString(submission["address"])},
		{"Neighborhood", fallbackString(asString(submission["neighborhood"]), "-")},
		{"City", fallbackString(asString(submission["city"]), "-")},
		{"Cuisine", fallbackString(asString(submission["cuisine"]), "-")},
		{"Website", fallbackString(asString(submission["website"]), "-")},
		{"Status", asString(submission["status"])},
	}
	table := output.RenderTable("Suggestion submitted", []string{"Field", "Value"}, rows)
	for _, value := range asSlice(data["notices"]) {
		notice := asMap(value)
		table += "\n" + asString(notice["message"])
	}
	return table
}
