package cli

import (
	"fmt"
	"strings"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/service/notify"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/spf13/cobra"
)

func newNewsletterCommand(deps Dependencies) *cobra.Command {
	newsletter := &cobra.Command{
		Use:   "newsletter",
		Short: "Manage launch announcement signups.",
	}
	newsletter.AddCommand(newNewsletterSubscribeCommand(deps))
	return newsletter
}

func newNewsletterSubscribeCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var email string

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe an email to new city launch announcements.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewHome)

			address := strings.TrimSpace(email)
			if address == "" || !strings.Contains(address, "@") {
				return validationError(fmt.Errorf("a valid email is required"), format, city, view, flags.Output, cmd)
			}

			notices := notify.NewCenter()
			if _, err := deps.Directory.SubscribeNewsletter(cmd.Context(), address); err != nil {
				notices.Error("Subscription failed. Please try again.")
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}
			notices.Success("You're on the list! We'll email you when new cities launch.")

			data := map[string]any{
				"email":      address,
				"subscribed": true,
				"notices":    noticeRows(notices.Drain()),
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildNewsletterTable(data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, nil, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address to subscribe")
	if err := cmd.MarkFlagRequired("email"); err != nil {
		panic(err)
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func buildNewsletterTable(data map[string]any) string {
	headers := []string{"Field", "Value"}
	rows := [][]string{
		{"Email", asString(data["email"])},
		{"Subscribed", boolToYesNo(asBool(data["subscribed"]))},
	}
	table := output.RenderTable("Newsletter", headers, rows)
	for _, value := range asSlice(data["notices"]) {
		notice := asMap(value)
		table += "\n" + asString(notice["message"])
	}
	return table
}
