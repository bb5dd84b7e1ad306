package cli

import (
	"fmt"
	"strings"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/service/notify"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newContactCommand(deps Dependencies) *cobra.Command {
	contact := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the directory maintainers.",
	}
	contact.AddCommand(newContactSendCommand(deps))
	return contact
}

func newContactSendCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var name string
	var email string
	var message string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a contact form message.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewContact)

			problems := []string{}
			if strings.TrimSpace(name) == "" {
				problems = append(problems, "name: required")
			}
			trimmedEmail := strings.TrimSpace(email)
			if trimmedEmail == "" || !strings.Contains(trimmedEmail, "@") {
				problems = append(problems, "email: a valid email is required")
			}
			if strings.TrimSpace(message) == "" {
				problems = append(problems, "message: required")
			}
			if len(problems) > 0 {
				return validationError(fmt.Errorf("invalid contact message: %s", strings.Join(problems, "; ")), format, city, view, flags.Output, cmd)
			}

			payload := map[string]any{
				"id":      uuid.NewString(),
				"name":    strings.TrimSpace(name),
				"email":   trimmedEmail,
				"message": strings.TrimSpace(message),
			}

			notices := notify.NewCenter()
			stored, err := deps.Directory.InsertContactMessage(cmd.Context(), payload)
			if err != nil {
				notices.Error("Sending failed. Please try again.")
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}
			notices.Success("Message sent. We'll get back to you soon.")

			messageID := asString(stored["id"])
			if messageID == "" {
				messageID = asString(payload["id"])
			}
			data := map[string]any{
				"message_id": messageID,
				"name":       payload["name"],
				"email":      payload["email"],
				"notices":    noticeRows(notices.Drain()),
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildContactTable(data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, nil, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your name")
	cmd.Flags().StringVar(&email, "email", "", "Reply-to email address")
	cmd.Flags().StringVar(&message, "message", "", "Message body")
	if err := cmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagRequired("email"); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagRequired("message"); err != nil {
		panic(err)
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func buildContactTable(data map[string]any) string {
	headers := []string{"Field", "Value"}
	rows := [][]string{
		{"Message ID", fallbackString(asString(data["message_id"]), "-")},
		{"Name", asString(data["name"])},
		{"Email", asString(data["email"])},
	}
	table := output.RenderTable("Contact", headers, rows)
	for _, value := range asSlice(data["notices"]) {
		notice := asMap(value)
		table += "\n" + asString(notice["message"])
	}
	return table
}
