package cli

import (
	"fmt"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/spf13/cobra"
)

func newConfigureCommand(deps Dependencies) *cobra.Command {
	var city string
	var clearCity bool
	var reset bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Manage the persisted city scope and local state file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			citySet := cmd.Flags().Changed("city")
			if reset {
				if citySet || clearCity {
					return fmt.Errorf("--reset cannot be combined with --city or --clear-city")
				}
				if err := deps.Store.Save(domain.State{}); err != nil {
					return err
				}
				return writeTable(cmd, "🏁 Local state was reset successfully!", "")
			}
			if citySet && clearCity {
				return fmt.Errorf("--city and --clear-city cannot be combined")
			}
			if clearCity {
				if _, err := sessionService(deps).SetCity(""); err != nil {
					return err
				}
				return writeTable(cmd, "🏁 City scope cleared successfully!", "")
			}
			if citySet {
				canonical, err := sessionService(deps).SetCity(city)
				if err != nil {
					return err
				}
				label := canonical
				if !domain.IsLaunchCity(canonical) {
					label += " (not a launch city; listings may be empty)"
				}
				return writeTable(cmd, "🏁 City scope saved: "+label, "")
			}

			state, err := deps.Store.Load()
			if err != nil {
				state = domain.State{}
			}
			headers := []string{"Field", "Value"}
			rows := [][]string{
				{"State file", deps.Store.Path()},
				{"City scope", fallbackString(state.City, "-")},
				{"Active view", fallbackString(string(state.ActiveView), "-")},
				{"Signed in", boolToYesNo(state.Session.HasCredentials())},
			}
			if state.Session.Email != "" {
				rows = append(rows, []string{"Email", state.Session.Email})
			}
			return writeTable(cmd, output.RenderTable("Configuration", headers, rows), "")
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "Save a default city scope for listings")
	cmd.Flags().BoolVar(&clearCity, "clear-city", false, "Clear the saved city scope")
	cmd.Flags().BoolVar(&reset, "reset", false, "Reset the entire local state file")
	return cmd
}
