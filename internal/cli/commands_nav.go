package cli

import (
	"strings"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/spf13/cobra"
)

func newOpenCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "open <view-or-fragment>",
		Short: "Switch the active view by name or by a shared #/ fragment.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			target := strings.TrimSpace(args[0])

			machine := navMachine(deps)
			var view domain.View
			var navErr error
			if strings.HasPrefix(target, "#") {
				view, navErr = machine.HandleFragment(target)
			} else {
				view, navErr = machine.Navigate(target)
			}
			if navErr != nil {
				// An empty view means the name failed to parse; otherwise storage failed.
				if view == "" {
					return emitError(cmd, format, city, string(domain.ViewHome), flags.Output, "CRUNCH_INVALID_ARGUMENT", navErr.Error())
				}
				return navErr
			}

			data := map[string]any{
				"view":     string(view),
				"fragment": view.Fragment(),
			}
			if format == output.FormatTable {
				return writeTable(cmd, buildNavStatusTable("Active view", data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), string(view), data, nil, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	addGlobalFlags(cmd, &flags)
	return cmd
}

func newNavCommand(deps Dependencies) *cobra.Command {
	nav := &cobra.Command{
		Use:   "nav",
		Short: "Inspect the persisted navigation state.",
	}
	nav.AddCommand(newNavStatusCommand(deps))
	nav.AddCommand(newNavViewsCommand(deps))
	return nav
}

func newNavStatusCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active view and where it is stored.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)

			machine := navMachine(deps)
			view := machine.Current()
			data := map[string]any{
				"view":       string(view),
				"fragment":   machine.Fragment(),
				"state_path": deps.Store.Path(),
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildNavStatusTable("Navigation", data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), string(view), data, nil, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	addGlobalFlags(cmd, &flags)
	return cmd
}

func newNavViewsCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "views",
		Short: "List the navigable views in menu order.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)

			active := navMachine(deps).Current()
			rows := make([]any, 0, len(domain.Views()))
			for _, view := range domain.Views() {
				rows = append(rows, map[string]any{
					"name":     string(view),
					"fragment": view.Fragment(),
					"active":   view == active,
				})
			}
			data := map[string]any{"views": rows}

			if format == output.FormatTable {
				return writeTable(cmd, buildViewsTable(data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), string(active), data, nil, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	addGlobalFlags(cmd, &flags)
	return cmd
}

func buildNavStatusTable(title string, data map[string]any) string {
	headers := []string{"Field", "Value"}
	rows := [][]string{
		{"View", asString(data["view"])},
		{"Fragment", asString(data["fragment"])},
	}
	if path := asString(data["state_path"]); path != "" {
		rows = append(rows, []string{"State file", path})
	}
	return output.RenderTable(title, headers, rows)
}

func buildViewsTable(data map[string]any) string {
	headers := []string{"View", "Fragment", "Active"}
	rows := [][]string{}
	for _, value := range asSlice(data["views"]) {
		row := asMap(value)
		rows = append(rows, []string{
			asString(row["name"]),
			asString(row["fragment"]),
			boolToYesNo(asBool(row["active"])),
		})
	}
	return output.RenderTable("Views", headers, rows)
}
