package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
	"github.com/crunchfoods/crunch-cli/internal/service/catalog"
	"github.com/crunchfoods/crunch-cli/internal/service/moderation"
	"github.com/crunchfoods/crunch-cli/internal/service/notify"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/crunchfoods/crunch-cli/internal/service/session"
	"github.com/spf13/cobra"
)

func newAdminCommand(deps Dependencies) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Moderate community suggestions (admin role required).",
	}
	admin.AddCommand(newAdminPendingCommand(deps))
	admin.AddCommand(newAdminApproveCommand(deps))
	admin.AddCommand(newAdminRejectCommand(deps))
	return admin
}

// requireAdmin enforces the moderation gate: credentials first, then the
// backend role lookup. Unreadable tokens and non-admin roles both land on
// the restricted message rather than an upstream error.
func requireAdmin(
	cmd *cobra.Command,
	deps Dependencies,
	flags globalFlags,
	format output.Format,
	city string,
	auth *directory.AuthContext,
) ([]string, error) {
	view := string(domain.ViewAdmin)
	if err := requireAuth(cmd, format, city, view, flags.Output, *auth); err != nil {
		return []string{}, err
	}
	role, warnings, err := invokeWithAuthAutoRefresh(
		cmd.Context(),
		deps,
		auth,
		func(authCtx directory.AuthContext) (string, error) {
			return sessionService(deps).RoleFor(cmd.Context(), authCtx)
		},
	)
	if err != nil {
		return warnings, emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
	}
	if role != session.AdminRole {
		return warnings, emitError(cmd, format, city, view, flags.Output, "CRUNCH_RESTRICTED", "Access restricted. This area is for directory moderators.")
	}
	return warnings, nil
}

func newAdminPendingCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var sortValue string
	var cityFilter string
	var withContact bool
	var limit int
	var limitSet bool
	var offset int
	var offsetSet bool
	var page int
	var pageSet bool

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List the moderation queue of suggested restaurants.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewAdmin)

			sortMode, err := parsePendingRowSort(sortValue)
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

			auth := buildAuthContext(deps, flags)
			gateWarnings, err := requireAdmin(cmd, deps, flags, format, city, &auth)
			if err != nil {
				return err
			}

			submissions, authWarnings, err := invokeWithAuthAutoRefresh(
				cmd.Context(),
				deps,
				&auth,
				func(authCtx directory.AuthContext) ([]domain.PendingSubmission, error) {
					return moderation.NewService(deps.Directory).PendingSubmissions(cmd.Context(), authCtx)
				},
			)
			if err != nil {
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}
			warnings := append(gateWarnings, authWarnings...)

			rows := make([]any, 0, len(submissions))
			for _, submission := range submissions {
				rows = append(rows, buildPendingRow(submission))
			}
			data := map[string]any{"submissions": rows}
			data["submissions"] = applyPendingRowFilters(
				asSlice(data["submissions"]),
				pendingRowFilters{
					Cities:          splitCSV(cityFilter),
					WithContactOnly: withContact,
				},
			)
			sortPendingRows(asSlice(data["submissions"]), sortMode)
			paginateFlatRows(data, "submissions", limitPtr, resolvedOffset)
			if pageSet {
				data["page"] = page
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildPendingTable(data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, warnings, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().StringVar(&sortValue, "sort", string(pendingRowSortSubmitted), "Sort mode: submitted (newest first) or name")
	cmd.Flags().StringVar(&cityFilter, "cities", "", "Only show submissions for these cities (comma separated)")
	cmd.Flags().BoolVar(&withContact, "with-contact", false, "Only show submissions carrying an email or phone")
	cmd.Flags().IntVar(&limit, "limit", 0, "Limit returned rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset returned rows")
	cmd.Flags().IntVar(&page, "page", 0, "1-based page number (requires --limit; cannot be combined with --offset)")
	addGlobalFlags(cmd, &flags)
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		limitSet = cmd.Flags().Changed("limit")
		offsetSet = cmd.Flags().Changed("offset")
		pageSet = cmd.Flags().Changed("page")
	}

	return cmd
}

type approveOutcome struct {
	restaurant domain.Restaurant
	warnings   []string
}

func newAdminApproveCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var id string

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Publish a pending submission into the directory with placeholder research fields.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewAdmin)
			if strings.TrimSpace(id) == "" {
				return emitError(cmd, format, city, view, flags.Output, "CRUNCH_INVALID_ARGUMENT", requiredArg("--id"))
			}

			auth := buildAuthContext(deps, flags)
			gateWarnings, err := requireAdmin(cmd, deps, flags, format, city, &auth)
			if err != nil {
				return err
			}

			outcome, authWarnings, err := invokeWithAuthAutoRefresh(
				cmd.Context(),
				deps,
				&auth,
				func(authCtx directory.AuthContext) (approveOutcome, error) {
					restaurant, approveWarnings, err := moderation.NewService(deps.Directory).Approve(cmd.Context(), strings.TrimSpace(id), authCtx)
					return approveOutcome{restaurant: restaurant, warnings: approveWarnings}, err
				},
			)
			if err != nil {
				if errors.Is(err, moderation.ErrPendingNotFound) {
					return emitError(cmd, format, city, view, flags.Output, "CRUNCH_NOT_FOUND", fmt.Sprintf("pending submission %q not found", strings.TrimSpace(id)))
				}
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}
			warnings := append(gateWarnings, authWarnings...)
			warnings = append(warnings, outcome.warnings...)

			notices := notify.NewCenter()
			notices.Success("Restaurant approved and published.")
			data := map[string]any{
				"approved_id": strings.TrimSpace(id),
				"restaurant":  catalog.BuildListingRows([]domain.Restaurant{outcome.restaurant})[0],
				"notices":     noticeRows(notices.Drain()),
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildModerationActionTable("Approved submission", data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, warnings, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Pending submission id")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		panic(err)
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func newAdminRejectCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var id string

	cmd := &cobra.Command{
		Use:   "reject",
		Short: "Remove a pending submission without publishing it.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewAdmin)
			if strings.TrimSpace(id) == "" {
				return emitError(cmd, format, city, view, flags.Output, "CRUNCH_INVALID_ARGUMENT", requiredArg("--id"))
			}

			auth := buildAuthContext(deps, flags)
			gateWarnings, err := requireAdmin(cmd, deps, flags, format, city, &auth)
			if err != nil {
				return err
			}

			_, authWarnings, err := invokeWithAuthAutoRefresh(
				cmd.Context(),
				deps,
				&auth,
				func(authCtx directory.AuthContext) (struct{}, error) {
					return struct{}{}, moderation.NewService(deps.Directory).Reject(cmd.Context(), strings.TrimSpace(id), authCtx)
				},
			)
			if err != nil {
				if errors.Is(err, moderation.ErrPendingNotFound) {
					return emitError(cmd, format, city, view, flags.Output, "CRUNCH_NOT_FOUND", fmt.Sprintf("pending submission %q not found", strings.TrimSpace(id)))
				}
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}
			warnings := append(gateWarnings, authWarnings...)

			notices := notify.NewCenter()
			notices.Success("Submission rejected and removed from the queue.")
			data := map[string]any{
				"rejected_id": strings.TrimSpace(id),
				"notices":     noticeRows(notices.Drain()),
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildModerationActionTable("Rejected submission", data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, warnings, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Pending submission id")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		panic(err)
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func buildPendingTable(data map[string]any) string {
	headers := []string{"ID", "Name", "City", "Neighborhood", "Cuisine", "Contact", "Submitted"}
	rows := [][]string{}
	for _, value := range asSlice(data["submissions"]) {
		row := asMap(value)
		contact := asString(row["email"])
		if contact == "" {
			contact = asString(row["phone"])
		}
		rows = append(rows, []string{
			fallbackString(asString(row["id"]), "-"),
			asString(row["name"]),
			fallbackString(asString(row["city"]), "-"),
			fallbackString(asString(row["neighborhood"]), "-"),
			fallbackString(asString(row["cuisine"]), "-"),
			fallbackString(contact, "-"),
			fallbackString(asString(row["submitted_at"]), "-"),
		})
	}
	title := fmt.Sprintf("Pending submissions (%d of %d)", asInt(data["count"]), asInt(data["total"]))
	return output.RenderTable(title, headers, rows)
}

func buildModerationActionTable(title string, data map[string]any) string {
	rows := [][]string{}
	if id := asString(data["approved_id"]); id != "" {
		rows = append(rows, []string{"Submission", id})
	}
	if id := asString(data["rejected_id"]); id != "" {
		rows = append(rows, []string{"Submission", id})
	}
	if restaurant := asMap(data["restaurant"]); restaurant != nil {
		rows = append(rows, []string{"Restaurant", asString(restaurant["name"])})
		rows = append(rows, []string{"Listing id", fallbackString(asString(restaurant["id"]), "-")})
		rows = append(rows, []string{"City", fallbackString(asString(restaurant["city"]), "-")})
	}
	table := output.RenderTable(title, []string{"Field", "Value"}, rows)
	for _, value := range asSlice(data["notices"]) {
		notice := asMap(value)
		table += "\n" + asString(notice["message"])
	}
	return table
}
