package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
	"github.com/crunchfoods/crunch-cli/internal/service/notify"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/crunchfoods/crunch-cli/internal/service/session"
	"github.com/spf13/cobra"
)

func newAuthCommand(deps Dependencies) *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Sign in and inspect the stored session.",
	}
	auth.AddCommand(newAuthLoginCommand(deps))
	auth.AddCommand(newAuthStatusCommand(deps))
	auth.AddCommand(newAuthRefreshCommand(deps))
	auth.AddCommand(newAuthLogoutCommand(deps))
	return auth
}

func newAuthLoginCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange email and password for a stored session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewAdmin)

			tokens, err := sessionService(deps).Login(cmd.Context(), email, password)
			if err != nil {
				if errors.Is(err, session.ErrInvalidLogin) {
					return validationError(err, format, city, view, flags.Output, cmd)
				}
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}

			notices := notify.NewCenter()
			notices.Success("Signed in as " + tokens.Email + ".")
			data := map[string]any{
				"authenticated":      true,
				"email":              tokens.Email,
				"user_id":            tokenSubject(tokens.AccessToken),
				"session_expires_at": emptyToNil(tokenExpiryRFC3339(tokens.AccessToken)),
				"notices":            noticeRows(notices.Drain()),
			}
			if flags.Verbose {
				data["token_preview"] = tokenPreview(tokens.AccessToken)
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildAuthSessionTable("Signed in", data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, nil, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	if err := cmd.MarkFlagRequired("email"); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagRequired("password"); err != nil {
		panic(err)
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

func newAuthStatusCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in user and the backend role the session carries.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewAdmin)

			auth := buildAuthContext(deps, flags)
			if !auth.HasCredentials() {
				data := map[string]any{
					"authenticated":      false,
					"email":              "",
					"user_id":            "",
					"role":               "",
					"session_expires_at": nil,
				}
				warnings := []string{"no auth credentials provided"}
				if format == output.FormatTable {
					return writeTable(cmd, buildAuthStatusTable(data), flags.Output)
				}
				env := output.BuildEnvelope(resolveCityLabel(city), view, data, warnings, nil)
				return writeMachinePayload(cmd, env, format, flags.Output)
			}

			warnings := []string{}
			email := sessionService(deps).Tokens().Email
			userID := ""
			claims, err := session.ParseClaims(auth.AccessToken)
			if err != nil {
				warnings = append(warnings, "access token is not a readable JWT; claims omitted")
			} else {
				userID = claims.UserID
				if claims.Email != "" {
					email = claims.Email
				}
			}

			role, authWarnings, err := invokeWithAuthAutoRefresh(
				cmd.Context(),
				deps,
				&auth,
				func(authCtx directory.AuthContext) (string, error) {
					return sessionService(deps).RoleFor(cmd.Context(), authCtx)
				},
			)
			warnings = append(warnings, authWarnings...)
			if err != nil {
				warnings = append(warnings, "role lookup unavailable; showing token claims only")
				role = ""
			}

			data := map[string]any{
				"authenticated":      true,
				"email":              email,
				"user_id":            userID,
				"role":               role,
				"session_expires_at": emptyToNil(tokenExpiryRFC3339(auth.AccessToken)),
			}
			if flags.Verbose {
				data["token_preview"] = tokenPreview(auth.AccessToken)
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildAuthStatusTable(data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, warnings, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	addGlobalFlags(cmd, &flags)
	return cmd
}

func newAuthRefreshCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Rotate the stored session using its refresh token.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewAdmin)

			tokens, err := sessionService(deps).Refresh(cmd.Context())
			if err != nil {
				if errors.Is(err, session.ErrNotSignedIn) {
					return emitError(cmd, format, city, view, flags.Output, "CRUNCH_AUTH_REQUIRED", "No stored session to refresh. Run `crunch auth login` first.")
				}
				return emitUpstreamError(cmd, format, city, view, flags.Output, flags.Verbose, err)
			}

			notices := notify.NewCenter()
			notices.Success("Session refreshed.")
			data := map[string]any{
				"authenticated":      true,
				"email":              tokens.Email,
				"user_id":            tokenSubject(tokens.AccessToken),
				"session_expires_at": emptyToNil(tokenExpiryRFC3339(tokens.AccessToken)),
				"notices":            noticeRows(notices.Drain()),
			}
			if flags.Verbose {
				data["token_preview"] = tokenPreview(tokens.AccessToken)
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildAuthSessionTable("Session refreshed", data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, nil, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	addGlobalFlags(cmd, &flags)
	return cmd
}

func newAuthLogoutCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			city := resolveCityScope(deps, flags)
			view := string(domain.ViewAdmin)

			had, err := sessionService(deps).Logout()
			if err != nil {
				return err
			}

			notices := notify.NewCenter()
			if had {
				notices.Success("Signed out.")
			} else {
				notices.Info("No active session.")
			}
			data := map[string]any{
				"signed_out": had,
				"notices":    noticeRows(notices.Drain()),
			}

			if format == output.FormatTable {
				return writeTable(cmd, buildAuthSessionTable("Signed out", data), flags.Output)
			}
			env := output.BuildEnvelope(resolveCityLabel(city), view, data, nil, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	addGlobalFlags(cmd, &flags)
	return cmd
}

func buildAuthStatusTable(data map[string]any) string {
	headers := []string{"Field", "Value"}
	rows := [][]string{
		{"Authenticated", boolToYesNo(asBool(data["authenticated"]))},
		{"Email", fallbackString(asString(data["email"]), "-")},
		{"User ID", fallbackString(asString(data["user_id"]), "-")},
		{"Role", fallbackString(asString(data["role"]), "-")},
		{"Session expires", fallbackString(asString(data["session_expires_at"]), "-")},
	}
	if preview := asString(data["token_preview"]); preview != "" {
		rows = append(rows, []string{"Token preview", preview})
	}
	return output.RenderTable("Auth status", headers, rows)
}

func buildAuthSessionTable(title string, data map[string]any) string {
	headers := []string{"Field", "Value"}
	rows := [][]string{}
	if email := asString(data["email"]); email != "" {
		rows = append(rows, []string{"Email", email})
	}
	if userID := asString(data["user_id"]); userID != "" {
		rows = append(rows, []string{"User ID", userID})
	}
	if expires := asString(data["session_expires_at"]); expires != "" {
		rows = append(rows, []string{"Session expires", expires})
	}
	if preview := asString(data["token_preview"]); preview != "" {
		rows = append(rows, []string{"Token preview", preview})
	}
	table := output.RenderTable(title, headers, rows)
	for _, value := range asSlice(data["notices"]) {
		notice := asMap(value)
		table += "\n" + asString(notice["message"])
	}
	return table
}

func tokenPreview(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return token
	}
	return token[:6] + "..." + token[len(token)-6:]
}

func tokenSubject(token string) string {
	claims, err := session.ParseClaims(token)
	if err != nil {
		return ""
	}
	return claims.UserID
}

func tokenExpiryRFC3339(token string) string {
	claims, err := session.ParseClaims(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return ""
	}
	return claims.ExpiresAt.UTC().Format(time.RFC3339)
}

func emptyToNil(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
