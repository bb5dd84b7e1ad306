package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
	"github.com/crunchfoods/crunch-cli/internal/service/nav"
	"github.com/crunchfoods/crunch-cli/internal/service/output"
	"github.com/crunchfoods/crunch-cli/internal/service/session"
	"github.com/spf13/cobra"
)

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

type globalFlags struct {
	Format       string
	City         string
	Output       string
	AccessToken  string
	RefreshToken string
	Verbose      bool
}

const sharedGlobalFlagAnnotation = "crunch_cli_shared_global"

func addGlobalFlags(cmd *cobra.Command, flags *globalFlags) {
	addSharedGlobalFlag(cmd, "format", func() {
		cmd.Flags().StringVar(&flags.Format, "format", "table", "Output format: table, json, or yaml.")
	})
	addSharedGlobalFlag(cmd, "city", func() {
		cmd.Flags().StringVar(&flags.City, "city", "", "City scope for this command. Overrides the saved selection; accepts shorthand like nyc or atx.")
	})
	addSharedGlobalFlag(cmd, "output", func() {
		cmd.Flags().StringVar(&flags.Output, "output", "", "Write rendered output to a file instead of stdout.")
	})
	addSharedGlobalFlag(cmd, "access-token", func() {
		cmd.Flags().StringVar(&flags.AccessToken, "access-token", "", "Access token for authenticated endpoints (JWT or Bearer value). Overrides the saved session.")
	})
	addSharedGlobalFlag(cmd, "refresh-token", func() {
		cmd.Flags().StringVar(&flags.RefreshToken, "refresh-token", "", "Refresh token for automatic access token rotation.")
	})
	addSharedGlobalFlag(cmd, "verbose", func() {
		cmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose output (prints backend request trace and detailed error diagnostics).")
	})
}

func addSharedGlobalFlag(cmd *cobra.Command, name string, register func()) {
	if cmd.Flags().Lookup(name) != nil {
		return
	}
	register()
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		return
	}
	if flag.Annotations == nil {
		flag.Annotations = map[string][]string{}
	}
	flag.Annotations[sharedGlobalFlagAnnotation] = []string{"true"}
}

func sessionService(deps Dependencies) *session.Service {
	return session.NewService(deps.Store, deps.Directory)
}

func navMachine(deps Dependencies) *nav.Machine {
	return nav.NewMachine(deps.Store)
}

// resolveCityScope picks the effective city for a command run: the --city
// override when given, otherwise the saved selection. Known shorthands
// canonicalize, anything else passes through for the name join.
func resolveCityScope(deps Dependencies, flags globalFlags) string {
	city := strings.TrimSpace(flags.City)
	if city == "" && deps.Store != nil {
		city = sessionService(deps).City()
	}
	if canonical, ok := domain.LookupCity(city); ok {
		return canonical
	}
	return city
}

func resolveCityLabel(city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		return "all"
	}
	return city
}

func parseOutputFormat(format string) (output.Format, error) {
	return output.ParseFormat(format)
}

func writeTable(cmd *cobra.Command, text string, outputPath string) error {
	if err := output.WriteOutput(cmd.OutOrStdout(), text, outputPath); err != nil {
		return err
	}
	return nil
}

func writeMachinePayload(cmd *cobra.Command, env output.Envelope, format output.Format, outputPath string) error {
	rendered, err := output.RenderPayload(env, format)
	if err != nil {
		return err
	}
	if err := output.WriteOutput(cmd.OutOrStdout(), rendered, outputPath); err != nil {
		return err
	}
	return nil
}

func emitError(
	cmd *cobra.Command,
	format output.Format,
	city string,
	view string,
	outputPath string,
	code string,
	message string,
) error {
	if format == output.FormatTable {
		if err := output.WriteOutput(cmd.OutOrStdout(), message, outputPath); err != nil {
			return err
		}
		return &exitError{code: 1}
	}
	env := output.BuildEnvelope(resolveCityLabel(city), view, nil, []string{}, map[string]any{
		"code":    code,
		"message": message,
	})
	if err := writeMachinePayload(cmd, env, format, outputPath); err != nil {
		return err
	}
	return &exitError{code: 1}
}

func validationError(err error, format output.Format, city string, view string, outputPath string, cmd *cobra.Command) error {
	return emitError(cmd, format, city, view, outputPath, "CRUNCH_VALIDATION_ERROR", err.Error())
}

func emitUpstreamError(
	cmd *cobra.Command,
	format output.Format,
	city string,
	view string,
	outputPath string,
	verbose bool,
	err error,
) error {
	if err == nil {
		err = directory.ErrUpstream
	}
	if verbose {
		return emitError(cmd, format, city, view, outputPath, "CRUNCH_UPSTREAM_ERROR", err.Error())
	}

	message := directory.ErrUpstream.Error() + " (use --verbose for details)"
	var upstreamErr *directory.UpstreamRequestError
	if errors.As(err, &upstreamErr) && upstreamErr.StatusCode > 0 {
		message = fmt.Sprintf("%s (status %d, use --verbose for details)", directory.ErrUpstream.Error(), upstreamErr.StatusCode)
	}
	return emitError(cmd, format, city, view, outputPath, "CRUNCH_UPSTREAM_ERROR", message)
}

func splitCSV(value string) map[string]struct{} {
	result := map[string]struct{}{}
	if strings.TrimSpace(value) == "" {
		return result
	}
	for _, part := range strings.Split(value, ",") {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		result[token] = struct{}{}
	}
	return result
}

func requiredArg(name string) string {
	return fmt.Sprintf("%s is required", name)
}

// flattenListFlag splits repeatable flag values that may each carry a
// comma-separated list, so --diet keto --diet "paleo, carnivore" works.
func flattenListFlag(values []string) []string {
	flattened := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			flattened = append(flattened, trimmed)
		}
	}
	return flattened
}

func buildAuthContext(deps Dependencies, flags globalFlags) directory.AuthContext {
	auth := directory.AuthContext{}
	if deps.Store != nil {
		auth = sessionService(deps).AuthContext()
	}
	if token := normalizeAccessToken(flags.AccessToken); token != "" {
		auth.AccessToken = token
	}
	if token := strings.TrimSpace(flags.RefreshToken); token != "" {
		auth.RefreshToken = token
	}
	return auth
}

func requireAuth(
	cmd *cobra.Command,
	format output.Format,
	city string,
	view string,
	outputPath string,
	auth directory.AuthContext,
) error {
	if auth.HasCredentials() {
		return nil
	}
	return emitError(
		cmd,
		format,
		city,
		view,
		outputPath,
		"CRUNCH_AUTH_REQUIRED",
		"Authentication is required. Run `crunch auth login` or provide --access-token.",
	)
}

func isUnauthorizedUpstream(err error) bool {
	var upstreamErr *directory.UpstreamRequestError
	if !errors.As(err, &upstreamErr) {
		return false
	}
	return upstreamErr.StatusCode == 401
}

func refreshAuthContext(
	ctx context.Context,
	deps Dependencies,
	auth *directory.AuthContext,
) (bool, []string, error) {
	warnings := []string{}
	if auth == nil {
		return false, warnings, fmt.Errorf("auth context is nil")
	}
	refreshToken := strings.TrimSpace(auth.RefreshToken)
	if refreshToken == "" {
		return false, warnings, nil
	}
	result, err := deps.Directory.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return false, warnings, err
	}
	accessToken := strings.TrimSpace(result.AccessToken)
	if accessToken == "" {
		return false, warnings, fmt.Errorf("refresh response did not include access token")
	}

	sessionHeld := false
	if deps.Store != nil {
		stored := sessionService(deps).Tokens()
		sessionHeld = strings.TrimSpace(stored.RefreshToken) == refreshToken
	}

	auth.AccessToken = accessToken
	if candidate := strings.TrimSpace(result.RefreshToken); candidate != "" {
		auth.RefreshToken = candidate
	}
	warnings = append(warnings, "access token refreshed automatically")
	if sessionHeld {
		adopted := domain.SessionTokens{
			AccessToken:  auth.AccessToken,
			RefreshToken: auth.RefreshToken,
			Email:        strings.TrimSpace(result.Email),
		}
		if err := sessionService(deps).Adopt(adopted); err != nil {
			warnings = append(warnings, "failed to persist rotated tokens in local state")
		}
	}
	return true, warnings, nil
}

func invokeWithAuthAutoRefresh[T any](
	ctx context.Context,
	deps Dependencies,
	auth *directory.AuthContext,
	invoke func(directory.AuthContext) (T, error),
) (T, []string, error) {
	var zero T
	warnings := []string{}
	if auth == nil {
		return zero, warnings, fmt.Errorf("auth context is nil")
	}
	if session.Expired(auth.AccessToken, time.Now().UTC(), 30*time.Second) {
		_, refreshWarnings, refreshErr := refreshAuthContext(ctx, deps, auth)
		warnings = append(warnings, refreshWarnings...)
		if refreshErr != nil {
			warnings = append(warnings, "automatic token refresh failed before request")
		}
	}

	result, err := invoke(*auth)
	if err == nil {
		return result, warnings, nil
	}
	if !isUnauthorizedUpstream(err) {
		return result, warnings, err
	}

	refreshed, refreshWarnings, refreshErr := refreshAuthContext(ctx, deps, auth)
	warnings = append(warnings, refreshWarnings...)
	if refreshErr != nil {
		return result, warnings, fmt.Errorf("%w: automatic token refresh failed: %v", err, refreshErr)
	}
	if !refreshed {
		return result, warnings, err
	}

	retryResult, retryErr := invoke(*auth)
	return retryResult, warnings, retryErr
}
