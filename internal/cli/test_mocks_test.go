package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
	"github.com/crunchfoods/crunch-cli/internal/gateway/geo"
	"github.com/golang-jwt/jwt/v5"
)

type testDirectoryAPI struct {
	restaurantPageFn          func(context.Context, directory.RestaurantPageQuery) (directory.RestaurantPage, error)
	restaurantByIDFn          func(context.Context, string) (map[string]any, error)
	cityRowsFn                func(context.Context) ([]map[string]any, error)
	insertSuggestionFn        func(context.Context, map[string]any) (map[string]any, error)
	pendingSubmissionRowsFn   func(context.Context, directory.AuthContext) ([]map[string]any, error)
	insertRestaurantFn        func(context.Context, map[string]any, directory.AuthContext) (map[string]any, error)
	deletePendingSubmissionFn func(context.Context, string, directory.AuthContext) error
	subscribeNewsletterFn     func(context.Context, string) (map[string]any, error)
	insertContactMessageFn    func(context.Context, map[string]any) (map[string]any, error)
	userRoleFn                func(context.Context, string, directory.AuthContext) (string, error)
	signInFn                  func(context.Context, string, string) (directory.TokenGrantResult, error)
	refreshAccessTokenFn      func(context.Context, string) (directory.TokenGrantResult, error)
	authUserFn                func(context.Context, directory.AuthContext) (map[string]any, error)
}

func (m *testDirectoryAPI) RestaurantPage(ctx context.Context, query directory.RestaurantPageQuery) (directory.RestaurantPage, error) {
	if m.restaurantPageFn != nil {
		return m.restaurantPageFn(ctx, query)
	}
	return directory.RestaurantPage{}, nil
}

func (m *testDirectoryAPI) RestaurantByID(ctx context.Context, id string) (map[string]any, error) {
	if m.restaurantByIDFn != nil {
		return m.restaurantByIDFn(ctx, id)
	}
	return map[string]any{}, nil
}

func (m *testDirectoryAPI) CityRows(ctx context.Context) ([]map[string]any, error) {
	if m.cityRowsFn != nil {
		return m.cityRowsFn(ctx)
	}
	return nil, nil
}

func (m *testDirectoryAPI) InsertSuggestion(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if m.insertSuggestionFn != nil {
		return m.insertSuggestionFn(ctx, payload)
	}
	return payload, nil
}

func (m *testDirectoryAPI) PendingSubmissionRows(ctx context.Context, auth directory.AuthContext) ([]map[string]any, error) {
	if m.pendingSubmissionRowsFn != nil {
		return m.pendingSubmissionRowsFn(ctx, auth)
	}
	return nil, nil
}

func (m *testDirectoryAPI) InsertRestaurant(ctx context.Context, payload map[string]any, auth directory.AuthContext) (map[string]any, error) {
	if m.insertRestaurantFn != nil {
		return m.insertRestaurantFn(ctx, payload, auth)
	}
	return payload, nil
}

func (m *testDirectoryAPI) DeletePendingSubmission(ctx context.Context, id string, auth directory.AuthContext) error {
	if m.deletePendingSubmissionFn != nil {
		return m.deletePendingSubmissionFn(ctx, id, auth)
	}
	return nil
}

func (m *testDirectoryAPI) SubscribeNewsletter(ctx context.Context, email string) (map[string]any, error) {
	if m.subscribeNewsletterFn != nil {
		return m.subscribeNewsletterFn(ctx, email)
	}
	return map[string]any{"email": email}, nil
}

func (m *testDirectoryAPI) InsertContactMessage(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if m.insertContactMessageFn != nil {
		return m.insertContactMessageFn(ctx, payload)
	}
	return payload, nil
}

func (m *testDirectoryAPI) UserRole(ctx context.Context, userID string, auth directory.AuthContext) (string, error) {
	if m.userRoleFn != nil {
		return m.userRoleFn(ctx, userID, auth)
	}
	return "", nil
}

func (m *testDirectoryAPI) SignIn(ctx context.Context, email, password string) (directory.TokenGrantResult, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return directory.TokenGrantResult{}, nil
}

func (m *testDirectoryAPI) RefreshAccessToken(ctx context.Context, refreshToken string) (directory.TokenGrantResult, error) {
	if m.refreshAccessTokenFn != nil {
		return m.refreshAccessTokenFn(ctx, refreshToken)
	}
	return directory.TokenGrantResult{}, nil
}

func (m *testDirectoryAPI) AuthUser(ctx context.Context, auth directory.AuthContext) (map[string]any, error) {
	if m.authUserFn != nil {
		return m.authUserFn(ctx, auth)
	}
	return map[string]any{}, nil
}

type testStateStore struct {
	state   domain.State
	loadErr error
	saveErr error
	saves   int
}

func (s *testStateStore) Path() string {
	return "/tmp/test-crunch-state.json"
}

func (s *testStateStore) Load() (domain.State, error) {
	if s.loadErr != nil {
		return domain.State{}, s.loadErr
	}
	return s.state, nil
}

func (s *testStateStore) Save(state domain.State) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.state = state
	s.saves++
	return nil
}

type testMapResolver struct {
	enabled     bool
	geocodeFn   func(context.Context, string) (geo.Point, error)
	staticMapFn func(geo.Point) (string, error)
}

func (m *testMapResolver) Enabled() bool {
	return m.enabled
}

func (m *testMapResolver) Geocode(ctx context.Context, address string) (geo.Point, error) {
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return geo.Point{}, geo.ErrDisabled
}

func (m *testMapResolver) StaticMapURL(point geo.Point) (string, error) {
	if m.staticMapFn != nil {
		return m.staticMapFn(point)
	}
	return "", geo.ErrDisabled
}

// executeCommand runs the full command tree the way main does, capturing
// combined output.
func executeCommand(deps Dependencies, args ...string) (string, error) {
	root := NewRootCommand(deps)
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func mustJSON(t *testing.T, raw string) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("failed to parse JSON output: %v\noutput: %s", err, raw)
	}
	return payload
}

func payloadMap(t *testing.T, value any) map[string]any {
	t.Helper()
	payload, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("expected map payload, got %T", value)
	}
	return payload
}

func payloadSlice(t *testing.T, value any) []any {
	t.Helper()
	values, ok := value.([]any)
	if !ok {
		t.Fatalf("expected slice payload, got %T", value)
	}
	return values
}

func exitCodeOf(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var controlled *exitError
	if !errors.As(err, &controlled) {
		t.Fatalf("expected controlled exit error, got %v", err)
	}
	return controlled.code
}

func signedTestToken(t *testing.T, subject, email string, expires time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": subject, "exp": expires.Unix()}
	if email != "" {
		claims["email"] = email
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

func listingRow(id, name, city string, fields map[string]any) map[string]any {
	row := map[string]any{
		"id":     id,
		"name":   name,
		"cities": map[string]any{"name": city},
	}
	for key, value := range fields {
		row[key] = value
	}
	return row
}

func stateWithCity(city string) domain.State {
	return domain.State{ActiveView: domain.ViewHome, City: city}
}
