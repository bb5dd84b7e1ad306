package directory

import (
	"context"
	"strings"
)

// AuthContext stores the signed-in user's credentials for backend calls.
// Anonymous reads leave it empty; the project key alone authorizes them.
type AuthContext struct {
	AccessToken  string
	RefreshToken string
}

// HasCredentials reports whether a user access token is present.
func (a AuthContext) HasCredentials() bool {
	return strings.TrimSpace(a.AccessToken) != ""
}

// RestaurantPageQuery selects one page of the public listing table. The
// backend only ever narrows by city and slices by offset; all other
// refinement happens client side. CityID wins when set, CityName drives
// the relational name join used before the city index has loaded.
type RestaurantPageQuery struct {
	CityID   string
	CityName string
	Limit    int
	Offset   int
}

// RestaurantPage is one slice of listing rows plus the exact table count
// when the backend reported one.
type RestaurantPage struct {
	Rows     []map[string]any
	Total    int
	HasTotal bool
}

// TokenGrantResult stores credentials minted by a password or refresh grant.
type TokenGrantResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	UserID       string
	Email        string
}

// API describes all directory backend operations used by the CLI.
type API interface {
	RestaurantPage(ctx context.Context, query RestaurantPageQuery) (RestaurantPage, error)
	RestaurantByID(ctx context.Context, id string) (map[string]any, error)
	CityRows(ctx context.Context) ([]map[string]any, error)
	InsertSuggestion(ctx context.Context, payload map[string]any) (map[string]any, error)
	PendingSubmissionRows(ctx context.Context, auth AuthContext) ([]map[string]any, error)
	InsertRestaurant(ctx context.Context, payload map[string]any, auth AuthContext) (map[string]any, error)
	DeletePendingSubmission(ctx context.Context, id string, auth AuthContext) error
	SubscribeNewsletter(ctx context.Context, email string) (map[string]any, error)
	InsertContactMessage(ctx context.Context, payload map[string]any) (map[string]any, error)
	UserRole(ctx context.Context, userID string, auth AuthContext) (string, error)
	SignIn(ctx context.Context, email, password string) (TokenGrantResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (TokenGrantResult, error)
	AuthUser(ctx context.Context, auth AuthContext) (map[string]any, error)
}
