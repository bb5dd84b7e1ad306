package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultRestAPIURL = "https://api.crunch.directory/rest/v1"
	defaultAuthAPIURL = "https://api.crunch.directory/auth/v1"
	clientInfoHeader  = "crunch-cli/1"

	restaurantsTable = "restaurants"
	citiesTable      = "cities"
	suggestionsTable = "restaurant_suggestions"
	pendingTable     = "pending_submissions"
	newsletterTable  = "newsletter_subscriptions"
	contactTable     = "contact_messages"
	userRolesTable   = "user_roles"

	// Listing rows always arrive with their city and tag names embedded so
	// the normalizer never needs a second round trip.
	restaurantSelect         = "*,cities(name),restaurant_dietary_tags(dietary_tags(name))"
	restaurantSelectCityJoin = "*,cities!inner(name),restaurant_dietary_tags(dietary_tags(name))"
)

// ErrUpstream indicates a directory backend failure.
var ErrUpstream = errors.New("[crunch] error when trying to get response from directory api")

// HTTPClient is implemented by http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Endpoints stores backend base urls.
type Endpoints struct {
	Rest string
	Auth string
}

// Client queries the hosted directory backend.
type Client struct {
	httpClient     HTTPClient
	endpoints      Endpoints
	apiKey         string
	minRequestGap  time.Duration
	requestWindowM sync.Mutex
	nextRequestAt  time.Time
	verboseOutput  io.Writer
	verboseOutputM sync.RWMutex
}

// Option applies Client options.
type Option func(*Client)

// WithHTTPClient replaces default HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithEndpoints replaces default endpoint set.
func WithEndpoints(endpoints Endpoints) Option {
	return func(c *Client) {
		c.endpoints = endpoints
	}
}

// WithAPIKey sets the public project key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithRequestMinInterval limits request burst by enforcing minimum delay between backend calls.
func WithRequestMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval < 0 {
			interval = 0
		}
		c.minRequestGap = interval
	}
}

// WithVerboseOutput enables per-request trace output for backend HTTP calls.
func WithVerboseOutput(out io.Writer) Option {
	return func(c *Client) {
		c.SetVerboseOutput(out)
	}
}

// NewClient creates a production directory gateway client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		endpoints: Endpoints{
			Rest: defaultRestAPIURL,
			Auth: defaultAuthAPIURL,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetVerboseOutput sets destination for verbose HTTP request trace lines.
func (c *Client) SetVerboseOutput(out io.Writer) {
	c.verboseOutputM.Lock()
	c.verboseOutput = out
	c.verboseOutputM.Unlock()
}

func (c *Client) headers(extra map[string]string, auth *AuthContext) map[string]string {
	headers := map[string]string{
		"Accept":        "application/json",
		"X-Client-Info": clientInfoHeader,
	}
	if c.apiKey != "" {
		headers["apikey"] = c.apiKey
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	if auth != nil {
		if token := strings.TrimSpace(auth.AccessToken); token != "" {
			headers["Authorization"] = "Bearer " + token
		}
	}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}

func (c *Client) tableURL(table string) string {
	return strings.TrimRight(c.endpoints.Rest, "/") + "/" + table
}

func (c *Client) authURL(path string) string {
	return strings.TrimRight(c.endpoints.Auth, "/") + "/" + path
}

func (c *Client) doJSON(
	ctx context.Context,
	method string,
	rawURL string,
	params url.Values,
	body any,
	headers map[string]string,
) ([]byte, http.Header, error) {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	var bodyReader io.Reader
	bodyBytes := 0
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyBytes = len(payload)
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if err := c.waitForRequestSlot(ctx); err != nil {
		return nil, nil, err
	}

	startedAt := time.Now()
	c.traceRequestStart(method, rawURL, bodyBytes)

	res, err := c.httpClient.Do(req)
	if err != nil {
		upstreamErr := &UpstreamRequestError{
			Method: method,
			URL:    rawURL,
			Cause:  err,
		}
		c.traceRequestDone(method, rawURL, 0, 0, startedAt, upstreamErr)
		return nil, nil, upstreamErr
	}
	defer func() {
		_ = res.Body.Close()
	}()

	rawResponse, err := io.ReadAll(res.Body)
	if err != nil {
		upstreamErr := &UpstreamRequestError{
			Method:     method,
			URL:        rawURL,
			StatusCode: res.StatusCode,
			Cause:      fmt.Errorf("read response body: %w", err),
		}
		c.traceRequestDone(method, rawURL, res.StatusCode, 0, startedAt, upstreamErr)
		return nil, nil, upstreamErr
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		upstreamErr := &UpstreamRequestError{
			Method:     method,
			URL:        rawURL,
			StatusCode: res.StatusCode,
			Body:       string(rawResponse),
		}
		c.traceRequestDone(method, rawURL, res.StatusCode, len(rawResponse), startedAt, upstreamErr)
		return nil, nil, upstreamErr
	}

	c.traceRequestDone(method, rawURL, res.StatusCode, len(rawResponse), startedAt, nil)
	return rawResponse, res.Header, nil
}

func (c *Client) rowsRequest(
	ctx context.Context,
	method string,
	rawURL string,
	params url.Values,
	body any,
	headers map[string]string,
) ([]map[string]any, http.Header, error) {
	rawResponse, resHeader, err := c.doJSON(ctx, method, rawURL, params, body, headers)
	if err != nil {
		return nil, nil, err
	}
	rows, err := decodeRows(method, rawURL, rawResponse)
	if err != nil {
		return nil, nil, err
	}
	return rows, resHeader, nil
}

func (c *Client) objectRequest(
	ctx context.Context,
	method string,
	rawURL string,
	params url.Values,
	body any,
	headers map[string]string,
) (map[string]any, error) {
	rawResponse, _, err := c.doJSON(ctx, method, rawURL, params, body, headers)
	if err != nil {
		return nil, err
	}
	return decodeObject(method, rawURL, rawResponse)
}

// decodeRows accepts both the bare-array shape row endpoints return and a
// single object, which insert endpoints use when only one row comes back.
func decodeRows(method, rawURL string, rawResponse []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(rawResponse)
	if len(trimmed) == 0 {
		return []map[string]any{}, nil
	}
	if bytes.HasPrefix(trimmed, []byte("{")) {
		object, err := decodeObject(method, rawURL, trimmed)
		if err != nil {
			return nil, err
		}
		return []map[string]any{object}, nil
	}
	var rows []map[string]any
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, &UpstreamRequestError{
			Method: method,
			URL:    rawURL,
			Body:   string(rawResponse),
			Cause:  fmt.Errorf("decode response body: %w", err),
		}
	}
	return rows, nil
}

func decodeObject(method, rawURL string, rawResponse []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(rawResponse)) == 0 {
		return map[string]any{}, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(rawResponse, &payload); err != nil {
		return nil, &UpstreamRequestError{
			Method: method,
			URL:    rawURL,
			Body:   string(rawResponse),
			Cause:  fmt.Errorf("decode response body: %w", err),
		}
	}
	return payload, nil
}

func (c *Client) traceRequestStart(method, rawURL string, bodyBytes int) {
	if bodyBytes > 0 {
		c.tracef("[http] -> %s %s body_bytes=%d", method, rawURL, bodyBytes)
		return
	}
	c.tracef("[http] -> %s %s", method, rawURL)
}

func (c *Client) traceRequestDone(method, rawURL string, statusCode int, responseBytes int, startedAt time.Time, reqErr error) {
	duration := time.Since(startedAt).Round(time.Millisecond)
	if reqErr != nil {
		c.tracef("[http] <- %s %s error=%v duration=%s", method, rawURL, reqErr, duration)
		return
	}
	c.tracef(
		"[http] <- %s %s status=%d duration=%s bytes=%d",
		method,
		rawURL,
		statusCode,
		duration,
		responseBytes,
	)
}

func (c *Client) waitForRequestSlot(ctx context.Context) error {
	interval := c.minRequestGap
	if interval <= 0 {
		return nil
	}
	for {
		c.requestWindowM.Lock()
		wait := time.Until(c.nextRequestAt)
		if wait <= 0 {
			c.nextRequestAt = time.Now().Add(interval)
			c.requestWindowM.Unlock()
			return nil
		}
		c.requestWindowM.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) tracef(format string, args ...any) {
	c.verboseOutputM.RLock()
	out := c.verboseOutput
	c.verboseOutputM.RUnlock()
	if out == nil {
		return
	}
	_, _ = fmt.Fprintf(out, format+"\n", args...)
}

// parseContentRange extracts the exact table count from a Content-Range
// header ("0-19/134"). An unknown total ("0-19/*") reports no count.
func parseContentRange(header string) (int, bool) {
	_, rawTotal, found := strings.Cut(strings.TrimSpace(header), "/")
	if !found {
		return 0, false
	}
	total, err := strconv.Atoi(strings.TrimSpace(rawTotal))
	if err != nil || total < 0 {
		return 0, false
	}
	return total, true
}

func payloadString(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		for actualKey, rawValue := range payload {
			if !strings.EqualFold(strings.TrimSpace(actualKey), strings.TrimSpace(key)) {
				continue
			}
			if value, ok := rawValue.(string); ok {
				if token := strings.TrimSpace(value); token != "" {
					return token
				}
			}
		}
	}
	return ""
}

func payloadInt(payload map[string]any, keys ...string) int {
	for _, key := range keys {
		for actualKey, rawValue := range payload {
			if !strings.EqualFold(strings.TrimSpace(actualKey), strings.TrimSpace(key)) {
				continue
			}
			switch value := rawValue.(type) {
			case float64:
				return int(value)
			case int:
				return value
			case int64:
				return int(value)
			case json.Number:
				if parsed, err := value.Int64(); err == nil {
					return int(parsed)
				}
			}
		}
	}
	return 0
}

// RestaurantPage loads one slice of the public listing table with the
// exact count. City narrows by id when the caller has one, otherwise by
// an inner join on the city name.
func (c *Client) RestaurantPage(ctx context.Context, query RestaurantPageQuery) (RestaurantPage, error) {
	params := url.Values{}
	params.Set("select", restaurantSelect)
	params.Set("order", "name.asc")
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}
	switch {
	case strings.TrimSpace(query.CityID) != "":
		params.Set("city_id", "eq."+strings.TrimSpace(query.CityID))
	case strings.TrimSpace(query.CityName) != "":
		params.Set("select", restaurantSelectCityJoin)
		params.Set("cities.name", "eq."+strings.TrimSpace(query.CityName))
	}

	rows, resHeader, err := c.rowsRequest(
		ctx,
		http.MethodGet,
		c.tableURL(restaurantsTable),
		params,
		nil,
		c.headers(map[string]string{"Prefer": "count=exact"}, nil),
	)
	if err != nil {
		return RestaurantPage{}, err
	}

	page := RestaurantPage{Rows: rows}
	if total, ok := parseContentRange(resHeader.Get("Content-Range")); ok {
		page.Total = total
		page.HasTotal = true
	}
	return page, nil
}

// RestaurantByID loads one listing row with its embedded relations.
func (c *Client) RestaurantByID(ctx context.Context, id string) (map[string]any, error) {
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return nil, fmt.Errorf("restaurant id is required")
	}
	params := url.Values{}
	params.Set("select", restaurantSelect)
	params.Set("id", "eq."+trimmedID)
	params.Set("limit", "1")

	rows, _, err := c.rowsRequest(ctx, http.MethodGet, c.tableURL(restaurantsTable), params, nil, c.headers(nil, nil))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: restaurant %s not found", ErrUpstream, trimmedID)
	}
	return rows[0], nil
}

// CityRows returns the city index used to turn selected city names into
// row identifiers.
func (c *Client) CityRows(ctx context.Context) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("select", "id,name")
	params.Set("order", "name.asc")
	rows, _, err := c.rowsRequest(ctx, http.MethodGet, c.tableURL(citiesTable), params, nil, c.headers(nil, nil))
	return rows, err
}

// InsertSuggestion stores a visitor suggestion and returns the stored row.
func (c *Client) InsertSuggestion(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.insertRow(ctx, suggestionsTable, payload, nil)
}

// PendingSubmissionRows returns the moderation queue, oldest first.
func (c *Client) PendingSubmissionRows(ctx context.Context, auth AuthContext) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "created_at.asc")
	rows, _, err := c.rowsRequest(ctx, http.MethodGet, c.tableURL(pendingTable), params, nil, c.headers(nil, &auth))
	return rows, err
}

// InsertRestaurant publishes an approved submission into the public table.
func (c *Client) InsertRestaurant(ctx context.Context, payload map[string]any, auth AuthContext) (map[string]any, error) {
	return c.insertRow(ctx, restaurantsTable, payload, &auth)
}

// DeletePendingSubmission removes one row from the moderation queue.
func (c *Client) DeletePendingSubmission(ctx context.Context, id string, auth AuthContext) error {
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("submission id is required")
	}
	params := url.Values{}
	params.Set("id", "eq."+trimmedID)
	_, _, err := c.doJSON(
		ctx,
		http.MethodDelete,
		c.tableURL(pendingTable),
		params,
		nil,
		c.headers(map[string]string{"Prefer": "return=minimal"}, &auth),
	)
	return err
}

// SubscribeNewsletter records a newsletter signup.
func (c *Client) SubscribeNewsletter(ctx context.Context, email string) (map[string]any, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, fmt.Errorf("email is required")
	}
	return c.insertRow(ctx, newsletterTable, map[string]any{"email": trimmed}, nil)
}

// InsertContactMessage stores a contact form message.
func (c *Client) InsertContactMessage(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.insertRow(ctx, contactTable, payload, nil)
}

func (c *Client) insertRow(ctx context.Context, table string, payload map[string]any, auth *AuthContext) (map[string]any, error) {
	rows, _, err := c.rowsRequest(
		ctx,
		http.MethodPost,
		c.tableURL(table),
		nil,
		payload,
		c.headers(map[string]string{
			"Content-Type": "application/json",
			"Prefer":       "return=representation",
		}, auth),
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]any{}, nil
	}
	return rows[0], nil
}

// UserRole returns the user's moderation role, or empty when none is set.
func (c *Client) UserRole(ctx context.Context, userID string, auth AuthContext) (string, error) {
	trimmedID := strings.TrimSpace(userID)
	if trimmedID == "" {
		return "", fmt.Errorf("user id is required")
	}
	params := url.Values{}
	params.Set("select", "role")
	params.Set("user_id", "eq."+trimmedID)
	params.Set("limit", "1")

	rows, _, err := c.rowsRequest(ctx, http.MethodGet, c.tableURL(userRolesTable), params, nil, c.headers(nil, &auth))
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return payloadString(rows[0], "role"), nil
}

// SignIn exchanges an email and password for a token pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (TokenGrantResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return TokenGrantResult{}, fmt.Errorf("email is required")
	}
	if password == "" {
		return TokenGrantResult{}, fmt.Errorf("password is required")
	}
	params := url.Values{}
	params.Set("grant_type", "password")
	body := map[string]any{"email": email, "password": password}
	return c.tokenGrant(ctx, params, body)
}

// RefreshAccessToken exchanges a refresh token for a new token pair.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (TokenGrantResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenGrantResult{}, fmt.Errorf("refresh token is required")
	}
	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	body := map[string]any{"refresh_token": refreshToken}
	return c.tokenGrant(ctx, params, body)
}

func (c *Client) tokenGrant(ctx context.Context, params url.Values, body map[string]any) (TokenGrantResult, error) {
	endpoint := c.authURL("token")
	payload, err := c.objectRequest(
		ctx,
		http.MethodPost,
		endpoint,
		params,
		body,
		c.headers(map[string]string{"Content-Type": "application/json"}, nil),
	)
	if err != nil {
		return TokenGrantResult{}, err
	}

	result := TokenGrantResult{
		AccessToken:  payloadString(payload, "access_token", "accessToken"),
		RefreshToken: payloadString(payload, "refresh_token", "refreshToken"),
		ExpiresIn:    payloadInt(payload, "expires_in", "expiresIn"),
	}
	if user, ok := payload["user"].(map[string]any); ok {
		result.UserID = payloadString(user, "id")
		result.Email = payloadString(user, "email")
	}
	if result.AccessToken == "" {
		return TokenGrantResult{}, fmt.Errorf("%w: token response missing access_token", ErrUpstream)
	}
	return result, nil
}

// AuthUser returns the signed-in user's account details.
func (c *Client) AuthUser(ctx context.Context, auth AuthContext) (map[string]any, error) {
	return c.objectRequest(ctx, http.MethodGet, c.authURL("user"), nil, nil, c.headers(nil, &auth))
}
