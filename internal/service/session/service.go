package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
)

// AdminRole is the backend role value that unlocks moderation.
const AdminRole = "admin"

var (
	// ErrNotSignedIn indicates no stored credentials are available.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrInvalidLogin marks login input rejected before reaching the backend.
	ErrInvalidLogin = errors.New("invalid login input")
)

// Claims are the access token fields the client reads. Tokens are decoded
// without local signature verification.
type Claims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the subject, email, and expiry of an access token.
func ParseClaims(token string) (Claims, error) {
	var decoded tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), &decoded); err != nil {
		return Claims{}, fmt.Errorf("parse access token: %w", err)
	}
	out := Claims{UserID: decoded.Subject, Email: decoded.Email}
	if decoded.ExpiresAt != nil {
		out.ExpiresAt = decoded.ExpiresAt.Time
	}
	return out, nil
}

// Expired reports whether the token's exp claim has passed, with leeway
// subtracted. Tokens without a readable exp never read as expired.
func Expired(token string, now time.Time, leeway time.Duration) bool {
	claims, err := ParseClaims(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(claims.ExpiresAt.Add(-leeway))
}

// Storage persists session state between invocations.
type Storage interface {
	Load() (domain.State, error)
	Save(domain.State) error
}

// Authenticator is the slice of the directory API the session needs.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (directory.TokenGrantResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (directory.TokenGrantResult, error)
	UserRole(ctx context.Context, userID string, auth directory.AuthContext) (string, error)
}

// Service owns the persisted application state: the selected city and the
// signed-in session. Screens read through it and mutate through named
// operations, never by touching storage directly.
type Service struct {
	storage Storage
	auth    Authenticator
	now     func() time.Time
}

// NewService creates a session service over the given storage and backend.
func NewService(storage Storage, auth Authenticator) *Service {
	return &Service{storage: storage, auth: auth, now: time.Now}
}

// Login exchanges credentials for tokens and persists them.
func (s *Service) Login(ctx context.Context, email, password string) (domain.SessionTokens, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.SessionTokens{}, fmt.Errorf("%w: a valid email is required", ErrInvalidLogin)
	}
	if password == "" {
		return domain.SessionTokens{}, fmt.Errorf("%w: a password is required", ErrInvalidLogin)
	}

	result, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return domain.SessionTokens{}, fmt.Errorf("sign in: %w", err)
	}
	tokens := domain.SessionTokens{
		Email:        result.Email,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}
	if tokens.Email == "" {
		tokens.Email = email
	}
	if err := s.saveTokens(tokens); err != nil {
		return tokens, err
	}
	return tokens, nil
}

// Logout clears stored credentials. It reports whether any were present.
func (s *Service) Logout() (bool, error) {
	state := s.loadState()
	had := state.Session.HasCredentials()
	state.Session = domain.SessionTokens{}
	if err := s.storage.Save(state); err != nil {
		return had, fmt.Errorf("clear session: %w", err)
	}
	return had, nil
}

// Tokens returns the stored session, zero when none is stored.
func (s *Service) Tokens() domain.SessionTokens {
	return s.loadState().Session
}

// AuthContext shapes the stored session for gateway calls.
func (s *Service) AuthContext() directory.AuthContext {
	tokens := s.Tokens()
	return directory.AuthContext{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
}

// Refresh rotates the stored tokens through a refresh grant.
func (s *Service) Refresh(ctx context.Context) (domain.SessionTokens, error) {
	tokens := s.Tokens()
	if strings.TrimSpace(tokens.RefreshToken) == "" {
		return domain.SessionTokens{}, ErrNotSignedIn
	}

	result, err := s.auth.RefreshAccessToken(ctx, tokens.RefreshToken)
	if err != nil {
		return tokens, fmt.Errorf("refresh session: %w", err)
	}
	tokens.AccessToken = result.AccessToken
	if result.RefreshToken != "" {
		tokens.RefreshToken = result.RefreshToken
	}
	if result.Email != "" {
		tokens.Email = result.Email
	}
	if err := s.saveTokens(tokens); err != nil {
		return tokens, err
	}
	return tokens, nil
}

// RoleFor resolves the backend role carried by the given credentials.
// Unreadable tokens resolve to an empty role rather than failing, so the
// admin screen can fall back to its restricted notice.
func (s *Service) RoleFor(ctx context.Context, auth directory.AuthContext) (string, error) {
	if !auth.HasCredentials() {
		return "", ErrNotSignedIn
	}
	claims, err := ParseClaims(auth.AccessToken)
	if err != nil || claims.UserID == "" {
		return "", nil
	}
	role, err := s.auth.UserRole(ctx, claims.UserID, auth)
	if err != nil {
		return "", fmt.Errorf("resolve role: %w", err)
	}
	return role, nil
}

// IsAdmin resolves whether the signed-in user carries the admin role.
func (s *Service) IsAdmin(ctx context.Context) (bool, error) {
	role, err := s.RoleFor(ctx, s.AuthContext())
	if err != nil {
		return false, err
	}
	return role == AdminRole, nil
}

// City returns the persisted city selection.
func (s *Service) City() string {
	return s.loadState().City
}

// SetCity persists a new city selection, canonicalized when recognized.
// An empty value clears the selection back to the whole directory.
func (s *Service) SetCity(city string) (string, error) {
	city = strings.TrimSpace(city)
	if canonical, ok := domain.LookupCity(city); ok {
		city = canonical
	}
	state := s.loadState()
	state.City = city
	if err := s.storage.Save(state); err != nil {
		return city, fmt.Errorf("persist city: %w", err)
	}
	return city, nil
}

// Adopt persists tokens rotated outside the service over the stored
// session. The stored email is kept when the rotation did not carry one.
func (s *Service) Adopt(tokens domain.SessionTokens) error {
	if strings.TrimSpace(tokens.Email) == "" {
		tokens.Email = s.Tokens().Email
	}
	return s.saveTokens(tokens)
}

func (s *Service) saveTokens(tokens domain.SessionTokens) error {
	state := s.loadState()
	state.Session = tokens
	if err := s.storage.Save(state); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *Service) loadState() domain.State {
	state, err := s.storage.Load()
	if err != nil {
		return domain.State{}
	}
	return state
}
