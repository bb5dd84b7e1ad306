package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/crunchfoods/crunch-cli/internal/domain"
	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
)

// Fields a visitor submission cannot vouch for are stamped with these
// values when the submission is approved into the public directory.
const (
	placeholderUnverified = "To Be Verified"
	placeholderHours      = "TBD"
)

var (
	// ErrValidation marks a suggestion rejected before reaching the backend.
	ErrValidation = errors.New("suggestion validation failed")
	// ErrPendingNotFound indicates the moderation queue has no such entry.
	ErrPendingNotFound = errors.New("pending submission not found")
)

// FieldError names one invalid form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries per-field messages so callers can render them
// next to the inputs they belong to.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid suggestion: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Gateway is the slice of the directory API the workflow needs.
type Gateway interface {
	InsertSuggestion(ctx context.Context, payload map[string]any) (map[string]any, error)
	PendingSubmissionRows(ctx context.Context, auth directory.AuthContext) ([]map[string]any, error)
	InsertRestaurant(ctx context.Context, payload map[string]any, auth directory.AuthContext) (map[string]any, error)
	DeletePendingSubmission(ctx context.Context, id string, auth directory.AuthContext) error
}

// Service runs the public suggestion intake and the admin moderation queue.
type Service struct {
	gateway Gateway
}

// NewService creates a moderation service over the given gateway.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// SubmitSuggestion validates and stores one visitor suggestion. Name and
// address are required; the website is normalized to carry a scheme. The
// stored record is returned so callers can confirm what was saved.
func (s *Service) SubmitSuggestion(ctx context.Context, suggestion domain.Suggestion) (domain.PendingSubmission, error) {
	name := strings.TrimSpace(suggestion.Name)
	address := strings.TrimSpace(suggestion.Address)

	var fields []FieldError
	if name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "required"})
	}
	if address == "" {
		fields = append(fields, FieldError{Field: "address", Message: "required"})
	}
	if len(fields) > 0 {
		return domain.PendingSubmission{}, &ValidationError{Fields: fields}
	}

	city := strings.TrimSpace(suggestion.City)
	if canonical, ok := domain.LookupCity(city); ok {
		city = canonical
	}

	payload := map[string]any{
		"id":      uuid.NewString(),
		"name":    name,
		"address": address,
	}
	setOptional(payload, "neighborhood", suggestion.Neighborhood)
	setOptional(payload, "city", city)
	setOptional(payload, "cuisine", suggestion.Cuisine)
	setOptional(payload, "phone", suggestion.Phone)
	setOptional(payload, "email", suggestion.Email)
	setOptional(payload, "website", NormalizeWebsite(suggestion.Website))
	setOptional(payload, "notes", suggestion.Notes)

	row, err := s.gateway.InsertSuggestion(ctx, payload)
	if err != nil {
		return domain.PendingSubmission{}, fmt.Errorf("submit suggestion: %w", err)
	}
	if len(row) == 0 {
		row = payload
	}
	return domain.NormalizePendingSubmission(row), nil
}

// PendingSubmissions lists the moderation queue in submission order.
func (s *Service) PendingSubmissions(ctx context.Context, auth directory.AuthContext) ([]domain.PendingSubmission, error) {
	rows, err := s.gateway.PendingSubmissionRows(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("load pending submissions: %w", err)
	}
	out := make([]domain.PendingSubmission, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.NormalizePendingSubmission(row))
	}
	return out, nil
}

// Approve promotes one pending submission into the public directory.
// The restaurant insert carries placeholders for everything the visitor
// could not supply. When the insert lands but the pending row cannot be
// removed, the approved restaurant is still returned together with a
// warning instead of rolling back.
func (s *Service) Approve(ctx context.Context, id string, auth directory.AuthContext) (domain.Restaurant, []string, error) {
	pending, err := s.findPending(ctx, id, auth)
	if err != nil {
		return domain.Restaurant{}, nil, err
	}

	payload := approvalPayload(pending)
	row, err := s.gateway.InsertRestaurant(ctx, payload, auth)
	if err != nil {
		return domain.Restaurant{}, nil, fmt.Errorf("approve submission %s: %w", id, err)
	}
	if len(row) == 0 {
		row = payload
	}
	approved := domain.NormalizeRestaurant(row)

	var warnings []string
	if err := s.gateway.DeletePendingSubmission(ctx, id, auth); err != nil {
		warnings = append(warnings, fmt.Sprintf("restaurant saved but pending submission %s could not be removed: %v", id, err))
	}
	return approved, warnings, nil
}

// Reject drops a pending submission without creating a restaurant.
func (s *Service) Reject(ctx context.Context, id string, auth directory.AuthContext) error {
	if _, err := s.findPending(ctx, id, auth); err != nil {
		return err
	}
	if err := s.gateway.DeletePendingSubmission(ctx, id, auth); err != nil {
		return fmt.Errorf("reject submission %s: %w", id, err)
	}
	return nil
}

// NormalizeWebsite prepends https:// when the address carries no scheme.
func NormalizeWebsite(raw string) string {
	site := strings.TrimSpace(raw)
	if site == "" {
		return ""
	}
	lower := strings.ToLower(site)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return site
	}
	return "https://" + site
}

func (s *Service) findPending(ctx context.Context, id string, auth directory.AuthContext) (domain.PendingSubmission, error) {
	pending, err := s.PendingSubmissions(ctx, auth)
	if err != nil {
		return domain.PendingSubmission{}, err
	}
	for _, p := range pending {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.PendingSubmission{}, fmt.Errorf("%w: %s", ErrPendingNotFound, id)
}

func approvalPayload(p domain.PendingSubmission) map[string]any {
	payload := map[string]any{
		"name":                p.Name,
		"address":             p.Address,
		"oils_used":           []string{placeholderUnverified},
		"dietary_tags":        []string{},
		"rating":              0,
		"hours":               placeholderHours,
		"verification_method": string(domain.VerificationOwner),
	}
	setOptional(payload, "neighborhood", p.Neighborhood)
	setOptional(payload, "city", p.City)
	setOptional(payload, "cuisine", p.Cuisine)
	setOptional(payload, "phone", p.Phone)
	setOptional(payload, "email", p.Email)
	setOptional(payload, "website", p.Website)
	return payload
}

func setOptional(payload map[string]any, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		payload[key] = v
	}
}
