package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/crunchfoods/crunch-cli/internal/gateway/directory"
)

func TestNewsletterSubscribeStoresEmail(t *testing.T) {
	var subscribed string
	deps := Dependencies{
		Directory: &testDirectoryAPI{
			subscribeNewsletterFn: func(_ context.Context, email string) (map[string]any, error) {
				subscribed = email
				return map[string]any{"email": email}, nil
			},
		},
		Store: &testStateStore{},
	}

	out, err := executeCommand(deps, "newsletter", "subscribe", "--email", "kim@example.com", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}
	if subscribed != "kim@example.com" {
		t.Fatalf("unexpected subscribed address: %q", subscribed)
	}

	payload := mustJSON(t, out)
	if meta := payloadMap(t, payload["meta"]); meta["view"] != "home" {
		t.Fatalf("unexpected view: %v", meta["view"])
	}
	data := payloadMap(t, payload["data"])
	if data["email"] != "kim@example.com" || data["subscribed"] != true {
		t.Fatalf("unexpected payload: %v", data)
	}
	notices := payloadSlice(t, data["notices"])
	if len(notices) != 1 {
		t.Fatalf("expected one notice, got %v", notices)
	}
	notice := payloadMap(t, notices[0])
	if notice["kind"] != "success" || !strings.Contains(asString(notice["message"]), "new cities launch") {
		t.Fatalf("unexpected notice: %v", notice)
	}
}

func TestNewsletterSubscribeRejectsBadEmail(t *testing.T) {
	subscribeCalled := false
	deps := Dependencies{
		Directory: &testDirectoryAPI{
			subscribeNewsletterFn: func(_ context.Context, email string) (map[string]any, error) {
				subscribeCalled = true
				return map[string]any{"email": email}, nil
			},
		},
		Store: &testStateStore{},
	}

	out, err := executeCommand(deps, "newsletter", "subscribe", "--email", "not-an-email", "--format", "json")
	if code := exitCodeOf(t, err); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if subscribeCalled {
		t.Fatalf("invalid addresses must not reach the backend")
	}

	errPayload := payloadMap(t, mustJSON(t, out)["error"])
	if errPayload["code"] != "CRUNCH_VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: %v", errPayload["code"])
	}
	if !strings.Contains(asString(errPayload["message"]), "valid email is required") {
		t.Fatalf("unexpected message: %v", errPayload["message"])
	}
}

func TestNewsletterSubscribeUpstreamFailure(t *testing.T) {
	deps := Dependencies{
		Directory: &testDirectoryAPI{
			subscribeNewsletterFn: func(context.Context, string) (map[string]any, error) {
				return nil, &directory.UpstreamRequestError{Method: "POST", URL: "/newsletter_subscriptions", StatusCode: 500}
			},
		},
		Store: &testStateStore{},
	}

	out, err := executeCommand(deps, "newsletter", "subscribe", "--email", "kim@example.com", "--format", "json")
	if code := exitCodeOf(t, err); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}

	errPayload := payloadMap(t, mustJSON(t, out)["error"])
	if errPayload["code"] != "CRUNCH_UPSTREAM_ERROR" {
		t.Fatalf("unexpected error code: %v", errPayload["code"])
	}
	if !strings.Contains(asString(errPayload["message"]), "status 500") {
		t.Fatalf("unexpected message: %v", errPayload["message"])
	}
}

func TestNewsletterSubscribeTableOutput(t *testing.T) {
	deps := Dependencies{Directory: &testDirectoryAPI{}, Store: &testStateStore{}}

	out, err := executeCommand(deps, "newsletter", "subscribe", "--email", "kim@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "Newsletter") || !strings.Contains(out, "Email\tkim@example.com") {
		t.Fatalf("missing table content:\n%s", out)
	}
	if !strings.Contains(out, "Subscribed\tyes") {
		t.Fatalf("missing subscription row:\n%s", out)
	}
	if !strings.Contains(out, "You're on the list!") {
		t.Fatalf("missing confirmation notice:\n%s", out)
	}
}
