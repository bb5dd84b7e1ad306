package cli

import (
	"context"
	"strings"
	"testing"
)

func TestContactSendSubmitsMessage(t *testing.T) {
	var inserted map[string]any
	deps := Dependencies{
		Directory: &testDirectoryAPI{
			insertContactMessageFn: func(_ context.Context, payload map[string]any) (map[string]any, error) {
				inserted = payload
				return payload, nil
			},
		},
		Store: &testStateStore{},
	}

	out, err := executeCommand(deps,
		"contact", "send",
		"--name", "Kim",
		"--email", "kim@example.com",
		"--message", "  Please add Portland next.  ",
		"--format", "json",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}

	if inserted["name"] != "Kim" || inserted["email"] != "kim@example.com" {
		t.Fatalf("unexpected insert payload: %v", inserted)
	}
	if inserted["message"] != "Please add Portland next." {
		t.Fatalf("expected trimmed message, got %q", inserted["message"])
	}
	if asString(inserted["id"]) == "" {
		t.Fatalf("expected generated message id")
	}

	payload := mustJSON(t, out)
	if meta := payloadMap(t, payload["meta"]); meta["view"] != "contact" {
		t.Fatalf("unexpected view: %v", meta["view"])
	}
	data := payloadMap(t, payload["data"])
	if data["message_id"] != inserted["id"] || data["name"] != "Kim" {
		t.Fatalf("unexpected payload: %v", data)
	}
	notices := payloadSlice(t, data["notices"])
	if len(notices) != 1 || !strings.Contains(asString(payloadMap(t, notices[0])["message"]), "Message sent") {
		t.Fatalf("unexpected notices: %v", notices)
	}
}

func TestContactSendCollectsEveryFieldProblem(t *testing.T) {
	insertCalled := false
	deps := Dependencies{
		Directory: &testDirectoryAPI{
			insertContactMessageFn: func(_ context.Context, payload map[string]any) (map[string]any, error) {
				insertCalled = true
				return payload, nil
			},
		},
		Store: &testStateStore{},
	}

	out, err := executeCommand(deps,
		"contact", "send",
		"--name", "   ",
		"--email", "nope",
		"--message", " ",
		"--format", "json",
	)
	if code := exitCodeOf(t, err); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if insertCalled {
		t.Fatalf("invalid messages must not reach the backend")
	}

	errPayload := payloadMap(t, mustJSON(t, out)["error"])
	if errPayload["code"] != "CRUNCH_VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: %v", errPayload["code"])
	}
	message := asString(errPayload["message"])
	for _, problem := range []string{"name: required", "email: a valid email is required", "message: required"} {
		if !strings.Contains(message, problem) {
			t.Fatalf("expected %q in %q", problem, message)
		}
	}
}

func TestContactSendPrefersStoredMessageID(t *testing.T) {
	deps := Dependencies{
		Directory: &testDirectoryAPI{
			insertContactMessageFn: func(context.Context, map[string]any) (map[string]any, error) {
				return map[string]any{"id": "msg-42"}, nil
			},
		},
		Store: &testStateStore{},
	}

	out, err := executeCommand(deps, "contact", "send", "--name", "Kim", "--email", "kim@example.com", "--message", "hi", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}

	data := payloadMap(t, mustJSON(t, out)["data"])
	if data["message_id"] != "msg-42" {
		t.Fatalf("expected backend id to win, got %v", data["message_id"])
	}
}

func TestContactSendTableOutput(t *testing.T) {
	deps := Dependencies{Directory: &testDirectoryAPI{}, Store: &testStateStore{}}

	out, err := executeCommand(deps, "contact", "send", "--name", "Kim", "--email", "kim@example.com", "--message", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "Contact") || !strings.Contains(out, "Name\tKim") {
		t.Fatalf("missing table content:\n%s", out)
	}
	if !strings.Contains(out, "Message sent.") {
		t.Fatalf("missing confirmation notice:\n%s", out)
	}
}
