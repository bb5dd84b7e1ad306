package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/crunchfoods/crunch-cli/internal/domain"
)

func TestOpenSwitchesViewByName(t *testing.T) {
	store := &testStateStore{}
	deps := Dependencies{Directory: &testDirectoryAPI{}, Store: store}

	out, err := executeCommand(deps, "open", "results", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}

	if store.state.ActiveView != domain.ViewResults {
		t.Fatalf("expected persisted view, got %q", store.state.ActiveView)
	}
	payload := mustJSON(t, out)
	if meta := payloadMap(t, payload["meta"]); meta["view"] != "results" {
		t.Fatalf("unexpected meta view: %v", meta["view"])
	}
	data := payloadMap(t, payload["data"])
	if data["view"] != "results" || data["fragment"] != "#/results" {
		t.Fatalf("unexpected nav payload: %v", data)
	}
}

func TestOpenAcceptsSharedFragment(t *testing.T) {
	store := &testStateStore{}
	deps := Dependencies{Directory: &testDirectoryAPI{}, Store: store}

	out, err := executeCommand(deps, "open", "#/suggest", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}

	if store.state.ActiveView != domain.ViewSuggest {
		t.Fatalf("expected suggest view persisted, got %q", store.state.ActiveView)
	}
	data := payloadMap(t, mustJSON(t, out)["data"])
	if data["view"] != "suggest" {
		t.Fatalf("unexpected nav payload: %v", data)
	}
}

func TestOpenUnknownFragmentLandsOnHome(t *testing.T) {
	store := &testStateStore{state: domain.State{ActiveView: domain.ViewResults}}
	deps := Dependencies{Directory: &testDirectoryAPI{}, Store: store}

	out, err := executeCommand(deps, "open", "#/deleted-screen", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}

	if store.state.ActiveView != domain.ViewHome {
		t.Fatalf("expected stale fragments to land on home, got %q", store.state.ActiveView)
	}
	data := payloadMap(t, mustJSON(t, out)["data"])
	if data["view"] != "home" || data["fragment"] != "#/home" {
		t.Fatalf("unexpected nav payload: %v", data)
	}
}

func TestOpenUnknownViewNameFails(t *testing.T) {
	store := &testStateStore{}
	deps := Dependencies{Directory: &testDirectoryAPI{}, Store: store}

	out, err := executeCommand(deps, "open", "dashboard", "--format", "json")
	if code := exitCodeOf(t, err); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if store.saves != 0 {
		t.Fatalf("unknown names must not touch stored state")
	}

	errPayload := payloadMap(t, mustJSON(t, out)["error"])
	if errPayload["code"] != "CRUNCH_INVALID_ARGUMENT" {
		t.Fatalf("unexpected error code: %v", errPayload["code"])
	}
	message := asString(errPayload["message"])
	if !strings.Contains(message, `unknown view "dashboard"`) || !strings.Contains(message, "choose from") {
		t.Fatalf("unexpected message: %v", message)
	}
}

func TestOpenStorageFailurePropagates(t *testing.T) {
	store := &testStateStore{saveErr: errors.New("disk full")}
	deps := Dependencies{Directory: &testDirectoryAPI{}, Store: store}

	_, err := executeCommand(deps, "open", "results", "--format", "json")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestNavStatusShowsStatePath(t *testing.T) {
	store := &testStateStore{state: domain.State{ActiveView: domain.ViewResults}}
	deps := Dependencies{Directory: &testDirectoryAPI{}, Store: store}

	out, err := executeCommand(deps, "nav", "status", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}

	data := payloadMap(t, mustJSON(t, out)["data"])
	if data["view"] != "results" || data["fragment"] != "#/results" {
		t.Fatalf("unexpected nav payload: %v", data)
	}
	if data["state_path"] != store.Path() {
		t.Fatalf("unexpected state path: %v", data["state_path"])
	}
}

func TestNavViewsMarksActive(t *testing.T) {
	store := &testStateStore{state: domain.State{ActiveView: domain.ViewContact}}
	deps := Dependencies{Directory: &testDirectoryAPI{}, Store: store}

	out, err := executeCommand(deps, "nav", "views", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}

	views := payloadSlice(t, payloadMap(t, mustJSON(t, out)["data"])["views"])
	if len(views) != len(domain.Views()) {
		t.Fatalf("expected %d views, got %d", len(domain.Views()), len(views))
	}
	for i, want := range domain.Views() {
		row := payloadMap(t, views[i])
		if row["name"] != string(want) {
			t.Fatalf("expected menu order %v, got %v at %d", want, row["name"], i)
		}
		wantActive := want == domain.ViewContact
		if row["active"] != wantActive {
			t.Fatalf("unexpected active flag for %v: %v", want, row["active"])
		}
	}
}

func TestNavViewsTableOutput(t *testing.T) {
	deps := Dependencies{Directory: &testDirectoryAPI{}, Store: &testStateStore{}}

	out, err := executeCommand(deps, "nav", "views")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "Views") {
		t.Fatalf("missing table title:\n%s", out)
	}
	if !strings.Contains(out, "home\t#/home\tyes") {
		t.Fatalf("expected home marked active by default:\n%s", out)
	}
}
