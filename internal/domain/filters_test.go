package domain

import "testing"

func TestToggleDietCanonicalizesBeforeToggling(t *testing.T) {
	var f Filters

	f.ToggleDiet("gf")
	if len(f.Diets) != 1 || f.Diets[0] != "Gluten-Free" {
		t.Fatalf("expected canonical tag stored, got %v", f.Diets)
	}

	// A different spelling of the same tag toggles it back off.
	f.ToggleDiet("Gluten Free")
	if len(f.Diets) != 0 {
		t.Fatalf("expected tag removed, got %v", f.Diets)
	}
}

func TestToggleKeepsSelectionOrder(t *testing.T) {
	var f Filters
	f.ToggleDiet("Keto")
	f.ToggleDiet("Vegan")
	f.ToggleDiet("Paleo")
	f.ToggleDiet("Vegan")

	if len(f.Diets) != 2 || f.Diets[0] != "Keto" || f.Diets[1] != "Paleo" {
		t.Fatalf("expected order-preserving removal, got %v", f.Diets)
	}
}

func TestToggleOilFoldsSpelling(t *testing.T) {
	var f Filters
	f.ToggleOil("  Olive   Oil ")
	if len(f.Oils) != 1 || f.Oils[0] != "Olive Oil" {
		t.Fatalf("expected collapsed oil name, got %v", f.Oils)
	}
	f.ToggleOil("olive oil")
	if len(f.Oils) != 0 {
		t.Fatalf("expected case-insensitive removal, got %v", f.Oils)
	}
}

func TestFiltersEmptyAndClear(t *testing.T) {
	var f Filters
	if !f.Empty() {
		t.Fatalf("expected zero filters to be empty")
	}
	f.Neighborhood = "Tribeca"
	f.VerifiedOnly = true
	if f.Empty() {
		t.Fatalf("expected filters with fields set to be non-empty")
	}
	f.Clear()
	if !f.Empty() {
		t.Fatalf("expected cleared filters to be empty")
	}
}
