package domain

import "testing"

func TestCanonicalCityResolvesAliases(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"nyc", "New York City"},
		{"NYC", "New York City"},
		{"  Manhattan ", "New York City"},
		{"new   york", "New York City"},
		{"L.A.", "Los Angeles"},
		{"San Fran", "San Francisco"},
		{"ATX", "Austin"},
		{"Chicago", "Chicago"},
		{"miami", "Miami"},
	}

	for _, tc := range tests {
		if got := CanonicalCity(tc.input); got != tc.want {
			t.Fatalf("CanonicalCity(%q): want %q, got %q", tc.input, tc.want, got)
		}
	}
}

func TestCanonicalCityIsIdempotent(t *testing.T) {
	inputs := []string{
		"nyc", "New York City", "Brooklyn", "los angeles", "SF Bay",
		"Philadelphia", "  Portland  OR ", "denver", "", "   ",
	}
	for _, input := range inputs {
		once := CanonicalCity(input)
		twice := CanonicalCity(once)
		if once != twice {
			t.Fatalf("CanonicalCity not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestCanonicalCityFoldsUnknowns(t *testing.T) {
	if got := CanonicalCity("  Grand   Rapids "); got != "grand rapids" {
		t.Fatalf("expected folded fallback, got %q", got)
	}
}

func TestInferCityPrefersAliasOrder(t *testing.T) {
	// "Miami Beach" appears before the canonical "Miami" scan, so the
	// alias decides even though both substrings are present.
	city, ok := InferCity("1100 Collins Ave, Miami Beach, FL")
	if !ok || city != "Miami" {
		t.Fatalf("expected Miami via alias, got %q (%v)", city, ok)
	}

	// First alias in table order wins when several match.
	city, ok = InferCity("between Manhattan and Brooklyn")
	if !ok || city != "New York City" {
		t.Fatalf("expected New York City, got %q (%v)", city, ok)
	}

	if _, ok := InferCity("nowhere special"); ok {
		t.Fatalf("expected no inference for unknown text")
	}
	if _, ok := InferCity(""); ok {
		t.Fatalf("expected no inference for empty text")
	}
}

func TestLookupCityRequiresExactKey(t *testing.T) {
	if _, ok := LookupCity("Miami Beach FL"); ok {
		t.Fatalf("expected lookup to reject partial text")
	}
	if city, ok := LookupCity("miami beach"); !ok || city != "Miami" {
		t.Fatalf("expected exact alias hit, got %q (%v)", city, ok)
	}
}

func TestCityNamesReturnsCopy(t *testing.T) {
	names := CityNames()
	if len(names) != 6 || names[0] != "New York City" {
		t.Fatalf("unexpected launch cities: %v", names)
	}
	names[0] = "mutated"
	if CityNames()[0] != "New York City" {
		t.Fatalf("expected CityNames to return a copy")
	}
	if !IsLaunchCity("Chicago") || IsLaunchCity("chicago") {
		t.Fatalf("IsLaunchCity should match canonical spelling only")
	}
}
