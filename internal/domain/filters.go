package domain

// Filters holds the active result refinements. Diet and oil selections are
// ordered sets toggled on and off; the remaining fields overwrite.
type Filters struct {
	Diets        []string
	Oils         []string
	Neighborhood string
	PriceRange   string
	VerifiedOnly bool
}

// ToggleDiet canonicalizes the tag and flips its membership, keeping the
// remaining selections in the order they were made.
func (f *Filters) ToggleDiet(tag string) {
	f.Diets = toggleMember(f.Diets, CanonicalDiet(tag))
}

// ToggleOil flips an oil selection. Oils have no canonical table, so the
// folded spelling decides membership.
func (f *Filters) ToggleOil(oil string) {
	f.Oils = toggleMember(f.Oils, collapseSpaces(oil))
}

// Empty reports whether no refinement is active.
func (f Filters) Empty() bool {
	return len(f.Diets) == 0 && len(f.Oils) == 0 &&
		f.Neighborhood == "" && f.PriceRange == "" && !f.VerifiedOnly
}

// Clear drops every active refinement.
func (f *Filters) Clear() {
	*f = Filters{}
}

func toggleMember(values []string, value string) []string {
	if value == "" {
		return values
	}
	key := foldKey(value)
	for i, have := range values {
		if foldKey(have) == key {
			return append(values[:i:i], values[i+1:]...)
		}
	}
	return append(values, value)
}
