package domain

import "strings"

// View names a top-level screen of the directory.
type View string

const (
	ViewHome    View = "home"
	ViewResults View = "results"
	ViewAbout   View = "about"
	ViewContact View = "contact"
	ViewSuggest View = "suggest"
	ViewAdmin   View = "admin"
)

// Views returns every navigable view in menu order.
func Views() []View {
	return []View{ViewHome, ViewResults, ViewAbout, ViewContact, ViewSuggest, ViewAdmin}
}

// ParseView resolves a view name, tolerating casing and surrounding space.
func ParseView(raw string) (View, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, v := range Views() {
		if string(v) == key {
			return v, true
		}
	}
	return "", false
}

// Fragment renders the view's shareable URL fragment.
func (v View) Fragment() string {
	return "#/" + string(v)
}

// ViewFromFragment resolves a "#/name" fragment to a view. Anything that
// does not name a known view resolves to home, so stale or mistyped links
// still land somewhere sensible.
func ViewFromFragment(fragment string) View {
	raw := strings.TrimSpace(fragment)
	raw = strings.TrimPrefix(raw, "#")
	raw = strings.TrimPrefix(raw, "/")
	if v, ok := ParseView(strings.TrimSuffix(raw, "/")); ok {
		return v
	}
	return ViewHome
}
