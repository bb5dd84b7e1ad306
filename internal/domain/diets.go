package domain

// canonicalDiets are the dietary tags the directory filters on, in the
// order the filter bar presents them.
var canonicalDiets = []string{
	"Seed Oil Free",
	"Keto",
	"Paleo",
	"Carnivore",
	"Whole30",
	"Gluten-Free",
	"Vegan",
	"Vegetarian",
	"Dairy-Free",
	"Organic",
	"Grass-Fed",
	"Raw",
}

type dietAlias struct {
	key  string
	diet string
}

var dietAliases = []dietAlias{
	{"seed oil free", "Seed Oil Free"},
	{"seed-oil free", "Seed Oil Free"},
	{"seed-oil-free", "Seed Oil Free"},
	{"no seed oils", "Seed Oil Free"},
	{"no seed oil", "Seed Oil Free"},
	{"sof", "Seed Oil Free"},
	{"ketogenic", "Keto"},
	{"low carb", "Keto"},
	{"low-carb", "Keto"},
	{"whole 30", "Whole30"},
	{"gluten free", "Gluten-Free"},
	{"gluten-free", "Gluten-Free"},
	{"gf", "Gluten-Free"},
	{"celiac", "Gluten-Free"},
	{"plant based", "Vegan"},
	{"plant-based", "Vegan"},
	{"veggie", "Vegetarian"},
	{"dairy free", "Dairy-Free"},
	{"no dairy", "Dairy-Free"},
	{"grass fed", "Grass-Fed"},
	{"grassfed", "Grass-Fed"},
	{"raw food", "Raw"},
}

// DietTags returns the canonical dietary tags in filter bar order.
func DietTags() []string {
	out := make([]string, len(canonicalDiets))
	copy(out, canonicalDiets)
	return out
}

// CanonicalDiet maps any dietary tag spelling to its canonical form.
// Unknown tags fold to their trimmed, collapsed, lowercased value so
// repeated application is a no-op.
func CanonicalDiet(raw string) string {
	key := foldKey(raw)
	if key == "" {
		return ""
	}
	for _, alias := range dietAliases {
		if alias.key == key {
			return alias.diet
		}
	}
	for _, diet := range canonicalDiets {
		if foldKey(diet) == key {
			return diet
		}
	}
	return key
}

// CanonicalDietTags canonicalizes a tag list, dropping empties and
// duplicates while keeping first-seen order.
func CanonicalDietTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		canonical := CanonicalDiet(tag)
		if canonical == "" {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}
