package domain

import "strings"

// launchCities are the markets the directory covers, in display order.
var launchCities = []string{
	"New York City",
	"Los Angeles",
	"Miami",
	"Austin",
	"Chicago",
	"San Francisco",
}

type cityAlias struct {
	key  string
	city string
}

// cityAliases maps common spellings to launch cities. Order matters: the
// substring scan in InferCity takes the first alias that appears in the
// text, so longer and more specific aliases come first.
var cityAliases = []cityAlias{
	{"new york city", "New York City"},
	{"new york", "New York City"},
	{"manhattan", "New York City"},
	{"brooklyn", "New York City"},
	{"queens", "New York City"},
	{"the bronx", "New York City"},
	{"nyc", "New York City"},
	{"los angeles", "Los Angeles"},
	{"west hollywood", "Los Angeles"},
	{"santa monica", "Los Angeles"},
	{"venice beach", "Los Angeles"},
	{"l.a.", "Los Angeles"},
	{"miami beach", "Miami"},
	{"wynwood", "Miami"},
	{"south beach", "Miami"},
	{"austin", "Austin"},
	{"atx", "Austin"},
	{"chicago", "Chicago"},
	{"chi-town", "Chicago"},
	{"san francisco", "San Francisco"},
	{"san fran", "San Francisco"},
	{"sf bay", "San Francisco"},
}

// CityNames returns the launch cities in display order.
func CityNames() []string {
	out := make([]string, len(launchCities))
	copy(out, launchCities)
	return out
}

// IsLaunchCity reports whether name is one of the covered markets.
func IsLaunchCity(name string) bool {
	for _, city := range launchCities {
		if city == name {
			return true
		}
	}
	return false
}

// LookupCity resolves an exact city spelling (alias or canonical name,
// any casing or spacing) to its canonical launch city name.
func LookupCity(raw string) (string, bool) {
	key := foldKey(raw)
	if key == "" {
		return "", false
	}
	for _, alias := range cityAliases {
		if alias.key == key {
			return alias.city, true
		}
	}
	for _, city := range launchCities {
		if foldKey(city) == key {
			return city, true
		}
	}
	return "", false
}

// CanonicalCity maps any city spelling to its canonical form. Unknown
// cities fold to their trimmed, collapsed, lowercased value so repeated
// application is a no-op and unknown-city comparisons stay stable.
func CanonicalCity(raw string) string {
	if city, ok := LookupCity(raw); ok {
		return city
	}
	return foldKey(raw)
}

// InferCity scans free text (an address joined with a neighborhood, say)
// for the first launch city it mentions. Aliases win over canonical names,
// and within each list the first match in table order wins.
func InferCity(text string) (string, bool) {
	key := foldKey(text)
	if key == "" {
		return "", false
	}
	for _, alias := range cityAliases {
		if strings.Contains(key, alias.key) {
			return alias.city, true
		}
	}
	for _, city := range launchCities {
		if strings.Contains(key, foldKey(city)) {
			return city, true
		}
	}
	return "", false
}
