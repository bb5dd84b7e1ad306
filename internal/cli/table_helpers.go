package cli

import (
	"strconv"
	"strings"
)

func fallbackString(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func stringsJoin(values []any, separator string) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, asString(value))
	}
	return strings.Join(parts, separator)
}

func boolToYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// formatRating renders one decimal place; unrated listings show "-".
func formatRating(value any) string {
	rating, ok := asFloat(value)
	if !ok || rating <= 0 {
		return "-"
	}
	return strconv.FormatFloat(rating, 'f', 1, 64)
}
