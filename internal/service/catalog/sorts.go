package catalog

import (
	"fmt"
	"strings"
)

// Sort controls listing order.
type Sort string

const (
	SortDefault  Sort = "name"
	SortRating   Sort = "rating"
	SortPrice    Sort = "price"
	SortVerified Sort = "verified"
	SortUpdated  Sort = "updated"
)

// ParseSort parses a listing sort value.
func ParseSort(value string) (Sort, error) {
	v := Sort(strings.ToLower(strings.TrimSpace(value)))
	if v == "" {
		return SortDefault, nil
	}
	switch v {
	case SortDefault, SortRating, SortPrice, SortVerified, SortUpdated:
		return v, nil
	default:
		return "", fmt.Errorf("invalid sort %q", value)
	}
}
