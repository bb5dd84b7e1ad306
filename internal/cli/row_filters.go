package cli

import (
	"fmt"
	"sort"
	"strings"
)

type pendingRowSort string

const (
	pendingRowSortSubmitted pendingRowSort = "submitted"
	pendingRowSortName      pendingRowSort = "name"
)

type listingRowFilters struct {
	MinRatingSet  bool
	MinRating     float64
	MinReviewsSet bool
	MinReviews    int
	Cuisines      map[string]struct{}
}

type pendingRowFilters struct {
	Cities          map[string]struct{}
	WithContactOnly bool
}

func applyListingRowFilters(rows []any, filters listingRowFilters) []any {
	if len(rows) == 0 {
		return rows
	}
	filtered := make([]any, 0, len(rows))
	for _, rowValue := range rows {
		row := asMap(rowValue)
		if row == nil {
			continue
		}
		if filters.MinRatingSet && listingRowRating(row) < filters.MinRating {
			continue
		}
		if filters.MinReviewsSet && asInt(row["review_count"]) < filters.MinReviews {
			continue
		}
		if len(filters.Cuisines) > 0 {
			cuisine := strings.ToLower(strings.TrimSpace(asString(row["cuisine"])))
			if _, ok := filters.Cuisines[cuisine]; !ok {
				continue
			}
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func applyPendingRowFilters(rows []any, filters pendingRowFilters) []any {
	if len(rows) == 0 {
		return rows
	}
	filtered := make([]any, 0, len(rows))
	for _, rowValue := range rows {
		row := asMap(rowValue)
		if row == nil {
			continue
		}
		if len(filters.Cities) > 0 {
			city := strings.ToLower(strings.TrimSpace(asString(row["city"])))
			if _, ok := filters.Cities[city]; !ok {
				continue
			}
		}
		if filters.WithContactOnly && !pendingHasContact(row) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

func pendingHasContact(row map[string]any) bool {
	if row == nil {
		return false
	}
	return strings.TrimSpace(asString(row["email"])) != "" || strings.TrimSpace(asString(row["phone"])) != ""
}

func parsePendingRowSort(raw string) (pendingRowSort, error) {
	value := pendingRowSort(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return pendingRowSortSubmitted, nil
	}
	switch value {
	case pendingRowSortSubmitted, pendingRowSortName:
		return value, nil
	default:
		return "", fmt.Errorf("invalid --sort value %q; expected one of: submitted, name", raw)
	}
}

// sortPendingRows orders the moderation queue. Submitted timestamps are
// RFC 3339 strings, so newest-first is a reverse lexical compare.
func sortPendingRows(rows []any, sortMode pendingRowSort) {
	if len(rows) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		left := asMap(rows[i])
		right := asMap(rows[j])
		switch sortMode {
		case pendingRowSortName:
			return strings.ToLower(strings.TrimSpace(asString(left["name"]))) < strings.ToLower(strings.TrimSpace(asString(right["name"])))
		default:
			return asString(left["submitted_at"]) > asString(right["submitted_at"])
		}
	})
}

func listingRowRating(row map[string]any) float64 {
	if row == nil {
		return 0
	}
	switch value := row["rating"].(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	default:
		return 0
	}
}
