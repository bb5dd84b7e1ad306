package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// collapseSpaces trims the value and folds internal whitespace runs
// into single spaces.
func collapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// foldKey produces the lookup key used by the canonicalization tables:
// NFKC-normalized, whitespace-collapsed, lowercased.
func foldKey(value string) string {
	return strings.ToLower(collapseSpaces(norm.NFKC.String(value)))
}
