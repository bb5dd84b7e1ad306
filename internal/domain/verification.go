package domain

import "strings"

var visitedKeywords = []string{"visit", "in person", "in-person", "on site", "on-site", "stopped by"}

var calledKeywords = []string{"call", "phone", "spoke", "rang"}

// ClassifyVerification buckets a free-text verification note into one of
// the three published methods. Empty input stays empty; notes mentioning a
// visit or a call classify as the matching Crunch team check, anything
// else is treated as an owner submission.
func ClassifyVerification(raw string) VerificationMethod {
	key := foldKey(raw)
	if key == "" {
		return ""
	}
	for _, kw := range visitedKeywords {
		if strings.Contains(key, kw) {
			return VerificationTeamVisited
		}
	}
	for _, kw := range calledKeywords {
		if strings.Contains(key, kw) {
			return VerificationTeamCalled
		}
	}
	return VerificationOwner
}
