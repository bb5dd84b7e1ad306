package cli

import "strings"

// normalizeAccessToken accepts the token forms users paste from browser
// tooling: a bare JWT, a quoted JWT, or a full "Bearer <jwt>" header value.
func normalizeAccessToken(raw string) string {
	token := trimTokenWrapper(raw)
	if token == "" {
		return ""
	}
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = trimTokenWrapper(token[7:])
	}
	return token
}

func trimTokenWrapper(raw string) string {
	token := strings.TrimSpace(raw)
	token = strings.Trim(token, "\"'")
	return strings.TrimSpace(token)
}
