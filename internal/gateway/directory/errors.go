package directory

import (
	"fmt"
	"strings"
)

const errorBodyPreviewLimit = 800

// UpstreamRequestError carries the HTTP context of a failed backend
// call so command-level error output can report what was attempted.
type UpstreamRequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Cause      error
}

func (e *UpstreamRequestError) Error() string {
	var b strings.Builder
	b.WriteString(ErrUpstream.Error())
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, "; status=%d", e.StatusCode)
	}
	if target := strings.TrimSpace(strings.TrimSpace(e.Method) + " " + strings.TrimSpace(e.URL)); target != "" {
		b.WriteString("; ")
		b.WriteString(target)
	}
	if preview := previewBody(e.Body); preview != "" {
		fmt.Fprintf(&b, "; body=%q", preview)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, "; cause=%v", e.Cause)
	}
	return b.String()
}

// Unwrap links every request error to the ErrUpstream sentinel.
func (e *UpstreamRequestError) Unwrap() error {
	return ErrUpstream
}

// previewBody collapses a response body onto one line and caps its
// length so error output stays readable.
func previewBody(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if len(body) > errorBodyPreviewLimit {
		return body[:errorBodyPreviewLimit] + "..."
	}
	return body
}
