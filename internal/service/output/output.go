package output

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format represents command output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates format values. An empty value selects the
// table format.
func ParseFormat(v string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(v)))
	switch format {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q", v)
}

// Envelope is the machine-output payload.
type Envelope struct {
	Meta     map[string]any `json:"meta" yaml:"meta"`
	Data     any            `json:"data" yaml:"data"`
	Warnings []string       `json:"warnings" yaml:"warnings"`
	Error    map[string]any `json:"error,omitempty" yaml:"error,omitempty"`
}

// BuildEnvelope constructs a response envelope. City and view identify
// the directory scope and screen the payload belongs to.
func BuildEnvelope(city, view string, data any, warnings []string, errPayload map[string]any) Envelope {
	if warnings == nil {
		warnings = []string{}
	}
	return Envelope{
		Meta: map[string]any{
			"request_id":   newRequestID(),
			"generated_at": time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
			"city":         city,
			"view":         view,
		},
		Data:     data,
		Warnings: warnings,
		Error:    errPayload,
	}
}

func newRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "req_fallback"
	}
	return fmt.Sprintf("req_%x", buf)
}

// RenderPayload renders payload in json/yaml format.
func RenderPayload(payload Envelope, format Format) (string, error) {
	switch format {
	case FormatJSON:
		encoded, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal json: %w", err)
		}
		return string(encoded), nil
	case FormatYAML:
		encoded, err := yaml.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("marshal yaml: %w", err)
		}
		return string(encoded), nil
	}
	return "", fmt.Errorf("render payload only supports json/yaml")
}

// WriteOutput writes the rendered text to the writer, and to a file as
// well when an output path was given.
func WriteOutput(w io.Writer, text string, outputPath string) error {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
	}
	if _, err := fmt.Fprintln(w, text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// RenderTable renders a tab-separated text table without a trailing
// newline.
func RenderTable(title string, headers []string, rows [][]string) string {
	lines := make([]string, 0, len(rows)+2)
	if title != "" {
		lines = append(lines, title)
	}
	if len(headers) > 0 {
		lines = append(lines, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
