package data

import "strings"

// Format identifies a structured data encoding understood by File.LoadData.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSON5 Format = "json5"
	FormatYAML  Format = "yaml"
	// FormatAny tries json, then json5, then yaml.
	FormatAny Format = "any"
)

// ParseFormat maps a string (or file extension) to a Format.
// Unknown values fall back to FormatAny.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON
	case "json5", "jsonc":
		return FormatJSON5
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatAny
	}
}
