package handle

import (
	"encoding/json"
	"fmt"

	"github.com/mwantia/capfs/data"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Decode parses content according to format. FormatAny tries json, then
// json5 and finally yaml, returning the first decoding that succeeds.
func Decode(content []byte, format data.Format) (any, error) {
	switch format {
	case data.FormatJSON:
		var value any
		if err := json.Unmarshal(content, &value); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return value, nil

	case data.FormatJSON5:
		var value any
		if err := json.Unmarshal(jsonc.ToJSON(content), &value); err != nil {
			return nil, fmt.Errorf("decode json5: %w", err)
		}
		return value, nil

	case data.FormatYAML:
		var value any
		if err := yaml.Unmarshal(content, &value); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return value, nil

	case data.FormatAny:
		for _, try := range []data.Format{data.FormatJSON, data.FormatJSON5, data.FormatYAML} {
			if value, err := Decode(content, try); err == nil {
				return value, nil
			}
		}
		return nil, fmt.Errorf("decode: content matches no known format")

	default:
		return nil, fmt.Errorf("decode: unknown format '%s'", format)
	}
}
