package gemini

import "encoding/json"

func schemaJSON(schema map[string]any) string {
	b, err := json.Marshal(schema)
	if err != nil {
		return "{}"
	}
	return string(b)
}
