package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	reFence      = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	reJSONString = regexp.MustCompile(`"([^"\\]*(?:\\.[^"\\]*)*)"`)
)

// RepairJSON turns a raw oracle answer into a decodable JSON object:
// markdown fences are stripped, prose around the outermost object is cut,
// and control characters inside strings are escaped. It returns
// ErrMalformedResponse when no object survives.
func RepairJSON(raw []byte) ([]byte, error) {
	s := strings.TrimSpace(string(raw))
	if m := reFence.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	} else {
		return nil, fmt.Errorf("%w: no object found", ErrMalformedResponse)
	}
	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	fixed := fixJSONEscaping(s)
	if !json.Valid([]byte(fixed)) {
		return nil, fmt.Errorf("%w: %d bytes could not be repaired", ErrMalformedResponse, len(raw))
	}
	var probe map[string]any
	if err := json.Unmarshal([]byte(fixed), &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return []byte(fixed), nil
}

// fixJSONEscaping escapes literal control characters that models sometimes
// leave inside string values.
func fixJSONEscaping(s string) string {
	return reJSONString.ReplaceAllStringFunc(s, func(match string) string {
		content := match[1 : len(match)-1]
		content = strings.ReplaceAll(content, "\\ ", "\\\\ ")
		var b strings.Builder
		for _, ch := range content {
			switch {
			case ch == '\n':
				b.WriteString(`\n`)
			case ch == '\r':
				b.WriteString(`\r`)
			case ch == '\t':
				b.WriteString(`\t`)
			case ch < 0x20:
				fmt.Fprintf(&b, "\\u%04x", ch)
			default:
				b.WriteRune(ch)
			}
		}
		return `"` + b.String() + `"`
	})
}
