package extraction

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fields is a decode-with-defaults view over the oracle's JSON object. Every
// accessor returns a safe zero value when a key is absent or has the wrong
// shape; shape problems are recorded as warnings instead of failing.
type Fields struct {
	m        map[string]any
	prefix   string
	warnings *[]string
}

// Decode parses an object. Anything other than a JSON object is an error.
func Decode(raw []byte) (Fields, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Fields{}, err
	}
	if m == nil {
		return Fields{}, fmt.Errorf("expected a JSON object")
	}
	return Fields{m: m, warnings: new([]string)}, nil
}

// Empty is the maximally-empty field set.
func Empty() Fields {
	return Fields{m: map[string]any{}, warnings: new([]string)}
}

func (f Fields) Warnings() []string {
	if f.warnings == nil {
		return nil
	}
	return *f.warnings
}

func (f Fields) warn(key, format string, args ...any) {
	if f.warnings == nil {
		return
	}
	*f.warnings = append(*f.warnings, f.prefix+key+": "+fmt.Sprintf(format, args...))
}

// Raw returns the value stored under key, or nil.
func (f Fields) Raw(key string) any {
	if f.m == nil {
		return nil
	}
	return f.m[key]
}

// Path walks dotted keys ("signature.signer_name").
func (f Fields) Path(path string) any {
	var cur any = f.m
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[part]
	}
	return cur
}

// String returns a trimmed string. Numbers and booleans are formatted;
// objects and lists yield "".
func (f Fields) String(key string) string {
	switch v := f.Raw(key).(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(v)
		if isNullish(s) {
			return ""
		}
		return s
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		f.warn(key, "expected text, got %T", v)
		return ""
	}
}

var reMoneyNoise = regexp.MustCompile(`[\s$,]|USD|CAD|usd|cad`)

// Money accepts numbers and strings such as "$3,955.00".
func (f Fields) Money(key string) decimal.NullDecimal {
	switch v := f.Raw(key).(type) {
	case nil:
		return decimal.NullDecimal{}
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(v).Round(2))
	case string:
		s := reMoneyNoise.ReplaceAllString(strings.TrimSpace(v), "")
		if s == "" || isNullish(s) {
			return decimal.NullDecimal{}
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			f.warn(key, "unreadable amount %q", v)
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(d.Round(2))
	default:
		f.warn(key, "expected an amount, got %T", v)
		return decimal.NullDecimal{}
	}
}

// Int accepts integral numbers and numeric strings; anything else is 0.
func (f Fields) Int(key string) int {
	switch v := f.Raw(key).(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			if strings.TrimSpace(v) != "" {
				f.warn(key, "expected a whole number, got %q", v)
			}
			return 0
		}
		return n
	default:
		return 0
	}
}

// Date normalises to YYYY-MM-DD. Unreadable dates yield "" and a warning.
func (f Fields) Date(key string) string {
	s := f.String(key)
	if s == "" {
		return ""
	}
	d, ok := NormalizeDate(s)
	if !ok {
		f.warn(key, "unreadable date %q", s)
		return ""
	}
	return d
}

// Object returns the nested object under key; warnings flow into the parent.
func (f Fields) Object(key string) Fields {
	obj, ok := f.Raw(key).(map[string]any)
	if !ok {
		if f.Raw(key) != nil {
			f.warn(key, "expected an object, got %T", f.Raw(key))
		}
		obj = map[string]any{}
	}
	return Fields{m: obj, prefix: f.prefix + key + ".", warnings: f.warnings}
}

// Objects returns every object element of the list under key; other
// elements are skipped with a warning.
func (f Fields) Objects(key string) []Fields {
	list, ok := f.Raw(key).([]any)
	if !ok {
		if f.Raw(key) != nil {
			f.warn(key, "expected a list, got %T", f.Raw(key))
		}
		return nil
	}
	out := make([]Fields, 0, len(list))
	for i, el := range list {
		obj, ok := el.(map[string]any)
		if !ok {
			f.warn(fmt.Sprintf("%s[%d]", key, i), "expected an object, got %T", el)
			continue
		}
		out = append(out, Fields{m: obj, prefix: fmt.Sprintf("%s%s[%d].", f.prefix, key, i), warnings: f.warnings})
	}
	return out
}

// Strings returns the non-empty string elements of the list under key.
func (f Fields) Strings(key string) []string {
	list, ok := f.Raw(key).([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, el := range list {
		if s, ok := el.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func isNullish(s string) bool {
	switch strings.ToLower(s) {
	case "null", "none", "n/a", "na", "unknown", "-":
		return true
	}
	return false
}

var (
	reOrdinal = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// dateLayouts are tried in order; numeric slashed dates read month first.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1/2/06",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Jan. 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	"Monday January 2, 2006",
}

// NormalizeDate reformats a human date as YYYY-MM-DD.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
	s = reOrdinal.ReplaceAllString(s, "$1")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
