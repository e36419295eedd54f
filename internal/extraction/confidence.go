package extraction

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/wedding-ledger/constants"
)

// Selector names one load-bearing concept. It is present when any of its
// dotted Paths holds a meaningful value.
type Selector struct {
	Label string
	Paths []string
}

var loadBearing = map[constants.DocumentType][]Selector{
	constants.DocContract: {
		{Label: "bride first name", Paths: []string{"bride_first_name"}},
		{Label: "groom first name", Paths: []string{"groom_first_name"}},
		{Label: "wedding date", Paths: []string{"wedding_date"}},
		{Label: "contract total", Paths: []string{"total"}},
		{Label: "installments", Paths: []string{"installments"}},
		{Label: "signer name", Paths: []string{"signature.signer_name"}},
	},
	constants.DocExtrasQuote: {
		{Label: "couple name", Paths: []string{"couple_name"}},
		{Label: "items", Paths: []string{"items"}},
		{Label: "total", Paths: []string{"total"}},
		{Label: "order date", Paths: []string{"order_date"}},
	},
	constants.DocLeadQuote: {
		{Label: "client name", Paths: []string{"bride_first_name", "couple_name"}},
		{Label: "email", Paths: []string{"email"}},
		{Label: "wedding date", Paths: []string{"wedding_date"}},
		{Label: "quoted total", Paths: []string{"quoted_total"}},
		{Label: "package type", Paths: []string{"package_type"}},
	},
}

// LoadBearing returns the selectors scored for a document type.
func LoadBearing(docType constants.DocumentType) []Selector {
	return loadBearing[docType]
}

// Score counts the selectors present in f and emits one warning per absent
// selector. It never fails: malformed values count as absent.
func Score(f Fields, selectors []Selector) (int, []string) {
	score := 0
	var warnings []string
	for _, sel := range selectors {
		found := false
		for _, p := range sel.Paths {
			if present(f.Path(p)) {
				found = true
				break
			}
		}
		if found {
			score++
		} else {
			warnings = append(warnings, "missing "+sel.Label)
		}
	}
	return score, warnings
}

// Bucket maps a score out of total onto a confidence level.
func Bucket(score, total int) Confidence {
	switch {
	case score >= total-1:
		return ConfidenceHigh
	case score >= (total+1)/2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		s := strings.TrimSpace(t)
		if s == "" || isNullish(s) {
			return false
		}
		if d, err := decimal.NewFromString(reMoneyNoise.ReplaceAllString(s, "")); err == nil {
			return !d.IsZero()
		}
		return true
	case float64:
		return t != 0
	case bool:
		return t
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
