package llm

import "github.com/joseph-ayodele/wedding-ledger/constants"

// BuildSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is sent to the oracle as an output constraint and used locally to
// report violations. Nothing is required: absence is scored, not rejected.
func BuildSchema(docType constants.DocumentType) map[string]any {
	var props map[string]any
	switch docType {
	case constants.DocContract:
		props = map[string]any{
			"bride_first_name":  stringProp(),
			"bride_last_name":   stringProp(),
			"bride_email":       stringProp(),
			"bride_phone":       stringProp(),
			"groom_first_name":  stringProp(),
			"groom_last_name":   stringProp(),
			"groom_email":       stringProp(),
			"groom_phone":       stringProp(),
			"wedding_date":      dateProp(),
			"ceremony_location": stringProp(),
			"reception_venue":   stringProp(),
			"package_type":      packageProp(),
			"coverage_hours":    moneyProp(),
			"total":             moneyProp(),
			"deposit":           moneyProp(),
			"installments": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"payment_number":  map[string]any{"type": []string{"integer", "string"}},
						"due_description": stringProp(),
						"amount":          moneyProp(),
						"due_date":        dateProp(),
					},
				},
			},
			"signature": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"signer_name":       stringProp(),
					"signed_date":       dateProp(),
					"photographer_name": stringProp(),
				},
			},
			"notes": stringProp(),
		}
	case constants.DocExtrasQuote:
		props = map[string]any{
			"couple_name":  stringProp(),
			"wedding_date": dateProp(),
			"order_date":   dateProp(),
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": stringProp(),
						"price":       moneyProp(),
					},
				},
			},
			"inclusions": map[string]any{"type": "array", "items": stringProp()},
			"total":      moneyProp(),
		}
	default:
		props = map[string]any{
			"couple_name":      stringProp(),
			"bride_first_name": stringProp(),
			"groom_first_name": stringProp(),
			"email":            stringProp(),
			"phone":            stringProp(),
			"wedding_date":     dateProp(),
			"venue":            stringProp(),
			"package_type":     packageProp(),
			"quoted_total":     moneyProp(),
			"quote_date":       dateProp(),
			"lead_source":      stringProp(),
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

func stringProp() map[string]any {
	return map[string]any{"type": "string"}
}

func dateProp() map[string]any {
	return map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
}

// moneyProp tolerates "$3,955.00" strings; decoding normalises them.
func moneyProp() map[string]any {
	return map[string]any{"type": []string{"number", "string"}}
}

func packageProp() map[string]any {
	enum := make([]any, 0, 2)
	for _, p := range constants.PackageTypes() {
		enum = append(enum, p)
	}
	return map[string]any{"type": "string", "enum": enum}
}
