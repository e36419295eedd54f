package llm

import (
	"strings"

	"github.com/joseph-ayodele/wedding-ledger/constants"
)

// maxPromptText caps the document text sent to the oracle.
const maxPromptText = 12000

// BuildSystemPrompt composes the system message for one document type.
func BuildSystemPrompt(docType constants.DocumentType) string {
	parts := []string{
		"You extract data from documents of a wedding photography studio.",
		"Return ONLY a JSON object that matches the provided JSON Schema.",
		"Use ISO-8601 dates (YYYY-MM-DD).",
		"Money values are plain numbers without currency symbols or thousands separators.",
		"If a field is not present in the document, omit it. Never invent values.",
	}
	switch docType {
	case constants.DocContract:
		parts = append(parts,
			"The document is a signed photography contract.",
			"bride_* and groom_* describe the two people getting married; if the document names 'Client 1' and 'Client 2', map them in order.",
			"'total' is the full contract price before payments. 'deposit' is the retainer due at signing.",
			"List every scheduled payment under 'installments' with its payment_number in order.",
			"'signature.signer_name' is the client who signed; 'signature.photographer_name' is the studio signatory.",
			"package_type is 'photo_only' unless videography or film coverage is included, then 'photo_video'.",
		)
	case constants.DocExtrasQuote:
		parts = append(parts,
			"The document is an extras quote or order for an existing client (albums, prints, extra coverage hours).",
			"'couple_name' is the names exactly as written in the document title, e.g. 'Amanda & Justin Kong'.",
			"Each purchasable line goes in 'items' with its price; free inclusions go in 'inclusions' as plain strings.",
			"'total' is the order total.",
		)
	case constants.DocLeadQuote:
		parts = append(parts,
			"The document is a price quote sent to a prospective client.",
			"'quoted_total' is the quoted package price. 'lead_source' is how the client found the studio, if stated.",
			"package_type is 'photo_only' or 'photo_video'.",
		)
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the filename hint and the (truncated) document text.
func BuildUserPrompt(text, filename string) string {
	var b strings.Builder
	if f := strings.TrimSpace(filename); f != "" {
		b.WriteString("Filename: ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	text = strings.TrimSpace(text)
	b.WriteString("\nDocument text:\n")
	if len(text) > maxPromptText {
		b.WriteString(text[:maxPromptText])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
