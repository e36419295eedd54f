package constants

import "strings"

// DocumentType selects the extraction schema, the load-bearing fields and the import route.
type DocumentType string

const (
	DocContract    DocumentType = "contract"
	DocExtrasQuote DocumentType = "extras-quote"
	DocLeadQuote   DocumentType = "lead-quote"
)

var DocumentTypes = []DocumentType{DocContract, DocExtrasQuote, DocLeadQuote}

// ParseDocumentType accepts the canonical names plus underscore spellings.
func ParseDocumentType(s string) (DocumentType, bool) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	switch n {
	case "contract":
		return DocContract, true
	case "extras-quote", "extras", "extras-order":
		return DocExtrasQuote, true
	case "lead-quote", "quote", "lead":
		return DocLeadQuote, true
	}
	return "", false
}
