package extraction

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Payload is the staging value between extraction and import. Exactly one of
// Contract, Extras and Quote is set, matching DocumentType.
type Payload struct {
	DocumentType constants.DocumentType `json:"document_type"`
	Filename     string                 `json:"filename,omitempty"`
	Contract     *ContractFields        `json:"contract,omitempty"`
	Extras       *ExtrasFields          `json:"extras,omitempty"`
	Quote        *QuoteFields           `json:"quote,omitempty"`
	Confidence   Confidence             `json:"confidence"`
	Score        int                    `json:"score"`
	LoadBearing  int                    `json:"load_bearing"`
	Warnings     []string               `json:"warnings"`
	Raw          json.RawMessage        `json:"raw,omitempty"`
}

type ContractFields struct {
	Bride            entity.Party          `json:"bride"`
	Groom            entity.Party          `json:"groom"`
	WeddingDate      string                `json:"wedding_date,omitempty"`
	CeremonyLocation string                `json:"ceremony_location,omitempty"`
	ReceptionVenue   string                `json:"reception_venue,omitempty"`
	PackageType      constants.PackageType `json:"package_type,omitempty"`
	CoverageHours    decimal.NullDecimal   `json:"coverage_hours"`
	Total            decimal.NullDecimal   `json:"total"`
	Deposit          decimal.NullDecimal   `json:"deposit"`
	Installments     []InstallmentFields   `json:"installments,omitempty"`
	Signature        SignatureFields       `json:"signature"`
	Notes            string                `json:"notes,omitempty"`
}

type InstallmentFields struct {
	PaymentNumber  int             `json:"payment_number"`
	DueDescription string          `json:"due_description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        string          `json:"due_date,omitempty"`
}

type SignatureFields struct {
	SignerName       string `json:"signer_name,omitempty"`
	SignedDate       string `json:"signed_date,omitempty"`
	PhotographerName string `json:"photographer_name,omitempty"`
}

type ExtrasFields struct {
	CoupleName  string              `json:"couple_name,omitempty"`
	WeddingDate string              `json:"wedding_date,omitempty"`
	OrderDate   string              `json:"order_date,omitempty"`
	Items       []entity.ExtrasItem `json:"items,omitempty"`
	Inclusions  []string            `json:"inclusions,omitempty"`
	Total       decimal.NullDecimal `json:"total"`
}

type QuoteFields struct {
	CoupleName     string                `json:"couple_name,omitempty"`
	BrideFirstName string                `json:"bride_first_name,omitempty"`
	GroomFirstName string                `json:"groom_first_name,omitempty"`
	Email          string                `json:"email,omitempty"`
	Phone          string                `json:"phone,omitempty"`
	WeddingDate    string                `json:"wedding_date,omitempty"`
	Venue          string                `json:"venue,omitempty"`
	PackageType    constants.PackageType `json:"package_type,omitempty"`
	QuotedTotal    decimal.NullDecimal   `json:"quoted_total"`
	QuoteDate      string                `json:"quote_date,omitempty"`
	LeadSource     string                `json:"lead_source,omitempty"`
}

// buildTyped fills the typed section of p from the decoded fields.
func buildTyped(p *Payload, f Fields) {
	switch p.DocumentType {
	case constants.DocContract:
		c := contractFrom(f)
		p.Contract = &c
	case constants.DocExtrasQuote:
		e := extrasFrom(f)
		p.Extras = &e
	case constants.DocLeadQuote:
		q := quoteFrom(f)
		p.Quote = &q
	}
}

func packageFrom(f Fields, key string) constants.PackageType {
	s := f.String(key)
	if s == "" {
		return ""
	}
	pkg, ok := constants.CanonicalizePackage(s)
	if !ok {
		f.warn(key, "unknown package %q", s)
	}
	return pkg
}

func contractFrom(f Fields) ContractFields {
	c := ContractFields{
		Bride: entity.Party{
			FirstName: f.String("bride_first_name"),
			LastName:  f.String("bride_last_name"),
			Email:     strings.ToLower(f.String("bride_email")),
			Phone:     f.String("bride_phone"),
		},
		Groom: entity.Party{
			FirstName: f.String("groom_first_name"),
			LastName:  f.String("groom_last_name"),
			Email:     strings.ToLower(f.String("groom_email")),
			Phone:     f.String("groom_phone"),
		},
		WeddingDate:      f.Date("wedding_date"),
		CeremonyLocation: f.String("ceremony_location"),
		ReceptionVenue:   f.String("reception_venue"),
		PackageType:      packageFrom(f, "package_type"),
		CoverageHours:    f.Money("coverage_hours"),
		Total:            f.Money("total"),
		Deposit:          f.Money("deposit"),
		Notes:            f.String("notes"),
	}
	for i, it := range f.Objects("installments") {
		amount := it.Money("amount")
		n := it.Int("payment_number")
		if n <= 0 {
			n = i + 1
		}
		c.Installments = append(c.Installments, InstallmentFields{
			PaymentNumber:  n,
			DueDescription: it.String("due_description"),
			Amount:         amount.Decimal,
			DueDate:        it.Date("due_date"),
		})
	}
	sig := f.Object("signature")
	c.Signature = SignatureFields{
		SignerName:       sig.String("signer_name"),
		SignedDate:       sig.Date("signed_date"),
		PhotographerName: sig.String("photographer_name"),
	}
	return c
}

func extrasFrom(f Fields) ExtrasFields {
	e := ExtrasFields{
		CoupleName:  f.String("couple_name"),
		WeddingDate: f.Date("wedding_date"),
		OrderDate:   f.Date("order_date"),
		Inclusions:  f.Strings("inclusions"),
		Total:       f.Money("total"),
	}
	for _, it := range f.Objects("items") {
		desc := it.String("description")
		if desc == "" {
			continue
		}
		e.Items = append(e.Items, entity.ExtrasItem{Description: desc, Price: it.Money("price").Decimal})
	}
	// a missing total is recoverable from the line items
	if !e.Total.Valid && len(e.Items) > 0 {
		sum := decimal.Zero
		for _, it := range e.Items {
			sum = sum.Add(it.Price)
		}
		e.Total = decimal.NewNullDecimal(sum)
		f.warn("total", "missing; summed from %d items", len(e.Items))
	}
	return e
}

func quoteFrom(f Fields) QuoteFields {
	return QuoteFields{
		CoupleName:     f.String("couple_name"),
		BrideFirstName: f.String("bride_first_name"),
		GroomFirstName: f.String("groom_first_name"),
		Email:          strings.ToLower(f.String("email")),
		Phone:          f.String("phone"),
		WeddingDate:    f.Date("wedding_date"),
		Venue:          f.String("venue"),
		PackageType:    packageFrom(f, "package_type"),
		QuotedTotal:    f.Money("quoted_total"),
		QuoteDate:      f.Date("quote_date"),
		LeadSource:     f.String("lead_source"),
	}
}
