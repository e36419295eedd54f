package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/wedding-ledger/constants"
)

// Payment is money received from a couple.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	CoupleID  uuid.UUID       `json:"couple_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidOn    string          `json:"paid_on"` // YYYY-MM-DD
	Method    string          `json:"method,omitempty"`
	Payer     string          `json:"payer,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Contract is a denormalized snapshot of everything extracted from a signed contract.
type Contract struct {
	ID             uuid.UUID             `json:"id"`
	CoupleID       uuid.UUID             `json:"couple_id"`
	WeddingDate    string                `json:"wedding_date,omitempty"`
	PackageType    constants.PackageType `json:"package_type,omitempty"`
	CoverageHours  decimal.NullDecimal   `json:"coverage_hours"`
	Total          decimal.NullDecimal   `json:"total"`
	Deposit        decimal.NullDecimal   `json:"deposit"`
	SourceFilename string                `json:"source_filename,omitempty"`
	Snapshot       json.RawMessage       `json:"snapshot,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// Installment is one scheduled payment of a contract.
type Installment struct {
	ID             uuid.UUID       `json:"id"`
	ContractID     uuid.UUID       `json:"contract_id"`
	CoupleID       uuid.UUID       `json:"couple_id"`
	PaymentNumber  int             `json:"payment_number"`
	DueDescription string          `json:"due_description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        string          `json:"due_date,omitempty"`
}

// Signature records who signed a contract and when.
type Signature struct {
	ID               uuid.UUID `json:"id"`
	ContractID       uuid.UUID `json:"contract_id"`
	SignerName       string    `json:"signer_name"`
	SignedDate       string    `json:"signed_date,omitempty"`
	PhotographerName string    `json:"photographer_name,omitempty"`
}

type ExtrasItem struct {
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// ExtrasOrder is an add-on purchase (albums, prints, extra hours).
type ExtrasOrder struct {
	ID             uuid.UUID                   `json:"id"`
	CoupleID       uuid.UUID                   `json:"couple_id"`
	Items          []ExtrasItem                `json:"items"`
	Inclusions     []string                    `json:"inclusions"`
	Total          decimal.Decimal             `json:"total"`
	Status         constants.ExtrasOrderStatus `json:"status"`
	OrderDate      string                      `json:"order_date,omitempty"`
	SourceFilename string                      `json:"source_filename,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// Quote is a price sent to a prospect.
type Quote struct {
	ID             uuid.UUID             `json:"id"`
	CoupleID       uuid.UUID             `json:"couple_id"`
	PackageType    constants.PackageType `json:"package_type,omitempty"`
	QuotedTotal    decimal.NullDecimal   `json:"quoted_total"`
	QuoteDate      string                `json:"quote_date,omitempty"`
	LeadSource     string                `json:"lead_source,omitempty"`
	SourceFilename string                `json:"source_filename,omitempty"`
	Snapshot       json.RawMessage       `json:"snapshot,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}
