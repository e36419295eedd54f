package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/wedding-ledger/constants"
)

// Party is one half of a couple. The zero value means "not known".
type Party struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func (p Party) IsZero() bool {
	return p == Party{}
}

func (p Party) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Couple is one booked or prospective client pair.
type Couple struct {
	ID               uuid.UUID              `json:"id"`
	CoupleName       string                 `json:"couple_name"`
	Bride            Party                  `json:"bride"`
	Groom            Party                  `json:"groom"`
	WeddingDate      string                 `json:"wedding_date,omitempty"` // YYYY-MM-DD
	CeremonyLocation string                 `json:"ceremony_location,omitempty"`
	ReceptionVenue   string                 `json:"reception_venue,omitempty"`
	PackageType      constants.PackageType  `json:"package_type,omitempty"`
	ContractTotal    decimal.NullDecimal    `json:"contract_total"`
	ExtrasTotal      decimal.NullDecimal    `json:"extras_total"`
	TotalPaid        decimal.Decimal        `json:"total_paid"`
	BalanceOwing     decimal.NullDecimal    `json:"balance_owing"`
	Status           constants.CoupleStatus `json:"status"`
	LeadSource       string                 `json:"lead_source,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// RecomputeBalance applies the balance policy: with a positive contract total the balance is
// always derived as contract + extras - paid; without one the stored fallback is left alone.
func (c *Couple) RecomputeBalance() {
	if !c.ContractTotal.Valid || !c.ContractTotal.Decimal.IsPositive() {
		return
	}
	extras := decimal.Zero
	if c.ExtrasTotal.Valid {
		extras = c.ExtrasTotal.Decimal
	}
	c.BalanceOwing = decimal.NewNullDecimal(c.ContractTotal.Decimal.Add(extras).Sub(c.TotalPaid))
}

// DisplayName builds "Bride & Groom Last" when no couple name was captured.
func DisplayName(bride, groom Party) string {
	switch {
	case bride.FirstName != "" && groom.FirstName != "":
		last := groom.LastName
		if last == "" {
			last = bride.LastName
		}
		return strings.TrimSpace(bride.FirstName + " & " + groom.FirstName + " " + last)
	case bride.FirstName != "":
		return bride.FullName()
	default:
		return groom.FullName()
	}
}
