// Package merge folds extracted fields into couple records without ever
// replacing a known value with an unknown one.
package merge

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
)

type Result struct {
	Couple  entity.Couple
	Created bool
	Changed []string // column names written by the merge
}

// Apply merges p into existing. A nil existing couple yields a new record
// built from p alone.
func Apply(existing *entity.Couple, p *extraction.Payload) Result {
	patch := Patch(p)
	if existing == nil {
		c := NewCouple(p.DocumentType, patch)
		if p.Extras != nil {
			c.ExtrasTotal = positive(p.Extras.Total)
		}
		c.RecomputeBalance()
		return Result{Couple: c, Created: true}
	}

	merged, changed := Couple(*existing, patch)
	// a free-text title only names a couple that has no name yet
	if p.DocumentType != constants.DocContract && existing.CoupleName != "" && merged.CoupleName != existing.CoupleName {
		merged.CoupleName = existing.CoupleName
		changed = without(changed, "couple_name")
	}
	if p.Extras != nil {
		if total := positive(p.Extras.Total); total.Valid {
			sum := total.Decimal
			if existing.ExtrasTotal.Valid {
				sum = sum.Add(existing.ExtrasTotal.Decimal)
			}
			merged.ExtrasTotal = decimal.NewNullDecimal(sum)
			changed = append(changed, "extras_total")
		}
	}
	if next := PromoteStatus(existing.Status, p.DocumentType); next != existing.Status {
		merged.Status = next
		changed = append(changed, "status")
	}
	before := merged.BalanceOwing
	merged.RecomputeBalance()
	if !nullEqual(before, merged.BalanceOwing) {
		changed = append(changed, "balance_owing")
	}
	return Result{Couple: merged, Changed: changed}
}

// Patch is the couple-level view of an extracted payload. Unknown fields are
// left at their zero value.
func Patch(p *extraction.Payload) entity.Couple {
	var c entity.Couple
	switch {
	case p.Contract != nil:
		f := p.Contract
		c.Bride, c.Groom = f.Bride, f.Groom
		// half a couple is not enough to rename one
		if f.Bride.FirstName != "" && f.Groom.FirstName != "" {
			c.CoupleName = entity.DisplayName(f.Bride, f.Groom)
		}
		c.WeddingDate = f.WeddingDate
		c.CeremonyLocation = f.CeremonyLocation
		c.ReceptionVenue = f.ReceptionVenue
		c.PackageType = f.PackageType
		c.ContractTotal = positive(f.Total)
		c.Notes = f.Notes
	case p.Extras != nil:
		c.CoupleName = p.Extras.CoupleName
		c.WeddingDate = p.Extras.WeddingDate
	case p.Quote != nil:
		f := p.Quote
		c.CoupleName = f.CoupleName
		if c.CoupleName == "" {
			c.CoupleName = entity.DisplayName(entity.Party{FirstName: f.BrideFirstName}, entity.Party{FirstName: f.GroomFirstName})
		}
		c.Bride = entity.Party{FirstName: f.BrideFirstName, Email: f.Email, Phone: f.Phone}
		c.Groom = entity.Party{FirstName: f.GroomFirstName}
		c.WeddingDate = f.WeddingDate
		c.ReceptionVenue = f.Venue
		c.PackageType = f.PackageType
		c.LeadSource = f.LeadSource
	}
	return c
}

// NewCouple fills the defaults for a couple created by an import.
func NewCouple(docType constants.DocumentType, patch entity.Couple) entity.Couple {
	c := patch
	c.Status = PromoteStatus("", docType)
	if c.LeadSource == "" {
		c.LeadSource = constants.LeadSourceDocumentImport
	}
	if c.CoupleName == "" {
		c.CoupleName = entity.DisplayName(c.Bride, c.Groom)
	}
	if c.CoupleName == "" {
		c.CoupleName = "Unnamed couple"
	}
	return c
}

// PromoteStatus returns the status a couple should have after importing a
// document of docType. Statuses only move forward: a lead never demotes a
// booked couple, and completed or cancelled couples are left alone.
func PromoteStatus(current constants.CoupleStatus, docType constants.DocumentType) constants.CoupleStatus {
	switch current {
	case "":
		if docType == constants.DocLeadQuote {
			return constants.StatusProspect
		}
		return constants.StatusBooked
	case constants.StatusProspect:
		if docType == constants.DocContract {
			return constants.StatusBooked
		}
	}
	return current
}

// Couple writes every meaningful field of patch over existing and reports
// which columns changed. Empty strings, zero or null money and zero parties
// never overwrite.
func Couple(existing, patch entity.Couple) (entity.Couple, []string) {
	out := existing
	var changed []string
	str := func(name string, dst *string, v string) {
		if v != "" && v != *dst {
			*dst = v
			changed = append(changed, name)
		}
	}
	money := func(name string, dst *decimal.NullDecimal, v decimal.NullDecimal) {
		v = positive(v)
		if v.Valid && !nullEqual(*dst, v) {
			*dst = v
			changed = append(changed, name)
		}
	}

	str("couple_name", &out.CoupleName, patch.CoupleName)
	str("bride_first_name", &out.Bride.FirstName, patch.Bride.FirstName)
	str("bride_last_name", &out.Bride.LastName, patch.Bride.LastName)
	str("bride_email", &out.Bride.Email, patch.Bride.Email)
	str("bride_phone", &out.Bride.Phone, patch.Bride.Phone)
	str("groom_first_name", &out.Groom.FirstName, patch.Groom.FirstName)
	str("groom_last_name", &out.Groom.LastName, patch.Groom.LastName)
	str("groom_email", &out.Groom.Email, patch.Groom.Email)
	str("groom_phone", &out.Groom.Phone, patch.Groom.Phone)
	str("wedding_date", &out.WeddingDate, patch.WeddingDate)
	str("ceremony_location", &out.CeremonyLocation, patch.CeremonyLocation)
	str("reception_venue", &out.ReceptionVenue, patch.ReceptionVenue)
	if patch.PackageType != "" && patch.PackageType != out.PackageType {
		out.PackageType = patch.PackageType
		changed = append(changed, "package_type")
	}
	money("contract_total", &out.ContractTotal, patch.ContractTotal)
	money("extras_total", &out.ExtrasTotal, patch.ExtrasTotal)
	money("balance_owing", &out.BalanceOwing, patch.BalanceOwing)
	str("lead_source", &out.LeadSource, patch.LeadSource)
	str("notes", &out.Notes, patch.Notes)
	return out, changed
}

func positive(v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid || !v.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}
	return v
}

func nullEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

func without(list []string, name string) []string {
	out := list[:0]
	for _, s := range list {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}
