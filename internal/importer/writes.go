package importer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository"
)

// writeRelated inserts the line records of p. Earlier inserts are kept when
// a later one fails.
func writeRelated(ctx context.Context, store repository.Store, coupleID uuid.UUID, filename string, p *extraction.Payload) error {
	switch {
	case p.Contract != nil:
		return writeContract(ctx, store.Contracts(), coupleID, filename, p.Contract)
	case p.Extras != nil:
		return writeExtras(ctx, store.Extras(), coupleID, filename, p.Extras)
	case p.Quote != nil:
		return writeQuote(ctx, store.Quotes(), coupleID, filename, p.Quote)
	}
	return nil
}

func writeContract(ctx context.Context, repo repository.ContractRepository, coupleID uuid.UUID, filename string, f *extraction.ContractFields) error {
	snapshot, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("snapshot contract: %w", err)
	}
	c := &entity.Contract{
		CoupleID:       coupleID,
		WeddingDate:    f.WeddingDate,
		PackageType:    f.PackageType,
		CoverageHours:  f.CoverageHours,
		Total:          f.Total,
		Deposit:        f.Deposit,
		SourceFilename: filename,
		Snapshot:       snapshot,
	}
	if err := repo.Create(ctx, c); err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}

	if len(f.Installments) > 0 {
		items := make([]entity.Installment, 0, len(f.Installments))
		for _, in := range f.Installments {
			items = append(items, entity.Installment{
				ContractID:     c.ID,
				CoupleID:       coupleID,
				PaymentNumber:  in.PaymentNumber,
				DueDescription: in.DueDescription,
				Amount:         in.Amount,
				DueDate:        in.DueDate,
			})
		}
		if err := repo.AddInstallments(ctx, items); err != nil {
			return fmt.Errorf("insert installments: %w", err)
		}
	}

	if f.Signature.SignerName != "" {
		sig := &entity.Signature{
			ContractID:       c.ID,
			SignerName:       f.Signature.SignerName,
			SignedDate:       f.Signature.SignedDate,
			PhotographerName: f.Signature.PhotographerName,
		}
		if err := repo.AddSignature(ctx, sig); err != nil {
			return fmt.Errorf("insert signature: %w", err)
		}
	}
	return nil
}

func writeExtras(ctx context.Context, repo repository.ExtrasRepository, coupleID uuid.UUID, filename string, f *extraction.ExtrasFields) error {
	o := &entity.ExtrasOrder{
		CoupleID:       coupleID,
		Items:          f.Items,
		Inclusions:     f.Inclusions,
		Total:          f.Total.Decimal,
		Status:         constants.ExtrasQuoted,
		OrderDate:      f.OrderDate,
		SourceFilename: filename,
	}
	if err := repo.Create(ctx, o); err != nil {
		return fmt.Errorf("insert extras order: %w", err)
	}
	return nil
}

func writeQuote(ctx context.Context, repo repository.QuoteRepository, coupleID uuid.UUID, filename string, f *extraction.QuoteFields) error {
	snapshot, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("snapshot quote: %w", err)
	}
	q := &entity.Quote{
		CoupleID:       coupleID,
		PackageType:    f.PackageType,
		QuotedTotal:    f.QuotedTotal,
		QuoteDate:      f.QuoteDate,
		LeadSource:     f.LeadSource,
		SourceFilename: filename,
		Snapshot:       snapshot,
	}
	if err := repo.Create(ctx, q); err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}
