package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
)

// ContractRepository is append-only: contracts, their installments and signatures.
type ContractRepository interface {
	Create(ctx context.Context, c *entity.Contract) error
	AddInstallments(ctx context.Context, items []entity.Installment) error
	AddSignature(ctx context.Context, s *entity.Signature) error
	ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.Contract, error)
	ListInstallments(ctx context.Context, contractID uuid.UUID) ([]entity.Installment, error)
}

type contractRepository struct {
	conn
	logger *slog.Logger
}

func NewContractRepository(c conn, logger *slog.Logger) ContractRepository {
	return &contractRepository{conn: c, logger: logger}
}

func (r *contractRepository) Create(ctx context.Context, c *entity.Contract) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	var snapshot any
	if len(c.Snapshot) > 0 {
		snapshot = string(c.Snapshot)
	}
	q := r.builder().Insert("contracts").
		Columns("id", "couple_id", "wedding_date", "package_type", "coverage_hours", "total", "deposit", "source_filename", "snapshot", "created_at").
		Values(c.ID, c.CoupleID, c.WeddingDate, string(c.PackageType), c.CoverageHours, c.Total, c.Deposit, c.SourceFilename, snapshot, c.CreatedAt)
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to create contract", "couple_id", c.CoupleID, "error", err)
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

func (r *contractRepository) AddInstallments(ctx context.Context, items []entity.Installment) error {
	if len(items) == 0 {
		return nil
	}
	q := r.builder().Insert("contract_installments").
		Columns("id", "contract_id", "couple_id", "payment_number", "due_description", "amount", "due_date")
	for i := range items {
		it := &items[i]
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		q = q.Values(it.ID, it.ContractID, it.CoupleID, it.PaymentNumber, it.DueDescription, it.Amount, it.DueDate)
	}
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to insert installments", "contract_id", items[0].ContractID, "count", len(items), "error", err)
		return fmt.Errorf("insert installments: %w", err)
	}
	return nil
}

func (r *contractRepository) AddSignature(ctx context.Context, s *entity.Signature) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	q := r.builder().Insert("contract_signatures").
		Columns("id", "contract_id", "signer_name", "signed_date", "photographer_name").
		Values(s.ID, s.ContractID, s.SignerName, s.SignedDate, s.PhotographerName)
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to insert signature", "contract_id", s.ContractID, "error", err)
		return fmt.Errorf("insert signature: %w", err)
	}
	return nil
}

func (r *contractRepository) ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.Contract, error) {
	sel := r.builder().
		Select("id", "couple_id", "wedding_date", "package_type", "coverage_hours", "total", "deposit", "source_filename", "snapshot", "created_at").
		From(entsql.Table("contracts")).
		Where(entsql.EQ("couple_id", coupleID)).
		OrderBy("created_at")
	var out []entity.Contract
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			c        entity.Contract
			pkg      string
			snapshot []byte
		)
		if err := rows.Scan(&c.ID, &c.CoupleID, &c.WeddingDate, &pkg, &c.CoverageHours, &c.Total, &c.Deposit, &c.SourceFilename, &snapshot, &c.CreatedAt); err != nil {
			return err
		}
		c.PackageType = constants.PackageType(pkg)
		c.Snapshot = snapshot
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return out, nil
}

func (r *contractRepository) ListInstallments(ctx context.Context, contractID uuid.UUID) ([]entity.Installment, error) {
	sel := r.builder().
		Select("id", "contract_id", "couple_id", "payment_number", "due_description", "amount", "due_date").
		From(entsql.Table("contract_installments")).
		Where(entsql.EQ("contract_id", contractID)).
		OrderBy("payment_number")
	var out []entity.Installment
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var it entity.Installment
		if err := rows.Scan(&it.ID, &it.ContractID, &it.CoupleID, &it.PaymentNumber, &it.DueDescription, &it.Amount, &it.DueDate); err != nil {
			return err
		}
		out = append(out, it)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	return out, nil
}
