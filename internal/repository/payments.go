package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.Payment, error)
}

type paymentRepository struct {
	conn
	logger *slog.Logger
}

func NewPaymentRepository(c conn, logger *slog.Logger) PaymentRepository {
	return &paymentRepository{conn: c, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	q := r.builder().Insert("payments").
		Columns("id", "couple_id", "amount", "paid_on", "method", "payer", "created_at").
		Values(p.ID, p.CoupleID, p.Amount, p.PaidOn, p.Method, p.Payer, p.CreatedAt)
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to record payment", "couple_id", p.CoupleID, "amount", p.Amount.String(), "error", err)
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.Payment, error) {
	sel := r.builder().
		Select("id", "couple_id", "amount", "paid_on", "method", "payer", "created_at").
		From(entsql.Table("payments")).
		Where(entsql.EQ("couple_id", coupleID)).
		OrderBy("paid_on", "created_at")
	var out []entity.Payment
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.CoupleID, &p.Amount, &p.PaidOn, &p.Method, &p.Payer, &p.CreatedAt); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}
