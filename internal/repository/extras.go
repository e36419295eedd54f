package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
)

type ExtrasRepository interface {
	Create(ctx context.Context, o *entity.ExtrasOrder) error
	ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.ExtrasOrder, error)
}

type extrasRepository struct {
	conn
	logger *slog.Logger
}

func NewExtrasRepository(c conn, logger *slog.Logger) ExtrasRepository {
	return &extrasRepository{conn: c, logger: logger}
}

func (r *extrasRepository) Create(ctx context.Context, o *entity.ExtrasOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = constants.ExtrasQuoted
	}
	items, err := json.Marshal(nonNil(o.Items))
	if err != nil {
		return fmt.Errorf("encode extras items: %w", err)
	}
	inclusions, err := json.Marshal(nonNil(o.Inclusions))
	if err != nil {
		return fmt.Errorf("encode inclusions: %w", err)
	}
	q := r.builder().Insert("extras_orders").
		Columns("id", "couple_id", "items", "inclusions", "total", "status", "order_date", "source_filename", "created_at").
		Values(o.ID, o.CoupleID, string(items), string(inclusions), o.Total, string(o.Status), o.OrderDate, o.SourceFilename, o.CreatedAt)
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to create extras order", "couple_id", o.CoupleID, "error", err)
		return fmt.Errorf("insert extras order: %w", err)
	}
	return nil
}

func (r *extrasRepository) ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.ExtrasOrder, error) {
	sel := r.builder().
		Select("id", "couple_id", "items", "inclusions", "total", "status", "order_date", "source_filename", "created_at").
		From(entsql.Table("extras_orders")).
		Where(entsql.EQ("couple_id", coupleID)).
		OrderBy("created_at")
	var out []entity.ExtrasOrder
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			o                 entity.ExtrasOrder
			items, inclusions []byte
			status            string
		)
		if err := rows.Scan(&o.ID, &o.CoupleID, &items, &inclusions, &o.Total, &status, &o.OrderDate, &o.SourceFilename, &o.CreatedAt); err != nil {
			return err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return fmt.Errorf("decode items: %w", err)
		}
		if err := json.Unmarshal(inclusions, &o.Inclusions); err != nil {
			return fmt.Errorf("decode inclusions: %w", err)
		}
		o.Status = constants.ExtrasOrderStatus(status)
		out = append(out, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list extras orders: %w", err)
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
