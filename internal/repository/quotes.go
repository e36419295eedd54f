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

type QuoteRepository interface {
	Create(ctx context.Context, q *entity.Quote) error
	ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.Quote, error)
}

type quoteRepository struct {
	conn
	logger *slog.Logger
}

func NewQuoteRepository(c conn, logger *slog.Logger) QuoteRepository {
	return &quoteRepository{conn: c, logger: logger}
}

func (r *quoteRepository) Create(ctx context.Context, qt *entity.Quote) error {
	if qt.ID == uuid.Nil {
		qt.ID = uuid.New()
	}
	if qt.CreatedAt.IsZero() {
		qt.CreatedAt = time.Now().UTC()
	}
	var snapshot any
	if len(qt.Snapshot) > 0 {
		snapshot = string(qt.Snapshot)
	}
	q := r.builder().Insert("quotes").
		Columns("id", "couple_id", "package_type", "quoted_total", "quote_date", "lead_source", "source_filename", "snapshot", "created_at").
		Values(qt.ID, qt.CoupleID, string(qt.PackageType), qt.QuotedTotal, qt.QuoteDate, qt.LeadSource, qt.SourceFilename, snapshot, qt.CreatedAt)
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to create quote", "couple_id", qt.CoupleID, "error", err)
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (r *quoteRepository) ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.Quote, error) {
	sel := r.builder().
		Select("id", "couple_id", "package_type", "quoted_total", "quote_date", "lead_source", "source_filename", "snapshot", "created_at").
		From(entsql.Table("quotes")).
		Where(entsql.EQ("couple_id", coupleID)).
		OrderBy("created_at")
	var out []entity.Quote
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			qt       entity.Quote
			pkg      string
			snapshot []byte
		)
		if err := rows.Scan(&qt.ID, &qt.CoupleID, &pkg, &qt.QuotedTotal, &qt.QuoteDate, &qt.LeadSource, &qt.SourceFilename, &snapshot, &qt.CreatedAt); err != nil {
			return err
		}
		qt.PackageType = constants.PackageType(pkg)
		qt.Snapshot = snapshot
		out = append(out, qt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return out, nil
}
