package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
)

const couplesTable = "couples"

var coupleColumns = []string{
	"id", "couple_name",
	"bride_first_name", "bride_last_name", "bride_email", "bride_phone",
	"groom_first_name", "groom_last_name", "groom_email", "groom_phone",
	"wedding_date", "ceremony_location", "reception_venue", "package_type",
	"contract_total", "extras_total", "total_paid", "balance_owing",
	"status", "lead_source", "notes", "created_at", "updated_at",
}

// CoupleRepository reads and writes customer records. Couples are never
// deleted; SetStatus is the only lifecycle transition.
type CoupleRepository interface {
	Create(ctx context.Context, c *entity.Couple) error
	Update(ctx context.Context, c *entity.Couple) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Couple, error)
	ListAll(ctx context.Context) ([]entity.Couple, error)
	ListByWeddingDate(ctx context.Context, date string) ([]entity.Couple, error)
	ListByNamePrefix(ctx context.Context, prefix string) ([]entity.Couple, error)
	SetStatus(ctx context.Context, id uuid.UUID, status constants.CoupleStatus) error
}

type coupleRepository struct {
	conn
	logger *slog.Logger
}

func NewCoupleRepository(c conn, logger *slog.Logger) CoupleRepository {
	return &coupleRepository{
		conn:   c,
		logger: logger,
	}
}

func (r *coupleRepository) Create(ctx context.Context, c *entity.Couple) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = constants.StatusProspect
	}

	q := r.builder().Insert(couplesTable).
		Columns(coupleColumns...).
		Values(
			c.ID, c.CoupleName,
			c.Bride.FirstName, c.Bride.LastName, c.Bride.Email, c.Bride.Phone,
			c.Groom.FirstName, c.Groom.LastName, c.Groom.Email, c.Groom.Phone,
			c.WeddingDate, c.CeremonyLocation, c.ReceptionVenue, string(c.PackageType),
			c.ContractTotal, c.ExtrasTotal, c.TotalPaid, c.BalanceOwing,
			string(c.Status), c.LeadSource, c.Notes, c.CreatedAt, c.UpdatedAt,
		)
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to create couple", "couple_name", c.CoupleName, "error", err)
		return fmt.Errorf("insert couple: %w", err)
	}
	return nil
}

func (r *coupleRepository) Update(ctx context.Context, c *entity.Couple) error {
	c.UpdatedAt = time.Now().UTC()
	q := r.builder().Update(couplesTable).
		Set("couple_name", c.CoupleName).
		Set("bride_first_name", c.Bride.FirstName).
		Set("bride_last_name", c.Bride.LastName).
		Set("bride_email", c.Bride.Email).
		Set("bride_phone", c.Bride.Phone).
		Set("groom_first_name", c.Groom.FirstName).
		Set("groom_last_name", c.Groom.LastName).
		Set("groom_email", c.Groom.Email).
		Set("groom_phone", c.Groom.Phone).
		Set("wedding_date", c.WeddingDate).
		Set("ceremony_location", c.CeremonyLocation).
		Set("reception_venue", c.ReceptionVenue).
		Set("package_type", string(c.PackageType)).
		Set("contract_total", c.ContractTotal).
		Set("extras_total", c.ExtrasTotal).
		Set("total_paid", c.TotalPaid).
		Set("balance_owing", c.BalanceOwing).
		Set("status", string(c.Status)).
		Set("lead_source", c.LeadSource).
		Set("notes", c.Notes).
		Set("updated_at", c.UpdatedAt).
		Where(entsql.EQ("id", c.ID))
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to update couple", "couple_id", c.ID, "error", err)
		return fmt.Errorf("update couple %s: %w", c.ID, err)
	}
	return nil
}

func (r *coupleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Couple, error) {
	list, err := r.list(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("couple %s: %w", id, common.ErrNotFound)
	}
	return &list[0], nil
}

func (r *coupleRepository) ListAll(ctx context.Context) ([]entity.Couple, error) {
	return r.list(ctx, nil)
}

func (r *coupleRepository) ListByWeddingDate(ctx context.Context, date string) ([]entity.Couple, error) {
	if date == "" {
		return nil, nil
	}
	return r.list(ctx, entsql.EQ("wedding_date", date))
}

// ListByNamePrefix matches couple_name case-insensitively.
func (r *coupleRepository) ListByNamePrefix(ctx context.Context, prefix string) ([]entity.Couple, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	pattern := escapeLike(strings.ToLower(prefix)) + "%"
	p := entsql.P(func(b *entsql.Builder) {
		b.WriteString("LOWER(").Ident("couple_name").WriteString(") LIKE ").Arg(pattern).WriteString(" ESCAPE '\\'")
	})
	return r.list(ctx, p)
}

func (r *coupleRepository) SetStatus(ctx context.Context, id uuid.UUID, status constants.CoupleStatus) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	q := r.builder().Update(couplesTable).
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id))
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to set couple status", "couple_id", id, "status", status, "error", err)
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

// list returns couples in store order: oldest first.
func (r *coupleRepository) list(ctx context.Context, where *entsql.Predicate) ([]entity.Couple, error) {
	sel := r.builder().Select(coupleColumns...).From(entsql.Table(couplesTable))
	if where != nil {
		sel = sel.Where(where)
	}
	sel = sel.OrderBy("created_at", "id")

	var out []entity.Couple
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		c, err := scanCouple(rows)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list couples", "error", err)
		return nil, fmt.Errorf("list couples: %w", err)
	}
	return out, nil
}

func scanCouple(rows *entsql.Rows) (entity.Couple, error) {
	var (
		c               entity.Couple
		pkg, status     string
		created, update time.Time
	)
	err := rows.Scan(
		&c.ID, &c.CoupleName,
		&c.Bride.FirstName, &c.Bride.LastName, &c.Bride.Email, &c.Bride.Phone,
		&c.Groom.FirstName, &c.Groom.LastName, &c.Groom.Email, &c.Groom.Phone,
		&c.WeddingDate, &c.CeremonyLocation, &c.ReceptionVenue, &pkg,
		&c.ContractTotal, &c.ExtrasTotal, &c.TotalPaid, &c.BalanceOwing,
		&status, &c.LeadSource, &c.Notes, &created, &update,
	)
	if err != nil {
		return c, errors.Join(common.ErrDatabase, err)
	}
	c.PackageType = constants.PackageType(pkg)
	c.Status = constants.CoupleStatus(status)
	c.CreatedAt, c.UpdatedAt = created, update
	return c, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
