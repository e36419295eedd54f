package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
)

type DeliverableRepository interface {
	Create(ctx context.Context, d *entity.Deliverable) error
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.Deliverable, error)
}

type StaffRepository interface {
	Assign(ctx context.Context, a *entity.StaffAssignment) error
	ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.StaffAssignment, error)
}

type deliverableRepository struct {
	conn
	logger *slog.Logger
}

func NewDeliverableRepository(c conn, logger *slog.Logger) DeliverableRepository {
	return &deliverableRepository{conn: c, logger: logger}
}

func (r *deliverableRepository) Create(ctx context.Context, d *entity.Deliverable) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = "pending"
	}
	q := r.builder().Insert("deliverables").
		Columns("id", "couple_id", "kind", "status", "due_date", "delivered_at").
		Values(d.ID, d.CoupleID, d.Kind, d.Status, d.DueDate, d.DeliveredAt)
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to create deliverable", "couple_id", d.CoupleID, "kind", d.Kind, "error", err)
		return fmt.Errorf("insert deliverable: %w", err)
	}
	return nil
}

func (r *deliverableRepository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	q := r.builder().Update("deliverables").
		Set("status", "delivered").
		Set("delivered_at", at.UTC()).
		Where(entsql.EQ("id", id))
	if err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	return nil
}

func (r *deliverableRepository) ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.Deliverable, error) {
	sel := r.builder().
		Select("id", "couple_id", "kind", "status", "due_date", "delivered_at").
		From(entsql.Table("deliverables")).
		Where(entsql.EQ("couple_id", coupleID)).
		OrderBy("due_date")
	var out []entity.Deliverable
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var (
			d  entity.Deliverable
			at sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.CoupleID, &d.Kind, &d.Status, &d.DueDate, &at); err != nil {
			return err
		}
		if at.Valid {
			t := at.Time
			d.DeliveredAt = &t
		}
		out = append(out, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list deliverables: %w", err)
	}
	return out, nil
}

type staffRepository struct {
	conn
	logger *slog.Logger
}

func NewStaffRepository(c conn, logger *slog.Logger) StaffRepository {
	return &staffRepository{conn: c, logger: logger}
}

func (r *staffRepository) Assign(ctx context.Context, a *entity.StaffAssignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	q := r.builder().Insert("staff_assignments").
		Columns("id", "couple_id", "staff_name", "role").
		Values(a.ID, a.CoupleID, a.StaffName, a.Role)
	if err := r.exec(ctx, q); err != nil {
		r.logger.Error("failed to assign staff", "couple_id", a.CoupleID, "staff", a.StaffName, "error", err)
		return fmt.Errorf("insert staff assignment: %w", err)
	}
	return nil
}

func (r *staffRepository) ListByCouple(ctx context.Context, coupleID uuid.UUID) ([]entity.StaffAssignment, error) {
	sel := r.builder().
		Select("id", "couple_id", "staff_name", "role").
		From(entsql.Table("staff_assignments")).
		Where(entsql.EQ("couple_id", coupleID))
	var out []entity.StaffAssignment
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var a entity.StaffAssignment
		if err := rows.Scan(&a.ID, &a.CoupleID, &a.StaffName, &a.Role); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return out, nil
}
