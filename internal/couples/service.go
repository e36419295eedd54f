package couples

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository"
)

// Service handles couple business logic outside of document import.
type Service struct {
	store  repository.Store
	logger *slog.Logger
}

// NewService creates a new couple service.
func NewService(store repository.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
	}
}

// ListCouplesRequest filters the couple list. Empty fields match everything.
type ListCouplesRequest struct {
	Status      string
	WeddingDate string
}

// ListCouples returns couples in creation order.
func (s *Service) ListCouples(ctx context.Context, req ListCouplesRequest) ([]entity.Couple, error) {
	validator := common.NewValidator()
	validator.Field("wedding_date", req.WeddingDate, common.ISODate)
	if req.Status != "" && !slices.Contains(constants.CoupleStatuses, req.Status) {
		return nil, common.InvalidArgumentErrorf("status must be one of %s", strings.Join(constants.CoupleStatuses, ", "))
	}
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}

	var (
		list []entity.Couple
		err  error
	)
	if req.WeddingDate != "" {
		list, err = s.store.Couples().ListByWeddingDate(ctx, req.WeddingDate)
	} else {
		list, err = s.store.Couples().ListAll(ctx)
	}
	if err != nil {
		// DB error already logged in repository layer
		return nil, common.InternalErrorf("list couples: %v", err)
	}
	if req.Status != "" {
		list = slices.DeleteFunc(list, func(c entity.Couple) bool { return string(c.Status) != req.Status })
	}

	s.logger.Info("couples listed successfully", "count", len(list), "status", req.Status, "wedding_date", req.WeddingDate)
	return list, nil
}

// Detail is a couple with every record it owns.
type Detail struct {
	Couple       entity.Couple            `json:"couple"`
	Contracts    []entity.Contract        `json:"contracts"`
	Payments     []entity.Payment         `json:"payments"`
	Extras       []entity.ExtrasOrder     `json:"extras"`
	Quotes       []entity.Quote           `json:"quotes"`
	Deliverables []entity.Deliverable     `json:"deliverables"`
	Staff        []entity.StaffAssignment `json:"staff"`
}

// GetCouple loads one couple and its line records.
func (s *Service) GetCouple(ctx context.Context, coupleID string) (*Detail, error) {
	id, err := parseCoupleID(coupleID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Couples().GetByID(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}

	d := &Detail{Couple: *c}
	if d.Contracts, err = s.store.Contracts().ListByCouple(ctx, id); err != nil {
		return nil, common.InternalErrorf("list contracts: %v", err)
	}
	if d.Payments, err = s.store.Payments().ListByCouple(ctx, id); err != nil {
		return nil, common.InternalErrorf("list payments: %v", err)
	}
	if d.Extras, err = s.store.Extras().ListByCouple(ctx, id); err != nil {
		return nil, common.InternalErrorf("list extras: %v", err)
	}
	if d.Quotes, err = s.store.Quotes().ListByCouple(ctx, id); err != nil {
		return nil, common.InternalErrorf("list quotes: %v", err)
	}
	if d.Deliverables, err = s.store.Deliverables().ListByCouple(ctx, id); err != nil {
		return nil, common.InternalErrorf("list deliverables: %v", err)
	}
	if d.Staff, err = s.store.Staff().ListByCouple(ctx, id); err != nil {
		return nil, common.InternalErrorf("list staff: %v", err)
	}
	return d, nil
}

// RecordPaymentRequest represents money received from a couple.
type RecordPaymentRequest struct {
	CoupleID string
	Amount   decimal.Decimal
	PaidOn   string // YYYY-MM-DD, defaults to today
	Method   string
	Payer    string
}

// RecordPayment inserts a payment and updates the couple's paid total and
// balance.
func (s *Service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*entity.Couple, *entity.Payment, error) {
	validator := common.NewValidator()
	validator.Field("couple_id", req.CoupleID, common.Required, common.UUID)
	validator.Field("amount", req.Amount, common.PositiveAmount)
	validator.Field("paid_on", req.PaidOn, common.ISODate)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, nil, err
	}
	id := uuid.MustParse(req.CoupleID)
	logger := common.LoggerFromContext(ctx, s.logger).With("couple_id", id)

	c, err := s.store.Couples().GetByID(ctx, id)
	if err != nil {
		return nil, nil, common.ToStatus(err)
	}

	paidOn := req.PaidOn
	if paidOn == "" {
		paidOn = time.Now().Format("2006-01-02")
	}
	p := &entity.Payment{
		CoupleID: id,
		Amount:   req.Amount.Round(2),
		PaidOn:   paidOn,
		Method:   strings.TrimSpace(req.Method),
		Payer:    strings.TrimSpace(req.Payer),
	}
	if err := s.store.Payments().Create(ctx, p); err != nil {
		logger.Error("payment.insert_failed", "error", err)
		return nil, nil, common.InternalErrorf("insert payment: %v", err)
	}

	c.TotalPaid = c.TotalPaid.Add(p.Amount)
	c.RecomputeBalance()
	if err := s.store.Couples().Update(ctx, c); err != nil {
		logger.Error("payment.totals_update_failed", "payment_id", p.ID, "error", err)
		return nil, p, common.InternalErrorf("update couple totals: %v", err)
	}

	logger.Info("payment.recorded", "payment_id", p.ID, "amount", p.Amount, "total_paid", c.TotalPaid, "balance_owing", c.BalanceOwing)
	return c, p, nil
}

// SetStatus moves a couple through its lifecycle. There is no delete.
func (s *Service) SetStatus(ctx context.Context, coupleID, newStatus string) error {
	id, err := parseCoupleID(coupleID)
	if err != nil {
		return err
	}
	if !slices.Contains(constants.CoupleStatuses, newStatus) {
		return common.InvalidArgumentErrorf("status must be one of %s", strings.Join(constants.CoupleStatuses, ", "))
	}
	if err := s.store.Couples().SetStatus(ctx, id, constants.CoupleStatus(newStatus)); err != nil {
		return common.ToStatus(err)
	}
	s.logger.Info("couple status updated", "couple_id", id, "status", newStatus)
	return nil
}

// AddDeliverableRequest owes a couple a gallery, album or film.
type AddDeliverableRequest struct {
	CoupleID string
	Kind     string
	DueDate  string
}

func (s *Service) AddDeliverable(ctx context.Context, req AddDeliverableRequest) (*entity.Deliverable, error) {
	validator := common.NewValidator()
	validator.Field("couple_id", req.CoupleID, common.Required, common.UUID)
	validator.Field("kind", req.Kind, common.Required, common.MaxLength(64))
	validator.Field("due_date", req.DueDate, common.ISODate)
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	d := &entity.Deliverable{
		CoupleID: uuid.MustParse(req.CoupleID),
		Kind:     strings.TrimSpace(req.Kind),
		Status:   "pending",
		DueDate:  req.DueDate,
	}
	if err := s.store.Deliverables().Create(ctx, d); err != nil {
		return nil, toStatus(err, "create deliverable")
	}
	s.logger.Info("deliverable added", "couple_id", d.CoupleID, "deliverable_id", d.ID, "kind", d.Kind)
	return d, nil
}

func (s *Service) MarkDelivered(ctx context.Context, deliverableID string) error {
	id, err := uuid.Parse(strings.TrimSpace(deliverableID))
	if err != nil {
		return status.Error(codes.InvalidArgument, "deliverable_id must be a UUID")
	}
	if err := s.store.Deliverables().MarkDelivered(ctx, id, time.Now().UTC()); err != nil {
		return common.ToStatus(err)
	}
	return nil
}

// AssignStaffRequest puts a photographer or videographer on a wedding.
type AssignStaffRequest struct {
	CoupleID  string
	StaffName string
	Role      string
}

func (s *Service) AssignStaff(ctx context.Context, req AssignStaffRequest) (*entity.StaffAssignment, error) {
	validator := common.NewValidator()
	validator.Field("couple_id", req.CoupleID, common.Required, common.UUID)
	validator.Field("staff_name", req.StaffName, common.Required, common.MaxLength(128))
	validator.Field("role", req.Role, common.Required, common.MaxLength(64))
	if err := common.ValidateAndReturnError(validator); err != nil {
		return nil, err
	}
	a := &entity.StaffAssignment{
		CoupleID:  uuid.MustParse(req.CoupleID),
		StaffName: strings.TrimSpace(req.StaffName),
		Role:      strings.ToLower(strings.TrimSpace(req.Role)),
	}
	if err := s.store.Staff().Assign(ctx, a); err != nil {
		return nil, toStatus(err, "assign staff")
	}
	s.logger.Info("staff assigned", "couple_id", a.CoupleID, "staff_name", a.StaffName, "role", a.Role)
	return a, nil
}

func parseCoupleID(s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, status.Error(codes.InvalidArgument, "couple_id is required")
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "couple_id must be a UUID")
	}
	return id, nil
}

func toStatus(err error, op string) error {
	if errors.Is(err, common.ErrNotFound) {
		return status.Errorf(codes.NotFound, "%s: %v", op, err)
	}
	return common.InternalErrorf("%s: %v", op, err)
}
