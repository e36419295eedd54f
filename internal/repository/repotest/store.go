// Package repotest provides an in-memory repository.Store for tests, with
// per-operation failure injection.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository"
)

// Operation names accepted by FailNth and FailAlways.
const (
	OpCoupleCreate      = "couples.create"
	OpCoupleUpdate      = "couples.update"
	OpContractCreate    = "contracts.create"
	OpInstallmentsAdd   = "contracts.installments"
	OpSignatureAdd      = "contracts.signature"
	OpExtrasCreate      = "extras.create"
	OpQuoteCreate       = "quotes.create"
	OpPaymentCreate     = "payments.create"
	OpDeliverableCreate = "deliverables.create"
	OpStaffAssign       = "staff.assign"
)

// Store keeps every table in slices; reads return copies in insertion order.
type Store struct {
	mu sync.Mutex

	couples      []entity.Couple
	contracts    []entity.Contract
	installments []entity.Installment
	signatures   []entity.Signature
	extras       []entity.ExtrasOrder
	quotes       []entity.Quote
	payments     []entity.Payment
	deliverables []entity.Deliverable
	staff        []entity.StaffAssignment

	calls    map[string]int
	failures map[string]failure
}

type failure struct {
	nth int // 0 means every call
	err error
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		calls:    make(map[string]int),
		failures: make(map[string]failure),
	}
}

// FailNth makes the nth call (1-based) of op return err.
func (s *Store) FailNth(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{nth: n, err: err}
}

// FailAlways makes every call of op return err.
func (s *Store) FailAlways(op string, err error) {
	s.FailNth(op, 0, err)
}

// Calls reports how many times op was invoked, failed calls included.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Seed inserts couples as-is, keeping their ids.
func (s *Store) Seed(couples ...entity.Couple) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range couples {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		s.couples = append(s.couples, c)
	}
}

// Snapshot accessors for assertions.

func (s *Store) AllCouples() []entity.Couple {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Couple(nil), s.couples...)
}

func (s *Store) AllContracts() []entity.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Contract(nil), s.contracts...)
}

func (s *Store) AllInstallments() []entity.Installment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Installment(nil), s.installments...)
}

func (s *Store) AllSignatures() []entity.Signature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Signature(nil), s.signatures...)
}

func (s *Store) AllExtras() []entity.ExtrasOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.ExtrasOrder(nil), s.extras...)
}

func (s *Store) AllQuotes() []entity.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Quote(nil), s.quotes...)
}

func (s *Store) AllPayments() []entity.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Payment(nil), s.payments...)
}

func (s *Store) Couples() repository.CoupleRepository           { return couples{s} }
func (s *Store) Contracts() repository.ContractRepository       { return contracts{s} }
func (s *Store) Extras() repository.ExtrasRepository            { return extras{s} }
func (s *Store) Quotes() repository.QuoteRepository             { return quotes{s} }
func (s *Store) Payments() repository.PaymentRepository         { return payments{s} }
func (s *Store) Deliverables() repository.DeliverableRepository { return deliverables{s} }
func (s *Store) Staff() repository.StaffRepository              { return staff{s} }

// check must be called with mu held.
func (s *Store) check(op string) error {
	s.calls[op]++
	f, ok := s.failures[op]
	if !ok {
		return nil
	}
	if f.nth == 0 || f.nth == s.calls[op] {
		return f.err
	}
	return nil
}

func (s *Store) coupleExists(id uuid.UUID) bool {
	for _, c := range s.couples {
		if c.ID == id {
			return true
		}
	}
	return false
}

func fkError(table string, id uuid.UUID) error {
	return fmt.Errorf("%s: foreign key violation: couple %s does not exist", table, id)
}

type couples struct{ s *Store }

func (r couples) Create(_ context.Context, c *entity.Couple) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpCoupleCreate); err != nil {
		return err
	}
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
	r.s.couples = append(r.s.couples, *c)
	return nil
}

func (r couples) Update(_ context.Context, c *entity.Couple) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpCoupleUpdate); err != nil {
		return err
	}
	for i := range r.s.couples {
		if r.s.couples[i].ID == c.ID {
			c.UpdatedAt = time.Now().UTC()
			r.s.couples[i] = *c
			return nil
		}
	}
	return fmt.Errorf("couple %s: %w", c.ID, common.ErrNotFound)
}

func (r couples) GetByID(_ context.Context, id uuid.UUID) (*entity.Couple, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.couples {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("couple %s: %w", id, common.ErrNotFound)
}

func (r couples) filter(keep func(entity.Couple) bool) []entity.Couple {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Couple
	for _, c := range r.s.couples {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (r couples) ListAll(context.Context) ([]entity.Couple, error) {
	return r.filter(func(entity.Couple) bool { return true }), nil
}

func (r couples) ListByWeddingDate(_ context.Context, date string) ([]entity.Couple, error) {
	if date == "" {
		return nil, nil
	}
	return r.filter(func(c entity.Couple) bool { return c.WeddingDate == date }), nil
}

func (r couples) ListByNamePrefix(_ context.Context, prefix string) ([]entity.Couple, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, nil
	}
	return r.filter(func(c entity.Couple) bool {
		return strings.HasPrefix(strings.ToLower(c.CoupleName), prefix)
	}), nil
}

func (r couples) SetStatus(_ context.Context, id uuid.UUID, status constants.CoupleStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.couples {
		if r.s.couples[i].ID == id {
			r.s.couples[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("couple %s: %w", id, common.ErrNotFound)
}

type contracts struct{ s *Store }

func (r contracts) Create(_ context.Context, c *entity.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpContractCreate); err != nil {
		return err
	}
	if !r.s.coupleExists(c.CoupleID) {
		return fkError("contracts", c.CoupleID)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.contracts = append(r.s.contracts, *c)
	return nil
}

func (r contracts) AddInstallments(_ context.Context, items []entity.Installment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpInstallmentsAdd); err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	r.s.installments = append(r.s.installments, items...)
	return nil
}

func (r contracts) AddSignature(_ context.Context, sig *entity.Signature) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpSignatureAdd); err != nil {
		return err
	}
	if sig.ID == uuid.Nil {
		sig.ID = uuid.New()
	}
	r.s.signatures = append(r.s.signatures, *sig)
	return nil
}

func (r contracts) ListByCouple(_ context.Context, coupleID uuid.UUID) ([]entity.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Contract
	for _, c := range r.s.contracts {
		if c.CoupleID == coupleID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r contracts) ListInstallments(_ context.Context, contractID uuid.UUID) ([]entity.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Installment
	for _, it := range r.s.installments {
		if it.ContractID == contractID {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaymentNumber < out[j].PaymentNumber })
	return out, nil
}

type extras struct{ s *Store }

func (r extras) Create(_ context.Context, o *entity.ExtrasOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpExtrasCreate); err != nil {
		return err
	}
	if !r.s.coupleExists(o.CoupleID) {
		return fkError("extras_orders", o.CoupleID)
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = constants.ExtrasQuoted
	}
	r.s.extras = append(r.s.extras, *o)
	return nil
}

func (r extras) ListByCouple(_ context.Context, coupleID uuid.UUID) ([]entity.ExtrasOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.ExtrasOrder
	for _, o := range r.s.extras {
		if o.CoupleID == coupleID {
			out = append(out, o)
		}
	}
	return out, nil
}

type quotes struct{ s *Store }

func (r quotes) Create(_ context.Context, q *entity.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpQuoteCreate); err != nil {
		return err
	}
	if !r.s.coupleExists(q.CoupleID) {
		return fkError("quotes", q.CoupleID)
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	r.s.quotes = append(r.s.quotes, *q)
	return nil
}

func (r quotes) ListByCouple(_ context.Context, coupleID uuid.UUID) ([]entity.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Quote
	for _, q := range r.s.quotes {
		if q.CoupleID == coupleID {
			out = append(out, q)
		}
	}
	return out, nil
}

type payments struct{ s *Store }

func (r payments) Create(_ context.Context, p *entity.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpPaymentCreate); err != nil {
		return err
	}
	if !r.s.coupleExists(p.CoupleID) {
		return fkError("payments", p.CoupleID)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.payments = append(r.s.payments, *p)
	return nil
}

func (r payments) ListByCouple(_ context.Context, coupleID uuid.UUID) ([]entity.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Payment
	for _, p := range r.s.payments {
		if p.CoupleID == coupleID {
			out = append(out, p)
		}
	}
	return out, nil
}

type deliverables struct{ s *Store }

func (r deliverables) Create(_ context.Context, d *entity.Deliverable) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpDeliverableCreate); err != nil {
		return err
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = "pending"
	}
	r.s.deliverables = append(r.s.deliverables, *d)
	return nil
}

func (r deliverables) MarkDelivered(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.deliverables {
		if r.s.deliverables[i].ID == id {
			t := at.UTC()
			r.s.deliverables[i].Status = "delivered"
			r.s.deliverables[i].DeliveredAt = &t
			return nil
		}
	}
	return fmt.Errorf("deliverable %s: %w", id, common.ErrNotFound)
}

func (r deliverables) ListByCouple(_ context.Context, coupleID uuid.UUID) ([]entity.Deliverable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Deliverable
	for _, d := range r.s.deliverables {
		if d.CoupleID == coupleID {
			out = append(out, d)
		}
	}
	return out, nil
}

type staff struct{ s *Store }

func (r staff) Assign(_ context.Context, a *entity.StaffAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check(OpStaffAssign); err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.s.staff = append(r.s.staff, *a)
	return nil
}

func (r staff) ListByCouple(_ context.Context, coupleID uuid.UUID) ([]entity.StaffAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.StaffAssignment
	for _, a := range r.s.staff {
		if a.CoupleID == coupleID {
			out = append(out, a)
		}
	}
	return out, nil
}
