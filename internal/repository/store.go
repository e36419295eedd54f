package repository

import (
	"context"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Store is the persistence session handle threaded through the import path.
// Every component takes it explicitly so tests can swap in repotest.Store.
type Store interface {
	Couples() CoupleRepository
	Contracts() ContractRepository
	Extras() ExtrasRepository
	Quotes() QuoteRepository
	Payments() PaymentRepository
	Deliverables() DeliverableRepository
	Staff() StaffRepository
}

type sqlStore struct {
	couples      CoupleRepository
	contracts    ContractRepository
	extras       ExtrasRepository
	quotes       QuoteRepository
	payments     PaymentRepository
	deliverables DeliverableRepository
	staff        StaffRepository
}

// NewStore wires every repository over one driver.
func NewStore(drv dialect.Driver, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	c := conn{db: drv, dialect: drv.Dialect()}
	return &sqlStore{
		couples:      NewCoupleRepository(c, logger),
		contracts:    NewContractRepository(c, logger),
		extras:       NewExtrasRepository(c, logger),
		quotes:       NewQuoteRepository(c, logger),
		payments:     NewPaymentRepository(c, logger),
		deliverables: NewDeliverableRepository(c, logger),
		staff:        NewStaffRepository(c, logger),
	}
}

func (s *sqlStore) Couples() CoupleRepository           { return s.couples }
func (s *sqlStore) Contracts() ContractRepository       { return s.contracts }
func (s *sqlStore) Extras() ExtrasRepository            { return s.extras }
func (s *sqlStore) Quotes() QuoteRepository             { return s.quotes }
func (s *sqlStore) Payments() PaymentRepository         { return s.payments }
func (s *sqlStore) Deliverables() DeliverableRepository { return s.deliverables }
func (s *sqlStore) Staff() StaffRepository              { return s.staff }

// conn pairs an executor with the dialect its statements are built for.
type conn struct {
	db      dialect.ExecQuerier
	dialect string
}

func (c conn) builder() *entsql.DialectBuilder {
	return entsql.Dialect(c.dialect)
}

func (c conn) exec(ctx context.Context, q entsql.Querier) error {
	query, args := q.Query()
	return c.db.Exec(ctx, query, args, nil)
}

// query runs q and hands every row to scan. Rows are closed before returning
// so single-connection SQLite can run the next statement.
func (c conn) query(ctx context.Context, q entsql.Querier, scan func(*entsql.Rows) error) error {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := c.db.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count reports the row count of table; dbhealth uses it.
func Count(ctx context.Context, drv dialect.Driver, table string) (int, error) {
	c := conn{db: drv, dialect: drv.Dialect()}
	var n int
	q := c.builder().Select(entsql.Count("*")).From(entsql.Table(table))
	err := c.query(ctx, q, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	return n, err
}
