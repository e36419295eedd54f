package couples

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository/repotest"
)

func seeded() (*Service, *repotest.Store, entity.Couple) {
	store := repotest.New()
	c := entity.Couple{
		ID:            uuid.New(),
		CoupleName:    "Amanda & Justin Kong",
		WeddingDate:   "2026-09-12",
		ContractTotal: decimal.NewNullDecimal(decimal.NewFromInt(3955)),
		BalanceOwing:  decimal.NewNullDecimal(decimal.NewFromInt(3955)),
		Status:        constants.StatusBooked,
	}
	store.Seed(c, entity.Couple{CoupleName: "Priya & Sam", Status: constants.StatusProspect, WeddingDate: "2027-01-09"})
	return NewService(store, nil), store, c
}

func TestRecordPayment_UpdatesTotals(t *testing.T) {
	svc, store, c := seeded()

	updated, p, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		CoupleID: c.ID.String(),
		Amount:   decimal.RequireFromString("500.004"),
		PaidOn:   "2025-11-02",
		Method:   " e-transfer ",
	})
	require.NoError(t, err)
	assert.Equal(t, "e-transfer", p.Method)
	assert.True(t, updated.TotalPaid.Equal(decimal.NewFromInt(500)))
	assert.True(t, updated.BalanceOwing.Decimal.Equal(decimal.NewFromInt(3455)))

	require.Len(t, store.AllPayments(), 1)
	assert.True(t, store.AllCouples()[0].BalanceOwing.Decimal.Equal(decimal.NewFromInt(3455)))
}

func TestRecordPayment_Validation(t *testing.T) {
	svc, _, c := seeded()
	ctx := context.Background()

	_, _, err := svc.RecordPayment(ctx, RecordPaymentRequest{CoupleID: "nope", Amount: decimal.NewFromInt(5)})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, _, err = svc.RecordPayment(ctx, RecordPaymentRequest{CoupleID: c.ID.String(), Amount: decimal.Zero})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, _, err = svc.RecordPayment(ctx, RecordPaymentRequest{CoupleID: c.ID.String(), Amount: decimal.NewFromInt(5), PaidOn: "11/02/2025"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, _, err = svc.RecordPayment(ctx, RecordPaymentRequest{CoupleID: uuid.NewString(), Amount: decimal.NewFromInt(5)})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestListCouples_Filters(t *testing.T) {
	svc, _, _ := seeded()
	ctx := context.Background()

	all, err := svc.ListCouples(ctx, ListCouplesRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	prospects, err := svc.ListCouples(ctx, ListCouplesRequest{Status: "prospect"})
	require.NoError(t, err)
	require.Len(t, prospects, 1)
	assert.Equal(t, "Priya & Sam", prospects[0].CoupleName)

	sameDay, err := svc.ListCouples(ctx, ListCouplesRequest{WeddingDate: "2026-09-12"})
	require.NoError(t, err)
	require.Len(t, sameDay, 1)

	_, err = svc.ListCouples(ctx, ListCouplesRequest{Status: "deleted"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGetCouple_Detail(t *testing.T) {
	svc, _, c := seeded()
	ctx := context.Background()

	_, err := svc.AddDeliverable(ctx, AddDeliverableRequest{CoupleID: c.ID.String(), Kind: "gallery", DueDate: "2026-11-12"})
	require.NoError(t, err)
	_, err = svc.AssignStaff(ctx, AssignStaffRequest{CoupleID: c.ID.String(), StaffName: "Rosa", Role: "Second Shooter"})
	require.NoError(t, err)

	d, err := svc.GetCouple(ctx, c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, c.ID, d.Couple.ID)
	require.Len(t, d.Deliverables, 1)
	assert.Equal(t, "pending", d.Deliverables[0].Status)
	require.Len(t, d.Staff, 1)
	assert.Equal(t, "second shooter", d.Staff[0].Role)

	require.NoError(t, svc.MarkDelivered(ctx, d.Deliverables[0].ID.String()))
	assert.Equal(t, codes.NotFound, status.Code(svc.MarkDelivered(ctx, uuid.NewString())))

	_, err = svc.GetCouple(ctx, uuid.NewString())
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestSetStatus(t *testing.T) {
	svc, store, c := seeded()
	require.NoError(t, svc.SetStatus(context.Background(), c.ID.String(), "completed"))
	assert.Equal(t, constants.StatusCompleted, store.AllCouples()[0].Status)

	err := svc.SetStatus(context.Background(), c.ID.String(), "archived")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
