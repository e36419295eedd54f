package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository/repotest"
)

func money(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func sample() []entity.Couple {
	return []entity.Couple{
		{CoupleName: "Amanda & Justin Kong", WeddingDate: "2026-09-12", Status: constants.StatusBooked, LeadSource: "Instagram", ContractTotal: money(3955), ExtrasTotal: money(450)},
		{CoupleName: "Priya & Sam", WeddingDate: "2027-01-09", Status: constants.StatusProspect, LeadSource: "instagram"},
		{CoupleName: "Lena & Marco Rossi", WeddingDate: "2026-07-04", Status: constants.StatusCompleted, LeadSource: "referral", ContractTotal: money(2800)},
		{CoupleName: "Grace & Tom", Status: constants.StatusCancelled, LeadSource: "referral", ContractTotal: money(3000)},
		{CoupleName: "Nina & Omar", WeddingDate: "2026-10-03", Status: constants.StatusProspect},
	}
}

func TestLeadSources(t *testing.T) {
	rows := LeadSources(sample())
	require.Len(t, rows, 3)

	assert.Equal(t, "Instagram", rows[0].Source)
	assert.Equal(t, 2, rows[0].Leads)
	assert.Equal(t, 1, rows[0].Booked)
	assert.InDelta(t, 50.0, rows[0].Conversion, 0.001)
	assert.True(t, rows[0].BookedRevenue.Equal(decimal.NewFromInt(4405)))

	assert.Equal(t, "referral", rows[1].Source)
	assert.Equal(t, 2, rows[1].Leads)
	assert.Equal(t, 1, rows[1].Booked)
	assert.True(t, rows[1].AverageBooking.Equal(decimal.NewFromInt(2800)))

	assert.Equal(t, "unknown", rows[2].Source)
	assert.True(t, rows[2].AverageBooking.IsZero())
}

func TestExportCouplesXLSX(t *testing.T) {
	store := repotest.New()
	store.Seed(sample()...)
	svc := NewService(store.Couples(), nil)

	data, err := svc.ExportCouplesXLSX(context.Background(), Window{From: "2026-08-01", To: "2026-12-31"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(couplesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Couple", rows[0][0])
	assert.Equal(t, "Amanda & Justin Kong", rows[1][0])
	assert.Equal(t, "3955", rows[1][6])
	assert.Equal(t, "Nina & Omar", rows[2][0])

	leads, err := f.GetRows(leadSourcesSheet)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, []string{"Lead Source", "Leads", "Booked", "Conversion %", "Booked Revenue", "Average Booking"}, leads[0])
}

func TestWindow(t *testing.T) {
	assert.True(t, Window{}.contains(""))
	assert.False(t, Window{From: "2026-01-01"}.contains(""))
	assert.True(t, Window{To: "2026-09-12"}.contains("2026-09-12"))
	assert.False(t, Window{From: "2026-09-13"}.contains("2026-09-12"))
}
