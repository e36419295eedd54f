package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository"
)

const (
	couplesSheet     = "Couples"
	leadSourcesSheet = "Lead Sources"
)

// Service produces XLSX bytes for the studio's reports.
type Service struct {
	couples repository.CoupleRepository
	logger  *slog.Logger
}

func NewService(couples repository.CoupleRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{couples: couples, logger: logger}
}

// Window limits the export by wedding date, inclusive. Empty bounds are open.
// Couples without a wedding date are only included when both bounds are empty.
type Window struct {
	From string
	To   string
}

func (w Window) contains(date string) bool {
	if w.From == "" && w.To == "" {
		return true
	}
	if date == "" {
		return false
	}
	return (w.From == "" || date >= w.From) && (w.To == "" || date <= w.To)
}

// LeadSourceRow is one line of the lead source ROI sheet.
type LeadSourceRow struct {
	Source         string
	Leads          int
	Booked         int
	Conversion     float64 // percent
	BookedRevenue  decimal.Decimal
	AverageBooking decimal.Decimal
}

// LeadSources aggregates couples by lead source. Booked and completed
// couples count as bookings; cancelled ones only count as leads.
func LeadSources(couples []entity.Couple) []LeadSourceRow {
	bySource := map[string]*LeadSourceRow{}
	for _, c := range couples {
		src := strings.TrimSpace(c.LeadSource)
		if src == "" {
			src = "unknown"
		}
		key := strings.ToLower(src)
		row, ok := bySource[key]
		if !ok {
			row = &LeadSourceRow{Source: src}
			bySource[key] = row
		}
		row.Leads++
		if c.Status == constants.StatusBooked || c.Status == constants.StatusCompleted {
			row.Booked++
			row.BookedRevenue = row.BookedRevenue.Add(revenue(c))
		}
	}

	out := make([]LeadSourceRow, 0, len(bySource))
	for _, row := range bySource {
		if row.Leads > 0 {
			row.Conversion = float64(row.Booked) * 100 / float64(row.Leads)
		}
		if row.Booked > 0 {
			row.AverageBooking = row.BookedRevenue.Div(decimal.NewFromInt(int64(row.Booked))).Round(2)
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookedRevenue.Equal(out[j].BookedRevenue) {
			return out[i].BookedRevenue.GreaterThan(out[j].BookedRevenue)
		}
		return out[i].Source < out[j].Source
	})
	return out
}

func revenue(c entity.Couple) decimal.Decimal {
	total := decimal.Zero
	if c.ContractTotal.Valid {
		total = total.Add(c.ContractTotal.Decimal)
	}
	if c.ExtrasTotal.Valid {
		total = total.Add(c.ExtrasTotal.Decimal)
	}
	return total
}

// ExportCouplesXLSX returns a workbook with a Couples sheet and a Lead
// Sources sheet for the couples inside w.
func (s *Service) ExportCouplesXLSX(ctx context.Context, w Window) ([]byte, error) {
	start := time.Now()

	all, err := s.couples.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query couples: %w", err)
	}
	var couples []entity.Couple
	for _, c := range all {
		if w.contains(c.WeddingDate) {
			couples = append(couples, c)
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", couplesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(leadSourcesSheet); err != nil {
		return nil, err
	}

	writeRow(f, couplesSheet, 1, []any{
		"Couple", "Wedding Date", "Venue", "Package", "Status", "Lead Source",
		"Contract Total", "Extras Total", "Total Paid", "Balance Owing",
	})
	for i, c := range couples {
		venue := c.ReceptionVenue
		if venue == "" {
			venue = c.CeremonyLocation
		}
		writeRow(f, couplesSheet, i+2, []any{
			c.CoupleName, c.WeddingDate, venue, string(c.PackageType), string(c.Status), c.LeadSource,
			cellMoney(c.ContractTotal), cellMoney(c.ExtrasTotal), c.TotalPaid.InexactFloat64(), cellMoney(c.BalanceOwing),
		})
	}
	_ = f.SetColWidth(couplesSheet, "A", "A", 30) // couple
	_ = f.SetColWidth(couplesSheet, "B", "B", 14) // date
	_ = f.SetColWidth(couplesSheet, "C", "C", 28) // venue
	_ = f.SetColWidth(couplesSheet, "D", "F", 16)
	_ = f.SetColWidth(couplesSheet, "G", "J", 14) // money

	rows := LeadSources(couples)
	writeRow(f, leadSourcesSheet, 1, []any{"Lead Source", "Leads", "Booked", "Conversion %", "Booked Revenue", "Average Booking"})
	for i, r := range rows {
		writeRow(f, leadSourcesSheet, i+2, []any{
			r.Source, r.Leads, r.Booked, roundPct(r.Conversion), r.BookedRevenue.InexactFloat64(), r.AverageBooking.InexactFloat64(),
		})
	}
	_ = f.SetColWidth(leadSourcesSheet, "A", "A", 24)
	_ = f.SetColWidth(leadSourcesSheet, "B", "F", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"from", w.From,
		"to", w.To,
		"rows", len(couples),
		"lead_sources", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func cellMoney(d decimal.NullDecimal) any {
	if !d.Valid {
		return ""
	}
	return d.Decimal.InexactFloat64()
}

func roundPct(p float64) float64 {
	return decimal.NewFromFloat(p).Round(1).InexactFloat64()
}
