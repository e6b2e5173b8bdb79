// Package reports writes the sales and closing reports as XLSX workbooks.
package reports

import (
	"fmt"

	"go-ticket-pos/internal/database"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// ContentType of the exported workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheetWriter struct {
	f      *excelize.File
	header int
	money  int
	err    error
}

func newWorkbook() (*sheetWriter, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create header style")
	}
	// 4 = "#,##0.00"
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, errors.Wrap(err, "create money style")
	}
	return &sheetWriter{f: f, header: header, money: money}, nil
}

// sheet creates (or renames the default sheet to) name and writes the header row.
func (w *sheetWriter) sheet(name string, first bool, headers ...interface{}) {
	if w.err != nil {
		return
	}
	if first {
		w.err = w.f.SetSheetName("Sheet1", name)
	} else {
		_, w.err = w.f.NewSheet(name)
	}
	if w.err != nil {
		return
	}
	w.row(name, 1, headers...)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	w.try(w.f.SetCellStyle(name, "A1", last, w.header))
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	w.try(w.f.SetColWidth(name, "A", lastCol, 18))
}

func (w *sheetWriter) row(sheet string, n int, values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(1, n)
	w.try(w.f.SetSheetRow(sheet, cell, &values))
}

// moneyCols formats the given 1-based columns of rows 2..lastRow as amounts.
func (w *sheetWriter) moneyCols(sheet string, lastRow int, cols ...int) {
	if w.err != nil || lastRow < 2 {
		return
	}
	for _, col := range cols {
		from, _ := excelize.CoordinatesToCellName(col, 2)
		to, _ := excelize.CoordinatesToCellName(col, lastRow)
		w.try(w.f.SetCellStyle(sheet, from, to, w.money))
	}
}

func (w *sheetWriter) try(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *sheetWriter) bytes() ([]byte, error) {
	defer w.f.Close()
	if w.err != nil {
		return nil, errors.Wrap(w.err, "build workbook")
	}
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "write workbook")
	}
	return buf.Bytes(), nil
}

// SalesWorkbook exports the sales report with Summary, By Rate, By Day and By Cashier sheets.
func SalesWorkbook(r *database.SalesReport) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	const summary = "Summary"
	w.sheet(summary, true, "Metric", "Value")
	rows := [][]interface{}{
		{"From", r.Filter.From},
		{"To", r.Filter.To},
		{"Transactions", r.Totals.Transactions},
		{"Tickets", r.Totals.Tickets},
		{"Gross", r.Totals.Gross.InexactFloat64()},
		{"Discount", r.Totals.Discount.InexactFloat64()},
		{"Net", r.Totals.Net.InexactFloat64()},
	}
	for i, row := range rows {
		w.row(summary, i+2, row...)
	}

	const byRate = "By Rate"
	w.sheet(byRate, false, "Rate", "Quantity", "Gross", "Discount", "Net")
	for i, s := range r.ByRate {
		w.row(byRate, i+2, s.RateName, s.Quantity, s.Gross.InexactFloat64(), s.Discount.InexactFloat64(), s.Net.InexactFloat64())
	}
	w.moneyCols(byRate, len(r.ByRate)+1, 3, 4, 5)

	const byDay = "By Day"
	w.sheet(byDay, false, "Business Date", "Transactions", "Net")
	for i, s := range r.ByDay {
		w.row(byDay, i+2, s.BusinessDate, s.Transactions, s.Net.InexactFloat64())
	}
	w.moneyCols(byDay, len(r.ByDay)+1, 3)

	const byCashier = "By Cashier"
	w.sheet(byCashier, false, "Cashier", "Transactions", "Net")
	for i, s := range r.ByCashier {
		w.row(byCashier, i+2, s.Username, s.Transactions, s.Net.InexactFloat64())
	}
	w.moneyCols(byCashier, len(r.ByCashier)+1, 3)

	return w.bytes()
}

// ClosingWorkbook exports closed sessions with their reconciliation and a totals row.
func ClosingWorkbook(r *database.ClosingReport) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	const name = "Closing"
	w.sheet(name, true, "Session", "Business Date", "Cashier", "Opened", "Closed",
		"Cash On Hand", "Cash Sales", "Card Sales", "Total Sales", "Discount",
		"Expected Cash", "Closing Cash", "Variance", "Transactions", "Tickets")

	for i, s := range r.Sessions {
		cashier := ""
		if s.User != nil {
			cashier = s.User.Username
		}
		closed := ""
		if s.ClosedAt != nil {
			closed = s.ClosedAt.Format("2006-01-02 15:04")
		}
		w.row(name, i+2, s.ID, s.BusinessDate, cashier, s.OpenedAt.Format("2006-01-02 15:04"), closed,
			s.CashOnHand.InexactFloat64(), s.CashSales.InexactFloat64(), s.CardSales.InexactFloat64(),
			s.TotalSales.InexactFloat64(), s.TotalDiscount.InexactFloat64(), s.ExpectedCash.InexactFloat64(),
			s.ClosingCash.InexactFloat64(), s.Variance.InexactFloat64(), s.TransactionCount, s.TicketCount)
	}

	last := len(r.Sessions) + 2
	t := r.Totals
	w.row(name, last, fmt.Sprintf("TOTAL (%d)", t.Sessions), "", "", "", "",
		t.CashOnHand.InexactFloat64(), "", "", t.TotalSales.InexactFloat64(), t.TotalDiscount.InexactFloat64(),
		t.ExpectedCash.InexactFloat64(), t.ClosingCash.InexactFloat64(), t.Variance.InexactFloat64())
	w.moneyCols(name, last, 6, 7, 8, 9, 10, 11, 12, 13)

	return w.bytes()
}
