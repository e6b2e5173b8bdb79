package printing

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/models"
)

// DefaultWidth is the character width of an 80mm receipt in font A.
const DefaultWidth = 42

// Ticket is one admission slip printed after the receipt.
type Ticket struct {
	Code  string `json:"code" binding:"required"`
	Label string `json:"label"`
}

// Job is what the server sends the printer agent: receipt lines, then one slip per ticket.
type Job struct {
	Lines   []string `json:"lines" binding:"required,min=1"`
	Tickets []Ticket `json:"tickets" binding:"dive"`
}

// RenderReceipt lays out a transaction for a receipt of the given width using the tenant's
// header, company and footer settings.
func RenderReceipt(settings map[string]string, t *models.CashierTransaction, width int) []string {
	if width <= 0 {
		width = DefaultWidth
	}
	rule := strings.Repeat("-", width)
	var out []string

	for _, key := range []string{database.SettingCompanyName, database.SettingCompanyAddress} {
		if v := strings.TrimSpace(settings[key]); v != "" {
			out = append(out, center(v, width))
		}
	}
	if tin := strings.TrimSpace(settings[database.SettingTIN]); tin != "" {
		out = append(out, center("TIN "+tin, width))
	}
	if h := strings.TrimSpace(settings[database.SettingReceiptHeader]); h != "" {
		out = append(out, center(h, width))
	}
	out = append(out, rule)

	out = append(out, pair("Ref", t.ReferenceNo, width))
	out = append(out, pair("Date", t.CreatedAt.Format("2006-01-02 15:04"), width))
	if t.User != nil {
		out = append(out, pair("Cashier", t.User.Username, width))
	}
	if t.Promoter != nil {
		out = append(out, pair("Promoter", t.Promoter.Name, width))
	}
	if t.VIP != nil {
		out = append(out, pair("VIP", t.VIP.CardNumber, width))
	}
	out = append(out, rule)

	for _, d := range t.Details {
		out = append(out, fit(d.RateName, width))
		out = append(out, pair(fmt.Sprintf("  %d x %s", d.Quantity, d.UnitPrice.StringFixed(2)), d.GrossAmount.StringFixed(2), width))
		if d.DiscountAmount.IsPositive() {
			out = append(out, pair("  Less "+d.DiscountName, "-"+d.DiscountAmount.StringFixed(2), width))
		}
	}
	out = append(out, rule)

	out = append(out, pair("Subtotal", t.GrossAmount.StringFixed(2), width))
	out = append(out, pair("Discount", "-"+t.DiscountAmount.StringFixed(2), width))
	out = append(out, pair("TOTAL", t.NetAmount.StringFixed(2), width))
	out = append(out, pair("Paid ("+strings.ToUpper(t.PaymentMethod)+")", t.AmountPaid.StringFixed(2), width))
	out = append(out, pair("Change", t.ChangeDue.StringFixed(2), width))

	if t.Status == models.TransactionVoided {
		out = append(out, rule, center("*** VOIDED ***", width))
	}

	if f := strings.TrimSpace(settings[database.SettingReceiptFooter]); f != "" {
		out = append(out, rule, center(f, width))
	}
	return out
}

// TicketsOf returns the printable slips of a transaction, skipping voided tickets.
func TicketsOf(t *models.CashierTransaction) []Ticket {
	out := make([]Ticket, 0, len(t.Tickets))
	for _, tk := range t.Tickets {
		if tk.Status == models.TicketVoid {
			continue
		}
		out = append(out, Ticket{Code: tk.Code, Label: tk.RateName})
	}
	return out
}

// Encode turns a job into printer bytes: the receipt, then each ticket with its QR, each cut.
func Encode(job Job) []byte {
	b := NewBuilder().Align(AlignLeft)
	for _, l := range job.Lines {
		b.Line(l)
	}
	b.Feed(3).Cut()

	for _, t := range job.Tickets {
		b.Align(AlignCenter).Bold(true).Line(t.Label).Bold(false).
			QR(t.Code, 6).
			Line(t.Code).
			Feed(3).Cut()
	}
	return b.Bytes()
}

func center(s string, width int) string {
	s = fit(s, width)
	pad := (width - utf8.RuneCountInString(s)) / 2
	return strings.Repeat(" ", pad) + s
}

// pair puts left and right on one line, trimming left when they do not fit.
func pair(left, right string, width int) string {
	space := width - utf8.RuneCountInString(right) - 1
	if space < 1 {
		return fit(right, width)
	}
	left = fit(left, space)
	return left + strings.Repeat(" ", width-utf8.RuneCountInString(left)-utf8.RuneCountInString(right)) + right
}

func fit(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}
