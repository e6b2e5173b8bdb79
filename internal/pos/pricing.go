package pos

import (
	"go-ticket-pos/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money rounds to cents, half away from zero.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Line is the priced result of one cart item.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Gross     decimal.Decimal
	Discount  decimal.Decimal
	Net       decimal.Decimal
}

// PriceLine prices quantity units at unitPrice and applies the optional discount.
// A percentage discount takes value% of the gross; a fixed discount takes value per unit.
// The discount never exceeds the gross.
func PriceLine(unitPrice decimal.Decimal, quantity int, discount *models.Discount) (Line, error) {
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return Line{}, ErrNegativeAmount
	}

	gross := Money(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
	off := decimal.Zero

	if discount != nil {
		switch discount.Type {
		case models.DiscountPercentage:
			off = Money(gross.Mul(discount.Value).Div(hundred))
		case models.DiscountFixed:
			off = Money(discount.Value.Mul(decimal.NewFromInt(int64(quantity))))
		default:
			return Line{}, errors.Wrapf(ErrDiscountUnavailable, "unknown discount type %q", discount.Type)
		}
		if off.IsNegative() {
			off = decimal.Zero
		}
		if off.GreaterThan(gross) {
			off = gross
		}
	}

	return Line{
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Gross:     gross,
		Discount:  off,
		Net:       gross.Sub(off),
	}, nil
}

// Totals sums priced lines.
type Totals struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Net      decimal.Decimal
	Units    int
}

// SumLines adds up the lines of a sale.
func SumLines(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Gross = t.Gross.Add(l.Gross)
		t.Discount = t.Discount.Add(l.Discount)
		t.Net = t.Net.Add(l.Net)
		t.Units += l.Quantity
	}
	return t
}

// Settle checks the payment against the amount due and returns what is recorded as paid
// and the change to hand back. Card payments are always charged the exact amount.
func Settle(method string, due, paid decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	switch method {
	case models.PaymentCard:
		return due, decimal.Zero, nil
	case models.PaymentCash:
		paid = Money(paid)
		if paid.IsNegative() {
			return decimal.Zero, decimal.Zero, ErrNegativeAmount
		}
		if paid.LessThan(due) {
			return decimal.Zero, decimal.Zero, errors.Wrapf(ErrInsufficientPayment, "due %s, paid %s", due.StringFixed(2), paid.StringFixed(2))
		}
		return paid, paid.Sub(due), nil
	default:
		return decimal.Zero, decimal.Zero, errors.Wrapf(ErrInvalidPaymentMethod, "%q", method)
	}
}

// Reconciliation is the cash count of a closing session.
type Reconciliation struct {
	CashSales     decimal.Decimal
	CardSales     decimal.Decimal
	TotalSales    decimal.Decimal
	TotalDiscount decimal.Decimal
	ExpectedCash  decimal.Decimal
	Variance      decimal.Decimal
	Transactions  int
	Tickets       int
}

// Reconcile computes the closing figures from the session's completed transactions.
// Expected cash is the opening float plus cash sales; variance is counted minus expected.
func Reconcile(cashOnHand, closingCash decimal.Decimal, completed []models.CashierTransaction) Reconciliation {
	var r Reconciliation
	for _, t := range completed {
		if t.Status != models.TransactionCompleted {
			continue
		}
		r.Transactions++
		r.TotalDiscount = r.TotalDiscount.Add(t.DiscountAmount)
		switch t.PaymentMethod {
		case models.PaymentCash:
			r.CashSales = r.CashSales.Add(t.NetAmount)
		default:
			r.CardSales = r.CardSales.Add(t.NetAmount)
		}
		for _, d := range t.Details {
			r.Tickets += d.Quantity
		}
	}
	r.TotalSales = r.CashSales.Add(r.CardSales)
	r.ExpectedCash = cashOnHand.Add(r.CashSales)
	r.Variance = closingCash.Sub(r.ExpectedCash)
	return r
}
