package pos

import "github.com/pkg/errors"

// Business rule violations returned by the cashier workflow. Handlers map them to HTTP status
// codes with errors.Is; the wrapped message carries the detail.
var (
	ErrSessionAlreadyOpen   = errors.New("cashier already has an open session")
	ErrNoOpenSession        = errors.New("no open cashier session")
	ErrEmptyCart            = errors.New("at least one item is required")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrRateUnavailable      = errors.New("rate is not available")
	ErrDiscountUnavailable  = errors.New("discount is not available")
	ErrVIPRequired          = errors.New("discount requires a valid VIP card")
	ErrInvalidVIP           = errors.New("VIP card cannot be used")
	ErrPromoterUnavailable  = errors.New("promoter is not available")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrInsufficientPayment  = errors.New("amount paid is less than the amount due")
	ErrNegativeAmount       = errors.New("amount must not be negative")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrTransactionVoided    = errors.New("transaction is already voided")
	ErrSessionClosed        = errors.New("transaction belongs to a closed session")
	ErrNotSessionOwner      = errors.New("transaction belongs to another cashier's session")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrTicketUsed           = errors.New("ticket has already been used")
	ErrTicketVoid           = errors.New("ticket has been voided")
)
