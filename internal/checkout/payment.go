package checkout

import (
	"github.com/cellkom/poscellkom-sub000/internal/apierror"

	"github.com/shopspring/decimal"
)

// Method is how the customer settles a transaction.
type Method string

const (
	MethodCash        Method = "cash"
	MethodInstallment Method = "installment"
)

// Payment is the outcome of tendering an amount against a total.
type Payment struct {
	Paid      decimal.Decimal `json:"paid"`
	Change    decimal.Decimal `json:"change"`
	Remaining decimal.Decimal `json:"remaining"`
}

// EvaluatePayment returns change = max(0, paid-total) and
// remaining = max(0, total-paid).
func EvaluatePayment(total, paid decimal.Decimal) Payment {
	p := Payment{Paid: paid, Change: decimal.Zero, Remaining: decimal.Zero}
	switch {
	case paid.GreaterThan(total):
		p.Change = paid.Sub(total)
	case paid.LessThan(total):
		p.Remaining = total.Sub(paid)
	}
	return p
}

// Scale is the number of decimal places money columns store.
const Scale = 2

// CheckScale rejects amounts with more decimal places than the columns keep,
// which would otherwise be rounded silently on write.
func CheckScale(field string, v decimal.Decimal) error {
	if !v.Equal(v.Round(Scale)) {
		return apierror.Validation(field + " cannot have more than 2 decimal places")
	}
	return nil
}

// ValidateTender enforces the payment policy before anything is written:
// cash must cover the total, and an open balance needs a known customer to
// carry it as an installment.
func ValidateTender(method Method, s Summary, paid decimal.Decimal, hasCustomer bool) error {
	if s.Discount.IsNegative() {
		return apierror.Validation("discount cannot be negative")
	}
	if s.Total.IsNegative() {
		return apierror.Validation("discount exceeds subtotal")
	}
	if paid.IsNegative() {
		return apierror.Validation("amount paid cannot be negative")
	}
	if err := CheckScale("discount", s.Discount); err != nil {
		return err
	}
	if err := CheckScale("paid", paid); err != nil {
		return err
	}
	switch method {
	case MethodCash:
		if paid.LessThan(s.Total) {
			return apierror.Validation("cash payment is less than the total")
		}
	case MethodInstallment:
		if paid.LessThan(s.Total) && !hasCustomer {
			return apierror.Validation("installment requires a registered customer")
		}
	default:
		return apierror.Validation("unknown payment method " + string(method))
	}
	return nil
}
