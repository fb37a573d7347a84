// Package checkout holds the arithmetic behind a sale or service bill:
// tier pricing, cart line merging, totals, and payment evaluation.
// Nothing here touches the database.
package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier selects which product price applies to a customer.
type Tier string

const (
	TierRetail   Tier = "retail"
	TierReseller Tier = "reseller"
	TierMember   Tier = "member"
)

// ParseTier returns TierRetail for anything it does not recognise.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierReseller, TierMember:
		return Tier(s)
	}
	return TierRetail
}

// PriceFor picks the unit price for a tier. A tier price that is not set
// (zero) falls back to the retail price.
func PriceFor(retail, reseller, member decimal.Decimal, tier Tier) decimal.Decimal {
	switch tier {
	case TierReseller:
		if reseller.IsPositive() {
			return reseller
		}
	case TierMember:
		if member.IsPositive() {
			return member
		}
	}
	return retail
}

// Line is one cart or work-order row. ProductID is uuid.Nil for non-stock
// lines such as a repair service fee.
type Line struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
	BuyPrice  decimal.Decimal
	SalePrice decimal.Decimal
}

// Subtotal is SalePrice × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.SalePrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cost is BuyPrice × Quantity.
func (l Line) Cost() decimal.Decimal {
	return l.BuyPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Summary is the result of Summarize.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Cost     decimal.Decimal `json:"cost"`
	Profit   decimal.Decimal `json:"profit"`
}

// Summarize computes subtotal, total, cost basis and profit.
// A discount larger than the subtotal yields a negative total; callers that
// persist a transaction reject that through ValidateTender.
func Summarize(lines []Line, discount decimal.Decimal) Summary {
	subtotal := decimal.Zero
	cost := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
		cost = cost.Add(l.Cost())
	}
	total := subtotal.Sub(discount)
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
		Cost:     cost,
		Profit:   total.Sub(cost),
	}
}
