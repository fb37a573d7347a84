package checkout

import (
	"testing"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestSummarize_SingleLine(t *testing.T) {
	lines := []Line{{ProductID: uuid.New(), Name: "LCD Redmi 9", Quantity: 2, BuyPrice: d(10000), SalePrice: d(15000)}}

	s := Summarize(lines, decimal.Zero)

	assert.True(t, s.Subtotal.Equal(d(30000)))
	assert.True(t, s.Total.Equal(d(30000)))
	assert.True(t, s.Cost.Equal(d(20000)))
	assert.True(t, s.Profit.Equal(d(10000)))
}

func TestSummarize_AdditiveOverLines(t *testing.T) {
	a := Line{ProductID: uuid.New(), Quantity: 3, BuyPrice: d(2500), SalePrice: d(4000)}
	b := Line{ProductID: uuid.New(), Quantity: 1, BuyPrice: d(70000), SalePrice: d(95000)}
	discount := d(5000)

	both := Summarize([]Line{a, b}, discount)
	onlyA := Summarize([]Line{a}, decimal.Zero)
	onlyB := Summarize([]Line{b}, decimal.Zero)

	assert.True(t, both.Subtotal.Equal(onlyA.Subtotal.Add(onlyB.Subtotal)))
	assert.True(t, both.Cost.Equal(onlyA.Cost.Add(onlyB.Cost)))
	assert.True(t, both.Total.Equal(both.Subtotal.Sub(discount)))
	assert.True(t, both.Profit.Equal(both.Total.Sub(both.Cost)))
}

func TestSummarize_DiscountBeyondSubtotalGoesNegative(t *testing.T) {
	s := Summarize([]Line{{ProductID: uuid.New(), Quantity: 1, SalePrice: d(1000)}}, d(1500))
	assert.True(t, s.Total.Equal(d(-500)))

	err := ValidateTender(MethodCash, s, d(0), false)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestEvaluatePayment(t *testing.T) {
	tests := []struct {
		name          string
		total, paid   int64
		change, remai int64
	}{
		{"overpaid returns change", 30000, 50000, 20000, 0},
		{"underpaid leaves balance", 30000, 20000, 0, 10000},
		{"exact", 30000, 30000, 0, 0},
		{"nothing paid", 30000, 0, 0, 30000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := EvaluatePayment(d(tt.total), d(tt.paid))
			assert.True(t, p.Change.Equal(d(tt.change)), "change=%s", p.Change)
			assert.True(t, p.Remaining.Equal(d(tt.remai)), "remaining=%s", p.Remaining)
		})
	}
}

func TestValidateTender(t *testing.T) {
	s := Summary{Subtotal: d(30000), Discount: decimal.Zero, Total: d(30000)}

	assert.NoError(t, ValidateTender(MethodCash, s, d(30000), false))
	assert.Error(t, ValidateTender(MethodCash, s, d(29999), true))
	assert.NoError(t, ValidateTender(MethodInstallment, s, d(20000), true))
	assert.Error(t, ValidateTender(MethodInstallment, s, d(20000), false))
	assert.NoError(t, ValidateTender(MethodInstallment, s, d(30000), false))
	assert.Error(t, ValidateTender(Method("card"), s, d(30000), false))
	assert.Error(t, ValidateTender(MethodCash, s, d(-1), false))

	// a sub-cent balance would be rounded away by the column
	err := ValidateTender(MethodInstallment, s, decimal.RequireFromString("29999.999"), true)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	withDiscount := Summary{Subtotal: d(30000), Discount: decimal.RequireFromString("0.005"), Total: decimal.RequireFromString("29999.995")}
	assert.Error(t, ValidateTender(MethodCash, withDiscount, d(30000), false))
	assert.NoError(t, ValidateTender(MethodCash, s, decimal.RequireFromString("30000.50"), false))
}

func TestCheckScale(t *testing.T) {
	assert.NoError(t, CheckScale("amount", decimal.RequireFromString("10.25")))
	assert.NoError(t, CheckScale("amount", decimal.RequireFromString("10.250")))
	assert.Error(t, CheckScale("amount", decimal.RequireFromString("10.255")))
}

func TestPriceFor(t *testing.T) {
	retail, reseller := d(15000), d(13000)

	assert.True(t, PriceFor(retail, reseller, decimal.Zero, TierRetail).Equal(retail))
	assert.True(t, PriceFor(retail, reseller, decimal.Zero, TierReseller).Equal(reseller))
	// member price not configured falls back to retail
	assert.True(t, PriceFor(retail, reseller, decimal.Zero, TierMember).Equal(retail))
	assert.Equal(t, TierRetail, ParseTier(""))
	assert.Equal(t, TierMember, ParseTier("member"))
}

func TestCart_AddMergesSameProduct(t *testing.T) {
	c := NewCart()
	id := uuid.New()
	line := Line{ProductID: id, Name: "Tempered glass", Quantity: 1, SalePrice: d(25000)}

	require.NoError(t, c.Add(line, 3))
	require.NoError(t, c.Add(line, 3))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCart_AddRejectsBeyondStock(t *testing.T) {
	c := NewCart()
	id := uuid.New()
	line := Line{ProductID: id, Name: "Battery BN46", Quantity: 2}

	require.NoError(t, c.Add(line, 3))
	err := c.Add(line, 3)
	assert.ErrorContains(t, err, "insufficient stock")
	assert.Equal(t, 2, c.Lines()[0].Quantity, "rejected add must not change the line")

	assert.Error(t, NewCart().Add(Line{ProductID: uuid.New(), Quantity: 5}, 4))
	assert.Error(t, NewCart().Add(Line{ProductID: uuid.New(), Quantity: 0}, 4))
}

func TestCart_ServiceFeeLineIsNotMerged(t *testing.T) {
	c := NewCart()
	fee := Line{Name: "Service fee", Quantity: 1, SalePrice: d(50000)}
	require.NoError(t, c.Add(fee, 0))
	require.NoError(t, c.Add(fee, 0))
	assert.Equal(t, 2, c.Len())
}

func TestCart_SetQuantityAndRemove(t *testing.T) {
	c := NewCart()
	a, b := uuid.New(), uuid.New()
	require.NoError(t, c.Add(Line{ProductID: a, Quantity: 1}, 10))
	require.NoError(t, c.Add(Line{ProductID: b, Quantity: 1}, 10))

	require.NoError(t, c.SetQuantity(b, 4, 10))
	assert.Error(t, c.SetQuantity(b, 11, 10))

	c.Remove(a)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, b, lines[0].ProductID)
	assert.Equal(t, 4, lines[0].Quantity)

	// index stays consistent after removal
	require.NoError(t, c.Add(Line{ProductID: b, Quantity: 1}, 10))
	assert.Equal(t, 5, c.Lines()[0].Quantity)
}
