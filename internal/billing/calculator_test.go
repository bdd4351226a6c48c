package billing

import (
	"testing"
	"time"

	"invoicehub/internal/models"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func line(price, quantity float64, tax *float64) *models.InvoiceLine {
	return &models.InvoiceLine{Price: price, Quantity: quantity, Tax: tax}
}

func TestLineTotalKeepsFloatDrift(t *testing.T) {
	l := line(508.8, 1.4, f64(33.3333))

	// No currency rounding at calculation time: the raw float is kept.
	assert.Equal(t, 712.3199999999999, l.Total())
	assert.InDelta(t, 237.43976256, l.TaxAmount(), 1e-8)
}

func TestAmountTaxExclusive(t *testing.T) {
	lines := []*models.InvoiceLine{
		line(1250, 3, f64(0.01)),
		line(150, 1, f64(11.53)),
	}
	cfg := Config{DiscountAfterTax: false, TaxExclusive: true}

	assert.InDelta(t, 3900.0, Subtotal(lines, 0, cfg), 1e-9)
	assert.InDelta(t, 17.67, TaxTotal(lines, 0, cfg), 1e-9)
	assert.InDelta(t, 3917.67, Amount(lines, 0, cfg), 1e-9)
}

func TestAmountTaxInclusive(t *testing.T) {
	lines := []*models.InvoiceLine{
		line(100, 2, f64(10)),
	}
	cfg := Config{TaxExclusive: false}

	// Tax is informational only: the line total already includes it.
	assert.InDelta(t, 200.0, Amount(lines, 0, cfg), 1e-9)
	assert.InDelta(t, 20.0, TaxTotal(lines, 0, cfg), 1e-9)
}

func TestDiscountBeforeTax(t *testing.T) {
	lines := []*models.InvoiceLine{
		line(100, 1, f64(10)),
		line(300, 1, nil),
	}
	cfg := Config{DiscountAfterTax: false, TaxExclusive: true}

	// Per-line discount applied before aggregation, tax scaled by the
	// discount rate.
	assert.InDelta(t, 360.0, Subtotal(lines, 10, cfg), 1e-9)
	assert.InDelta(t, 9.0, TaxTotal(lines, 10, cfg), 1e-9)
	assert.InDelta(t, 40.0, DiscountAmount(lines, 10, cfg), 1e-9)
	assert.InDelta(t, 369.0, Amount(lines, 10, cfg), 1e-9)
}

func TestDiscountAfterTax(t *testing.T) {
	lines := []*models.InvoiceLine{
		line(100, 1, f64(10)),
		line(300, 1, nil),
	}
	cfg := Config{DiscountAfterTax: true, TaxExclusive: true}

	assert.InDelta(t, 400.0, Subtotal(lines, 10, cfg), 1e-9)
	assert.InDelta(t, 10.0, TaxTotal(lines, 10, cfg), 1e-9)
	// 10% of the tax-inclusive total (410).
	assert.InDelta(t, 41.0, DiscountAmount(lines, 10, cfg), 1e-9)
	assert.InDelta(t, 369.0, Amount(lines, 10, cfg), 1e-9)
}

func TestTaxGroups(t *testing.T) {
	lines := []*models.InvoiceLine{
		line(100, 1, f64(20)),
		line(50, 2, f64(10)),
		line(200, 1, f64(20)),
		line(10, 1, nil),
		line(10, 1, f64(0)),
	}
	groups := TaxGroups(lines, 0, Config{})

	assert.Len(t, groups, 2)
	assert.Equal(t, 10.0, groups[0].Rate)
	assert.InDelta(t, 10.0, groups[0].Amount, 1e-9)
	assert.Equal(t, 20.0, groups[1].Rate)
	assert.InDelta(t, 60.0, groups[1].Amount, 1e-9)
}

func TestRecomputePartialPayment(t *testing.T) {
	inv := &models.Invoice{
		Lines: []*models.InvoiceLine{line(100, 1, nil)},
		Payments: []*models.InvoicePayment{
			{Amount: 40, PaymentDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	res := Recompute(inv, Config{})

	assert.Equal(t, 100.0, res.Amount)
	assert.Equal(t, 40.0, res.Balance)
	assert.Equal(t, models.StatusSent, res.Status)
	assert.Nil(t, res.PaidDate)
}

func TestRecomputeFullPayment(t *testing.T) {
	first := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	inv := &models.Invoice{
		Lines: []*models.InvoiceLine{line(100, 1, nil)},
		Payments: []*models.InvoicePayment{
			{Amount: 60, PaymentDate: first},
			{Amount: 40, PaymentDate: last},
		},
	}
	res := Recompute(inv, Config{})

	assert.Equal(t, models.StatusPaid, res.Status)
	assert.Equal(t, 100.0, res.Balance)
	if assert.NotNil(t, res.PaidDate) {
		assert.Equal(t, last, *res.PaidDate)
	}
}

func TestRecomputeBalanceCappedAtAmount(t *testing.T) {
	inv := &models.Invoice{
		Lines: []*models.InvoiceLine{line(100, 1, nil)},
		Payments: []*models.InvoicePayment{
			{Amount: 150, PaymentDate: time.Now()},
		},
	}
	res := Recompute(inv, Config{})

	assert.Equal(t, 100.0, res.Balance)
	assert.LessOrEqual(t, res.Balance, res.Amount)
	assert.Equal(t, models.StatusPaid, res.Status)
}

func TestRecomputeNilDiscountCountsAsZero(t *testing.T) {
	inv := &models.Invoice{
		Discount: nil,
		Lines:    []*models.InvoiceLine{line(200, 1, nil)},
	}
	res := Recompute(inv, Config{})
	assert.Equal(t, 200.0, res.Amount)
}

func TestApplyWritesResultBack(t *testing.T) {
	inv := &models.Invoice{
		Lines:    []*models.InvoiceLine{line(100, 1, nil)},
		Payments: []*models.InvoicePayment{{Amount: 100, PaymentDate: time.Now()}},
	}
	Recompute(inv, Config{}).Apply(inv)

	assert.Equal(t, models.StatusPaid, inv.Status)
	assert.Equal(t, inv.Amount, inv.Balance)
	assert.NotNil(t, inv.PaidDate)
}

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		amount  float64
		balance float64
		wantErr bool
	}{
		{"fully paid but marked sent", models.StatusSent, 100, 100, true},
		{"marked paid while money owed", models.StatusPaid, 100, 40, true},
		{"consistent sent", models.StatusSent, 100, 40, false},
		{"consistent paid", models.StatusPaid, 100, 100, false},
		{"zero amount draft", models.StatusDraft, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &models.Invoice{Status: tt.status, Amount: tt.amount, Balance: tt.balance}
			err := ValidateStatus(inv)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
