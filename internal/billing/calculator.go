// Package billing holds the invoice calculation core: amount, tax, discount
// and balance derivation, status recomputation, number macro expansion and
// line generation from time entries. Everything here is pure computation over
// already-loaded records; persistence stays in the services.
package billing

import (
	"sort"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/models"
)

// Config carries the two billing policies that change the order of the
// subtotal/tax/discount arithmetic. It is passed in explicitly instead of
// being read from global settings.
type Config struct {
	// DiscountAfterTax applies the invoice discount to the tax-inclusive
	// total instead of discounting each line before aggregation.
	DiscountAfterTax bool
	// TaxExclusive indicates line prices do not include tax, so the tax
	// total is added on top of the subtotal.
	TaxExclusive bool
}

// Result is the outcome of a full invoice recomputation.
type Result struct {
	Amount   float64
	Balance  float64
	Status   int
	PaidDate *time.Time
}

// discountRate is the factor applied to per-line tax amounts. With
// discount-after-tax the discount has not been taken yet, so the rate is 1.
func discountRate(discount float64, cfg Config) float64 {
	if cfg.DiscountAfterTax {
		return 1
	}
	return 1 - discount/100
}

// Subtotal sums the line totals. Without discount-after-tax the invoice
// discount is applied per line before aggregation.
func Subtotal(lines []*models.InvoiceLine, discount float64, cfg Config) float64 {
	sum := 0.0
	for _, l := range lines {
		if cfg.DiscountAfterTax {
			sum += l.Total()
		} else {
			sum += l.Total() - l.Total()*(discount/100)
		}
	}
	return sum
}

// TaxTotal sums the per-line tax amounts scaled by the discount rate.
// No currency rounding happens here; formatting is display-time only.
func TaxTotal(lines []*models.InvoiceLine, discount float64, cfg Config) float64 {
	rate := discountRate(discount, cfg)
	sum := 0.0
	for _, l := range lines {
		sum += l.TaxAmount() * rate
	}
	return sum
}

// DiscountAmount is the absolute discount. After tax it is a share of the
// tax-inclusive total, otherwise the sum of the per-line discounts.
func DiscountAmount(lines []*models.InvoiceLine, discount float64, cfg Config) float64 {
	if cfg.DiscountAfterTax {
		sum := 0.0
		for _, l := range lines {
			sum += l.Total() + l.TaxAmount()
		}
		return sum * (discount / 100)
	}
	sum := 0.0
	for _, l := range lines {
		sum += l.Total() * (discount / 100)
	}
	return sum
}

// Amount derives the invoice amount from its lines and discount.
func Amount(lines []*models.InvoiceLine, discount float64, cfg Config) float64 {
	amount := Subtotal(lines, discount, cfg)
	if cfg.TaxExclusive {
		amount += TaxTotal(lines, discount, cfg)
	}
	if cfg.DiscountAfterTax {
		amount -= DiscountAmount(lines, discount, cfg)
	}
	return amount
}

// TaxGroup is the accumulated tax for one rate, for display grouping.
type TaxGroup struct {
	Rate   float64
	Amount float64
}

// TaxGroups groups the invoice's taxed lines by rate, ordered by rate.
func TaxGroups(lines []*models.InvoiceLine, discount float64, cfg Config) []TaxGroup {
	rate := discountRate(discount, cfg)
	sums := map[float64]float64{}
	for _, l := range lines {
		if l.TaxValue() > 0 {
			sums[l.TaxValue()] += l.TaxAmount() * rate
		}
	}
	groups := make([]TaxGroup, 0, len(sums))
	for r, sum := range sums {
		groups = append(groups, TaxGroup{Rate: r, Amount: sum})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Rate < groups[j].Rate })
	return groups
}

// Recompute derives amount, balance, status and paid date from the invoice's
// loaded lines and payments. The balance never exceeds the amount; the status
// flips to Paid exactly when the balance covers the amount, with the paid
// date set to the latest payment date, and reverts to Sent otherwise.
func Recompute(inv *models.Invoice, cfg Config) Result {
	res := Result{}
	res.Amount = Amount(inv.Lines, inv.DiscountValue(), cfg)

	paymentsSum := 0.0
	var lastPayment *time.Time
	for _, p := range inv.Payments {
		paymentsSum += p.Amount
		if lastPayment == nil || p.PaymentDate.After(*lastPayment) {
			d := p.PaymentDate
			lastPayment = &d
		}
	}
	if paymentsSum > res.Amount {
		res.Balance = res.Amount
	} else {
		res.Balance = paymentsSum
	}

	if res.Balance >= res.Amount {
		res.Status = models.StatusPaid
		res.PaidDate = lastPayment
	} else {
		res.Status = models.StatusSent
		res.PaidDate = nil
	}
	return res
}

// Apply writes a recomputation result back onto the invoice.
func (r Result) Apply(inv *models.Invoice) {
	inv.Amount = r.Amount
	inv.Balance = r.Balance
	inv.Status = r.Status
	inv.PaidDate = r.PaidDate
}

// ValidateStatus rejects an invoice whose status contradicts its balance:
// fully paid but not marked Paid, or marked Paid while money is still owed.
func ValidateStatus(inv *models.Invoice) error {
	remaining := inv.RemainingBalance()
	if (inv.Status != models.StatusPaid && remaining == 0 && inv.Balance > 0) ||
		(inv.Status == models.StatusPaid && remaining > 0 && inv.Amount > 0) {
		return common.NewValidationError("status", "status cannot be changed: it is inconsistent with the invoice balance")
	}
	return nil
}
