package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestLineSubtotal(t *testing.T) {
	assert.True(t, dec("50.00").Equal(LineSubtotal(2, dec("25.00"), decimal.Zero)))
	assert.True(t, dec("45.00").Equal(LineSubtotal(2, dec("25.00"), dec("5.00"))))
	assert.True(t, dec("33.34").Equal(LineSubtotal(2, dec("16.67"), decimal.Zero)))
}

func TestComputeTotalsWithTax(t *testing.T) {
	lines := []InvoiceLine{
		{Subtotal: dec("60.00")},
		{Subtotal: dec("40.00")},
	}
	totals := ComputeTotals(lines, decimal.Zero, dec("19"))

	assert.True(t, dec("100.00").Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
	assert.True(t, dec("19.00").Equal(totals.Tax), "tax %s", totals.Tax)
	assert.True(t, dec("119.00").Equal(totals.Total), "total %s", totals.Total)
}

func TestComputeTotalsGlobalDiscount(t *testing.T) {
	lines := []InvoiceLine{{Subtotal: dec("100.00")}}
	totals := ComputeTotals(lines, dec("20.00"), dec("19"))

	assert.True(t, dec("80.00").Equal(totals.Subtotal))
	assert.True(t, dec("15.20").Equal(totals.Tax))
	assert.True(t, dec("95.20").Equal(totals.Total))
}

func TestComputeTotalsDiscountFloor(t *testing.T) {
	// A discount above the sum of lines never turns the invoice negative.
	lines := []InvoiceLine{{Subtotal: dec("30.00")}}
	totals := ComputeTotals(lines, dec("50.00"), dec("19"))

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotalsRoundsHalfUp(t *testing.T) {
	// 19% of 33.45 is 6.3555, which rounds to 6.36.
	lines := []InvoiceLine{{Subtotal: dec("33.45")}}
	totals := ComputeTotals(lines, decimal.Zero, dec("19"))

	assert.True(t, dec("6.36").Equal(totals.Tax), "tax %s", totals.Tax)
}

func TestInvoicePartialPayments(t *testing.T) {
	inv := Invoice{
		Number: "FAC-20250131-0001",
		Status: InvoicePending,
		Total:  dec("119.00"),
	}

	require.NoError(t, inv.ValidatePayment(dec("50.00")))
	inv.Payments = append(inv.Payments, Payment{Amount: dec("50.00")})
	assert.True(t, dec("69.00").Equal(inv.Balance()))

	// The remainder closes the invoice exactly.
	require.NoError(t, inv.ValidatePayment(dec("69.00")))
	inv.Payments = append(inv.Payments, Payment{Amount: dec("69.00")})
	assert.True(t, inv.Balance().IsZero())
}

func TestInvoiceValidatePaymentRejects(t *testing.T) {
	inv := Invoice{Status: InvoicePending, Total: dec("100.00")}

	assert.ErrorIs(t, inv.ValidatePayment(decimal.Zero), ErrInvalidQuantity)
	assert.ErrorIs(t, inv.ValidatePayment(dec("-5.00")), ErrInvalidQuantity)
	assert.ErrorIs(t, inv.ValidatePayment(dec("100.01")), ErrInvalidQuantity)

	paid := Invoice{Status: InvoicePaid, Total: dec("100.00")}
	assert.ErrorIs(t, paid.ValidatePayment(dec("10.00")), ErrInvalidState)

	voided := Invoice{Status: InvoiceVoided, Total: dec("100.00")}
	assert.ErrorIs(t, voided.ValidatePayment(dec("10.00")), ErrInvalidState)

	// EN_ESPERA accepts payments; the handler confirms it implicitly.
	awaiting := Invoice{Status: InvoiceAwaiting, Total: dec("100.00")}
	assert.NoError(t, awaiting.ValidatePayment(dec("10.00")))
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PayCash.Valid())
	assert.True(t, PayMixed.Valid())
	assert.False(t, PaymentMethod("CHEQUE").Valid())
}
