package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceAwaiting InvoiceStatus = "EN_ESPERA"
	InvoicePending  InvoiceStatus = "PENDIENTE"
	InvoicePaid     InvoiceStatus = "PAGADA"
	InvoiceVoided   InvoiceStatus = "ANULADA"
)

type PaymentMethod string

const (
	PayCash     PaymentMethod = "EFECTIVO"
	PayCard     PaymentMethod = "TARJETA"
	PayTransfer PaymentMethod = "TRANSFERENCIA"
	PayCredit   PaymentMethod = "CREDITO"
	PayMixed    PaymentMethod = "MIXTO"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCard, PayTransfer, PayCredit, PayMixed:
		return true
	}
	return false
}

type Invoice struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Number string `gorm:"uniqueIndex;size:40;not null" json:"number"` // FAC-YYYYMMDD-NNNN

	ClientID  uint          `gorm:"index;not null" json:"client_id"`
	Client    *Client       `json:"client,omitempty"`
	VehicleID uint          `gorm:"index;not null" json:"vehicle_id"`
	Vehicle   *Vehicle      `json:"vehicle,omitempty"`
	RequestID *uint         `gorm:"index" json:"request_id,omitempty"`
	Request   *PartsRequest `json:"request,omitempty"`
	SellerID  uint          `gorm:"index;not null" json:"seller_id"`
	Seller    *User         `json:"seller,omitempty"`

	Subtotal decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"tax"`
	Discount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"discount"`
	Total    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`

	Status        InvoiceStatus `gorm:"size:12;not null;index" json:"status"`
	PaymentMethod PaymentMethod `gorm:"size:20;not null" json:"payment_method"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	Notes         string        `gorm:"size:500" json:"notes,omitempty"`

	VoidedByID *uint      `json:"voided_by_id,omitempty"`
	VoidedAt   *time.Time `json:"voided_at,omitempty"`
	VoidReason string     `gorm:"size:255" json:"void_reason,omitempty"`

	Lines    []InvoiceLine `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"lines"`
	Payments []Payment     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"payments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InvoiceLine struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	PartID        uint  `gorm:"index;not null" json:"part_id"`
	Part          *Part `json:"part,omitempty"`
	RequestItemID *uint `gorm:"index" json:"request_item_id,omitempty"`
	// Set when the line is settled, pointing at the SALE movement.
	MovementID *uint `json:"movement_id,omitempty"`

	Qty       int             `gorm:"not null" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	Discount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"discount"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`

	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Method    PaymentMethod   `gorm:"size:20;not null" json:"method"`
	Reference string          `gorm:"size:80" json:"reference,omitempty"`
	Note      string          `gorm:"size:255" json:"note,omitempty"`

	ReceivedByID uint  `gorm:"index;not null" json:"received_by_id"`
	ReceivedBy   *User `json:"received_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// two decimal places, half up
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// InvoiceTotals holds the computed money fields of an invoice.
type InvoiceTotals struct {
	Subtotal decimal.Decimal // after global discount, floored at zero
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// LineSubtotal: qty * unit price - line discount, rounded to 2dp.
func LineSubtotal(qty int, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return round2(unitPrice.Mul(decimal.NewFromInt(int64(qty))).Sub(discount))
}

// ComputeTotals applies the global discount to the sum of line subtotals
// and charges tax as a fixed percentage of the discounted base.
func ComputeTotals(lines []InvoiceLine, globalDiscount, taxPercent decimal.Decimal) InvoiceTotals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
	}
	subtotal = subtotal.Sub(globalDiscount)
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	tax := round2(subtotal.Mul(taxPercent).Div(decimal.NewFromInt(100)))
	return InvoiceTotals{
		Subtotal: round2(subtotal),
		Tax:      tax,
		Total:    round2(subtotal.Add(tax)),
	}
}

// PaidAmount suma los pagos registrados.
func (inv *Invoice) PaidAmount() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range inv.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// Balance is the outstanding amount.
func (inv *Invoice) Balance() decimal.Decimal {
	return inv.Total.Sub(inv.PaidAmount())
}

// ValidatePayment rejects non-positive amounts, amounts above the balance,
// and payments against invoices that are not payable.
func (inv *Invoice) ValidatePayment(amount decimal.Decimal) error {
	if inv.Status != InvoiceAwaiting && inv.Status != InvoicePending {
		return fmt.Errorf("%w: la factura %s esta %s", ErrInvalidState, inv.Number, inv.Status)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: el monto del pago debe ser mayor a cero", ErrInvalidQuantity)
	}
	if amount.GreaterThan(inv.Balance()) {
		return fmt.Errorf("%w: el pago %s excede el saldo pendiente %s",
			ErrInvalidQuantity, amount.StringFixed(2), inv.Balance().StringFixed(2))
	}
	return nil
}
