package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:120;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Part is a stocked spare-part SKU. QtyOnHand is physical stock,
// QtyReserved is stock committed to open requests. Available stock is
// always derived, never stored.
//
// Invariant: 0 <= QtyReserved <= QtyOnHand. The ledger methods below are
// the only code allowed to mutate the two counters, and callers must hold
// a FOR UPDATE lock on the row for the whole transaction.
type Part struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Code        string          `gorm:"uniqueIndex;size:60;not null" json:"code"`
	Name        string          `gorm:"size:200;not null;index" json:"name"`
	Description string          `gorm:"size:500" json:"description"`
	CategoryID  *uint           `gorm:"index" json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	SalePrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"sale_price"`
	QtyOnHand   int             `gorm:"not null;default:0" json:"qty_on_hand"`
	QtyReserved int             `gorm:"not null;default:0" json:"qty_reserved"`
	QtyMinimum  int             `gorm:"not null;default:5" json:"qty_minimum"`
	Location    string          `gorm:"size:120" json:"location"`
	Brand       string          `gorm:"size:120" json:"brand"`
	ImagePath   string          `gorm:"size:255" json:"image_path,omitempty"`
	Notes       string          `gorm:"size:500" json:"notes,omitempty"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available es stock fisico menos reservado.
func (p *Part) Available() int {
	return p.QtyOnHand - p.QtyReserved
}

// Reserve commits qty units to a request without touching physical stock.
func (p *Part) Reserve(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: la reserva debe ser mayor a cero", ErrInvalidQuantity)
	}
	if qty > p.Available() {
		return fmt.Errorf("%w: %s disponible %d, solicitado %d",
			ErrInsufficientStock, p.Code, p.Available(), qty)
	}
	p.QtyReserved += qty
	return nil
}

// Release undoes a reservation. Releasing more than is reserved means the
// bookkeeping is already broken somewhere, so it fails loudly instead of
// clamping at zero.
func (p *Part) Release(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: la liberacion debe ser mayor a cero", ErrInvalidQuantity)
	}
	if qty > p.QtyReserved {
		return fmt.Errorf("%w: liberar %d excede lo reservado (%d) de %s",
			ErrInvalidQuantity, qty, p.QtyReserved, p.Code)
	}
	p.QtyReserved -= qty
	return nil
}

// Receive registers goods-in.
func (p *Part) Receive(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: la entrada debe ser mayor a cero", ErrInvalidQuantity)
	}
	p.QtyOnHand += qty
	return nil
}

// Settle converts a reservation into a permanent deduction: the only
// operation that reduces physical stock through the sales flow.
func (p *Part) Settle(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: la liquidacion debe ser mayor a cero", ErrInvalidQuantity)
	}
	if qty > p.QtyReserved {
		return fmt.Errorf("%w: liquidar %d excede lo reservado (%d) de %s",
			ErrInvalidQuantity, qty, p.QtyReserved, p.Code)
	}
	if qty > p.QtyOnHand {
		return fmt.Errorf("%w: liquidar %d excede el stock fisico (%d) de %s",
			ErrInvalidQuantity, qty, p.QtyOnHand, p.Code)
	}
	p.QtyOnHand -= qty
	p.QtyReserved -= qty
	return nil
}

// SetOnHand applies an administrative correction. It never touches the
// reservation, and refuses values that would leave reserved > on_hand.
func (p *Part) SetOnHand(qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: el stock no puede ser negativo", ErrInvalidQuantity)
	}
	if qty < p.QtyReserved {
		return fmt.Errorf("%w: el nuevo stock (%d) es menor que lo reservado (%d) de %s",
			ErrInvalidQuantity, qty, p.QtyReserved, p.Code)
	}
	p.QtyOnHand = qty
	return nil
}
