package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementKind string

const (
	MovementIn  MovementKind = "ENTRADA"
	MovementOut MovementKind = "SALIDA"
)

type MovementReason string

const (
	ReasonGoodsIn      MovementReason = "COMPRA"             // goods-in from supplier
	ReasonSale         MovementReason = "VENTA_FACTURACION"  // settlement on full payment
	ReasonTechReturn   MovementReason = "DEVOLUCION_TECNICO" // return before invoicing
	ReasonVoidReversal MovementReason = "REVERSA_ANULACION"  // invoice void reversal
	ReasonAdjustment   MovementReason = "AJUSTE"             // administrative correction
)

// StockMovement is the append-only log of physical stock flow in and out
// of the warehouse. Reservations are not movements.
type StockMovement struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	PartID uint  `gorm:"index;not null" json:"part_id"`
	Part   *Part `json:"part,omitempty"`

	Kind      MovementKind    `gorm:"size:10;not null" json:"kind"`
	Reason    MovementReason  `gorm:"size:30;not null;index" json:"reason"`
	Qty       int             `gorm:"not null" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(14,2)" json:"unit_price"`

	ActorID   uint  `gorm:"index;not null" json:"actor_id"`
	Actor     *User `json:"actor,omitempty"`
	RequestID *uint `gorm:"index" json:"request_id,omitempty"`

	Note string `gorm:"size:255" json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type AdjustmentStatus string

const (
	AdjustmentPending  AdjustmentStatus = "PENDIENTE"
	AdjustmentApplied  AdjustmentStatus = "APLICADO"
	AdjustmentRejected AdjustmentStatus = "RECHAZADO"
)

// StockAdjustment records an administrative stock correction. Warehouse
// staff apply them immediately; other roles queue them for approval.
type StockAdjustment struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	PartID uint  `gorm:"index;not null" json:"part_id"`
	Part   *Part `json:"part,omitempty"`

	QtyBefore int    `gorm:"not null" json:"qty_before"`
	QtyAfter  int    `gorm:"not null" json:"qty_after"`
	Delta     int    `gorm:"not null" json:"delta"`
	Reason    string `gorm:"size:255" json:"reason"`

	Status      AdjustmentStatus `gorm:"size:12;not null;index" json:"status"`
	RequestedBy uint             `gorm:"not null" json:"requested_by"`
	DecidedBy   *uint            `json:"decided_by,omitempty"`
	DecidedAt   *time.Time       `json:"decided_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
