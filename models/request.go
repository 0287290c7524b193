package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	RequestPending       RequestStatus = "PENDIENTE"
	RequestApproved      RequestStatus = "APROBADA"
	RequestRejected      RequestStatus = "RECHAZADA"
	RequestDelivered     RequestStatus = "ENTREGADA"
	RequestInvoiced      RequestStatus = "FACTURADA"
	RequestPartialReturn RequestStatus = "DEVOLUCION_PARCIAL"
	RequestCancelled     RequestStatus = "ANULADA"
)

type RequestItemStatus string

const (
	ItemReserved  RequestItemStatus = "RESERVADO"
	ItemApproved  RequestItemStatus = "APROBADO"
	ItemRejected  RequestItemStatus = "RECHAZADO"
	ItemDelivered RequestItemStatus = "ENTREGADO"
	ItemReturned  RequestItemStatus = "DEVUELTO"
	ItemInvoiced  RequestItemStatus = "FACTURADO"
)

// PartsRequest: un tecnico pide repuestos para un vehiculo. Stock queda
// reservado desde la creacion y solo se deduce al pagar la factura.
type PartsRequest struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Number string `gorm:"uniqueIndex;size:40;not null" json:"number"` // SOL-YYYYMMDD-NNNN

	MechanicID uint     `gorm:"index;not null" json:"mechanic_id"`
	Mechanic   *User    `json:"mechanic,omitempty"`
	ClientID   uint     `gorm:"index;not null" json:"client_id"`
	Client     *Client  `json:"client,omitempty"`
	VehicleID  uint     `gorm:"index;not null" json:"vehicle_id"`
	Vehicle    *Vehicle `json:"vehicle,omitempty"`

	Status RequestStatus `gorm:"size:20;not null;index" json:"status"`
	Notes  string        `gorm:"size:500" json:"notes,omitempty"`

	ApprovedByID  *uint      `json:"approved_by_id,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	DeliveredByID *uint      `json:"delivered_by_id,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	InvoicedByID  *uint      `json:"invoiced_by_id,omitempty"`
	InvoicedAt    *time.Time `json:"invoiced_at,omitempty"`

	Items []RequestItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestItem snapshots the sale price at creation time so later price
// changes do not affect an open request.
type RequestItem struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	RequestID uint  `gorm:"index;not null" json:"request_id"`
	PartID    uint  `gorm:"index;not null" json:"part_id"`
	Part      *Part `json:"part,omitempty"`

	QtyRequested int `gorm:"not null" json:"qty_requested"`
	QtyApproved  int `gorm:"not null;default:0" json:"qty_approved"`
	QtyDelivered int `gorm:"not null;default:0" json:"qty_delivered"`
	QtyReturned  int `gorm:"not null;default:0" json:"qty_returned"`

	UnitPrice decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	Status    RequestItemStatus `gorm:"size:12;not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReturnableQty: cuanto se puede devolver todavia. Si nada fue entregado
// aun, el tope es lo aprobado.
func (it *RequestItem) ReturnableQty() int {
	base := it.QtyDelivered
	if base == 0 {
		base = it.QtyApproved
	}
	return base - it.QtyReturned
}

// CanTransitionTo guards the request state machine. Side branches
// (PARTIAL_RETURN, CANCELLED) are reachable from APPROVED and DELIVERED;
// REJECTED only from PENDING.
func (r *PartsRequest) CanTransitionTo(next RequestStatus) bool {
	switch next {
	case RequestApproved, RequestRejected:
		return r.Status == RequestPending
	case RequestDelivered:
		return r.Status == RequestApproved
	case RequestInvoiced:
		return r.Status == RequestDelivered
	case RequestPartialReturn, RequestCancelled:
		return r.Status == RequestApproved || r.Status == RequestDelivered ||
			r.Status == RequestPartialReturn
	}
	return false
}

// ValidateApproval checks a per-item approved quantity.
func (it *RequestItem) ValidateApproval(qtyApproved int) error {
	if qtyApproved < 0 || qtyApproved > it.QtyRequested {
		return fmt.Errorf("%w: aprobado %d fuera de rango (solicitado %d)",
			ErrInvalidQuantity, qtyApproved, it.QtyRequested)
	}
	return nil
}

// ValidateDelivery checks a per-item delivered quantity.
func (it *RequestItem) ValidateDelivery(qtyDelivered int) error {
	if qtyDelivered < 0 || qtyDelivered > it.QtyApproved {
		return fmt.Errorf("%w: entregado %d fuera de rango (aprobado %d)",
			ErrInvalidQuantity, qtyDelivered, it.QtyApproved)
	}
	return nil
}

// ValidateReturn checks a devolution against the remaining returnable
// quantity.
func (it *RequestItem) ValidateReturn(qtyReturned int) error {
	if qtyReturned <= 0 {
		return fmt.Errorf("%w: la devolucion debe ser mayor a cero", ErrInvalidQuantity)
	}
	if qtyReturned > it.ReturnableQty() {
		return fmt.Errorf("%w: devolver %d excede lo disponible (%d)",
			ErrInvalidQuantity, qtyReturned, it.ReturnableQty())
	}
	return nil
}

// BillableQty is what an invoice line should carry for this item.
func (it *RequestItem) BillableQty() int {
	return it.QtyDelivered - it.QtyReturned
}
