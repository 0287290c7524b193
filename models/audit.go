package models

import "time"

type AuditCategory string

const (
	AuditInventory AuditCategory = "INVENTARIO"
	AuditRequests  AuditCategory = "SOLICITUDES"
	AuditInvoices  AuditCategory = "FACTURACION"
	AuditUsers     AuditCategory = "USUARIOS"
	AuditClients   AuditCategory = "CLIENTES"
	AuditAlerts    AuditCategory = "ALERTAS"
	AuditAuth      AuditCategory = "AUTENTICACION"
)

type AuditAction string

const (
	ActionCreate  AuditAction = "CREAR"
	ActionUpdate  AuditAction = "ACTUALIZAR"
	ActionDelete  AuditAction = "ELIMINAR"
	ActionApprove AuditAction = "APROBAR"
	ActionReject  AuditAction = "RECHAZAR"
	ActionDeliver AuditAction = "ENTREGAR"
	ActionReturn  AuditAction = "DEVOLVER"
	ActionCancel  AuditAction = "ANULAR"
	ActionConfirm AuditAction = "CONFIRMAR"
	ActionPay     AuditAction = "PAGAR"
	ActionAdjust  AuditAction = "AJUSTAR"
	ActionLogin   AuditAction = "INGRESAR"
)

// AuditEntry is append-only. Instead of a free-form JSON blob it carries
// typed columns for the handful of values every consumer of the log needs:
// the entity touched, its human-readable reference, and the state change.
type AuditEntry struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Category AuditCategory `gorm:"size:20;not null;index" json:"category"`
	Action   AuditAction   `gorm:"size:20;not null;index" json:"action"`

	ActorID uint  `gorm:"index;not null" json:"actor_id"`
	Actor   *User `json:"actor,omitempty"`

	EntityType string `gorm:"size:40;not null" json:"entity_type"` // e.g. "parts_request"
	EntityID   uint   `gorm:"index;not null" json:"entity_id"`
	EntityRef  string `gorm:"size:60" json:"entity_ref,omitempty"` // SOL-..., FAC-..., part code

	StatusBefore string `gorm:"size:30" json:"status_before,omitempty"`
	StatusAfter  string `gorm:"size:30" json:"status_after,omitempty"`
	QtyBefore    *int   `json:"qty_before,omitempty"`
	QtyAfter     *int   `json:"qty_after,omitempty"`

	Detail string `gorm:"size:500" json:"detail,omitempty"`

	IP        string    `gorm:"size:45" json:"ip,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
