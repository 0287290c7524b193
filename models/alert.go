package models

import "time"

type AlertType string

const (
	AlertOutOfStock     AlertType = "AGOTADO"
	AlertLowStock       AlertType = "STOCK_BAJO"
	AlertRequestPending AlertType = "SOLICITUD_PENDIENTE"
	AlertInvoicePending AlertType = "FACTURA_PENDIENTE"
	AlertInvoiceCreated AlertType = "FACTURA_CREADA"
	AlertInvoicePaid    AlertType = "FACTURA_PAGADA"
	AlertInvoiceVoided  AlertType = "FACTURA_ANULADA"
)

type AlertPriority string

const (
	PriorityCritical AlertPriority = "CRITICA"
	PriorityHigh     AlertPriority = "ALTA"
	PriorityMedium   AlertPriority = "MEDIA"
	PriorityLow      AlertPriority = "BAJA"
)

type AlertStatus string

const (
	AlertNew        AlertStatus = "NUEVA"
	AlertInProgress AlertStatus = "EN_PROCESO"
	AlertResolved   AlertStatus = "RESUELTA"
	AlertArchived   AlertStatus = "ARCHIVADA"
)

// Alert state is global; per-user read state lives in Notification.
type Alert struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	Type     AlertType     `gorm:"size:30;not null;index" json:"type"`
	Priority AlertPriority `gorm:"size:10;not null" json:"priority"`
	Message  string        `gorm:"size:500;not null" json:"message"`
	Status   AlertStatus   `gorm:"size:12;not null;index" json:"status"`

	PartID *uint `gorm:"index" json:"part_id,omitempty"`
	Part   *Part `json:"part,omitempty"`
	// Typed references instead of an untyped JSON blob: each alert type
	// fills the columns that apply to it.
	RequestID *uint `gorm:"index" json:"request_id,omitempty"`
	InvoiceID *uint `gorm:"index" json:"invoice_id,omitempty"`

	AttendedByID *uint      `json:"attended_by_id,omitempty"`
	AttendedAt   *time.Time `json:"attended_at,omitempty"`
	ResolvedByID *uint      `json:"resolved_by_id,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	ArchivedByID *uint      `json:"archived_by_id,omitempty"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanTransitionTo: the alert lifecycle is strictly one-directional.
func (a *Alert) CanTransitionTo(next AlertStatus) bool {
	switch next {
	case AlertInProgress:
		return a.Status == AlertNew
	case AlertResolved:
		return a.Status == AlertNew || a.Status == AlertInProgress
	case AlertArchived:
		return a.Status == AlertResolved
	}
	return false
}

// AlertEvent is the per-alert timeline, separate from the audit log.
type AlertEvent struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	AlertID uint `gorm:"index;not null" json:"alert_id"`

	FromStatus AlertStatus `gorm:"size:12" json:"from_status"`
	ToStatus   AlertStatus `gorm:"size:12;not null" json:"to_status"`
	Action     string      `gorm:"size:30;not null" json:"action"`
	// Nil actor means the system raised the event.
	ActorID *uint  `json:"actor_id,omitempty"`
	Actor   *User  `json:"actor,omitempty"`
	Note    string `gorm:"size:255" json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Notification fans an alert out to one user. Read state is per user and
// independent of the alert's global status. LastRemindedOn supports the
// daily re-surfacing of alerts that remain unresolved.
type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"index:idx_notifications_user_alert,unique;not null" json:"user_id"`
	AlertID uint   `gorm:"index:idx_notifications_user_alert,unique;not null" json:"alert_id"`
	Alert   *Alert `json:"alert,omitempty"`

	IsRead         bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	LastRemindedOn *time.Time `gorm:"type:date" json:"last_reminded_on,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockAlertDecision is the outcome of evaluating a part's stock level.
type StockAlertDecision struct {
	Resolve  bool // resolve any active stock alert
	Type     AlertType
	Priority AlertPriority
}

// EvaluateStock derives the alert state a part should be in. on_hand above
// the minimum resolves; zero is OUT_OF_STOCK/CRITICAL; anything in between
// (minimum included) is LOW_STOCK/HIGH.
func EvaluateStock(p *Part) StockAlertDecision {
	if p.QtyOnHand > p.QtyMinimum {
		return StockAlertDecision{Resolve: true}
	}
	if p.QtyOnHand == 0 {
		return StockAlertDecision{Type: AlertOutOfStock, Priority: PriorityCritical}
	}
	return StockAlertDecision{Type: AlertLowStock, Priority: PriorityHigh}
}

// StockAlertPlan lists the alert actions a part's counters call for, given
// the stock alerts currently open for it.
type StockAlertPlan struct {
	ResolveTypes []AlertType
	Create       bool
	Type         AlertType
	Priority     AlertPriority
}

// PlanStockAlert reconciles the state EvaluateStock asks for with the open
// stock alerts of the part. The plan is idempotent: an open alert of the
// right type is kept as is, stale ones are resolved, and nothing is ever
// created twice.
func PlanStockAlert(p *Part, openTypes []AlertType) StockAlertPlan {
	decision := EvaluateStock(p)
	var plan StockAlertPlan

	if decision.Resolve {
		plan.ResolveTypes = append(plan.ResolveTypes, openTypes...)
		return plan
	}

	alreadyOpen := false
	for _, t := range openTypes {
		if t == decision.Type {
			alreadyOpen = true
			continue
		}
		plan.ResolveTypes = append(plan.ResolveTypes, t)
	}
	if !alreadyOpen {
		plan.Create = true
		plan.Type = decision.Type
		plan.Priority = decision.Priority
	}
	return plan
}
