package models

import "time"

// Role determines what a user can do. Capabilities are resolved from the
// role once per request instead of comparing raw strings in handlers.
// SUPER_USUARIO passes every check.
type Role string

const (
	RoleSuperUser Role = "SUPER_USUARIO"
	RoleAdmin     Role = "ADMINISTRADOR"
	RoleWarehouse Role = "ALMACENISTA"
	RoleSales     Role = "VENDEDOR"
	RoleMechanic  Role = "TECNICO"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperUser, RoleAdmin, RoleWarehouse, RoleSales, RoleMechanic:
		return true
	}
	return false
}

func (r Role) in(roles ...Role) bool {
	if r == RoleSuperUser {
		return true
	}
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

// CanCreateRequests: quien abre solicitudes de repuestos.
func (r Role) CanCreateRequests() bool {
	return r.in(RoleAdmin, RoleWarehouse, RoleMechanic)
}

// CanApproveRequests covers aprobar/rechazar/entregar y devoluciones.
func (r Role) CanApproveRequests() bool {
	return r.in(RoleAdmin, RoleWarehouse)
}

func (r Role) CanCreateInvoices() bool {
	return r.in(RoleAdmin, RoleWarehouse, RoleSales)
}

// CanConfirmInvoices covers confirmar facturas y registrar pagos.
func (r Role) CanConfirmInvoices() bool {
	return r.in(RoleAdmin, RoleSales)
}

func (r Role) CanVoidInvoices() bool {
	return r.in(RoleAdmin)
}

func (r Role) CanEditInventory() bool {
	return r.in(RoleAdmin, RoleWarehouse)
}

// CanAdjustDirectly: ajustes de stock aplicados sin aprobacion previa.
func (r Role) CanAdjustDirectly() bool {
	return r.in(RoleAdmin, RoleWarehouse)
}

func (r Role) CanResolveAlerts() bool {
	return r.in(RoleAdmin, RoleWarehouse)
}

func (r Role) CanManageUsers() bool {
	return r.in(RoleAdmin)
}

func (r Role) CanManageClients() bool {
	return r.in(RoleAdmin, RoleWarehouse, RoleSales)
}

func (r Role) CanViewAudit() bool {
	return r.in(RoleAdmin)
}

func (r Role) CanViewReports() bool {
	return r.in(RoleAdmin, RoleWarehouse, RoleSales)
}

// StockRoles receive notifications about stock and request alerts.
func StockRoles() []Role {
	return []Role{RoleSuperUser, RoleAdmin, RoleWarehouse}
}

// BillingRoles receive notifications about invoice lifecycle alerts.
func BillingRoles() []Role {
	return []Role{RoleSuperUser, RoleAdmin, RoleSales}
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:120;not null" json:"username"`
	FullName     string     `gorm:"size:180;not null" json:"full_name"`
	Email        string     `gorm:"size:180" json:"email"`
	Phone        string     `gorm:"size:60" json:"phone"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         Role       `gorm:"size:30;not null;index" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedByID  *uint      `json:"created_by_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
