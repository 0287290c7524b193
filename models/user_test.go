package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuperUserPassesEveryCheck(t *testing.T) {
	r := RoleSuperUser
	assert.True(t, r.CanCreateRequests())
	assert.True(t, r.CanApproveRequests())
	assert.True(t, r.CanCreateInvoices())
	assert.True(t, r.CanConfirmInvoices())
	assert.True(t, r.CanVoidInvoices())
	assert.True(t, r.CanEditInventory())
	assert.True(t, r.CanAdjustDirectly())
	assert.True(t, r.CanResolveAlerts())
	assert.True(t, r.CanManageUsers())
	assert.True(t, r.CanManageClients())
	assert.True(t, r.CanViewAudit())
	assert.True(t, r.CanViewReports())
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleMechanic.CanCreateRequests())
	assert.False(t, RoleMechanic.CanApproveRequests())
	assert.False(t, RoleMechanic.CanCreateInvoices())
	assert.False(t, RoleMechanic.CanViewReports())

	assert.True(t, RoleWarehouse.CanApproveRequests())
	assert.True(t, RoleWarehouse.CanEditInventory())
	assert.False(t, RoleWarehouse.CanConfirmInvoices())
	assert.False(t, RoleWarehouse.CanVoidInvoices())

	assert.True(t, RoleSales.CanCreateInvoices())
	assert.True(t, RoleSales.CanConfirmInvoices())
	assert.False(t, RoleSales.CanEditInventory())
	assert.False(t, RoleSales.CanVoidInvoices())

	assert.True(t, RoleAdmin.CanVoidInvoices())
	assert.True(t, RoleAdmin.CanManageUsers())
	assert.True(t, RoleAdmin.CanViewAudit())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("GERENTE").Valid())
}

func TestNotificationRoleSets(t *testing.T) {
	assert.Contains(t, StockRoles(), RoleWarehouse)
	assert.NotContains(t, StockRoles(), RoleSales)
	assert.Contains(t, BillingRoles(), RoleSales)
	assert.NotContains(t, BillingRoles(), RoleWarehouse)
}
