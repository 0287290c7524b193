//go:build integration

package controllers

import (
	"fmt"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taller-inventory/config"
	"taller-inventory/models"
)

// These tests run against a real postgres because the workflows depend on
// FOR UPDATE row locks. Point TEST_DATABASE_URL at a disposable database:
//
//	TEST_DATABASE_URL=postgres://... go test -tags integration ./controllers/
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Part{},
		&models.Client{},
		&models.Vehicle{},
		&models.StockMovement{},
		&models.StockAdjustment{},
		&models.PartsRequest{},
		&models.RequestItem{},
		&models.Invoice{},
		&models.InvoiceLine{},
		&models.Payment{},
		&models.Alert{},
		&models.AlertEvent{},
		&models.Notification{},
		&models.AuditEntry{},
		&models.Message{},
	))

	require.NoError(t, db.Exec(`TRUNCATE TABLE
		audit_entries, messages, notifications, alert_events, alerts,
		payments, invoice_lines, invoices, request_items, parts_requests,
		stock_adjustments, stock_movements, vehicles, clients, parts,
		categories, users RESTART IDENTITY CASCADE`).Error)

	config.DB = db
	return db
}

func recompute(t *testing.T, db *gorm.DB, partID uint, actorID uint) {
	t.Helper()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		part, err := lockPart(tx, partID)
		if err != nil {
			return err
		}
		return recomputeStockAlerts(tx, part, actorID)
	}))
}

func countActiveStockAlerts(t *testing.T, db *gorm.DB, partID uint) int64 {
	t.Helper()
	var cnt int64
	require.NoError(t, db.Model(&models.Alert{}).
		Where("part_id = ? AND status IN ?", partID, activeStatuses()).
		Count(&cnt).Error)
	return cnt
}

func TestStockAlertRecomputeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	part := models.Part{
		Code: "INT-001", Name: "Pastilla de freno",
		SalePrice: decimal.NewFromInt(30), QtyOnHand: 0, QtyMinimum: 5, IsActive: true,
	}
	require.NoError(t, db.Create(&part).Error)

	recompute(t, db, part.ID, 0)
	recompute(t, db, part.ID, 0)
	assert.Equal(t, int64(1), countActiveStockAlerts(t, db, part.ID))

	var alert models.Alert
	require.NoError(t, db.Where("part_id = ?", part.ID).
		Where("status IN ?", activeStatuses()).First(&alert).Error)
	assert.Equal(t, models.AlertOutOfStock, alert.Type)

	// Partial recovery swaps AGOTADO for a single STOCK_BAJO.
	require.NoError(t, db.Model(&models.Part{}).Where("id = ?", part.ID).
		Update("qty_on_hand", 2).Error)
	recompute(t, db, part.ID, 0)
	recompute(t, db, part.ID, 0)
	assert.Equal(t, int64(1), countActiveStockAlerts(t, db, part.ID))
	require.NoError(t, db.Where("part_id = ?", part.ID).
		Where("status IN ?", activeStatuses()).First(&alert).Error)
	assert.Equal(t, models.AlertLowStock, alert.Type)

	// Full recovery resolves everything.
	require.NoError(t, db.Model(&models.Part{}).Where("id = ?", part.ID).
		Update("qty_on_hand", 20).Error)
	recompute(t, db, part.ID, 0)
	assert.Equal(t, int64(0), countActiveStockAlerts(t, db, part.ID))
}

func TestVoidRestoresSettledStock(t *testing.T) {
	db := setupTestDB(t)

	seller := models.User{
		Username: "vendedora", FullName: "Vendedora", PasswordHash: "x",
		Role: models.RoleSales, IsActive: true,
	}
	require.NoError(t, db.Create(&seller).Error)

	client := models.Client{
		DocumentType: "CC", DocumentNumber: "123", FullName: "Cliente", IsActive: true,
	}
	require.NoError(t, db.Create(&client).Error)
	vehicle := models.Vehicle{
		ClientID: client.ID, Plate: "ABC123", Brand: "Mazda", Model: "3", IsActive: true,
	}
	require.NoError(t, db.Create(&vehicle).Error)

	part := models.Part{
		Code: "INT-002", Name: "Filtro de aire",
		SalePrice: decimal.NewFromInt(40), QtyOnHand: 10, QtyReserved: 3,
		QtyMinimum: 2, IsActive: true,
	}
	require.NoError(t, db.Create(&part).Error)

	invoice := models.Invoice{
		Number:        "FAC-20250131-0001",
		ClientID:      client.ID,
		VehicleID:     vehicle.ID,
		SellerID:      seller.ID,
		Subtotal:      decimal.NewFromInt(120),
		Tax:           decimal.RequireFromString("22.80"),
		Discount:      decimal.Zero,
		Total:         decimal.RequireFromString("142.80"),
		Status:        models.InvoicePending,
		PaymentMethod: models.PayCash,
		Lines: []models.InvoiceLine{{
			PartID:    part.ID,
			Qty:       3,
			UnitPrice: decimal.NewFromInt(40),
			Discount:  decimal.Zero,
			Subtotal:  decimal.NewFromInt(120),
		}},
	}
	require.NoError(t, db.Create(&invoice).Error)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoice(tx, fmt.Sprint(invoice.ID))
		if err != nil {
			return err
		}
		return settleInvoiceCore(tx, inv, seller.ID)
	}))

	var settled models.Part
	require.NoError(t, db.First(&settled, part.ID).Error)
	assert.Equal(t, 7, settled.QtyOnHand)
	assert.Equal(t, 0, settled.QtyReserved)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		inv, err := lockInvoice(tx, fmt.Sprint(invoice.ID))
		if err != nil {
			return err
		}
		return voidInvoiceCore(tx, inv, seller.ID, "prueba de reversa")
	}))

	// Every line's stock is back where it was before settlement.
	var reverted models.Part
	require.NoError(t, db.First(&reverted, part.ID).Error)
	assert.Equal(t, 10, reverted.QtyOnHand)
	assert.Equal(t, 0, reverted.QtyReserved)

	var voided models.Invoice
	require.NoError(t, db.First(&voided, invoice.ID).Error)
	assert.Equal(t, models.InvoiceVoided, voided.Status)
	assert.Equal(t, "prueba de reversa", voided.VoidReason)

	var reversals int64
	require.NoError(t, db.Model(&models.StockMovement{}).
		Where("part_id = ? AND reason = ?", part.ID, models.ReasonVoidReversal).
		Count(&reversals).Error)
	assert.Equal(t, int64(1), reversals)
}
