package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"taller-inventory/config"
	"taller-inventory/models"
	"taller-inventory/utils"
)

// Dashboard aggregates the counters the landing screen shows for every
// role: stock health, open requests, billing backlog and today's sales.
func Dashboard(c *gin.Context) {
	db := config.DB

	var lowStock, outOfStock int64
	db.Model(&models.Part{}).
		Where("is_active = ? AND qty_on_hand > 0 AND qty_on_hand <= qty_minimum", true).
		Count(&lowStock)
	db.Model(&models.Part{}).
		Where("is_active = ? AND qty_on_hand = 0", true).
		Count(&outOfStock)

	var pendingRequests, deliveredRequests int64
	db.Model(&models.PartsRequest{}).
		Where("status = ?", models.RequestPending).Count(&pendingRequests)
	db.Model(&models.PartsRequest{}).
		Where("status = ?", models.RequestDelivered).Count(&deliveredRequests)

	var awaitingInvoices, pendingInvoices int64
	db.Model(&models.Invoice{}).
		Where("status = ?", models.InvoiceAwaiting).Count(&awaitingInvoices)
	db.Model(&models.Invoice{}).
		Where("status = ?", models.InvoicePending).Count(&pendingInvoices)

	var activeAlerts int64
	db.Model(&models.Alert{}).
		Where("status IN ?", activeStatuses()).Count(&activeAlerts)

	today := utils.StartOfDay(time.Now())
	var paidToday struct {
		Count int64
		Total decimal.Decimal
	}
	db.Model(&models.Invoice{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("status = ? AND updated_at >= ?", models.InvoicePaid, today).
		Scan(&paidToday)

	utils.Success(c, "Resumen", gin.H{
		"stock": gin.H{
			"low_stock":    lowStock,
			"out_of_stock": outOfStock,
		},
		"requests": gin.H{
			"pending":   pendingRequests,
			"delivered": deliveredRequests,
		},
		"invoices": gin.H{
			"awaiting":         awaitingInvoices,
			"pending_payment":  pendingInvoices,
			"paid_today":       paidToday.Count,
			"paid_today_total": paidToday.Total,
		},
		"alerts": gin.H{
			"active": activeAlerts,
		},
	})
}

// SalesReport sums paid invoices over a date range, grouped per day.
func SalesReport(c *gin.Context) {
	from := c.DefaultQuery("from", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	to := c.DefaultQuery("to", time.Now().Format("2006-01-02"))

	type dayRow struct {
		Day   time.Time       `json:"day"`
		Count int64           `json:"count"`
		Total decimal.Decimal `json:"total"`
	}
	var rows []dayRow
	err := config.DB.Model(&models.Invoice{}).
		Select("DATE_TRUNC('day', updated_at) AS day, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("status = ? AND updated_at >= ? AND updated_at < ?",
			models.InvoicePaid, from, to+" 23:59:59").
		Group("DATE_TRUNC('day', updated_at)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo generar el reporte", err)
		return
	}
	utils.Success(c, "Ventas por dia", rows)
}

// TopParts ranks parts by units sold through settled invoices.
func TopParts(c *gin.Context) {
	type partRow struct {
		PartID uint            `json:"part_id"`
		Code   string          `json:"code"`
		Name   string          `json:"name"`
		Units  int64           `json:"units"`
		Total  decimal.Decimal `json:"total"`
	}
	var rows []partRow
	err := config.DB.Model(&models.StockMovement{}).
		Select("stock_movements.part_id, parts.code, parts.name, SUM(stock_movements.qty) AS units, COALESCE(SUM(stock_movements.qty * stock_movements.unit_price), 0) AS total").
		Joins("JOIN parts ON parts.id = stock_movements.part_id").
		Where("stock_movements.reason = ?", models.ReasonSale).
		Group("stock_movements.part_id, parts.code, parts.name").
		Order("units DESC").
		Limit(20).
		Scan(&rows).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo generar el reporte", err)
		return
	}
	utils.Success(c, "Repuestos mas vendidos", rows)
}
