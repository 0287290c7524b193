package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taller-inventory/config"
	"taller-inventory/middlewares"
	"taller-inventory/models"
	"taller-inventory/utils"
)

func activeStatuses() []models.AlertStatus {
	return []models.AlertStatus{models.AlertNew, models.AlertInProgress}
}

func ListAlerts(c *gin.Context) {
	var alerts []models.Alert
	q := config.DB.Preload("Part").Order("created_at DESC").Limit(200)

	if c.Query("history") == "true" {
		q = q.Where("status IN ?", []models.AlertStatus{models.AlertResolved, models.AlertArchived})
	} else {
		q = q.Where("status IN ?", activeStatuses())
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if p := c.Query("priority"); p != "" {
		q = q.Where("priority = ?", p)
	}

	if err := q.Find(&alerts).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar las alertas", err)
		return
	}
	utils.Success(c, "Alertas", alerts)
}

func GetAlert(c *gin.Context) {
	var alert models.Alert
	if err := config.DB.Preload("Part").First(&alert, c.Param("id")).Error; err != nil {
		utils.Fail(c, "Alerta no encontrada", models.ErrNotFound)
		return
	}
	var events []models.AlertEvent
	if err := config.DB.Preload("Actor").Where("alert_id = ?", alert.ID).
		Order("created_at").Find(&events).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo cargar la alerta", err)
		return
	}
	utils.Success(c, "Alerta", gin.H{"alert": alert, "events": events})
}

func invoiceAlertType(t models.AlertType) bool {
	switch t {
	case models.AlertInvoicePending, models.AlertInvoiceCreated,
		models.AlertInvoicePaid, models.AlertInvoiceVoided:
		return true
	}
	return false
}

// canWorkAlert: stock and request alerts belong to warehouse, invoice
// alerts also to sales.
func canWorkAlert(role models.Role, t models.AlertType) bool {
	if role.CanResolveAlerts() {
		return true
	}
	return invoiceAlertType(t) && role.CanConfirmInvoices()
}

type AlertActionInput struct {
	Note string `json:"note"`
}

func transitionAlert(c *gin.Context, next models.AlertStatus, action string) {
	var in AlertActionInput
	_ = c.ShouldBindJSON(&in)

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var alert models.Alert
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockForUpdate()).First(&alert, c.Param("id")).Error; err != nil {
			return fmt.Errorf("%w: alerta", models.ErrNotFound)
		}
		if !canWorkAlert(middlewares.CurrentRole(c), alert.Type) {
			return fmt.Errorf("%w: no puede gestionar esta alerta", models.ErrUnauthorized)
		}
		if !alert.CanTransitionTo(next) {
			return fmt.Errorf("%w: la alerta esta %s", models.ErrInvalidState, alert.Status)
		}

		from := alert.Status
		now := time.Now()
		alert.Status = next
		switch next {
		case models.AlertInProgress:
			alert.AttendedByID = &actor.ID
			alert.AttendedAt = &now
		case models.AlertResolved:
			alert.ResolvedByID = &actor.ID
			alert.ResolvedAt = &now
		case models.AlertArchived:
			alert.ArchivedByID = &actor.ID
			alert.ArchivedAt = &now
		}
		if err := tx.Save(&alert).Error; err != nil {
			return err
		}

		event := models.AlertEvent{
			AlertID:    alert.ID,
			FromStatus: from,
			ToStatus:   next,
			Action:     action,
			ActorID:    &actor.ID,
			Note:       in.Note,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		return recordAudit(tx, models.AuditEntry{
			Category:     models.AuditAlerts,
			Action:       models.ActionUpdate,
			ActorID:      actor.ID,
			EntityType:   "alert",
			EntityID:     alert.ID,
			StatusBefore: string(from),
			StatusAfter:  string(next),
			Detail:       in.Note,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo actualizar la alerta", err)
		return
	}
	utils.Success(c, "Alerta actualizada", alert)
}

func AttendAlert(c *gin.Context)  { transitionAlert(c, models.AlertInProgress, "ATENDIDA") }
func ResolveAlert(c *gin.Context) { transitionAlert(c, models.AlertResolved, "RESUELTA") }
func ArchiveAlert(c *gin.Context) { transitionAlert(c, models.AlertArchived, "ARCHIVADA") }

func ListNotifications(c *gin.Context) {
	var notifications []models.Notification
	q := config.DB.Preload("Alert").Preload("Alert.Part").
		Where("user_id = ?", middlewares.CurrentUserID(c)).
		Order("created_at DESC").Limit(200)
	if c.Query("unread") == "true" {
		q = q.Where("is_read = ?", false)
	}
	if err := q.Find(&notifications).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar las notificaciones", err)
		return
	}
	utils.Success(c, "Notificaciones", notifications)
}

func UnreadCount(c *gin.Context) {
	var cnt int64
	err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", middlewares.CurrentUserID(c), false).
		Count(&cnt).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo contar", err)
		return
	}
	utils.Success(c, "Notificaciones sin leer", gin.H{"count": cnt})
}

func MarkNotificationRead(c *gin.Context) {
	now := time.Now()
	res := config.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), middlewares.CurrentUserID(c)).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo marcar la notificacion", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.Fail(c, "Notificacion no encontrada", models.ErrNotFound)
		return
	}
	utils.Success(c, "Notificacion leida", nil)
}

func MarkAllNotificationsRead(c *gin.Context) {
	now := time.Now()
	res := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", middlewares.CurrentUserID(c), false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron marcar las notificaciones", res.Error)
		return
	}
	utils.Success(c, "Notificaciones leidas", gin.H{"updated": res.RowsAffected})
}

// RunDailyReminder re-surfaces read notifications whose alert is still
// open. Each notification is bumped at most once per calendar day.
func RunDailyReminder(c *gin.Context) {
	today := utils.StartOfDay(time.Now())

	res := config.DB.Model(&models.Notification{}).
		Where("is_read = ?", true).
		Where("last_reminded_on IS NULL OR last_reminded_on < ?", today).
		Where("alert_id IN (?)", config.DB.Model(&models.Alert{}).
			Select("id").Where("status IN ?", activeStatuses())).
		Updates(map[string]interface{}{
			"is_read":          false,
			"read_at":          nil,
			"last_reminded_on": today,
		})
	if res.Error != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo ejecutar el recordatorio", res.Error)
		return
	}
	config.Log.Infow("recordatorio diario ejecutado", "notificaciones", res.RowsAffected)
	utils.Success(c, "Recordatorio ejecutado", gin.H{"reactivated": res.RowsAffected})
}
