package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taller-inventory/config"
	"taller-inventory/middlewares"
	"taller-inventory/models"
	"taller-inventory/utils"
)

type SendMessageInput struct {
	RecipientID uint   `json:"recipient_id" binding:"required"`
	Subject     string `json:"subject" binding:"required"`
	Body        string `json:"body" binding:"required"`
	AlertID     *uint  `json:"alert_id"`
	RequestID   *uint  `json:"request_id"`
	InvoiceID   *uint  `json:"invoice_id"`
}

func SendMessage(c *gin.Context) {
	var in SendMessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}
	if in.RecipientID == actor.ID {
		utils.Fail(c, "No puede enviarse mensajes a si mismo", models.ErrInvalidState)
		return
	}

	var recipient models.User
	if err := config.DB.First(&recipient, in.RecipientID).Error; err != nil || !recipient.IsActive {
		utils.Fail(c, "Destinatario no encontrado", models.ErrNotFound)
		return
	}

	message := models.Message{
		SenderID:    actor.ID,
		RecipientID: in.RecipientID,
		Subject:     in.Subject,
		Body:        in.Body,
		AlertID:     in.AlertID,
		RequestID:   in.RequestID,
		InvoiceID:   in.InvoiceID,
	}
	if err := config.DB.Create(&message).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo enviar el mensaje", err)
		return
	}
	utils.Created(c, "Mensaje enviado", message)
}

func Inbox(c *gin.Context) {
	var messages []models.Message
	q := config.DB.Preload("Sender").
		Where("recipient_id = ?", middlewares.CurrentUserID(c)).
		Order("created_at DESC").Limit(200)
	if c.Query("unread") == "true" {
		q = q.Where("is_read = ?", false)
	}
	if err := q.Find(&messages).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar los mensajes", err)
		return
	}
	utils.Success(c, "Bandeja de entrada", messages)
}

func SentMessages(c *gin.Context) {
	var messages []models.Message
	err := config.DB.Preload("Recipient").
		Where("sender_id = ?", middlewares.CurrentUserID(c)).
		Order("created_at DESC").Limit(200).
		Find(&messages).Error
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar los mensajes", err)
		return
	}
	utils.Success(c, "Enviados", messages)
}

func MarkMessageRead(c *gin.Context) {
	now := time.Now()
	res := config.DB.Model(&models.Message{}).
		Where("id = ? AND recipient_id = ?", c.Param("id"), middlewares.CurrentUserID(c)).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo marcar el mensaje", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.Fail(c, "Mensaje no encontrado", models.ErrNotFound)
		return
	}
	utils.Success(c, "Mensaje leido", nil)
}
