package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taller-inventory/config"
	"taller-inventory/models"
	"taller-inventory/utils"
)

func ListAudit(c *gin.Context) {
	var entries []models.AuditEntry
	q := config.DB.Preload("Actor").Order("created_at DESC")

	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if actor := c.Query("actor_id"); actor != "" {
		q = q.Where("actor_id = ?", actor)
	}
	if entity := c.Query("entity_type"); entity != "" {
		q = q.Where("entity_type = ?", entity)
		if id := c.Query("entity_id"); id != "" {
			q = q.Where("entity_id = ?", id)
		}
	}
	if from := c.Query("from"); from != "" {
		q = q.Where("created_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		q = q.Where("created_at <= ?", to)
	}

	limit := 100
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}
	offset := 0
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o >= 0 {
		offset = o
	}

	var total int64
	if err := q.Model(&models.AuditEntry{}).Count(&total).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo consultar la auditoria", err)
		return
	}
	if err := q.Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo consultar la auditoria", err)
		return
	}

	utils.Success(c, "Auditoria", gin.H{
		"total":   total,
		"entries": entries,
	})
}
