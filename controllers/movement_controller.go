package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"taller-inventory/config"
	"taller-inventory/middlewares"
	"taller-inventory/models"
	"taller-inventory/utils"
)

type GoodsInInput struct {
	PartID    uint             `json:"part_id" binding:"required"`
	Qty       int              `json:"qty" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Note      string           `json:"note"`
}

// RegisterGoodsIn books supplier stock into a part and refreshes its alert.
func RegisterGoodsIn(c *gin.Context) {
	var in GoodsInInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var movement models.StockMovement
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		part, err := lockPart(tx, in.PartID)
		if err != nil {
			return err
		}
		before := part.QtyOnHand
		if err := part.Receive(in.Qty); err != nil {
			return err
		}
		if err := tx.Save(part).Error; err != nil {
			return err
		}

		price := part.SalePrice
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		}
		movement = models.StockMovement{
			PartID:    part.ID,
			Kind:      models.MovementIn,
			Reason:    models.ReasonGoodsIn,
			Qty:       in.Qty,
			UnitPrice: price,
			ActorID:   actor.ID,
			Note:      in.Note,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
		if err := recomputeStockAlerts(tx, part, actor.ID); err != nil {
			return err
		}
		after := part.QtyOnHand
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditInventory,
			Action:     models.ActionUpdate,
			ActorID:    actor.ID,
			EntityType: "part",
			EntityID:   part.ID,
			EntityRef:  part.Code,
			QtyBefore:  &before,
			QtyAfter:   &after,
			Detail:     "entrada de mercancia",
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo registrar la entrada", err)
		return
	}
	utils.Created(c, "Entrada registrada", movement)
}

func ListMovements(c *gin.Context) {
	var movements []models.StockMovement
	q := config.DB.Preload("Part").Preload("Actor").Order("created_at DESC").Limit(200)

	if partID := c.Query("part_id"); partID != "" {
		q = q.Where("part_id = ?", partID)
	}
	if reason := c.Query("reason"); reason != "" {
		q = q.Where("reason = ?", reason)
	}
	if from := c.Query("from"); from != "" {
		q = q.Where("created_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		q = q.Where("created_at <= ?", to)
	}

	if err := q.Find(&movements).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar los movimientos", err)
		return
	}
	utils.Success(c, "Movimientos", movements)
}

type AdjustStockInput struct {
	PartID uint   `json:"part_id" binding:"required"`
	QtyNew int    `json:"qty_new"`
	Reason string `json:"reason" binding:"required"`
}

// AdjustStock corrects on-hand stock. Warehouse roles apply it in the same
// transaction; any other caller leaves it queued for approval.
func AdjustStock(c *gin.Context) {
	var in AdjustStockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}
	direct := middlewares.CurrentRole(c).CanAdjustDirectly()

	var adjustment models.StockAdjustment
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		part, err := lockPart(tx, in.PartID)
		if err != nil {
			return err
		}

		adjustment = models.StockAdjustment{
			PartID:      part.ID,
			QtyBefore:   part.QtyOnHand,
			QtyAfter:    in.QtyNew,
			Delta:       in.QtyNew - part.QtyOnHand,
			Reason:      in.Reason,
			Status:      models.AdjustmentPending,
			RequestedBy: actor.ID,
		}
		if !direct {
			// Validate now so an impossible correction never sits in the queue.
			if err := part.SetOnHand(in.QtyNew); err != nil {
				return err
			}
			return tx.Create(&adjustment).Error
		}
		return applyAdjustment(tx, part, &adjustment, actor.ID)
	})
	if err != nil {
		utils.Fail(c, "No se pudo registrar el ajuste", err)
		return
	}

	msg := "Ajuste aplicado"
	if adjustment.Status == models.AdjustmentPending {
		msg = "Ajuste en espera de aprobacion"
	}
	utils.Created(c, msg, adjustment)
}

// applyAdjustment mutates the locked part, writes the movement and marks
// the adjustment as applied.
func applyAdjustment(tx *gorm.DB, part *models.Part, adj *models.StockAdjustment, deciderID uint) error {
	before := part.QtyOnHand
	if err := part.SetOnHand(adj.QtyAfter); err != nil {
		return err
	}
	if err := tx.Save(part).Error; err != nil {
		return err
	}

	kind := models.MovementIn
	qty := adj.QtyAfter - before
	if qty < 0 {
		kind = models.MovementOut
		qty = -qty
	}
	if qty > 0 {
		movement := models.StockMovement{
			PartID:  part.ID,
			Kind:    kind,
			Reason:  models.ReasonAdjustment,
			Qty:     qty,
			ActorID: deciderID,
			Note:    adj.Reason,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
	}

	now := time.Now()
	adj.QtyBefore = before
	adj.Delta = adj.QtyAfter - before
	adj.Status = models.AdjustmentApplied
	adj.DecidedBy = &deciderID
	adj.DecidedAt = &now
	if adj.ID == 0 {
		if err := tx.Create(adj).Error; err != nil {
			return err
		}
	} else if err := tx.Save(adj).Error; err != nil {
		return err
	}

	if err := recomputeStockAlerts(tx, part, deciderID); err != nil {
		return err
	}
	after := part.QtyOnHand
	return recordAudit(tx, models.AuditEntry{
		Category:   models.AuditInventory,
		Action:     models.ActionAdjust,
		ActorID:    deciderID,
		EntityType: "part",
		EntityID:   part.ID,
		EntityRef:  part.Code,
		QtyBefore:  &before,
		QtyAfter:   &after,
		Detail:     adj.Reason,
	})
}

type DecideAdjustmentInput struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// DecideAdjustment approves or rejects a queued correction.
func DecideAdjustment(c *gin.Context) {
	var in DecideAdjustmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var adjustment models.StockAdjustment
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&adjustment, c.Param("id")).Error; err != nil {
			return fmt.Errorf("%w: ajuste", models.ErrNotFound)
		}
		if adjustment.Status != models.AdjustmentPending {
			return fmt.Errorf("%w: el ajuste ya fue decidido", models.ErrInvalidState)
		}

		if !in.Approve {
			now := time.Now()
			adjustment.Status = models.AdjustmentRejected
			adjustment.DecidedBy = &actor.ID
			adjustment.DecidedAt = &now
			return tx.Save(&adjustment).Error
		}

		part, err := lockPart(tx, adjustment.PartID)
		if err != nil {
			return err
		}
		return applyAdjustment(tx, part, &adjustment, actor.ID)
	})
	if err != nil {
		utils.Fail(c, "No se pudo decidir el ajuste", err)
		return
	}
	utils.Success(c, "Ajuste decidido", adjustment)
}

func ListAdjustments(c *gin.Context) {
	var adjustments []models.StockAdjustment
	q := config.DB.Preload("Part").Order("created_at DESC").Limit(200)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&adjustments).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar los ajustes", err)
		return
	}
	utils.Success(c, "Ajustes", adjustments)
}
