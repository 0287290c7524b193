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

type RequestItemInput struct {
	PartID uint `json:"part_id" binding:"required"`
	Qty    int  `json:"qty" binding:"required,gt=0"`
}

type CreateRequestInput struct {
	ClientID  uint               `json:"client_id" binding:"required"`
	VehicleID uint               `json:"vehicle_id" binding:"required"`
	Notes     string             `json:"notes"`
	Items     []RequestItemInput `json:"items" binding:"required,min=1"`
}

// CreateRequest opens a parts request and reserves stock for every line.
// All-or-nothing: one part without stock aborts the whole request.
func CreateRequest(c *gin.Context) {
	var in CreateRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, in.VehicleID).Error; err != nil {
		utils.Fail(c, "Vehiculo no encontrado", models.ErrNotFound)
		return
	}
	if vehicle.ClientID != in.ClientID {
		utils.Fail(c, "El vehiculo no pertenece al cliente", models.ErrInvalidState)
		return
	}

	var request models.PartsRequest
	err = withNumberRetry(func(tx *gorm.DB) error {
		number, err := nextDocNumber(tx, "parts_requests", config.App.RequestPrefix, time.Now())
		if err != nil {
			return err
		}

		request = models.PartsRequest{
			Number:     number,
			MechanicID: actor.ID,
			ClientID:   in.ClientID,
			VehicleID:  in.VehicleID,
			Status:     models.RequestPending,
			Notes:      in.Notes,
		}

		for _, item := range in.Items {
			part, err := lockPart(tx, item.PartID)
			if err != nil {
				return err
			}
			if !part.IsActive {
				return fmt.Errorf("%w: el repuesto %s esta inactivo", models.ErrInvalidState, part.Code)
			}
			if err := part.Reserve(item.Qty); err != nil {
				return err
			}
			if err := tx.Save(part).Error; err != nil {
				return err
			}
			request.Items = append(request.Items, models.RequestItem{
				PartID:       part.ID,
				QtyRequested: item.Qty,
				UnitPrice:    part.SalePrice,
				Status:       models.ItemReserved,
			})
		}

		if err := tx.Create(&request).Error; err != nil {
			return err
		}

		alert := models.Alert{
			Type:      models.AlertRequestPending,
			Priority:  models.PriorityHigh,
			Message:   fmt.Sprintf("Solicitud %s pendiente de aprobacion", request.Number),
			RequestID: &request.ID,
		}
		if err := createAlert(tx, &alert, actor.ID, models.StockRoles()); err != nil {
			return err
		}

		return recordAudit(tx, models.AuditEntry{
			Category:    models.AuditRequests,
			Action:      models.ActionCreate,
			ActorID:     actor.ID,
			EntityType:  "parts_request",
			EntityID:    request.ID,
			EntityRef:   request.Number,
			StatusAfter: string(models.RequestPending),
			Detail:      fmt.Sprintf("%d lineas", len(request.Items)),
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo crear la solicitud", err)
		return
	}
	utils.Created(c, "Solicitud creada", request)
}

func ListRequests(c *gin.Context) {
	var requests []models.PartsRequest
	q := config.DB.Preload("Mechanic").Preload("Client").Preload("Vehicle").
		Order("created_at DESC").Limit(200)

	// Mechanics only see their own requests.
	if middlewares.CurrentRole(c) == models.RoleMechanic {
		q = q.Where("mechanic_id = ?", middlewares.CurrentUserID(c))
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if mechanic := c.Query("mechanic_id"); mechanic != "" {
		q = q.Where("mechanic_id = ?", mechanic)
	}

	if err := q.Find(&requests).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar las solicitudes", err)
		return
	}
	utils.Success(c, "Solicitudes", requests)
}

func GetRequest(c *gin.Context) {
	var request models.PartsRequest
	err := config.DB.Preload("Mechanic").Preload("Client").Preload("Vehicle").
		Preload("Items").Preload("Items.Part").
		First(&request, c.Param("id")).Error
	if err != nil {
		utils.Fail(c, "Solicitud no encontrada", models.ErrNotFound)
		return
	}
	if middlewares.CurrentRole(c) == models.RoleMechanic &&
		request.MechanicID != middlewares.CurrentUserID(c) {
		utils.Fail(c, "Solicitud ajena", models.ErrUnauthorized)
		return
	}
	utils.Success(c, "Solicitud", request)
}

// lockRequest loads a request with items under FOR UPDATE.
func lockRequest(tx *gorm.DB, id string) (*models.PartsRequest, error) {
	var request models.PartsRequest
	err := tx.Preload("Items").
		Clauses(lockForUpdate()).
		First(&request, id).Error
	if err != nil {
		return nil, fmt.Errorf("%w: solicitud", models.ErrNotFound)
	}
	return &request, nil
}

type ApproveRequestInput struct {
	// Per-line approved quantity, keyed by request item id. Lines left out
	// are approved in full.
	Quantities map[uint]int `json:"quantities"`
	Note       string       `json:"note"`
}

// ApproveRequest moves PENDIENTE to APROBADA. Approving less than was
// requested releases the difference back to available stock.
func ApproveRequest(c *gin.Context) {
	var in ApproveRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var request *models.PartsRequest
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		request, err = lockRequest(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if !request.CanTransitionTo(models.RequestApproved) {
			return fmt.Errorf("%w: la solicitud %s esta %s", models.ErrInvalidState,
				request.Number, request.Status)
		}

		approvedAny := false
		for i := range request.Items {
			item := &request.Items[i]
			qty := item.QtyRequested
			if v, ok := in.Quantities[item.ID]; ok {
				qty = v
			}
			if err := item.ValidateApproval(qty); err != nil {
				return err
			}

			if release := item.QtyRequested - qty; release > 0 {
				part, err := lockPart(tx, item.PartID)
				if err != nil {
					return err
				}
				if err := part.Release(release); err != nil {
					return err
				}
				if err := tx.Save(part).Error; err != nil {
					return err
				}
			}

			item.QtyApproved = qty
			if qty == 0 {
				item.Status = models.ItemRejected
			} else {
				item.Status = models.ItemApproved
				approvedAny = true
			}
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}
		if !approvedAny {
			return fmt.Errorf("%w: ninguna linea aprobada, use rechazar", models.ErrInvalidState)
		}

		now := time.Now()
		request.Status = models.RequestApproved
		request.ApprovedByID = &actor.ID
		request.ApprovedAt = &now
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		err = resolveAlertsWhere(tx, actor.ID, "solicitud aprobada", func(q *gorm.DB) *gorm.DB {
			return q.Where("request_id = ? AND type = ?", request.ID, models.AlertRequestPending)
		})
		if err != nil {
			return err
		}

		return recordAudit(tx, models.AuditEntry{
			Category:     models.AuditRequests,
			Action:       models.ActionApprove,
			ActorID:      actor.ID,
			EntityType:   "parts_request",
			EntityID:     request.ID,
			EntityRef:    request.Number,
			StatusBefore: string(models.RequestPending),
			StatusAfter:  string(models.RequestApproved),
			Detail:       in.Note,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo aprobar la solicitud", err)
		return
	}
	utils.Success(c, "Solicitud aprobada", request)
}

type RejectRequestInput struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectRequest releases every reservation and closes the request.
func RejectRequest(c *gin.Context) {
	var in RejectRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var request *models.PartsRequest
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		request, err = lockRequest(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if !request.CanTransitionTo(models.RequestRejected) {
			return fmt.Errorf("%w: la solicitud %s esta %s", models.ErrInvalidState,
				request.Number, request.Status)
		}

		for i := range request.Items {
			item := &request.Items[i]
			part, err := lockPart(tx, item.PartID)
			if err != nil {
				return err
			}
			if err := part.Release(item.QtyRequested); err != nil {
				return err
			}
			if err := tx.Save(part).Error; err != nil {
				return err
			}
			item.Status = models.ItemRejected
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}

		request.Status = models.RequestRejected
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		err = resolveAlertsWhere(tx, actor.ID, "solicitud rechazada", func(q *gorm.DB) *gorm.DB {
			return q.Where("request_id = ? AND type = ?", request.ID, models.AlertRequestPending)
		})
		if err != nil {
			return err
		}

		return recordAudit(tx, models.AuditEntry{
			Category:     models.AuditRequests,
			Action:       models.ActionReject,
			ActorID:      actor.ID,
			EntityType:   "parts_request",
			EntityID:     request.ID,
			EntityRef:    request.Number,
			StatusBefore: string(models.RequestPending),
			StatusAfter:  string(models.RequestRejected),
			Detail:       in.Reason,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo rechazar la solicitud", err)
		return
	}
	utils.Success(c, "Solicitud rechazada", request)
}

type DeliverRequestInput struct {
	// Per-line delivered quantity, keyed by request item id. Lines left out
	// are delivered in full.
	Quantities map[uint]int `json:"quantities"`
}

// DeliverRequest hands the parts to the mechanic. Physical stock stays
// reserved until the invoice is paid; delivering less than was approved
// releases the difference.
func DeliverRequest(c *gin.Context) {
	var in DeliverRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var request *models.PartsRequest
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		request, err = lockRequest(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if !request.CanTransitionTo(models.RequestDelivered) {
			return fmt.Errorf("%w: la solicitud %s esta %s", models.ErrInvalidState,
				request.Number, request.Status)
		}

		deliveredAny := false
		for i := range request.Items {
			item := &request.Items[i]
			if item.Status == models.ItemRejected {
				continue
			}
			qty := item.QtyApproved
			if v, ok := in.Quantities[item.ID]; ok {
				qty = v
			}
			if err := item.ValidateDelivery(qty); err != nil {
				return err
			}

			if release := item.QtyApproved - qty; release > 0 {
				part, err := lockPart(tx, item.PartID)
				if err != nil {
					return err
				}
				if err := part.Release(release); err != nil {
					return err
				}
				if err := tx.Save(part).Error; err != nil {
					return err
				}
			}

			item.QtyDelivered = qty
			if qty == 0 {
				item.Status = models.ItemRejected
			} else {
				item.Status = models.ItemDelivered
				deliveredAny = true
			}
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}
		if !deliveredAny {
			return fmt.Errorf("%w: ninguna linea entregada", models.ErrInvalidState)
		}

		now := time.Now()
		request.Status = models.RequestDelivered
		request.DeliveredByID = &actor.ID
		request.DeliveredAt = &now
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		alert := models.Alert{
			Type:      models.AlertInvoicePending,
			Priority:  models.PriorityMedium,
			Message:   fmt.Sprintf("Solicitud %s entregada, pendiente de facturar", request.Number),
			RequestID: &request.ID,
		}
		if err := createAlert(tx, &alert, actor.ID, models.BillingRoles()); err != nil {
			return err
		}

		return recordAudit(tx, models.AuditEntry{
			Category:     models.AuditRequests,
			Action:       models.ActionDeliver,
			ActorID:      actor.ID,
			EntityType:   "parts_request",
			EntityID:     request.ID,
			EntityRef:    request.Number,
			StatusBefore: string(models.RequestApproved),
			StatusAfter:  string(models.RequestDelivered),
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo entregar la solicitud", err)
		return
	}
	utils.Success(c, "Solicitud entregada", request)
}

type ReturnItemsInput struct {
	// Quantities to return, keyed by request item id.
	Quantities map[uint]int `json:"quantities" binding:"required"`
	Reason     string       `json:"reason" binding:"required"`
}

// ReturnItems takes unused parts back from the mechanic before invoicing.
// The reservation is released; physical stock was never deducted. When
// every line ends up fully returned the request closes as ANULADA,
// otherwise it becomes DEVOLUCION_PARCIAL.
func ReturnItems(c *gin.Context) {
	var in ReturnItemsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}
	if len(in.Quantities) == 0 {
		utils.Fail(c, "Nada que devolver", models.ErrInvalidQuantity)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var request *models.PartsRequest
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		request, err = lockRequest(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if !request.CanTransitionTo(models.RequestPartialReturn) {
			return fmt.Errorf("%w: la solicitud %s esta %s", models.ErrInvalidState,
				request.Number, request.Status)
		}

		// An open invoice settles against the reservation; releasing it here
		// would leave the invoice unpayable. The invoice must be voided first.
		var invoices int64
		err = tx.Model(&models.Invoice{}).
			Where("request_id = ? AND status <> ?", request.ID, models.InvoiceVoided).
			Count(&invoices).Error
		if err != nil {
			return err
		}
		if invoices > 0 {
			return fmt.Errorf("%w: la solicitud tiene una factura activa", models.ErrInvalidState)
		}

		itemsByID := make(map[uint]*models.RequestItem, len(request.Items))
		for i := range request.Items {
			itemsByID[request.Items[i].ID] = &request.Items[i]
		}

		for itemID, qty := range in.Quantities {
			item, ok := itemsByID[itemID]
			if !ok {
				return fmt.Errorf("%w: linea %d", models.ErrNotFound, itemID)
			}
			if err := item.ValidateReturn(qty); err != nil {
				return err
			}

			part, err := lockPart(tx, item.PartID)
			if err != nil {
				return err
			}
			if err := part.Release(qty); err != nil {
				return err
			}
			if err := tx.Save(part).Error; err != nil {
				return err
			}

			movement := models.StockMovement{
				PartID:    part.ID,
				Kind:      models.MovementIn,
				Reason:    models.ReasonTechReturn,
				Qty:       qty,
				UnitPrice: item.UnitPrice,
				ActorID:   actor.ID,
				RequestID: &request.ID,
				Note:      in.Reason,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}

			item.QtyReturned += qty
			if item.ReturnableQty() == 0 {
				item.Status = models.ItemReturned
			}
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}

		allClosed := true
		for i := range request.Items {
			s := request.Items[i].Status
			if s != models.ItemReturned && s != models.ItemRejected {
				allClosed = false
				break
			}
		}

		before := request.Status
		if allClosed {
			request.Status = models.RequestCancelled
		} else {
			request.Status = models.RequestPartialReturn
		}
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		if allClosed {
			err = resolveAlertsWhere(tx, actor.ID, "solicitud anulada por devolucion total", func(q *gorm.DB) *gorm.DB {
				return q.Where("request_id = ?", request.ID)
			})
			if err != nil {
				return err
			}
		}

		return recordAudit(tx, models.AuditEntry{
			Category:     models.AuditRequests,
			Action:       models.ActionReturn,
			ActorID:      actor.ID,
			EntityType:   "parts_request",
			EntityID:     request.ID,
			EntityRef:    request.Number,
			StatusBefore: string(before),
			StatusAfter:  string(request.Status),
			Detail:       in.Reason,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo registrar la devolucion", err)
		return
	}
	utils.Success(c, "Devolucion registrada", request)
}

type CancelRequestInput struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelRequest closes an open request and releases whatever is still
// reserved. Blocked while a non-voided invoice points at the request.
func CancelRequest(c *gin.Context) {
	var in CancelRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var request *models.PartsRequest
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		request, err = lockRequest(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if !request.CanTransitionTo(models.RequestCancelled) {
			return fmt.Errorf("%w: la solicitud %s esta %s", models.ErrInvalidState,
				request.Number, request.Status)
		}

		var invoices int64
		err = tx.Model(&models.Invoice{}).
			Where("request_id = ? AND status <> ?", request.ID, models.InvoiceVoided).
			Count(&invoices).Error
		if err != nil {
			return err
		}
		if invoices > 0 {
			return fmt.Errorf("%w: la solicitud tiene una factura activa", models.ErrInvalidState)
		}

		for i := range request.Items {
			item := &request.Items[i]
			remaining := item.ReturnableQty()
			if remaining > 0 {
				part, err := lockPart(tx, item.PartID)
				if err != nil {
					return err
				}
				if err := part.Release(remaining); err != nil {
					return err
				}
				if err := tx.Save(part).Error; err != nil {
					return err
				}
				item.QtyReturned += remaining
			}
			if item.Status != models.ItemRejected {
				item.Status = models.ItemReturned
			}
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}

		before := request.Status
		request.Status = models.RequestCancelled
		if err := tx.Save(request).Error; err != nil {
			return err
		}

		err = resolveAlertsWhere(tx, actor.ID, "solicitud anulada", func(q *gorm.DB) *gorm.DB {
			return q.Where("request_id = ?", request.ID)
		})
		if err != nil {
			return err
		}

		return recordAudit(tx, models.AuditEntry{
			Category:     models.AuditRequests,
			Action:       models.ActionCancel,
			ActorID:      actor.ID,
			EntityType:   "parts_request",
			EntityID:     request.ID,
			EntityRef:    request.Number,
			StatusBefore: string(before),
			StatusAfter:  string(models.RequestCancelled),
			Detail:       in.Reason,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo anular la solicitud", err)
		return
	}
	utils.Success(c, "Solicitud anulada", request)
}
