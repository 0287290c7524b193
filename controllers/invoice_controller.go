package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"taller-inventory/config"
	"taller-inventory/models"
	"taller-inventory/utils"
)

type InvoiceLineInput struct {
	PartID   uint            `json:"part_id" binding:"required"`
	Qty      int             `json:"qty" binding:"required,gt=0"`
	Discount decimal.Decimal `json:"discount"`
}

type CreateInvoiceInput struct {
	RequestID *uint `json:"request_id"`

	// Required when the invoice is not derived from a request.
	ClientID  uint               `json:"client_id"`
	VehicleID uint               `json:"vehicle_id"`
	Lines     []InvoiceLineInput `json:"lines"`

	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
	Discount      decimal.Decimal      `json:"discount"`
	DueDate       *time.Time           `json:"due_date"`
	Notes         string               `json:"notes"`
}

// CreateInvoice opens an invoice in EN_ESPERA. Derived from a delivered
// request it bills the delivered-minus-returned quantity of every line at
// the snapshot price; free-standing it reserves stock for its lines the
// same way a request would.
func CreateInvoice(c *gin.Context) {
	var in CreateInvoiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}
	if !in.PaymentMethod.Valid() {
		utils.Error(c, http.StatusBadRequest, "Metodo de pago desconocido", nil)
		return
	}
	if in.Discount.IsNegative() {
		utils.Fail(c, "Descuento invalido", models.ErrInvalidQuantity)
		return
	}
	if in.RequestID == nil && len(in.Lines) == 0 {
		utils.Error(c, http.StatusBadRequest, "La factura necesita una solicitud o lineas", nil)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var invoice models.Invoice
	err = withNumberRetry(func(tx *gorm.DB) error {
		invoice = models.Invoice{
			SellerID:      actor.ID,
			Status:        models.InvoiceAwaiting,
			PaymentMethod: in.PaymentMethod,
			Discount:      in.Discount,
			DueDate:       in.DueDate,
			Notes:         in.Notes,
		}

		var lines []models.InvoiceLine
		if in.RequestID != nil {
			request, err := lockRequest(tx, fmt.Sprint(*in.RequestID))
			if err != nil {
				return err
			}
			if request.Status != models.RequestDelivered {
				return fmt.Errorf("%w: la solicitud %s esta %s, debe estar %s",
					models.ErrInvalidState, request.Number, request.Status, models.RequestDelivered)
			}

			var active int64
			err = tx.Model(&models.Invoice{}).
				Where("request_id = ? AND status <> ?", request.ID, models.InvoiceVoided).
				Count(&active).Error
			if err != nil {
				return err
			}
			if active > 0 {
				return fmt.Errorf("%w: la solicitud %s ya tiene factura activa",
					models.ErrDuplicate, request.Number)
			}

			invoice.RequestID = &request.ID
			invoice.ClientID = request.ClientID
			invoice.VehicleID = request.VehicleID

			for i := range request.Items {
				item := &request.Items[i]
				qty := item.BillableQty()
				if qty <= 0 {
					continue
				}
				itemID := item.ID
				lines = append(lines, models.InvoiceLine{
					PartID:        item.PartID,
					RequestItemID: &itemID,
					Qty:           qty,
					UnitPrice:     item.UnitPrice,
					Discount:      decimal.Zero,
					Subtotal:      models.LineSubtotal(qty, item.UnitPrice, decimal.Zero),
				})
			}
			if len(lines) == 0 {
				return fmt.Errorf("%w: la solicitud no tiene lineas facturables", models.ErrInvalidState)
			}
		} else {
			var vehicle models.Vehicle
			if err := tx.First(&vehicle, in.VehicleID).Error; err != nil {
				return fmt.Errorf("%w: vehiculo", models.ErrNotFound)
			}
			if vehicle.ClientID != in.ClientID {
				return fmt.Errorf("%w: el vehiculo no pertenece al cliente", models.ErrInvalidState)
			}
			invoice.ClientID = in.ClientID
			invoice.VehicleID = in.VehicleID

			for _, l := range in.Lines {
				if l.Discount.IsNegative() {
					return fmt.Errorf("%w: descuento de linea invalido", models.ErrInvalidQuantity)
				}
				part, err := lockPart(tx, l.PartID)
				if err != nil {
					return err
				}
				if !part.IsActive {
					return fmt.Errorf("%w: el repuesto %s esta inactivo", models.ErrInvalidState, part.Code)
				}
				if err := part.Reserve(l.Qty); err != nil {
					return err
				}
				if err := tx.Save(part).Error; err != nil {
					return err
				}
				lines = append(lines, models.InvoiceLine{
					PartID:    part.ID,
					Qty:       l.Qty,
					UnitPrice: part.SalePrice,
					Discount:  l.Discount,
					Subtotal:  models.LineSubtotal(l.Qty, part.SalePrice, l.Discount),
				})
			}
		}

		totals := models.ComputeTotals(lines, in.Discount, config.App.TaxPercent)
		invoice.Subtotal = totals.Subtotal
		invoice.Tax = totals.Tax
		invoice.Total = totals.Total
		invoice.Lines = lines

		number, err := nextDocNumber(tx, "invoices", config.App.InvoicePrefix, time.Now())
		if err != nil {
			return err
		}
		invoice.Number = number

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		if invoice.RequestID != nil {
			err = resolveAlertsWhere(tx, actor.ID, "factura creada", func(q *gorm.DB) *gorm.DB {
				return q.Where("request_id = ? AND type = ?", *invoice.RequestID, models.AlertInvoicePending)
			})
			if err != nil {
				return err
			}
		}
		alert := models.Alert{
			Type:      models.AlertInvoiceCreated,
			Priority:  models.PriorityLow,
			Message:   fmt.Sprintf("Factura %s creada por %s", invoice.Number, totalString(invoice.Total)),
			InvoiceID: &invoice.ID,
			RequestID: invoice.RequestID,
		}
		if err := createAlert(tx, &alert, actor.ID, models.BillingRoles()); err != nil {
			return err
		}

		return recordAudit(tx, models.AuditEntry{
			Category:    models.AuditInvoices,
			Action:      models.ActionCreate,
			ActorID:     actor.ID,
			EntityType:  "invoice",
			EntityID:    invoice.ID,
			EntityRef:   invoice.Number,
			StatusAfter: string(models.InvoiceAwaiting),
			Detail:      fmt.Sprintf("total %s", totalString(invoice.Total)),
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo crear la factura", err)
		return
	}
	utils.Created(c, "Factura creada", invoice)
}

func totalString(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func ListInvoices(c *gin.Context) {
	var invoices []models.Invoice
	q := config.DB.Preload("Client").Preload("Vehicle").Preload("Seller").
		Order("created_at DESC").Limit(200)

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}
	if from := c.Query("from"); from != "" {
		q = q.Where("created_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		q = q.Where("created_at <= ?", to)
	}

	if err := q.Find(&invoices).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar las facturas", err)
		return
	}
	utils.Success(c, "Facturas", invoices)
}

func GetInvoice(c *gin.Context) {
	var invoice models.Invoice
	err := config.DB.Preload("Client").Preload("Vehicle").Preload("Seller").
		Preload("Request").Preload("Lines").Preload("Lines.Part").
		Preload("Payments").Preload("Payments.ReceivedBy").
		First(&invoice, c.Param("id")).Error
	if err != nil {
		utils.Fail(c, "Factura no encontrada", models.ErrNotFound)
		return
	}
	utils.Success(c, "Factura", invoice)
}

// lockInvoice loads an invoice with lines and payments under FOR UPDATE.
func lockInvoice(tx *gorm.DB, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := tx.Preload("Lines").Preload("Payments").
		Clauses(lockForUpdate()).
		First(&invoice, id).Error
	if err != nil {
		return nil, fmt.Errorf("%w: factura", models.ErrNotFound)
	}
	return &invoice, nil
}

// ConfirmInvoice moves EN_ESPERA to PENDIENTE and flags it for collection.
func ConfirmInvoice(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var invoice *models.Invoice
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		invoice, err = lockInvoice(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if invoice.Status != models.InvoiceAwaiting {
			return fmt.Errorf("%w: la factura %s esta %s", models.ErrInvalidState,
				invoice.Number, invoice.Status)
		}
		return confirmInvoiceCore(tx, invoice, actor.ID)
	})
	if err != nil {
		utils.Fail(c, "No se pudo confirmar la factura", err)
		return
	}
	utils.Success(c, "Factura confirmada", invoice)
}

// confirmInvoiceCore flips the status and raises the collection alert.
// Shared by the explicit confirm endpoint and the implicit confirm that a
// first payment performs.
func confirmInvoiceCore(tx *gorm.DB, invoice *models.Invoice, actorID uint) error {
	invoice.Status = models.InvoicePending
	if err := tx.Save(invoice).Error; err != nil {
		return err
	}

	alert := models.Alert{
		Type:      models.AlertInvoicePending,
		Priority:  models.PriorityMedium,
		Message:   fmt.Sprintf("Factura %s pendiente de pago por %s", invoice.Number, totalString(invoice.Balance())),
		InvoiceID: &invoice.ID,
		RequestID: invoice.RequestID,
	}
	if err := createAlert(tx, &alert, actorID, models.BillingRoles()); err != nil {
		return err
	}

	return recordAudit(tx, models.AuditEntry{
		Category:     models.AuditInvoices,
		Action:       models.ActionConfirm,
		ActorID:      actorID,
		EntityType:   "invoice",
		EntityID:     invoice.ID,
		EntityRef:    invoice.Number,
		StatusBefore: string(models.InvoiceAwaiting),
		StatusAfter:  string(models.InvoicePending),
	})
}

type RecordPaymentInput struct {
	Amount    decimal.Decimal      `json:"amount" binding:"required"`
	Method    models.PaymentMethod `json:"method" binding:"required"`
	Reference string               `json:"reference"`
	Note      string               `json:"note"`
}

// RecordPayment books a partial or full payment. Paying an EN_ESPERA
// invoice confirms it implicitly; the payment that clears the balance
// settles stock and closes the linked request.
func RecordPayment(c *gin.Context) {
	var in RecordPaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}
	if !in.Method.Valid() {
		utils.Error(c, http.StatusBadRequest, "Metodo de pago desconocido", nil)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var invoice *models.Invoice
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		invoice, err = lockInvoice(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if err := invoice.ValidatePayment(in.Amount); err != nil {
			return err
		}

		if invoice.Status == models.InvoiceAwaiting {
			if err := confirmInvoiceCore(tx, invoice, actor.ID); err != nil {
				return err
			}
		}

		payment := models.Payment{
			InvoiceID:    invoice.ID,
			Amount:       in.Amount,
			Method:       in.Method,
			Reference:    in.Reference,
			Note:         in.Note,
			ReceivedByID: actor.ID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		invoice.Payments = append(invoice.Payments, payment)

		if err := recordAudit(tx, models.AuditEntry{
			Category:   models.AuditInvoices,
			Action:     models.ActionPay,
			ActorID:    actor.ID,
			EntityType: "invoice",
			EntityID:   invoice.ID,
			EntityRef:  invoice.Number,
			Detail:     fmt.Sprintf("abono %s, saldo %s", totalString(in.Amount), totalString(invoice.Balance())),
		}); err != nil {
			return err
		}

		if invoice.Balance().IsZero() {
			return settleInvoiceCore(tx, invoice, actor.ID)
		}
		return nil
	})
	if err != nil {
		utils.Fail(c, "No se pudo registrar el pago", err)
		return
	}
	utils.Success(c, "Pago registrado", invoice)
}

// settleInvoiceCore runs when the balance hits zero: stock reserved for
// every line is deducted for good, each deduction gets a sale movement
// wired back to its line, and the linked request closes as FACTURADA.
func settleInvoiceCore(tx *gorm.DB, invoice *models.Invoice, actorID uint) error {
	for i := range invoice.Lines {
		line := &invoice.Lines[i]
		part, err := lockPart(tx, line.PartID)
		if err != nil {
			return err
		}
		if err := part.Settle(line.Qty); err != nil {
			return err
		}
		if err := tx.Save(part).Error; err != nil {
			return err
		}

		movement := models.StockMovement{
			PartID:    part.ID,
			Kind:      models.MovementOut,
			Reason:    models.ReasonSale,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			ActorID:   actorID,
			RequestID: invoice.RequestID,
			Note:      invoice.Number,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}
		line.MovementID = &movement.ID
		if err := tx.Save(line).Error; err != nil {
			return err
		}

		if err := recomputeStockAlerts(tx, part, actorID); err != nil {
			return err
		}
	}

	invoice.Status = models.InvoicePaid
	if err := tx.Save(invoice).Error; err != nil {
		return err
	}

	if invoice.RequestID != nil {
		var request models.PartsRequest
		if err := tx.Preload("Items").Clauses(lockForUpdate()).
			First(&request, *invoice.RequestID).Error; err != nil {
			return err
		}
		if !request.CanTransitionTo(models.RequestInvoiced) {
			return fmt.Errorf("%w: la solicitud %s esta %s", models.ErrInvalidState,
				request.Number, request.Status)
		}
		for i := range request.Items {
			item := &request.Items[i]
			if item.Status == models.ItemDelivered {
				item.Status = models.ItemInvoiced
				if err := tx.Save(item).Error; err != nil {
					return err
				}
			}
		}
		now := time.Now()
		request.Status = models.RequestInvoiced
		request.InvoicedByID = &actorID
		request.InvoicedAt = &now
		if err := tx.Save(&request).Error; err != nil {
			return err
		}
	}

	err := resolveAlertsWhere(tx, actorID, "factura pagada", func(q *gorm.DB) *gorm.DB {
		return q.Where("invoice_id = ?", invoice.ID)
	})
	if err != nil {
		return err
	}
	alert := models.Alert{
		Type:      models.AlertInvoicePaid,
		Priority:  models.PriorityLow,
		Message:   fmt.Sprintf("Factura %s pagada en su totalidad", invoice.Number),
		InvoiceID: &invoice.ID,
		RequestID: invoice.RequestID,
	}
	return createAlert(tx, &alert, actorID, models.BillingRoles())
}

type VoidInvoiceInput struct {
	Reason string `json:"reason" binding:"required"`
}

// VoidInvoice cancels an invoice. Voiding a paid one reverses the
// settlement: stock comes back with reversal movements and the linked
// request reopens as ENTREGADA with its reservations restored.
func VoidInvoice(c *gin.Context) {
	var in VoidInvoiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var invoice *models.Invoice
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		invoice, err = lockInvoice(tx, c.Param("id"))
		if err != nil {
			return err
		}
		if invoice.Status == models.InvoiceVoided {
			return fmt.Errorf("%w: la factura %s ya esta anulada", models.ErrInvalidState, invoice.Number)
		}
		return voidInvoiceCore(tx, invoice, actor.ID, in.Reason)
	})
	if err != nil {
		utils.Fail(c, "No se pudo anular la factura", err)
		return
	}
	utils.Success(c, "Factura anulada", invoice)
}

// voidInvoiceCore reverses a non-voided invoice inside the caller's
// transaction: paid invoices get their stock back with reversal movements
// and the linked request reopens; unpaid free-standing invoices release the
// reservation taken at creation.
func voidInvoiceCore(tx *gorm.DB, invoice *models.Invoice, actorID uint, reason string) error {
	wasPaid := invoice.Status == models.InvoicePaid
	before := invoice.Status

	for i := range invoice.Lines {
		line := &invoice.Lines[i]
		part, err := lockPart(tx, line.PartID)
		if err != nil {
			return err
		}
		if wasPaid {
			// Settlement already removed the stock: bring it back, and
			// re-reserve for request lines so the reopened request keeps
			// its hold.
			if err := part.Receive(line.Qty); err != nil {
				return err
			}
			if line.RequestItemID != nil {
				if err := part.Reserve(line.Qty); err != nil {
					return err
				}
			}
			movement := models.StockMovement{
				PartID:    part.ID,
				Kind:      models.MovementIn,
				Reason:    models.ReasonVoidReversal,
				Qty:       line.Qty,
				UnitPrice: line.UnitPrice,
				ActorID:   actorID,
				RequestID: invoice.RequestID,
				Note:      fmt.Sprintf("anulacion %s: %s", invoice.Number, reason),
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		} else if line.RequestItemID == nil {
			// Free-standing unpaid invoice: drop the reservation taken at
			// creation. Request-backed reservations stay with the request.
			if err := part.Release(line.Qty); err != nil {
				return err
			}
		}
		if err := tx.Save(part).Error; err != nil {
			return err
		}
		if wasPaid {
			if err := recomputeStockAlerts(tx, part, actorID); err != nil {
				return err
			}
		}
	}

	if invoice.RequestID != nil && wasPaid {
		var request models.PartsRequest
		if err := tx.Preload("Items").Clauses(lockForUpdate()).
			First(&request, *invoice.RequestID).Error; err != nil {
			return err
		}
		for i := range request.Items {
			item := &request.Items[i]
			if item.Status == models.ItemInvoiced {
				item.Status = models.ItemDelivered
				if err := tx.Save(item).Error; err != nil {
					return err
				}
			}
		}
		request.Status = models.RequestDelivered
		request.InvoicedByID = nil
		request.InvoicedAt = nil
		if err := tx.Save(&request).Error; err != nil {
			return err
		}
	}

	now := time.Now()
	invoice.Status = models.InvoiceVoided
	invoice.VoidedByID = &actorID
	invoice.VoidedAt = &now
	invoice.VoidReason = reason
	if err := tx.Save(invoice).Error; err != nil {
		return err
	}

	err := resolveAlertsWhere(tx, actorID, "factura anulada", func(q *gorm.DB) *gorm.DB {
		return q.Where("invoice_id = ?", invoice.ID)
	})
	if err != nil {
		return err
	}
	alert := models.Alert{
		Type:      models.AlertInvoiceVoided,
		Priority:  models.PriorityMedium,
		Message:   fmt.Sprintf("Factura %s anulada: %s", invoice.Number, reason),
		InvoiceID: &invoice.ID,
		RequestID: invoice.RequestID,
	}
	if err := createAlert(tx, &alert, actorID, models.BillingRoles()); err != nil {
		return err
	}

	return recordAudit(tx, models.AuditEntry{
		Category:     models.AuditInvoices,
		Action:       models.ActionCancel,
		ActorID:      actorID,
		EntityType:   "invoice",
		EntityID:     invoice.ID,
		EntityRef:    invoice.Number,
		StatusBefore: string(before),
		StatusAfter:  string(models.InvoiceVoided),
		Detail:       reason,
	})
}
