package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taller-inventory/config"
	"taller-inventory/middlewares"
	"taller-inventory/models"
	"taller-inventory/utils"
)

// currentUser loads the authenticated user row. Handlers need the full row
// for audit entries and actor references.
func currentUser(c *gin.Context) (*models.User, error) {
	var user models.User
	err := config.DB.First(&user, middlewares.CurrentUserID(c)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: usuario", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: usuario inactivo", models.ErrUnauthorized)
	}
	return &user, nil
}

func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// lockPart loads a part row under FOR UPDATE. Every workflow that touches
// the stock counters goes through here inside its transaction.
func lockPart(tx *gorm.DB, partID uint) (*models.Part, error) {
	var part models.Part
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&part, partID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: repuesto %d", models.ErrNotFound, partID)
	}
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// nextDocNumber assigns the next day-scoped sequence for a document prefix.
// It locks the highest existing number for today so two concurrent
// transactions cannot pick the same sequence.
func nextDocNumber(tx *gorm.DB, table, prefix string, now time.Time) (string, error) {
	like := fmt.Sprintf("%s-%s-%%", prefix, now.Format("20060102"))

	var last struct{ Number string }
	err := tx.Table(table).
		Where("number LIKE ?", like).
		Order("number DESC").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Limit(1).
		Find(&last).Error
	if err != nil {
		return "", err
	}

	return utils.FormatDocNumber(prefix, now, utils.ParseDocSeq(last.Number)+1), nil
}

// isDuplicateKey detects a postgres unique violation, used to retry
// document number races.
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// withNumberRetry runs fn inside a transaction and retries it when the
// only failure is a duplicate document number.
func withNumberRetry(fn func(tx *gorm.DB) error) error {
	const maxRetries = 3
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lastErr = config.DB.Transaction(fn)
		if lastErr == nil || !isDuplicateKey(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func recordAudit(tx *gorm.DB, entry models.AuditEntry) error {
	return tx.Create(&entry).Error
}

// actorRef turns a user id into an optional reference; 0 means the system.
func actorRef(actorID uint) *uint {
	if actorID == 0 {
		return nil
	}
	return &actorID
}

// notifyRoles fans an alert out to every active user holding one of the
// given roles.
func notifyRoles(tx *gorm.DB, alertID uint, roles []models.Role) error {
	var users []models.User
	if err := tx.Where("role IN ? AND is_active = ?", roles, true).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		n := models.Notification{UserID: u.ID, AlertID: alertID}
		if err := tx.Create(&n).Error; err != nil {
			return err
		}
	}
	return nil
}

// createAlert inserts an alert with its opening timeline event and fans it
// out. actorID 0 means the system raised it.
func createAlert(tx *gorm.DB, alert *models.Alert, actorID uint, roles []models.Role) error {
	alert.Status = models.AlertNew
	if err := tx.Create(alert).Error; err != nil {
		return err
	}
	event := models.AlertEvent{
		AlertID:  alert.ID,
		ToStatus: models.AlertNew,
		Action:   "CREADA",
		ActorID:  actorRef(actorID),
	}
	if err := tx.Create(&event).Error; err != nil {
		return err
	}
	return notifyRoles(tx, alert.ID, roles)
}

// resolveAlertsWhere closes every NEW/IN_PROGRESS alert matching the scope
// and stamps the timeline.
func resolveAlertsWhere(tx *gorm.DB, actorID uint, note string, scope func(*gorm.DB) *gorm.DB) error {
	var alerts []models.Alert
	q := scope(tx.Where("status IN ?", []models.AlertStatus{models.AlertNew, models.AlertInProgress}))
	if err := q.Find(&alerts).Error; err != nil {
		return err
	}
	now := time.Now()
	for i := range alerts {
		a := &alerts[i]
		from := a.Status
		a.Status = models.AlertResolved
		a.ResolvedAt = &now
		if actorID != 0 {
			a.ResolvedByID = &actorID
		}
		if err := tx.Save(a).Error; err != nil {
			return err
		}
		event := models.AlertEvent{
			AlertID:    a.ID,
			FromStatus: from,
			ToStatus:   models.AlertResolved,
			Action:     "RESUELTA",
			ActorID:    actorRef(actorID),
			Note:       note,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
	}
	return nil
}

// recomputeStockAlerts keeps the part's stock alert in sync with its
// counters. Called inside every transaction that changes on-hand stock.
func recomputeStockAlerts(tx *gorm.DB, part *models.Part, actorID uint) error {
	stockTypes := []models.AlertType{models.AlertOutOfStock, models.AlertLowStock}

	var openTypes []models.AlertType
	err := tx.Model(&models.Alert{}).Distinct("type").
		Where("part_id = ? AND type IN ? AND status IN ?", part.ID, stockTypes, activeStatuses()).
		Pluck("type", &openTypes).Error
	if err != nil {
		return err
	}

	plan := models.PlanStockAlert(part, openTypes)

	if len(plan.ResolveTypes) > 0 {
		note := "stock recuperado"
		if plan.Create {
			note = "reemplazada por cambio de nivel"
		}
		err = resolveAlertsWhere(tx, actorID, note, func(q *gorm.DB) *gorm.DB {
			return q.Where("part_id = ? AND type IN ?", part.ID, plan.ResolveTypes)
		})
		if err != nil {
			return err
		}
	}
	if !plan.Create {
		return nil
	}

	msg := fmt.Sprintf("Stock bajo de %s (%s): %d en bodega, minimo %d",
		part.Name, part.Code, part.QtyOnHand, part.QtyMinimum)
	if plan.Type == models.AlertOutOfStock {
		msg = fmt.Sprintf("Repuesto agotado: %s (%s)", part.Name, part.Code)
	}
	alert := models.Alert{
		Type:     plan.Type,
		Priority: plan.Priority,
		Message:  msg,
		PartID:   &part.ID,
	}
	return createAlert(tx, &alert, actorID, models.StockRoles())
}
