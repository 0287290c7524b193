package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"taller-inventory/config"
	"taller-inventory/models"
	"taller-inventory/utils"
)

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func CreateCategory(c *gin.Context) {
	var in CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}
	cat := models.Category{Name: in.Name, Description: in.Description, IsActive: true}
	if err := config.DB.Create(&cat).Error; err != nil {
		if isDuplicateKey(err) {
			utils.Fail(c, "La categoria ya existe", models.ErrDuplicate)
			return
		}
		utils.Error(c, http.StatusInternalServerError, "No se pudo crear la categoria", err)
		return
	}
	utils.Created(c, "Categoria creada", cat)
}

func ListCategories(c *gin.Context) {
	var cats []models.Category
	if err := config.DB.Where("is_active = ?", true).Order("name").Find(&cats).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar las categorias", err)
		return
	}
	utils.Success(c, "Categorias", cats)
}

type CreatePartInput struct {
	Code        string          `json:"code" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	CategoryID  *uint           `json:"category_id"`
	SalePrice   decimal.Decimal `json:"sale_price" binding:"required"`
	QtyOnHand   int             `json:"qty_on_hand"`
	QtyMinimum  *int            `json:"qty_minimum"`
	Location    string          `json:"location"`
	Brand       string          `json:"brand"`
	Notes       string          `json:"notes"`
}

func CreatePart(c *gin.Context) {
	var in CreatePartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}
	if in.QtyOnHand < 0 {
		utils.Fail(c, "Stock inicial invalido", models.ErrInvalidQuantity)
		return
	}
	if !in.SalePrice.IsPositive() {
		utils.Fail(c, "El precio de venta debe ser mayor a cero", models.ErrInvalidQuantity)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	part := models.Part{
		Code:        strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		SalePrice:   in.SalePrice,
		QtyOnHand:   in.QtyOnHand,
		QtyMinimum:  5,
		Location:    in.Location,
		Brand:       in.Brand,
		Notes:       in.Notes,
		IsActive:    true,
	}
	if in.QtyMinimum != nil {
		if *in.QtyMinimum < 0 {
			utils.Fail(c, "Minimo invalido", models.ErrInvalidQuantity)
			return
		}
		part.QtyMinimum = *in.QtyMinimum
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&part).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: el codigo %s ya existe", models.ErrDuplicate, part.Code)
			}
			return err
		}
		if part.QtyOnHand > 0 {
			movement := models.StockMovement{
				PartID:    part.ID,
				Kind:      models.MovementIn,
				Reason:    models.ReasonGoodsIn,
				Qty:       part.QtyOnHand,
				UnitPrice: part.SalePrice,
				ActorID:   actor.ID,
				Note:      "stock inicial",
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}
		if err := recomputeStockAlerts(tx, &part, actor.ID); err != nil {
			return err
		}
		qty := part.QtyOnHand
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditInventory,
			Action:     models.ActionCreate,
			ActorID:    actor.ID,
			EntityType: "part",
			EntityID:   part.ID,
			EntityRef:  part.Code,
			QtyAfter:   &qty,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo crear el repuesto", err)
		return
	}
	utils.Created(c, "Repuesto creado", part)
}

func ListParts(c *gin.Context) {
	var parts []models.Part
	q := config.DB.Preload("Category").Order("code")

	if c.Query("all") != "true" {
		q = q.Where("is_active = ?", true)
	}
	if search := c.Query("q"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", like, like, like)
	}
	if cat := c.Query("category_id"); cat != "" {
		q = q.Where("category_id = ?", cat)
	}
	if c.Query("low_stock") == "true" {
		q = q.Where("qty_on_hand <= qty_minimum")
	}

	if err := q.Find(&parts).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar los repuestos", err)
		return
	}
	utils.Success(c, "Repuestos", parts)
}

func GetPart(c *gin.Context) {
	var part models.Part
	if err := config.DB.Preload("Category").First(&part, c.Param("id")).Error; err != nil {
		utils.Fail(c, "Repuesto no encontrado", models.ErrNotFound)
		return
	}
	utils.Success(c, "Repuesto", part)
}

type UpdatePartInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	CategoryID  *uint            `json:"category_id"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	QtyMinimum  *int             `json:"qty_minimum"`
	Location    *string          `json:"location"`
	Brand       *string          `json:"brand"`
	Notes       *string          `json:"notes"`
	IsActive    *bool            `json:"is_active"`
}

func UpdatePart(c *gin.Context) {
	var in UpdatePartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var partID uint
	if err := config.DB.Model(&models.Part{}).Select("id").
		Where("id = ?", c.Param("id")).Scan(&partID).Error; err != nil || partID == 0 {
		utils.Fail(c, "Repuesto no encontrado", models.ErrNotFound)
		return
	}

	var part *models.Part
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		part, err = lockPart(tx, partID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			part.Name = *in.Name
		}
		if in.Description != nil {
			part.Description = *in.Description
		}
		if in.CategoryID != nil {
			part.CategoryID = in.CategoryID
		}
		if in.SalePrice != nil {
			if !in.SalePrice.IsPositive() {
				return fmt.Errorf("%w: el precio debe ser mayor a cero", models.ErrInvalidQuantity)
			}
			part.SalePrice = *in.SalePrice
		}
		if in.QtyMinimum != nil {
			if *in.QtyMinimum < 0 {
				return fmt.Errorf("%w: minimo invalido", models.ErrInvalidQuantity)
			}
			part.QtyMinimum = *in.QtyMinimum
		}
		if in.Location != nil {
			part.Location = *in.Location
		}
		if in.Brand != nil {
			part.Brand = *in.Brand
		}
		if in.Notes != nil {
			part.Notes = *in.Notes
		}
		if in.IsActive != nil {
			if !*in.IsActive && part.QtyReserved > 0 {
				return fmt.Errorf("%w: el repuesto tiene %d unidades reservadas",
					models.ErrInvalidState, part.QtyReserved)
			}
			part.IsActive = *in.IsActive
		}

		if err := tx.Save(part).Error; err != nil {
			return err
		}
		// A minimum change can flip the alert state even without a stock move.
		if in.QtyMinimum != nil {
			if err := recomputeStockAlerts(tx, part, actor.ID); err != nil {
				return err
			}
		}
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditInventory,
			Action:     models.ActionUpdate,
			ActorID:    actor.ID,
			EntityType: "part",
			EntityID:   part.ID,
			EntityRef:  part.Code,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo actualizar el repuesto", err)
		return
	}
	utils.Success(c, "Repuesto actualizado", part)
}

// DeletePart deactivates instead of removing; movements and requests keep
// pointing at the row.
func DeletePart(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var part models.Part
		if err := tx.First(&part, c.Param("id")).Error; err != nil {
			return fmt.Errorf("%w: repuesto", models.ErrNotFound)
		}
		if part.QtyReserved > 0 {
			return fmt.Errorf("%w: el repuesto tiene %d unidades reservadas",
				models.ErrInvalidState, part.QtyReserved)
		}
		if err := tx.Model(&part).Update("is_active", false).Error; err != nil {
			return err
		}
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditInventory,
			Action:     models.ActionDelete,
			ActorID:    actor.ID,
			EntityType: "part",
			EntityID:   part.ID,
			EntityRef:  part.Code,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo desactivar el repuesto", err)
		return
	}
	utils.Success(c, "Repuesto desactivado", nil)
}

var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

func UploadPartImage(c *gin.Context) {
	var part models.Part
	if err := config.DB.First(&part, c.Param("id")).Error; err != nil {
		utils.Fail(c, "Repuesto no encontrado", models.ErrNotFound)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Archivo no recibido", err)
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		utils.Error(c, http.StatusBadRequest, "Formato de imagen no soportado", nil)
		return
	}

	dir := filepath.Join(config.App.UploadDir, "parts", fmt.Sprintf("%d", part.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo guardar la imagen", err)
		return
	}
	dest := filepath.Join(dir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo guardar la imagen", err)
		return
	}

	old := part.ImagePath
	if err := config.DB.Model(&part).Update("image_path", dest).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo guardar la imagen", err)
		return
	}
	if old != "" {
		_ = os.Remove(old)
	}
	utils.Success(c, "Imagen actualizada", gin.H{"image_path": dest})
}
