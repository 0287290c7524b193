package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taller-inventory/config"
	"taller-inventory/models"
	"taller-inventory/utils"
)

type ClientInput struct {
	DocumentType   string `json:"document_type" binding:"required"`
	DocumentNumber string `json:"document_number" binding:"required"`
	FullName       string `json:"full_name" binding:"required"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
}

func CreateClient(c *gin.Context) {
	var in ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	client := models.Client{
		DocumentType:   strings.ToUpper(in.DocumentType),
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		FullName:       in.FullName,
		Phone:          in.Phone,
		Email:          in.Email,
		Address:        in.Address,
		IsActive:       true,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&client).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: el documento %s ya esta registrado",
					models.ErrDuplicate, client.DocumentNumber)
			}
			return err
		}
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditClients,
			Action:     models.ActionCreate,
			ActorID:    actor.ID,
			EntityType: "client",
			EntityID:   client.ID,
			EntityRef:  client.DocumentNumber,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo crear el cliente", err)
		return
	}
	utils.Created(c, "Cliente creado", client)
}

func ListClients(c *gin.Context) {
	var clients []models.Client
	q := config.DB.Where("is_active = ?", true).Order("full_name").Limit(200)
	if search := c.Query("q"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR document_number LIKE ?", like, "%"+search+"%")
	}
	if err := q.Find(&clients).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar los clientes", err)
		return
	}
	utils.Success(c, "Clientes", clients)
}

func GetClient(c *gin.Context) {
	var client models.Client
	if err := config.DB.Preload("Vehicles").First(&client, c.Param("id")).Error; err != nil {
		utils.Fail(c, "Cliente no encontrado", models.ErrNotFound)
		return
	}
	utils.Success(c, "Cliente", client)
}

type UpdateClientInput struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"is_active"`
}

func UpdateClient(c *gin.Context) {
	var in UpdateClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var client models.Client
	if err := config.DB.First(&client, c.Param("id")).Error; err != nil {
		utils.Fail(c, "Cliente no encontrado", models.ErrNotFound)
		return
	}

	if in.FullName != nil {
		client.FullName = *in.FullName
	}
	if in.Phone != nil {
		client.Phone = *in.Phone
	}
	if in.Email != nil {
		client.Email = *in.Email
	}
	if in.Address != nil {
		client.Address = *in.Address
	}
	if in.IsActive != nil {
		client.IsActive = *in.IsActive
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&client).Error; err != nil {
			return err
		}
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditClients,
			Action:     models.ActionUpdate,
			ActorID:    actor.ID,
			EntityType: "client",
			EntityID:   client.ID,
			EntityRef:  client.DocumentNumber,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo actualizar el cliente", err)
		return
	}
	utils.Success(c, "Cliente actualizado", client)
}

type VehicleInput struct {
	ClientID uint   `json:"client_id" binding:"required"`
	Plate    string `json:"plate" binding:"required"`
	Brand    string `json:"brand" binding:"required"`
	Model    string `json:"model" binding:"required"`
	Year     *int   `json:"year"`
	Color    string `json:"color"`
	Mileage  *int   `json:"mileage"`
	Notes    string `json:"notes"`
}

func CreateVehicle(c *gin.Context) {
	var in VehicleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var client models.Client
	if err := config.DB.First(&client, in.ClientID).Error; err != nil {
		utils.Fail(c, "Cliente no encontrado", models.ErrNotFound)
		return
	}

	vehicle := models.Vehicle{
		ClientID: in.ClientID,
		Plate:    strings.ToUpper(strings.TrimSpace(in.Plate)),
		Brand:    in.Brand,
		Model:    in.Model,
		Year:     in.Year,
		Color:    in.Color,
		Mileage:  in.Mileage,
		Notes:    in.Notes,
		IsActive: true,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vehicle).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: la placa %s ya esta registrada", models.ErrDuplicate, vehicle.Plate)
			}
			return err
		}
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditClients,
			Action:     models.ActionCreate,
			ActorID:    actor.ID,
			EntityType: "vehicle",
			EntityID:   vehicle.ID,
			EntityRef:  vehicle.Plate,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo crear el vehiculo", err)
		return
	}
	utils.Created(c, "Vehiculo creado", vehicle)
}

func ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	q := config.DB.Preload("Client").Where("is_active = ?", true).Order("plate").Limit(200)
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}
	if plate := c.Query("plate"); plate != "" {
		q = q.Where("plate LIKE ?", "%"+strings.ToUpper(plate)+"%")
	}
	if err := q.Find(&vehicles).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar los vehiculos", err)
		return
	}
	utils.Success(c, "Vehiculos", vehicles)
}

type UpdateVehicleInput struct {
	Brand    *string `json:"brand"`
	Model    *string `json:"model"`
	Year     *int    `json:"year"`
	Color    *string `json:"color"`
	Mileage  *int    `json:"mileage"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"is_active"`
}

func UpdateVehicle(c *gin.Context) {
	var in UpdateVehicleInput
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
	if err := config.DB.First(&vehicle, c.Param("id")).Error; err != nil {
		utils.Fail(c, "Vehiculo no encontrado", models.ErrNotFound)
		return
	}

	if in.Brand != nil {
		vehicle.Brand = *in.Brand
	}
	if in.Model != nil {
		vehicle.Model = *in.Model
	}
	if in.Year != nil {
		vehicle.Year = in.Year
	}
	if in.Color != nil {
		vehicle.Color = *in.Color
	}
	if in.Mileage != nil {
		vehicle.Mileage = in.Mileage
	}
	if in.Notes != nil {
		vehicle.Notes = *in.Notes
	}
	if in.IsActive != nil {
		vehicle.IsActive = *in.IsActive
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&vehicle).Error; err != nil {
			return err
		}
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditClients,
			Action:     models.ActionUpdate,
			ActorID:    actor.ID,
			EntityType: "vehicle",
			EntityID:   vehicle.ID,
			EntityRef:  vehicle.Plate,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo actualizar el vehiculo", err)
		return
	}
	utils.Success(c, "Vehiculo actualizado", vehicle)
}
