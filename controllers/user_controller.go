package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taller-inventory/config"
	"taller-inventory/models"
	"taller-inventory/utils"
)

type CreateUserInput struct {
	Username string      `json:"username" binding:"required"`
	FullName string      `json:"full_name" binding:"required"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     models.Role `json:"role" binding:"required"`
}

func CreateUser(c *gin.Context) {
	var in CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}
	if !in.Role.Valid() {
		utils.Error(c, http.StatusBadRequest, "Rol desconocido", nil)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}
	// Only another SUPER_USUARIO can mint a SUPER_USUARIO.
	if in.Role == models.RoleSuperUser && actor.Role != models.RoleSuperUser {
		utils.Fail(c, "Operacion no permitida", models.ErrUnauthorized)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo crear el usuario", err)
		return
	}

	user := models.User{
		Username:     in.Username,
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         in.Role,
		IsActive:     true,
		CreatedByID:  &actor.ID,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: el usuario %s ya existe", models.ErrDuplicate, in.Username)
			}
			return err
		}
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditUsers,
			Action:     models.ActionCreate,
			ActorID:    actor.ID,
			EntityType: "user",
			EntityID:   user.ID,
			EntityRef:  user.Username,
			Detail:     fmt.Sprintf("rol %s", user.Role),
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo crear el usuario", err)
		return
	}
	utils.Created(c, "Usuario creado", user)
}

func ListUsers(c *gin.Context) {
	var users []models.User
	q := config.DB.Order("username")
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if c.Query("active") == "true" {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&users).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudieron listar los usuarios", err)
		return
	}
	utils.Success(c, "Usuarios", users)
}

type UpdateUserInput struct {
	FullName *string      `json:"full_name"`
	Email    *string      `json:"email"`
	Phone    *string      `json:"phone"`
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
	Password *string      `json:"password"`
}

func UpdateUser(c *gin.Context) {
	var in UpdateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	actor, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}

	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		utils.Fail(c, "Usuario no encontrado", models.ErrNotFound)
		return
	}
	if user.Role == models.RoleSuperUser && actor.Role != models.RoleSuperUser {
		utils.Fail(c, "Operacion no permitida", models.ErrUnauthorized)
		return
	}

	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			utils.Error(c, http.StatusBadRequest, "Rol desconocido", nil)
			return
		}
		if *in.Role == models.RoleSuperUser && actor.Role != models.RoleSuperUser {
			utils.Fail(c, "Operacion no permitida", models.ErrUnauthorized)
			return
		}
		user.Role = *in.Role
	}
	if in.IsActive != nil {
		if !*in.IsActive && user.ID == actor.ID {
			utils.Fail(c, "No puede desactivarse a si mismo", models.ErrInvalidState)
			return
		}
		user.IsActive = *in.IsActive
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			utils.Error(c, http.StatusBadRequest, "La contrasena debe tener al menos 8 caracteres", nil)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.Error(c, http.StatusInternalServerError, "No se pudo actualizar el usuario", err)
			return
		}
		user.PasswordHash = string(hash)
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditUsers,
			Action:     models.ActionUpdate,
			ActorID:    actor.ID,
			EntityType: "user",
			EntityID:   user.ID,
			EntityRef:  user.Username,
		})
	})
	if err != nil {
		utils.Fail(c, "No se pudo actualizar el usuario", err)
		return
	}
	utils.Success(c, "Usuario actualizado", user)
}
