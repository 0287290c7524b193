package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taller-inventory/config"
	"taller-inventory/models"
	"taller-inventory/utils"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	var user models.User
	if err := config.DB.Where("username = ?", in.Username).First(&user).Error; err != nil {
		utils.Error(c, http.StatusUnauthorized, "Credenciales incorrectas", nil)
		return
	}
	if !user.IsActive {
		utils.Error(c, http.StatusUnauthorized, "Usuario inactivo", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		utils.Error(c, http.StatusUnauthorized, "Credenciales incorrectas", nil)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo generar el token", err)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&user).Update("last_login_at", now).Error; err != nil {
			return err
		}
		return recordAudit(tx, models.AuditEntry{
			Category:   models.AuditAuth,
			Action:     models.ActionLogin,
			ActorID:    user.ID,
			EntityType: "user",
			EntityID:   user.ID,
			EntityRef:  user.Username,
			IP:         c.ClientIP(),
		})
	})
	if err != nil {
		config.Log.Warnw("no se pudo registrar el ingreso", "username", user.Username, "error", err)
	}

	utils.Success(c, "Ingreso correcto", gin.H{
		"token": token,
		"user":  user,
	})
}

func Me(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}
	utils.Success(c, "Usuario actual", user)
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func ChangePassword(c *gin.Context) {
	var in ChangePasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.Error(c, http.StatusBadRequest, "Payload invalido", err)
		return
	}

	user, err := currentUser(c)
	if err != nil {
		utils.Fail(c, "No se pudo cargar el usuario", err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
		utils.Error(c, http.StatusUnauthorized, "La contrasena actual no coincide", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo actualizar la contrasena", err)
		return
	}
	if err := config.DB.Model(user).Update("password_hash", string(hash)).Error; err != nil {
		utils.Error(c, http.StatusInternalServerError, "No se pudo actualizar la contrasena", err)
		return
	}
	utils.Success(c, "Contrasena actualizada", nil)
}
