package config

import (
	"golang.org/x/crypto/bcrypt"

	"taller-inventory/models"
)

// SeedSuperUser guarantees there is at least one SUPER_USUARIO account.
func SeedSuperUser() {
	var cnt int64
	DB.Model(&models.User{}).Where("role = ?", models.RoleSuperUser).Count(&cnt)
	if cnt > 0 {
		return
	}

	password := getEnv("SEED_ADMIN_PASSWORD", "admin123")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		Log.Fatalw("no se pudo generar el hash del usuario inicial", "error", err)
	}

	admin := models.User{
		Username:     getEnv("SEED_ADMIN_USERNAME", "admin"),
		FullName:     "Administrador del Sistema",
		PasswordHash: string(hash),
		Role:         models.RoleSuperUser,
		IsActive:     true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		Log.Fatalw("no se pudo crear el usuario inicial", "error", err)
	}
	Log.Infow("usuario inicial creado", "username", admin.Username)
}
