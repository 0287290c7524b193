package config

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taller-inventory/models"
)

var DB *gorm.DB

func ConnectDB() {
	dbURL := App.DBURL

	if dbURL == "" {
		host := getEnv("DB_HOST", "localhost")
		user := getEnv("DB_USER", "postgres")
		password := getEnv("DB_PASSWORD", "postgres")
		dbname := getEnv("DB_NAME", "taller")
		port := getEnv("DB_PORT", "5432")
		dbURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			host, user, password, dbname, port,
		)
	} else if !strings.Contains(dbURL, "sslmode=") {
		sep := "?"
		if strings.Contains(dbURL, "?") {
			sep = "&"
		}
		dbURL = dbURL + sep + "sslmode=require"
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		Log.Fatalw("no se pudo conectar a la base de datos", "error", err)
	}

	if err := db.Exec(`SET TIME ZONE 'UTC'`).Error; err != nil {
		Log.Warnw("no se pudo fijar la zona horaria UTC", "error", err)
	}

	DB = db
	Log.Infow("base de datos conectada")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Part{},
		&models.Client{},
		&models.Vehicle{},
		&models.StockMovement{},
		&models.StockAdjustment{},
		&models.PartsRequest{},
		&models.RequestItem{},
		&models.Invoice{},
		&models.InvoiceLine{},
		&models.Payment{},
		&models.Alert{},
		&models.AlertEvent{},
		&models.Notification{},
		&models.AuditEntry{},
		&models.Message{},
	)
	if err != nil {
		Log.Fatalw("fallo la migracion", "error", err)
	}
}
