package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port      string
	DBURL     string
	JWTSecret string

	TaxPercent    decimal.Decimal
	RequestPrefix string
	InvoicePrefix string

	UploadDir string
}

var App Config

// Load reads .env if present and fills App from the environment.
func Load() {
	_ = godotenv.Load()

	App = Config{
		Port:          getEnv("PORT", "8080"),
		DBURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", "cambia-este-secreto"),
		TaxPercent:    decimal.NewFromFloat(getEnvFloat("TAX_PERCENT", 19)),
		RequestPrefix: getEnv("REQUEST_PREFIX", "SOL"),
		InvoicePrefix: getEnv("INVOICE_PREFIX", "FAC"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
