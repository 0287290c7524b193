package main

import (
	"github.com/gin-gonic/gin"

	"taller-inventory/config"
	"taller-inventory/routes"
)

func main() {
	config.Load()
	config.InitLogger()
	config.ConnectDB()
	config.Migrate()
	config.SeedSuperUser()

	r := gin.Default()
	routes.SetupRoutes(r)

	r.Static("/uploads", config.App.UploadDir)
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "API del taller en linea"})
	})

	config.Log.Infow("servidor iniciado", "port", config.App.Port)
	if err := r.Run(":" + config.App.Port); err != nil {
		config.Log.Fatalw("el servidor se detuvo", "error", err)
	}
}
