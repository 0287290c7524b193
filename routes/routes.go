package routes

import (
	"github.com/gin-gonic/gin"

	"taller-inventory/controllers"
	"taller-inventory/middlewares"
	"taller-inventory/models"
)

func SetupRoutes(r *gin.Engine) {

	api := r.Group("/api")
	{
		api.POST("/login", controllers.Login)

		auth := api.Group("/", middlewares.AuthMiddleware())

		auth.GET("/me", controllers.Me)
		auth.PUT("/me/password", controllers.ChangePassword)

		users := auth.Group("/users", middlewares.Require(models.Role.CanManageUsers))
		{
			users.GET("", controllers.ListUsers)
			users.POST("", controllers.CreateUser)
			users.PUT("/:id", controllers.UpdateUser)
		}

		categories := auth.Group("/categories")
		{
			categories.GET("", controllers.ListCategories)
			categories.POST("", middlewares.Require(models.Role.CanEditInventory), controllers.CreateCategory)
		}

		parts := auth.Group("/parts")
		{
			parts.GET("", controllers.ListParts)
			parts.GET("/:id", controllers.GetPart)

			edit := parts.Group("", middlewares.Require(models.Role.CanEditInventory))
			{
				edit.POST("", controllers.CreatePart)
				edit.PUT("/:id", controllers.UpdatePart)
				edit.DELETE("/:id", controllers.DeletePart)
				edit.POST("/:id/image", controllers.UploadPartImage)
			}
		}

		movements := auth.Group("/movements")
		{
			movements.GET("", middlewares.Require(models.Role.CanViewReports), controllers.ListMovements)
			movements.POST("/goods-in", middlewares.Require(models.Role.CanEditInventory), controllers.RegisterGoodsIn)
		}

		adjustments := auth.Group("/adjustments")
		{
			adjustments.GET("", middlewares.Require(models.Role.CanEditInventory), controllers.ListAdjustments)
			adjustments.POST("", controllers.AdjustStock)
			adjustments.POST("/:id/decide", middlewares.Require(models.Role.CanAdjustDirectly), controllers.DecideAdjustment)
		}

		requests := auth.Group("/requests")
		{
			requests.GET("", controllers.ListRequests)
			requests.GET("/:id", controllers.GetRequest)
			requests.POST("", middlewares.Require(models.Role.CanCreateRequests), controllers.CreateRequest)

			manage := requests.Group("", middlewares.Require(models.Role.CanApproveRequests))
			{
				manage.POST("/:id/approve", controllers.ApproveRequest)
				manage.POST("/:id/reject", controllers.RejectRequest)
				manage.POST("/:id/deliver", controllers.DeliverRequest)
				manage.POST("/:id/return", controllers.ReturnItems)
				manage.POST("/:id/cancel", controllers.CancelRequest)
			}
		}

		invoices := auth.Group("/invoices")
		{
			invoices.GET("", controllers.ListInvoices)
			invoices.GET("/:id", controllers.GetInvoice)
			invoices.POST("", middlewares.Require(models.Role.CanCreateInvoices), controllers.CreateInvoice)

			collect := invoices.Group("", middlewares.Require(models.Role.CanConfirmInvoices))
			{
				collect.POST("/:id/confirm", controllers.ConfirmInvoice)
				collect.POST("/:id/payments", controllers.RecordPayment)
			}
			invoices.POST("/:id/void", middlewares.Require(models.Role.CanVoidInvoices), controllers.VoidInvoice)
		}

		alerts := auth.Group("/alerts")
		{
			alerts.GET("", controllers.ListAlerts)
			alerts.GET("/:id", controllers.GetAlert)
			alerts.POST("/:id/attend", controllers.AttendAlert)
			alerts.POST("/:id/resolve", controllers.ResolveAlert)
			alerts.POST("/:id/archive", controllers.ArchiveAlert)
		}

		notifications := auth.Group("/notifications")
		{
			notifications.GET("", controllers.ListNotifications)
			notifications.GET("/count", controllers.UnreadCount)
			notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			notifications.POST("/read-all", controllers.MarkAllNotificationsRead)
			notifications.POST("/reminder", middlewares.Require(models.Role.CanManageUsers), controllers.RunDailyReminder)
		}

		clients := auth.Group("/clients", middlewares.Require(models.Role.CanManageClients))
		{
			clients.GET("", controllers.ListClients)
			clients.GET("/:id", controllers.GetClient)
			clients.POST("", controllers.CreateClient)
			clients.PUT("/:id", controllers.UpdateClient)
		}

		vehicles := auth.Group("/vehicles", middlewares.Require(models.Role.CanManageClients))
		{
			vehicles.GET("", controllers.ListVehicles)
			vehicles.POST("", controllers.CreateVehicle)
			vehicles.PUT("/:id", controllers.UpdateVehicle)
		}

		messages := auth.Group("/messages")
		{
			messages.GET("/inbox", controllers.Inbox)
			messages.GET("/sent", controllers.SentMessages)
			messages.POST("", controllers.SendMessage)
			messages.PUT("/:id/read", controllers.MarkMessageRead)
		}

		auth.GET("/audit", middlewares.Require(models.Role.CanViewAudit), controllers.ListAudit)

		reports := auth.Group("/reports", middlewares.Require(models.Role.CanViewReports))
		{
			reports.GET("/dashboard", controllers.Dashboard)
			reports.GET("/sales", controllers.SalesReport)
			reports.GET("/top-parts", controllers.TopParts)
		}
	}
}
