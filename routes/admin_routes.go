package routes

import (
	"github.com/nivedh-07/TechCare/controllers"
	"github.com/nivedh-07/TechCare/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.POST("/login", controllers.AdminLogin)

	protected := admin.Group("")
	protected.Use(middleware.AdminAuthMiddleware())
	{
		protected.GET("/audit-log", controllers.ListAuditLog)
		protected.GET("/orders/export", controllers.ExportOrders)
		protected.GET("/diagnostics/logs", controllers.RecentDiagnostics)
	}
}
