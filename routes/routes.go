package routes

import (
	"github.com/nivedh-07/TechCare/controllers"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes.
// Middleware must be installed before any route is registered; gin snapshots
// the handler chain per route at registration time.
func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	store := cookie.NewStore([]byte("techcare-session-key"))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   false, // Set to true in production with HTTPS
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("techcare", store))

	// Health and invoicing probe live outside the versioned group
	router.GET("/health", controllers.SystemHealth)
	router.GET("/invoicing", controllers.InvoicingProbe)
	router.POST("/invoicing", controllers.CreateInvoiceDirect)

	api := router.Group("/v1")
	{
		initUserRoutes(api)
		initAdminRoutes(api)
	}

	return router
}
