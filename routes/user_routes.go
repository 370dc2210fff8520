package routes

import (
	"github.com/nivedh-07/TechCare/controllers"
	"github.com/nivedh-07/TechCare/middleware"
	"github.com/gin-gonic/gin"
)

// initUserRoutes initializes all user-related routes
func initUserRoutes(router *gin.RouterGroup) {
	// Public routes (no authentication required)
	router.POST("/register", controllers.RegisterUser)
	router.POST("/login", controllers.LoginUser)
	router.POST("/verify-otp", controllers.VerifyOTP)
	router.POST("/resend-otp", controllers.ResendOTP)

	// Catalog routes
	router.GET("/services", controllers.ListServices)
	router.GET("/services/categories", controllers.ListCategories)
	router.GET("/services/:id", controllers.GetServiceDetails)

	// Protected routes (require authentication)
	protected := router.Group("/user")
	protected.Use(middleware.AuthMiddleware())
	{
		// Payment orchestration
		protected.GET("/checkout/payment/options", controllers.GetPaymentOptions)
		protected.POST("/checkout/payment/intent", controllers.CreatePaymentIntent)
		protected.POST("/checkout/payment/email-request", controllers.CreateEmailPaymentRequest)
		protected.POST("/checkout/payment/bank-transfer", controllers.CreateBankTransferOrder)
		protected.POST("/checkout/payment/direct/initiate", controllers.InitiateDirectPayment)
		protected.POST("/checkout/payment/direct/verify", controllers.VerifyDirectPayment)

		// Orders
		protected.GET("/orders", controllers.ListOrders)
		protected.GET("/orders/:id", controllers.GetOrderDetails)
		protected.GET("/orders/:id/receipt", controllers.DownloadReceipt)
	}
}
