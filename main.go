package main

import (
	"encoding/gob"
	"log"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/controllers"
	"github.com/nivedh-07/TechCare/routes"
	"github.com/nivedh-07/TechCare/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Register types for session serialization
	gob.Register(controllers.RegistrationData{})

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Create sample admin
	if err := controllers.CreateSampleAdmin(); err != nil {
		utils.LogError("Failed to create sample admin: %v", err)
		log.Fatal("Failed to create sample admin:", err)
	}

	// Seed the catalog if empty
	if err := controllers.CreateDefaultServices(); err != nil {
		utils.LogError("Failed to seed default services: %v", err)
		log.Fatal("Failed to seed default services:", err)
	}

	// Wire the invoicing client. Missing secrets surface here as a warning
	// and again as a typed error on provider-backed requests.
	if !cfg.Zoho.Complete() {
		utils.LogError("Zoho configuration incomplete; invoicing operations will fail until ZOHO_* secrets are set")
	}
	controllers.SetInvoicer(utils.NewZohoClient(cfg.Zoho))

	// Set up router
	router := routes.SetupRouter()

	utils.LogInfo("Server starting on port %s", cfg.Port)
	// Start server
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
