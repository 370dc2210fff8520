package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB points config.DB at a fresh in-memory sqlite database with the
// full schema migrated. Each call gets its own database.
func SetupTestDB(t *testing.T) {
	t.Helper()

	// A named shared-cache database keeps every pooled connection on the
	// same in-memory store; the uuid isolates tests from each other.
	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := config.MigrateModels(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.DB = db
}

// CreateTestUser creates a verified user with a billing profile
func CreateTestUser(t *testing.T) *models.User {
	t.Helper()

	user := &models.User{
		Username:   "testuser",
		Email:      "test@example.com",
		Password:   "Test123!",
		FirstName:  "Test",
		LastName:   "User",
		Phone:      "+1234567890",
		IsVerified: true,
	}
	if err := config.DB.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	client := &models.Client{
		UserID: user.ID,
		Name:   "Test User",
		Email:  user.Email,
		Phone:  user.Phone,
	}
	if err := config.DB.Create(client).Error; err != nil {
		t.Fatalf("Failed to create test client profile: %v", err)
	}

	return user
}

// CreateTestService creates a catalog entry with the given tier prices
func CreateTestService(t *testing.T, name, category string, prices models.PackagePriceMap) *models.Service {
	t.Helper()

	features := models.PackageFeatureMap{}
	for tier := range prices {
		features[tier] = []string{"Feature for " + tier}
	}

	service := &models.Service{
		ID:              uuid.New().String(),
		Name:            name,
		Category:        category,
		Description:     name + " description",
		PackagePrices:   prices,
		PackageFeatures: features,
		Active:          true,
	}
	if err := config.DB.Create(service).Error; err != nil {
		t.Fatalf("Failed to create test service: %v", err)
	}

	return service
}
