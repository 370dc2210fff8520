package controllers

import (
	"strings"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-gonic/gin"
)

// ListServices handles GET /services with optional search and pagination
func ListServices(c *gin.Context) {
	utils.LogInfo("ListServices called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Service{}).Where("active = ?", true)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count services: %v", err)
		utils.InternalServerError(c, "Failed to fetch services", err.Error())
		return
	}
	pagination.SetTotal(total)

	var services []models.Service
	if err := query.Order("name asc").Offset(pagination.Offset).Limit(pagination.Limit).Find(&services).Error; err != nil {
		utils.LogError("Failed to fetch services: %v", err)
		utils.InternalServerError(c, "Failed to fetch services", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Services retrieved successfully", services, total, pagination.Page, pagination.Limit)
}

// GetServiceDetails handles GET /services/:id. The identifier goes through
// the staged resolver, so UUIDs, name fragments and category fragments all
// work. Tier prices are additionally shown in the requested display
// currency; each tier conversion is an independent lookup, issued
// sequentially.
func GetServiceDetails(c *gin.Context) {
	identifier := c.Param("id")
	utils.LogInfo("GetServiceDetails called for %q", identifier)

	serviceID, err := utils.ResolveServiceID(identifier)
	if err != nil {
		utils.NotFound(c, "Service not found")
		return
	}

	var service models.Service
	if err := config.DB.Where("id = ?", serviceID).First(&service).Error; err != nil {
		utils.NotFound(c, "Service not found")
		return
	}

	currency := strings.ToUpper(c.DefaultQuery("currency", utils.CurrencyUSD))
	if !utils.SupportedCurrency(currency) {
		utils.BadRequest(c, "Unsupported currency. Use USD, INR or AED", nil)
		return
	}

	displayPrices := map[string]float64{}
	for tier, price := range service.PackagePrices {
		displayPrices[tier] = utils.Round2(utils.Convert(price, utils.CurrencyUSD, currency))
	}

	utils.Success(c, "Service retrieved successfully", gin.H{
		"service":          service,
		"display_currency": currency,
		"display_prices":   displayPrices,
	})
}

// ListCategories handles GET /services/categories
func ListCategories(c *gin.Context) {
	utils.LogInfo("ListCategories called")

	var categories []string
	if err := config.DB.Model(&models.Service{}).Where("active = ?", true).
		Distinct("category").Order("category asc").Pluck("category", &categories).Error; err != nil {
		utils.LogError("Failed to fetch categories: %v", err)
		utils.InternalServerError(c, "Failed to fetch categories", err.Error())
		return
	}

	utils.Success(c, "Categories retrieved successfully", gin.H{"categories": categories})
}
