package controllers

import (
	"fmt"
	"os"
	"time"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
	"golang.org/x/crypto/bcrypt"
)

// CreateSampleAdmin creates the bootstrap admin account
func CreateSampleAdmin() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(os.Getenv("ADMIN_PASSWORD")), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Admin{
		Email:     os.Getenv("ADMIN_EMAIL"),
		Password:  string(hashedPassword),
		FirstName: os.Getenv("ADMIN_FIRST_NAME"),
		LastName:  os.Getenv("ADMIN_LAST_NAME"),
		IsActive:  true,
	}

	return config.DB.FirstOrCreate(&admin, models.Admin{Email: admin.Email}).Error
}

// CreateDefaultServices seeds the catalog when it is empty
func CreateDefaultServices() error {
	var count int64
	if err := config.DB.Model(&models.Service{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	utils.LogInfo("Service catalog is empty, seeding default services")
	defaults := []models.Service{
		{
			ID:          uuid.New().String(),
			Name:        "Email Migration & Setup",
			Category:    "Email Services",
			Description: "Mailbox migration, DNS configuration and client setup",
			PackagePrices: models.PackagePriceMap{
				models.PackageBasic:    4.00,
				models.PackageStandard: 6.50,
			},
			PackageFeatures: models.PackageFeatureMap{
				models.PackageBasic:    {"Per-mailbox migration", "MX and SPF records"},
				models.PackageStandard: {"Per-mailbox migration", "MX, SPF, DKIM and DMARC", "Client configuration"},
			},
			Active: true,
		},
		{
			ID:          uuid.New().String(),
			Name:        "SSL Certificate Setup",
			Category:    "Security",
			Description: "Certificate issuance, installation and renewal automation",
			PackagePrices: models.PackagePriceMap{
				models.PackageBasic:      25.00,
				models.PackageEnterprise: 120.00,
			},
			PackageFeatures: models.PackageFeatureMap{
				models.PackageBasic:      {"Single domain certificate", "Installation"},
				models.PackageEnterprise: {"Wildcard certificate", "Installation", "Auto-renewal", "Monitoring"},
			},
			Active: true,
		},
		{
			ID:          uuid.New().String(),
			Name:        "Cloud Infrastructure Management",
			Category:    "Cloud Services",
			Description: "Provisioning, monitoring and cost optimization",
			PackagePrices: models.PackagePriceMap{
				models.PackageBasic:      99.00,
				models.PackageStandard:   249.00,
				models.PackageEnterprise: 599.00,
			},
			PackageFeatures: models.PackageFeatureMap{
				models.PackageBasic:      {"Up to 5 instances", "Monthly review"},
				models.PackageStandard:   {"Up to 20 instances", "Weekly review", "Alerting"},
				models.PackageEnterprise: {"Unlimited instances", "Dedicated engineer", "24/7 alerting"},
			},
			Active: true,
		},
	}

	for _, service := range defaults {
		if err := service.Validate(); err != nil {
			return err
		}
		if err := config.DB.Create(&service).Error; err != nil {
			return err
		}
	}
	utils.LogInfo("Seeded %d default services", len(defaults))
	return nil
}

// AdminLogin handles POST /admin/login
func AdminLogin(c *gin.Context) {
	utils.LogInfo("AdminLogin called")

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid login request", err.Error())
		return
	}

	var admin models.Admin
	if err := config.DB.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		utils.LogError("Failed admin login attempt for %s", req.Email)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if !admin.IsActive {
		utils.Forbidden(c, "Admin account is inactive")
		return
	}

	token, err := utils.GenerateAdminToken(&admin)
	if err != nil {
		utils.InternalServerError(c, "Login failed", nil)
		return
	}

	config.DB.Model(&admin).Update("last_login", time.Now())

	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"admin": gin.H{
			"id":    admin.ID,
			"email": admin.Email,
		},
	})
}

// ListAuditLog handles GET /admin/audit-log with pagination
func ListAuditLog(c *gin.Context) {
	utils.LogInfo("ListAuditLog called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.AuditLog{})

	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if c.Query("failed") == "true" {
		query = query.Where("success = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch audit log", err.Error())
		return
	}
	pagination.SetTotal(total)

	var entries []models.AuditLog
	if err := query.Order("created_at desc").Offset(pagination.Offset).Limit(pagination.Limit).Find(&entries).Error; err != nil {
		utils.LogError("Failed to fetch audit log: %v", err)
		utils.InternalServerError(c, "Failed to fetch audit log", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Audit log retrieved successfully", entries, total, pagination.Page, pagination.Limit)
}

// ExportOrders handles GET /admin/orders/export as an xlsx download
func ExportOrders(c *gin.Context) {
	utils.LogInfo("ExportOrders called")

	var orders []models.Order
	query := config.DB.Preload("Service").Preload("User").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&orders).Error; err != nil {
		utils.LogError("Failed to fetch orders for export: %v", err)
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create export", nil)
		return
	}

	headers := []string{"Order ID", "Date", "Customer", "Service", "Package", "Qty",
		"Currency", "Amount", "Amount USD", "Amount INR", "Amount AED", "Gateway", "Status", "Invoice ID"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, order := range orders {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(order.ID))
		row.AddCell().SetString(order.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetString(order.User.Email)
		row.AddCell().SetString(order.Service.Name)
		row.AddCell().SetString(order.PackageType)
		row.AddCell().SetInt(order.Quantity)
		row.AddCell().SetString(order.Currency)
		row.AddCell().SetFloat(order.Amount())
		row.AddCell().SetFloat(order.AmountUSD)
		row.AddCell().SetFloat(order.AmountINR)
		row.AddCell().SetFloat(order.AmountAED)
		row.AddCell().SetString(order.PaymentGateway)
		row.AddCell().SetString(order.Status)
		row.AddCell().SetString(order.ZohoInvoiceID)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=orders_%s.xlsx", time.Now().Format("2006-01-02")))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
	}
}
