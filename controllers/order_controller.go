package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
)

// ListOrders handles GET /user/orders
func ListOrders(c *gin.Context) {
	utils.LogInfo("ListOrders called")

	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "Please login for access")
		return
	}
	user := userVal.(models.User)

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Order{}).Where("user_id = ?", user.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return
	}
	pagination.SetTotal(total)

	var orders []models.Order
	if err := query.Preload("Service").Order("created_at desc").
		Offset(pagination.Offset).Limit(pagination.Limit).Find(&orders).Error; err != nil {
		utils.LogError("Failed to fetch orders for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return
	}

	utils.SuccessWithPagination(c, "Orders retrieved successfully", orders, total, pagination.Page, pagination.Limit)
}

// GetOrderDetails handles GET /user/orders/:id
func GetOrderDetails(c *gin.Context) {
	utils.LogInfo("GetOrderDetails called")

	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "Please login for access")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var order models.Order
	if err := config.DB.Preload("Service").Where("id = ? AND user_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	utils.Success(c, "Order retrieved successfully", gin.H{"order": order})
}

// DownloadReceipt generates and returns a PDF receipt for the order
func DownloadReceipt(c *gin.Context) {
	utils.LogInfo("Starting receipt download process")

	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "Please login for access")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var order models.Order
	if err := config.DB.Preload("Service").Preload("User").Where("id = ? AND user_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		utils.LogError("Order not found for receipt - Order ID: %d, User ID: %d", orderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}
	utils.LogInfo("Found order for receipt generation - Order ID: %d", orderID)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "TechCare")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "IT Support Services")
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: support@techcare.io")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "ORDER RECEIPT")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(60, 8, "Order ID: "+strconv.Itoa(int(order.ID)))
	pdf.Cell(70, 8, "Date: "+order.CreatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(60, 8, "Transaction: "+order.TransactionID)
	pdf.Cell(70, 8, "Status: "+order.Status)
	pdf.Ln(8)
	pdf.Cell(60, 8, "Payment channel: "+order.PaymentGateway)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, order.User.FirstName+" "+order.User.LastName)
	pdf.Ln(6)
	pdf.Cell(100, 8, order.User.Email)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(80, 8, "Service", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Package", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(80, 8, order.Service.Name, "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, order.PackageType, "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, strconv.Itoa(order.Quantity), "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f %s", order.Amount(), order.Currency), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(100, 8, "Amount in all currencies:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, fmt.Sprintf("USD %.2f  |  INR %.2f  |  AED %.2f", order.AmountUSD, order.AmountINR, order.AmountAED))
	pdf.Ln(10)

	if order.ZohoInvoiceID != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(100, 8, "Provider invoice: "+order.ZohoInvoiceID)
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to generate receipt PDF for order %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to generate receipt", nil)
		return
	}

	utils.LogInfo("Generated receipt PDF for order %d", order.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%d.pdf", order.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
