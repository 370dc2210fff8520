package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-gonic/gin"
	razorpay "github.com/razorpay/razorpay-go"
)

// InitiateDirectPayment handles POST /user/checkout/payment/direct/initiate.
// The direct channel is Razorpay-backed and only serves INR orders.
func InitiateDirectPayment(c *gin.Context) {
	utils.LogInfo("InitiateDirectPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "Please login for access")
		return
	}
	user := userVal.(models.User)

	var req struct {
		OrderID uint64 `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. order_id is required", err.Error())
		return
	}

	db := config.DB
	var order models.Order
	if err := db.Preload("Service").Where("id = ? AND user_id = ?", req.OrderID, user.ID).First(&order).Error; err != nil {
		utils.LogError("Order not found for ID: %d, user ID: %d", req.OrderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}

	if order.Status != models.OrderStatusPending {
		utils.BadRequest(c, "Payment for this order has already been completed", nil)
		return
	}
	if order.Currency != utils.CurrencyINR {
		utils.BadRequest(c, "Direct payment is only available for INR orders", nil)
		return
	}
	if order.RazorpayOrderID != "" {
		utils.BadRequest(c, "A payment is already in progress for this order", nil)
		return
	}

	// Razorpay expects the amount in paise
	amountPaise := int(order.AmountINR * 100)
	utils.LogInfo("Processing direct payment of %d paise for order %d", amountPaise, order.ID)

	client := razorpay.NewClient(os.Getenv("RAZORPAY_KEY"), os.Getenv("RAZORPAY_SECRET"))
	orderData := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        utils.CurrencyINR,
		"receipt":         "order_rcptid_" + strconv.FormatUint(uint64(order.ID), 10),
		"payment_capture": 1,
	}
	rzOrder, err := client.Order.Create(orderData, nil)
	if err != nil {
		utils.LogError("Failed to create Razorpay order for order %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to create payment order", err.Error())
		return
	}

	if err := db.Model(&order).Updates(map[string]interface{}{
		"payment_gateway":   models.GatewayDirect,
		"razorpay_order_id": fmt.Sprintf("%v", rzOrder["id"]),
	}).Error; err != nil {
		utils.LogError("Failed to update order %d with Razorpay details: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to update order details", err.Error())
		return
	}

	utils.Success(c, "Payment initiated successfully", gin.H{
		"order": gin.H{
			"id":                order.ID,
			"razorpay_order_id": rzOrder["id"],
			"amount":            fmt.Sprintf("%.2f", order.AmountINR),
			"currency":          order.Currency,
			"service":           order.Service.Name,
		},
		"key": os.Getenv("RAZORPAY_KEY"),
		"user": gin.H{
			"name":  user.Username,
			"email": user.Email,
		},
	})
}

// VerifyDirectPayment handles POST /user/checkout/payment/direct/verify
func VerifyDirectPayment(c *gin.Context) {
	utils.LogInfo("VerifyDirectPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "Please login for access")
		return
	}
	user := userVal.(models.User)

	var req struct {
		OrderID           uint   `json:"order_id" binding:"required"`
		RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
		RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
		RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	keySecret := os.Getenv("RAZORPAY_SECRET")
	data := req.RazorpayOrderID + "|" + req.RazorpayPaymentID
	h := hmac.New(sha256.New, []byte(keySecret))
	h.Write([]byte(data))
	generatedSignature := hex.EncodeToString(h.Sum(nil))
	if generatedSignature != req.RazorpaySignature {
		utils.LogError("Payment verification failed for order %d, user %d", req.OrderID, user.ID)
		utils.BadRequest(c, "Payment verification failed", gin.H{"retry": true})
		return
	}

	db := config.DB
	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", req.OrderID, user.ID).First(&order).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	if order.RazorpayOrderID != req.RazorpayOrderID {
		utils.LogError("Razorpay order ID mismatch for order %d. Expected: %s, Received: %s",
			req.OrderID, order.RazorpayOrderID, req.RazorpayOrderID)
		utils.BadRequest(c, "Invalid Razorpay order ID", nil)
		return
	}

	if err := db.Model(&order).Update("status", models.OrderStatusPaid).Error; err != nil {
		utils.LogError("Failed to mark order %d paid: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to update order", err.Error())
		return
	}
	utils.LogInfo("Order %d marked paid via direct channel", order.ID)

	utils.WriteAuditLog(&user.ID, order.ServiceID, models.AuditActionDirectPayment,
		fmt.Sprintf("order=%d razorpay_order=%s payment=%s", order.ID, req.RazorpayOrderID, req.RazorpayPaymentID),
		true, "")

	utils.Success(c, "Thank you for your payment! Your order has been placed.", gin.H{
		"order_id":       order.ID,
		"amount":         fmt.Sprintf("%.2f", order.AmountINR),
		"currency":       order.Currency,
		"payment_method": order.PaymentGateway,
	})
}
