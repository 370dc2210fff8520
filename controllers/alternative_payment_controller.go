package controllers

import (
	"fmt"
	"strings"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-gonic/gin"
)

// AlternativePaymentRequest is the POST body for the degraded channels
type AlternativePaymentRequest struct {
	ServiceID   string `json:"service_id" binding:"required"`
	PackageType string `json:"package_type" binding:"required"`
	Currency    string `json:"currency"`
	Quantity    int    `json:"quantity"`
}

// GetPaymentOptions returns the available payment channels, preferring the
// invoicing provider when its health probe passes.
func GetPaymentOptions(c *gin.Context) {
	requestID := utils.RequestID(c)
	utils.LogInfo("[%s] GetPaymentOptions called", requestID)

	zohoHealthy := getInvoicer().HealthCheck()
	utils.LogInfo("[%s] Invoicing provider healthy: %v", requestID, zohoHealthy)

	options := []gin.H{}
	if zohoHealthy {
		options = append(options, gin.H{
			"id":          models.GatewayZoho,
			"name":        "Online Invoice",
			"description": "Pay securely through our invoicing portal",
			"available":   true,
			"recommended": true,
		})
	}
	options = append(options, gin.H{
		"id":          models.GatewayEmail,
		"name":        "Email Payment Request",
		"description": "Request payment instructions by email",
		"available":   true,
		"recommended": !zohoHealthy,
	})
	options = append(options, gin.H{
		"id":          models.GatewayBankTransfer,
		"name":        "Bank Transfer",
		"description": "Pay via direct bank transfer",
		"available":   true,
	})

	utils.Success(c, "Payment options retrieved successfully", gin.H{
		"options":           options,
		"invoicing_healthy": zohoHealthy,
	})
}

// CreateEmailPaymentRequest handles the email fallback channel: persists a
// pending order tagged `email` and returns a pre-filled compose link.
func CreateEmailPaymentRequest(c *gin.Context) {
	createAlternativeOrder(c, models.GatewayEmail)
}

// CreateBankTransferOrder handles the bank-transfer fallback channel
func CreateBankTransferOrder(c *gin.Context) {
	createAlternativeOrder(c, models.GatewayBankTransfer)
}

func createAlternativeOrder(c *gin.Context, gateway string) {
	requestID := utils.RequestID(c)
	utils.LogInfo("[%s] Alternative payment (%s) called", requestID, gateway)

	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "Please login for access")
		return
	}
	user := userVal.(models.User)

	if !user.IsVerified {
		utils.PaymentFailure(c, utils.NewPaymentError(utils.ErrEmailNotVerified, "Please verify your email before making a purchase", nil))
		return
	}

	var req AlternativePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. service_id and package_type are required", err.Error())
		return
	}

	serviceID, err := utils.ResolveServiceID(req.ServiceID)
	if err != nil {
		pe, _ := utils.AsPaymentError(err)
		utils.PaymentFailure(c, pe)
		return
	}

	var service models.Service
	if err := config.DB.Where("id = ?", serviceID).First(&service).Error; err != nil {
		utils.NotFound(c, "Service not found")
		return
	}

	packageType := strings.ToLower(strings.TrimSpace(req.PackageType))
	unitPrice, ok := service.PackagePrices[packageType]
	if !ok {
		utils.PaymentFailure(c, utils.NewPaymentError(utils.ErrInvalidPackage,
			fmt.Sprintf("Package %q is not available for %s", req.PackageType, service.Name), nil))
		return
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = utils.CurrencyUSD
	}
	if !utils.SupportedCurrency(currency) {
		utils.BadRequest(c, "Unsupported currency. Use USD, INR or AED", nil)
		return
	}
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	totalUSD := utils.Round2(unitPrice * float64(quantity))
	total := utils.Round2(utils.Convert(totalUSD, utils.CurrencyUSD, currency))
	amounts := utils.ComputeOrderAmounts(total, currency)

	order := models.Order{
		UserID:         user.ID,
		ServiceID:      service.ID,
		PackageType:    packageType,
		Quantity:       quantity,
		AmountUSD:      amounts.USD,
		AmountINR:      amounts.INR,
		AmountAED:      amounts.AED,
		Currency:       currency,
		Status:         models.OrderStatusPending,
		PaymentGateway: gateway,
		TransactionID:  utils.GenerateTransactionID(),
	}
	if err := config.DB.Create(&order).Error; err != nil {
		utils.LogError("[%s] Failed to create %s order for user ID %d: %v", requestID, gateway, user.ID, err)
		utils.PaymentFailure(c, utils.NewPaymentError(utils.ErrOrderCreationFailed, "Failed to create order", err))
		return
	}
	utils.LogInfo("[%s] Created pending %s order %d for user ID %d", requestID, gateway, order.ID, user.ID)

	cfg, _ := config.LoadConfig()
	supportEmail := "support@techcare.io"
	frontendURL := ""
	if cfg != nil {
		supportEmail = cfg.SupportEmail
		frontendURL = cfg.FrontendURL
	}

	var paymentURL string
	var action string
	switch gateway {
	case models.GatewayEmail:
		action = models.AuditActionEmailRequest
		paymentURL = utils.BuildPaymentRequestMailto(supportEmail, service.Name, packageType, total, currency, order.ID)
		// Best effort: a notification failure must not fail the order
		if err := utils.SendPaymentRequestNotification(supportEmail, user.FirstName+" "+user.LastName, user.Email,
			service.Name, packageType, total, currency, order.ID); err != nil {
			utils.LogError("[%s] Failed to notify support inbox for order %d: %v", requestID, order.ID, err)
		}
	case models.GatewayBankTransfer:
		action = models.AuditActionBankTransfer
		paymentURL = fmt.Sprintf("%s/payment/bank-transfer?order=%d", frontendURL, order.ID)
	}

	utils.WriteAuditLog(&user.ID, service.ID, action,
		fmt.Sprintf("order=%d package=%s currency=%s amount=%.2f", order.ID, packageType, currency, total),
		true, "")

	utils.Success(c, "Order created. Complete payment using the provided link.", gin.H{
		"order": gin.H{
			"id":              order.ID,
			"status":          order.Status,
			"payment_gateway": order.PaymentGateway,
			"currency":        order.Currency,
			"amount":          fmt.Sprintf("%.2f", order.Amount()),
		},
		"payment_url": paymentURL,
		"request_id":  requestID,
	})
}
