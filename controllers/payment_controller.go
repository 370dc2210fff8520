package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-gonic/gin"
)

// Invoicer is the invoicing-provider surface the orchestrator depends on.
// Production wires the Zoho client; tests substitute a stub.
type Invoicer interface {
	CreateAndSendInvoice(req utils.InvoiceRequest) (*utils.ZohoInvoice, *utils.ZohoContact, error)
	HealthCheck() bool
}

var invoicer Invoicer

// SetInvoicer installs the invoicing client used by the orchestrator
func SetInvoicer(i Invoicer) {
	invoicer = i
}

func getInvoicer() Invoicer {
	if invoicer == nil {
		cfg, err := config.LoadConfig()
		if err != nil {
			utils.LogError("Failed to load config for invoicing client: %v", err)
			cfg = &config.Config{}
		}
		invoicer = utils.NewZohoClient(cfg.Zoho)
	}
	return invoicer
}

const maxInvoiceAttempts = 3

// retryBaseDelay is the first backoff interval; it doubles per attempt.
// Package variable so tests do not sleep for real.
var retryBaseDelay = 1 * time.Second

// PaymentIntentRequest is the POST body for payment intent creation
type PaymentIntentRequest struct {
	ServiceID   string  `json:"service_id" binding:"required"`
	PackageType string  `json:"package_type" binding:"required"`
	TotalPrice  float64 `json:"total_price"`
	Currency    string  `json:"currency"`
	Quantity    int     `json:"quantity"`
}

// CreatePaymentIntent handles POST /user/checkout/payment/intent
func CreatePaymentIntent(c *gin.Context) {
	requestID := utils.RequestID(c)
	utils.LogInfo("[%s] CreatePaymentIntent called", requestID)

	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("[%s] User not found in context", requestID)
		utils.PaymentFailure(c, utils.NewPaymentError(utils.ErrAuthRequired, "Please login for access", nil))
		return
	}
	user := userVal.(models.User)

	var req PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("[%s] Invalid payment intent request for user ID %d: %v", requestID, user.ID, err)
		utils.BadRequest(c, "Invalid request. service_id and package_type are required", err.Error())
		return
	}

	if req.Currency != "" && !utils.SupportedCurrency(req.Currency) {
		utils.LogError("[%s] Unsupported currency %q for user ID %d", requestID, req.Currency, user.ID)
		utils.BadRequest(c, "Unsupported currency. Use USD, INR or AED", nil)
		return
	}

	intent, order, perr := createPaymentIntentForUser(user, req, requestID)
	if perr != nil {
		utils.LogError("[%s] Payment intent failed for user ID %d: %v", requestID, user.ID, perr)
		utils.PaymentFailure(c, perr)
		return
	}

	utils.Success(c, "Payment intent created successfully", gin.H{
		"intent": intent,
		"order": gin.H{
			"id":         order.ID,
			"status":     order.Status,
			"currency":   order.Currency,
			"amount":     fmt.Sprintf("%.2f", order.Amount()),
			"amount_usd": fmt.Sprintf("%.2f", order.AmountUSD),
			"amount_inr": fmt.Sprintf("%.2f", order.AmountINR),
			"amount_aed": fmt.Sprintf("%.2f", order.AmountAED),
		},
		"payment_url": intent.PaymentURL,
		"request_id":  requestID,
	})
}

// createPaymentIntentForUser runs the full orchestration: validate identity,
// resolve the service and package, compute currency amounts, persist the
// order, then drive the invoicing client with retry. The order row is
// created once; only the provider call is retried.
func createPaymentIntentForUser(user models.User, req PaymentIntentRequest, requestID string) (*models.PaymentIntent, *models.Order, *utils.PaymentError) {
	// Step 1: identity preconditions, checked before anything is persisted
	if user.ID == 0 {
		return nil, nil, utils.NewPaymentError(utils.ErrAuthRequired, "Please login for access", nil)
	}
	if !user.IsVerified {
		utils.LogError("[%s] User ID %d has not verified their email", requestID, user.ID)
		return nil, nil, utils.NewPaymentError(utils.ErrEmailNotVerified, "Please verify your email before making a purchase", nil)
	}

	// Step 2: resolve the service identifier
	serviceID, err := utils.ResolveServiceID(req.ServiceID)
	if err != nil {
		pe, _ := utils.AsPaymentError(err)
		return nil, nil, pe
	}
	utils.LogInfo("[%s] Resolved service identifier %q to %s", requestID, req.ServiceID, serviceID)

	// Step 3: load the service and verify the package tier
	var service models.Service
	if err := config.DB.Where("id = ?", serviceID).First(&service).Error; err != nil {
		utils.LogError("[%s] Service %s disappeared between resolution and load: %v", requestID, serviceID, err)
		return nil, nil, utils.NewPaymentError(utils.ErrServiceNotFound, "Service not found", err)
	}

	packageType := strings.ToLower(strings.TrimSpace(req.PackageType))
	unitPrice, ok := service.PackagePrices[packageType]
	if !ok {
		utils.LogError("[%s] Package %q not offered for service %s", requestID, packageType, service.Name)
		return nil, nil, utils.NewPaymentError(utils.ErrInvalidPackage,
			fmt.Sprintf("Package %q is not available for %s", req.PackageType, service.Name), nil).
			WithDetail(gin.H{"available_packages": availableTiers(service)})
	}

	// Step 4: billing profile must exist
	var client models.Client
	if err := config.DB.Where("user_id = ?", user.ID).First(&client).Error; err != nil {
		utils.LogError("[%s] Billing profile missing for user ID %d: %v", requestID, user.ID, err)
		return nil, nil, utils.NewPaymentError(utils.ErrClientProfileMissing, "Billing profile not found", err)
	}

	// Step 5: compute the three-currency amount set
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = utils.CurrencyUSD
	}
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	totalUSD := utils.Round2(unitPrice * float64(quantity))
	total := req.TotalPrice
	if total <= 0 {
		total = utils.Round2(utils.Convert(totalUSD, utils.CurrencyUSD, currency))
	}
	amounts := utils.ComputeOrderAmounts(total, currency)
	utils.LogInfo("[%s] Computed amounts for user ID %d: %.2f %s (USD %.2f, INR %.2f, AED %.2f)",
		requestID, user.ID, total, currency, amounts.USD, amounts.INR, amounts.AED)

	// Step 6: persist the pending order before the provider call so the row
	// exists even if invoicing fails
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
		PaymentGateway: models.GatewayZoho,
		TransactionID:  utils.GenerateTransactionID(),
	}
	if err := config.DB.Create(&order).Error; err != nil {
		utils.LogError("[%s] Failed to create order for user ID %d: %v", requestID, user.ID, err)
		return nil, nil, utils.NewPaymentError(utils.ErrOrderCreationFailed, "Failed to create order", err)
	}
	utils.LogInfo("[%s] Created pending order %d for user ID %d", requestID, order.ID, user.ID)

	// Step 7: drive the invoicing client, retrying only retryable failures.
	// The same order row is reused across attempts.
	invoiceReq := utils.InvoiceRequest{
		Customer: utils.ZohoCustomer{
			Name:    client.Name,
			Email:   client.Email,
			Phone:   client.Phone,
			Company: client.Company,
		},
		Items: []utils.ZohoInvoiceItem{
			{
				Name:        service.Name,
				Description: fmt.Sprintf("%s - %s package, quantity %d", service.Name, packageType, quantity),
				Rate:        utils.Round2(utils.Convert(unitPrice, utils.CurrencyUSD, currency)),
				Quantity:    quantity,
			},
		},
		Currency:  currency,
		Notes:     fmt.Sprintf("Order #%d (%s)", order.ID, order.TransactionID),
		RequestID: requestID,
	}

	invoice, contact, invErr := invokeWithRetry(invoiceReq)
	if invErr != nil {
		pe, ok := utils.AsPaymentError(invErr)
		if !ok {
			pe = utils.NewPaymentError(utils.ErrZohoIntegrationFailed, "Invoicing failed", invErr)
		}
		utils.WriteAuditLog(&user.ID, service.ID, models.AuditActionPaymentIntent,
			fmt.Sprintf("order=%d package=%s currency=%s amount=%.2f code=%s", order.ID, packageType, currency, total, pe.Code),
			false, pe.Error())
		return nil, &order, pe
	}

	// Step 8: record the external identifiers on the order
	updates := map[string]interface{}{
		"zoho_invoice_id":  invoice.InvoiceID,
		"zoho_customer_id": contact.ContactID,
	}
	if err := config.DB.Model(&order).Updates(updates).Error; err != nil {
		utils.LogError("[%s] Failed to update order %d with invoice identifiers: %v", requestID, order.ID, err)
	} else {
		order.ZohoInvoiceID = invoice.InvoiceID
		order.ZohoCustomerID = contact.ContactID
	}

	utils.WriteAuditLog(&user.ID, service.ID, models.AuditActionPaymentIntent,
		fmt.Sprintf("order=%d invoice=%s customer=%s", order.ID, invoice.InvoiceID, contact.ContactID),
		true, "")

	intent := &models.PaymentIntent{
		InvoiceID:     invoice.InvoiceID,
		InvoiceNumber: invoice.InvoiceNumber,
		PaymentURL:    invoice.PaymentURL,
		Total:         invoice.Total,
		Status:        invoice.Status,
		CustomerID:    contact.ContactID,
		TransactionID: order.TransactionID,
	}
	utils.LogInfo("[%s] Payment intent ready for order %d: invoice %s", requestID, order.ID, invoice.InvoiceID)
	return intent, &order, nil
}

// invokeWithRetry calls the invoicing client up to maxInvoiceAttempts times
// with exponential backoff, retrying only errors tagged retryable.
func invokeWithRetry(req utils.InvoiceRequest) (*utils.ZohoInvoice, *utils.ZohoContact, error) {
	delay := retryBaseDelay
	var lastErr error

	for attempt := 1; attempt <= maxInvoiceAttempts; attempt++ {
		invoice, contact, err := getInvoicer().CreateAndSendInvoice(req)
		if err == nil {
			return invoice, contact, nil
		}
		lastErr = err

		if !utils.IsRetryable(err) {
			utils.LogError("[%s] Invoice attempt %d failed with non-retryable error: %v", req.RequestID, attempt, err)
			return nil, nil, err
		}

		utils.LogError("[%s] Invoice attempt %d/%d failed: %v", req.RequestID, attempt, maxInvoiceAttempts, err)
		if attempt < maxInvoiceAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return nil, nil, lastErr
}

func availableTiers(service models.Service) []string {
	tiers := make([]string, 0, len(service.PackagePrices))
	for _, t := range []string{models.PackageBasic, models.PackageStandard, models.PackageEnterprise} {
		if service.HasPackage(t) {
			tiers = append(tiers, t)
		}
	}
	return tiers
}
