package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-gonic/gin"
)

// InvoiceAPIItem is one line item in a direct invoicing request
type InvoiceAPIItem struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Rate        float64 `json:"rate" binding:"required"`
	Quantity    int     `json:"quantity"`
}

// InvoiceAPIRequest is the POST body for the direct invoicing endpoint
type InvoiceAPIRequest struct {
	Customer struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required,email"`
		Phone   string `json:"phone"`
		Company string `json:"company"`
	} `json:"customer" binding:"required"`
	Items    []InvoiceAPIItem `json:"items" binding:"required,min=1"`
	Currency string           `json:"currency"`
	Notes    string           `json:"notes"`
}

// InvoicingProbe handles GET on the invoicing endpoint: a connectivity
// probe for the invoicing provider.
func InvoicingProbe(c *gin.Context) {
	requestID := utils.RequestID(c)
	healthy := getInvoicer().HealthCheck()

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reachable": healthy,
		"requestId": requestID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateInvoiceDirect handles POST on the invoicing endpoint: builds and
// sends a provider invoice straight from the supplied customer and items.
func CreateInvoiceDirect(c *gin.Context) {
	requestID := utils.RequestID(c)
	utils.LogInfo("[%s] CreateInvoiceDirect called", requestID)

	var req InvoiceAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Invalid request body: " + err.Error(),
			"requestId": requestID,
		})
		return
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = utils.CurrencyUSD
	}
	if !utils.SupportedCurrency(currency) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"error":     "Unsupported currency. Use USD, INR or AED",
			"requestId": requestID,
		})
		return
	}

	items := make([]utils.ZohoInvoiceItem, 0, len(req.Items))
	for _, item := range req.Items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, utils.ZohoInvoiceItem{
			Name:        item.Name,
			Description: item.Description,
			Rate:        item.Rate,
			Quantity:    quantity,
		})
	}

	invoice, contact, err := invokeWithRetry(utils.InvoiceRequest{
		Customer: utils.ZohoCustomer{
			Name:    req.Customer.Name,
			Email:   req.Customer.Email,
			Phone:   req.Customer.Phone,
			Company: req.Customer.Company,
		},
		Items:     items,
		Currency:  currency,
		Notes:     req.Notes,
		RequestID: requestID,
	})
	if err != nil {
		pe, ok := utils.AsPaymentError(err)
		var debug interface{}
		code := string(utils.ErrZohoIntegrationFailed)
		if ok {
			code = string(pe.Code)
			debug = pe.Detail
		}
		utils.WriteAuditLog(nil, "", models.AuditActionInvoiceCreation,
			"direct invoice for "+req.Customer.Email, false, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     code,
			"requestId": requestID,
			"debug":     debug,
		})
		return
	}

	utils.WriteAuditLog(nil, "", models.AuditActionInvoiceCreation,
		"direct invoice "+invoice.InvoiceID+" for "+req.Customer.Email, true, "")

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"customer":  contact,
		"invoice":   invoice,
		"requestId": requestID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
