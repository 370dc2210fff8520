package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonContext(t *testing.T, user *models.User, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	b, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b))
	c.Request.Header.Set("Content-Type", "application/json")

	if user != nil {
		c.Set("user", *user)
	}
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateBankTransferOrder(t *testing.T) {
	user, service, _ := setupIntentTest(t)
	forceFallbackRates(t)

	c, w := jsonContext(t, user, AlternativePaymentRequest{
		ServiceID:   service.ID,
		PackageType: "basic",
		Currency:    "USD",
		Quantity:    10,
	})
	CreateBankTransferOrder(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	orderData := data["order"].(map[string]interface{})

	assert.Equal(t, models.GatewayBankTransfer, orderData["payment_gateway"])
	assert.Equal(t, models.OrderStatusPending, orderData["status"])
	assert.Equal(t, "40.00", orderData["amount"])
	assert.Contains(t, data["payment_url"].(string), "/payment/bank-transfer?order=")

	var order models.Order
	require.NoError(t, config.DB.First(&order).Error)
	assert.Equal(t, models.GatewayBankTransfer, order.PaymentGateway)
	assert.InDelta(t, 40.00, order.AmountUSD, 0.01)

	var audit models.AuditLog
	require.NoError(t, config.DB.Where("action = ?", models.AuditActionBankTransfer).First(&audit).Error)
	assert.True(t, audit.Success)
}

func TestCreateBankTransferOrderUnverifiedUser(t *testing.T) {
	user, service, _ := setupIntentTest(t)

	user.IsVerified = false
	c, w := jsonContext(t, user, AlternativePaymentRequest{
		ServiceID:   service.ID,
		PackageType: "basic",
	})
	CreateBankTransferOrder(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, string(utils.ErrEmailNotVerified), resp["code"])
	assert.EqualValues(t, 0, countOrders(t))
}

func TestCreateBankTransferOrderUnknownService(t *testing.T) {
	user, _, _ := setupIntentTest(t)

	c, w := jsonContext(t, user, AlternativePaymentRequest{
		ServiceID:   "no such service",
		PackageType: "basic",
	})
	CreateBankTransferOrder(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, 0, countOrders(t))
}

func TestCreateBankTransferOrderUnsupportedCurrency(t *testing.T) {
	user, service, _ := setupIntentTest(t)

	c, w := jsonContext(t, user, AlternativePaymentRequest{
		ServiceID:   service.ID,
		PackageType: "basic",
		Currency:    "EUR",
	})
	CreateBankTransferOrder(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 0, countOrders(t))
}

func TestGetPaymentOptionsHealthyProvider(t *testing.T) {
	user, _, stub := setupIntentTest(t)
	stub.healthy = true

	c, w := jsonContext(t, user, nil)
	GetPaymentOptions(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["invoicing_healthy"])

	options := data["options"].([]interface{})
	require.Len(t, options, 3)
	first := options[0].(map[string]interface{})
	assert.Equal(t, models.GatewayZoho, first["id"])
	assert.Equal(t, true, first["recommended"])
}

func TestGetPaymentOptionsDegradedProvider(t *testing.T) {
	user, _, stub := setupIntentTest(t)
	stub.healthy = false

	c, w := jsonContext(t, user, nil)
	GetPaymentOptions(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, false, data["invoicing_healthy"])

	// The invoicing channel is withheld and email becomes the recommendation
	options := data["options"].([]interface{})
	require.Len(t, options, 2)
	first := options[0].(map[string]interface{})
	assert.Equal(t, models.GatewayEmail, first["id"])
	assert.Equal(t, true, first["recommended"])
}
