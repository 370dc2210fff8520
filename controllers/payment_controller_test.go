package controllers

import (
	"testing"
	"time"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInvoicer fails with the queued errors before succeeding
type stubInvoicer struct {
	failures []error
	calls    int
	lastReq  utils.InvoiceRequest
	healthy  bool
}

func (s *stubInvoicer) CreateAndSendInvoice(req utils.InvoiceRequest) (*utils.ZohoInvoice, *utils.ZohoContact, error) {
	s.calls++
	s.lastReq = req
	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		return nil, nil, err
	}
	return &utils.ZohoInvoice{
			InvoiceID:     "inv-1",
			InvoiceNumber: "INV-000001",
			Status:        "sent",
			Total:         req.Items[0].LineTotal(),
			PaymentURL:    "https://pay.example.com/inv-1",
		}, &utils.ZohoContact{ContactID: "cust-1", ContactName: req.Customer.Name, Email: req.Customer.Email},
		nil
}

func (s *stubInvoicer) HealthCheck() bool { return s.healthy }

func setupIntentTest(t *testing.T) (*models.User, *models.Service, *stubInvoicer) {
	t.Helper()
	utils.SetupTestDB(t)

	stub := &stubInvoicer{healthy: true}
	SetInvoicer(stub)
	t.Cleanup(func() { SetInvoicer(nil) })

	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = 1 * time.Second })

	user := utils.CreateTestUser(t)
	service := utils.CreateTestService(t, "Email Migration & Setup", "Email Services",
		models.PackagePriceMap{models.PackageBasic: 4.00, models.PackageStandard: 6.50})
	return user, service, stub
}

// forceFallbackRates makes currency conversion deterministic for assertions
func forceFallbackRates(t *testing.T) {
	t.Helper()
	prev := utils.SetLiveRateBaseURL("http://127.0.0.1:1")
	t.Cleanup(func() { utils.SetLiveRateBaseURL(prev) })
}

func countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, config.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestCreatePaymentIntentHappyPath(t *testing.T) {
	user, service, stub := setupIntentTest(t)
	forceFallbackRates(t)

	intent, order, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   service.ID,
		PackageType: "basic",
		Currency:    "USD",
		Quantity:    50,
	}, "req-1")
	require.Nil(t, perr)

	assert.Equal(t, "inv-1", intent.InvoiceID)
	assert.Equal(t, "cust-1", intent.CustomerID)
	assert.Equal(t, "https://pay.example.com/inv-1", intent.PaymentURL)

	assert.InDelta(t, 200.00, order.AmountUSD, 0.01)
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.GatewayZoho, order.PaymentGateway)
	assert.Equal(t, "inv-1", order.ZohoInvoiceID)
	assert.Equal(t, "cust-1", order.ZohoCustomerID)

	// The single line item carries the tier and quantity
	assert.Equal(t, 1, stub.calls)
	require.Len(t, stub.lastReq.Items, 1)
	assert.Equal(t, "Email Migration & Setup - basic package, quantity 50", stub.lastReq.Items[0].Description)
	assert.Equal(t, 50, stub.lastReq.Items[0].Quantity)
	assert.Equal(t, "USD", stub.lastReq.Currency)
	assert.Equal(t, user.Email, stub.lastReq.Customer.Email)

	// Success leaves a success audit row
	var audit models.AuditLog
	require.NoError(t, config.DB.Where("action = ?", models.AuditActionPaymentIntent).First(&audit).Error)
	assert.True(t, audit.Success)
}

func TestCreatePaymentIntentCurrencyAmounts(t *testing.T) {
	user, service, _ := setupIntentTest(t)
	forceFallbackRates(t)

	_, order, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   service.ID,
		PackageType: "basic",
		Currency:    "INR",
		Quantity:    50,
	}, "req-2")
	require.Nil(t, perr)

	assert.Equal(t, "INR", order.Currency)
	assert.InDelta(t, 200.00, order.AmountUSD, 0.01)
	assert.InDelta(t, order.AmountUSD*83.25, order.AmountINR, 0.5)
	assert.InDelta(t, order.AmountINR, order.Amount(), 0.001)
}

func TestCreatePaymentIntentUnverifiedUserCreatesNoOrder(t *testing.T) {
	user, service, stub := setupIntentTest(t)

	user.IsVerified = false
	_, order, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   service.ID,
		PackageType: "basic",
	}, "req-3")
	require.NotNil(t, perr)

	assert.Equal(t, utils.ErrEmailNotVerified, perr.Code)
	assert.Nil(t, order)
	assert.Equal(t, 0, stub.calls)
	assert.EqualValues(t, 0, countOrders(t))
}

func TestCreatePaymentIntentInvalidPackageCreatesNoOrder(t *testing.T) {
	user, service, stub := setupIntentTest(t)

	_, order, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   service.ID,
		PackageType: "enterprise",
	}, "req-4")
	require.NotNil(t, perr)

	assert.Equal(t, utils.ErrInvalidPackage, perr.Code)
	assert.Nil(t, order)
	assert.Equal(t, 0, stub.calls)
	assert.EqualValues(t, 0, countOrders(t))
}

func TestCreatePaymentIntentUnknownServiceCreatesNoOrder(t *testing.T) {
	user, _, stub := setupIntentTest(t)

	_, _, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   "quantum accounting",
		PackageType: "basic",
	}, "req-5")
	require.NotNil(t, perr)

	assert.Equal(t, utils.ErrServiceNotFound, perr.Code)
	assert.Equal(t, 0, stub.calls)
	assert.EqualValues(t, 0, countOrders(t))
}

func TestCreatePaymentIntentRetriesTransientFailures(t *testing.T) {
	user, service, stub := setupIntentTest(t)
	forceFallbackRates(t)

	stub.failures = []error{
		utils.NewRetryablePaymentError(utils.ErrZohoUnavailable, "provider down", nil),
		utils.NewRetryablePaymentError(utils.ErrZohoUnavailable, "provider down", nil),
	}

	intent, _, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   service.ID,
		PackageType: "basic",
	}, "req-6")
	require.Nil(t, perr)

	assert.Equal(t, 3, stub.calls)
	assert.Equal(t, "inv-1", intent.InvoiceID)
	// Retries reuse the one pending order created before the first attempt
	assert.EqualValues(t, 1, countOrders(t))
}

func TestCreatePaymentIntentExhaustsRetries(t *testing.T) {
	user, service, stub := setupIntentTest(t)
	forceFallbackRates(t)

	stub.failures = []error{
		utils.NewRetryablePaymentError(utils.ErrZohoUnavailable, "provider down", nil),
		utils.NewRetryablePaymentError(utils.ErrZohoUnavailable, "provider down", nil),
		utils.NewRetryablePaymentError(utils.ErrZohoUnavailable, "provider down", nil),
	}

	_, order, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   service.ID,
		PackageType: "basic",
	}, "req-7")
	require.NotNil(t, perr)

	assert.Equal(t, utils.ErrZohoUnavailable, perr.Code)
	assert.True(t, perr.Retryable)
	assert.Equal(t, maxInvoiceAttempts, stub.calls)

	// The pending order survives the failure for later follow-up
	require.NotNil(t, order)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.EqualValues(t, 1, countOrders(t))

	var audit models.AuditLog
	require.NoError(t, config.DB.Where("action = ? AND success = ?", models.AuditActionPaymentIntent, false).First(&audit).Error)
	assert.Contains(t, audit.Details, "code=ZOHO_UNAVAILABLE")
}

func TestCreatePaymentIntentNonRetryableFailsImmediately(t *testing.T) {
	user, service, stub := setupIntentTest(t)
	forceFallbackRates(t)

	stub.failures = []error{
		utils.NewPaymentError(utils.ErrZohoAuthFailed, "bad credentials", nil),
	}

	_, _, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   service.ID,
		PackageType: "basic",
	}, "req-8")
	require.NotNil(t, perr)

	assert.Equal(t, utils.ErrZohoAuthFailed, perr.Code)
	assert.Equal(t, 1, stub.calls)

	var failed int64
	require.NoError(t, config.DB.Model(&models.AuditLog{}).
		Where("action = ? AND success = ?", models.AuditActionPaymentIntent, false).
		Count(&failed).Error)
	assert.EqualValues(t, 1, failed)
}

func TestCreatePaymentIntentDefaultsQuantityAndCurrency(t *testing.T) {
	user, service, stub := setupIntentTest(t)
	forceFallbackRates(t)

	_, order, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   service.ID,
		PackageType: "standard",
	}, "req-9")
	require.Nil(t, perr)

	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, 1, order.Quantity)
	assert.InDelta(t, 6.50, order.AmountUSD, 0.01)
	assert.Equal(t, 1, stub.lastReq.Items[0].Quantity)
}

func TestCreatePaymentIntentMissingBillingProfile(t *testing.T) {
	user, service, stub := setupIntentTest(t)

	require.NoError(t, config.DB.Where("user_id = ?", user.ID).Delete(&models.Client{}).Error)

	_, _, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   service.ID,
		PackageType: "basic",
	}, "req-10")
	require.NotNil(t, perr)

	assert.Equal(t, utils.ErrClientProfileMissing, perr.Code)
	assert.Equal(t, 0, stub.calls)
	assert.EqualValues(t, 0, countOrders(t))
}

func TestCreatePaymentIntentResolvesServiceByName(t *testing.T) {
	user, _, stub := setupIntentTest(t)
	forceFallbackRates(t)

	_, order, perr := createPaymentIntentForUser(*user, PaymentIntentRequest{
		ServiceID:   "email migration",
		PackageType: "basic",
		Quantity:    2,
	}, "req-11")
	require.Nil(t, perr)

	assert.InDelta(t, 8.00, order.AmountUSD, 0.01)
	assert.Equal(t, 1, stub.calls)
}
