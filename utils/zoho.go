package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nivedh-07/TechCare/config"
)

// zohoDuplicateContactCode is the provider error code returned when a
// contact with the same name already exists.
const zohoDuplicateContactCode = 3062

// invoiceDueDays is how far out the invoice due date is set
const invoiceDueDays = 30

// ZohoCustomer describes the billing customer sent to the provider
type ZohoCustomer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

// ZohoContact is the provider's customer record
type ZohoContact struct {
	ContactID   string `json:"contact_id"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
}

// ZohoInvoiceItem is one invoice line
type ZohoInvoiceItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Rate        float64 `json:"rate"`
	Quantity    int     `json:"quantity"`
}

// LineTotal returns rate * quantity for the item
func (i ZohoInvoiceItem) LineTotal() float64 {
	return Round2(i.Rate * float64(i.Quantity))
}

// ZohoInvoice is the provider invoice as the orchestrator sees it
type ZohoInvoice struct {
	InvoiceID     string  `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	Status        string  `json:"status"`
	Total         float64 `json:"total"`
	PaymentURL    string  `json:"payment_url"`
}

// InvoiceRequest carries everything needed for one invoice creation
type InvoiceRequest struct {
	Customer  ZohoCustomer
	Items     []ZohoInvoiceItem
	Currency  string
	Notes     string
	RequestID string
}

// ZohoClient wraps the invoicing provider's OAuth and REST endpoints. Base
// URLs are fields so tests can point the client at a stub server.
type ZohoClient struct {
	cfg        config.ZohoConfig
	httpClient *http.Client

	AccountsBaseURL string
	APIBaseURL      string
	PortalBaseURL   string
}

// NewZohoClient creates a client from the loaded configuration
func NewZohoClient(cfg config.ZohoConfig) *ZohoClient {
	return &ZohoClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		AccountsBaseURL: "https://accounts.zoho.com",
		APIBaseURL:      "https://www.zohoapis.com/books/v3",
		PortalBaseURL:   "https://books.zoho.com",
	}
}

// checkConfig verifies the four required secrets before any network call
func (z *ZohoClient) checkConfig() *PaymentError {
	if !z.cfg.Complete() {
		return NewPaymentError(ErrZohoConfigMissing,
			"Invoicing provider credentials are not fully configured", nil)
	}
	return nil
}

// classifyHTTPError tags transport and server-side failures as retryable
func classifyHTTPError(code PaymentErrorCode, message string, status int, body string) *PaymentError {
	err := fmt.Errorf("status %d: %s", status, body)
	if status >= 500 || status == http.StatusTooManyRequests {
		return NewRetryablePaymentError(code, message, err)
	}
	return NewPaymentError(code, message, err)
}

// getAccessToken exchanges the refresh token for a short-lived access token
func (z *ZohoClient) getAccessToken(requestID string) (string, error) {
	form := url.Values{}
	form.Set("refresh_token", z.cfg.RefreshToken)
	form.Set("client_id", z.cfg.ClientID)
	form.Set("client_secret", z.cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")

	LogInfo("[%s] Requesting Zoho access token", requestID)
	resp, err := z.httpClient.PostForm(z.AccountsBaseURL+"/oauth/v2/token", form)
	if err != nil {
		LogError("[%s] Zoho token endpoint unreachable: %v", requestID, err)
		return "", NewRetryablePaymentError(ErrZohoUnavailable, "Invoicing provider is unreachable", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		LogError("[%s] Zoho token exchange failed with status %d", requestID, resp.StatusCode)
		return "", classifyHTTPError(ErrZohoAuthFailed, "Failed to obtain invoicing access token", resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", NewPaymentError(ErrZohoAuthFailed, "Unreadable token response", err)
	}
	if payload.AccessToken == "" {
		LogError("[%s] Zoho token response missing access_token: %s", requestID, payload.Error)
		return "", NewPaymentError(ErrZohoAuthFailed, "Token exchange rejected", fmt.Errorf("provider error: %s", payload.Error))
	}

	LogInfo("[%s] Obtained Zoho access token", requestID)
	return payload.AccessToken, nil
}

// doJSON issues an authenticated request against the Books API
func (z *ZohoClient) doJSON(method, path, token string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewBuffer(b)
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	endpoint := fmt.Sprintf("%s%s%sorganization_id=%s", z.APIBaseURL, path, sep, z.cfg.OrganizationID)

	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := z.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

type contactListResponse struct {
	Code     int           `json:"code"`
	Message  string        `json:"message"`
	Contacts []ZohoContact `json:"contacts"`
}

type contactResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Contact *ZohoContact `json:"contact"`
}

func (z *ZohoClient) findContactByEmail(token, email, requestID string) (*ZohoContact, error) {
	status, body, err := z.doJSON(http.MethodGet, "/contacts?email="+url.QueryEscape(email), token, nil)
	if err != nil {
		return nil, NewRetryablePaymentError(ErrZohoUnavailable, "Contact lookup failed", err)
	}
	if status != http.StatusOK {
		return nil, classifyHTTPError(ErrZohoAPIError, "Contact lookup rejected", status, string(body))
	}

	var payload contactListResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewPaymentError(ErrZohoAPIError, "Unreadable contact lookup response", err)
	}
	if len(payload.Contacts) == 0 {
		return nil, nil
	}
	LogInfo("[%s] Found existing Zoho contact by email: %s", requestID, payload.Contacts[0].ContactID)
	return &payload.Contacts[0], nil
}

func (z *ZohoClient) findContactByName(token, name, requestID string) (*ZohoContact, error) {
	status, body, err := z.doJSON(http.MethodGet, "/contacts?contact_name_contains="+url.QueryEscape(name), token, nil)
	if err != nil {
		return nil, NewRetryablePaymentError(ErrZohoUnavailable, "Contact lookup failed", err)
	}
	if status != http.StatusOK {
		return nil, classifyHTTPError(ErrZohoAPIError, "Contact lookup rejected", status, string(body))
	}

	var payload contactListResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewPaymentError(ErrZohoAPIError, "Unreadable contact lookup response", err)
	}
	if len(payload.Contacts) == 0 {
		return nil, nil
	}
	LogInfo("[%s] Found existing Zoho contact by name: %s", requestID, payload.Contacts[0].ContactID)
	return &payload.Contacts[0], nil
}

func (z *ZohoClient) createContact(token string, customer ZohoCustomer, requestID string) (*ZohoContact, *PaymentError) {
	payload := map[string]interface{}{
		"contact_name": customer.Name,
		"company_name": customer.Company,
		"contact_persons": []map[string]interface{}{
			{
				"first_name": customer.Name,
				"email":      customer.Email,
				"phone":      customer.Phone,
				"is_primary_contact": true,
			},
		},
	}

	status, body, err := z.doJSON(http.MethodPost, "/contacts", token, payload)
	if err != nil {
		return nil, NewRetryablePaymentError(ErrZohoUnavailable, "Contact creation failed", err)
	}

	var resp contactResponse
	// Body may still carry a provider code on non-2xx responses
	_ = json.Unmarshal(body, &resp)

	if status != http.StatusOK && status != http.StatusCreated {
		if resp.Code == zohoDuplicateContactCode || strings.Contains(strings.ToLower(resp.Message), "already exists") {
			LogInfo("[%s] Zoho reports contact already exists, recovering via search", requestID)
			return nil, NewPaymentError(ErrZohoAPIError, "Contact already exists", fmt.Errorf("provider code %d", resp.Code)).WithDetail("duplicate")
		}
		return nil, classifyHTTPError(ErrZohoAPIError, "Contact creation rejected", status, string(body))
	}

	if resp.Contact == nil || resp.Contact.ContactID == "" {
		return nil, NewPaymentError(ErrServiceDataMissing, "Contact response missing customer identifier", nil)
	}

	LogInfo("[%s] Created Zoho contact: %s", requestID, resp.Contact.ContactID)
	return resp.Contact, nil
}

// FindOrCreateCustomer locates the billing customer by email, creating it if
// absent. A duplicate-name rejection is recovered by searching again by
// email, then by name.
func (z *ZohoClient) FindOrCreateCustomer(token string, customer ZohoCustomer, requestID string) (*ZohoContact, error) {
	contact, err := z.findContactByEmail(token, customer.Email, requestID)
	if err != nil {
		return nil, err
	}
	if contact != nil {
		return contact, nil
	}

	created, createErr := z.createContact(token, customer, requestID)
	if createErr == nil {
		return created, nil
	}

	if detail, ok := createErr.Detail.(string); ok && detail == "duplicate" {
		if contact, err := z.findContactByEmail(token, customer.Email, requestID); err == nil && contact != nil {
			return contact, nil
		}
		if contact, err := z.findContactByName(token, customer.Name, requestID); err == nil && contact != nil {
			return contact, nil
		}
		return nil, NewPaymentError(ErrServiceDataMissing,
			"Customer exists at the provider but could not be retrieved", createErr)
	}

	return nil, createErr
}

// CreateInvoice submits the invoice with one line item per service item.
// The provider assigns the invoice number; the due date is 30 days out.
func (z *ZohoClient) CreateInvoice(token, contactID string, req InvoiceRequest) (*ZohoInvoice, error) {
	lineItems := make([]map[string]interface{}, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"rate":        item.Rate,
			"quantity":    item.Quantity,
			"item_total":  item.LineTotal(),
		})
	}

	payload := map[string]interface{}{
		"customer_id":   contactID,
		"currency_code": strings.ToUpper(req.Currency),
		"date":          time.Now().Format("2006-01-02"),
		"due_date":      time.Now().AddDate(0, 0, invoiceDueDays).Format("2006-01-02"),
		"line_items":    lineItems,
		"notes":         req.Notes,
	}

	LogInfo("[%s] Creating Zoho invoice for customer %s with %d line items", req.RequestID, contactID, len(lineItems))
	status, body, err := z.doJSON(http.MethodPost, "/invoices", token, payload)
	if err != nil {
		return nil, NewRetryablePaymentError(ErrZohoUnavailable, "Invoice creation failed", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, classifyHTTPError(ErrZohoAPIError, "Invoice creation rejected", status, string(body))
	}

	var resp struct {
		Invoice *struct {
			InvoiceID     string  `json:"invoice_id"`
			InvoiceNumber string  `json:"invoice_number"`
			Status        string  `json:"status"`
			Total         float64 `json:"total"`
		} `json:"invoice"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Invoice == nil {
		return nil, NewPaymentError(ErrZohoAPIError, "Invoice response missing invoice object", err)
	}

	LogInfo("[%s] Created Zoho invoice %s (%s)", req.RequestID, resp.Invoice.InvoiceID, resp.Invoice.InvoiceNumber)
	return &ZohoInvoice{
		InvoiceID:     resp.Invoice.InvoiceID,
		InvoiceNumber: resp.Invoice.InvoiceNumber,
		Status:        resp.Invoice.Status,
		Total:         resp.Invoice.Total,
	}, nil
}

// markInvoiceSent transitions the invoice to sent; an unsent invoice is not
// payable by the customer.
func (z *ZohoClient) markInvoiceSent(token, invoiceID, requestID string) error {
	status, body, err := z.doJSON(http.MethodPost, fmt.Sprintf("/invoices/%s/status/sent", invoiceID), token, nil)
	if err != nil {
		return NewRetryablePaymentError(ErrZohoUnavailable, "Failed to mark invoice sent", err)
	}
	if status != http.StatusOK {
		return classifyHTTPError(ErrZohoAPIError, "Marking invoice sent was rejected", status, string(body))
	}
	LogInfo("[%s] Marked invoice %s as sent", requestID, invoiceID)
	return nil
}

// fetchPaymentURL re-fetches the invoice for the customer-facing payment
// portal URL, synthesizing a deterministic portal URL when absent.
func (z *ZohoClient) fetchPaymentURL(token, invoiceID, requestID string) string {
	fallback := fmt.Sprintf("%s/portal/%s/invoices/%s", z.PortalBaseURL, z.cfg.OrganizationID, invoiceID)

	status, body, err := z.doJSON(http.MethodGet, fmt.Sprintf("/invoices/%s", invoiceID), token, nil)
	if err != nil || status != http.StatusOK {
		LogError("[%s] Could not fetch invoice %s for payment URL, using portal fallback", requestID, invoiceID)
		return fallback
	}

	var resp struct {
		Invoice struct {
			InvoiceURL string `json:"invoice_url"`
		} `json:"invoice"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Invoice.InvoiceURL == "" {
		LogInfo("[%s] Invoice %s has no portal URL, using synthesized fallback", requestID, invoiceID)
		return fallback
	}
	return resp.Invoice.InvoiceURL
}

// CreateAndSendInvoice drives the full provider pipeline: token, customer,
// invoice, mark sent, payment URL. Each step is a hard precondition for the
// next; a duplicate-customer rejection is the only recovery branch.
func (z *ZohoClient) CreateAndSendInvoice(req InvoiceRequest) (*ZohoInvoice, *ZohoContact, error) {
	if cfgErr := z.checkConfig(); cfgErr != nil {
		LogError("[%s] Zoho configuration incomplete", req.RequestID)
		return nil, nil, cfgErr
	}

	token, err := z.getAccessToken(req.RequestID)
	if err != nil {
		return nil, nil, err
	}

	contact, err := z.FindOrCreateCustomer(token, req.Customer, req.RequestID)
	if err != nil {
		return nil, nil, err
	}

	invoice, err := z.CreateInvoice(token, contact.ContactID, req)
	if err != nil {
		return nil, contact, err
	}

	if err := z.markInvoiceSent(token, invoice.InvoiceID, req.RequestID); err != nil {
		return invoice, contact, err
	}
	invoice.Status = "sent"

	invoice.PaymentURL = z.fetchPaymentURL(token, invoice.InvoiceID, req.RequestID)
	LogInfo("[%s] Invoice %s ready, payment URL: %s", req.RequestID, invoice.InvoiceID, invoice.PaymentURL)
	return invoice, contact, nil
}

// HealthCheck probes the provider with a lightweight token exchange. A
// missing configuration or unreachable endpoint reports unhealthy without
// failing the caller.
func (z *ZohoClient) HealthCheck() bool {
	if !z.cfg.Complete() {
		return false
	}
	_, err := z.getAccessToken("health")
	return err == nil
}
