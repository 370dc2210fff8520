package models

import (
	"time"
)

// Order status constants
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"
)

// Payment gateway tags
const (
	GatewayZoho         = "zoho"
	GatewayEmail        = "email"
	GatewayBankTransfer = "bank_transfer"
	GatewayDirect       = "direct"
)

// Order represents a purchase of a service package. The amount is stored in
// all three supported currencies regardless of the transaction currency;
// only the amount matching Currency is authoritative, the other two are
// conversions computed at order time.
type Order struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	UserID         uint    `json:"user_id"`
	User           User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ServiceID      string  `json:"service_id"`
	Service        Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	PackageType    string  `json:"package_type"`
	Quantity       int     `json:"quantity" gorm:"default:1"`
	AmountUSD      float64 `json:"amount_usd"`
	AmountINR      float64 `json:"amount_inr"`
	AmountAED      float64 `json:"amount_aed"`
	Currency       string  `json:"currency"`
	Status         string  `json:"status"`
	PaymentGateway string  `json:"payment_gateway"`
	TransactionID  string  `json:"transaction_id"`

	// External identifiers, populated after a successful provider call
	ZohoInvoiceID   string `json:"zoho_invoice_id,omitempty"`
	ZohoCustomerID  string `json:"zoho_customer_id,omitempty"`
	RazorpayOrderID string `json:"razorpay_order_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Amount returns the authoritative amount for the order's currency
func (o *Order) Amount() float64 {
	switch o.Currency {
	case "INR":
		return o.AmountINR
	case "AED":
		return o.AmountAED
	default:
		return o.AmountUSD
	}
}
