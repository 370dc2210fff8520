package models

import (
	"time"
)

// Audit action tags
const (
	AuditActionPaymentIntent   = "payment_intent"
	AuditActionEmailRequest    = "email_payment_request"
	AuditActionBankTransfer    = "bank_transfer_request"
	AuditActionDirectPayment   = "direct_payment"
	AuditActionInvoiceCreation = "invoice_creation"
)

// AuditLog is an append-only record of payment activity, written on both
// success and failure paths.
type AuditLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       *uint     `json:"user_id,omitempty"`
	ServiceID    string    `json:"service_id,omitempty"`
	Action       string    `gorm:"not null" json:"action"`
	Details      string    `json:"details"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName keeps the audit relation name explicit
func (AuditLog) TableName() string {
	return "purchase_audit_log"
}
