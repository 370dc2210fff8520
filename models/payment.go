package models

// PaymentIntent is the transient result of a successful provider invoice
// creation. It is derived from the order and the provider response and is
// never persisted on its own.
type PaymentIntent struct {
	InvoiceID     string  `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	PaymentURL    string  `json:"payment_url"`
	Total         float64 `json:"total"`
	Status        string  `json:"status"`
	CustomerID    string  `json:"customer_id"`
	TransactionID string  `json:"transaction_id"`
}
