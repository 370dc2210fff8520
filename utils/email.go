package utils

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func emailConfigFromEnv() EmailConfig {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	return EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// SendEmail sends an HTML email using the configured SMTP account
func SendEmail(to, subject, body string) error {
	config := emailConfigFromEnv()

	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}

// SendOTP sends a verification OTP via email
func SendOTP(to, otp string) error {
	body := fmt.Sprintf(`
		<h2>Welcome to TechCare!</h2>
		<p>Thank you for registering. Please use the following OTP to verify your email address:</p>
		<h1 style="color: #4CAF50; font-size: 32px; letter-spacing: 5px;">%s</h1>
		<p>This OTP will expire in 15 minutes.</p>
		<p>If you didn't request this OTP, please ignore this email.</p>
	`, otp)

	return SendEmail(to, "Your TechCare Registration OTP", body)
}

// SendPaymentRequestNotification notifies the support inbox that a customer
// chose the email payment channel. Failures are reported to the caller, who
// treats them as best effort.
func SendPaymentRequestNotification(supportEmail, customerName, customerEmail, serviceName, packageType string, amount float64, currency string, orderID uint) error {
	body := fmt.Sprintf(`
		<h2>Payment request via email channel</h2>
		<p>A customer has requested to complete payment by email.</p>
		<ul>
			<li>Order: #%d</li>
			<li>Customer: %s (%s)</li>
			<li>Service: %s - %s package</li>
			<li>Amount: %.2f %s</li>
		</ul>
		<p>Please reply with an invoice or payment instructions.</p>
	`, orderID, customerName, customerEmail, serviceName, packageType, amount, currency)

	return SendEmail(supportEmail, fmt.Sprintf("Payment request for order #%d", orderID), body)
}

// BuildPaymentRequestMailto returns the pre-filled compose link handed back
// to the customer on the email payment channel.
func BuildPaymentRequestMailto(supportEmail, serviceName, packageType string, amount float64, currency string, orderID uint) string {
	subject := fmt.Sprintf("Payment request for order #%d", orderID)
	bodyText := fmt.Sprintf("Hello,\n\nI would like to pay for %s (%s package), order #%d, amount %.2f %s.\n\nPlease send me payment instructions.",
		serviceName, packageType, orderID, amount, currency)
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		supportEmail, url.QueryEscape(subject), url.QueryEscape(bodyText))
}
