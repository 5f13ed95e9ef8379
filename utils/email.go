// utils/email.go
package utils

import (
	"fmt"
	"os"

	"go-storefront/models"

	"github.com/keighl/postmark"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		panic("POSTMARK_API_TOKEN is not set in environment variables")
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: os.Getenv("EMAIL_SENDER"),
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("%s/api/auth/verify?token=%s", os.Getenv("APP_BASE_URL"), token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order models.Order) error {
	subject := fmt.Sprintf("Order %s Confirmed", order.OrderCode)
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order <strong>%s</strong> has been placed successfully.<br><br>Total: <strong>%d</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.OrderCode,
		order.TotalPrice,
		order.PaymentMethod,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendPaymentSuccessEmail notifies the user that a gateway payment for
// their order went through
func (es *EmailService) SendPaymentSuccessEmail(toEmail string, order models.Order) error {
	subject := fmt.Sprintf("Payment Received for Order %s", order.OrderCode)
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>We have received your payment of <strong>%d</strong> for order <strong>%s</strong>. Your order is now being processed.<br><br>Thank you for shopping with us!",
		order.TotalPrice,
		order.OrderCode,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}
