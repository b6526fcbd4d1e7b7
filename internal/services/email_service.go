package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"eldercare/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends caregiver notification emails through SendGrid.
type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewEmailService reads SendGrid configuration from the environment.
// Returns nil when no API key is set; email notifications are then skipped.
func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		log.Println("SendGrid not configured (SENDGRID_API_KEY), email notifications disabled")
		return nil
	}

	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Eldercare Assistant"
	}

	return &EmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendAlertEmail notifies one caregiver contact of an emergency alert.
func (s *EmailService) SendAlertEmail(toEmail, toName, elderlyName string, alert *models.EmergencyAlert) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	subject := fmt.Sprintf("Emergency alert from %s", elderlyName)

	when := alert.CreatedAt.Format(time.RFC1123)
	place := ""
	if alert.Location != nil && alert.Location.Address != "" {
		place = fmt.Sprintf("\nLocation: %s", alert.Location.Address)
	}

	plainContent := fmt.Sprintf("%s needs help.\nMessage: %s%s\nTime: %s\nPlease respond when you receive this message.",
		elderlyName, alert.Message, place, when)
	htmlContent := fmt.Sprintf("<p><strong>%s needs help.</strong></p><p>Message: %s%s</p><p>Time: %s</p><p>Please respond when you receive this message.</p>",
		elderlyName, alert.Message, place, when)

	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)
	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send alert email to %s: %d", toEmail, response.StatusCode)
	}
	return nil
}
