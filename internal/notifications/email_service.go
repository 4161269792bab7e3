package notifications

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strconv"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"busly/internal/shared/config"
)

// EmailService delivers notifications to the passenger's inbox.
type EmailService interface {
	SendNotification(ctx context.Context, notification *Notification) error
}

type SMTPEmailService struct {
	config config.EmailConfig
}

func NewSMTPEmailService(cfg config.EmailConfig) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return &SMTPEmailService{config: cfg}, nil
}

func validateSMTPConfig(cfg config.EmailConfig) error {
	if cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if cfg.SMTPPort <= 0 {
		return fmt.Errorf("SMTP port must be positive")
	}
	if cfg.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

func (s *SMTPEmailService) SendNotification(ctx context.Context, notification *Notification) error {
	htmlBody, textBody, err := s.generateContent(notification)
	if err != nil {
		return fmt.Errorf("failed to generate email content: %w", err)
	}

	message := s.buildMessage(notification.RecipientEmail, notification.Subject, htmlBody, textBody)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{notification.RecipientEmail}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildMessage creates a multipart/alternative email with proper headers.
func (s *SMTPEmailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	message := fmt.Sprintf("From: Busly <%s>\r\n", s.config.FromEmail)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message += fmt.Sprintf("Content-Type: multipart/alternative; boundary=%s\r\n", boundary)
	message += "\r\n"

	if textBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary)
		message += "Content-Type: text/plain; charset=UTF-8\r\n\r\n"
		message += textBody + "\r\n"
	}
	if htmlBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary)
		message += "Content-Type: text/html; charset=UTF-8\r\n\r\n"
		message += htmlBody + "\r\n"
	}
	message += fmt.Sprintf("--%s--\r\n", boundary)

	return []byte(message)
}

func (s *SMTPEmailService) generateContent(notification *Notification) (string, string, error) {
	data := notification.Data

	switch notification.Type {
	case NotificationTypeBookingConfirmed:
		qrTag := ""
		if notification.BookingRef != "" {
			if uri, err := bookingQRDataURI(notification.BookingRef); err == nil {
				qrTag = fmt.Sprintf(`<p><img src="%s" alt="boarding QR" width="200" height="200"/></p>`, uri)
			}
		}

		htmlBody := fmt.Sprintf(`
			<h2>Booking Confirmed</h2>
			<p>Hi %s,</p>
			<p>Your trip <strong>%v</strong> is confirmed.</p>
			<p>Booking Reference: <strong>%s</strong></p>
			<p>Departure: %v</p>
			<p>Seats: %v</p>
			<p>Total Paid: %v VND</p>
			%s
			<p>Show the QR code above when boarding.</p>
			<p>Safe travels,<br>Busly Team</p>
		`,
			notification.RecipientName,
			data["route_name"],
			notification.BookingRef,
			data["departure_at"],
			data["seat_labels"],
			data["total_price"],
			qrTag,
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nYour trip %v is confirmed.\nBooking Reference: %s\nDeparture: %v\nSeats: %v\nTotal Paid: %v VND\n\nSafe travels,\nBusly Team",
			notification.RecipientName,
			data["route_name"],
			notification.BookingRef,
			data["departure_at"],
			data["seat_labels"],
			data["total_price"],
		)

		return htmlBody, textBody, nil

	case NotificationTypePaymentFailed:
		htmlBody := fmt.Sprintf(`
			<h2>Payment Failed</h2>
			<p>Hi %s,</p>
			<p>We could not complete the payment for booking <strong>%s</strong>.</p>
			<p>Reason: %v</p>
			<p>The reserved seats have been released. You can place a new booking at any time.</p>
			<p>Busly Team</p>
		`,
			notification.RecipientName,
			notification.BookingRef,
			data["reason"],
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nWe could not complete the payment for booking %s.\nReason: %v\nThe reserved seats have been released.\n\nBusly Team",
			notification.RecipientName,
			notification.BookingRef,
			data["reason"],
		)

		return htmlBody, textBody, nil

	default:
		htmlBody := fmt.Sprintf(`
			<h2>%s</h2>
			<p>Hi %s,</p>
			<p>This is a notification from Busly.</p>
		`,
			notification.Subject,
			notification.RecipientName,
		)
		textBody := fmt.Sprintf("Hi %s,\n\nThis is a notification from Busly.", notification.RecipientName)
		return htmlBody, textBody, nil
	}
}

// bookingQRDataURI renders the booking reference as an inline PNG so the
// ticket works without remote images.
func bookingQRDataURI(bookingRef string) (string, error) {
	png, err := qrcode.Encode(bookingRef, qrcode.Medium, 200)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
