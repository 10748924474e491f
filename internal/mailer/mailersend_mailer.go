package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
	"github.com/stayloft/hotel-bookings/internal/domain"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendOTPEmail(toEmail, code string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	minutes := int(domain.OTPValidity.Minutes())
	subject := "Your StayLoft verification code"
	html := fmt.Sprintf(`
		<h2>Your StayLoft verification code</h2>
		<p>Your one-time passcode is: <strong style="font-size: 24px;">%s</strong></p>
		<p>It is valid for %d minutes.</p>
		<p>If you didn't request this code, please ignore this email.</p>
	`, code, minutes)

	text := fmt.Sprintf("Your OTP is %s. It is valid for %d minutes.", code, minutes)

	return m.sendEmail(toEmail, "", subject, text, html)
}

func (m *MailerSendClient) SendBookingConfirmation(toEmail, guestName, roomName string, start, end time.Time, amount float64) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Your StayLoft booking is confirmed"
	html := fmt.Sprintf(`
		<h2>Booking confirmed</h2>
		<p>Hi %s,</p>
		<p>Your reservation for <strong>%s</strong> is confirmed.</p>
		<p>Check-in: %s<br>Check-out: %s</p>
		<p>Amount paid: %.2f</p>
		<p>We look forward to hosting you.</p>
	`, guestName, roomName, start.Format(domain.DateLayout), end.Format(domain.DateLayout), amount)

	text := fmt.Sprintf("Hi %s, your reservation for %s from %s to %s is confirmed. Amount paid: %.2f",
		guestName, roomName, start.Format(domain.DateLayout), end.Format(domain.DateLayout), amount)

	return m.sendEmail(toEmail, guestName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
