// Package notify sends customer emails for appointment lifecycle events.
// Sending is best-effort: the booking service logs failures and never
// rolls back an appointment because an email bounced.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/kapsalon/booking-service/internal/booking"
	"github.com/kapsalon/booking-service/internal/config"
	"github.com/kapsalon/booking-service/internal/schedule"
)

// EmailNotifier delivers appointment emails over SMTP.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailNotifier(cfg config.Config) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.EmailFrom,
	}
}

type mailData struct {
	Name    string
	Date    string
	Time    string
	Service string
	OldDate string
	OldTime string
}

func (n *EmailNotifier) SendConfirmation(ctx context.Context, appt *booking.Appointment) error {
	return n.send(appt.Email, "Bevestiging van je afspraak", confirmationTmpl, dataFor(appt))
}

func (n *EmailNotifier) SendReschedule(ctx context.Context, appt *booking.Appointment, oldDate string, oldTime schedule.TimeOfDay) error {
	data := dataFor(appt)
	data.OldDate = oldDate
	data.OldTime = oldTime.String()
	return n.send(appt.Email, "Je afspraak is verzet", rescheduleTmpl, data)
}

func (n *EmailNotifier) SendCancellation(ctx context.Context, appt *booking.Appointment) error {
	return n.send(appt.Email, "Je afspraak is geannuleerd", cancellationTmpl, dataFor(appt))
}

func (n *EmailNotifier) SendReminder(ctx context.Context, appt *booking.Appointment) error {
	return n.send(appt.Email, "Herinnering: je afspraak morgen", reminderTmpl, dataFor(appt))
}

func dataFor(appt *booking.Appointment) mailData {
	return mailData{
		Name:    appt.Name,
		Date:    appt.Date,
		Time:    appt.Time.String(),
		Service: appt.Service,
	}
}

func (n *EmailNotifier) send(to, subject string, tmpl *template.Template, data mailData) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render email body: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(n.from, "Kapsalon"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// Disabled is a no-op notifier for environments without SMTP configured.
type Disabled struct{}

func (Disabled) SendConfirmation(ctx context.Context, appt *booking.Appointment) error {
	return nil
}

func (Disabled) SendReschedule(ctx context.Context, appt *booking.Appointment, oldDate string, oldTime schedule.TimeOfDay) error {
	return nil
}

func (Disabled) SendCancellation(ctx context.Context, appt *booking.Appointment) error {
	return nil
}

func (Disabled) SendReminder(ctx context.Context, appt *booking.Appointment) error {
	return nil
}
