// Package calendar mirrors appointments into Google Calendar. Sync is
// best-effort: the booking service logs failures and keeps the
// appointment either way.
package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/kapsalon/booking-service/internal/booking"
)

const timeZone = "Europe/Amsterdam"

// TokenProvider supplies OAuth2 credentials for the calendar API. Keeping
// it behind an interface keeps token storage out of the sync logic.
type TokenProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// EnvTokenProvider builds a token source from a client ID/secret and a
// long-lived refresh token held in configuration.
type EnvTokenProvider struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func (p EnvTokenProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if p.ClientID == "" || p.ClientSecret == "" || p.RefreshToken == "" {
		return nil, fmt.Errorf("google calendar credentials are incomplete")
	}

	cfg := &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       []string{gcal.CalendarEventsScope},
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: p.RefreshToken}), nil
}

// GoogleSync implements booking.CalendarSync against the Google Calendar
// v3 API.
type GoogleSync struct {
	service    *gcal.Service
	calendarID string
}

func NewGoogleSync(ctx context.Context, provider TokenProvider, calendarID string) (*GoogleSync, error) {
	ts, err := provider.TokenSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token source: %w", err)
	}

	svc, err := gcal.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &GoogleSync{service: svc, calendarID: calendarID}, nil
}

func (g *GoogleSync) EventCreated(ctx context.Context, appt *booking.Appointment) (string, error) {
	ev, err := buildEvent(appt)
	if err != nil {
		return "", err
	}

	created, err := g.service.Events.Insert(g.calendarID, ev).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	return created.Id, nil
}

func (g *GoogleSync) EventUpdated(ctx context.Context, appt *booking.Appointment) error {
	if appt.CalendarEventID == nil {
		return nil
	}

	ev, err := buildEvent(appt)
	if err != nil {
		return err
	}

	_, err = g.service.Events.Update(g.calendarID, *appt.CalendarEventID, ev).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	return nil
}

func (g *GoogleSync) EventDeleted(ctx context.Context, eventID string) error {
	if err := g.service.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}

// serviceDuration returns the appointment length on the calendar. The
// haircut-plus-beard service runs longer than the base cut.
func serviceDuration(service string) time.Duration {
	if service == "Knippen en baard" {
		return 45 * time.Minute
	}
	return 30 * time.Minute
}

func buildEvent(appt *booking.Appointment) (*gcal.Event, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", appt.Date+" "+appt.Time.String(), loc)
	if err != nil {
		return nil, fmt.Errorf("parse appointment start: %w", err)
	}
	end := start.Add(serviceDuration(appt.Service))

	return &gcal.Event{
		Summary: fmt.Sprintf("Afspraak: %s", appt.Service),
		Description: fmt.Sprintf("Klant: %s\nEmail: %s\nTelefoon: %s\nService: %s",
			appt.Name, appt.Email, appt.Phone, appt.Service),
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 60},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		Attendees: []*gcal.EventAttendee{
			{Email: appt.Email},
		},
	}, nil
}

// Disabled is a no-op sync for environments without calendar credentials.
type Disabled struct{}

func (Disabled) EventCreated(ctx context.Context, appt *booking.Appointment) (string, error) {
	return "", nil
}

func (Disabled) EventUpdated(ctx context.Context, appt *booking.Appointment) error {
	return nil
}

func (Disabled) EventDeleted(ctx context.Context, eventID string) error {
	return nil
}
