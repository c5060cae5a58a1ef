package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kapsalon/booking-service/internal/schedule"
)

var (
	ErrWorkingDayNotFound  = errors.New("working day not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned by CreateAppointment when the unique
	// (date, time) constraint rejects the insert. The availability check is
	// advisory; this is the authoritative conflict signal.
	ErrSlotTaken = errors.New("slot already taken")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetWorkingDay(ctx context.Context, date string) (*schedule.WorkingDay, error)
	ListWorkingDays(ctx context.Context) ([]schedule.WorkingDay, error)
	SaveWorkingDay(ctx context.Context, day *schedule.WorkingDay) error
	DeleteWorkingDay(ctx context.Context, date string) error

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointments(ctx context.Context) ([]Appointment, error)
	ListAppointmentsByDate(ctx context.Context, date string) ([]Appointment, error)
	ListAppointmentsInRange(ctx context.Context, startDate, endDate string) ([]Appointment, error)
	CountAppointmentsInRange(ctx context.Context, startDate, endDate string) (map[string]int, error)

	CreateAppointment(ctx context.Context, req BookingRequest) (*Appointment, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*Appointment, error)
	MoveAppointment(ctx context.Context, id uuid.UUID, date string, t schedule.TimeOfDay) (*Appointment, error)
	SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}
