package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/kapsalon/booking-service/internal/schedule"
)

// Appointment is one booked slot. At most one appointment may exist per
// (Date, Time) pair; the appointments table carries a unique constraint on
// it and the repository surfaces ErrSlotTaken when an insert loses a race.
type Appointment struct {
	ID              uuid.UUID
	Name            string
	Email           string
	Phone           string
	Date            string // YYYY-MM-DD
	Time            schedule.TimeOfDay
	Service         string
	CalendarEventID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AppointmentUpdate carries the mutable contact and service fields for the
// plain update path. Date and time changes go through Reschedule.
type AppointmentUpdate struct {
	Name    string
	Email   string
	Phone   string
	Service string
}

// BookingRequest is the input for creating a new appointment.
type BookingRequest struct {
	Name    string
	Email   string
	Phone   string
	Date    string
	Time    schedule.TimeOfDay
	Service string
}

// AvailableTimes is the query result for one date. Available is false when
// the date is closed or every slot is taken.
type AvailableTimes struct {
	Available bool
	Times     []schedule.TimeOfDay
}

// CheckResult reports whether a single (date, time) slot is bookable.
type CheckResult struct {
	Available bool
	Reason    schedule.Reason
}

// PeriodStats is one bucket of the manager statistics.
type PeriodStats struct {
	Count   int
	Revenue int
}

// Statistics aggregates appointment counts and revenue for the manager
// dashboard.
type Statistics struct {
	Daily   PeriodStats
	Weekly  PeriodStats
	Monthly PeriodStats
}
