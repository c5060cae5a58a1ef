package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kapsalon/booking-service/internal/config"
	redisclient "github.com/kapsalon/booking-service/internal/redis"
	"github.com/kapsalon/booking-service/internal/schedule"
)

var (
	ErrDateClosed      = errors.New("no working hours for this date")
	ErrTimeOnBreak     = errors.New("time falls within a break period")
	ErrAlreadyBooked   = errors.New("slot already has an appointment")
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
)

// CalendarSync mirrors appointment changes into an external calendar.
// All calls are best-effort: failures are logged and never turn into
// booking failures.
type CalendarSync interface {
	EventCreated(ctx context.Context, appt *Appointment) (eventID string, err error)
	EventUpdated(ctx context.Context, appt *Appointment) error
	EventDeleted(ctx context.Context, eventID string) error
}

// Notifier sends customer emails for appointment lifecycle events.
// Best-effort, same as CalendarSync.
type Notifier interface {
	SendConfirmation(ctx context.Context, appt *Appointment) error
	SendReschedule(ctx context.Context, appt *Appointment, oldDate string, oldTime schedule.TimeOfDay) error
	SendCancellation(ctx context.Context, appt *Appointment) error
	SendReminder(ctx context.Context, appt *Appointment) error
}

// ReminderLog deduplicates reminder sends across worker runs.
type ReminderLog interface {
	// MarkSent records that a reminder went out for the appointment and
	// reports whether this call was the first to do so.
	MarkSent(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo      Repository
	locker    redisclient.Locker
	calendar  CalendarSync
	notifier  Notifier
	reminders ReminderLog
	cfg       config.Config
}

func NewService(repo Repository, locker redisclient.Locker, calendar CalendarSync, notifier Notifier, reminders ReminderLog, cfg config.Config) *Service {
	return &Service{
		repo:      repo,
		locker:    locker,
		calendar:  calendar,
		notifier:  notifier,
		reminders: reminders,
		cfg:       cfg,
	}
}

// loadDay returns the working day for a date, or nil when none is
// configured. Only real storage failures propagate.
func (s *Service) loadDay(ctx context.Context, date string) (*schedule.WorkingDay, error) {
	day, err := s.repo.GetWorkingDay(ctx, date)
	if err != nil {
		if errors.Is(err, ErrWorkingDayNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load working day: %w", err)
	}
	return day, nil
}

func (s *Service) bookedTimes(ctx context.Context, date string, exclude uuid.UUID) ([]schedule.TimeOfDay, error) {
	appts, err := s.repo.ListAppointmentsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	times := make([]schedule.TimeOfDay, 0, len(appts))
	for _, a := range appts {
		if a.ID == exclude {
			continue
		}
		times = append(times, a.Time)
	}
	return times, nil
}

// GetAvailableTimes returns the open slots for a date after subtracting
// breaks and booked appointments.
func (s *Service) GetAvailableTimes(ctx context.Context, date string) (AvailableTimes, error) {
	day, err := s.loadDay(ctx, date)
	if err != nil {
		return AvailableTimes{}, err
	}

	booked, err := s.bookedTimes(ctx, date, uuid.Nil)
	if err != nil {
		return AvailableTimes{}, err
	}

	times := schedule.AvailableSlots(day, booked)
	return AvailableTimes{
		Available: len(times) > 0,
		Times:     times,
	}, nil
}

// CheckAvailability reports whether a single slot is bookable. A negative
// answer is a structured result, not an error.
func (s *Service) CheckAvailability(ctx context.Context, date string, t schedule.TimeOfDay) (CheckResult, error) {
	day, err := s.loadDay(ctx, date)
	if err != nil {
		return CheckResult{}, err
	}

	booked, err := s.bookedTimes(ctx, date, uuid.Nil)
	if err != nil {
		return CheckResult{}, err
	}

	res := schedule.Check(day, booked, t)
	return CheckResult{Available: res.Available, Reason: res.Reason}, nil
}

// Book reserves a slot for a customer. Validation and insert run inside a
// per-slot Redis lock; the unique (date, time) constraint backs the lock
// up, so a lost race always surfaces as ErrSlotTaken even if the lock
// expires mid-commit.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	var created *Appointment

	err := s.locker.WithSlotLock(ctx, req.Date, req.Time.String(), func(lockCtx context.Context) error {
		day, err := s.loadDay(lockCtx, req.Date)
		if err != nil {
			return err
		}

		booked, err := s.bookedTimes(lockCtx, req.Date, uuid.Nil)
		if err != nil {
			return err
		}

		if res := schedule.Check(day, booked, req.Time); !res.Available {
			return reasonError(res.Reason)
		}

		appt, err := s.repo.CreateAppointment(lockCtx, req)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.syncCreated(ctx, created)
	s.notify(ctx, "confirmation", created, func() error {
		return s.notifier.SendConfirmation(ctx, created)
	})

	return created, nil
}

// Reschedule moves an appointment to a new slot after running the same
// availability check as Book, excluding the appointment's own current
// slot from the conflict set.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, date string, t schedule.TimeOfDay) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	oldDate, oldTime := appt.Date, appt.Time

	var moved *Appointment
	err = s.locker.WithSlotLock(ctx, date, t.String(), func(lockCtx context.Context) error {
		day, err := s.loadDay(lockCtx, date)
		if err != nil {
			return err
		}

		booked, err := s.bookedTimes(lockCtx, date, id)
		if err != nil {
			return err
		}

		if res := schedule.Check(day, booked, t); !res.Available {
			return reasonError(res.Reason)
		}

		m, err := s.repo.MoveAppointment(lockCtx, id, date, t)
		if err != nil {
			return fmt.Errorf("move appointment: %w", err)
		}

		moved = m
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.syncUpdated(ctx, moved)
	s.notify(ctx, "reschedule", moved, func() error {
		return s.notifier.SendReschedule(ctx, moved, oldDate, oldTime)
	})

	return moved, nil
}

// Update edits contact details and service without touching the slot.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*Appointment, error) {
	appt, err := s.repo.UpdateAppointment(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	s.syncUpdated(ctx, appt)
	return appt, nil
}

// Cancel removes an appointment and frees its slot.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}

	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	if appt.CalendarEventID != nil {
		if err := s.calendar.EventDeleted(ctx, *appt.CalendarEventID); err != nil {
			log.Printf("calendar delete failed for appointment %s: %v", appt.ID, err)
		}
	}
	s.notify(ctx, "cancellation", appt, func() error {
		return s.notifier.SendCancellation(ctx, appt)
	})

	return nil
}

func (s *Service) ListAppointments(ctx context.Context) ([]Appointment, error) {
	appts, err := s.repo.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (s *Service) ListAppointmentsInRange(ctx context.Context, startDate, endDate string) ([]Appointment, error) {
	appts, err := s.repo.ListAppointmentsInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("list appointments in range: %w", err)
	}
	return appts, nil
}

// AddWorkingHours creates the working day for a date, or extends it when
// hours already exist: the new window's slots are unioned into the stored
// set and the day's bounds grow to the min/max of the result.
func (s *Service) AddWorkingHours(ctx context.Context, date string, start, end schedule.TimeOfDay) (*schedule.WorkingDay, error) {
	day, err := s.loadDay(ctx, date)
	if err != nil {
		return nil, err
	}

	if day == nil {
		day = schedule.NewWorkingDay(date, start, end, s.cfg.SlotInterval)
	} else {
		day.MergeWindow(start, end, s.cfg.SlotInterval)
	}

	if err := s.repo.SaveWorkingDay(ctx, day); err != nil {
		return nil, fmt.Errorf("save working day: %w", err)
	}
	return day, nil
}

// UpdateWorkingHours replaces a day's window, breaks, and holiday flag,
// regenerating the slot cache from scratch.
func (s *Service) UpdateWorkingHours(ctx context.Context, date string, start, end schedule.TimeOfDay, breaks []schedule.Break, holiday bool) (*schedule.WorkingDay, error) {
	day, err := s.repo.GetWorkingDay(ctx, date)
	if err != nil {
		return nil, err
	}

	day.SetWindow(start, end, breaks, s.cfg.SlotInterval)
	day.Holiday = holiday

	if err := s.repo.SaveWorkingDay(ctx, day); err != nil {
		return nil, fmt.Errorf("save working day: %w", err)
	}
	return day, nil
}

// AddBreak appends a break window to a day and drops the covered slots.
func (s *Service) AddBreak(ctx context.Context, date string, b schedule.Break) (*schedule.WorkingDay, error) {
	day, err := s.repo.GetWorkingDay(ctx, date)
	if err != nil {
		return nil, err
	}

	day.AddBreak(b)

	if err := s.repo.SaveWorkingDay(ctx, day); err != nil {
		return nil, fmt.Errorf("save working day: %w", err)
	}
	return day, nil
}

// RemoveTimeSlot deletes one slot from a day. Removing the last slot
// deletes the whole working day: a day with zero slots is the same as
// having no working hours at all.
func (s *Service) RemoveTimeSlot(ctx context.Context, date string, t schedule.TimeOfDay) error {
	day, err := s.repo.GetWorkingDay(ctx, date)
	if err != nil {
		return err
	}

	if empty := day.RemoveSlot(t); empty {
		if err := s.repo.DeleteWorkingDay(ctx, date); err != nil {
			return fmt.Errorf("delete emptied working day: %w", err)
		}
		return nil
	}

	if err := s.repo.SaveWorkingDay(ctx, day); err != nil {
		return fmt.Errorf("save working day: %w", err)
	}
	return nil
}

func (s *Service) ListWorkingDays(ctx context.Context) ([]schedule.WorkingDay, error) {
	days, err := s.repo.ListWorkingDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("list working days: %w", err)
	}
	return days, nil
}

func (s *Service) DeleteWorkingDay(ctx context.Context, date string) error {
	return s.repo.DeleteWorkingDay(ctx, date)
}

// Statistics aggregates counts and revenue for today, the current week
// (starting Monday), and the current month.
func (s *Service) Statistics(ctx context.Context, now time.Time) (Statistics, error) {
	today := now.Format("2006-01-02")

	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday counts as the end of the week
	}
	startOfWeek := now.AddDate(0, 0, -(weekday - 1)).Format("2006-01-02")
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")

	var stats Statistics
	for _, p := range []struct {
		from string
		out  *PeriodStats
	}{
		{from: today, out: &stats.Daily},
		{from: startOfWeek, out: &stats.Weekly},
		{from: startOfMonth, out: &stats.Monthly},
	} {
		counts, err := s.repo.CountAppointmentsInRange(ctx, p.from, today)
		if err != nil {
			return Statistics{}, fmt.Errorf("count appointments: %w", err)
		}
		for service, n := range counts {
			p.out.Count += n
			p.out.Revenue += n * s.cfg.ServicePrices[service]
		}
	}

	return stats, nil
}

// SendReminders emails every customer with an appointment tomorrow, at
// most once per appointment. Called periodically by the reminder worker.
func (s *Service) SendReminders(ctx context.Context, now time.Time) error {
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")

	appts, err := s.repo.ListAppointmentsByDate(ctx, tomorrow)
	if err != nil {
		return fmt.Errorf("load tomorrow's appointments: %w", err)
	}

	for i := range appts {
		appt := &appts[i]

		first, err := s.reminders.MarkSent(ctx, appt.ID)
		if err != nil {
			log.Printf("reminder dedup failed for appointment %s: %v", appt.ID, err)
			continue
		}
		if !first {
			continue
		}

		if err := s.notifier.SendReminder(ctx, appt); err != nil {
			log.Printf("reminder email failed for appointment %s: %v", appt.ID, err)
		}
	}

	return nil
}

// Best-effort collaborator plumbing

func (s *Service) syncCreated(ctx context.Context, appt *Appointment) {
	eventID, err := s.calendar.EventCreated(ctx, appt)
	if err != nil {
		log.Printf("calendar sync failed for appointment %s: %v", appt.ID, err)
		return
	}
	if eventID == "" {
		return
	}

	appt.CalendarEventID = &eventID
	if err := s.repo.SetCalendarEventID(ctx, appt.ID, eventID); err != nil {
		log.Printf("failed to store calendar event id for appointment %s: %v", appt.ID, err)
	}
}

func (s *Service) syncUpdated(ctx context.Context, appt *Appointment) {
	if appt.CalendarEventID == nil {
		return
	}
	if err := s.calendar.EventUpdated(ctx, appt); err != nil {
		log.Printf("calendar update failed for appointment %s: %v", appt.ID, err)
	}
}

func (s *Service) notify(ctx context.Context, kind string, appt *Appointment, send func() error) {
	if err := send(); err != nil {
		log.Printf("%s email failed for appointment %s: %v", kind, appt.ID, err)
	}
}

func reasonError(r schedule.Reason) error {
	switch r {
	case schedule.ReasonClosed:
		return ErrDateClosed
	case schedule.ReasonOnBreak:
		return ErrTimeOnBreak
	case schedule.ReasonAlreadyBooked:
		return ErrAlreadyBooked
	default:
		return fmt.Errorf("slot rejected: %s", r)
	}
}
