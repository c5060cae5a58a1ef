package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kapsalon/booking-service/internal/schedule"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanWorkingDay(row pgx.Row) (*schedule.WorkingDay, error) {
	var (
		d         schedule.WorkingDay
		start     string
		end       string
		slots     []string
		breaksRaw []byte
	)

	err := row.Scan(
		&d.Date,
		&start,
		&end,
		&slots,
		&breaksRaw,
		&d.Holiday,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkingDayNotFound
		}
		return nil, err
	}

	if d.Start, err = schedule.ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("working day %s start: %w", d.Date, err)
	}
	if d.End, err = schedule.ParseTimeOfDay(end); err != nil {
		return nil, fmt.Errorf("working day %s end: %w", d.Date, err)
	}

	d.Slots = make([]schedule.TimeOfDay, 0, len(slots))
	for _, s := range slots {
		t, err := schedule.ParseTimeOfDay(s)
		if err != nil {
			return nil, fmt.Errorf("working day %s slot: %w", d.Date, err)
		}
		d.Slots = append(d.Slots, t)
	}

	if len(breaksRaw) > 0 {
		if err := json.Unmarshal(breaksRaw, &d.Breaks); err != nil {
			return nil, fmt.Errorf("working day %s breaks: %w", d.Date, err)
		}
	}

	return &d, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a       Appointment
		timeStr string
		eventID *string
	)

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.Date,
		&timeStr,
		&a.Service,
		&eventID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	if a.Time, err = schedule.ParseTimeOfDay(timeStr); err != nil {
		return nil, fmt.Errorf("appointment %s time: %w", a.ID, err)
	}

	a.CalendarEventID = eventID
	return &a, nil
}

func slotStrings(slots []schedule.TimeOfDay) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

// Interface methods

func (r *PgRepository) GetWorkingDay(ctx context.Context, date string) (*schedule.WorkingDay, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT date, start_time, end_time, slots, breaks, is_holiday
		FROM working_days
		WHERE date = $1
	`, date)
	return scanWorkingDay(row)
}

func (r *PgRepository) ListWorkingDays(ctx context.Context) ([]schedule.WorkingDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, start_time, end_time, slots, breaks, is_holiday
		FROM working_days
		ORDER BY date
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []schedule.WorkingDay
	for rows.Next() {
		d, err := scanWorkingDay(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) SaveWorkingDay(ctx context.Context, day *schedule.WorkingDay) error {
	breaks, err := json.Marshal(day.Breaks)
	if err != nil {
		return fmt.Errorf("marshal breaks: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO working_days (date, start_time, end_time, slots, breaks, is_holiday, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (date) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time   = EXCLUDED.end_time,
		    slots      = EXCLUDED.slots,
		    breaks     = EXCLUDED.breaks,
		    is_holiday = EXCLUDED.is_holiday,
		    updated_at = now()
	`, day.Date, day.Start.String(), day.End.String(), slotStrings(day.Slots), breaks, day.Holiday)
	if err != nil {
		return fmt.Errorf("save working day: %w", err)
	}

	return nil
}

func (r *PgRepository) DeleteWorkingDay(ctx context.Context, date string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM working_days WHERE date = $1`, date)
	if err != nil {
		return fmt.Errorf("delete working day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkingDayNotFound
	}
	return nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, date, time, service, calendar_event_id, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListAppointments(ctx context.Context) ([]Appointment, error) {
	return r.listAppointments(ctx, `
		SELECT id, name, email, phone, date, time, service, calendar_event_id, created_at, updated_at
		FROM appointments
		ORDER BY date, time
	`)
}

func (r *PgRepository) ListAppointmentsByDate(ctx context.Context, date string) ([]Appointment, error) {
	return r.listAppointments(ctx, `
		SELECT id, name, email, phone, date, time, service, calendar_event_id, created_at, updated_at
		FROM appointments
		WHERE date = $1
		ORDER BY time
	`, date)
}

func (r *PgRepository) ListAppointmentsInRange(ctx context.Context, startDate, endDate string) ([]Appointment, error) {
	return r.listAppointments(ctx, `
		SELECT id, name, email, phone, date, time, service, calendar_event_id, created_at, updated_at
		FROM appointments
		WHERE date >= $1 AND date <= $2
		ORDER BY date, time
	`, startDate, endDate)
}

func (r *PgRepository) listAppointments(ctx context.Context, query string, args ...any) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CountAppointmentsInRange(ctx context.Context, startDate, endDate string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT service, count(*)
		FROM appointments
		WHERE date >= $1 AND date <= $2
		GROUP BY service
	`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var service string
		var n int
		if err := rows.Scan(&service, &n); err != nil {
			return nil, err
		}
		counts[service] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *PgRepository) CreateAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, name, email, phone, date, time, service, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING id, name, email, phone, date, time, service, calendar_event_id, created_at, updated_at
	`, id, req.Name, req.Email, req.Phone, req.Date, req.Time.String(), req.Service)

	appt, err := scanAppointment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return appt, nil
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET name = $2,
		    email = $3,
		    phone = $4,
		    service = $5,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, email, phone, date, time, service, calendar_event_id, created_at, updated_at
	`, id, upd.Name, upd.Email, upd.Phone, upd.Service)

	return scanAppointment(row)
}

func (r *PgRepository) MoveAppointment(ctx context.Context, id uuid.UUID, date string, t schedule.TimeOfDay) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET date = $2,
		    time = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, email, phone, date, time, service, calendar_event_id, created_at, updated_at
	`, id, date, t.String())

	appt, err := scanAppointment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return appt, nil
}

func (r *PgRepository) SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET calendar_event_id = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, eventID)
	if err != nil {
		return fmt.Errorf("set calendar event id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
