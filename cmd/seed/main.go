package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kapsalon/booking-service/internal/db"
	"github.com/kapsalon/booking-service/internal/schedule"
)

const (
	seedDays     = 30
	slotInterval = 40
)

var services = []string{"Knippen", "Knippen en baard"}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	days, err := seedWorkingDays(context.Background(), pool, seedDays)
	if err != nil {
		log.Fatalf("seed working days: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, days); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

// seedWorkingDays creates a month of schedules starting tomorrow: 09:00 to
// 17:00 with a lunch break, Sundays marked as holidays.
func seedWorkingDays(ctx context.Context, pool *pgxpool.Pool, count int) ([]*schedule.WorkingDay, error) {
	log.Printf("seeding %d working days", count)

	start, _ := schedule.ParseTimeOfDay("09:00")
	end, _ := schedule.ParseTimeOfDay("17:00")
	lunchStart, _ := schedule.ParseTimeOfDay("12:00")
	lunchEnd, _ := schedule.ParseTimeOfDay("13:00")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var days []*schedule.WorkingDay
	for i := 1; i <= count; i++ {
		date := time.Now().AddDate(0, 0, i)

		day := schedule.NewWorkingDay(date.Format("2006-01-02"), start, end, slotInterval)
		day.AddBreak(schedule.Break{Start: lunchStart, End: lunchEnd})
		if date.Weekday() == time.Sunday {
			day.Holiday = true
		}

		breaks, err := json.Marshal(day.Breaks)
		if err != nil {
			return nil, err
		}

		slots := make([]string, len(day.Slots))
		for j, s := range day.Slots {
			slots[j] = s.String()
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO working_days (date, start_time, end_time, slots, breaks, is_holiday, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			ON CONFLICT (date) DO NOTHING
		`, day.Date, day.Start.String(), day.End.String(), slots, breaks, day.Holiday)
		if err != nil {
			return nil, err
		}

		days = append(days, day)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("working days seeded")
	return days, nil
}

// seedAppointments books roughly a third of the open slots with fake
// customers.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, days []*schedule.WorkingDay) error {
	log.Printf("seeding appointments across %d days", len(days))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	total := 0
	for _, day := range days {
		if day.Holiday {
			continue
		}

		for _, slot := range schedule.AvailableSlots(day, nil) {
			if gofakeit.Number(0, 2) != 0 {
				continue
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO appointments (id, name, email, phone, date, time, service, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
				ON CONFLICT (date, time) DO NOTHING
			`, uuid.New(), gofakeit.Name(), gofakeit.Email(), gofakeit.Phone(),
				day.Date, slot.String(), services[gofakeit.Number(0, len(services)-1)])
			if err != nil {
				return err
			}
			total++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("appointments seeded: %d", total)
	return nil
}
