package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kapsalon/booking-service/internal/booking"
)

type RouterConfig struct {
	Service *booking.Service
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Booking endpoints
	r.Route("/api/appointments", func(r chi.Router) {
		r.Get("/", listAppointmentsHandler(cfg.Service))
		r.Post("/", bookAppointmentHandler(cfg.Service))
		r.Get("/range", listAppointmentsRangeHandler(cfg.Service))
		r.Get("/available-times/{date}", availableTimesHandler(cfg.Service))
		r.Post("/check-availability", checkAvailabilityHandler(cfg.Service))
		r.Put("/{id}", updateAppointmentHandler(cfg.Service))
		r.Put("/{id}/reschedule", rescheduleAppointmentHandler(cfg.Service))
		r.Delete("/{id}", cancelAppointmentHandler(cfg.Service))
	})

	// Admin endpoints
	r.Route("/api/admin/working-hours", func(r chi.Router) {
		r.Get("/", listWorkingHoursHandler(cfg.Service))
		r.Post("/", addWorkingHoursHandler(cfg.Service))
		r.Put("/{date}", updateWorkingHoursHandler(cfg.Service))
		r.Delete("/{date}", deleteWorkingDayHandler(cfg.Service))
		r.Post("/{date}/breaks", addBreakHandler(cfg.Service))
		r.Delete("/{date}/slots/{time}", removeTimeSlotHandler(cfg.Service))
	})

	// Manager endpoints
	r.Get("/api/manager/statistics", statisticsHandler(cfg.Service))

	return r
}
