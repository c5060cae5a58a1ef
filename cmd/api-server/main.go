package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapsalon/booking-service/internal/api"
	"github.com/kapsalon/booking-service/internal/booking"
	"github.com/kapsalon/booking-service/internal/calendar"
	"github.com/kapsalon/booking-service/internal/config"
	"github.com/kapsalon/booking-service/internal/db"
	"github.com/kapsalon/booking-service/internal/notify"
	redisclient "github.com/kapsalon/booking-service/internal/redis"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s slot_interval=%dm", cfg.Env, cfg.HTTPPort, cfg.SlotInterval)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	// Best-effort collaborators
	var calendarSync booking.CalendarSync = calendar.Disabled{}
	if cfg.GoogleClientID != "" {
		gs, err := calendar.NewGoogleSync(rootCtx, calendar.EnvTokenProvider{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RefreshToken: cfg.GoogleRefreshToken,
		}, cfg.GoogleCalendarID)
		if err != nil {
			log.Printf("google calendar sync disabled: %v", err)
		} else {
			calendarSync = gs
			log.Println("google calendar sync enabled")
		}
	}

	var notifier booking.Notifier = notify.Disabled{}
	if cfg.SMTPHost != "" {
		notifier = notify.NewEmailNotifier(cfg)
		log.Printf("email notifications enabled via %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	}

	repo := booking.NewPgRepository(pgPool)
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	reminders := redisclient.NewReminderLog(rdb)
	svc := booking.NewService(repo, locker, calendarSync, notifier, reminders, cfg)

	router := api.NewRouter(api.RouterConfig{
		Service: svc,
		PgPool:  pgPool,
		Redis:   rdb,
		Env:     cfg.Env,
		Version: version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
