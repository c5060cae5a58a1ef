package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapsalon/booking-service/internal/booking"
	"github.com/kapsalon/booking-service/internal/calendar"
	"github.com/kapsalon/booking-service/internal/config"
	"github.com/kapsalon/booking-service/internal/db"
	"github.com/kapsalon/booking-service/internal/notify"
	redisclient "github.com/kapsalon/booking-service/internal/redis"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("reminder-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running reminder worker in env=%s interval=%s", cfg.Env, cfg.WorkerInterval)

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

	var notifier booking.Notifier = notify.Disabled{}
	if cfg.SMTPHost != "" {
		notifier = notify.NewEmailNotifier(cfg)
		log.Printf("email notifications enabled via %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	} else {
		log.Println("SMTP not configured, reminders will be no-ops")
	}

	repo := booking.NewPgRepository(pgPool)
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	reminders := redisclient.NewReminderLog(rdb)
	svc := booking.NewService(repo, locker, calendar.Disabled{}, notifier, reminders, cfg)

	// Run once at startup
	runOnce(rootCtx, svc)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping reminder worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc)
		}
	}
}

func runOnce(ctx context.Context, svc *booking.Service) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	if err := svc.SendReminders(runCtx, time.Now()); err != nil {
		log.Printf("reminder run error: %v", err)
		return
	}
	log.Printf("reminder run complete in %s", time.Since(start))
}
