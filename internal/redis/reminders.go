package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// reminderTTL keeps dedup keys around long past the appointment date so a
// worker restart cannot resend.
const reminderTTL = 72 * time.Hour

// ReminderLog records sent reminders with a per-appointment SETNX key.
type ReminderLog struct {
	client *redis.Client
}

func NewReminderLog(client *redis.Client) *ReminderLog {
	return &ReminderLog{client: client}
}

func (r *ReminderLog) MarkSent(ctx context.Context, id uuid.UUID) (bool, error) {
	key := fmt.Sprintf("reminder:%s", id)

	first, err := r.client.SetNX(ctx, key, "1", reminderTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return first, nil
}
