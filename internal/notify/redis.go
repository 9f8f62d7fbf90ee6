package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"call-console/pkg/utils"
)

const defaultDedupeWindow = 5 * time.Second

// RedisNotifier publishes notifications on a pub/sub channel the UI layer
// subscribes to. Identical notifications within the dedupe window are
// suppressed so a flapping command rejection does not spam the agent.
type RedisNotifier struct {
	Client  *redis.Client
	Channel string
	Logger  *slog.Logger

	// DedupeWindow <= 0 falls back to the default.
	DedupeWindow time.Duration

	Now func() time.Time
}

func NewRedisNotifier(client *redis.Client, channel string, log *slog.Logger) *RedisNotifier {
	return &RedisNotifier{Client: client, Channel: channel, Logger: log}
}

func (n *RedisNotifier) Notify(ctx context.Context, title, message string, severity Severity) {
	log := n.Logger
	if log == nil {
		log = slog.Default()
	}
	if n.Client == nil || n.Channel == "" {
		log.Warn("redis notifier not configured, dropping notification", "title", title)
		return
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	window := n.DedupeWindow
	if window <= 0 {
		window = defaultDedupeWindow
	}

	fresh, err := utils.MarkNotificationFresh(ctx, n.Client, dedupeKey(title, message, severity), window)
	if err != nil {
		// Dedupe is best-effort; publish anyway.
		log.Warn("notification dedupe failed", "err", err)
		fresh = true
	}
	if !fresh {
		return
	}

	payload, err := json.Marshal(Notification{
		ID:       uuid.NewString(),
		Title:    title,
		Message:  message,
		Severity: severity,
		At:       now().UTC(),
	})
	if err != nil {
		log.Warn("notification marshal failed", "err", err)
		return
	}

	if err := n.Client.Publish(ctx, n.Channel, payload).Err(); err != nil {
		// Fire-and-forget: log and move on, never surface to the engine.
		log.Warn("notification publish failed", "err", err)
	}
}

func dedupeKey(title, message string, severity Severity) string {
	sum := sha256.Sum256([]byte(title + "|" + message + "|" + string(severity)))
	return "console:notify:" + hex.EncodeToString(sum[:16])
}
