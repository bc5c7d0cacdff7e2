package event

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/internal/application/service"
	"github.com/khoahotran/career-onboard/internal/config"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// HomeViewWarmer rebuilds the cached home view for one identity.
type HomeViewWarmer interface {
	WarmHomeView(ctx context.Context, externalID string) error
}

const (
	warmAttempts = 3
	warmBackoff  = 500 * time.Millisecond
)

type ProfileEventConsumer struct {
	reader  messageReader
	warmer  HomeViewWarmer
	backoff time.Duration
	logger  logger.Logger
}

func NewProfileEventConsumer(cfg config.Config, warmer HomeViewWarmer, log logger.Logger) *ProfileEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicProfileEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &ProfileEventConsumer{reader: reader, warmer: warmer, backoff: warmBackoff, logger: log}
}

// Run consumes until ctx is cancelled. Undecodable messages are committed
// and skipped. A warm-up is retried warmAttempts times; after that the
// failure is logged and the message committed, since the reader has already
// moved past it.
func (c *ProfileEventConsumer) Run(ctx context.Context) {
	c.logger.Info("Worker listening", zap.String("topic", TopicProfileEvents))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("Worker stopped")
				return
			}
			c.logger.Error("Failed to read message from Kafka", err)
			continue
		}

		if c.handle(ctx, msg) {
			c.commit(ctx, msg)
		}
	}
}

func (c *ProfileEventConsumer) handle(ctx context.Context, msg kafka.Message) bool {
	var payload service.ProfileEventPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		c.logger.Warn("Skipping undecodable profile event", zap.Error(err), zap.Int64("offset", msg.Offset))
		return true
	}

	l := c.logger.With(
		zap.String("event_type", string(payload.EventType)),
		zap.String("external_id", payload.ExternalID),
	)

	if payload.EventType != service.ProfileEventProfileUpdated {
		return true
	}

	var err error
	for attempt := 1; attempt <= warmAttempts; attempt++ {
		if err = c.warmer.WarmHomeView(ctx, payload.ExternalID); err == nil {
			l.Info("Home view warmed", zap.Int("attempt", attempt))
			return true
		}
		l.Warn("Home view warm-up failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == warmAttempts {
			break
		}
		select {
		case <-ctx.Done():
			// left uncommitted, redelivered after restart
			return false
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}
	l.Error("Dropping profile event after failed warm-ups", err, zap.Int64("offset", msg.Offset))
	return true
}

func (c *ProfileEventConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err)
	}
}

func (c *ProfileEventConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", err)
	}
}
