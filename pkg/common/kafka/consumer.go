package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/common/models"
	"github.com/segmentio/kafka-go"
)

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader messageReader
}

type EventHandler func(ctx context.Context, event models.Event) error

// Permanent marks a handler error that a redelivery cannot fix; the message is
// committed instead of being retried.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func IsPermanent(err error) bool {
	var pe permanentError
	return errors.As(err, &pe)
}

func NewConsumer(brokers []string, topic string, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{reader: reader}
}

// Consume hands each event to handler. Messages are committed after success,
// after a permanent failure, or when the payload is not an Event. Other
// failures leave the message uncommitted, but the reader still moves on: it is
// only redelivered after a restart or rebalance, and only if no later message
// has been committed in the meantime.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Log.WithError(err).Error("Failed to fetch message")
			continue
		}

		var event models.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.Log.WithError(err).Error("Failed to unmarshal event")
			c.commit(ctx, message)
			continue
		}

		if err := handler(ctx, event); err != nil {
			entry := logger.Log.WithError(err).WithFields(map[string]interface{}{
				"event_id":   event.ID,
				"event_type": event.Type,
			})
			if !IsPermanent(err) {
				entry.Error("Failed to process event, offset not committed")
				continue
			}
			entry.Warn("Dropping event after permanent failure")
		}

		c.commit(ctx, message)
	}
}

func (c *Consumer) commit(ctx context.Context, message kafka.Message) {
	if err := c.reader.CommitMessages(ctx, message); err != nil {
		logger.Log.WithError(err).Error("Failed to commit message")
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
