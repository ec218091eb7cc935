// Package ingest consumes device state-change batches from Kafka and
// applies them through the analytics service's transactional write path.
package ingest

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/homeflux/analytics/internal/models"
)

// BatchApplier is the write path the consumer hands decoded batches to.
type BatchApplier interface {
	ApplyEventBatch(ctx context.Context, details []models.EventDetail) error
}

// Config holds the consumer's Kafka settings.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer streams event-detail batches from a Kafka topic.
type Consumer struct {
	reader  *kafka.Reader
	applier BatchApplier
	logger  *logrus.Logger
}

// NewConsumer builds a Kafka reader for the configured topic.
func NewConsumer(cfg Config, applier BatchApplier, logger *logrus.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("topic must not be empty")
	}
	if cfg.GroupID == "" {
		return nil, errors.New("consumer group must not be empty")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})

	return &Consumer{reader: reader, applier: applier, logger: logger}, nil
}

// Run blocks until the context is cancelled, decoding each message as a
// JSON array of event details and applying it as one transactional batch.
// Malformed messages are logged and skipped; apply failures are logged and
// the message is not retried here (the batch either fully landed or fully
// rolled back).
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		c.handle(ctx, msg)
	}
}

// handle decodes and applies one message. It never fails the consume loop;
// bad input and apply errors are logged and the loop moves on.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var details []models.EventDetail
	if err := json.Unmarshal(msg.Value, &details); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"topic":  msg.Topic,
			"offset": msg.Offset,
		}).Warn("skipping malformed event batch")
		return
	}

	if err := c.applier.ApplyEventBatch(ctx, details); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"offset":  msg.Offset,
			"records": len(details),
		}).Error("failed to apply event batch")
		return
	}

	c.logger.WithFields(logrus.Fields{
		"offset":  msg.Offset,
		"records": len(details),
	}).Debug("event batch applied")
}

// Close shuts down the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
