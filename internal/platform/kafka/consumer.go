package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one message. Returning an error leaves the offset uncommitted
// and the same message is handled again after a backoff.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads a single topic as part of a consumer group.
type Consumer struct {
	reader     messageReader
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

// NewConsumer creates a group consumer for topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return newConsumer(kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 0,
	}), logger, defaultBackOff)
}

func newConsumer(reader messageReader, logger *zap.Logger, newBackOff func() backoff.BackOff) *Consumer {
	return &Consumer{reader: reader, logger: logger, newBackOff: newBackOff}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Consume fetches messages until ctx is cancelled. A message is committed once the handler
// accepts it; until then it is retried and no later message is fetched.
func (c *Consumer) Consume(ctx context.Context, handle MessageHandler) error {
	fetchBackOff := backoff.WithContext(c.newBackOff(), ctx)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			wait := fetchBackOff.NextBackOff()
			c.logger.Error("failed to fetch message", zap.Duration("retry_in", wait), zap.Error(err))
			if wait == backoff.Stop || !sleep(ctx, wait) {
				return ctx.Err()
			}
			continue
		}
		fetchBackOff.Reset()

		if err := c.handleWithRetry(ctx, msg, handle); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("failed to commit message",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, msg kafkago.Message, handle MessageHandler) error {
	err := backoff.RetryNotify(
		func() error { return handle(ctx, msg) },
		backoff.WithContext(c.newBackOff(), ctx),
		func(err error, wait time.Duration) {
			c.logger.Warn("message handler failed, retrying",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Duration("retry_in", wait),
				zap.Error(err),
			)
		},
	)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
