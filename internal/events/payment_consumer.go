package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/platform/domain"
	"github.com/estatery/service-rental/internal/platform/kafka"
)

// PaymentCapturedEvent is the payload of a payment.captured CloudEvent.
type PaymentCapturedEvent struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	BookingID     uuid.UUID `json:"booking_id"`
	TransactionID string    `json:"transaction_id"`
}

// PaymentRecorder settles a scheduled payment on behalf of the gateway.
type PaymentRecorder interface {
	RecordGatewayPayment(ctx context.Context, paymentID uuid.UUID, transactionID string) (*application.PaymentDTO, error)
}

// PaymentEventConsumer listens to payment events and settles the matching schedule entries.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	payments PaymentRecorder
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	payments PaymentRecorder,
	logger *zap.Logger,
) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger),
		payments: payments,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // malformed messages are never retried
	}

	switch cloudEvent.Type {
	case PaymentCaptured:
		return c.handlePaymentCaptured(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentCaptured(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PaymentCapturedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.PaymentID == uuid.Nil {
		c.logger.Error("failed to parse PaymentCapturedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil
	}

	c.logger.Info("processing payment captured event",
		zap.String("payment_id", evt.PaymentID.String()),
		zap.String("booking_id", evt.BookingID.String()),
	)

	if _, err := c.payments.RecordGatewayPayment(ctx, evt.PaymentID, evt.TransactionID); err != nil {
		if domain.IsRetryable(err) {
			return err
		}
		var (
			nf *domain.NotFoundError
			it *domain.InvalidTransitionError
		)
		if errors.As(err, &nf) || errors.As(err, &it) {
			c.logger.Warn("dropping payment captured event",
				zap.String("payment_id", evt.PaymentID.String()),
				zap.Error(err),
			)
			return nil
		}
		return err
	}
	return nil
}
