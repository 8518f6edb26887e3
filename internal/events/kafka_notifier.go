package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/platform/kafka"
)

// Publisher writes a CloudEvent to a topic.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, ce kafka.CloudEvent) error
}

// BookingNotificationEvent is the payload of every booking lifecycle CloudEvent.
type BookingNotificationEvent struct {
	application.BookingNotification
	Recipients []uuid.UUID `json:"recipients"`
}

// KafkaNotifier publishes booking notifications for the messaging service to deliver.
type KafkaNotifier struct {
	publisher Publisher
	topic     string
	logger    *zap.Logger
}

// NewKafkaNotifier creates a new KafkaNotifier.
func NewKafkaNotifier(publisher Publisher, logger *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{publisher: publisher, topic: TopicBookingEvents, logger: logger}
}

// Notify publishes one event keyed by booking id so a booking's events stay ordered.
func (n *KafkaNotifier) Notify(ctx context.Context, event booking.Event, recipients []uuid.UUID, data application.BookingNotification) error {
	ce, err := kafka.NewCloudEvent(eventSource, string(event), BookingNotificationEvent{
		BookingNotification: data,
		Recipients:          recipients,
	})
	if err != nil {
		return err
	}
	ce.Subject = data.BookingID.String()

	if err := n.publisher.PublishEvent(ctx, n.topic, data.BookingID.String(), ce); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}
	return nil
}
