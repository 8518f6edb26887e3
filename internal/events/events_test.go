package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estatery/service-rental/internal/application"
	"github.com/estatery/service-rental/internal/domain/booking"
	"github.com/estatery/service-rental/internal/platform/domain"
	"github.com/estatery/service-rental/internal/platform/kafka"
)

type published struct {
	topic string
	key   string
	ce    kafka.CloudEvent
}

type fakePublisher struct {
	out []published
	err error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, ce kafka.CloudEvent) error {
	if p.err != nil {
		return p.err
	}
	p.out = append(p.out, published{topic: topic, key: key, ce: ce})
	return nil
}

func TestKafkaNotifier_Notify(t *testing.T) {
	pub := &fakePublisher{}
	n := NewKafkaNotifier(pub, zap.NewNop())
	host := uuid.New()
	data := application.BookingNotification{BookingID: uuid.New(), HostID: host, Status: "pending"}

	require.NoError(t, n.Notify(context.Background(), booking.EventRequested, []uuid.UUID{host}, data))
	require.Len(t, pub.out, 1)
	msg := pub.out[0]
	assert.Equal(t, TopicBookingEvents, msg.topic)
	assert.Equal(t, data.BookingID.String(), msg.key)
	assert.Equal(t, "booking.requested", msg.ce.Type)

	var payload BookingNotificationEvent
	require.NoError(t, msg.ce.ParseData(&payload))
	assert.Equal(t, []uuid.UUID{host}, payload.Recipients)
	assert.Equal(t, data.BookingID, payload.BookingID)

	pub.err = errors.New("broker down")
	assert.Error(t, n.Notify(context.Background(), booking.EventConfirmed, nil, data))
}

type fakeRecorder struct {
	calls []uuid.UUID
	err   error
}

func (r *fakeRecorder) RecordGatewayPayment(_ context.Context, paymentID uuid.UUID, _ string) (*application.PaymentDTO, error) {
	r.calls = append(r.calls, paymentID)
	if r.err != nil {
		return nil, r.err
	}
	return &application.PaymentDTO{ID: paymentID, Status: "paid"}, nil
}

func captured(t *testing.T, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("payment-gateway", PaymentCaptured, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: TopicPaymentEvents, Value: raw}
}

func TestPaymentEventConsumer_HandleMessage(t *testing.T) {
	paymentID := uuid.New()
	evt := PaymentCapturedEvent{PaymentID: paymentID, BookingID: uuid.New(), TransactionID: "gw-1"}

	tests := []struct {
		name    string
		msg     func(t *testing.T) kafkago.Message
		recErr  error
		wantErr bool
		calls   int
	}{
		{name: "captured", msg: func(t *testing.T) kafkago.Message { return captured(t, evt) }, calls: 1},
		{name: "malformed", msg: func(*testing.T) kafkago.Message { return kafkago.Message{Value: []byte("{")} }},
		{name: "missing payment id", msg: func(t *testing.T) kafkago.Message { return captured(t, map[string]string{"x": "y"}) }},
		{
			name: "other type",
			msg: func(t *testing.T) kafkago.Message {
				ce, _ := kafka.NewCloudEvent("payment-gateway", "payment.refunded", evt)
				raw, _ := json.Marshal(ce)
				return kafkago.Message{Value: raw}
			},
		},
		{name: "unknown payment dropped", msg: func(t *testing.T) kafkago.Message { return captured(t, evt) }, recErr: domain.NewNotFoundError("Payment", paymentID.String()), calls: 1},
		{name: "cancelled payment dropped", msg: func(t *testing.T) kafkago.Message { return captured(t, evt) }, recErr: domain.NewInvalidTransitionError("cancelled", "paid"), calls: 1},
		{name: "contention retried", msg: func(t *testing.T) kafkago.Message { return captured(t, evt) }, recErr: domain.NewConflictError("busy"), wantErr: true, calls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{err: tt.recErr}
			c := &PaymentEventConsumer{payments: rec, logger: zap.NewNop()}
			err := c.handleMessage(context.Background(), tt.msg(t))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, rec.calls, tt.calls)
		})
	}
}
