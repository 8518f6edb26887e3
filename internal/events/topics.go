// Package events connects the rental service to Kafka: booking lifecycle notifications
// go out, payment gateway captures come in.
package events

const (
	// TopicBookingEvents carries booking lifecycle notifications.
	TopicBookingEvents = "rental.booking.events"

	// TopicPaymentEvents carries payment gateway results.
	TopicPaymentEvents = "payment.events"

	// PaymentCaptured is the CloudEvent type emitted when the gateway settles a payment.
	PaymentCaptured = "payment.captured"

	eventSource = "service-rental"
)
