package booking

import "github.com/google/uuid"

// Event names a lifecycle change that parties are told about.
type Event string

const (
	EventRequested Event = "booking.requested"
	EventUpdated   Event = "booking.updated"
	EventConfirmed Event = "booking.confirmed"
	EventRejected  Event = "booking.rejected"
	EventCancelled Event = "booking.cancelled"
)

// IntentKind classifies a side effect requested by a lifecycle command.
type IntentKind string

const (
	IntentNotify                    IntentKind = "notify"
	IntentGenerateSchedule          IntentKind = "generate_schedule"
	IntentCancelOutstandingPayments IntentKind = "cancel_outstanding_payments"
)

// Intent is a side effect the caller must carry out after applying a command.
// Notify intents run after commit; the others run inside the same transaction.
type Intent struct {
	Kind       IntentKind
	Event      Event
	Recipients []uuid.UUID
}

func notifyIntent(event Event, recipients ...uuid.UUID) Intent {
	return Intent{Kind: IntentNotify, Event: event, Recipients: recipients}
}
