package entity

import "time"

const (
	WebhookDeliveryProcessed int32 = 10
	WebhookDeliveryIgnored   int32 = 11
	WebhookDeliveryRejected  int32 = 20
)

// WebhookDelivery is the audit record for a single inbound webhook, stored
// whether or not the delivery resulted in a state change.
type WebhookDelivery struct {
	ID uint64

	TransactionRef *string

	GatewayName string
	Status      int32
	Error       *string
	PayloadJSON string

	CreatedAt time.Time
}
