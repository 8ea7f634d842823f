package entity

import "time"

// TransactionStatus is the canonical five-value status vocabulary that every
// gateway-specific status string is normalized into. Paid is terminal.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusPaid      TransactionStatus = "paid"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
	StatusRefunded  TransactionStatus = "refunded"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// PaymentTransaction is the unit of reconciliation. Exactly one row exists per
// (GatewayName, TransactionID) pair; the row is created at checkout time,
// before any webhook for it can arrive.
type PaymentTransaction struct {
	ID string

	UserID   string
	CourseID string

	GatewayName   string
	TransactionID string

	Status TransactionStatus

	AmountCents int64
	Currency    string

	PayerEmail        *string
	RawWebhookPayload *string

	CreatedAt time.Time
	UpdatedAt time.Time
	PaidAt    *time.Time
}
