package types

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error         string `json:"error"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// WebhookResponse is the body returned to the gateway; a 2xx with this body
// stops gateway retries.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Transaction struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	CourseID      string `json:"course_id"`
	GatewayName   string `json:"gateway_name"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	PayerEmail    string `json:"payer_email,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	PaidAt        string `json:"paid_at,omitempty"`
}

type TransactionEnvelopeResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type Grant struct {
	UserID    string `json:"user_id"`
	CourseID  string `json:"course_id"`
	GrantedBy string `json:"granted_by"`
	CreatedAt string `json:"created_at"`
}

type AccessResponse struct {
	HasAccess bool   `json:"has_access"`
	Grant     *Grant `json:"grant,omitempty"`
}

type GrantEnvelopeResponse struct {
	Created bool   `json:"created"`
	Grant   *Grant `json:"grant,omitempty"`
}
