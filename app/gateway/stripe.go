package gateway

import (
	"encoding/json"
	"strings"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

// Stripe sends an event envelope {"type":"...","data":{"object":{...}}}.
// The transaction id is the id of the nested object (payment intent or
// checkout session), not the event id. Amounts are reported in cents.
func parseStripe(payload []byte) (*Event, error) {
	var body struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`

		// Flat object shape, for callers that forward the object directly.
		Status string      `json:"status"`
		Amount interface{} `json:"amount"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	event := &Event{}

	if len(body.Data.Object) > 0 {
		var object struct {
			ID              string      `json:"id"`
			Status          string      `json:"status"`
			PaymentStatus   string      `json:"payment_status"`
			Amount          interface{} `json:"amount"`
			AmountTotal     interface{} `json:"amount_total"`
			CustomerEmail   string      `json:"customer_email"`
			ReceiptEmail    string      `json:"receipt_email"`
			CustomerDetails struct {
				Email string `json:"email"`
			} `json:"customer_details"`
		}
		if err := json.Unmarshal(body.Data.Object, &object); err == nil {
			event.TransactionID = object.ID
			status := object.Status
			if strings.TrimSpace(object.PaymentStatus) != "" {
				status = object.PaymentStatus
			}
			event.Status = stripeStatus(status, body.Type)
			event.PayerEmail = firstNonEmpty(object.CustomerEmail, object.CustomerDetails.Email, object.ReceiptEmail)
			amount := object.Amount
			if amount == nil {
				amount = object.AmountTotal
			}
			if cents, ok := centsFromValue(amount); ok {
				event.AmountCents = centsPtr(cents)
			}
			return finishEvent(event)
		}
	}

	event.TransactionID = body.ID
	event.Status = stripeStatus(body.Status, body.Type)
	if cents, ok := centsFromValue(body.Amount); ok {
		event.AmountCents = centsPtr(cents)
	}
	return finishEvent(event)
}

func stripeStatus(status, eventType string) entity.TransactionStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "succeeded", "paid":
		return entity.StatusPaid
	case "pending":
		return entity.StatusPending
	case "failed":
		return entity.StatusFailed
	case "canceled":
		return entity.StatusCancelled
	case "refunded":
		return entity.StatusRefunded
	}

	token := status
	if strings.TrimSpace(token) == "" {
		token = eventType
	}
	// Event types like payment_intent.succeeded carry the state when the
	// object status is absent.
	token = strings.ToLower(token)
	if strings.Contains(token, "succeeded") || strings.Contains(token, "completed") {
		return entity.StatusPaid
	}
	return heuristicStatus(token)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
