package gateway

import (
	"encoding/json"
	"strings"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

// PayPal sends {"event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{...}}.
// The transaction id is the resource id, not the WH- event id. Amounts are
// reported in major units ({"value":"97.00"}).
func parsePayPal(payload []byte) (*Event, error) {
	var body struct {
		EventType string `json:"event_type"`
		Resource  struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Amount struct {
				Value interface{} `json:"value"`
			} `json:"amount"`
			Payer struct {
				EmailAddress string `json:"email_address"`
			} `json:"payer"`
		} `json:"resource"`

		// Flat resource shape.
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	event := &Event{
		TransactionID: firstNonEmpty(body.Resource.ID, body.ID),
		PayerEmail:    strings.TrimSpace(body.Resource.Payer.EmailAddress),
	}
	event.Status = paypalStatus(firstNonEmpty(body.Resource.Status, body.Status), body.EventType)
	if major, ok := amountFromValue(body.Resource.Amount.Value); ok {
		event.AmountCents = centsPtr(majorUnitsToCents(major))
	}
	return finishEvent(event)
}

func paypalStatus(status, eventType string) entity.TransactionStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "COMPLETED", "APPROVED", "CAPTURED":
		return entity.StatusPaid
	case "PENDING", "CREATED", "SAVED":
		return entity.StatusPending
	case "DECLINED", "DENIED", "FAILED":
		return entity.StatusFailed
	case "VOIDED":
		return entity.StatusCancelled
	case "REFUNDED", "REVERSED", "PARTIALLY_REFUNDED":
		return entity.StatusRefunded
	}

	token := status
	if strings.TrimSpace(token) == "" {
		token = eventType
	}
	token = strings.ToLower(token)
	if strings.Contains(token, "completed") {
		return entity.StatusPaid
	}
	if strings.Contains(token, "denied") || strings.Contains(token, "declined") {
		return entity.StatusFailed
	}
	if strings.Contains(token, "reversed") {
		return entity.StatusRefunded
	}
	return heuristicStatus(token)
}
