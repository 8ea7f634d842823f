package gateway

import (
	"encoding/json"
	"strings"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

// Asaas sends either an event envelope {"event":"PAYMENT_CONFIRMED",
// "payment":{...}} or, for some notification types, the payment object
// itself. Amounts are reported in major units ("value": 97.00).
func parseAsaas(payload []byte) (*Event, error) {
	var body struct {
		Event   string          `json:"event"`
		Payment json.RawMessage `json:"payment"`

		// Flat payment-object shape.
		ID     string      `json:"id"`
		Status string      `json:"status"`
		Value  interface{} `json:"value"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	event := &Event{}

	if len(body.Payment) > 0 {
		var payment struct {
			ID            string      `json:"id"`
			Status        string      `json:"status"`
			Value         interface{} `json:"value"`
			CustomerEmail string      `json:"customerEmail"`
		}
		if err := json.Unmarshal(body.Payment, &payment); err == nil {
			event.TransactionID = payment.ID
			event.Status = asaasStatus(payment.Status, body.Event)
			event.PayerEmail = strings.TrimSpace(payment.CustomerEmail)
			if major, ok := amountFromValue(payment.Value); ok {
				event.AmountCents = centsPtr(majorUnitsToCents(major))
			}
			return finishEvent(event)
		}
	}

	event.TransactionID = body.ID
	event.Status = asaasStatus(body.Status, body.Event)
	if major, ok := amountFromValue(body.Value); ok {
		event.AmountCents = centsPtr(majorUnitsToCents(major))
	}
	return finishEvent(event)
}

func asaasStatus(status, eventName string) entity.TransactionStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "CONFIRMED", "RECEIVED", "RECEIVED_IN_CASH":
		return entity.StatusPaid
	case "PENDING", "AWAITING_RISK_ANALYSIS":
		return entity.StatusPending
	case "OVERDUE":
		return entity.StatusFailed
	case "REFUNDED":
		return entity.StatusRefunded
	case "CANCELLED":
		return entity.StatusCancelled
	}

	// Some notifications carry the state only in the event name
	// (PAYMENT_CONFIRMED, PAYMENT_REFUNDED, ...).
	token := status
	if strings.TrimSpace(token) == "" {
		token = eventName
	}
	return heuristicStatus(token)
}
