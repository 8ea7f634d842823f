package gateway

import (
	"encoding/json"
	"strings"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

// Mercado Pago sends {"type":"payment","data":{...}} where data carries at
// least the payment id; fuller IPN payloads include status, amount and payer.
// Amounts are reported in major units (transaction_amount).
func parseMercadoPago(payload []byte) (*Event, error) {
	var body struct {
		Type   string `json:"type"`
		Action string `json:"action"`
		Data   struct {
			ID                interface{} `json:"id"`
			Status            string      `json:"status"`
			TransactionAmount interface{} `json:"transaction_amount"`
			Payer             struct {
				Email string `json:"email"`
			} `json:"payer"`
		} `json:"data"`

		// Flat payment-object shape.
		ID                interface{} `json:"id"`
		Status            string      `json:"status"`
		TransactionAmount interface{} `json:"transaction_amount"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	event := &Event{}

	// The id arrives as a string or a bare number depending on the
	// notification variant.
	if dataID := stringFromValue(body.Data.ID); dataID != "" {
		event.TransactionID = dataID
		event.Status = mercadoPagoStatus(body.Data.Status, body.Action)
		event.PayerEmail = strings.TrimSpace(body.Data.Payer.Email)
		if major, ok := amountFromValue(body.Data.TransactionAmount); ok {
			event.AmountCents = centsPtr(majorUnitsToCents(major))
		}
		return finishEvent(event)
	}

	event.TransactionID = stringFromValue(body.ID)
	event.Status = mercadoPagoStatus(body.Status, body.Action)
	if major, ok := amountFromValue(body.TransactionAmount); ok {
		event.AmountCents = centsPtr(majorUnitsToCents(major))
	}
	return finishEvent(event)
}

func mercadoPagoStatus(status, action string) entity.TransactionStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved":
		return entity.StatusPaid
	case "authorized", "pending", "in_process", "in_mediation":
		return entity.StatusPending
	case "rejected":
		return entity.StatusFailed
	case "cancelled":
		return entity.StatusCancelled
	case "refunded", "charged_back":
		return entity.StatusRefunded
	}

	token := status
	if strings.TrimSpace(token) == "" {
		token = action
	}
	return heuristicStatus(token)
}
