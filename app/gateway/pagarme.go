package gateway

import (
	"encoding/json"
	"strings"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

// Pagar.me postbacks carry current_status at the top level and the
// transaction object nested. Amounts are reported in cents.
func parsePagarme(payload []byte) (*Event, error) {
	var body struct {
		ID            interface{} `json:"id"`
		CurrentStatus string      `json:"current_status"`
		Status        string      `json:"status"`
		Amount        interface{} `json:"amount"`
		Transaction   struct {
			ID       interface{} `json:"id"`
			Status   string      `json:"status"`
			Amount   interface{} `json:"amount"`
			Customer struct {
				Email string `json:"email"`
			} `json:"customer"`
		} `json:"transaction"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	event := &Event{
		TransactionID: stringFromValue(body.Transaction.ID),
		PayerEmail:    strings.TrimSpace(body.Transaction.Customer.Email),
	}
	if event.TransactionID == "" {
		event.TransactionID = stringFromValue(body.ID)
	}

	status := firstNonEmpty(body.CurrentStatus, body.Transaction.Status, body.Status)
	event.Status = pagarmeStatus(status)

	amount := body.Transaction.Amount
	if amount == nil {
		amount = body.Amount
	}
	if cents, ok := centsFromValue(amount); ok {
		event.AmountCents = centsPtr(cents)
	}

	return finishEvent(event)
}

func pagarmeStatus(status string) entity.TransactionStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "paid":
		return entity.StatusPaid
	case "processing", "waiting_payment", "authorized", "analyzing", "pending_review":
		return entity.StatusPending
	case "refused":
		return entity.StatusFailed
	case "refunded", "chargedback":
		return entity.StatusRefunded
	default:
		return heuristicStatus(status)
	}
}
