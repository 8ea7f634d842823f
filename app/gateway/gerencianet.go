package gateway

import (
	"encoding/json"
	"strings"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

// Gerencianet (Efí) charge notifications identify the charge by charge_id or
// txid and report the state either as a plain string or nested under
// status.current. Amounts are reported in cents.
func parseGerencianet(payload []byte) (*Event, error) {
	var body struct {
		ChargeID interface{}     `json:"charge_id"`
		TxID     string          `json:"txid"`
		ID       interface{}     `json:"id"`
		Status   json.RawMessage `json:"status"`
		Value    interface{}     `json:"value"`
		Total    interface{}     `json:"total"`
		Customer struct {
			Email string `json:"email"`
		} `json:"customer"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	event := &Event{
		TransactionID: firstNonEmpty(stringFromValue(body.ChargeID), body.TxID, stringFromValue(body.ID)),
		Status:        gerencianetStatus(rawStatusToken(body.Status)),
		PayerEmail:    strings.TrimSpace(body.Customer.Email),
	}

	amount := body.Value
	if amount == nil {
		amount = body.Total
	}
	if cents, ok := centsFromValue(amount); ok {
		event.AmountCents = centsPtr(cents)
	}

	return finishEvent(event)
}

func gerencianetStatus(status string) entity.TransactionStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "paid", "settled", "concluida":
		return entity.StatusPaid
	case "waiting", "new", "ativa":
		return entity.StatusPending
	case "unpaid", "expired":
		return entity.StatusFailed
	case "refunded", "devolvida":
		return entity.StatusRefunded
	case "canceled":
		return entity.StatusCancelled
	default:
		return heuristicStatus(status)
	}
}

// rawStatusToken accepts "paid", {"current":"paid"} or {"status":"paid"}.
func rawStatusToken(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if json.Unmarshal(raw, &asString) == nil {
		return asString
	}
	var asObject struct {
		Current string `json:"current"`
		Status  string `json:"status"`
	}
	if json.Unmarshal(raw, &asObject) == nil {
		return firstNonEmpty(asObject.Current, asObject.Status)
	}
	return ""
}
