package gateway

import "encoding/json"

// parseGeneric is the last-resort extractor for gateways with no dedicated
// parser: it probes common field names for the transaction id, status token,
// amount and payer email. Amounts are treated as major units.
func parseGeneric(payload []byte) (*Event, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	event := &Event{
		TransactionID: probeString(body, "id", "transaction_id", "payment_id"),
		PayerEmail:    probeEmail(body),
	}

	token := probeString(body, "status", "event")
	event.Status = heuristicStatus(token)

	for _, key := range []string{"amount", "value"} {
		if raw, ok := body[key]; ok {
			if major, ok := amountFromValue(raw); ok {
				event.AmountCents = centsPtr(majorUnitsToCents(major))
				break
			}
		}
	}

	return finishEvent(event)
}

func probeString(body map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if raw, ok := body[key]; ok {
			if s := stringFromValue(raw); s != "" {
				return s
			}
		}
	}
	return ""
}

func probeEmail(body map[string]interface{}) string {
	if customer, ok := body["customer"].(map[string]interface{}); ok {
		if s := probeString(customer, "email"); s != "" {
			return s
		}
	}
	return probeString(body, "email", "user_email")
}
