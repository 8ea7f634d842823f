package gateway

import (
	"encoding/json"
	"strings"
)

// Detect resolves the effective gateway kind for a webhook delivery. An
// explicit hint (transport header or stored gateway name) always wins; shape
// sniffing is a last resort and falls back to the generic extractor.
func Detect(hint string, payload []byte) Kind {
	if kind, ok := ParseKind(hint); ok {
		return kind
	}
	for _, rule := range sniffRules {
		if rule.match(payload) {
			return rule.kind
		}
	}
	return KindGeneric
}

// Each sniffing rule is an isolated predicate over the raw payload. Order
// matters: Mercado Pago payloads also carry a "type" field, so its rule runs
// before the Stripe one.
var sniffRules = []struct {
	kind  Kind
	match func(payload []byte) bool
}{
	{KindAsaas, looksLikeAsaas},
	{KindMercadoPago, looksLikeMercadoPago},
	{KindStripe, looksLikeStripe},
	{KindPayPal, looksLikePayPal},
	{KindPagarme, looksLikePagarme},
}

// looksLikeAsaas: an "event" string containing PAYMENT, e.g.
// PAYMENT_CONFIRMED.
func looksLikeAsaas(payload []byte) bool {
	var body struct {
		Event string `json:"event"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return false
	}
	return strings.Contains(strings.ToUpper(body.Event), "PAYMENT")
}

// looksLikeMercadoPago: type == "payment" with a nested data object.
func looksLikeMercadoPago(payload []byte) bool {
	var body struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(body.Type), "payment") && isJSONObject(body.Data)
}

// looksLikeStripe: a "type" event-name field, e.g. payment_intent.succeeded.
func looksLikeStripe(payload []byte) bool {
	var body struct {
		Type string `json:"type"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return false
	}
	return strings.TrimSpace(body.Type) != ""
}

// looksLikePayPal: an "event_type" field alongside a resource object.
func looksLikePayPal(payload []byte) bool {
	var body struct {
		EventType string `json:"event_type"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return false
	}
	return strings.TrimSpace(body.EventType) != ""
}

// looksLikePagarme: a "current_status" field or a nested transaction object.
func looksLikePagarme(payload []byte) bool {
	var body struct {
		CurrentStatus string          `json:"current_status"`
		Transaction   json.RawMessage `json:"transaction"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return false
	}
	return strings.TrimSpace(body.CurrentStatus) != "" || isJSONObject(body.Transaction)
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}
