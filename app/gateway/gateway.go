package gateway

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

// ErrNoTransactionID is the only hard failure of normalization: no strategy
// could extract a gateway transaction identifier from the payload.
var ErrNoTransactionID = errors.New("no transaction id could be extracted from payload")

// Kind enumerates the supported gateway payload shapes. Unrecognized gateway
// names fall through to KindGeneric, which extracts common field names.
type Kind string

const (
	KindAsaas       Kind = "asaas"
	KindStripe      Kind = "stripe"
	KindMercadoPago Kind = "mercadopago"
	KindPagarme     Kind = "pagarme"
	KindGerencianet Kind = "gerencianet"
	KindPayPal      Kind = "paypal"
	KindGeneric     Kind = "generic"
)

// ParseKind maps a gateway name (header hint or stored gateway_name) to a
// Kind. The second return reports whether the name matched a known shape.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "asaas":
		return KindAsaas, true
	case "stripe":
		return KindStripe, true
	case "mercadopago", "mercado_pago", "mercado-pago", "mp":
		return KindMercadoPago, true
	case "pagarme", "pagar_me", "pagar-me":
		return KindPagarme, true
	case "gerencianet", "efi":
		return KindGerencianet, true
	case "paypal":
		return KindPayPal, true
	default:
		return KindGeneric, false
	}
}

// Event is the canonical result of normalizing one webhook payload.
// PayerEmail is empty and AmountCents is nil when the gateway did not report
// them.
type Event struct {
	TransactionID string
	Status        entity.TransactionStatus
	PayerEmail    string
	AmountCents   *int64
}

// Normalize parses a raw webhook body according to the given gateway shape
// and maps its native status vocabulary onto the canonical one. It is pure:
// no I/O, no side effects. Everything except a missing transaction id
// degrades to StatusPending, never to StatusPaid.
func Normalize(kind Kind, payload []byte) (*Event, error) {
	switch kind {
	case KindAsaas:
		return parseAsaas(payload)
	case KindStripe:
		return parseStripe(payload)
	case KindMercadoPago:
		return parseMercadoPago(payload)
	case KindPagarme:
		return parsePagarme(payload)
	case KindGerencianet:
		return parseGerencianet(payload)
	case KindPayPal:
		return parsePayPal(payload)
	default:
		return parseGeneric(payload)
	}
}

// heuristicStatus maps an unrecognized native status token onto the canonical
// vocabulary by substring. The default is pending: an unknown token must
// never unlock anything.
func heuristicStatus(token string) entity.TransactionStatus {
	token = strings.ToLower(strings.TrimSpace(token))
	switch {
	case strings.Contains(token, "paid") || strings.Contains(token, "approved") || strings.Contains(token, "confirmed"):
		return entity.StatusPaid
	case strings.Contains(token, "pending") || strings.Contains(token, "processing"):
		return entity.StatusPending
	case strings.Contains(token, "failed") || strings.Contains(token, "rejected"):
		return entity.StatusFailed
	case strings.Contains(token, "cancel"):
		return entity.StatusCancelled
	case strings.Contains(token, "refund"):
		return entity.StatusRefunded
	default:
		return entity.StatusPending
	}
}

// majorUnitsToCents converts an amount reported in major currency units
// (e.g. "97.00") to cents. Gateways that already report minor units keep
// their value as-is; the choice is per-parser, never global.
func majorUnitsToCents(major float64) int64 {
	return int64(math.Round(major * 100))
}

func amountFromValue(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func centsFromValue(v interface{}) (int64, bool) {
	f, ok := amountFromValue(v)
	if !ok {
		return 0, false
	}
	return int64(math.Round(f)), true
}

func stringFromValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func finishEvent(event *Event) (*Event, error) {
	event.TransactionID = strings.TrimSpace(event.TransactionID)
	if event.TransactionID == "" {
		return nil, ErrNoTransactionID
	}
	if !event.Status.Valid() {
		event.Status = entity.StatusPending
	}
	return event, nil
}

func centsPtr(v int64) *int64 {
	return &v
}
