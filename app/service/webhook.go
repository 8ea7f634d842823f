package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
	"github.com/courseware-labs/ms-go-enrollments/app/gateway"
)

// GrantedByWebhook marks grants created by webhook reconciliation, as opposed
// to manual admin grants.
const GrantedByWebhook = "payment-webhook"

type WebhookInput struct {
	// GatewayHint is the transport-level gateway name (header or route
	// param). Empty means the payload shape decides.
	GatewayHint string
	Payload     []byte
}

type WebhookResult struct {
	TransactionRef string
	GatewayName    string
	Status         entity.TransactionStatus
	Granted        bool
	Message        string
}

// ProcessWebhook runs one webhook delivery through normalization and the
// reconciliation state machine.
//
// pending -> {paid, failed, cancelled, refunded}; paid is terminal. The
// pending->paid transition upserts the course-access grant BEFORE the CAS
// status write, so a crash or a lost race can never leave a paid transaction
// without its grant; the grant upsert itself is idempotent, so retries and
// duplicate deliveries produce exactly one grant row.
func (s *EnrollmentService) ProcessWebhook(ctx context.Context, input *WebhookInput) (*WebhookResult, error) {
	kind := gateway.Detect(input.GatewayHint, input.Payload)
	gatewayName := resolveGatewayName(input.GatewayHint, kind)

	event, err := gateway.Normalize(kind, input.Payload)
	if err != nil {
		s.recordDelivery(ctx, nil, gatewayName, entity.WebhookDeliveryRejected, input.Payload,
			fmt.Sprintf("normalization failed (gateway=%s): %v", kind, err))
		return nil, fmt.Errorf("%w: %v", ErrWebhookRejected, err)
	}

	transaction, err := s.resolveTransaction(ctx, input.GatewayHint, gatewayName, event.TransactionID)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			s.recordDelivery(ctx, nil, gatewayName, entity.WebhookDeliveryRejected, input.Payload, err.Error())
		}
		return nil, err
	}

	now := time.Now().UTC()
	rawPayload := string(input.Payload)

	// Terminal: a paid transaction only keeps collecting audit bookkeeping.
	// Refund and chargeback webhooks land here too; they never revoke the
	// grant on their own.
	if transaction.Status == entity.StatusPaid {
		if err := s.transactionRepo.RecordPayload(ctx, transaction.ID, rawPayload, now); err != nil {
			return nil, err
		}
		s.recordDelivery(ctx, &transaction.ID, transaction.GatewayName, entity.WebhookDeliveryIgnored, input.Payload,
			fmt.Sprintf("transaction already paid, incoming status=%s recorded for audit", event.Status))
		return &WebhookResult{
			TransactionRef: transaction.ID,
			GatewayName:    transaction.GatewayName,
			Status:         entity.StatusPaid,
			Message:        "transaction already processed",
		}, nil
	}

	if err := s.checkAmount(ctx, transaction, event, input.Payload); err != nil {
		return nil, err
	}

	if event.Status == entity.StatusPaid {
		return s.settlePaid(ctx, transaction, event, rawPayload, now, input.Payload)
	}

	applied, err := s.transactionRepo.UpdateStatus(ctx, transaction.ID, event.Status, rawPayload, payerEmailPtr(event), now)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent paid delivery won between our read and this write.
		s.recordDelivery(ctx, &transaction.ID, transaction.GatewayName, entity.WebhookDeliveryIgnored, input.Payload,
			fmt.Sprintf("transaction reached paid concurrently, incoming status=%s recorded for audit", event.Status))
		return &WebhookResult{
			TransactionRef: transaction.ID,
			GatewayName:    transaction.GatewayName,
			Status:         entity.StatusPaid,
			Message:        "transaction already processed",
		}, nil
	}

	s.recordDelivery(ctx, &transaction.ID, transaction.GatewayName, entity.WebhookDeliveryProcessed, input.Payload, "")
	return &WebhookResult{
		TransactionRef: transaction.ID,
		GatewayName:    transaction.GatewayName,
		Status:         event.Status,
		Message:        fmt.Sprintf("transaction marked %s", event.Status),
	}, nil
}

func (s *EnrollmentService) settlePaid(
	ctx context.Context,
	transaction *entity.PaymentTransaction,
	event *gateway.Event,
	rawPayload string,
	now time.Time,
	payload []byte,
) (*WebhookResult, error) {
	// Grant first. If this fails the status stays non-paid and the gateway
	// retries; the upsert makes the retry harmless.
	created, err := s.grantRepo.Upsert(ctx, transaction.UserID, transaction.CourseID, GrantedByWebhook, now)
	if err != nil {
		return nil, err
	}

	applied, err := s.transactionRepo.MarkPaid(ctx, transaction.ID, now, rawPayload, payerEmailPtr(event))
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent delivery already completed the transition; paid_at is
		// untouched.
		s.recordDelivery(ctx, &transaction.ID, transaction.GatewayName, entity.WebhookDeliveryIgnored, payload,
			"concurrent delivery completed the paid transition first")
		return &WebhookResult{
			TransactionRef: transaction.ID,
			GatewayName:    transaction.GatewayName,
			Status:         entity.StatusPaid,
			Message:        "transaction already processed",
		}, nil
	}

	s.recordDelivery(ctx, &transaction.ID, transaction.GatewayName, entity.WebhookDeliveryProcessed, payload, "")
	return &WebhookResult{
		TransactionRef: transaction.ID,
		GatewayName:    transaction.GatewayName,
		Status:         entity.StatusPaid,
		Granted:        created,
		Message:        "payment confirmed, course access granted",
	}, nil
}

// resolveTransaction looks the transaction up by (gateway, transaction id).
// Webhooks never create transactions: the row must exist from checkout time,
// which is what stops a forged webhook from manufacturing a grant for an
// arbitrary id.
func (s *EnrollmentService) resolveTransaction(ctx context.Context, hint, gatewayName, transactionID string) (*entity.PaymentTransaction, error) {
	transaction, err := s.transactionRepo.FindByGatewayTransactionID(ctx, gatewayName, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction != nil {
		return transaction, nil
	}

	// With an explicit hint the caller named the gateway; a miss is a miss.
	if _, ok := gateway.ParseKind(hint); ok && strings.TrimSpace(hint) != "" {
		return nil, &UnknownTransactionError{TransactionID: transactionID}
	}

	// Shape detection can disagree with the stored gateway name (a gateway
	// forwarding a flat payload, say), so fall back to the bare id — but only
	// when it is unambiguous across gateways.
	matches, err := s.transactionRepo.ListByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, &UnknownTransactionError{TransactionID: transactionID}
	case 1:
		return matches[0], nil
	default:
		return nil, &UnknownTransactionError{TransactionID: transactionID, Ambiguous: true}
	}
}

// checkAmount compares the webhook-reported amount against the expected
// charge. Mismatches are always logged and audited; they block the grant only
// when reject-on-mismatch is configured.
func (s *EnrollmentService) checkAmount(ctx context.Context, transaction *entity.PaymentTransaction, event *gateway.Event, payload []byte) error {
	if event.AmountCents == nil || transaction.AmountCents <= 0 || *event.AmountCents == transaction.AmountCents {
		return nil
	}

	s.logger.WithFields(map[string]interface{}{
		"transaction_ref": transaction.ID,
		"expected_cents":  transaction.AmountCents,
		"reported_cents":  *event.AmountCents,
	}).Warn("Webhook amount differs from expected charge")

	if !s.webhookCfg.RejectAmountMismatch {
		return nil
	}

	s.recordDelivery(ctx, &transaction.ID, transaction.GatewayName, entity.WebhookDeliveryRejected, payload,
		fmt.Sprintf("amount mismatch: expected_cents=%d reported_cents=%d", transaction.AmountCents, *event.AmountCents))
	return ErrAmountMismatch
}

func (s *EnrollmentService) recordDelivery(ctx context.Context, transactionRef *string, gatewayName string, status int32, payload []byte, errMsg string) {
	delivery := &entity.WebhookDelivery{
		TransactionRef: transactionRef,
		GatewayName:    gatewayName,
		Status:         status,
		PayloadJSON:    string(payload),
		CreatedAt:      time.Now().UTC(),
	}
	if trimmed := truncate(strings.TrimSpace(errMsg), 1024); trimmed != "" {
		delivery.Error = &trimmed
	}
	if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
		s.logger.WithError(err).Warn("Failed to persist webhook delivery record")
	}
}

func resolveGatewayName(hint string, kind gateway.Kind) string {
	if trimmed := strings.ToLower(strings.TrimSpace(hint)); trimmed != "" {
		if parsed, ok := gateway.ParseKind(trimmed); ok {
			return string(parsed)
		}
		// Custom gateway names are allowed; they normalize via the generic
		// extractor but keep their own identity in the store.
		return trimmed
	}
	return string(kind)
}

func payerEmailPtr(event *gateway.Event) *string {
	trimmed := strings.TrimSpace(event.PayerEmail)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// truncate cuts at a rune boundary so a multi-byte character is never split.
func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	for max > 0 && !utf8.RuneStart(value[max]) {
		max--
	}
	return value[:max]
}
