package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
	"github.com/courseware-labs/ms-go-enrollments/app/repository"
	"github.com/courseware-labs/ms-go-enrollments/config"
)

type fakeTransactionRepo struct {
	transactions map[string]*entity.PaymentTransaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: map[string]*entity.PaymentTransaction{}}
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *entity.PaymentTransaction) error {
	for _, item := range r.transactions {
		if item.GatewayName == tx.GatewayName && item.TransactionID == tx.TransactionID {
			return repository.ErrTransactionAlreadyExists
		}
	}
	copyItem := *tx
	r.transactions[tx.ID] = &copyItem
	return nil
}

func (r *fakeTransactionRepo) FindByID(_ context.Context, id string) (*entity.PaymentTransaction, error) {
	item, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *fakeTransactionRepo) FindByGatewayTransactionID(_ context.Context, gatewayName, transactionID string) (*entity.PaymentTransaction, error) {
	for _, item := range r.transactions {
		if item.GatewayName == gatewayName && item.TransactionID == transactionID {
			copyItem := *item
			return &copyItem, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepo) ListByTransactionID(_ context.Context, transactionID string) ([]*entity.PaymentTransaction, error) {
	items := make([]*entity.PaymentTransaction, 0)
	for _, item := range r.transactions {
		if item.TransactionID == transactionID {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	return items, nil
}

func (r *fakeTransactionRepo) MarkPaid(_ context.Context, id string, paidAt time.Time, rawPayload string, payerEmail *string) (bool, error) {
	item, ok := r.transactions[id]
	if !ok || item.Status == entity.StatusPaid {
		return false, nil
	}
	item.Status = entity.StatusPaid
	item.PaidAt = &paidAt
	item.RawWebhookPayload = &rawPayload
	if payerEmail != nil {
		item.PayerEmail = payerEmail
	}
	item.UpdatedAt = paidAt
	return true, nil
}

func (r *fakeTransactionRepo) UpdateStatus(_ context.Context, id string, status entity.TransactionStatus, rawPayload string, payerEmail *string, now time.Time) (bool, error) {
	item, ok := r.transactions[id]
	if !ok || item.Status == entity.StatusPaid {
		return false, nil
	}
	item.Status = status
	item.RawWebhookPayload = &rawPayload
	if payerEmail != nil {
		item.PayerEmail = payerEmail
	}
	item.UpdatedAt = now
	return true, nil
}

func (r *fakeTransactionRepo) RecordPayload(_ context.Context, id string, rawPayload string, now time.Time) error {
	item, ok := r.transactions[id]
	if !ok {
		return nil
	}
	item.RawWebhookPayload = &rawPayload
	item.UpdatedAt = now
	return nil
}

func (r *fakeTransactionRepo) List(_ context.Context, filter repository.TransactionFilter) ([]*entity.PaymentTransaction, error) {
	items := make([]*entity.PaymentTransaction, 0)
	for _, item := range r.transactions {
		if filter.UserID != "" && item.UserID != filter.UserID {
			continue
		}
		if filter.CourseID != "" && item.CourseID != filter.CourseID {
			continue
		}
		if filter.GatewayName != "" && item.GatewayName != filter.GatewayName {
			continue
		}
		if filter.HasStatus && item.Status != filter.Status {
			continue
		}
		copyItem := *item
		items = append(items, &copyItem)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

type grantKey struct {
	userID   string
	courseID string
}

type fakeGrantRepo struct {
	grants map[grantKey]*entity.CourseAccessGrant
	nextID uint64
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{grants: map[grantKey]*entity.CourseAccessGrant{}, nextID: 1}
}

func (r *fakeGrantRepo) Upsert(_ context.Context, userID, courseID, grantedBy string, now time.Time) (bool, error) {
	key := grantKey{userID: userID, courseID: courseID}
	if _, ok := r.grants[key]; ok {
		return false, nil
	}
	r.grants[key] = &entity.CourseAccessGrant{
		ID:        r.nextID,
		UserID:    userID,
		CourseID:  courseID,
		GrantedBy: grantedBy,
		CreatedAt: now,
	}
	r.nextID++
	return true, nil
}

func (r *fakeGrantRepo) Find(_ context.Context, userID, courseID string) (*entity.CourseAccessGrant, error) {
	item, ok := r.grants[grantKey{userID: userID, courseID: courseID}]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *fakeGrantRepo) Delete(_ context.Context, userID, courseID string) (bool, error) {
	key := grantKey{userID: userID, courseID: courseID}
	if _, ok := r.grants[key]; !ok {
		return false, nil
	}
	delete(r.grants, key)
	return true, nil
}

type fakeDeliveryRepo struct {
	deliveries []*entity.WebhookDelivery
}

func (r *fakeDeliveryRepo) Create(_ context.Context, delivery *entity.WebhookDelivery) error {
	copyItem := *delivery
	r.deliveries = append(r.deliveries, &copyItem)
	return nil
}

func (r *fakeDeliveryRepo) lastStatus() int32 {
	if len(r.deliveries) == 0 {
		return 0
	}
	return r.deliveries[len(r.deliveries)-1].Status
}

type serviceFixture struct {
	service      *EnrollmentService
	transactions *fakeTransactionRepo
	grants       *fakeGrantRepo
	deliveries   *fakeDeliveryRepo
}

func newServiceFixture(webhookCfg config.WebhookConfig) *serviceFixture {
	transactions := newFakeTransactionRepo()
	grants := newFakeGrantRepo()
	deliveries := &fakeDeliveryRepo{}
	return &serviceFixture{
		service:      NewEnrollmentService(transactions, grants, deliveries, webhookCfg),
		transactions: transactions,
		grants:       grants,
		deliveries:   deliveries,
	}
}

func (f *serviceFixture) seedTransaction(t *testing.T, id, gatewayName, transactionID string, amountCents int64) {
	t.Helper()
	now := time.Now().UTC()
	err := f.transactions.Create(context.Background(), &entity.PaymentTransaction{
		ID:            id,
		UserID:        "user-1",
		CourseID:      "course-101",
		GatewayName:   gatewayName,
		TransactionID: transactionID,
		Status:        entity.StatusPending,
		AmountCents:   amountCents,
		Currency:      "BRL",
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("seed transaction failed: %v", err)
	}
}

func TestProcessWebhookPaidGrantsAccess(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)

	result, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"event":"PAYMENT_CONFIRMED","payment":{"id":"pay_123","status":"CONFIRMED","value":97.00}}`),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != entity.StatusPaid || !result.Granted {
		t.Fatalf("expected paid+granted result, got %+v", result)
	}

	stored, _ := f.transactions.FindByID(context.Background(), "tx-1")
	if stored.Status != entity.StatusPaid {
		t.Errorf("expected stored status paid, got %s", stored.Status)
	}
	if stored.PaidAt == nil {
		t.Error("expected paid_at set")
	}

	grant, _ := f.grants.Find(context.Background(), "user-1", "course-101")
	if grant == nil {
		t.Fatal("expected grant created")
	}
	if grant.GrantedBy != GrantedByWebhook {
		t.Errorf("expected granted_by %s, got %s", GrantedByWebhook, grant.GrantedBy)
	}
	if f.deliveries.lastStatus() != entity.WebhookDeliveryProcessed {
		t.Errorf("expected processed delivery record, got %d", f.deliveries.lastStatus())
	}
}

func TestProcessWebhookDuplicatePaidIsIdempotent(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)

	payload := []byte(`{"event":"PAYMENT_CONFIRMED","payment":{"id":"pay_123","status":"CONFIRMED"}}`)
	input := &WebhookInput{GatewayHint: "asaas", Payload: payload}

	if _, err := f.service.ProcessWebhook(context.Background(), input); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	first, _ := f.transactions.FindByID(context.Background(), "tx-1")
	firstPaidAt := *first.PaidAt

	result, err := f.service.ProcessWebhook(context.Background(), input)
	if err != nil {
		t.Fatalf("duplicate delivery failed: %v", err)
	}
	if result.Status != entity.StatusPaid {
		t.Errorf("expected paid result, got %s", result.Status)
	}
	if result.Granted {
		t.Error("duplicate delivery must not report a new grant")
	}
	if !strings.Contains(result.Message, "already processed") {
		t.Errorf("unexpected message: %s", result.Message)
	}

	second, _ := f.transactions.FindByID(context.Background(), "tx-1")
	if !second.PaidAt.Equal(firstPaidAt) {
		t.Error("paid_at must not move on duplicate delivery")
	}
	if len(f.grants.grants) != 1 {
		t.Errorf("expected exactly one grant, got %d", len(f.grants.grants))
	}
	if f.deliveries.lastStatus() != entity.WebhookDeliveryIgnored {
		t.Errorf("expected ignored delivery record, got %d", f.deliveries.lastStatus())
	}
}

func TestProcessWebhookUnknownTransaction(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})

	_, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"event":"PAYMENT_CONFIRMED","payment":{"id":"pay_ghost","status":"CONFIRMED"}}`),
	})

	var unknown *UnknownTransactionError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTransactionError, got %v", err)
	}
	if unknown.TransactionID != "pay_ghost" {
		t.Errorf("unexpected transaction id in error: %s", unknown.TransactionID)
	}
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Error("expected error to unwrap to ErrTransactionNotFound")
	}

	// Webhooks never create state.
	if len(f.transactions.transactions) != 0 {
		t.Error("expected no transactions created")
	}
	if len(f.grants.grants) != 0 {
		t.Error("expected no grants created")
	}
	if f.deliveries.lastStatus() != entity.WebhookDeliveryRejected {
		t.Errorf("expected rejected delivery record, got %d", f.deliveries.lastStatus())
	}
}

func TestProcessWebhookUnhintedFallsBackToBareID(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)

	// Flat payload with no hint: shape detection lands on generic, the bare-id
	// fallback still finds the stored asaas row.
	result, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		Payload: []byte(`{"id":"pay_123","status":"approved"}`),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != entity.StatusPaid {
		t.Errorf("expected paid, got %s", result.Status)
	}
	if result.GatewayName != "asaas" {
		t.Errorf("expected stored gateway name, got %s", result.GatewayName)
	}
}

func TestProcessWebhookAmbiguousBareIDRejected(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)
	f.seedTransaction(t, "tx-2", "stripe", "pay_123", 9700)

	_, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		Payload: []byte(`{"id":"pay_123","status":"approved"}`),
	})

	var unknown *UnknownTransactionError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTransactionError, got %v", err)
	}
	if !unknown.Ambiguous {
		t.Error("expected ambiguous flag")
	}
	if len(f.grants.grants) != 0 {
		t.Error("ambiguous match must not grant anything")
	}
}

func TestProcessWebhookHintedMissIsMiss(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)

	// Explicit stripe hint, row stored under asaas: no bare-id fallback.
	_, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "stripe",
		Payload:     []byte(`{"id":"pay_123","status":"succeeded"}`),
	})

	var unknown *UnknownTransactionError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTransactionError, got %v", err)
	}
}

func TestProcessWebhookNonPaidStatusUpdate(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)

	result, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"id":"pay_123","status":"OVERDUE"}`),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != entity.StatusFailed {
		t.Errorf("expected failed, got %s", result.Status)
	}

	stored, _ := f.transactions.FindByID(context.Background(), "tx-1")
	if stored.Status != entity.StatusFailed {
		t.Errorf("expected stored failed, got %s", stored.Status)
	}
	if len(f.grants.grants) != 0 {
		t.Error("failed webhook must not grant access")
	}
}

func TestProcessWebhookFailedThenPaidRecovers(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)

	if _, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"id":"pay_123","status":"OVERDUE"}`),
	}); err != nil {
		t.Fatalf("failed delivery errored: %v", err)
	}

	result, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"id":"pay_123","status":"RECEIVED"}`),
	})
	if err != nil {
		t.Fatalf("paid delivery errored: %v", err)
	}
	if result.Status != entity.StatusPaid || !result.Granted {
		t.Fatalf("expected paid+granted after retry, got %+v", result)
	}
}

func TestProcessWebhookRefundAfterPaidKeepsGrant(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)

	if _, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"id":"pay_123","status":"CONFIRMED"}`),
	}); err != nil {
		t.Fatalf("paid delivery errored: %v", err)
	}

	result, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"id":"pay_123","status":"REFUNDED"}`),
	})
	if err != nil {
		t.Fatalf("refund delivery errored: %v", err)
	}
	if result.Status != entity.StatusPaid {
		t.Errorf("expected paid to stay terminal, got %s", result.Status)
	}

	stored, _ := f.transactions.FindByID(context.Background(), "tx-1")
	if stored.Status != entity.StatusPaid {
		t.Errorf("refund must not overwrite paid, got %s", stored.Status)
	}
	grant, _ := f.grants.Find(context.Background(), "user-1", "course-101")
	if grant == nil {
		t.Error("refund must not revoke the grant")
	}
	if f.deliveries.lastStatus() != entity.WebhookDeliveryIgnored {
		t.Errorf("expected ignored delivery record for audit, got %d", f.deliveries.lastStatus())
	}
}

func TestProcessWebhookNormalizationFailureRejected(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})

	_, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"event":"PAYMENT_CONFIRMED","payment":{"status":"CONFIRMED"}}`),
	})
	if !errors.Is(err, ErrWebhookRejected) {
		t.Fatalf("expected ErrWebhookRejected, got %v", err)
	}
	if f.deliveries.lastStatus() != entity.WebhookDeliveryRejected {
		t.Errorf("expected rejected delivery record, got %d", f.deliveries.lastStatus())
	}
}

func TestProcessWebhookAmountMismatchLogOnly(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)

	result, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"id":"pay_123","status":"CONFIRMED","value":1.00}`),
	})
	if err != nil {
		t.Fatalf("expected mismatch tolerated by default, got %v", err)
	}
	if result.Status != entity.StatusPaid || !result.Granted {
		t.Fatalf("expected paid+granted despite mismatch, got %+v", result)
	}
}

func TestProcessWebhookAmountMismatchRejectEnabled(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{RejectAmountMismatch: true})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)

	_, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"id":"pay_123","status":"CONFIRMED","value":1.00}`),
	})
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}

	stored, _ := f.transactions.FindByID(context.Background(), "tx-1")
	if stored.Status != entity.StatusPending {
		t.Errorf("rejected delivery must not change status, got %s", stored.Status)
	}
	if len(f.grants.grants) != 0 {
		t.Error("rejected delivery must not grant access")
	}
	if f.deliveries.lastStatus() != entity.WebhookDeliveryRejected {
		t.Errorf("expected rejected delivery record, got %d", f.deliveries.lastStatus())
	}
}

func TestProcessWebhookMatchingAmountAccepted(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{RejectAmountMismatch: true})
	f.seedTransaction(t, "tx-1", "asaas", "pay_123", 9700)

	result, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"id":"pay_123","status":"CONFIRMED","value":97.00}`),
	})
	if err != nil {
		t.Fatalf("expected matching amount accepted, got %v", err)
	}
	if !result.Granted {
		t.Error("expected grant created")
	}
}

// staleReadTransactionRepo hands lookups a pending snapshot even after the
// stored row has reached paid, modeling a concurrent delivery that wins
// between another delivery's read and its CAS write.
type staleReadTransactionRepo struct {
	*fakeTransactionRepo
}

func (r *staleReadTransactionRepo) FindByGatewayTransactionID(ctx context.Context, gatewayName, transactionID string) (*entity.PaymentTransaction, error) {
	item, err := r.fakeTransactionRepo.FindByGatewayTransactionID(ctx, gatewayName, transactionID)
	if item != nil {
		item.Status = entity.StatusPending
		item.PaidAt = nil
	}
	return item, err
}

func newRacingFixture(t *testing.T) (*EnrollmentService, *staleReadTransactionRepo, *fakeGrantRepo, *fakeDeliveryRepo, time.Time) {
	t.Helper()
	transactions := &staleReadTransactionRepo{newFakeTransactionRepo()}
	grants := newFakeGrantRepo()
	deliveries := &fakeDeliveryRepo{}
	svc := NewEnrollmentService(transactions, grants, deliveries, config.WebhookConfig{})

	// The concurrent winner already completed the paid transition and its
	// grant before our delivery's write lands.
	paidAt := time.Now().UTC().Add(-time.Minute)
	payload := `{"id":"pay_123","status":"CONFIRMED"}`
	transactions.transactions["tx-1"] = &entity.PaymentTransaction{
		ID:                "tx-1",
		UserID:            "user-1",
		CourseID:          "course-101",
		GatewayName:       "asaas",
		TransactionID:     "pay_123",
		Status:            entity.StatusPaid,
		AmountCents:       9700,
		Currency:          "BRL",
		RawWebhookPayload: &payload,
		CreatedAt:         paidAt,
		UpdatedAt:         paidAt,
		PaidAt:            &paidAt,
	}
	if _, err := grants.Upsert(context.Background(), "user-1", "course-101", GrantedByWebhook, paidAt); err != nil {
		t.Fatalf("seed grant failed: %v", err)
	}

	return svc, transactions, grants, deliveries, paidAt
}

func TestProcessWebhookPaidLostRaceIsIdempotent(t *testing.T) {
	svc, transactions, grants, deliveries, paidAt := newRacingFixture(t)

	result, err := svc.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"id":"pay_123","status":"CONFIRMED"}`),
	})
	if err != nil {
		t.Fatalf("losing delivery errored: %v", err)
	}
	if result.Status != entity.StatusPaid {
		t.Errorf("expected paid result, got %s", result.Status)
	}
	if result.Granted {
		t.Error("losing delivery must not report a new grant")
	}
	if !strings.Contains(result.Message, "already processed") {
		t.Errorf("unexpected message: %s", result.Message)
	}

	stored := transactions.transactions["tx-1"]
	if stored.Status != entity.StatusPaid {
		t.Errorf("expected stored paid, got %s", stored.Status)
	}
	if stored.PaidAt == nil || !stored.PaidAt.Equal(paidAt) {
		t.Error("paid_at must not move when the CAS loses")
	}
	if len(grants.grants) != 1 {
		t.Errorf("expected exactly one grant, got %d", len(grants.grants))
	}
	if deliveries.lastStatus() != entity.WebhookDeliveryIgnored {
		t.Errorf("expected ignored delivery record, got %d", deliveries.lastStatus())
	}
}

func TestProcessWebhookNonPaidLostRaceToPaid(t *testing.T) {
	svc, transactions, grants, deliveries, paidAt := newRacingFixture(t)

	result, err := svc.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "asaas",
		Payload:     []byte(`{"id":"pay_123","status":"OVERDUE"}`),
	})
	if err != nil {
		t.Fatalf("losing delivery errored: %v", err)
	}
	if result.Status != entity.StatusPaid {
		t.Errorf("expected paid result after losing to a paid delivery, got %s", result.Status)
	}
	if !strings.Contains(result.Message, "already processed") {
		t.Errorf("unexpected message: %s", result.Message)
	}

	stored := transactions.transactions["tx-1"]
	if stored.Status != entity.StatusPaid {
		t.Errorf("late failed delivery must not clobber paid, got %s", stored.Status)
	}
	if stored.PaidAt == nil || !stored.PaidAt.Equal(paidAt) {
		t.Error("paid_at must survive the losing status update")
	}
	if len(grants.grants) != 1 {
		t.Errorf("expected the winner's grant untouched, got %d", len(grants.grants))
	}
	if deliveries.lastStatus() != entity.WebhookDeliveryIgnored {
		t.Errorf("expected ignored delivery record, got %d", deliveries.lastStatus())
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Errorf("unexpected ascii cut: %q", got)
	}
	if got := truncate("ab", 4); got != "ab" {
		t.Errorf("short input must pass through, got %q", got)
	}

	// "pagamento não encontrado": cutting inside the two-byte "ã" must back
	// off to the previous boundary instead of emitting a partial sequence.
	value := "pagamento não encontrado"
	cut := truncate(value, 12)
	if !utf8.ValidString(cut) {
		t.Errorf("expected valid utf-8 after truncation, got %q", cut)
	}
	if cut != "pagamento n" {
		t.Errorf("expected cut at rune boundary, got %q", cut)
	}
}

func TestProcessWebhookCustomGatewayName(t *testing.T) {
	f := newServiceFixture(config.WebhookConfig{})
	f.seedTransaction(t, "tx-1", "hotmart", "HP123", 9700)

	result, err := f.service.ProcessWebhook(context.Background(), &WebhookInput{
		GatewayHint: "Hotmart",
		Payload:     []byte(`{"transaction_id":"HP123","status":"approved"}`),
	})
	if err != nil {
		t.Fatalf("expected custom gateway handled generically, got %v", err)
	}
	if result.GatewayName != "hotmart" {
		t.Errorf("expected lowered custom gateway name, got %s", result.GatewayName)
	}
	if result.Status != entity.StatusPaid {
		t.Errorf("expected paid, got %s", result.Status)
	}
}
