package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

var (
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrTransactionAlreadyExists = errors.New("transaction already exists")
)

type TransactionFilter struct {
	UserID      string
	CourseID    string
	GatewayName string
	HasStatus   bool
	Status      entity.TransactionStatus
	Limit       int32
	Offset      int32
}

type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, user_id, course_id, gateway_name, transaction_id, status,
	amount_cents, currency, payer_email, raw_webhook_payload,
	created_at, updated_at, paid_at
`

func (r *TransactionRepository) Create(ctx context.Context, tx *entity.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (
			id, user_id, course_id, gateway_name, transaction_id, status,
			amount_cents, currency, payer_email, raw_webhook_payload,
			created_at, updated_at, paid_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.CourseID,
		tx.GatewayName,
		tx.TransactionID,
		string(tx.Status),
		tx.AmountCents,
		tx.Currency,
		nullableStringValue(tx.PayerEmail),
		nullableStringValue(tx.RawWebhookPayload),
		tx.CreatedAt,
		tx.UpdatedAt,
		nullableTimeValue(tx.PaidAt),
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrTransactionAlreadyExists
		}
		return err
	}
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*entity.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE id = ?`

	tx := &entity.PaymentTransaction{}
	if err := scanTransaction(r.db.QueryRowContext(ctx, query, id), tx); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *TransactionRepository) FindByGatewayTransactionID(ctx context.Context, gatewayName, transactionID string) (*entity.PaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE gateway_name = ? AND transaction_id = ?
		LIMIT 1
	`

	tx := &entity.PaymentTransaction{}
	if err := scanTransaction(r.db.QueryRowContext(ctx, query, gatewayName, transactionID), tx); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return tx, nil
}

// ListByTransactionID returns every row carrying the given gateway-assigned
// id, regardless of gateway. Used when a webhook arrives without a gateway
// hint and shape detection fell back to the generic extractor; identifier
// spaces are only unique per gateway, so callers must treat multiple matches
// as ambiguous.
func (r *TransactionRepository) ListByTransactionID(ctx context.Context, transactionID string) ([]*entity.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE transaction_id = ?`

	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*entity.PaymentTransaction, 0)
	for rows.Next() {
		item := &entity.PaymentTransaction{}
		if err := scanTransaction(rows, item); err != nil {
			return nil, err
		}
		transactions = append(transactions, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

// MarkPaid flips a non-paid transaction to paid, setting paid_at exactly
// once. The status guard in the WHERE clause is the cross-request
// synchronization point: of two concurrent paid deliveries only one update
// applies. Returns false when another delivery already won.
func (r *TransactionRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time, rawPayload string, payerEmail *string) (bool, error) {
	query := `
		UPDATE payment_transactions
		SET status = 'paid',
			paid_at = ?,
			raw_webhook_payload = ?,
			payer_email = COALESCE(?, payer_email),
			updated_at = ?
		WHERE id = ? AND status <> 'paid'
	`

	result, err := r.db.ExecContext(ctx, query, paidAt, rawPayload, nullableStringValue(payerEmail), paidAt, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateStatus overwrites a non-terminal status with a non-paid canonical
// status. The same status <> 'paid' guard keeps late pending/failed
// deliveries from clobbering a finished transaction.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status entity.TransactionStatus, rawPayload string, payerEmail *string, now time.Time) (bool, error) {
	query := `
		UPDATE payment_transactions
		SET status = ?,
			raw_webhook_payload = ?,
			payer_email = COALESCE(?, payer_email),
			updated_at = ?
		WHERE id = ? AND status <> 'paid'
	`

	result, err := r.db.ExecContext(ctx, query, string(status), rawPayload, nullableStringValue(payerEmail), now, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RecordPayload updates only the audit bookkeeping fields. Used for webhooks
// arriving after the transaction is already paid.
func (r *TransactionRepository) RecordPayload(ctx context.Context, id string, rawPayload string, now time.Time) error {
	query := `
		UPDATE payment_transactions
		SET raw_webhook_payload = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query, rawPayload, now, id)
	return err
}

func (r *TransactionRepository) List(ctx context.Context, filter TransactionFilter) ([]*entity.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM payment_transactions`

	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)

	if strings.TrimSpace(filter.UserID) != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if strings.TrimSpace(filter.CourseID) != "" {
		conditions = append(conditions, "course_id = ?")
		args = append(args, filter.CourseID)
	}
	if strings.TrimSpace(filter.GatewayName) != "" {
		conditions = append(conditions, "gateway_name = ?")
		args = append(args, filter.GatewayName)
	}
	if filter.HasStatus {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*entity.PaymentTransaction, 0)
	for rows.Next() {
		item := &entity.PaymentTransaction{}
		if err := scanTransaction(rows, item); err != nil {
			return nil, err
		}
		transactions = append(transactions, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(scan rowScanner, tx *entity.PaymentTransaction) error {
	var status string
	var payerEmail sql.NullString
	var rawPayload sql.NullString
	var paidAt sql.NullTime

	err := scan.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.CourseID,
		&tx.GatewayName,
		&tx.TransactionID,
		&status,
		&tx.AmountCents,
		&tx.Currency,
		&payerEmail,
		&rawPayload,
		&tx.CreatedAt,
		&tx.UpdatedAt,
		&paidAt,
	)
	if err != nil {
		return err
	}

	tx.Status = entity.TransactionStatus(status)
	tx.PayerEmail = stringPtrFromNull(payerEmail)
	tx.RawWebhookPayload = stringPtrFromNull(rawPayload)
	tx.PaidAt = timePtrFromNull(paidAt)

	return nil
}
