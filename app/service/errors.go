package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest           = errors.New("invalid request")
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrTransactionAlreadyExists = errors.New("transaction already exists")
	ErrGrantNotFound            = errors.New("grant not found")
	ErrWebhookRejected          = errors.New("webhook rejected")
	ErrAmountMismatch           = errors.New("webhook amount does not match transaction")
)

// UnknownTransactionError reports a webhook whose extracted transaction id
// matched no stored transaction (or, without a gateway hint, matched rows in
// more than one gateway). It unwraps to ErrTransactionNotFound so callers can
// keep using errors.Is.
type UnknownTransactionError struct {
	TransactionID string
	Ambiguous     bool
}

func (e *UnknownTransactionError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("transaction id %q matches more than one gateway", e.TransactionID)
	}
	return fmt.Sprintf("no transaction found for id %q", e.TransactionID)
}

func (e *UnknownTransactionError) Unwrap() error {
	return ErrTransactionNotFound
}
