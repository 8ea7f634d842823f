package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
	"github.com/courseware-labs/ms-go-enrollments/app/repository"
	"github.com/courseware-labs/ms-go-enrollments/app/types"
)

// CreateTransaction registers a pending transaction at checkout time, before
// the user is redirected to the gateway. This is the only code path that
// creates transaction rows; webhook processing only ever finds existing ones.
func (s *EnrollmentService) CreateTransaction(ctx context.Context, req *types.CreateTransactionRequest) (*entity.PaymentTransaction, error) {
	userID := strings.TrimSpace(req.UserID)
	courseID := strings.TrimSpace(req.CourseID)
	gatewayName := strings.ToLower(strings.TrimSpace(req.GatewayName))
	transactionID := strings.TrimSpace(req.TransactionID)
	if userID == "" || courseID == "" || gatewayName == "" || transactionID == "" {
		return nil, ErrInvalidRequest
	}

	now := time.Now().UTC()
	transaction := &entity.PaymentTransaction{
		ID:            uuid.NewString(),
		UserID:        userID,
		CourseID:      courseID,
		GatewayName:   gatewayName,
		TransactionID: transactionID,
		Status:        entity.StatusPending,
		AmountCents:   req.AmountCents,
		Currency:      strings.ToUpper(strings.TrimSpace(req.Currency)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		if errors.Is(err, repository.ErrTransactionAlreadyExists) {
			return nil, ErrTransactionAlreadyExists
		}
		return nil, err
	}

	return transaction, nil
}

func (s *EnrollmentService) GetTransaction(ctx context.Context, id string) (*entity.PaymentTransaction, error) {
	transaction, err := s.transactionRepo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, ErrTransactionNotFound
	}
	return transaction, nil
}

func (s *EnrollmentService) ListTransactions(ctx context.Context, req *types.ListTransactionsRequest) ([]*entity.PaymentTransaction, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	filter := repository.TransactionFilter{
		UserID:      strings.TrimSpace(req.UserID),
		CourseID:    strings.TrimSpace(req.CourseID),
		GatewayName: strings.ToLower(strings.TrimSpace(req.GatewayName)),
		HasStatus:   req.HasStatus,
		Status:      req.Status,
		Limit:       limit,
		Offset:      req.Offset,
	}

	return s.transactionRepo.List(ctx, filter)
}
