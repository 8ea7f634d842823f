package mapper

import (
	"time"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
	"github.com/courseware-labs/ms-go-enrollments/app/types"
)

func TransactionToResponse(item *entity.PaymentTransaction) *types.Transaction {
	if item == nil {
		return nil
	}

	out := &types.Transaction{
		ID:            item.ID,
		UserID:        item.UserID,
		CourseID:      item.CourseID,
		GatewayName:   item.GatewayName,
		TransactionID: item.TransactionID,
		Status:        string(item.Status),
		AmountCents:   item.AmountCents,
		Currency:      item.Currency,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.PayerEmail != nil {
		out.PayerEmail = *item.PayerEmail
	}
	if item.PaidAt != nil {
		out.PaidAt = item.PaidAt.UTC().Format(time.RFC3339)
	}
	return out
}

func TransactionsToResponse(items []*entity.PaymentTransaction) []*types.Transaction {
	out := make([]*types.Transaction, 0, len(items))
	for _, item := range items {
		out = append(out, TransactionToResponse(item))
	}
	return out
}

func GrantToResponse(item *entity.CourseAccessGrant) *types.Grant {
	if item == nil {
		return nil
	}
	return &types.Grant{
		UserID:    item.UserID,
		CourseID:  item.CourseID,
		GrantedBy: item.GrantedBy,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
	}
}
