package types

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/courseware-labs/ms-go-enrollments/app/entity"
)

type CreateTransactionRequest struct {
	UserID        string `json:"user_id"`
	CourseID      string `json:"course_id"`
	GatewayName   string `json:"gateway_name"`
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
}

func NewCreateTransactionRequestFromContext(ctx echo.Context) (*CreateTransactionRequest, error) {
	var body CreateTransactionRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.UserID = strings.TrimSpace(body.UserID)
	body.CourseID = strings.TrimSpace(body.CourseID)
	body.GatewayName = strings.ToLower(strings.TrimSpace(body.GatewayName))
	body.TransactionID = strings.TrimSpace(body.TransactionID)
	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))

	return &body, nil
}

func (r *CreateTransactionRequest) Validate() error {
	if r.UserID == "" {
		return errors.New("user_id is required")
	}
	if r.CourseID == "" {
		return errors.New("course_id is required")
	}
	if r.GatewayName == "" {
		return errors.New("gateway_name is required")
	}
	if r.TransactionID == "" {
		return errors.New("transaction_id is required")
	}
	if r.AmountCents <= 0 {
		return errors.New("amount_cents must be > 0")
	}
	if len(r.Currency) != 3 {
		return errors.New("currency must be 3 letters")
	}
	return nil
}

type GetTransactionRequest struct {
	ID string
}

func NewGetTransactionRequestFromContext(ctx echo.Context) (*GetTransactionRequest, error) {
	return &GetTransactionRequest{ID: strings.TrimSpace(ctx.Param("id"))}, nil
}

func (r *GetTransactionRequest) Validate() error {
	if r.ID == "" {
		return errors.New("invalid transaction id")
	}
	return nil
}

type ListTransactionsRequest struct {
	UserID      string
	CourseID    string
	GatewayName string
	HasStatus   bool
	Status      entity.TransactionStatus
	Limit       int32
	Offset      int32
}

func NewListTransactionsRequestFromContext(ctx echo.Context) (*ListTransactionsRequest, error) {
	req := &ListTransactionsRequest{
		UserID:      strings.TrimSpace(ctx.QueryParam("user_id")),
		CourseID:    strings.TrimSpace(ctx.QueryParam("course_id")),
		GatewayName: strings.ToLower(strings.TrimSpace(ctx.QueryParam("gateway_name"))),
		Limit:       100,
		Offset:      0,
	}

	if statusRaw := strings.ToLower(strings.TrimSpace(ctx.QueryParam("status"))); statusRaw != "" {
		req.HasStatus = true
		req.Status = entity.TransactionStatus(statusRaw)
	}

	if limitRaw := strings.TrimSpace(ctx.QueryParam("limit")); limitRaw != "" {
		limit, err := strconv.ParseInt(limitRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Limit = int32(limit)
	}

	if offsetRaw := strings.TrimSpace(ctx.QueryParam("offset")); offsetRaw != "" {
		offset, err := strconv.ParseInt(offsetRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Offset = int32(offset)
	}

	return req, nil
}

func (r *ListTransactionsRequest) Validate() error {
	if r.Limit <= 0 || r.Limit > 500 {
		return errors.New("limit must be between 1 and 500")
	}
	if r.Offset < 0 {
		return errors.New("offset must be >= 0")
	}
	if r.HasStatus && !r.Status.Valid() {
		return errors.New("invalid status")
	}
	return nil
}
