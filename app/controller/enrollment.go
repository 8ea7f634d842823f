package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/courseware-labs/ms-go-enrollments/app/factory"
	"github.com/courseware-labs/ms-go-enrollments/app/mapper"
	"github.com/courseware-labs/ms-go-enrollments/app/service"
	"github.com/courseware-labs/ms-go-enrollments/app/types"
)

// EnrollmentController serves the internal API: transaction registration at
// checkout time, the admin transaction list, and manual grant management.
type EnrollmentController struct {
	enrollmentService *service.EnrollmentService
	logger            logrus.FieldLogger
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
		logger:            factory.NewModuleLogger("enrollment-controller"),
	}
}

func (c *EnrollmentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *EnrollmentController) CreateTransaction(ctx echo.Context) error {
	req, err := types.NewCreateTransactionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.enrollmentService.CreateTransaction(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTransactionAlreadyExists):
			return c.writeError(ctx, http.StatusConflict, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create transaction failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, &types.TransactionEnvelopeResponse{Transaction: mapper.TransactionToResponse(item)})
}

func (c *EnrollmentController) GetTransaction(ctx echo.Context) error {
	req, err := types.NewGetTransactionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.enrollmentService.GetTransaction(ctx.Request().Context(), req.ID)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "transaction not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get transaction failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.TransactionEnvelopeResponse{Transaction: mapper.TransactionToResponse(item)})
}

func (c *EnrollmentController) ListTransactions(ctx echo.Context) error {
	req, err := types.NewListTransactionsRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.enrollmentService.ListTransactions(ctx.Request().Context(), req)
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("List transactions failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ListTransactionsResponse{Transactions: mapper.TransactionsToResponse(items)})
}

// CheckAccess answers the member-area question: may this user open this
// course?
func (c *EnrollmentController) CheckAccess(ctx echo.Context) error {
	req, err := types.NewGrantRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	grant, err := c.enrollmentService.CheckAccess(ctx.Request().Context(), req.UserID, req.CourseID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Check access failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.AccessResponse{
		HasAccess: grant != nil,
		Grant:     mapper.GrantToResponse(grant),
	})
}

func (c *EnrollmentController) GrantAccess(ctx echo.Context) error {
	req, err := types.NewGrantRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	created, err := c.enrollmentService.GrantAccess(ctx.Request().Context(), req.UserID, req.CourseID, req.GrantedBy)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Grant access failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	grant, err := c.enrollmentService.CheckAccess(ctx.Request().Context(), req.UserID, req.CourseID)
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Read back grant failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	statusCode := http.StatusOK
	if created {
		statusCode = http.StatusCreated
	}
	return ctx.JSON(statusCode, &types.GrantEnvelopeResponse{Created: created, Grant: mapper.GrantToResponse(grant)})
}

func (c *EnrollmentController) RevokeAccess(ctx echo.Context) error {
	req, err := types.NewGrantRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if err := c.enrollmentService.RevokeAccess(ctx.Request().Context(), req.UserID, req.CourseID); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrGrantNotFound):
			return c.writeError(ctx, http.StatusNotFound, "grant not found")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Revoke access failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Access revoked"})
}

func (c *EnrollmentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
