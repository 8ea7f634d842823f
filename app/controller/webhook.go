package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/courseware-labs/ms-go-enrollments/app/auth"
	"github.com/courseware-labs/ms-go-enrollments/app/factory"
	"github.com/courseware-labs/ms-go-enrollments/app/service"
	"github.com/courseware-labs/ms-go-enrollments/app/types"
)

type WebhookController struct {
	enrollmentService *service.EnrollmentService
	authenticator     *auth.Authenticator
	logger            logrus.FieldLogger
}

func NewWebhookController(enrollmentService *service.EnrollmentService, authenticator *auth.Authenticator) *WebhookController {
	return &WebhookController{
		enrollmentService: enrollmentService,
		authenticator:     authenticator,
		logger:            factory.NewModuleLogger("webhook-controller"),
	}
}

// HandleWebhook is the single machine-to-machine entry point. Gateways retry
// on any non-2xx, so the status code decides whether a delivery comes back:
// 4xx rejections are final from our side, 500 asks for another attempt.
func (c *WebhookController) HandleWebhook(ctx echo.Context) error {
	req, err := types.NewWebhookRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body", "")
	}

	// Authentication comes before any validation or store access.
	if err := c.authenticator.Authenticate(req.Credential); err != nil {
		return c.writeError(ctx, http.StatusUnauthorized, "invalid webhook credential", "")
	}

	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error(), "")
	}

	result, err := c.enrollmentService.ProcessWebhook(ctx.Request().Context(), &service.WebhookInput{
		GatewayHint: req.GatewayHint,
		Payload:     req.Payload,
	})
	if err != nil {
		var unknown *service.UnknownTransactionError
		switch {
		case errors.As(err, &unknown):
			return c.writeError(ctx, http.StatusNotFound, unknown.Error(), unknown.TransactionID)
		case errors.Is(err, service.ErrWebhookRejected), errors.Is(err, service.ErrAmountMismatch):
			return c.writeError(ctx, http.StatusBadRequest, err.Error(), "")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Webhook processing failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error", "")
		}
	}

	return ctx.JSON(http.StatusOK, &types.WebhookResponse{
		Success: true,
		Status:  string(result.Status),
		Message: result.Message,
	})
}

func (c *WebhookController) writeError(ctx echo.Context, statusCode int, message, transactionID string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message, TransactionID: transactionID})
}
