package types

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	// HeaderGatewayName identifies the sending gateway; callers are expected
	// to configure their gateway to send it. A :gateway route param works as
	// the same hint.
	HeaderGatewayName = "X-Gateway-Name"
	// HeaderWebhookToken carries the shared webhook secret for gateways that
	// cannot set an Authorization header.
	HeaderWebhookToken = "X-Webhook-Token"
)

type WebhookRequest struct {
	GatewayHint string
	Credential  string
	Payload     []byte
}

func NewWebhookRequestFromContext(ctx echo.Context) (*WebhookRequest, error) {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, err
	}

	hint := strings.TrimSpace(ctx.Request().Header.Get(HeaderGatewayName))
	if hint == "" {
		hint = strings.TrimSpace(ctx.Param("gateway"))
	}

	credential := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderAuthorization))
	if credential == "" {
		credential = strings.TrimSpace(ctx.Request().Header.Get(HeaderWebhookToken))
	}

	return &WebhookRequest{
		GatewayHint: hint,
		Credential:  credential,
		Payload:     payload,
	}, nil
}

func (r *WebhookRequest) Validate() error {
	if len(r.Payload) == 0 {
		return errors.New("request body is required")
	}
	if !json.Valid(r.Payload) {
		return errors.New("request body is not valid JSON")
	}
	return nil
}
