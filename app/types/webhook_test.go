package types

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func webhookContext(body string, headers map[string]string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest("POST", "/webhook-payment", strings.NewReader(body))
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestNewWebhookRequestFromContext(t *testing.T) {
	ctx := webhookContext(`{"id":"pay_1"}`, map[string]string{
		HeaderGatewayName:  "asaas",
		HeaderWebhookToken: "whsec_123",
	})

	req, err := NewWebhookRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.GatewayHint != "asaas" {
		t.Errorf("unexpected gateway hint: %s", req.GatewayHint)
	}
	if req.Credential != "whsec_123" {
		t.Errorf("unexpected credential: %s", req.Credential)
	}
	if string(req.Payload) != `{"id":"pay_1"}` {
		t.Errorf("unexpected payload: %s", req.Payload)
	}
}

func TestWebhookRequestAuthorizationWinsOverToken(t *testing.T) {
	ctx := webhookContext(`{}`, map[string]string{
		echo.HeaderAuthorization: "Bearer secret-a",
		HeaderWebhookToken:       "secret-b",
	})

	req, err := NewWebhookRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.Credential != "Bearer secret-a" {
		t.Errorf("expected authorization header preferred, got %s", req.Credential)
	}
}

func TestWebhookRequestRouteParamHint(t *testing.T) {
	ctx := webhookContext(`{}`, nil)
	ctx.SetParamNames("gateway")
	ctx.SetParamValues("stripe")

	req, err := NewWebhookRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.GatewayHint != "stripe" {
		t.Errorf("expected route param hint, got %s", req.GatewayHint)
	}
}

func TestWebhookRequestHeaderHintWinsOverRouteParam(t *testing.T) {
	ctx := webhookContext(`{}`, map[string]string{HeaderGatewayName: "asaas"})
	ctx.SetParamNames("gateway")
	ctx.SetParamValues("stripe")

	req, err := NewWebhookRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.GatewayHint != "asaas" {
		t.Errorf("expected header hint to win, got %s", req.GatewayHint)
	}
}

func TestWebhookRequestValidate(t *testing.T) {
	empty := &WebhookRequest{}
	if err := empty.Validate(); err == nil {
		t.Error("expected error for empty body")
	}

	invalid := &WebhookRequest{Payload: []byte(`{"unclosed":`)}
	if err := invalid.Validate(); err == nil {
		t.Error("expected error for invalid JSON")
	}

	valid := &WebhookRequest{Payload: []byte(`{"id":"pay_1"}`)}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid JSON accepted, got %v", err)
	}
}
