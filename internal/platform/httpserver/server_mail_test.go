package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mailhttp "github.com/ieth0/forms/contexts/notifications/email-service/transport/http"
)

func TestMailSendTestDelivers(t *testing.T) {
	server := newTestServer(t)
	_, token := registerTestAccount(t, server, "owner@example.com")

	body := []byte(`{"recipient":"ops@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/smtp/test", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var sent mailhttp.SendTestMailResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &sent); err != nil {
		t.Fatalf("decode send response: %v", err)
	}
	if sent.Accepted != 1 {
		t.Fatalf("expected one accepted recipient, got %d", sent.Accepted)
	}

	deliveries := server.mail.Mailer.Deliveries()
	if len(deliveries) != 1 {
		t.Fatalf("expected one delivery, got %d", len(deliveries))
	}
	message := deliveries[0].Message
	if len(message.To) != 1 || message.To[0] != "ops@example.com" {
		t.Fatalf("unexpected recipients: %+v", message.To)
	}
	if message.Subject != "Delivery test" {
		t.Fatalf("unexpected subject: %q", message.Subject)
	}
}

func TestMailSendTestWithoutTransport(t *testing.T) {
	server := newTestServer(t)
	server.mail.Mailer.Unconfigured = true
	_, token := registerTestAccount(t, server, "owner@example.com")

	body := []byte(`{"recipient":"ops@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/smtp/test", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMailSendTestRequiresAuth(t *testing.T) {
	server := newTestServer(t)

	body := []byte(`{"recipient":"ops@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/smtp/test", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}
