package httpserver

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	formsservice "github.com/ieth0/forms/contexts/forms-core/forms-service"
	formhttp "github.com/ieth0/forms/contexts/forms-core/forms-service/transport/http"
	responsesservice "github.com/ieth0/forms/contexts/forms-core/responses-service"
	accountsservice "github.com/ieth0/forms/contexts/identity-access/accounts-service"
	accounthttp "github.com/ieth0/forms/contexts/identity-access/accounts-service/transport/http"
	emailservice "github.com/ieth0/forms/contexts/notifications/email-service"
)

func testOptions() Options {
	return Options{
		Responses: responsesservice.NewInMemoryModule(nil, slog.Default()),
		Forms:     formsservice.NewInMemoryModule(nil, slog.Default()),
		Accounts:  accountsservice.NewInMemoryModule(nil, slog.Default()),
		Mail:      emailservice.NewInMemoryModule("en", slog.Default()),
		Logger:    slog.Default(),
		Addr:      ":0",
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(testOptions())
}

// registerTestAccount creates an account through the module handler and
// returns its id plus a bearer token for dashboard requests.
func registerTestAccount(t *testing.T, server *Server, email string) (string, string) {
	t.Helper()
	ctx := context.Background()
	if _, err := server.accounts.Handler.RegisterHandler(ctx, accounthttp.RegisterRequest{
		Email:    email,
		Password: "sturdy-passphrase",
		Name:     "Dana",
	}); err != nil {
		t.Fatalf("register account: %v", err)
	}
	login, err := server.accounts.Handler.LoginHandler(ctx, accounthttp.LoginRequest{
		Email:    email,
		Password: "sturdy-passphrase",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return login.Account.AccountID, login.Token
}

func createTestForm(t *testing.T, server *Server, accountID string, req formhttp.CreateFormRequest) formhttp.FormDTO {
	t.Helper()
	created, err := server.forms.Handler.CreateFormHandler(context.Background(), accountID, req)
	if err != nil {
		t.Fatalf("create form: %v", err)
	}
	return created.Form
}

func TestSecurityHeadersApplied(t *testing.T) {
	opts := testOptions()
	opts.ContentSecurityPolicy = "default-src 'self'"
	server := New(opts)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Security-Policy"); got != "default-src 'self'" {
		t.Fatalf("expected CSP header, got %q", got)
	}
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
}

func TestUntrustedOriginRejected(t *testing.T) {
	opts := testOptions()
	opts.TrustedOrigins = []string{"https://dash.example.com"}
	server := New(opts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms", bytes.NewReader([]byte(`{"name":"Contact"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example.com")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTrustedOriginAccepted(t *testing.T) {
	opts := testOptions()
	opts.TrustedOrigins = []string{"https://dash.example.com"}
	server := New(opts)
	_, token := registerTestAccount(t, server, "owner@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms", bytes.NewReader([]byte(`{"name":"Contact"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestOriginCheckSkipsIntake(t *testing.T) {
	opts := testOptions()
	opts.TrustedOrigins = []string{"https://dash.example.com"}
	server := New(opts)
	accountID, _ := registerTestAccount(t, server, "owner@example.com")
	form := createTestForm(t, server, accountID, formhttp.CreateFormRequest{Name: "Contact"})

	req := httptest.NewRequest(http.MethodPost, "/f/"+form.Key, bytes.NewReader([]byte("email=visitor%40example.com")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://anywhere.example.net")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestOriginCheckDisabledWithoutTrustedList(t *testing.T) {
	server := newTestServer(t)

	body := []byte(`{"email":"new@example.com","password":"sturdy-passphrase","name":"Dana"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://anywhere.example.net")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCORSPreflightAllowsConfiguredOrigin(t *testing.T) {
	opts := testOptions()
	opts.CORSOrigins = []string{"https://dash.example.com"}
	server := New(opts)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/forms", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Fatalf("expected allowed origin header, got %q status=%d", got, rr.Code)
	}
}

func TestDashboardRequiresBearerToken(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDashboardRejectsGarbageToken(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}
