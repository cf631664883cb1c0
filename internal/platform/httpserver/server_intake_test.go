package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	formhttp "github.com/ieth0/forms/contexts/forms-core/forms-service/transport/http"
	responsesservice "github.com/ieth0/forms/contexts/forms-core/responses-service"
	responsesmemory "github.com/ieth0/forms/contexts/forms-core/responses-service/adapters/memory"
	responsehttp "github.com/ieth0/forms/contexts/forms-core/responses-service/transport/http"
	"github.com/ieth0/forms/internal/platform/filestore"
)

// newUploadTestServer wires the responses module against a disk-backed
// file store so intake uploads run the same promote path as production.
func newUploadTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	uploads, err := filestore.NewStore(root, slog.Default())
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}
	store := responsesmemory.NewStore(nil)
	opts := testOptions()
	opts.Responses = responsesservice.NewModule(responsesservice.Dependencies{
		Repository: store,
		Files:      uploads,
		Clock:      store,
		IDGen:      store,
		Logger:     slog.Default(),
	})
	opts.Uploads = uploads
	return New(opts), root
}

func submitIntake(t *testing.T, server *Server, formKey string, fields url.Values) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/f/"+formKey,
		strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var accepted intakeAcceptedResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode intake response: %v", err)
	}
	if accepted.ResponseID == "" {
		t.Fatal("expected response id")
	}
	return accepted.ResponseID
}

func TestIntakeURLEncodedSubmission(t *testing.T) {
	server := newTestServer(t)
	accountID, token := registerTestAccount(t, server, "owner@example.com")
	form := createTestForm(t, server, accountID, formhttp.CreateFormRequest{Name: "Contact"})

	responseID := submitIntake(t, server, form.Key, url.Values{
		"email":   {"visitor@example.com"},
		"message": {"hello there"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/responses/"+responseID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var fetched responsehttp.GetResponseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if fetched.Response.FormID != form.FormID {
		t.Fatalf("unexpected form id: %+v", fetched.Response)
	}
	if !strings.Contains(fetched.Response.Payload, "visitor@example.com") {
		t.Fatalf("payload missing field: %s", fetched.Response.Payload)
	}
}

func TestIntakeRepeatedFieldBecomesList(t *testing.T) {
	server := newTestServer(t)
	accountID, token := registerTestAccount(t, server, "owner@example.com")
	form := createTestForm(t, server, accountID, formhttp.CreateFormRequest{Name: "Survey"})

	responseID := submitIntake(t, server, form.Key, url.Values{
		"topics": {"billing", "delivery"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/responses/"+responseID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	var fetched responsehttp.GetResponseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(fetched.Response.Payload), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	values, ok := payload["topics"].([]any)
	if !ok || len(values) != 2 {
		t.Fatalf("expected two topics, got %#v", payload["topics"])
	}
}

func TestIntakeUnknownFormKey(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/f/deadbeefdeadbeef",
		strings.NewReader("email=visitor%40example.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestIntakeDisabledFormGone(t *testing.T) {
	server := newTestServer(t)
	accountID, _ := registerTestAccount(t, server, "owner@example.com")
	form := createTestForm(t, server, accountID, formhttp.CreateFormRequest{Name: "Contact"})

	enabled := false
	if _, err := server.forms.Handler.UpdateFormHandler(
		context.Background(), accountID, form.FormID,
		formhttp.UpdateFormRequest{Enabled: &enabled},
	); err != nil {
		t.Fatalf("disable form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/f/"+form.Key,
		strings.NewReader("email=visitor%40example.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusGone {
		t.Fatalf("expected 410, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestIntakeMultipartUploadPromotesFile(t *testing.T) {
	server, root := newUploadTestServer(t)
	accountID, token := registerTestAccount(t, server, "owner@example.com")
	form := createTestForm(t, server, accountID, formhttp.CreateFormRequest{Name: "Applications"})

	fileBody := []byte("resume body bytes")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("name", "Sam Applicant"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fw, err := mw.CreateFormFile("resume", "resume.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(fileBody); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/f/"+form.Key, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var accepted intakeAcceptedResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode intake response: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/responses/"+accepted.ResponseID+"/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var files responsehttp.ListFilesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &files); err != nil {
		t.Fatalf("decode files response: %v", err)
	}
	if len(files.Items) != 1 {
		t.Fatalf("expected one file, got %+v", files.Items)
	}
	item := files.Items[0]
	if item.Filename != "resume.txt" || item.SizeBytes != int64(len(fileBody)) {
		t.Fatalf("unexpected file record: %+v", item)
	}
	if !strings.HasPrefix(item.StorageKey, "permanent/") {
		t.Fatalf("expected promoted key, got %q", item.StorageKey)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(item.StorageKey))); err != nil {
		t.Fatalf("promoted file missing on disk: %v", err)
	}
}

func TestIntakeMultipartFieldsOnlyNeedsNoUploadStore(t *testing.T) {
	server := newTestServer(t)
	accountID, _ := registerTestAccount(t, server, "owner@example.com")
	form := createTestForm(t, server, accountID, formhttp.CreateFormRequest{Name: "Contact"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("email", "visitor@example.com"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/f/"+form.Key, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestIntakeFileUploadWithoutStoreUnavailable(t *testing.T) {
	server := newTestServer(t)
	accountID, _ := registerTestAccount(t, server, "owner@example.com")
	form := createTestForm(t, server, accountID, formhttp.CreateFormRequest{Name: "Applications"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("resume", "resume.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("resume body")); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/f/"+form.Key, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d body=%s", rr.Code, rr.Body.String())
	}
}
