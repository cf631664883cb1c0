package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	formhttp "github.com/ieth0/forms/contexts/forms-core/forms-service/transport/http"
	responsehttp "github.com/ieth0/forms/contexts/forms-core/responses-service/transport/http"
)

// seedInbox registers an owner, creates a form and submits count
// responses through public intake. Returns the owner's token, the form
// and the response ids in submission order.
func seedInbox(t *testing.T, server *Server, count int) (string, formhttp.FormDTO, []string) {
	t.Helper()
	accountID, token := registerTestAccount(t, server, "owner@example.com")
	form := createTestForm(t, server, accountID, formhttp.CreateFormRequest{Name: "Contact"})

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, submitIntake(t, server, form.Key, url.Values{
			"email":   {fmt.Sprintf("visitor%d@example.com", i)},
			"message": {fmt.Sprintf("message %d", i)},
		}))
	}
	return token, form, ids
}

func listResponses(t *testing.T, server *Server, token string, formID string, query string) responsehttp.ListResponsesResponse {
	t.Helper()
	target := "/api/v1/forms/" + formID + "/responses"
	if query != "" {
		target += "?" + query
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var listed responsehttp.ListResponsesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	return listed
}

func updateFlags(t *testing.T, server *Server, token string, ids []string, flag string, value bool) responsehttp.BulkUpdateResponse {
	t.Helper()
	payload, _ := json.Marshal(responsehttp.UpdateFlagsRequest{ResponseIDs: ids, Flag: flag, Value: value})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/responses/flags", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var result responsehttp.BulkUpdateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode bulk response: %v", err)
	}
	return result
}

func getCounts(t *testing.T, server *Server, token string, formID string) responsehttp.CountsResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/"+formID+"/responses/counts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var counts responsehttp.CountsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode counts response: %v", err)
	}
	return counts
}

func TestResponsesListPagination(t *testing.T) {
	server := newTestServer(t)
	token, form, _ := seedInbox(t, server, 3)

	listed := listResponses(t, server, token, form.FormID, "")
	if len(listed.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(listed.Items))
	}

	page := listResponses(t, server, token, form.FormID, "limit=2")
	if len(page.Items) != 2 || page.Limit != 2 {
		t.Fatalf("expected 2 items with limit=2, got %+v", page)
	}

	rest := listResponses(t, server, token, form.FormID, "offset=2")
	if len(rest.Items) != 1 || rest.Offset != 2 {
		t.Fatalf("expected 1 item with offset=2, got %+v", rest)
	}
}

func TestResponsesListRejectsNegativeOffset(t *testing.T) {
	server := newTestServer(t)
	token, form, _ := seedInbox(t, server, 1)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/forms/"+form.FormID+"/responses?offset=-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestResponsesListRejectsUnknownFilter(t *testing.T) {
	server := newTestServer(t)
	token, form, _ := seedInbox(t, server, 1)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/forms/"+form.FormID+"/responses?filter=archived", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestResponsesSpamFlagMovesBetweenViews(t *testing.T) {
	server := newTestServer(t)
	token, form, ids := seedInbox(t, server, 2)

	result := updateFlags(t, server, token, ids[:1], "spam", true)
	if result.Processed != 1 || result.SucceededCount != 1 {
		t.Fatalf("unexpected bulk result: %+v", result)
	}

	inbox := listResponses(t, server, token, form.FormID, "")
	if len(inbox.Items) != 1 || inbox.Items[0].ResponseID == ids[0] {
		t.Fatalf("expected spam item hidden from inbox, got %+v", inbox.Items)
	}

	spam := listResponses(t, server, token, form.FormID, "filter=spam")
	if len(spam.Items) != 1 || spam.Items[0].ResponseID != ids[0] {
		t.Fatalf("expected spam view to hold flagged item, got %+v", spam.Items)
	}

	counts := getCounts(t, server, token, form.FormID)
	if counts.Total != 1 || counts.Spam != 1 || counts.Unread != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestResponsesSpamFlagControlsExpiry(t *testing.T) {
	server := newTestServer(t)
	token, _, ids := seedInbox(t, server, 1)

	updateFlags(t, server, token, ids, "spam", true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/responses/"+ids[0], nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	var flagged responsehttp.GetResponseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &flagged); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !flagged.Response.Spam || flagged.Response.ExpiresAt == "" {
		t.Fatalf("expected spam item with expiry, got %+v", flagged.Response)
	}

	updateFlags(t, server, token, ids, "spam", false)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/responses/"+ids[0], nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	var cleared responsehttp.GetResponseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &cleared); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if cleared.Response.Spam || cleared.Response.ExpiresAt != "" {
		t.Fatalf("expected expiry cleared, got %+v", cleared.Response)
	}
}

func TestResponsesUnreadViewExcludesRead(t *testing.T) {
	server := newTestServer(t)
	token, form, ids := seedInbox(t, server, 2)

	updateFlags(t, server, token, ids[:1], "read", true)

	unread := listResponses(t, server, token, form.FormID, "filter=unread")
	if len(unread.Items) != 1 || unread.Items[0].ResponseID != ids[1] {
		t.Fatalf("expected only unread item, got %+v", unread.Items)
	}

	counts := getCounts(t, server, token, form.FormID)
	if counts.Total != 2 || counts.Read != 1 || counts.Unread != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestResponsesSoftDeleteAndRestore(t *testing.T) {
	server := newTestServer(t)
	token, form, ids := seedInbox(t, server, 2)

	payload, _ := json.Marshal(responsehttp.LifecycleRequest{ResponseIDs: ids})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/responses/delete", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var deleted responsehttp.BulkUpdateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &deleted); err != nil {
		t.Fatalf("decode bulk response: %v", err)
	}
	if deleted.SucceededCount != 2 {
		t.Fatalf("unexpected bulk result: %+v", deleted)
	}

	if listed := listResponses(t, server, token, form.FormID, ""); len(listed.Items) != 0 {
		t.Fatalf("expected empty inbox, got %+v", listed.Items)
	}
	if counts := getCounts(t, server, token, form.FormID); counts.Total != 0 {
		t.Fatalf("expected zero counts, got %+v", counts)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/responses/restore", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if listed := listResponses(t, server, token, form.FormID, ""); len(listed.Items) != 2 {
		t.Fatalf("expected restored inbox, got %+v", listed.Items)
	}
}

func TestResponsesFlagValidation(t *testing.T) {
	server := newTestServer(t)
	token, _, ids := seedInbox(t, server, 1)

	payload, _ := json.Marshal(responsehttp.UpdateFlagsRequest{ResponseIDs: ids, Flag: "archived", Value: true})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/responses/flags", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}

	payload, _ = json.Marshal(responsehttp.UpdateFlagsRequest{Flag: "read", Value: true})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/responses/flags", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestResponseLabels(t *testing.T) {
	server := newTestServer(t)
	token, _, ids := seedInbox(t, server, 1)

	payload, _ := json.Marshal(responsehttp.SetLabelsRequest{Labels: []string{"vip", "follow-up"}})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/responses/"+ids[0]+"/labels", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var labeled responsehttp.GetResponseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &labeled); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(labeled.Response.Labels) != 2 || labeled.Response.Labels[0] != "vip" {
		t.Fatalf("unexpected labels: %+v", labeled.Response.Labels)
	}
}

func TestResponseNotes(t *testing.T) {
	server := newTestServer(t)
	token, _, ids := seedInbox(t, server, 1)

	payload, _ := json.Marshal(responsehttp.AddNoteRequest{Body: "call them back"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/responses/"+ids[0]+"/notes", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var note responsehttp.AddNoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &note); err != nil {
		t.Fatalf("decode note response: %v", err)
	}
	if note.Note.Body != "call them back" || note.Note.NoteID == "" {
		t.Fatalf("unexpected note: %+v", note.Note)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/responses/"+ids[0]+"/notes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var notes responsehttp.ListNotesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &notes); err != nil {
		t.Fatalf("decode notes response: %v", err)
	}
	if len(notes.Items) != 1 || notes.Items[0].Body != "call them back" {
		t.Fatalf("unexpected notes: %+v", notes.Items)
	}
}

func TestResponseHiddenFromOtherAccounts(t *testing.T) {
	server := newTestServer(t)
	_, _, ids := seedInbox(t, server, 1)
	_, otherToken := registerTestAccount(t, server, "other@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/responses/"+ids[0], nil)
	req.Header.Set("Authorization", "Bearer "+otherToken)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}
