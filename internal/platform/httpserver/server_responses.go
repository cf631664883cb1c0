package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	responseerrors "github.com/ieth0/forms/contexts/forms-core/responses-service/domain/errors"
	responsehttp "github.com/ieth0/forms/contexts/forms-core/responses-service/transport/http"
)

func writeResponsesError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, responsehttp.ErrorResponse{Code: code, Message: message})
}

func writeResponsesDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, responseerrors.ErrResponseNotFound):
		writeResponsesError(w, http.StatusNotFound, "response_not_found", err.Error())
	case errors.Is(err, responseerrors.ErrInvalidResponseInput),
		errors.Is(err, responseerrors.ErrInvalidNoteInput):
		writeResponsesError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, responseerrors.ErrNoResponseIDs):
		writeResponsesError(w, http.StatusBadRequest, "no_response_ids", err.Error())
	case errors.Is(err, responseerrors.ErrInvalidFlag):
		writeResponsesError(w, http.StatusBadRequest, "invalid_flag", err.Error())
	case errors.Is(err, responseerrors.ErrInvalidListFilter):
		writeResponsesError(w, http.StatusBadRequest, "invalid_filter", err.Error())
	case errors.Is(err, responseerrors.ErrDuplicateResponse):
		writeResponsesError(w, http.StatusConflict, "duplicate_response", err.Error())
	case errors.Is(err, responseerrors.ErrUnauthorizedAccount):
		writeResponsesError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, responseerrors.ErrEncryptionUnavailable):
		writeResponsesError(w, http.StatusServiceUnavailable, "encryption_unavailable", err.Error())
	default:
		writeResponsesError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeResponsesError)
	if !ok {
		return
	}
	formID := strings.TrimSpace(r.PathValue("form_id"))

	query := r.URL.Query()
	offset := 0
	limit := 0
	if raw := query.Get("offset"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			writeResponsesError(w, http.StatusBadRequest, "invalid_offset", "offset must be a non-negative integer")
			return
		}
		offset = value
	}
	if raw := query.Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			writeResponsesError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = value
	}

	resp, err := s.responses.Handler.ListResponsesHandler(
		r.Context(),
		accountID,
		formID,
		query.Get("filter"),
		offset,
		limit,
	)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCountResponses(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeResponsesError)
	if !ok {
		return
	}
	formID := strings.TrimSpace(r.PathValue("form_id"))
	resp, err := s.responses.Handler.CountsHandler(r.Context(), accountID, formID)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeResponsesError)
	if !ok {
		return
	}
	responseID := strings.TrimSpace(r.PathValue("response_id"))
	resp, err := s.responses.Handler.GetResponseHandler(r.Context(), accountID, responseID)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateResponseFlags(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeResponsesError)
	if !ok {
		return
	}
	var req responsehttp.UpdateFlagsRequest
	if !s.decodeJSON(w, r, &req, writeResponsesError) {
		return
	}
	resp, err := s.responses.Handler.UpdateFlagsHandler(r.Context(), accountID, req)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteResponses(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeResponsesError)
	if !ok {
		return
	}
	var req responsehttp.LifecycleRequest
	if !s.decodeJSON(w, r, &req, writeResponsesError) {
		return
	}
	resp, err := s.responses.Handler.DeleteResponsesHandler(r.Context(), accountID, req)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRestoreResponses(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeResponsesError)
	if !ok {
		return
	}
	var req responsehttp.LifecycleRequest
	if !s.decodeJSON(w, r, &req, writeResponsesError) {
		return
	}
	resp, err := s.responses.Handler.RestoreResponsesHandler(r.Context(), accountID, req)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetResponseLabels(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeResponsesError)
	if !ok {
		return
	}
	var req responsehttp.SetLabelsRequest
	if !s.decodeJSON(w, r, &req, writeResponsesError) {
		return
	}
	responseID := strings.TrimSpace(r.PathValue("response_id"))
	resp, err := s.responses.Handler.SetLabelsHandler(r.Context(), accountID, responseID, req)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddResponseNote(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeResponsesError)
	if !ok {
		return
	}
	var req responsehttp.AddNoteRequest
	if !s.decodeJSON(w, r, &req, writeResponsesError) {
		return
	}
	responseID := strings.TrimSpace(r.PathValue("response_id"))
	resp, err := s.responses.Handler.AddNoteHandler(r.Context(), accountID, responseID, req)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListResponseNotes(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeResponsesError)
	if !ok {
		return
	}
	responseID := strings.TrimSpace(r.PathValue("response_id"))
	resp, err := s.responses.Handler.ListNotesHandler(r.Context(), accountID, responseID)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListResponseFiles(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeResponsesError)
	if !ok {
		return
	}
	responseID := strings.TrimSpace(r.PathValue("response_id"))
	resp, err := s.responses.Handler.ListFilesHandler(r.Context(), accountID, responseID)
	if err != nil {
		writeResponsesDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
