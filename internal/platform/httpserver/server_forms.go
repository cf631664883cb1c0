package httpserver

import (
	"errors"
	"net/http"
	"strings"

	formerrors "github.com/ieth0/forms/contexts/forms-core/forms-service/domain/errors"
	formhttp "github.com/ieth0/forms/contexts/forms-core/forms-service/transport/http"
)

func writeFormError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, formhttp.ErrorResponse{Code: code, Message: message})
}

func writeFormDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, formerrors.ErrFormNotFound):
		writeFormError(w, http.StatusNotFound, "form_not_found", err.Error())
	case errors.Is(err, formerrors.ErrInvalidFormInput):
		writeFormError(w, http.StatusBadRequest, "invalid_form", err.Error())
	case errors.Is(err, formerrors.ErrDuplicateFormKey):
		writeFormError(w, http.StatusConflict, "duplicate_form_key", err.Error())
	case errors.Is(err, formerrors.ErrFormDisabled):
		writeFormError(w, http.StatusGone, "form_disabled", err.Error())
	default:
		writeFormError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeFormError)
	if !ok {
		return
	}
	var req formhttp.CreateFormRequest
	if !s.decodeJSON(w, r, &req, writeFormError) {
		return
	}
	resp, err := s.forms.Handler.CreateFormHandler(r.Context(), accountID, req)
	if err != nil {
		writeFormDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeFormError)
	if !ok {
		return
	}
	resp, err := s.forms.Handler.ListFormsHandler(r.Context(), accountID)
	if err != nil {
		writeFormDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeFormError)
	if !ok {
		return
	}
	formID := strings.TrimSpace(r.PathValue("form_id"))
	resp, err := s.forms.Handler.GetFormHandler(r.Context(), accountID, formID)
	if err != nil {
		writeFormDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeFormError)
	if !ok {
		return
	}
	var req formhttp.UpdateFormRequest
	if !s.decodeJSON(w, r, &req, writeFormError) {
		return
	}
	formID := strings.TrimSpace(r.PathValue("form_id"))
	resp, err := s.forms.Handler.UpdateFormHandler(r.Context(), accountID, formID, req)
	if err != nil {
		writeFormDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeFormError)
	if !ok {
		return
	}
	formID := strings.TrimSpace(r.PathValue("form_id"))
	if err := s.forms.Handler.DeleteFormHandler(r.Context(), accountID, formID); err != nil {
		writeFormDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
