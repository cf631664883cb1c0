package httpserver

import (
	"errors"
	"net/http"

	accounterrors "github.com/ieth0/forms/contexts/identity-access/accounts-service/domain/errors"
	accounthttp "github.com/ieth0/forms/contexts/identity-access/accounts-service/transport/http"
)

func writeAccountError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accounthttp.ErrorResponse{Code: code, Message: message})
}

func writeAccountDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounterrors.ErrAccountNotFound):
		writeAccountError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, accounterrors.ErrDuplicateEmail):
		writeAccountError(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, accounterrors.ErrInvalidAccountInput),
		errors.Is(err, accounterrors.ErrInvalidSMTPURL):
		writeAccountError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, accounterrors.ErrInvalidCredentials):
		writeAccountError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, accounterrors.ErrInvalidSessionToken):
		writeAccountError(w, http.StatusUnauthorized, "invalid_session", err.Error())
	default:
		writeAccountError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleRegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.RegisterRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.LoginRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeAccountError)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.GetAccountHandler(r.Context(), accountID)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeAccountError)
	if !ok {
		return
	}
	var req accounthttp.UpdateProfileRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.UpdateProfileHandler(r.Context(), accountID, req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateSMTP(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeAccountError)
	if !ok {
		return
	}
	var req accounthttp.UpdateSMTPRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.UpdateSMTPHandler(r.Context(), accountID, req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
