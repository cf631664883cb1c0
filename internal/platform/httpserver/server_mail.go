package httpserver

import (
	"errors"
	"net/http"

	mailerrors "github.com/ieth0/forms/contexts/notifications/email-service/domain/errors"
	mailhttp "github.com/ieth0/forms/contexts/notifications/email-service/transport/http"
)

func writeMailError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, mailhttp.ErrorResponse{Code: code, Message: message})
}

func writeMailDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mailerrors.ErrInvalidMessage),
		errors.Is(err, mailerrors.ErrInvalidTransportURL):
		writeMailError(w, http.StatusBadRequest, "invalid_message", err.Error())
	case errors.Is(err, mailerrors.ErrTemplateNotFound):
		writeMailError(w, http.StatusNotFound, "template_not_found", err.Error())
	case errors.Is(err, mailerrors.ErrNoTransport):
		writeMailError(w, http.StatusServiceUnavailable, "no_transport", err.Error())
	case errors.Is(err, mailerrors.ErrSendFailed):
		writeMailError(w, http.StatusBadGateway, "send_failed", err.Error())
	default:
		writeMailError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleSendTestMail(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r, writeMailError)
	if !ok {
		return
	}
	var req mailhttp.SendTestMailRequest
	if !s.decodeJSON(w, r, &req, writeMailError) {
		return
	}
	resp, err := s.mail.Handler.SendTestHandler(r.Context(), accountID, req)
	if err != nil {
		writeMailDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
