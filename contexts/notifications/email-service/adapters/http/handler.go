package httpadapter

import (
	"context"
	"log/slog"

	"github.com/ieth0/forms/contexts/notifications/email-service/application"
	httptransport "github.com/ieth0/forms/contexts/notifications/email-service/transport/http"
)

// Handler exposes the mail operations consumed by the HTTP layer.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// SendTestHandler pushes a probe message through the caller's transport.
func (h Handler) SendTestHandler(ctx context.Context, accountID string, request httptransport.SendTestMailRequest) (httptransport.SendTestMailResponse, error) {
	accepted, err := h.Service.SendTest(ctx, accountID, request.Recipient)
	if err != nil {
		return httptransport.SendTestMailResponse{}, err
	}
	return httptransport.SendTestMailResponse{Accepted: accepted}, nil
}
