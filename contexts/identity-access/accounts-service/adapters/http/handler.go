package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/ieth0/forms/contexts/identity-access/accounts-service/application"
	"github.com/ieth0/forms/contexts/identity-access/accounts-service/domain/entities"
	httptransport "github.com/ieth0/forms/contexts/identity-access/accounts-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) RegisterHandler(
	ctx context.Context,
	req httptransport.RegisterRequest,
) (httptransport.RegisterResponse, error) {
	account, err := h.Service.RegisterAccount(ctx, application.RegisterCommand{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Locale:   req.Locale,
	})
	if err != nil {
		return httptransport.RegisterResponse{}, err
	}
	return httptransport.RegisterResponse{Account: mapAccount(account)}, nil
}

func (h Handler) LoginHandler(
	ctx context.Context,
	req httptransport.LoginRequest,
) (httptransport.LoginResponse, error) {
	session, err := h.Service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return httptransport.LoginResponse{}, err
	}
	return httptransport.LoginResponse{
		Account:   mapAccount(session.Account),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}, nil
}

func (h Handler) GetAccountHandler(
	ctx context.Context,
	accountID string,
) (httptransport.GetAccountResponse, error) {
	account, err := h.Service.GetAccount(ctx, accountID)
	if err != nil {
		return httptransport.GetAccountResponse{}, err
	}
	return httptransport.GetAccountResponse{Account: mapAccount(account)}, nil
}

func (h Handler) UpdateProfileHandler(
	ctx context.Context,
	accountID string,
	req httptransport.UpdateProfileRequest,
) (httptransport.GetAccountResponse, error) {
	account, err := h.Service.UpdateProfile(ctx, accountID, req.Name, req.Locale)
	if err != nil {
		return httptransport.GetAccountResponse{}, err
	}
	return httptransport.GetAccountResponse{Account: mapAccount(account)}, nil
}

func (h Handler) UpdateSMTPHandler(
	ctx context.Context,
	accountID string,
	req httptransport.UpdateSMTPRequest,
) (httptransport.GetAccountResponse, error) {
	account, err := h.Service.UpdateSMTP(ctx, accountID, req.SMTPURL)
	if err != nil {
		return httptransport.GetAccountResponse{}, err
	}
	return httptransport.GetAccountResponse{Account: mapAccount(account)}, nil
}

// VerifyTokenHandler backs the session middleware on dashboard routes.
func (h Handler) VerifyTokenHandler(token string) (string, error) {
	return h.Service.VerifyToken(token)
}

func mapAccount(item entities.Account) httptransport.AccountDTO {
	return httptransport.AccountDTO{
		AccountID: item.AccountID,
		Email:     item.Email,
		Name:      item.Name,
		Locale:    item.Locale,
		SMTPSet:   item.SMTPURL != "",
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.Format(time.RFC3339),
	}
}
