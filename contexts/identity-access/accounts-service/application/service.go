package application

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ieth0/forms/contexts/identity-access/accounts-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/identity-access/accounts-service/domain/errors"
	"github.com/ieth0/forms/contexts/identity-access/accounts-service/ports"
)

const (
	minPasswordLength = 8
	defaultLocale     = "en"
	defaultSessionTTL = 24 * time.Hour
)

type Service struct {
	Repo       ports.Repository
	Hasher     ports.PasswordHasher
	Signer     ports.TokenSigner
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type RegisterCommand struct {
	Email    string
	Password string
	Name     string
	Locale   string
}

type Session struct {
	Account   entities.Account
	Token     string
	ExpiresAt time.Time
}

func (s Service) RegisterAccount(ctx context.Context, cmd RegisterCommand) (entities.Account, error) {
	logger := resolveLogger(s.Logger)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if !entities.ValidEmail(email) || len(cmd.Password) < minPasswordLength {
		return entities.Account{}, domainerrors.ErrInvalidAccountInput
	}

	hash, err := s.Hasher.Hash(cmd.Password)
	if err != nil {
		return entities.Account{}, err
	}
	accountID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Account{}, err
	}
	now := s.now()

	locale := entities.NormalizeLocale(cmd.Locale)
	if locale == "" {
		locale = defaultLocale
	}
	account := entities.Account{
		AccountID:    accountID,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(cmd.Name),
		Locale:       locale,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !account.ValidateBasics() {
		return entities.Account{}, domainerrors.ErrInvalidAccountInput
	}

	if err := s.Repo.CreateAccount(ctx, account); err != nil {
		return entities.Account{}, err
	}

	s.publish(ctx, "account.registered", account, map[string]any{
		"account_id": account.AccountID,
		"locale":     account.Locale,
	})
	logger.Info("account registered",
		"event", "account_registered",
		"module", "identity-access/accounts-service",
		"layer", "application",
		"account_id", account.AccountID,
	)
	return account, nil
}

func (s Service) Authenticate(ctx context.Context, email string, password string) (Session, error) {
	logger := resolveLogger(s.Logger)
	account, err := s.Repo.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountNotFound) {
			return Session{}, domainerrors.ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := s.Hasher.Compare(account.PasswordHash, password); err != nil {
		return Session{}, domainerrors.ErrInvalidCredentials
	}

	now := s.now()
	ttl := s.sessionTTL()
	token, err := s.Signer.Sign(account.AccountID, now, ttl)
	if err != nil {
		return Session{}, err
	}

	logger.Info("account authenticated",
		"event", "account_authenticated",
		"module", "identity-access/accounts-service",
		"layer", "application",
		"account_id", account.AccountID,
	)
	return Session{
		Account:   account,
		Token:     token,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// VerifyToken resolves a bearer token to an account ID for the session
// middleware.
func (s Service) VerifyToken(token string) (string, error) {
	accountID, err := s.Signer.Verify(strings.TrimSpace(token))
	if err != nil {
		return "", domainerrors.ErrInvalidSessionToken
	}
	return accountID, nil
}

func (s Service) GetAccount(ctx context.Context, accountID string) (entities.Account, error) {
	return s.Repo.GetAccount(ctx, strings.TrimSpace(accountID))
}

func (s Service) UpdateProfile(ctx context.Context, accountID string, name *string, locale *string) (entities.Account, error) {
	account, err := s.Repo.GetAccount(ctx, strings.TrimSpace(accountID))
	if err != nil {
		return entities.Account{}, err
	}
	if name != nil {
		account.Name = strings.TrimSpace(*name)
	}
	if locale != nil {
		normalized := entities.NormalizeLocale(*locale)
		if normalized == "" {
			normalized = defaultLocale
		}
		account.Locale = normalized
	}
	account.UpdatedAt = s.now()
	if !account.ValidateBasics() {
		return entities.Account{}, domainerrors.ErrInvalidAccountInput
	}
	if err := s.Repo.UpdateAccount(ctx, account); err != nil {
		return entities.Account{}, err
	}
	s.publish(ctx, "account.updated", account, map[string]any{
		"account_id": account.AccountID,
	})
	return account, nil
}

// UpdateSMTP stores the account's own mail transport. A blank URL clears
// it, falling back to the platform default transport.
func (s Service) UpdateSMTP(ctx context.Context, accountID string, smtpURL string) (entities.Account, error) {
	account, err := s.Repo.GetAccount(ctx, strings.TrimSpace(accountID))
	if err != nil {
		return entities.Account{}, err
	}

	trimmed := strings.TrimSpace(smtpURL)
	if trimmed != "" && !validSMTPURL(trimmed) {
		return entities.Account{}, domainerrors.ErrInvalidSMTPURL
	}
	account.SMTPURL = trimmed
	account.UpdatedAt = s.now()
	if err := s.Repo.UpdateAccount(ctx, account); err != nil {
		return entities.Account{}, err
	}

	s.publish(ctx, "account.updated", account, map[string]any{
		"account_id":   account.AccountID,
		"smtp_changed": true,
	})
	resolveLogger(s.Logger).Info("account smtp updated",
		"event", "account_smtp_updated",
		"module", "identity-access/accounts-service",
		"layer", "application",
		"account_id", account.AccountID,
		"cleared", trimmed == "",
	)
	return account, nil
}

func validSMTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch parsed.Scheme {
	case "smtp", "smtps":
	default:
		return false
	}
	return parsed.Hostname() != ""
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) sessionTTL() time.Duration {
	if s.SessionTTL <= 0 {
		return defaultSessionTTL
	}
	return s.SessionTTL
}

func (s Service) publish(ctx context.Context, eventType string, account entities.Account, payload map[string]any) {
	if s.Publisher == nil || s.IDGen == nil {
		return
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return
	}
	envelope := ports.EventEnvelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  "accounts-service",
		OccurredAtUTC:  s.now(),
		AccountID:      account.AccountID,
		EntityType:     "account",
		EntityID:       account.AccountID,
		PayloadVersion: 1,
		Payload:        payload,
	}
	if err := s.Publisher.Publish(ctx, ports.AnalyticsTopic, envelope); err != nil {
		resolveLogger(s.Logger).Warn("account event publish failed",
			"event", "account_event_publish_failed",
			"module", "identity-access/accounts-service",
			"layer", "application",
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
			"error", err.Error(),
		)
	}
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
