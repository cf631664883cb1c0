package smtp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainerrors "github.com/ieth0/forms/contexts/notifications/email-service/domain/errors"
	"github.com/ieth0/forms/contexts/notifications/email-service/ports"
	gocache "github.com/patrickmn/go-cache"
)

const defaultCacheTTL = 15 * time.Minute

// Resolver hands out transports per account. Resolution order: cached
// handle, the account's stored URL, then the platform default. Racing
// requests may rebuild the same transport; the overwrite is idempotent.
type Resolver struct {
	credentials ports.CredentialSource
	fallback    ports.Transport
	cache       *gocache.Cache
	logger      *slog.Logger
}

// NewResolver builds the platform default transport from defaultURL.
// A blank defaultURL leaves accounts without their own URL unable to
// send, surfacing ErrNoTransport.
func NewResolver(credentials ports.CredentialSource, defaultURL string, ttl time.Duration, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	resolver := &Resolver{
		credentials: credentials,
		cache:       gocache.New(ttl, time.Minute),
		logger:      logger,
	}
	if strings.TrimSpace(defaultURL) != "" {
		fallback, err := NewTransport(defaultURL, logger)
		if err != nil {
			return nil, err
		}
		resolver.fallback = fallback
	}
	return resolver, nil
}

func (r *Resolver) ForAccount(ctx context.Context, accountID string) (ports.Transport, error) {
	id := strings.TrimSpace(accountID)
	if id == "" {
		return r.defaultTransport()
	}
	if cached, ok := r.cache.Get(id); ok {
		if transport, ok := cached.(ports.Transport); ok {
			return transport, nil
		}
	}

	rawURL, err := r.credentials.AccountSMTPURL(ctx, id)
	if err != nil {
		r.logger.Warn("account smtp lookup failed",
			"event", "mail_credential_lookup_failed",
			"module", "notifications/email-service",
			"layer", "adapter",
			"account_id", id,
			"error", err.Error(),
		)
		return r.defaultTransport()
	}
	if strings.TrimSpace(rawURL) == "" {
		return r.defaultTransport()
	}

	transport, err := NewTransport(rawURL, r.logger)
	if err != nil {
		r.logger.Warn("stored smtp url rejected",
			"event", "mail_transport_url_rejected",
			"module", "notifications/email-service",
			"layer", "adapter",
			"account_id", id,
			"error", err.Error(),
		)
		return r.defaultTransport()
	}
	r.cache.Set(id, transport, gocache.DefaultExpiration)
	return transport, nil
}

func (r *Resolver) defaultTransport() (ports.Transport, error) {
	if r.fallback == nil {
		return nil, domainerrors.ErrNoTransport
	}
	return r.fallback, nil
}
