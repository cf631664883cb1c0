package accountsservice

import (
	"log/slog"
	"time"

	"github.com/ieth0/forms/contexts/identity-access/accounts-service/adapters/auth"
	httpadapter "github.com/ieth0/forms/contexts/identity-access/accounts-service/adapters/http"
	"github.com/ieth0/forms/contexts/identity-access/accounts-service/adapters/memory"
	"github.com/ieth0/forms/contexts/identity-access/accounts-service/application"
	"github.com/ieth0/forms/contexts/identity-access/accounts-service/domain/entities"
	"github.com/ieth0/forms/contexts/identity-access/accounts-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Hasher     ports.PasswordHasher
	Signer     ports.TokenSigner
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	SessionTTL time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:       deps.Repository,
		Hasher:     deps.Hasher,
		Signer:     deps.Signer,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Publisher:  deps.Publisher,
		SessionTTL: deps.SessionTTL,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(seed []entities.Account, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Repository: store,
		Hasher:     auth.BcryptHasher{},
		Signer:     auth.NewJWTSigner("local-test-secret"),
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
