package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	formsservice "github.com/ieth0/forms/contexts/forms-core/forms-service"
	formspostgres "github.com/ieth0/forms/contexts/forms-core/forms-service/adapters/postgres"
	responsesservice "github.com/ieth0/forms/contexts/forms-core/responses-service"
	responsespostgres "github.com/ieth0/forms/contexts/forms-core/responses-service/adapters/postgres"
	responsesworkers "github.com/ieth0/forms/contexts/forms-core/responses-service/application/workers"
	responsesports "github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
	accountsservice "github.com/ieth0/forms/contexts/identity-access/accounts-service"
	accountsauth "github.com/ieth0/forms/contexts/identity-access/accounts-service/adapters/auth"
	accountspostgres "github.com/ieth0/forms/contexts/identity-access/accounts-service/adapters/postgres"
	emailservice "github.com/ieth0/forms/contexts/notifications/email-service"
	smtpadapter "github.com/ieth0/forms/contexts/notifications/email-service/adapters/smtp"
	"github.com/ieth0/forms/contexts/notifications/email-service/adapters/templatestore"
	emailworkers "github.com/ieth0/forms/contexts/notifications/email-service/application/workers"
	"github.com/ieth0/forms/internal/platform/config"
	"github.com/ieth0/forms/internal/platform/db"
	"github.com/ieth0/forms/internal/platform/filestore"
	"github.com/ieth0/forms/internal/platform/httpserver"
	"github.com/ieth0/forms/internal/platform/messaging"
	"github.com/ieth0/forms/internal/platform/secrets"
	"github.com/ieth0/forms/internal/shared/events"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const shutdownTimeout = 5 * time.Second

type APIApp struct {
	server     *httpserver.Server
	postgres   *db.Postgres
	bus        *messaging.Bus
	formPurger responsesworkers.FormDeletedConsumer
	alerts     emailworkers.ResponseAlertConsumer
	welcomes   emailworkers.WelcomeMailConsumer
	logger     *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	purger       responsesworkers.RetentionPurgeJob
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	uploads, err := filestore.NewStore(cfg.UploadsDir, logger)
	if err != nil {
		return nil, err
	}

	// Payload encryption stays off unless a master key is configured;
	// forms that require it then reject submissions.
	var cipher responsesports.PayloadCipher
	if strings.TrimSpace(cfg.MasterKey) != "" {
		sealer, err := secrets.NewCipher(cfg.MasterKey)
		if err != nil {
			return nil, err
		}
		cipher = sealer
	}

	responsesRepo := responsespostgres.NewRepository(pg.DB, logger)
	formsRepo := formspostgres.NewRepository(pg.DB, logger)
	accountsRepo := accountspostgres.NewRepository(pg.DB, logger)

	responsesModule := responsesservice.NewModule(responsesservice.Dependencies{
		Repository: responsesRepo,
		Files:      uploads,
		Cipher:     cipher,
		Clock:      responsespostgres.SystemClock{},
		IDGen:      responsespostgres.UUIDGenerator{},
		Publisher:  responsesPublisher{bus: bus},
		Logger:     logger,
		PurgeBatch: cfg.PurgeBatchSize,
	})

	formsModule := formsservice.NewModule(formsservice.Dependencies{
		Repository: formsRepo,
		Clock:      formspostgres.SystemClock{},
		IDGen:      formspostgres.UUIDGenerator{},
		Publisher:  formsPublisher{bus: bus},
		Logger:     logger,
	})

	accountsModule := accountsservice.NewModule(accountsservice.Dependencies{
		Repository: accountsRepo,
		Hasher:     accountsauth.BcryptHasher{},
		Signer:     accountsauth.NewJWTSigner(cfg.JWTSecret),
		Clock:      accountspostgres.SystemClock{},
		IDGen:      accountspostgres.UUIDGenerator{},
		Publisher:  accountsPublisher{bus: bus},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	})

	templates, err := templatestore.New(cfg.TemplatesDir, cfg.DefaultLocale, logger)
	if err != nil {
		return nil, err
	}
	transports, err := smtpadapter.NewResolver(
		accountCredentials{accounts: accountsRepo},
		cfg.DefaultSMTPURL,
		cfg.TransportCacheTTL,
		logger,
	)
	if err != nil {
		return nil, err
	}
	emailModule := emailservice.NewModule(emailservice.Dependencies{
		Templates:     templates,
		Transports:    transports,
		Clock:         smtpadapter.SystemClock{},
		IDGen:         smtpadapter.UUIDGenerator{},
		Publisher:     mailPublisher{bus: bus},
		DefaultLocale: cfg.DefaultLocale,
		Logger:        logger,
	})

	directory := mailDirectory{forms: formsRepo, accounts: accountsRepo}
	server := httpserver.New(httpserver.Options{
		Responses:             responsesModule,
		Forms:                 formsModule,
		Accounts:              accountsModule,
		Mail:                  emailModule,
		Uploads:               uploads,
		Logger:                logger,
		Addr:                  normalizeAddr(cfg.HTTPPort),
		ContentSecurityPolicy: cfg.ContentSecurityPolicy,
		TrustedOrigins:        cfg.TrustedOrigins,
		CORSOrigins:           cfg.CORSOrigins,
	})

	return &APIApp{
		server:   server,
		postgres: pg,
		bus:      bus,
		formPurger: responsesworkers.FormDeletedConsumer{
			Subscriber: responsesSubscriber{bus: bus},
			Repository: responsesRepo,
			Files:      uploads,
			BatchSize:  cfg.PurgeBatchSize,
			Logger:     logger,
		},
		alerts: emailworkers.ResponseAlertConsumer{
			Subscriber: mailSubscriber{bus: bus},
			Directory:  directory,
			Sender:     emailModule.Service,
			Logger:     logger,
		},
		welcomes: emailworkers.WelcomeMailConsumer{
			Subscriber: mailSubscriber{bus: bus},
			Directory:  directory,
			Sender:     emailModule.Service,
			Logger:     logger,
		},
		logger: logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	uploads, err := filestore.NewStore(cfg.UploadsDir, logger)
	if err != nil {
		return nil, err
	}

	repo := responsespostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		purger: responsesworkers.RetentionPurgeJob{
			Repository: repo,
			Files:      uploads,
			Clock:      responsespostgres.SystemClock{},
			BatchSize:  cfg.PurgeBatchSize,
			Logger:     logger,
		},
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}, nil
}

// Run starts the bus consumers and serves HTTP until ctx is cancelled.
func (a *APIApp) Run(ctx context.Context) error {
	if err := a.startConsumers(ctx); err != nil {
		return err
	}

	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func (a *APIApp) startConsumers(ctx context.Context) error {
	if err := a.formPurger.Start(ctx); err != nil {
		return err
	}
	if err := a.alerts.Start(ctx); err != nil {
		return err
	}
	if err := a.welcomes.Start(ctx); err != nil {
		return err
	}
	return a.subscribeAuditLogger(ctx)
}

// subscribeAuditLogger mirrors every bus event into the structured log.
func (a *APIApp) subscribeAuditLogger(ctx context.Context) error {
	topics := []string{events.TopicResponses, events.TopicForms, events.TopicAccounts, events.TopicMail}
	for _, topic := range topics {
		err := a.bus.Subscribe(ctx, topic, "audit-logger", func(ctx context.Context, event events.Envelope) error {
			a.logger.Info("analytics event recorded",
				"event", "audit_event_recorded",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"event_id", event.EventID,
				"event_type", event.EventType,
				"source_service", event.SourceService,
				"entity_type", event.EntityType,
				"entity_id", event.EntityID,
			)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.purger.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
