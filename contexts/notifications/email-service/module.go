package emailservice

import (
	"log/slog"

	httpadapter "github.com/ieth0/forms/contexts/notifications/email-service/adapters/http"
	"github.com/ieth0/forms/contexts/notifications/email-service/adapters/memory"
	"github.com/ieth0/forms/contexts/notifications/email-service/application"
	"github.com/ieth0/forms/contexts/notifications/email-service/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Service   application.Service
	Mailer    *memory.Mailer
	Templates *memory.Templates
}

type Dependencies struct {
	Templates     ports.TemplateStore
	Transports    ports.TransportResolver
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Publisher     ports.EventPublisher
	DefaultLocale string
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Templates:     deps.Templates,
		Transports:    deps.Transports,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Publisher:     deps.Publisher,
		DefaultLocale: deps.DefaultLocale,
		Logger:        deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(defaultLocale string, logger *slog.Logger) Module {
	templates := memory.NewTemplates(defaultLocale)
	mailer := memory.NewMailer()
	module := NewModule(Dependencies{
		Templates:     templates,
		Transports:    mailer,
		DefaultLocale: defaultLocale,
		Logger:        logger,
	})
	module.Mailer = mailer
	module.Templates = templates
	return module
}
