package formsservice

import (
	"log/slog"

	httpadapter "github.com/ieth0/forms/contexts/forms-core/forms-service/adapters/http"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/adapters/memory"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/application/commands"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/application/queries"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/domain/entities"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createForm := commands.CreateFormUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Publisher:  deps.Publisher,
		Logger:     deps.Logger,
	}
	updateForm := commands.UpdateFormUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Publisher:  deps.Publisher,
		Logger:     deps.Logger,
	}
	deleteForm := commands.DeleteFormUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Publisher:  deps.Publisher,
		Logger:     deps.Logger,
	}
	queryUseCase := queries.QueryUseCase{
		Repository: deps.Repository,
		Logger:     deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateForm: createForm,
			UpdateForm: updateForm,
			DeleteForm: deleteForm,
			Queries:    queryUseCase,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Form, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Repository: store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
