package responsesservice

import (
	"log/slog"

	httpadapter "github.com/ieth0/forms/contexts/forms-core/responses-service/adapters/http"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/adapters/memory"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/application/commands"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/application/queries"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/application/workers"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	PurgeJob workers.RetentionPurgeJob
	Store    *memory.Store
	Files    *memory.FileStore
}

type Dependencies struct {
	Repository ports.Repository
	Files      ports.FileStore
	Cipher     ports.PayloadCipher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
	PurgeBatch int
}

func NewModule(deps Dependencies) Module {
	createResponse := commands.CreateResponseUseCase{
		Repository: deps.Repository,
		Files:      deps.Files,
		Cipher:     deps.Cipher,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Publisher:  deps.Publisher,
		Logger:     deps.Logger,
	}
	updateFlags := commands.UpdateFlagsUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Publisher:  deps.Publisher,
		Logger:     deps.Logger,
	}
	setLabels := commands.SetLabelsUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	softDelete := commands.SoftDeleteResponsesUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Publisher:  deps.Publisher,
		Logger:     deps.Logger,
	}
	restore := commands.RestoreResponsesUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Publisher:  deps.Publisher,
		Logger:     deps.Logger,
	}
	addNote := commands.AddNoteUseCase{
		Repository: deps.Repository,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	queryUseCase := queries.QueryUseCase{
		Repository: deps.Repository,
		Cipher:     deps.Cipher,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Publisher:  deps.Publisher,
		Logger:     deps.Logger,
	}
	purgeJob := workers.RetentionPurgeJob{
		Repository: deps.Repository,
		Files:      deps.Files,
		Clock:      deps.Clock,
		BatchSize:  deps.PurgeBatch,
		Logger:     deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateResponse: createResponse,
			UpdateFlags:    updateFlags,
			SetLabels:      setLabels,
			SoftDelete:     softDelete,
			Restore:        restore,
			AddNote:        addNote,
			Queries:        queryUseCase,
			Logger:         deps.Logger,
		},
		PurgeJob: purgeJob,
	}
}

func NewInMemoryModule(seed []entities.Response, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	files := memory.NewFileStore()
	module := NewModule(Dependencies{
		Repository: store,
		Files:      files,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	module.Files = files
	return module
}
