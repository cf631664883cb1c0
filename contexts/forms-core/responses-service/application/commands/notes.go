package commands

import (
	"context"
	"log/slog"
	"strings"

	application "github.com/ieth0/forms/contexts/forms-core/responses-service/application"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/responses-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
)

type AddNoteCommand struct {
	AccountID  string
	ResponseID string
	Body       string
}

type AddNoteUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc AddNoteUseCase) Execute(ctx context.Context, cmd AddNoteCommand) (entities.ResponseNote, error) {
	logger := application.ResolveLogger(uc.Logger)
	body := strings.TrimSpace(cmd.Body)
	if body == "" {
		return entities.ResponseNote{}, domainerrors.ErrInvalidNoteInput
	}

	item, err := uc.Repository.GetResponse(ctx, strings.TrimSpace(cmd.ResponseID))
	if err != nil {
		return entities.ResponseNote{}, err
	}
	if item.AccountID != strings.TrimSpace(cmd.AccountID) {
		return entities.ResponseNote{}, domainerrors.ErrResponseNotFound
	}

	noteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ResponseNote{}, err
	}
	note := entities.ResponseNote{
		NoteID:     noteID,
		ResponseID: item.ResponseID,
		AuthorID:   strings.TrimSpace(cmd.AccountID),
		Body:       body,
		CreatedAt:  uc.Clock.Now().UTC(),
	}
	if err := uc.Repository.AddNote(ctx, note); err != nil {
		return entities.ResponseNote{}, err
	}

	logger.Info("response note added",
		"event", "response_note_added",
		"module", "forms-core/responses-service",
		"layer", "application",
		"response_id", note.ResponseID,
		"note_id", note.NoteID,
	)
	return note, nil
}
