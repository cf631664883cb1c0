package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/ieth0/forms/contexts/forms-core/responses-service/application"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/responses-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
)

type IncomingFile struct {
	TempKey     string
	Filename    string
	ContentType string
	SizeBytes   int64
}

type CreateResponseCommand struct {
	AccountID     string
	FormID        string
	Payload       string
	Labels        []string
	RetentionDays int
	Encrypt       bool
	Files         []IncomingFile
}

type CreateResponseUseCase struct {
	Repository ports.Repository
	Files      ports.FileStore
	Cipher     ports.PayloadCipher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
}

func (uc CreateResponseUseCase) Execute(ctx context.Context, cmd CreateResponseCommand) (entities.Response, error) {
	logger := application.ResolveLogger(uc.Logger)
	responseID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Response{}, err
	}
	now := uc.Clock.Now().UTC()

	payload := strings.TrimSpace(cmd.Payload)
	encrypted := false
	if cmd.Encrypt && payload != "" {
		if uc.Cipher == nil {
			return entities.Response{}, domainerrors.ErrEncryptionUnavailable
		}
		sealed, err := uc.Cipher.Encrypt(payload)
		if err != nil {
			return entities.Response{}, err
		}
		payload = sealed
		encrypted = true
	}

	response := entities.Response{
		ResponseID: responseID,
		AccountID:  strings.TrimSpace(cmd.AccountID),
		FormID:     strings.TrimSpace(cmd.FormID),
		Payload:    payload,
		Encrypted:  encrypted,
		Labels:     sanitizeLabels(cmd.Labels),
		Logs: []entities.ResponseLog{
			{Kind: "received", At: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: retentionExpiry(now, cmd.RetentionDays),
	}
	if !response.ValidateCreate() {
		return entities.Response{}, domainerrors.ErrInvalidResponseInput
	}
	if err := uc.Repository.CreateResponse(ctx, response); err != nil {
		return entities.Response{}, err
	}

	for _, incoming := range cmd.Files {
		if err := uc.attachFile(ctx, response, incoming, now); err != nil {
			return entities.Response{}, err
		}
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Response{}, err
	}
	publishEvent(ctx, uc.Publisher, logger, newResponseEnvelope(
		eventID,
		"response.received",
		response.AccountID,
		response.ResponseID,
		now,
		map[string]any{
			"response_id": response.ResponseID,
			"form_id":     response.FormID,
			"encrypted":   response.Encrypted,
			"file_count":  len(cmd.Files),
		},
	))

	logger.Info("response created",
		"event", "response_created",
		"module", "forms-core/responses-service",
		"layer", "application",
		"response_id", response.ResponseID,
		"form_id", response.FormID,
		"account_id", response.AccountID,
		"encrypted", response.Encrypted,
	)
	return response, nil
}

func (uc CreateResponseUseCase) attachFile(
	ctx context.Context,
	response entities.Response,
	incoming IncomingFile,
	now time.Time,
) error {
	storageKey := strings.TrimSpace(incoming.TempKey)
	if storageKey == "" {
		return domainerrors.ErrInvalidResponseInput
	}
	if uc.Files != nil {
		promoted, err := uc.Files.Promote(storageKey, response.AccountID, response.ResponseID)
		if err != nil {
			return err
		}
		storageKey = promoted
	}
	fileID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return uc.Repository.AddFile(ctx, entities.ResponseFile{
		FileID:      fileID,
		ResponseID:  response.ResponseID,
		Filename:    strings.TrimSpace(incoming.Filename),
		ContentType: strings.TrimSpace(incoming.ContentType),
		SizeBytes:   incoming.SizeBytes,
		StorageKey:  storageKey,
		CreatedAt:   now,
	})
}

func sanitizeLabels(labels []string) []string {
	items := make([]string, 0, len(labels))
	for _, label := range labels {
		if v := strings.TrimSpace(label); v != "" {
			items = append(items, v)
		}
	}
	return items
}
