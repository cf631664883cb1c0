package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/responses-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateResponse(ctx context.Context, response entities.Response) error {
	row := responseModelFromEntity(response)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateResponse
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateResponse(ctx context.Context, response entities.Response) error {
	result := r.db.WithContext(ctx).
		Model(&responseModel{}).
		Where("response_id = ?", strings.TrimSpace(response.ResponseID)).
		Updates(responseUpdatesFromEntity(response))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrResponseNotFound
	}
	return nil
}

func (r *Repository) GetResponse(ctx context.Context, responseID string) (entities.Response, error) {
	var row responseModel
	err := r.db.WithContext(ctx).
		Where("response_id = ?", strings.TrimSpace(responseID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Response{}, domainerrors.ErrResponseNotFound
		}
		return entities.Response{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListResponses(ctx context.Context, filter ports.ResponseFilter) ([]entities.Response, error) {
	tx := r.db.WithContext(ctx).Model(&responseModel{})
	if strings.TrimSpace(filter.AccountID) != "" {
		tx = tx.Where("account_id = ?", strings.TrimSpace(filter.AccountID))
	}
	if strings.TrimSpace(filter.FormID) != "" {
		tx = tx.Where("form_id = ?", strings.TrimSpace(filter.FormID))
	}
	tx = applyView(tx, filter.View)

	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []responseModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.Response, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func applyView(tx *gorm.DB, view ports.ListView) *gorm.DB {
	switch view {
	case ports.ViewSpam:
		return tx.Where("spam = ?", true).Where("deleted = ?", false)
	case ports.ViewUnread:
		return tx.Where("read = ?", false).Where("spam = ?", false).Where("deleted = ?", false)
	case ports.ViewStarred:
		return tx.Where("starred = ?", true).Where("deleted = ?", false)
	default:
		return tx.Where("spam = ?", false).Where("deleted = ?", false)
	}
}

func (r *Repository) CountResponses(ctx context.Context, accountID string, formID string) (ports.ResponseCounts, error) {
	counts := ports.ResponseCounts{}

	base := func() *gorm.DB {
		tx := r.db.WithContext(ctx).
			Model(&responseModel{}).
			Where("account_id = ?", strings.TrimSpace(accountID)).
			Where("deleted = ?", false)
		if strings.TrimSpace(formID) != "" {
			tx = tx.Where("form_id = ?", strings.TrimSpace(formID))
		}
		return tx
	}

	if err := base().Where("spam = ?", false).Count(&counts.Total).Error; err != nil {
		return ports.ResponseCounts{}, err
	}
	if err := base().Where("spam = ?", false).Where("read = ?", true).Count(&counts.Read).Error; err != nil {
		return ports.ResponseCounts{}, err
	}
	if err := base().Where("spam = ?", true).Count(&counts.Spam).Error; err != nil {
		return ports.ResponseCounts{}, err
	}
	if err := base().Where("spam = ?", false).Where("starred = ?", true).Count(&counts.Starred).Error; err != nil {
		return ports.ResponseCounts{}, err
	}
	counts.Unread = counts.Total - counts.Read
	return counts, nil
}

func (r *Repository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]entities.Response, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []responseModel
	if err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", cutoff.UTC()).
		Order("expires_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Response, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListByForm(ctx context.Context, formID string, limit int) ([]entities.Response, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []responseModel
	if err := r.db.WithContext(ctx).
		Where("form_id = ?", strings.TrimSpace(formID)).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Response, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// PurgeResponse hard-deletes a row. Notes and files go with it through the
// schema's ON DELETE CASCADE references.
func (r *Repository) PurgeResponse(ctx context.Context, responseID string) error {
	return r.db.WithContext(ctx).
		Where("response_id = ?", strings.TrimSpace(responseID)).
		Delete(&responseModel{}).
		Error
}

func (r *Repository) AddNote(ctx context.Context, note entities.ResponseNote) error {
	row := responseNoteModel{
		NoteID:     strings.TrimSpace(note.NoteID),
		ResponseID: strings.TrimSpace(note.ResponseID),
		AuthorID:   strings.TrimSpace(note.AuthorID),
		Body:       note.Body,
		CreatedAt:  note.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListNotes(ctx context.Context, responseID string) ([]entities.ResponseNote, error) {
	var rows []responseNoteModel
	if err := r.db.WithContext(ctx).
		Where("response_id = ?", strings.TrimSpace(responseID)).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.ResponseNote, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.ResponseNote{
			NoteID:     row.NoteID,
			ResponseID: row.ResponseID,
			AuthorID:   row.AuthorID,
			Body:       row.Body,
			CreatedAt:  row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) AddFile(ctx context.Context, file entities.ResponseFile) error {
	row := responseFileModel{
		FileID:      strings.TrimSpace(file.FileID),
		ResponseID:  strings.TrimSpace(file.ResponseID),
		Filename:    strings.TrimSpace(file.Filename),
		ContentType: strings.TrimSpace(file.ContentType),
		SizeBytes:   file.SizeBytes,
		StorageKey:  strings.TrimSpace(file.StorageKey),
		CreatedAt:   file.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListFiles(ctx context.Context, responseID string) ([]entities.ResponseFile, error) {
	var rows []responseFileModel
	if err := r.db.WithContext(ctx).
		Where("response_id = ?", strings.TrimSpace(responseID)).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.ResponseFile, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.ResponseFile{
			FileID:      row.FileID,
			ResponseID:  row.ResponseID,
			Filename:    row.Filename,
			ContentType: row.ContentType,
			SizeBytes:   row.SizeBytes,
			StorageKey:  row.StorageKey,
			CreatedAt:   row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

type responseModel struct {
	ResponseID string     `gorm:"column:response_id;primaryKey"`
	AccountID  string     `gorm:"column:account_id"`
	FormID     string     `gorm:"column:form_id"`
	Payload    string     `gorm:"column:payload"`
	Encrypted  bool       `gorm:"column:encrypted"`
	Read       bool       `gorm:"column:read"`
	Starred    bool       `gorm:"column:starred"`
	Spam       bool       `gorm:"column:spam"`
	Deleted    bool       `gorm:"column:deleted"`
	Labels     []string   `gorm:"column:labels;type:text[]"`
	Logs       []byte     `gorm:"column:logs"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
}

func (responseModel) TableName() string {
	return "responses"
}

func responseModelFromEntity(item entities.Response) responseModel {
	logs := []entities.ResponseLog{}
	if item.Logs != nil {
		logs = item.Logs
	}
	logsRaw, _ := json.Marshal(logs)
	return responseModel{
		ResponseID: strings.TrimSpace(item.ResponseID),
		AccountID:  strings.TrimSpace(item.AccountID),
		FormID:     strings.TrimSpace(item.FormID),
		Payload:    item.Payload,
		Encrypted:  item.Encrypted,
		Read:       item.Read,
		Starred:    item.Starred,
		Spam:       item.Spam,
		Deleted:    item.Deleted,
		Labels:     append([]string(nil), item.Labels...),
		Logs:       logsRaw,
		CreatedAt:  item.CreatedAt.UTC(),
		UpdatedAt:  item.UpdatedAt.UTC(),
		DeletedAt:  normalizeOptionalTime(item.DeletedAt),
		ExpiresAt:  normalizeOptionalTime(item.ExpiresAt),
	}
}

func responseUpdatesFromEntity(item entities.Response) map[string]any {
	row := responseModelFromEntity(item)
	return map[string]any{
		"account_id": row.AccountID,
		"form_id":    row.FormID,
		"payload":    row.Payload,
		"encrypted":  row.Encrypted,
		"read":       row.Read,
		"starred":    row.Starred,
		"spam":       row.Spam,
		"deleted":    row.Deleted,
		"labels":     row.Labels,
		"logs":       row.Logs,
		"updated_at": row.UpdatedAt,
		"deleted_at": row.DeletedAt,
		"expires_at": row.ExpiresAt,
	}
}

func (m responseModel) toEntity() entities.Response {
	logs := []entities.ResponseLog{}
	if len(m.Logs) > 0 {
		_ = json.Unmarshal(m.Logs, &logs)
	}
	return entities.Response{
		ResponseID: m.ResponseID,
		AccountID:  m.AccountID,
		FormID:     m.FormID,
		Payload:    m.Payload,
		Encrypted:  m.Encrypted,
		Read:       m.Read,
		Starred:    m.Starred,
		Spam:       m.Spam,
		Deleted:    m.Deleted,
		Labels:     append([]string(nil), m.Labels...),
		Logs:       logs,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
		DeletedAt:  normalizeOptionalTime(m.DeletedAt),
		ExpiresAt:  normalizeOptionalTime(m.ExpiresAt),
	}
}

type responseNoteModel struct {
	NoteID     string    `gorm:"column:note_id;primaryKey"`
	ResponseID string    `gorm:"column:response_id"`
	AuthorID   string    `gorm:"column:author_id"`
	Body       string    `gorm:"column:body"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (responseNoteModel) TableName() string {
	return "notes"
}

type responseFileModel struct {
	FileID      string    `gorm:"column:file_id;primaryKey"`
	ResponseID  string    `gorm:"column:response_id"`
	Filename    string    `gorm:"column:filename"`
	ContentType string    `gorm:"column:content_type"`
	SizeBytes   int64     `gorm:"column:size_bytes"`
	StorageKey  string    `gorm:"column:storage_key"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (responseFileModel) TableName() string {
	return "files"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
