package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/forms-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/forms-service/domain/errors"

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

func (r *Repository) CreateForm(ctx context.Context, form entities.Form) error {
	row := formModelFromEntity(form)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateFormKey
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateForm(ctx context.Context, form entities.Form) error {
	row := formModelFromEntity(form)
	result := r.db.WithContext(ctx).
		Model(&formModel{}).
		Where("form_id = ?", row.FormID).
		Updates(map[string]any{
			"name":             row.Name,
			"enabled":          row.Enabled,
			"retention_days":   row.RetentionDays,
			"encrypt_payloads": row.EncryptPayloads,
			"alert_emails":     row.AlertEmails,
			"updated_at":       row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrFormNotFound
	}
	return nil
}

func (r *Repository) GetForm(ctx context.Context, formID string) (entities.Form, error) {
	var row formModel
	err := r.db.WithContext(ctx).
		Where("form_id = ?", strings.TrimSpace(formID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Form{}, domainerrors.ErrFormNotFound
		}
		return entities.Form{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetFormByKey(ctx context.Context, key string) (entities.Form, error) {
	var row formModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Form{}, domainerrors.ErrFormNotFound
		}
		return entities.Form{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListForms(ctx context.Context, accountID string) ([]entities.Form, error) {
	var rows []formModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", strings.TrimSpace(accountID)).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Form, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// DeleteForm removes the form row only. Response cleanup happens through
// the form.deleted event consumed by the responses context.
func (r *Repository) DeleteForm(ctx context.Context, formID string) error {
	result := r.db.WithContext(ctx).
		Where("form_id = ?", strings.TrimSpace(formID)).
		Delete(&formModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrFormNotFound
	}
	return nil
}

type formModel struct {
	FormID          string    `gorm:"column:form_id;primaryKey"`
	AccountID       string    `gorm:"column:account_id"`
	Name            string    `gorm:"column:name"`
	Key             string    `gorm:"column:key;uniqueIndex"`
	Enabled         bool      `gorm:"column:enabled"`
	RetentionDays   int       `gorm:"column:retention_days"`
	EncryptPayloads bool      `gorm:"column:encrypt_payloads"`
	AlertEmails     []string  `gorm:"column:alert_emails;type:text[]"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (formModel) TableName() string {
	return "forms"
}

func formModelFromEntity(item entities.Form) formModel {
	return formModel{
		FormID:          strings.TrimSpace(item.FormID),
		AccountID:       strings.TrimSpace(item.AccountID),
		Name:            strings.TrimSpace(item.Name),
		Key:             strings.TrimSpace(item.Key),
		Enabled:         item.Enabled,
		RetentionDays:   item.RetentionDays,
		EncryptPayloads: item.EncryptPayloads,
		AlertEmails:     append([]string(nil), item.AlertEmails...),
		CreatedAt:       item.CreatedAt.UTC(),
		UpdatedAt:       item.UpdatedAt.UTC(),
	}
}

func (m formModel) toEntity() entities.Form {
	return entities.Form{
		FormID:          m.FormID,
		AccountID:       m.AccountID,
		Name:            m.Name,
		Key:             m.Key,
		Enabled:         m.Enabled,
		RetentionDays:   m.RetentionDays,
		EncryptPayloads: m.EncryptPayloads,
		AlertEmails:     append([]string(nil), m.AlertEmails...),
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
