package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/forms-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/forms-service/domain/errors"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	forms map[string]entities.Form
}

func NewStore(seed []entities.Form) *Store {
	forms := make(map[string]entities.Form, len(seed))
	for _, item := range seed {
		forms[item.FormID] = item
	}
	return &Store{forms: forms}
}

func (s *Store) CreateForm(_ context.Context, form entities.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.forms {
		if existing.Key == form.Key {
			return domainerrors.ErrDuplicateFormKey
		}
	}
	s.forms[form.FormID] = form
	return nil
}

func (s *Store) UpdateForm(_ context.Context, form entities.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.forms[form.FormID]; !exists {
		return domainerrors.ErrFormNotFound
	}
	s.forms[form.FormID] = form
	return nil
}

func (s *Store) GetForm(_ context.Context, formID string) (entities.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	form, exists := s.forms[strings.TrimSpace(formID)]
	if !exists {
		return entities.Form{}, domainerrors.ErrFormNotFound
	}
	return form, nil
}

func (s *Store) GetFormByKey(_ context.Context, key string) (entities.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, form := range s.forms {
		if form.Key == strings.TrimSpace(key) {
			return form, nil
		}
	}
	return entities.Form{}, domainerrors.ErrFormNotFound
}

func (s *Store) ListForms(_ context.Context, accountID string) ([]entities.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Form, 0)
	for _, form := range s.forms {
		if form.AccountID == strings.TrimSpace(accountID) {
			items = append(items, form)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) DeleteForm(_ context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetID := strings.TrimSpace(formID)
	if _, exists := s.forms[targetID]; !exists {
		return domainerrors.ErrFormNotFound
	}
	delete(s.forms, targetID)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
