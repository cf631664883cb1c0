package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/responses-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	responses map[string]entities.Response
	notes     map[string]entities.ResponseNote
	files     map[string]entities.ResponseFile
}

func NewStore(seed []entities.Response) *Store {
	responses := make(map[string]entities.Response, len(seed))
	for _, item := range seed {
		responses[item.ResponseID] = item
	}
	return &Store{
		responses: responses,
		notes:     make(map[string]entities.ResponseNote),
		files:     make(map[string]entities.ResponseFile),
	}
}

func (s *Store) CreateResponse(_ context.Context, response entities.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.responses[response.ResponseID]; exists {
		return domainerrors.ErrDuplicateResponse
	}
	s.responses[response.ResponseID] = response
	return nil
}

func (s *Store) UpdateResponse(_ context.Context, response entities.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.responses[response.ResponseID]; !exists {
		return domainerrors.ErrResponseNotFound
	}
	s.responses[response.ResponseID] = response
	return nil
}

func (s *Store) GetResponse(_ context.Context, responseID string) (entities.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.responses[strings.TrimSpace(responseID)]
	if !exists {
		return entities.Response{}, domainerrors.ErrResponseNotFound
	}
	return item, nil
}

func (s *Store) ListResponses(_ context.Context, filter ports.ResponseFilter) ([]entities.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Response, 0, len(s.responses))
	for _, item := range s.responses {
		if strings.TrimSpace(filter.AccountID) != "" && item.AccountID != strings.TrimSpace(filter.AccountID) {
			continue
		}
		if strings.TrimSpace(filter.FormID) != "" && item.FormID != strings.TrimSpace(filter.FormID) {
			continue
		}
		if !matchesView(item, filter.View) {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return []entities.Response{}, nil
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(items) {
		items = items[:filter.Limit]
	}
	return items, nil
}

func matchesView(item entities.Response, view ports.ListView) bool {
	switch view {
	case ports.ViewSpam:
		return item.Spam && !item.Deleted
	case ports.ViewUnread:
		return !item.Read && !item.Spam && !item.Deleted
	case ports.ViewStarred:
		return item.Starred && !item.Deleted
	default:
		return !item.Spam && !item.Deleted
	}
}

func (s *Store) CountResponses(_ context.Context, accountID string, formID string) (ports.ResponseCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := ports.ResponseCounts{}
	for _, item := range s.responses {
		if item.AccountID != strings.TrimSpace(accountID) || item.Deleted {
			continue
		}
		if strings.TrimSpace(formID) != "" && item.FormID != strings.TrimSpace(formID) {
			continue
		}
		if item.Spam {
			counts.Spam++
			continue
		}
		counts.Total++
		if item.Read {
			counts.Read++
		} else {
			counts.Unread++
		}
		if item.Starred {
			counts.Starred++
		}
	}
	return counts, nil
}

func (s *Store) ListExpired(_ context.Context, cutoff time.Time, limit int) ([]entities.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Response, 0)
	for _, item := range s.responses {
		if item.ExpiresAt == nil || item.ExpiresAt.After(cutoff) {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ExpiresAt.Before(*items[j].ExpiresAt)
	})
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ListByForm(_ context.Context, formID string, limit int) ([]entities.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Response, 0)
	for _, item := range s.responses {
		if item.FormID == strings.TrimSpace(formID) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) PurgeResponse(_ context.Context, responseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetID := strings.TrimSpace(responseID)
	if _, exists := s.responses[targetID]; !exists {
		return domainerrors.ErrResponseNotFound
	}
	delete(s.responses, targetID)
	for noteID, note := range s.notes {
		if note.ResponseID == targetID {
			delete(s.notes, noteID)
		}
	}
	for fileID, file := range s.files {
		if file.ResponseID == targetID {
			delete(s.files, fileID)
		}
	}
	return nil
}

func (s *Store) AddNote(_ context.Context, note entities.ResponseNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.responses[note.ResponseID]; !exists {
		return domainerrors.ErrResponseNotFound
	}
	s.notes[note.NoteID] = note
	return nil
}

func (s *Store) ListNotes(_ context.Context, responseID string) ([]entities.ResponseNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.ResponseNote, 0)
	for _, note := range s.notes {
		if note.ResponseID == strings.TrimSpace(responseID) {
			items = append(items, note)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) AddFile(_ context.Context, file entities.ResponseFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.responses[file.ResponseID]; !exists {
		return domainerrors.ErrResponseNotFound
	}
	s.files[file.FileID] = file
	return nil
}

func (s *Store) ListFiles(_ context.Context, responseID string) ([]entities.ResponseFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.ResponseFile, 0)
	for _, file := range s.files {
		if file.ResponseID == strings.TrimSpace(responseID) {
			items = append(items, file)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
