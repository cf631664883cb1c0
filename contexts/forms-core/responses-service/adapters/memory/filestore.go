package memory

import (
	"path"
	"strings"
	"sync"

	domainerrors "github.com/ieth0/forms/contexts/forms-core/responses-service/domain/errors"
)

// FileStore keeps upload bodies in a map. It mirrors the disk store's
// tmp/ to permanent/ key scheme so handler flows behave the same in tests.
type FileStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewFileStore() *FileStore {
	return &FileStore{blobs: make(map[string][]byte)}
}

func (s *FileStore) Put(key string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), body...)
}

func (s *FileStore) Promote(key string, accountID string, responseID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !strings.HasPrefix(key, "tmp/") {
		return "", domainerrors.ErrInvalidResponseInput
	}
	body, exists := s.blobs[key]
	if !exists {
		return "", domainerrors.ErrResponseNotFound
	}
	destKey := path.Join("permanent", accountID, responseID, path.Base(key))
	s.blobs[destKey] = body
	delete(s.blobs, key)
	return destKey, nil
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *FileStore) RemoveResponse(accountID string, responseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := path.Join("permanent", accountID, responseID) + "/"
	for key := range s.blobs {
		if strings.HasPrefix(key, prefix) {
			delete(s.blobs, key)
		}
	}
	return nil
}

func (s *FileStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, exists := s.blobs[key]
	return body, exists
}
