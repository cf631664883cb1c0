package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ieth0/forms/contexts/identity-access/accounts-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/identity-access/accounts-service/domain/errors"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	accounts map[string]entities.Account
	byEmail  map[string]string
}

func NewStore(seed []entities.Account) *Store {
	accounts := make(map[string]entities.Account, len(seed))
	byEmail := make(map[string]string, len(seed))
	for _, item := range seed {
		accounts[item.AccountID] = item
		byEmail[strings.ToLower(item.Email)] = item.AccountID
	}
	return &Store{accounts: accounts, byEmail: byEmail}
}

func (s *Store) CreateAccount(_ context.Context, account entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(account.Email)
	if _, exists := s.byEmail[email]; exists {
		return domainerrors.ErrDuplicateEmail
	}
	s.accounts[account.AccountID] = account
	s.byEmail[email] = account.AccountID
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, account entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.accounts[account.AccountID]
	if !exists {
		return domainerrors.ErrAccountNotFound
	}
	if !strings.EqualFold(existing.Email, account.Email) {
		delete(s.byEmail, strings.ToLower(existing.Email))
		s.byEmail[strings.ToLower(account.Email)] = account.AccountID
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) GetAccount(_ context.Context, accountID string) (entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accounts[strings.TrimSpace(accountID)]
	if !exists {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return account, nil
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountID, exists := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !exists {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return s.accounts[accountID], nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
