package moonpsrv

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Account is a bearer-token holder: something allowed to call POST
// /compile. There is no role distinction; any account can compile.
type Account struct {
	ID             uuid.UUID
	Username       string
	PasswordHash   string
	LastLogoutTime time.Time
}

// AccountStore holds Accounts. The teacher's dao.UserRepository plays the
// same role for its richer user model; this is the minimal slice moonpsrv
// needs for bearer-token issuance.
type AccountStore interface {
	Create(ctx context.Context, username, password string) (Account, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	Logout(ctx context.Context, id uuid.UUID) (Account, error)
}

type inmemAccounts struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]Account
	byUser   map[string]uuid.UUID
}

// NewInMemAccountStore returns an AccountStore backed by a map, sufficient
// for a single moonpsrv process; accounts do not survive a restart.
func NewInMemAccountStore() AccountStore {
	return &inmemAccounts{
		byID:   make(map[uuid.UUID]Account),
		byUser: make(map[string]uuid.UUID),
	}
}

func (s *inmemAccounts) Create(ctx context.Context, username, password string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUser[username]; ok {
		return Account{}, New("create account", ErrAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, New("hash password", err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return Account{}, New("generate account id", err)
	}

	acct := Account{
		ID:           id,
		Username:     username,
		PasswordHash: base64.StdEncoding.EncodeToString(hash),
	}
	s.byID[id] = acct
	s.byUser[username] = id
	return acct, nil
}

func (s *inmemAccounts) GetByUsername(ctx context.Context, username string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUser[username]
	if !ok {
		return Account{}, New("get account", ErrNotFound)
	}
	return s.byID[id], nil
}

func (s *inmemAccounts) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.byID[id]
	if !ok {
		return Account{}, New("get account", ErrNotFound)
	}
	return acct, nil
}

func (s *inmemAccounts) Logout(ctx context.Context, id uuid.UUID) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byID[id]
	if !ok {
		return Account{}, New("logout", ErrNotFound)
	}
	acct.LastLogoutTime = time.Now()
	s.byID[id] = acct
	return acct, nil
}

func checkPassword(acct Account, password string) error {
	hash, err := base64.StdEncoding.DecodeString(acct.PasswordHash)
	if err != nil {
		return New("stored password hash is corrupt", err)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return New("", ErrBadCredentials)
	}
	return nil
}
