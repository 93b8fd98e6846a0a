package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Azahorscak/nyxflare/internal/api"
)

// accountsFile is the on-disk layout of accounts.json.
type accountsFile struct {
	Accounts []api.Account `json:"accounts"`
}

// AccountStore keeps the configured accounts and persists additions.
// It is safe for concurrent use: providers read it from request goroutines
// while the UI appends to it.
type AccountStore struct {
	path string

	mu       sync.RWMutex
	accounts []api.Account
	session  []api.Account
}

// OpenAccountStore loads accounts from path. If path does not exist the
// legacy location is tried; if neither exists the store starts empty and is
// written to path on the first Append.
func OpenAccountStore(path string) (*AccountStore, error) {
	s := &AccountStore{path: path}

	accounts, err := readAccounts(path)
	if errors.Is(err, os.ErrNotExist) {
		accounts, err = readAccounts(LegacyAccountsPath)
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
	}
	if err != nil {
		return nil, err
	}
	s.accounts = accounts
	return s, nil
}

func readAccounts(path string) ([]api.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f accountsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing accounts %s: %w", path, err)
	}
	for i := range f.Accounts {
		if f.Accounts[i].AuthMode == "" {
			f.Accounts[i].AuthMode = api.AuthToken
		}
	}
	return f.Accounts, nil
}

// Path returns the file the store writes to.
func (s *AccountStore) Path() string {
	return s.path
}

// Accounts returns a copy of the persisted accounts followed by session-only ones.
func (s *AccountStore) Accounts() []api.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Account, 0, len(s.accounts)+len(s.session))
	out = append(out, s.accounts...)
	return append(out, s.session...)
}

// AddSession registers an account for this process only; it is never written to disk.
func (s *AccountStore) AddSession(a api.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = append(s.session, a)
}

// Append adds an account and rewrites the accounts file. The account is kept
// in memory even if writing fails.
func (s *AccountStore) Append(a api.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = append(s.accounts, a)
	return s.save()
}

// save writes the persisted accounts. The file is written next to the
// target and renamed over it, so a failed write leaves the old file intact.
// Callers hold s.mu.
func (s *AccountStore) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating accounts directory: %w", err)
	}
	data, err := json.MarshalIndent(accountsFile{Accounts: s.accounts}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding accounts: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".accounts-*.json")
	if err != nil {
		return fmt.Errorf("writing accounts %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing accounts %s: %w", s.path, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing accounts %s: %w", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing accounts %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing accounts %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing accounts %s: %w", s.path, err)
	}
	return nil
}
