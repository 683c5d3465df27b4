package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrInvalidCredentials indicates a credential with missing fields
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCredentialNotFound indicates no stored credential under that name
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrReadOnlyStore indicates a store that cannot persist credentials
	ErrReadOnlyStore = errors.New("store is read-only")
)

// Credential is a named API bearer token.
type Credential struct {
	Name         string    `json:"name"`
	BearerToken  string    `json:"bearer_token"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the interface for storing and retrieving credentials
type Store interface {
	// Store saves a credential
	Store(cred *Credential) error

	// Retrieve gets the credential with the given name
	Retrieve(name string) (*Credential, error)

	// List returns all stored credentials
	List() ([]*Credential, error)

	// Delete removes the credential with the given name
	Delete(name string) error

	// Exists checks if a credential exists under the given name
	Exists(name string) bool
}

// Manager handles credential storage with fallback mechanisms: the
// system keychain when available, an encrypted file when a vault
// passphrase is configured, and the environment as a read-only last
// resort.
type Manager struct {
	stores []Store
}

// NewManager creates a credential manager with the available backends
func NewManager() (*Manager, error) {
	var stores []Store

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	if os.Getenv(vaultPassphraseEnv) != "" {
		path, err := defaultVaultPath()
		if err == nil {
			if fileStore, err := NewEncryptedFileStore(path); err == nil {
				stores = append(stores, fileStore)
			}
		}
	}

	stores = append(stores, NewEnvironmentStore())

	if len(stores) == 0 {
		return nil, errors.New("no credential store available")
	}

	return &Manager{stores: stores}, nil
}

// defaultVaultPath returns the encrypted credential file location
func defaultVaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "twsampler", "credentials.enc"), nil
}

// Store saves the credential to the first store that accepts it
func (m *Manager) Store(cred *Credential) error {
	if cred == nil || cred.Name == "" || cred.BearerToken == "" {
		return ErrInvalidCredentials
	}
	cred.LastModified = time.Now()

	var lastErr error
	for _, s := range m.stores {
		if err := s.Store(cred); err != nil {
			if errors.Is(err, ErrReadOnlyStore) {
				continue
			}
			lastErr = err
			continue
		}
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credential: %w", lastErr)
	}
	return errors.New("no writable credential store available")
}

// Retrieve gets the named credential from the first store that has it
func (m *Manager) Retrieve(name string) (*Credential, error) {
	for _, s := range m.stores {
		if cred, err := s.Retrieve(name); err == nil {
			return cred, nil
		}
	}
	return nil, ErrCredentialNotFound
}

// List returns the credentials from all stores, first store wins on
// duplicate names.
func (m *Manager) List() ([]*Credential, error) {
	seen := make(map[string]bool)
	var all []*Credential

	for _, s := range m.stores {
		creds, err := s.List()
		if err != nil {
			continue
		}
		for _, cred := range creds {
			if !seen[cred.Name] {
				seen[cred.Name] = true
				all = append(all, cred)
			}
		}
	}

	return all, nil
}

// Delete removes the named credential from every store that has it
func (m *Manager) Delete(name string) error {
	deleted := false
	for _, s := range m.stores {
		if s.Exists(name) {
			if err := s.Delete(name); err == nil {
				deleted = true
			}
		}
	}
	if !deleted {
		return ErrCredentialNotFound
	}
	return nil
}
