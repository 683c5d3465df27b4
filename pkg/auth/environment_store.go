package auth

import "os"

const envBearerToken = "TWSAMPLER_BEARER_TOKEN"

// EnvironmentStore is a read-only Store backed by environment variables,
// the last resort in the fallback chain and the natural fit for CI and
// containers.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-variable credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported; the environment cannot be written
func (s *EnvironmentStore) Store(cred *Credential) error {
	return ErrReadOnlyStore
}

// Retrieve returns the token from the environment regardless of name
func (s *EnvironmentStore) Retrieve(name string) (*Credential, error) {
	token := os.Getenv(envBearerToken)
	if token == "" {
		return nil, ErrCredentialNotFound
	}
	return &Credential{Name: name, BearerToken: token}, nil
}

// List returns the environment credential if the variable is set
func (s *EnvironmentStore) List() ([]*Credential, error) {
	token := os.Getenv(envBearerToken)
	if token == "" {
		return nil, nil
	}
	return []*Credential{{Name: "environment", BearerToken: token}}, nil
}

// Delete is not supported; the environment cannot be written
func (s *EnvironmentStore) Delete(name string) error {
	return ErrReadOnlyStore
}

// Exists checks if the environment variable is set
func (s *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(envBearerToken) != ""
}
