// Package auth resolves API keys to identities and decides whether an
// identity may call a tool.
//
// Keys are held and compared in plaintext, with no rotation or expiry. This
// is only acceptable behind a trusted network boundary.
package auth

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Wildcard grants every tool
const Wildcard = "*"

var (
	// ErrUnauthenticated is returned for a missing or unknown key
	ErrUnauthenticated = errors.New("invalid or missing API key")
	// ErrForbidden is returned when an identity lacks a tool permission
	ErrForbidden = errors.New("insufficient permissions")
)

// Identity is the principal behind an API key
type Identity struct {
	Name        string
	Permissions []string
}

// Credential is one configured API key
type Credential struct {
	Key         string   `json:"key" yaml:"key" mapstructure:"key"`
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Permissions []string `json:"permissions" yaml:"permissions" mapstructure:"permissions"`
}

// CredentialFile is the on-disk YAML layout
type CredentialFile struct {
	Credentials []Credential `yaml:"credentials"`
}

// Store maps API keys to identities. It is immutable once built.
type Store struct {
	identities map[string]*Identity
}

// NewStore builds a store, rejecting empty and duplicate keys
func NewStore(creds []Credential) (*Store, error) {
	s := &Store{identities: make(map[string]*Identity, len(creds))}

	for i, cred := range creds {
		if cred.Key == "" {
			return nil, fmt.Errorf("credential %d: key is required", i)
		}
		if _, exists := s.identities[cred.Key]; exists {
			return nil, fmt.Errorf("credential %d (%s): duplicate key", i, cred.Name)
		}

		perms := make([]string, len(cred.Permissions))
		copy(perms, cred.Permissions)
		s.identities[cred.Key] = &Identity{Name: cred.Name, Permissions: perms}
	}

	return s, nil
}

// Resolve looks up the identity for a presented key
func (s *Store) Resolve(key string) (*Identity, error) {
	if key == "" {
		return nil, ErrUnauthenticated
	}
	identity, ok := s.identities[key]
	if !ok {
		return nil, ErrUnauthenticated
	}
	return identity, nil
}

// Len returns the number of configured keys
func (s *Store) Len() int {
	return len(s.identities)
}

// LoadFile reads credentials from a YAML file
func LoadFile(path string) ([]Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var file CredentialFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return file.Credentials, nil
}
