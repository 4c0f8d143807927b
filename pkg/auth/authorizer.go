package auth

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrInvalidScheme is returned when an Authorization header is present but
// is not a bearer token
var ErrInvalidScheme = errors.New("authorization header must use the Bearer scheme")

// Allows reports whether the identity may call toolName: its permissions
// contain the wildcard or the exact tool name.
func (id *Identity) Allows(toolName string) bool {
	if id == nil {
		return false
	}
	for _, perm := range id.Permissions {
		if perm == Wildcard || perm == toolName {
			return true
		}
	}
	return false
}

// Authorizer combines key resolution and the permission check
type Authorizer struct {
	store *Store
}

// NewAuthorizer creates an authorizer over store
func NewAuthorizer(store *Store) *Authorizer {
	return &Authorizer{store: store}
}

// Authenticate resolves a presented key
func (a *Authorizer) Authenticate(key string) (*Identity, error) {
	return a.store.Resolve(key)
}

// Authorize returns ErrForbidden unless identity may call toolName
func (a *Authorizer) Authorize(identity *Identity, toolName string) error {
	if !identity.Allows(toolName) {
		name := ""
		if identity != nil {
			name = identity.Name
		}
		log.Warn().
			Str("tool", toolName).
			Str("identity", name).
			Msg("Tool call blocked by permissions")
		return ErrForbidden
	}
	return nil
}

// ParseBearer extracts the key from an Authorization header value.
// An empty header yields ErrUnauthenticated; any other scheme yields
// ErrInvalidScheme.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrUnauthenticated
	}

	scheme, key, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidScheme
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrUnauthenticated
	}
	return key, nil
}
