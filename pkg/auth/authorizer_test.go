package auth

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"bearer key", "Bearer k1", "k1", nil},
		{"case insensitive scheme", "bearer k1", "k1", nil},
		{"surrounding whitespace", "  Bearer   k1  ", "k1", nil},
		{"empty header", "", "", ErrUnauthenticated},
		{"scheme without key", "Bearer", "", ErrUnauthenticated},
		{"scheme with blank key", "Bearer   ", "", ErrUnauthenticated},
		{"basic scheme", "Basic dXNlcjpwYXNz", "", ErrInvalidScheme},
		{"bare key", "k1", "", ErrInvalidScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseBearer(tt.header)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestAllows(t *testing.T) {
	alice := &Identity{Name: "alice", Permissions: []string{"hello"}}
	admin := &Identity{Name: "admin", Permissions: []string{Wildcard}}
	none := &Identity{Name: "none"}

	assert.True(t, alice.Allows("hello"))
	assert.False(t, alice.Allows("notion"))
	assert.False(t, alice.Allows("Hello"))
	assert.True(t, admin.Allows("notion"))
	assert.True(t, admin.Allows("anything"))
	assert.False(t, none.Allows("hello"))

	var nilID *Identity
	assert.False(t, nilID.Allows("hello"))
}

func TestAuthorizer(t *testing.T) {
	store, err := NewStore([]Credential{
		{Key: "k1", Name: "alice", Permissions: []string{"hello"}},
		{Key: "k2", Name: "admin", Permissions: []string{Wildcard}},
	})
	require.NoError(t, err)
	a := NewAuthorizer(store)

	t.Run("authenticate", func(t *testing.T) {
		id, err := a.Authenticate("k2")
		require.NoError(t, err)
		assert.Equal(t, "admin", id.Name)

		_, err = a.Authenticate("bad")
		assert.True(t, errors.Is(err, ErrUnauthenticated))
	})

	t.Run("authorize", func(t *testing.T) {
		alice, err := a.Authenticate("k1")
		require.NoError(t, err)

		assert.NoError(t, a.Authorize(alice, "hello"))
		assert.True(t, errors.Is(a.Authorize(alice, "notion"), ErrForbidden))
		assert.True(t, errors.Is(a.Authorize(nil, "hello"), ErrForbidden))
	})
}

func TestPropertyAuthorizeMatchesPermissions(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	genTool := gen.OneConstOf("hello", "run_n8n", "notion", "other")
	genPerm := gen.OneConstOf("hello", "run_n8n", "notion", "other", Wildcard)

	properties.Property("Authorize succeeds iff permissions hold the tool or the wildcard", prop.ForAll(
		func(perms []string, toolName string) bool {
			store, err := NewStore([]Credential{{Key: "k", Name: "gen", Permissions: perms}})
			if err != nil {
				return false
			}
			a := NewAuthorizer(store)

			id, err := a.Authenticate("k")
			if err != nil {
				return false
			}

			want := false
			for _, p := range perms {
				if p == toolName || p == Wildcard {
					want = true
				}
			}
			return (a.Authorize(id, toolName) == nil) == want
		},
		gen.SliceOf(genPerm),
		genTool,
	))

	properties.TestingRun(t)
}
