package session_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/session"
)

type fakeChecker struct {
	user  session.User
	err   error
	token string
}

func (f *fakeChecker) Session(_ context.Context, token string) (session.User, error) {
	f.token = token
	return f.user, f.err
}

func TestCredentials(t *testing.T) {
	t.Setenv("TADA_TOKEN", "")
	dir := filepath.Join(t.TempDir(), ".tada")
	c := session.NewCredentials(dir)

	ti, err := c.Get()
	require.NoError(t, err)
	assert.Nil(t, ti)

	require.Error(t, c.Set("   ", nil))
	require.NoError(t, c.Set("Bearer abc.def", nil))

	ti, err = c.Get()
	require.NoError(t, err)
	require.NotNil(t, ti)
	assert.Equal(t, "abc.def", ti.Token)
	assert.Equal(t, "file", ti.Source)

	info, err := os.Stat(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, c.Delete())
	require.NoError(t, c.Delete())
	ti, err = c.Get()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

func TestCredentialsEnvOverride(t *testing.T) {
	t.Setenv("TADA_TOKEN", "bearer from-env")
	c := session.NewCredentials(t.TempDir())

	ti, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, "env", ti.Source)
}

func TestTokenResolver(t *testing.T) {
	t.Setenv("TADA_TOKEN", "")
	logger := log.New(&bytes.Buffer{}, "", 0)

	t.Run("no token", func(t *testing.T) {
		r := session.NewTokenResolver(session.NewCredentials(t.TempDir()), &fakeChecker{}, logger)
		assert.Equal(t, session.Unauthenticated(), r.Resolve(context.Background()))
	})

	t.Run("valid token", func(t *testing.T) {
		c := session.NewCredentials(t.TempDir())
		require.NoError(t, c.Set("tok", nil))
		checker := &fakeChecker{user: session.User{ID: "42", Name: "ada"}}

		st := session.NewTokenResolver(c, checker, logger).Resolve(context.Background())
		assert.True(t, st.IsAuthenticated())
		assert.Equal(t, "42", st.User.ID)
		assert.Equal(t, "tok", checker.token)
	})

	t.Run("rejected token", func(t *testing.T) {
		c := session.NewCredentials(t.TempDir())
		require.NoError(t, c.Set("tok", nil))
		r := session.NewTokenResolver(c, &fakeChecker{err: session.ErrNoSession}, logger)
		assert.Equal(t, session.StateUnauthenticated, r.Resolve(context.Background()).State)
	})

	t.Run("server unreachable", func(t *testing.T) {
		var buf bytes.Buffer
		c := session.NewCredentials(t.TempDir())
		require.NoError(t, c.Set("tok", nil))
		r := session.NewTokenResolver(c, &fakeChecker{err: errors.New("dial tcp: refused")}, log.New(&buf, "", 0))
		assert.Equal(t, session.StateUnauthenticated, r.Resolve(context.Background()).State)
		assert.Contains(t, buf.String(), "session check failed")
	})
}

func TestStatus(t *testing.T) {
	assert.False(t, session.Unresolved().Resolved())
	assert.True(t, session.Unauthenticated().Resolved())
	assert.Equal(t, "authenticated", session.Authenticated(session.User{ID: "1"}).State.String())
	assert.Equal(t, session.Unauthenticated(), session.Static(session.Unauthenticated()).Resolve(context.Background()))
}
