package service_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/idilsaglam/tada/internal/migrations"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/repo"
	"github.com/idilsaglam/tada/internal/service"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+t.TempDir()+"/svc.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(db, migrations.SQLite))
	return db
}

func ptr[T any](v T) *T { return &v }

func TestTodoService(t *testing.T) {
	ctx := context.Background()
	svc := service.NewTodoService(repo.NewSQLiteTodoRepo(openDB(t)), nil, nil)

	t.Run("create trims and rejects blank", func(t *testing.T) {
		got, err := svc.Create(ctx, "1", "  milk  ")
		require.NoError(t, err)
		assert.Equal(t, "milk", got.Text)
		assert.False(t, got.Completed)

		_, err = svc.Create(ctx, "1", "   ")
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("update", func(t *testing.T) {
		list, err := svc.ListAll(ctx, "1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		id := list[0].ID

		got, err := svc.Update(ctx, "1", id, model.Patch{Completed: ptr(true)})
		require.NoError(t, err)
		assert.True(t, got.Completed)

		_, err = svc.Update(ctx, "1", id, model.Patch{Text: ptr(" ")})
		assert.ErrorIs(t, err, service.ErrValidation)

		got, err = svc.Update(ctx, "1", id, model.Patch{})
		require.NoError(t, err, "empty patch only touches updatedAt")
		assert.Equal(t, "milk", got.Text)

		_, err = svc.Update(ctx, "2", id, model.Patch{Completed: ptr(false)})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		list, err := svc.ListAll(ctx, "1")
		require.NoError(t, err)
		id := list[0].ID

		assert.ErrorIs(t, svc.Delete(ctx, "2", id), service.ErrNotFound)
		require.NoError(t, svc.Delete(ctx, "1", id))
		assert.ErrorIs(t, svc.Delete(ctx, "1", id), service.ErrNotFound)
	})
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	svc := service.NewUserService(repo.NewSQLiteUserRepo(openDB(t))).WithCost(bcrypt.MinCost)

	u, err := svc.Register(ctx, " alice ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret", u.PasswordHash)

	_, err = svc.Register(ctx, "alice", "x")
	assert.ErrorIs(t, err, service.ErrUsernameTaken)

	_, err = svc.Register(ctx, "", "x")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	got, err := svc.ValidateCredentials(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.ValidateCredentials(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.ValidateCredentials(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	got, err = svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
