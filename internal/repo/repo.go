// Package repo persists users and their todos in Postgres or SQLite.
package repo

import (
	"context"
	"errors"

	"github.com/idilsaglam/tada/internal/model"
)

var (
	// ErrNoRows means the row does not exist or is not owned by the caller.
	ErrNoRows = errors.New("no rows")
	// ErrDuplicate is a unique constraint violation.
	ErrDuplicate = errors.New("duplicate")
)

// TodoRepo stores remote todos. Every query is scoped to the owner.
type TodoRepo interface {
	Create(ctx context.Context, owner, text string) (model.RemoteTodo, error)
	List(ctx context.Context, owner string) ([]model.RemoteTodo, error)
	Update(ctx context.Context, owner string, id int64, p model.Patch) (model.RemoteTodo, error)
	Delete(ctx context.Context, owner string, id int64) error
}

// UserRepo provides user persistence.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	Create(ctx context.Context, username, passwordHash string) (model.User, error)
}
