// Package remote is the client side of the todo RPC surface used while
// signed in.
package remote

import (
	"context"
	"errors"

	"github.com/idilsaglam/tada/internal/model"
)

var (
	ErrUnauthenticated = errors.New("authorization required")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("invalid input")
)

// Service is the remote todo contract. Every call is scoped to the
// authenticated caller.
type Service interface {
	ListAll(ctx context.Context) ([]model.RemoteTodo, error)
	Create(ctx context.Context, text string) error
	Update(ctx context.Context, id int64, p model.Patch) error
	Delete(ctx context.Context, id int64) error
}
