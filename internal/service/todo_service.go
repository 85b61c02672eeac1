package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/idilsaglam/tada/internal/cache"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/repo"

	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
)

type TodoService struct {
	repo   repo.TodoRepo
	cache  *cache.TodoCache
	sf     singleflight.Group
	logger *log.Logger
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache, logger *log.Logger) *TodoService {
	if logger == nil {
		logger = log.Default()
	}
	return &TodoService{repo: r, cache: c, logger: logger}
}

// ListAll returns the owner's todos, newest first. Loads are shared per
// cache generation, so a caller arriving after a write never joins a load
// that started before it.
func (s *TodoService) ListAll(ctx context.Context, owner string) ([]model.RemoteTodo, error) {
	if s.cache == nil {
		return s.repo.List(ctx, owner)
	}
	gen, err := s.cache.Generation(ctx, owner)
	if err != nil {
		s.logger.Printf("cache generation %s: %v", owner, err)
		return s.repo.List(ctx, owner)
	}
	key := "list:" + owner + ":" + strconv.FormatInt(gen, 10)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx, owner); err == nil && list != nil {
			return list, nil
		} else if err != nil {
			s.logger.Printf("cache get %s: %v", owner, err)
		}
		list, err := s.repo.List(ctx, owner)
		if err != nil {
			return nil, err
		}
		if _, err := s.cache.SetList(ctx, owner, gen, list); err != nil {
			s.logger.Printf("cache set %s: %v", owner, err)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.RemoteTodo), nil
}

func (s *TodoService) Create(ctx context.Context, owner, text string) (model.RemoteTodo, error) {
	text, err := model.NormalizeText(text)
	if err != nil {
		return model.RemoteTodo{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	t, err := s.repo.Create(ctx, owner, text)
	if err != nil {
		return model.RemoteTodo{}, err
	}
	s.invalidateCache(ctx, owner)
	return t, nil
}

// Update applies p to the owner's todo. An empty patch only refreshes updatedAt.
func (s *TodoService) Update(ctx context.Context, owner string, id int64, p model.Patch) (model.RemoteTodo, error) {
	p, err := p.Normalize()
	if err != nil {
		return model.RemoteTodo{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	t, err := s.repo.Update(ctx, owner, id, p)
	if err != nil {
		if errors.Is(err, repo.ErrNoRows) {
			return model.RemoteTodo{}, ErrNotFound
		}
		return model.RemoteTodo{}, err
	}
	s.invalidateCache(ctx, owner)
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, owner string, id int64) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		if errors.Is(err, repo.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx, owner)
	return nil
}

func (s *TodoService) invalidateCache(ctx context.Context, owner string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, owner); err != nil {
		s.logger.Printf("cache invalidate %s: %v", owner, err)
	}
}
