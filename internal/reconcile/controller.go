// Package reconcile decides which todo backend is authoritative for the
// current session and owns the in-memory local list while signed out.
package reconcile

import (
	"errors"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/session"
)

// Backend is the store currently backing the list.
type Backend int

const (
	BackendNone Backend = iota
	BackendLocal
	BackendRemote
)

func (b Backend) String() string {
	switch b {
	case BackendLocal:
		return "local"
	case BackendRemote:
		return "remote"
	default:
		return "none"
	}
}

// ErrInactive is returned by local mutations while the local backend is not active.
var ErrInactive = errors.New("local store is not active")

// LocalStore is the persistence the controller loads from and saves to.
type LocalStore interface {
	Load() []model.LocalTodo
	Save([]model.LocalTodo)
}

type noStore struct{}

func (noStore) Load() []model.LocalTodo { return []model.LocalTodo{} }
func (noStore) Save([]model.LocalTodo)  {}

type Controller struct {
	mu     sync.Mutex
	store  LocalStore
	logger *log.Logger
	newID  func() string

	status session.Status
	local  []model.LocalTodo
	ready  bool
}

type Option func(*Controller)

// WithIDGenerator replaces uuid.NewString for local ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// New returns a Controller in the unresolved state. A nil store keeps the
// local list in memory only: it loads empty and saves nowhere.
func New(store LocalStore, logger *log.Logger, opts ...Option) *Controller {
	if store == nil {
		store = noStore{}
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[reconcile] ", log.LstdFlags)
	}
	c := &Controller{
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
		status: session.Unresolved(),
		local:  []model.LocalTodo{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply moves the controller to the given session status.
// Once resolved, the session never goes back to unresolved.
func (c *Controller) Apply(st session.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch st.State {
	case session.StateUnresolved:
		if c.status.Resolved() {
			c.logger.Printf("ignoring transition from %s back to unresolved", c.status.State)
		}
		return
	case session.StateUnauthenticated:
		if c.status.State == session.StateUnauthenticated {
			return
		}
		c.status = st
		c.local = c.store.Load()
		c.ready = true
	case session.StateAuthenticated:
		// local todos are dropped, not migrated; the stored copy stays untouched
		c.status = st
		c.local = []model.LocalTodo{}
		c.ready = true
	}
}

func (c *Controller) Status() session.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) Active() Backend {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.status.State {
	case session.StateAuthenticated:
		return BackendRemote
	case session.StateUnauthenticated:
		return BackendLocal
	default:
		return BackendNone
	}
}

// Ready reports whether the local state has been settled for the current session.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Local returns a copy of the in-memory local list, newest first.
func (c *Controller) Local() []model.LocalTodo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.LocalTodo, len(c.local))
	copy(out, c.local)
	return out
}

// AddLocal prepends a new todo and returns it.
func (c *Controller) AddLocal(text string) (model.LocalTodo, error) {
	text, err := model.NormalizeText(text)
	if err != nil {
		return model.LocalTodo{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkActive("add"); err != nil {
		return model.LocalTodo{}, err
	}
	t := model.LocalTodo{ID: c.newID(), Text: text}
	next := make([]model.LocalTodo, 0, len(c.local)+1)
	next = append(next, t)
	next = append(next, c.local...)
	c.commit(next)
	return t, nil
}

// UpdateLocal applies p to the todo with the given id. Unknown ids are ignored.
func (c *Controller) UpdateLocal(id string, p model.Patch) error {
	p, err := p.Normalize()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkActive("update"); err != nil {
		return err
	}
	next := make([]model.LocalTodo, len(c.local))
	copy(next, c.local)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		if p.Text != nil {
			next[i].Text = *p.Text
		}
		if p.Completed != nil {
			next[i].Completed = *p.Completed
		}
	}
	c.commit(next)
	return nil
}

// DeleteLocal removes the todo with the given id. Unknown ids are ignored.
func (c *Controller) DeleteLocal(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkActive("delete"); err != nil {
		return err
	}
	next := make([]model.LocalTodo, 0, len(c.local))
	for _, t := range c.local {
		if t.ID != id {
			next = append(next, t)
		}
	}
	c.commit(next)
	return nil
}

func (c *Controller) checkActive(op string) error {
	if c.status.State != session.StateUnauthenticated {
		c.logger.Printf("warning: local %s ignored while session is %s", op, c.status.State)
		return ErrInactive
	}
	return nil
}

// commit replaces the list and re-serializes all of it. Save never fails the caller.
func (c *Controller) commit(next []model.LocalTodo) {
	c.local = next
	c.store.Save(next)
}
