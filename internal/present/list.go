// Package present routes list intents to whichever backend the session made
// authoritative and keeps the per-item transient state the views need.
package present

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/reconcile"
	"github.com/idilsaglam/tada/internal/remote"
	"github.com/idilsaglam/tada/internal/session"
)

var (
	// ErrInvalidState means the intent does not match the session: a local
	// item while signed in, a remote item while signed out, or anything
	// before the session resolved. Nothing is mutated.
	ErrInvalidState = errors.New("todo does not belong to the active backend")
	// ErrBusy means a mutation for the same item or form is still in flight.
	ErrBusy = errors.New("mutation already in flight")
)

const (
	NoticeCheckingSession = "Checking session..."
	NoticeLoadingLocal    = "Loading local todos..."
	NoticeLoadingRemote   = "Loading todos..."
	NoticeEmpty           = "No todos yet. Add one above!"
)

// List is the presentation state for the todo list.
type List struct {
	ctrl   *reconcile.Controller
	svc    remote.Service
	logger *log.Logger

	mu      sync.Mutex
	remote  []model.RemoteTodo
	fetched bool
	busy    map[string]bool
	adding  bool
}

// NewList builds a List. svc may be nil when no server is configured; remote
// intents then fail.
func NewList(ctrl *reconcile.Controller, svc remote.Service, logger *log.Logger) *List {
	if logger == nil {
		logger = log.New(os.Stderr, "[present] ", log.LstdFlags)
	}
	return &List{ctrl: ctrl, svc: svc, logger: logger, busy: map[string]bool{}}
}

// Snapshot returns what can be rendered right now without blocking. fetched
// is false while the remote list has not been loaded yet.
func (l *List) Snapshot() (items []model.Todo, fetched bool) {
	switch l.ctrl.Active() {
	case reconcile.BackendLocal:
		return model.LocalsToTodos(l.ctrl.Local()), l.ctrl.Ready()
	case reconcile.BackendRemote:
		l.mu.Lock()
		defer l.mu.Unlock()
		return model.RemotesToTodos(l.remote), l.fetched
	default:
		return nil, false
	}
}

// Items returns the active backend's todos, fetching the remote list when
// the cached copy was invalidated.
func (l *List) Items(ctx context.Context) ([]model.Todo, error) {
	if l.ctrl.Active() == reconcile.BackendRemote {
		l.mu.Lock()
		fetched := l.fetched
		l.mu.Unlock()
		if !fetched {
			if err := l.Refresh(ctx); err != nil {
				return nil, err
			}
		}
	}
	items, _ := l.Snapshot()
	return items, nil
}

// Refresh re-reads the remote list. It is a no-op unless signed in.
func (l *List) Refresh(ctx context.Context) error {
	if l.ctrl.Active() != reconcile.BackendRemote {
		return nil
	}
	if l.svc == nil {
		return fmt.Errorf("no todo server configured")
	}
	list, err := l.svc.ListAll(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.remote = list
	l.fetched = true
	l.mu.Unlock()
	return nil
}

// Invalidate drops the cached remote list; the next Items call re-fetches.
func (l *List) Invalidate() {
	l.mu.Lock()
	l.fetched = false
	l.mu.Unlock()
}

// Notice is the placeholder line for the current state, "" when items should
// be rendered.
func (l *List) Notice(items []model.Todo) string {
	st := l.ctrl.Status()
	switch {
	case !st.Resolved():
		return NoticeCheckingSession
	case st.State == session.StateUnauthenticated && !l.ctrl.Ready():
		return NoticeLoadingLocal
	case st.State == session.StateAuthenticated && !l.fetchedRemote():
		return NoticeLoadingRemote
	case len(items) == 0:
		return NoticeEmpty
	}
	return ""
}

func (l *List) fetchedRemote() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetched
}

// Busy reports whether a mutation for t is in flight.
func (l *List) Busy(t model.Todo) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy[t.Key()]
}

// Adding reports whether a create is in flight.
func (l *List) Adding() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.adding
}

// Add creates a todo in the active backend.
func (l *List) Add(ctx context.Context, text string) error {
	text, err := model.NormalizeText(text)
	if err != nil {
		return err
	}
	switch l.ctrl.Active() {
	case reconcile.BackendLocal:
		_, err := l.ctrl.AddLocal(text)
		return err
	case reconcile.BackendRemote:
	default:
		l.logger.Printf("warning: add ignored while session is %s", l.ctrl.Status().State)
		return ErrInvalidState
	}

	l.mu.Lock()
	if l.adding {
		l.mu.Unlock()
		return ErrBusy
	}
	l.adding = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.adding = false
		l.mu.Unlock()
	}()

	if l.svc == nil {
		return fmt.Errorf("no todo server configured")
	}
	if err := l.svc.Create(ctx, text); err != nil {
		return err
	}
	return l.afterWrite(ctx)
}

// Toggle flips the completed flag of t.
func (l *List) Toggle(ctx context.Context, t model.Todo) error {
	done := !t.Completed
	return l.update(ctx, "toggle", t, model.Patch{Completed: &done})
}

// SaveText replaces the text of t.
func (l *List) SaveText(ctx context.Context, t model.Todo, text string) error {
	text, err := model.NormalizeText(text)
	if err != nil {
		return err
	}
	return l.update(ctx, "edit", t, model.Patch{Text: &text})
}

func (l *List) update(ctx context.Context, op string, t model.Todo, p model.Patch) error {
	return l.dispatch(ctx, op, t,
		func() error { return l.ctrl.UpdateLocal(t.LocalID, p) },
		func() error { return l.svc.Update(ctx, t.RemoteID, p) },
	)
}

// Delete removes t from its backend.
func (l *List) Delete(ctx context.Context, t model.Todo) error {
	return l.dispatch(ctx, "delete", t,
		func() error { return l.ctrl.DeleteLocal(t.LocalID) },
		func() error { return l.svc.Delete(ctx, t.RemoteID) },
	)
}

// dispatch checks that t's kind matches the session and runs the matching
// mutation, holding t's busy flag for remote calls.
func (l *List) dispatch(ctx context.Context, op string, t model.Todo, local, remoteFn func() error) error {
	st := l.ctrl.Status()
	switch {
	case st.State == session.StateUnauthenticated && t.Kind == model.KindLocal:
		return local()
	case st.State == session.StateAuthenticated && t.Kind == model.KindRemote:
	default:
		l.logger.Printf("warning: %s of %s todo %s ignored while session is %s", op, t.Kind, t.Key(), st.State)
		return ErrInvalidState
	}

	key := t.Key()
	l.mu.Lock()
	if l.busy[key] {
		l.mu.Unlock()
		return ErrBusy
	}
	l.busy[key] = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.busy, key)
		l.mu.Unlock()
	}()

	if l.svc == nil {
		return fmt.Errorf("no todo server configured")
	}
	if err := remoteFn(); err != nil {
		return err
	}
	return l.afterWrite(ctx)
}

// afterWrite invalidates and re-fetches the remote list. The write already
// succeeded, so a failed re-fetch is only logged; the list stays invalidated
// and the next Items call fetches again.
func (l *List) afterWrite(ctx context.Context) error {
	l.Invalidate()
	if err := l.Refresh(ctx); err != nil {
		l.logger.Printf("reload todos: %v", err)
	}
	return nil
}
