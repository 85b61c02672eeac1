// Package jsonstore persists the local todo list as one JSON value in a kv.Store.
package jsonstore

import (
	"encoding/json"
	"log"
	"os"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store/kv"
)

// Key is the fixed key the list is stored under.
const Key = "localTodos"

// Adapter loads and saves the local list. It never fails the caller:
// unreadable data is reset and write errors are only logged.
type Adapter struct {
	store  kv.Store
	logger *log.Logger
}

// New returns an Adapter. A nil store makes Load return nothing and Save a no-op.
// A nil logger logs to stderr.
func New(store kv.Store, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.New(os.Stderr, "[jsonstore] ", log.LstdFlags)
	}
	return &Adapter{store: store, logger: logger}
}

func (a *Adapter) Load() []model.LocalTodo {
	if a.store == nil {
		return []model.LocalTodo{}
	}
	raw, ok, err := a.store.Get(Key)
	if err != nil {
		a.logger.Printf("failed to read local todos: %v", err)
		return []model.LocalTodo{}
	}
	if !ok {
		return []model.LocalTodo{}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil || elems == nil {
		a.logger.Printf("failed to parse local todos, resetting: %v", err)
		a.remove()
		return []model.LocalTodo{}
	}

	items := make([]model.LocalTodo, 0, len(elems))
	for _, e := range elems {
		if it, ok := decodeItem(e); ok {
			items = append(items, it)
		}
	}
	if len(elems) > 0 && len(items) == 0 {
		// nothing recoverable: same as a corrupt value
		a.logger.Printf("no valid local todos among %d stored elements, resetting", len(elems))
		a.remove()
	}
	return items
}

func (a *Adapter) Save(items []model.LocalTodo) {
	if a.store == nil {
		return
	}
	if items == nil {
		items = []model.LocalTodo{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		a.logger.Printf("failed to encode local todos: %v", err)
		return
	}
	if err := a.store.Set(Key, string(b)); err != nil {
		a.logger.Printf("failed to save local todos: %v", err)
	}
}

func (a *Adapter) remove() {
	if err := a.store.Remove(Key); err != nil {
		a.logger.Printf("failed to clear local todos: %v", err)
	}
}

// decodeItem accepts only {id: string, text: string, completed: bool}.
func decodeItem(raw json.RawMessage) (model.LocalTodo, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return model.LocalTodo{}, false
	}
	id, ok := fields["id"].(string)
	if !ok {
		return model.LocalTodo{}, false
	}
	text, ok := fields["text"].(string)
	if !ok {
		return model.LocalTodo{}, false
	}
	completed, ok := fields["completed"].(bool)
	if !ok {
		return model.LocalTodo{}, false
	}
	return model.LocalTodo{ID: id, Text: text, Completed: completed}, true
}
