package model

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Kind tags which backend a Todo belongs to.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// ErrEmptyText is returned when a todo text is empty after trimming.
var ErrEmptyText = errors.New("todo text is empty")

// LocalTodo is a todo kept only in the client-resident store.
type LocalTodo struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// RemoteTodo is a todo owned by an authenticated user and stored in the database.
type RemoteTodo struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Todo is what the presentation layer works with: one entity, two variants.
// Kind decides which of LocalID / RemoteID is meaningful.
type Todo struct {
	Kind      Kind
	LocalID   string
	RemoteID  int64
	Text      string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func FromLocal(t LocalTodo) Todo {
	return Todo{Kind: KindLocal, LocalID: t.ID, Text: t.Text, Completed: t.Completed}
}

func FromRemote(t RemoteTodo) Todo {
	return Todo{
		Kind:      KindRemote,
		RemoteID:  t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// Key identifies the item across renders, unique across both variants.
func (t Todo) Key() string {
	if t.Kind == KindLocal {
		return "local:" + t.LocalID
	}
	return "remote:" + strconv.FormatInt(t.RemoteID, 10)
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (p Patch) Empty() bool { return p.Text == nil && p.Completed == nil }

// Normalize trims Text and rejects it if nothing is left.
func (p Patch) Normalize() (Patch, error) {
	if p.Text == nil {
		return p, nil
	}
	s, err := NormalizeText(*p.Text)
	if err != nil {
		return p, err
	}
	p.Text = &s
	return p, nil
}

// NormalizeText trims surrounding whitespace and returns ErrEmptyText when nothing remains.
func NormalizeText(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyText
	}
	return s, nil
}

func LocalsToTodos(list []LocalTodo) []Todo {
	out := make([]Todo, len(list))
	for i := range list {
		out[i] = FromLocal(list[i])
	}
	return out
}

func RemotesToTodos(list []RemoteTodo) []Todo {
	out := make([]Todo, len(list))
	for i := range list {
		out[i] = FromRemote(list[i])
	}
	return out
}

// Stats counts done and pending items.
func Stats(items []Todo) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
