package tui

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/present"
	"github.com/idilsaglam/tada/internal/reconcile"
	"github.com/idilsaglam/tada/internal/session"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/kv"
)

type failingRemote struct{ err error }

func (f failingRemote) ListAll(context.Context) ([]model.RemoteTodo, error) {
	return []model.RemoteTodo{{ID: 1, Text: "remote"}}, nil
}
func (f failingRemote) Create(context.Context, string) error             { return f.err }
func (f failingRemote) Update(context.Context, int64, model.Patch) error { return f.err }
func (f failingRemote) Delete(context.Context, int64) error              { return f.err }

func newLocal(t *testing.T) (Model, *present.List) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	ctrl := reconcile.New(jsonstore.New(kv.NewMemory(), logger), logger)
	ctrl.Apply(session.Unauthenticated())
	l := present.NewList(ctrl, nil, logger)
	return newModel(l), l
}

// newModel disables cursor blinking so commands return immediately.
func newModel(l *present.List) Model {
	m := New(context.Background(), l)
	m.ti.Cursor.SetMode(cursor.CursorStatic)
	return m
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

// send feeds msg through Update and runs the resulting command chain,
// skipping batches and blink ticks from the text input.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	return deliver(t, m, cmd())
}

func deliver(t *testing.T, m Model, msg tea.Msg) Model {
	switch out := msg.(type) {
	case loadedMsg, mutatedMsg, savedMsg:
		return send(t, m, out)
	case tea.BatchMsg:
		for _, c := range out {
			if c != nil {
				m = deliver(t, m, c())
			}
		}
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	for _, r := range s {
		m = send(t, m, keys(string(r)))
	}
	return m
}

func texts(l *present.List) []string {
	items, _ := l.Snapshot()
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestAddToggleDelete(t *testing.T) {
	m, l := newLocal(t)

	m = send(t, m, keys("a"))
	require.True(t, m.adding)
	m = typeText(t, m, "milk")
	m = send(t, m, enter)
	assert.False(t, m.adding)
	assert.Equal(t, []string{"milk"}, texts(l))

	m = send(t, m, space)
	items, _ := l.Snapshot()
	assert.True(t, items[0].Completed)

	m = send(t, m, keys("d"))
	require.NotNil(t, m.confirm)
	m = send(t, m, keys("n"))
	assert.Nil(t, m.confirm)
	assert.Len(t, texts(l), 1)

	m = send(t, m, keys("d"))
	m = send(t, m, keys("y"))
	assert.Empty(t, texts(l))
	assert.Contains(t, m.View(), present.NoticeEmpty)
}

func TestAddRejectsBlank(t *testing.T) {
	m, l := newLocal(t)
	m = send(t, m, keys("a"))
	m = typeText(t, m, "   ")
	m = send(t, m, enter)
	assert.True(t, m.adding)
	assert.NotEmpty(t, m.addErr)
	m = send(t, m, esc)
	assert.False(t, m.adding)
	assert.Empty(t, texts(l))
}

func TestEditSaveCancelAndBlur(t *testing.T) {
	m, l := newLocal(t)
	for _, s := range []string{"a", "b"} {
		m = send(t, m, keys("a"))
		m = typeText(t, m, s)
		m = send(t, m, enter)
	}
	require.Equal(t, []string{"b", "a"}, texts(l))

	m = send(t, m, keys("e"))
	require.True(t, m.editing())
	m = typeText(t, m, "2")
	m = send(t, m, esc)
	assert.False(t, m.editing())
	assert.Equal(t, []string{"b", "a"}, texts(l))

	m = send(t, m, keys("e"))
	m = typeText(t, m, "2")
	m = send(t, m, enter)
	assert.Equal(t, []string{"b2", "a"}, texts(l))

	// moving the cursor while editing saves
	m = send(t, m, keys("e"))
	m = typeText(t, m, "!")
	m = send(t, m, down)
	assert.False(t, m.editing())
	assert.Equal(t, []string{"b2!", "a"}, texts(l))
}

func TestRemoteFailureShowsAlert(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	ctrl := reconcile.New(jsonstore.New(kv.NewMemory(), logger), logger)
	ctrl.Apply(session.Authenticated(session.User{ID: "1", Name: "alice"}))
	l := present.NewList(ctrl, failingRemote{err: errors.New("authorization required")}, logger)
	m := newModel(l)

	m = send(t, m, loadedMsg{err: func() error { _, err := l.Items(context.Background()); return err }()})
	require.Equal(t, []string{"remote"}, texts(l))

	m = send(t, m, space)
	assert.Contains(t, m.alert, "toggle failed: authorization required")
	assert.Contains(t, m.View(), "toggle failed")

	m = send(t, m, keys("x"))
	assert.Empty(t, m.alert)
	assert.False(t, l.Busy(model.Todo{Kind: model.KindRemote, RemoteID: 1}))
}
