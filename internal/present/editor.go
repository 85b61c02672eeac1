package present

import (
	"context"
	"strings"

	"github.com/idilsaglam/tada/internal/model"
)

// EditState is where an item is in its edit flow.
type EditState int

const (
	Viewing EditState = iota
	Editing
	Saving
)

func (s EditState) String() string {
	switch s {
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return "viewing"
	}
}

// Editor is the edit flow of a single item:
// viewing -> editing -> (saving -> viewing | cancel -> viewing).
type Editor struct {
	item  model.Todo
	state EditState
	draft string
}

func NewEditor(item model.Todo) *Editor {
	return &Editor{item: item, draft: item.Text}
}

func (e *Editor) Item() model.Todo { return e.item }
func (e *Editor) State() EditState { return e.state }
func (e *Editor) Draft() string    { return e.draft }

// Begin enters editing with the current text as draft.
func (e *Editor) Begin() {
	if e.state != Viewing {
		return
	}
	e.state = Editing
	e.draft = e.item.Text
}

func (e *Editor) SetDraft(s string) {
	if e.state == Editing {
		e.draft = s
	}
}

// Cancel drops the draft without saving.
func (e *Editor) Cancel() {
	if e.state != Editing {
		return
	}
	e.state = Viewing
	e.draft = e.item.Text
}

// Submit ends editing. If the draft is blank or unchanged it returns to
// viewing with ok=false; otherwise it moves to saving and returns the text
// to send. Losing focus submits too.
func (e *Editor) Submit() (text string, ok bool) {
	if e.state != Editing {
		return "", false
	}
	text = strings.TrimSpace(e.draft)
	if text == "" || text == e.item.Text {
		e.state = Viewing
		e.draft = e.item.Text
		return "", false
	}
	e.state = Saving
	return text, true
}

// Finish records the outcome of a Submit. On failure the draft reverts.
func (e *Editor) Finish(text string, err error) {
	if e.state != Saving {
		return
	}
	e.state = Viewing
	if err == nil {
		e.item.Text = text
	}
	e.draft = e.item.Text
}

// Commit is Submit, SaveText and Finish in one blocking call. It reports
// whether a mutation was dispatched.
func (e *Editor) Commit(ctx context.Context, l *List) (bool, error) {
	text, ok := e.Submit()
	if !ok {
		return false, nil
	}
	err := l.SaveText(ctx, e.item, text)
	e.Finish(text, err)
	return true, err
}
