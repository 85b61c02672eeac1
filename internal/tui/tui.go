// Package tui is the interactive todo list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/present"
	"github.com/idilsaglam/tada/internal/ui"
)

// listItem adapts model.Todo to bubbles/list.Item
type listItem struct {
	todo model.Todo
	busy bool
}

func (i listItem) Title() string       { return i.todo.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	t := ui.Current()

	box := ui.MutedStyle.Render(t.BoxUnchecked)
	text := it.todo.Text
	switch {
	case it.busy:
		box = ui.PendingStyle.Render(t.BoxBusy)
		text = ui.MutedStyle.Render(text)
	case it.todo.Completed:
		box = ui.SuccessStyle.Render(t.BoxChecked)
		text = ui.DoneStyle.Render(text)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = ui.SelectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

// messages produced by commands
type (
	loadedMsg  struct{ err error }
	mutatedMsg struct {
		op  string
		err error
	}
	savedMsg struct {
		editor *present.Editor
		text   string
		err    error
	}
)

type Model struct {
	ctx  context.Context
	todo *present.List
	list list.Model
	ti   textinput.Model

	adding bool
	addErr string

	editor *present.Editor // set while editing or saving

	confirm *model.Todo // pending delete confirmation
	alert   string

	width, height int
}

var (
	addBind     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind    = key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit"))
	toggleBind  = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
)

// New builds the TUI model over l. ctx bounds every backend call.
func New(ctx context.Context, l *present.List) Model {
	lm := list.New(nil, itemDelegate{}, 0, 0)
	lm.Title = "Todos"
	lm.SetShowHelp(true)
	lm.SetShowPagination(true)
	lm.SetShowStatusBar(true)
	lm.SetFilteringEnabled(true)
	lm.Styles.Title = ui.TitleStyle
	lm.Styles.HelpStyle = ui.HelpStyle
	lm.Styles.PaginationStyle = ui.HelpStyle
	lm.FilterInput.Prompt = "/ "
	lm.SetStatusBarItemName("item", "items")
	lm.KeyMap.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))

	extra := func() []key.Binding {
		return []key.Binding{toggleBind, addBind, editBind, deleteBind, refreshBind}
	}
	lm.AdditionalShortHelpKeys = extra
	lm.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{ctx: ctx, todo: l, list: lm, ti: ti, width: 80, height: 24}
	m.sync()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, l *present.List) error {
	_, err := tea.NewProgram(New(ctx, l), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		_, err := m.todo.Items(m.ctx)
		return loadedMsg{err: err}
	}
}

// sync copies the presentation state into the bubbles list.
func (m *Model) sync() {
	items, _ := m.todo.Snapshot()
	li := make([]list.Item, len(items))
	for i, t := range items {
		li[i] = listItem{todo: t, busy: m.todo.Busy(t)}
	}
	m.list.SetItems(li)

	d, p := model.Stats(items)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		ui.TitleStyle.Render("Todos"),
		ui.SuccessStyle.Render(ui.Current().SymDone), d,
		ui.PendingStyle.Render(ui.Current().SymUnchecked), p,
		ui.AccentStyle.Render("Total"), len(items),
	)
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

// mutate runs fn off the update loop and reports back with mutatedMsg.
func (m *Model) mutate(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return mutatedMsg{op: op, err: fn(ctx)} }
}

func (m *Model) fail(op string, err error) {
	switch {
	case err == nil, errors.Is(err, present.ErrBusy), errors.Is(err, present.ErrInvalidState):
		// busy controls are disabled and invalid-state intents are only logged
		return
	}
	m.alert = fmt.Sprintf("%s failed: %v", op, err)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		return m, nil
	case loadedMsg:
		m.fail("load", x.err)
		m.sync()
		return m, nil
	case mutatedMsg:
		m.fail(x.op, x.err)
		m.sync()
		return m, nil
	case savedMsg:
		x.editor.Finish(x.text, x.err)
		m.fail("edit", x.err)
		m.sync()
		return m, nil
	}

	k, isKey := msg.(tea.KeyMsg)
	if isKey && k.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.alert != "" {
		if isKey {
			m.alert = ""
		}
		return m, nil
	}

	if m.confirm != nil {
		if !isKey {
			return m, nil
		}
		t := *m.confirm
		m.confirm = nil
		if k.String() == "y" {
			return m, m.mutate("delete", func(ctx context.Context) error { return m.todo.Delete(ctx, t) })
		}
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}
	if m.editor != nil && m.editor.State() == present.Editing {
		return m.updateEditing(msg)
	}

	if !isKey || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch k.String() {
	case " ":
		if t, ok := m.selected(); ok && !m.todo.Busy(t) {
			return m, m.mutate("toggle", func(ctx context.Context) error { return m.todo.Toggle(ctx, t) })
		}
		return m, nil
	case "a":
		if m.todo.Adding() {
			return m, nil
		}
		m.adding = true
		m.addErr = ""
		m.ti.SetValue("")
		m.ti.Placeholder = "What needs to be done?"
		cmd := m.ti.Focus()
		return m, cmd
	case "e", "enter":
		t, ok := m.selected()
		if !ok || m.todo.Busy(t) {
			return m, nil
		}
		m.editor = present.NewEditor(t)
		m.editor.Begin()
		m.ti.SetValue(m.editor.Draft())
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit todo..."
		cmd := m.ti.Focus()
		return m, cmd
	case "d":
		if t, ok := m.selected(); ok && !m.todo.Busy(t) {
			m.confirm = &t
		}
		return m, nil
	case "r":
		m.todo.Invalidate()
		return m, m.Init()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			text := strings.TrimSpace(m.ti.Value())
			if text == "" {
				m.addErr = "Text cannot be empty"
				return m, nil
			}
			m.adding = false
			m.ti.SetValue("")
			m.ti.Blur()
			return m, m.mutate("add", func(ctx context.Context) error { return m.todo.Add(ctx, text) })
		case "esc":
			m.adding = false
			m.ti.SetValue("")
			m.ti.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.editor.Cancel()
			m.editor = nil
			m.ti.Blur()
			return m, nil
		case "enter":
			cmd := m.submitEdit()
			return m, cmd
		case "up", "down", "tab", "shift+tab":
			// moving away blurs the field, which saves
			cmd := m.submitEdit()
			var move tea.Cmd
			m.list, move = m.list.Update(msg)
			return m, tea.Batch(cmd, move)
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	m.editor.SetDraft(m.ti.Value())
	return m, cmd
}

func (m *Model) submitEdit() tea.Cmd {
	m.ti.Blur()
	ed := m.editor
	m.editor = nil
	text, ok := ed.Submit()
	if !ok {
		return nil
	}
	l, ctx := m.todo, m.ctx
	return func() tea.Msg {
		return savedMsg{editor: ed, text: text, err: l.SaveText(ctx, ed.Item(), text)}
	}
}

func (m Model) View() string {
	w, h := m.width, m.height
	listHeight := h - 4
	if m.adding || m.editing() {
		listHeight = h - 6
	}
	m.list.SetSize(w-4, listHeight)
	if m.list.FilterState() == list.Unfiltered {
		// picks up busy flags set since the last message
		m.sync()
	}

	items, _ := m.todo.Snapshot()
	content := m.list.View()
	if notice := m.todo.Notice(items); notice != "" && !m.adding {
		content = m.list.Title + "\n\n" + ui.MutedStyle.Render(notice)
	}

	switch {
	case m.adding, m.editing():
		title := "Add todo"
		if m.editing() {
			title = "Edit todo"
		}
		if m.addErr != "" && m.adding {
			title += ": " + ui.ErrorStyle.Render(m.addErr)
		}
		content += "\n" + ui.FrameStyle.Render(title+"\n"+m.ti.View())
	case m.confirm != nil:
		content += "\n" + ui.FrameStyle.Render(fmt.Sprintf("Delete %q? (y/N)", m.confirm.Text))
	}
	if m.alert != "" {
		content += "\n" + ui.AlertStyle.Render(ui.ErrorStyle.Render(m.alert)+"\n"+ui.HelpStyle.Render("press any key"))
	}
	return ui.FrameStyle.Render(content)
}

func (m Model) editing() bool {
	return m.editor != nil && m.editor.State() == present.Editing
}
