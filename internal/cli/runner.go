package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/present"
	"github.com/idilsaglam/tada/internal/session"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group  bool   // list grouped by pending/done
	Server string // overrides TADA_SERVER
	// In is read for auth prompts; defaults to os.Stdin.
	In io.Reader
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	if opt.In == nil {
		opt.In = os.Stdin
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0
	case "ls", "add", "done", "edit", "rm", "tui", "auth":
	default:
		ui.Fail("unknown subcommand: " + cmd)
		ui.Println()
		PrintHelp()
		return 2
	}

	if code := checkUsage(cmd, a); code != 0 {
		return code
	}

	e, err := newEnv(opt)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	defer e.Close()

	if cmd == "auth" {
		return runAuth(ctx, e, a, opt)
	}

	e.resolve(ctx)

	switch cmd {
	case "ls":
		return doList(ctx, e, opt)
	case "add":
		return doAdd(ctx, e, strings.Join(a, " "))
	case "done":
		n, _ := strconv.Atoi(a[0])
		return doToggle(ctx, e, n)
	case "edit":
		n, _ := strconv.Atoi(a[0])
		return doEdit(ctx, e, n, strings.Join(a[1:], " "))
	case "rm":
		n, _ := strconv.Atoi(a[0])
		return doRemove(ctx, e, n)
	case "tui":
		if err := tui.Run(ctx, e.list); err != nil {
			ui.Fail("tui: " + err.Error())
			return 1
		}
		return 0
	}
	return 0
}

// checkUsage validates arguments before anything touches disk or network.
func checkUsage(cmd string, a []string) int {
	switch cmd {
	case "add":
		if len(a) == 0 {
			ui.Fail("usage: todo add <text...>")
			return 2
		}
	case "done", "rm":
		if len(a) != 1 {
			ui.Fail(fmt.Sprintf("usage: todo %s <index>", cmd))
			return 2
		}
		if _, err := strconv.Atoi(a[0]); err != nil {
			ui.Fail(cmd + ": not a number: " + a[0])
			return 2
		}
	case "edit":
		if len(a) < 2 {
			ui.Fail("usage: todo edit <index> <text...>")
			return 2
		}
		if _, err := strconv.Atoi(a[0]); err != nil {
			ui.Fail("edit: not a number: " + a[0])
			return 2
		}
	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: todo auth <login|register|logout|status|whoami>")
			return 2
		}
	}
	return 0
}

func PrintHelp() {
	ui.Println(`todo - a tiny CLI

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  add <text...>           Add a new todo (text can be multiple words)
  ls                      List todos
  done <index>            Toggle done for the todo at 1-based index
  edit <index> <text...>  Replace the text of the todo at index
  rm <index>              Remove the todo at 1-based index
  tui                     Interactive list
  auth <login|register|logout|status|whoami>
                          Sign in to keep todos on the server

Signed out, todos live in $TADA_HOME/local.json. Signed in, they live on
$TADA_SERVER and the local list is left untouched.

Examples:
  todo add "Buy milk"
  todo ls
  todo done 2
  todo edit 2 "Buy oat milk"
  todo rm 3`)
}

// -------------- subcommand impls ----------------

func loadItems(ctx context.Context, e *env) ([]model.Todo, bool) {
	items, err := e.list.Items(ctx)
	if err != nil {
		ui.Alert("load failed", err)
		return nil, false
	}
	return items, true
}

func doList(ctx context.Context, e *env, opt Options) int {
	items, ok := loadItems(ctx, e)
	if !ok {
		return 1
	}
	t := ui.Current()

	d, p := model.Stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Todos"),
		ui.C(t.Success, t.SymDone), d,
		ui.C(t.Pending, t.SymUnchecked), p,
		ui.C(t.Accent, "Total"), len(items),
	)

	lines := []string{header, ui.C(t.Muted, modeLine(e.ctrl.Status()))}
	lines = append(lines, ui.C(t.Muted, ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if notice := e.list.Notice(items); notice != "" {
		lines = append(lines, ui.C(t.Muted, notice))
	} else if opt.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(lines)
	return 0
}

func modeLine(st session.Status) string {
	if st.IsAuthenticated() {
		return "signed in as " + st.User.Name
	}
	return "local list (not signed in)"
}

func doAdd(ctx context.Context, e *env, text string) int {
	if err := e.list.Add(ctx, text); err != nil {
		return mutationFailed("add", err)
	}
	ui.OK("added")
	return 0
}

// pick resolves a 1-based index against the active list.
func pick(ctx context.Context, e *env, userIndex int) (model.Todo, int) {
	items, ok := loadItems(ctx, e)
	if !ok {
		return model.Todo{}, 1
	}
	if userIndex < 1 || userIndex > len(items) {
		ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", len(items), userIndex))
		ui.Hint("Hint: run `todo ls` to see valid indexes")
		return model.Todo{}, 2
	}
	return items[userIndex-1], 0
}

func doToggle(ctx context.Context, e *env, userIndex int) int {
	t, code := pick(ctx, e, userIndex)
	if code != 0 {
		return code
	}
	if err := e.list.Toggle(ctx, t); err != nil {
		return mutationFailed("toggle", err)
	}
	ui.OK("toggled")
	return 0
}

func doEdit(ctx context.Context, e *env, userIndex int, text string) int {
	t, code := pick(ctx, e, userIndex)
	if code != 0 {
		return code
	}
	if strings.TrimSpace(text) == "" {
		return mutationFailed("edit", model.ErrEmptyText)
	}
	ed := present.NewEditor(t)
	ed.Begin()
	ed.SetDraft(text)
	dispatched, err := ed.Commit(ctx, e.list)
	if err != nil {
		return mutationFailed("edit", err)
	}
	if !dispatched {
		ui.OK("unchanged")
		return 0
	}
	ui.OK("edited")
	return 0
}

func doRemove(ctx context.Context, e *env, userIndex int) int {
	t, code := pick(ctx, e, userIndex)
	if code != 0 {
		return code
	}
	if err := e.list.Delete(ctx, t); err != nil {
		return mutationFailed("remove", err)
	}
	ui.OK("removed")
	return 0
}

// mutationFailed maps a mutation error to output and exit code.
func mutationFailed(op string, err error) int {
	switch {
	case errors.Is(err, model.ErrEmptyText):
		ui.Fail(op + ": empty text")
		return 2
	case errors.Is(err, present.ErrInvalidState):
		ui.Fail(op + ": the session is not ready")
		return 1
	}
	ui.Alert(op+" failed", err)
	return 1
}

// -------------- rendering helpers --------------

func flatLines(items []model.Todo) []string {
	if len(items) == 0 {
		return []string{ui.C(ui.Current().Muted, "no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, itemLine(i+1, it))
	}
	return out
}

func itemLine(n int, it model.Todo) string {
	idx := fmt.Sprintf("%2d.", n)
	box := ui.Current().BoxUnchecked
	color := ui.Current().Muted
	if it.Completed {
		box, color = ui.Current().BoxChecked, ui.Current().Success
	}
	text := it.Text
	if r := []rune(text); len(r) > 80 {
		text = string(r[:77]) + "..."
	}
	return fmt.Sprintf("%s %s %s", ui.Dim(idx), ui.C(color, box), text)
}

// groupLines keeps each item's index from the flat list so done/rm still apply.
func groupLines(items []model.Todo) []string {
	var pend, done []string
	for i, it := range items {
		if it.Completed {
			done = append(done, itemLine(i+1, it))
		} else {
			pend = append(pend, itemLine(i+1, it))
		}
	}
	var lines []string
	lines = append(lines, ui.C(ui.Current().Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, pend...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, done...)
	}
	return lines
}
