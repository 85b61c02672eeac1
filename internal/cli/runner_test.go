package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/app"
	"github.com/idilsaglam/tada/internal/cli"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

type output struct{ out, err bytes.Buffer }

func setup(t *testing.T) (string, *output) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TADA_HOME", home)
	t.Setenv("TADA_TOKEN", "")
	os.Unsetenv("TADA_TOKEN")
	t.Setenv("TADA_LOG_FILE", "")
	os.Unsetenv("TADA_LOG_FILE")
	// nothing listens here; signed-out runs never dial it
	t.Setenv("TADA_SERVER", "http://127.0.0.1:1")

	o := &output{}
	ui.SetOutput(&o.out, &o.err)
	ui.SetColorForcing(false, true)
	t.Cleanup(func() {
		ui.SetOutput(os.Stdout, os.Stderr)
		ui.SetColorForcing(false, false)
	})
	return home, o
}

func run(args ...string) int {
	return cli.Run(context.Background(), args, cli.Options{})
}

func TestUsage(t *testing.T) {
	_, o := setup(t)

	assert.Equal(t, 2, run())
	assert.Equal(t, 0, run("help"))
	assert.Equal(t, 2, run("bogus"))
	assert.Contains(t, o.err.String(), "unknown subcommand: bogus")
	assert.Equal(t, 2, run("add"))
	assert.Equal(t, 2, run("done", "x"))
	assert.Equal(t, 2, run("edit", "1"))
	assert.Equal(t, 2, run("auth"))
}

func TestLocalCommands(t *testing.T) {
	home, o := setup(t)

	require.Equal(t, 0, run("add", "buy", "milk"))
	require.Equal(t, 0, run("add", "walk"))
	assert.Equal(t, 2, run("add", "   "))

	require.Equal(t, 0, run("done", "2"))
	require.Equal(t, 0, run("edit", "1", "run"))
	assert.Equal(t, 2, run("rm", "9"))
	assert.Contains(t, o.err.String(), "index out of range: have 2, got 9")

	o.out.Reset()
	require.Equal(t, 0, run("ls"))
	ls := o.out.String()
	assert.Contains(t, ls, "local list (not signed in)")
	assert.Less(t, strings.Index(ls, "run"), strings.Index(ls, "buy milk"))

	raw, err := os.ReadFile(filepath.Join(home, "local.json"))
	require.NoError(t, err)
	var stored map[string]string
	require.NoError(t, json.Unmarshal(raw, &stored))
	var items []model.LocalTodo
	require.NoError(t, json.Unmarshal([]byte(stored["localTodos"]), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "run", items[0].Text)
	assert.Equal(t, "buy milk", items[1].Text)
	assert.True(t, items[1].Completed)

	require.Equal(t, 0, run("rm", "1"))
	require.Equal(t, 0, run("rm", "1"))
	o.out.Reset()
	require.Equal(t, 0, run("ls"))
	assert.Contains(t, o.out.String(), "No todos yet. Add one above!")
}

func TestSignedInCommands(t *testing.T) {
	home, o := setup(t)

	gin.SetMode(gin.TestMode)
	a, err := app.New(config.Config{
		DB:   config.DBConfig{DSN: "file:" + t.TempDir() + "/cli.db"},
		Auth: config.AuthConfig{Secret: "cli-test-secret-0123456", TokenTTL: config.Duration(time.Hour)},
	}, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	srv := httptest.NewServer(a.Router())
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close(context.Background())
	})
	t.Setenv("TADA_SERVER", srv.URL)

	// a signed-out todo that must stay in the local store
	require.Equal(t, 0, run("add", "offline"))
	before, err := os.ReadFile(filepath.Join(home, "local.json"))
	require.NoError(t, err)

	code := cli.Run(context.Background(), []string{"auth", "register", "alice"}, cli.Options{In: strings.NewReader("pw\n")})
	require.Equal(t, 0, code, o.err.String())
	assert.Contains(t, o.out.String(), "logged in as alice")

	require.Equal(t, 0, run("add", "a"))
	require.Equal(t, 0, run("add", "b"))
	require.Equal(t, 0, run("done", "2"))
	require.Equal(t, 0, run("edit", "1", "b2"))

	o.out.Reset()
	require.Equal(t, 0, run("ls"))
	ls := o.out.String()
	assert.Contains(t, ls, "signed in as alice")
	assert.NotContains(t, ls, "offline")
	assert.Less(t, strings.Index(ls, "b2"), strings.Index(ls, "☑ a"))

	o.out.Reset()
	require.Equal(t, 0, run("auth", "whoami"))
	assert.Contains(t, o.out.String(), "alice")

	require.Equal(t, 0, run("rm", "1"))
	require.Equal(t, 0, run("auth", "logout"))

	after, err := os.ReadFile(filepath.Join(home, "local.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after, "signing in leaves the local store untouched")

	o.out.Reset()
	require.Equal(t, 0, run("ls"))
	assert.Contains(t, o.out.String(), "offline")

	code = cli.Run(context.Background(), []string{"auth", "login", "alice"}, cli.Options{In: strings.NewReader("wrong\n")})
	assert.Equal(t, 1, code)
	assert.Contains(t, o.err.String(), "invalid username or password")
}
