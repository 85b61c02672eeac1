package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/dto"
	"github.com/idilsaglam/tada/internal/remote"
	"github.com/idilsaglam/tada/internal/session"
	"github.com/idilsaglam/tada/internal/ui"
)

func runAuth(ctx context.Context, e *env, a []string, opt Options) int {
	switch a[0] {
	case "login":
		return doAuthSignIn(ctx, e, a[1:], opt, "login")
	case "register":
		return doAuthSignIn(ctx, e, a[1:], opt, "register")
	case "logout":
		return doAuthLogout(e)
	case "status":
		return doAuthStatus(e)
	case "whoami":
		return doAuthWhoAmI(ctx, e)
	default:
		ui.Fail("usage: todo auth <login|register|logout|status|whoami>")
		return 2
	}
}

// doAuthSignIn reads username (unless given) and password from the input,
// then stores the returned token.
func doAuthSignIn(ctx context.Context, e *env, a []string, opt Options, op string) int {
	in := bufio.NewReader(opt.In)
	var username string
	if len(a) > 0 {
		username = a[0]
	} else {
		ui.Print("Username: ")
		username = readLine(in)
	}
	ui.Print("Password: ")
	password := readLine(in)
	if username == "" || password == "" {
		ui.Fail(op + ": username and password required")
		return 2
	}

	var (
		out dto.AuthResponse
		err error
	)
	if op == "register" {
		out, err = e.client.Register(ctx, username, password)
	} else {
		out, err = e.client.Login(ctx, username, password)
	}
	if err != nil {
		if errors.Is(err, remote.ErrUnauthenticated) {
			ui.Fail("invalid username or password")
			return 1
		}
		ui.Alert(op+" failed", err)
		return 1
	}
	exp := out.ExpiresAt
	if err := e.creds.Set(out.Token, &exp); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	e.logger.Printf("signed in as %s", out.User.Username)
	ui.OK("logged in as " + out.User.Username)
	return 0
}

func readLine(r *bufio.Reader) string {
	s, _ := r.ReadString('\n')
	return strings.TrimSpace(s)
}

func doAuthLogout(e *env) int {
	ti, _ := e.creds.Get()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by TADA_TOKEN env var (nothing to delete)")
		return 0
	}
	if err := e.creds.Delete(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus(e *env) int {
	ti, err := e.creds.Get()
	if err != nil {
		ui.Fail("credentials: " + err.Error())
		return 1
	}
	if ti == nil {
		ui.Println(ui.Dim("not logged in"))
		ui.Println("Run: todo auth login")
		return 0
	}
	ui.Println("server:", e.cfg.Server)
	ui.Println("source:", ti.Source)
	if ti.ExpiresAt != nil {
		ui.Println("expires:", ti.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		ui.Println("expires: (unknown)")
	}
	ui.Println("env override: TADA_TOKEN")
	return 0
}

// doAuthWhoAmI asks the server who the stored token belongs to.
func doAuthWhoAmI(ctx context.Context, e *env) int {
	ti, _ := e.creds.Get()
	if ti == nil {
		ui.Fail("not logged in. Run: todo auth login")
		return 2
	}
	u, err := e.client.Session(ctx, ti.Token)
	if errors.Is(err, session.ErrNoSession) {
		ui.Fail("token rejected by " + e.cfg.Server + ". Run: todo auth login")
		return 1
	}
	if err != nil {
		ui.Alert("whoami failed", err)
		return 1
	}
	ui.Println(fmt.Sprintf("%s (id %s)", u.Name, u.ID))
	return 0
}
