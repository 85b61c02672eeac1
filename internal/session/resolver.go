package session

import (
	"context"
	"errors"
	"log"
	"os"
)

// ErrNoSession is returned by a Checker when the server rejects the token.
var ErrNoSession = errors.New("no session")

// Resolver turns whatever the client knows into a session Status.
type Resolver interface {
	Resolve(ctx context.Context) Status
}

// Checker asks the server who the token belongs to.
type Checker interface {
	Session(ctx context.Context, token string) (User, error)
}

// TokenResolver resolves the session from stored credentials, confirmed
// by the server.
type TokenResolver struct {
	creds   *Credentials
	checker Checker
	logger  *log.Logger
}

func NewTokenResolver(creds *Credentials, checker Checker, logger *log.Logger) *TokenResolver {
	if logger == nil {
		logger = log.New(os.Stderr, "[session] ", log.LstdFlags)
	}
	return &TokenResolver{creds: creds, checker: checker, logger: logger}
}

func (r *TokenResolver) Resolve(ctx context.Context) Status {
	ti, err := r.creds.Get()
	if err != nil {
		r.logger.Printf("reading credentials: %v", err)
		return Unauthenticated()
	}
	if ti == nil {
		return Unauthenticated()
	}
	u, err := r.checker.Session(ctx, ti.Token)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			r.logger.Printf("session check failed, continuing signed out: %v", err)
		}
		return Unauthenticated()
	}
	return Authenticated(u)
}

// Static always resolves to the same Status.
type Static Status

func (s Static) Resolve(context.Context) Status { return Status(s) }
