package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/present"
	"github.com/idilsaglam/tada/internal/reconcile"
	"github.com/idilsaglam/tada/internal/remote"
	"github.com/idilsaglam/tada/internal/session"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/kv"
)

// env is everything one invocation needs, wired from config.Client.
type env struct {
	cfg    config.Client
	logger *log.Logger
	logOut *lumberjack.Logger
	creds  *session.Credentials
	client *remote.Client
	ctrl   *reconcile.Controller
	list   *present.List
}

func newEnv(opt Options) (*env, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if opt.Server != "" {
		cfg.Server = opt.Server
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", cfg.Home, err)
	}

	logOut := newLogWriter(cfg.LogFile)
	logger := log.New(logOut, "", log.LstdFlags)

	creds := session.NewCredentials(cfg.Home)
	client := remote.NewClient(remote.ClientOptions{
		BaseURL: cfg.Server,
		Timeout: cfg.Timeout.Duration(),
		Token: func() string {
			ti, err := creds.Get()
			if err != nil || ti == nil {
				return ""
			}
			return ti.Token
		},
	})

	store := jsonstore.New(kv.NewFile(cfg.StorePath()), log.New(logOut, "[jsonstore] ", log.LstdFlags))
	ctrl := reconcile.New(store, log.New(logOut, "[reconcile] ", log.LstdFlags))

	return &env{
		cfg:    cfg,
		logger: logger,
		logOut: logOut,
		creds:  creds,
		client: client,
		ctrl:   ctrl,
		list:   present.NewList(ctrl, client, log.New(logOut, "[present] ", log.LstdFlags)),
	}, nil
}

// resolve settles the session once and hands it to the controller.
func (e *env) resolve(ctx context.Context) session.Status {
	r := session.NewTokenResolver(e.creds, e.client, log.New(e.logOut, "[session] ", log.LstdFlags))
	st := r.Resolve(ctx)
	e.ctrl.Apply(st)
	return st
}

func (e *env) Close() error { return e.logOut.Close() }

// newLogWriter returns a size-rotated log file.
func newLogWriter(path string) *lumberjack.Logger {
	_ = os.MkdirAll(filepath.Dir(path), 0o700)
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}
