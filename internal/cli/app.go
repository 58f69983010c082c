// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - per-invocation wiring of config, logging, storage, session and the
// API client.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/nvakumar/ssfrontend/internal/api"
	"github.com/nvakumar/ssfrontend/internal/config"
	"github.com/nvakumar/ssfrontend/internal/logging"
	"github.com/nvakumar/ssfrontend/internal/realtime"
	"github.com/nvakumar/ssfrontend/internal/security"
	"github.com/nvakumar/ssfrontend/internal/session"
	"github.com/nvakumar/ssfrontend/internal/storage"
	"github.com/nvakumar/ssfrontend/internal/views"
)

// Options configures NewApp. Zero fields are built from Config.
type Options struct {
	Config *config.Config

	// Store overrides the backend named by Config.Storage. The App does not
	// close a store it was given.
	Store storage.Store

	// Logger overrides the file logger built from Config.Log.
	Logger *zap.SugaredLogger

	HTTPClient *http.Client
	Dialer     realtime.Dialer

	In  io.Reader
	Out io.Writer
	Err io.Writer

	JSON  bool
	Quiet bool

	// Markdown renders post descriptions with glamour. NewApp turns it off
	// when stdout is not a terminal.
	Markdown bool

	// Watch re-hydrates the session when the credential file changes, so a
	// logout in another terminal is seen by a running TUI.
	Watch bool
}

// App holds everything a command needs.
type App struct {
	Config  *config.Config
	Log     *zap.SugaredLogger
	Session *session.Manager
	API     *api.Client
	Connect views.Connector

	in       *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	json     bool
	quiet    bool
	markdown bool
	stdinTTY bool
	now      func() time.Time

	closers []func()
}

// NewApp builds an App and restores any persisted session.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	a := &App{
		Config:   cfg,
		in:       bufio.NewReader(orReader(opts.In, os.Stdin)),
		out:      orWriter(opts.Out, os.Stdout),
		errOut:   orWriter(opts.Err, os.Stderr),
		json:     opts.JSON,
		quiet:    opts.Quiet,
		markdown: opts.Markdown && cfg.UI.RenderMarkdown && opts.Out == nil && IsStdoutTTY(),
		stdinTTY: opts.In == nil && IsTTY(),
		now:      time.Now,
	}

	log := opts.Logger
	if log == nil {
		path, err := cfg.LogPath()
		if err != nil {
			return nil, err
		}
		l, closeLog, err := logging.New(logging.Options{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			File:   path,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start logger: %w", err)
		}
		log = l
		a.closers = append(a.closers, closeLog)
	}
	a.Log = log

	store := opts.Store
	if store == nil {
		s, err := openStore(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		store = s
		a.closers = append(a.closers, func() { _ = s.Close() })
	}

	a.Session = session.NewManager(store, log)
	if err := a.Session.Hydrate(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	if opts.Watch && opts.Store == nil && cfg.Storage.Backend == "file" {
		a.watchCredentials()
	}

	a.API = api.NewClient(&api.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		RateLimit:  cfg.API.RateLimit,
		RateBurst:  cfg.API.RateBurst,
		UserAgent:  cfg.API.UserAgent,
		HTTPClient: opts.HTTPClient,
	}, a.Session, log)

	a.Connect = views.RealtimeConnector(realtime.Config{
		URL:              cfg.Realtime.URL,
		HandshakeTimeout: time.Duration(cfg.Realtime.HandshakeTimeoutSeconds) * time.Second,
		ArrivalBuffer:    cfg.Realtime.ArrivalBuffer,
		Dialer:           opts.Dialer,
	}, a.Session, log)

	return a, nil
}

// openStore opens the configured credential backend, sealing the token when
// encrypt_token is set. A passphrase derives the key; without one a random
// key file is kept next to the store.
func openStore(cfg *config.Config) (storage.Store, error) {
	path, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	opts := storage.Options{Backend: cfg.Storage.Backend, Path: path}

	if cfg.Storage.EncryptToken {
		dir := filepath.Dir(path)
		var sealer *security.Sealer
		if cfg.Storage.Passphrase != "" {
			sealer, err = security.NewPassphraseSealer(cfg.Storage.Passphrase, filepath.Join(dir, "token.salt"))
		} else {
			sealer, err = security.NewKeyFileSealer(filepath.Join(dir, "token.key"))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to prepare token encryption: %w", err)
		}
		opts.Sealer = sealer
	}

	s, err := storage.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return s, nil
}

func (a *App) watchCredentials() {
	path, err := a.Config.StorePath()
	if err != nil {
		return
	}
	w, err := storage.WatchFile(path, 0, func() {
		if err := a.Session.Hydrate(context.Background()); err != nil {
			a.Log.Warnw("failed to reload session after external change", "error", err)
		}
	}, a.Log)
	if err != nil {
		a.Log.Warnw("credential watch disabled", "path", path, "error", err)
		return
	}
	a.closers = append(a.closers, func() { _ = w.Close() })
}

// Close releases everything NewApp opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// =============================================================================
// HELPERS
// =============================================================================

// Out returns the command output writer.
func (a *App) Out() io.Writer { return a.out }

// JSONMode reports whether --json was given.
func (a *App) JSONMode() bool { return a.json }

// requireSession returns the current session or ErrNoSession.
func (a *App) requireSession() (string, error) {
	s, ok := a.Session.Current()
	if !ok {
		return "", session.ErrNoSession
	}
	return s.UserID, nil
}

// printf writes human output. It is silent in JSON mode so stdout stays
// parseable.
func (a *App) printf(format string, args ...any) {
	if a.json {
		return
	}
	fmt.Fprintf(a.out, format, args...)
}

// notef writes a status line to stderr unless --quiet.
func (a *App) notef(format string, args ...any) {
	if a.quiet {
		return
	}
	fmt.Fprintf(a.errOut, format, args...)
}

// emit prints data as a JSON envelope in JSON mode, or calls text otherwise.
func (a *App) emit(command string, data any, text func()) error {
	if a.json {
		return NewJSONResponse(command, data).Write(a.out)
	}
	text()
	return nil
}

func orReader(r, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func orWriter(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
