// ssfrontend - terminal client for the ssfrontend social network.
//
// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvakumar/ssfrontend/internal/cli"
	"github.com/nvakumar/ssfrontend/internal/config"
	"github.com/nvakumar/ssfrontend/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches one invocation and returns the process exit code.
func run(argv []string) int {
	cmd, args := cli.Parse(argv)

	errOut := io.Writer(os.Stderr)
	if args.JSON {
		errOut = os.Stdout
	}
	fail := func(err error) int {
		cli.DisplayError(errOut, cmd.String(), err, args.JSON)
		return cli.GetExitCode(err)
	}

	// Commands that never touch the backend or the credential store.
	switch cmd {
	case cli.CmdVersion:
		if err := cli.HandleVersion(os.Stdout, args); err != nil {
			return fail(err)
		}
		return cli.ExitSuccess
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdConfig:
		if err := cli.HandleConfig(os.Stdout, args); err != nil {
			return fail(err)
		}
		return cli.ExitSuccess
	case cli.CmdUnknown:
		err := &cli.ValidationError{Field: "command", Value: args.Name, Reason: "unknown command", Example: "ssfrontend help"}
		code := fail(err)
		if !args.JSON {
			cli.PrintUsage(os.Stderr)
		}
		return code
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := cli.NewApp(ctx, cli.Options{
		Config:   cfg,
		JSON:     args.JSON,
		Quiet:    args.Quiet,
		Markdown: true,
		Watch:    cmd == cli.CmdTUI,
	})
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	if cmd == cli.CmdTUI {
		if err := runTUI(ctx, a); err != nil {
			return fail(err)
		}
		return cli.ExitSuccess
	}

	if err := cli.Run(ctx, a, cmd, args); err != nil {
		return fail(err)
	}
	return cli.ExitSuccess
}

func loadConfig(args cli.Args) (*config.Config, error) {
	path := args.ConfigPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// runTUI starts the full-screen client. The terminal is required.
func runTUI(ctx context.Context, a *cli.App) error {
	if !cli.IsTTY() || !cli.IsStdoutTTY() {
		return &cli.TTYRequiredError{Operation: "start the tui"}
	}

	m := app.New(ctx, app.Deps{
		Config:  a.Config,
		API:     a.API,
		Session: a.Session,
		Connect: a.Connect,
		Log:     a.Log,
	})
	sess, _ := a.Session.Current()
	a.Log.Infow("starting tui", "api", a.Config.API.BaseURL, "user", sess.UserID)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}
