// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive commands
// of ssfrontend.
//
// Every command runs against an App, which owns the configuration, logger,
// credential store, session and API client for one invocation. Handlers
// drive the same headless views the TUI uses, so a like from the command
// line follows the same optimistic path as a like in the feed.
//
// # Key Types
//
//   - Command: enumeration of the top-level commands
//   - Args: global flags plus the raw arguments for the command
//   - ArgParser: flag and positional parsing shared by all handlers
//   - App: per-invocation wiring of config, session and API client
//   - ChatREPL: liner-based line editor driving a views.ChatWindow
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	app, err := cli.NewApp(ctx, cli.Options{Config: cfg, JSON: args.JSON})
//	if err != nil { ... }
//	defer app.Close()
//	err = cli.Run(ctx, app, cmd, args)
//	os.Exit(cli.GetExitCode(err))
//
// All listing commands accept --json and print a JSONResponse envelope.
package cli
