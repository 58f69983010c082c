// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Config command implementation.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value, e.g. api.base_url
//   set <key> <value>   Change a value and save config.toml
//   reset               Write the built-in defaults
//   path                Show the configuration file path
//   keys                List every settable key
//
// Examples:
//   ssfrontend config set api.base_url https://api.example.com
//   ssfrontend config set storage.backend sqlite
//   ssfrontend config get ui.default_role --json

package cli

import (
	"fmt"
	"io"

	"github.com/nvakumar/ssfrontend/internal/config"
)

const configUsage = "ssfrontend config show|get <key>|set <key> <value>|reset|path|keys"

// ConfigValueData is the payload of "config get --json" and "config set --json".
type ConfigValueData struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// HandleConfig runs the config command. It works without a session or a
// reachable backend.
func HandleConfig(w io.Writer, args Args) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	p := NewArgParser(args.Raw)

	switch p.Subcommand() {
	case "", "show":
		cfg, err := config.LoadFromPath(path)
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("config show", cfg).Write(w)
		}
		fmt.Fprintf(w, "%s\n", DimStyle.Render("# "+path))
		fmt.Fprint(w, cfg.String())
		return nil

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "ssfrontend config get api.base_url")
		}
		cfg, err := config.LoadFromPath(path)
		if err != nil {
			return err
		}
		v, err := cfg.Get(key)
		if err != nil {
			return &ValidationError{Field: "key", Value: key, Reason: err.Error(), Example: "ssfrontend config keys"}
		}
		if args.JSON {
			return NewJSONResponse("config get", ConfigValueData{Key: key, Value: v}).Write(w)
		}
		fmt.Fprintf(w, "%v\n", v)
		return nil

	case "set":
		key, value := p.Positional(1), JoinPositionalArgs(p, 2)
		if key == "" || p.PositionalCount() < 3 {
			return ErrMissingArgument("key and value", "ssfrontend config set ui.show_timestamps false")
		}
		cfg, err := config.LoadFromPath(path)
		if err != nil {
			return err
		}
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if _, err := config.EnsureDir(); err != nil {
			return err
		}
		if err := config.SaveTo(cfg, path); err != nil {
			return err
		}
		v, _ := cfg.Get(key)
		if args.JSON {
			return NewJSONResponse("config set", ConfigValueData{Key: key, Value: v}).Write(w)
		}
		if !args.Quiet {
			fmt.Fprintf(w, "%s %s = %v\n", SuccessStyle.Render("[OK]"), key, v)
		}
		return nil

	case "reset":
		if _, err := config.EnsureDir(); err != nil {
			return err
		}
		if err := config.SaveTo(config.Default(), path); err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("config reset", map[string]string{"path": path}).Write(w)
		}
		fmt.Fprintf(w, "%s Configuration reset to defaults\n", SuccessStyle.Render("[OK]"))
		return nil

	case "path":
		if args.JSON {
			return NewJSONResponse("config path", map[string]string{"path": path}).Write(w)
		}
		fmt.Fprintln(w, path)
		return nil

	case "keys":
		keys := config.Keys()
		if args.JSON {
			return NewJSONResponse("config keys", keys).Write(w)
		}
		for _, k := range keys {
			fmt.Fprintln(w, k)
		}
		return nil

	default:
		return ErrUnknownSubcommand("config", p.Subcommand(), configUsage)
	}
}

func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.Path()
}
