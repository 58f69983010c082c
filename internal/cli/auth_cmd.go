// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, logout and whoami.

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/nvakumar/ssfrontend/internal/security"
)

// HandleLogin authenticates and stores the session.
//
//	ssfrontend login --email alice@example.com
//	echo "$PW" | ssfrontend login --email alice@example.com --password-stdin
func HandleLogin(ctx context.Context, a *App, args Args) error {
	p := NewArgParser(args.Raw)

	email := p.FlagOrDefault("email", p.Positional(0))
	if email == "" {
		line, err := a.prompt("Email: ")
		if err != nil {
			return err
		}
		email = line
	}

	password, err := a.readPassword(p.BoolFlag("password-stdin"))
	if err != nil {
		return err
	}

	if err := a.Session.Login(ctx, a.API, email, password); err != nil {
		return err
	}

	s, _ := a.Session.Current()
	return a.emit("login", WhoamiData{
		LoggedIn: true,
		UserID:   s.UserID,
		FullName: s.DisplayName,
		Role:     s.Role,
	}, func() {
		a.printf("%s Logged in as %s\n", SuccessStyle.Render("[OK]"), s.DisplayName)
	})
}

// prompt reads one line after printing label to stderr.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.errOut, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads the password from stdin when fromStdin is set, otherwise
// prompts on the terminal without echo.
func (a *App) readPassword(fromStdin bool) (string, error) {
	if fromStdin {
		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err := RequiresTTY("read a password"); err != nil {
		return "", err
	}
	fmt.Fprint(a.errOut, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// HandleLogout clears the stored session. Logging out while logged out is
// not an error.
func HandleLogout(ctx context.Context, a *App, _ Args) error {
	s, wasActive := a.Session.Current()
	if err := a.Session.Logout(ctx); err != nil {
		return err
	}
	return a.emit("logout", WhoamiData{LoggedIn: false}, func() {
		if wasActive {
			a.printf("Logged out %s\n", s.DisplayName)
		} else {
			a.printf("Not logged in\n")
		}
	})
}

// HandleWhoami shows the current session.
func HandleWhoami(_ context.Context, a *App, _ Args) error {
	s, ok := a.Session.Current()
	data := WhoamiData{LoggedIn: ok}
	if ok {
		data.UserID = s.UserID
		data.FullName = s.DisplayName
		data.Role = s.Role
		if exp, ok := security.TokenExpiry(s.Token); ok {
			data.ExpiresAt = &exp
		}
	}

	return a.emit("whoami", data, func() {
		if !ok {
			a.printf("Not logged in. Run: ssfrontend login\n")
			return
		}
		a.printf("%s\n", RenderField("User", s.DisplayName))
		a.printf("%s\n", RenderField("ID", s.UserID))
		if s.Role != "" {
			a.printf("%s\n", RenderField("Role", s.Role))
		}
		if data.ExpiresAt != nil {
			a.printf("%s\n", RenderField("Expires", data.ExpiresAt.Local().Format("2006-01-02 15:04")))
		}
	})
}
