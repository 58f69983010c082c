// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nvakumar/ssfrontend/internal/session"
	"github.com/nvakumar/ssfrontend/internal/ui/components"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	err      string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email    "
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	f := loginForm{email: email, password: password}
	f.focusField(0)
	return f
}

func (f *loginForm) focusField(i int) {
	f.focus = i
	if i == 0 {
		f.email.Focus()
		f.password.Blur()
	} else {
		f.email.Blur()
		f.password.Focus()
	}
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	if m.login.busy {
		return nil
	}
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.login.focusField(1 - m.login.focus)
		return nil
	case tea.KeyEsc:
		m.login.err = ""
		return nil
	case tea.KeyEnter:
		if m.login.focus == 0 && m.login.password.Value() == "" {
			m.login.focusField(1)
			return nil
		}
		return m.submitLogin()
	}
	m.login.err = ""
	return m.login.update(msg)
}

// submitLogin signs in. Success arrives as a sessionChangedMsg from the
// session manager; loginDoneMsg only ends the busy state.
func (m *Model) submitLogin() tea.Cmd {
	email := strings.TrimSpace(m.login.email.Value())
	password := m.login.password.Value()
	if email == "" || password == "" {
		m.login.err = session.ErrMissingCredentials.Error()
		return nil
	}
	m.login.busy = true
	m.login.err = ""

	ctx, mgr, auth := m.ctx, m.deps.Session, m.deps.API
	return func() tea.Msg {
		return loginDoneMsg{err: mgr.Login(ctx, auth, email, password)}
	}
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderBrand.Render("ssfrontend"))
	b.WriteString("\n")
	b.WriteString(m.theme.Muted.Render("Sign in to continue"))
	b.WriteString("\n\n")

	for i, in := range []textinput.Model{m.login.email, m.login.password} {
		box := m.theme.InputBox
		if i == m.login.focus {
			box = m.theme.InputBoxFocus
		}
		b.WriteString(box.Width(44).Render(in.View()))
		b.WriteString("\n")
	}

	switch {
	case m.login.busy:
		b.WriteString(m.spinner.View() + " Signing in...")
	case m.login.err != "":
		b.WriteString(m.theme.Error.Render(m.login.err))
	default:
		b.WriteString(m.theme.Muted.Render("Enter to sign in · Tab to switch field · Ctrl+C to quit"))
	}

	form := m.theme.Login.Render(b.String())
	if toasts := m.toasts.Toasts(); len(toasts) > 0 {
		form = lipgloss.JoinVertical(lipgloss.Center, form, components.RenderToastStack(toasts, 48))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}
