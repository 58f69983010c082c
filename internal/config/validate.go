// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/nvakumar/ssfrontend/internal/model"
)

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid field found by Validate.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and returns ValidateErrors when anything is
// wrong.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if err := checkURL(c.API.BaseURL, "http", "https"); err != "" {
		add("api.base_url", "%s", err)
	}
	if c.API.TimeoutSeconds < 1 || c.API.TimeoutSeconds > 600 {
		add("api.timeout_seconds", "must be between 1 and 600, got %d", c.API.TimeoutSeconds)
	}
	if c.API.RateLimit < 0 {
		add("api.rate_limit", "must not be negative")
	}
	if c.API.RateBurst < 0 {
		add("api.rate_burst", "must not be negative")
	}

	if err := checkURL(c.Realtime.URL, "ws", "wss"); err != "" {
		add("realtime.url", "%s", err)
	}
	if c.Realtime.HandshakeTimeoutSeconds < 1 || c.Realtime.HandshakeTimeoutSeconds > 120 {
		add("realtime.handshake_timeout_seconds", "must be between 1 and 120, got %d", c.Realtime.HandshakeTimeoutSeconds)
	}
	if c.Realtime.ArrivalBuffer < 1 {
		add("realtime.arrival_buffer", "must be at least 1")
	}

	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		add("storage.backend", "invalid backend '%s', must be one of: file, sqlite", c.Storage.Backend)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "invalid level '%s'", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		add("log.format", "invalid format '%s', must be one of: console, json", c.Log.Format)
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}
	if !model.IsKnownRole(c.UI.DefaultRole) {
		add("ui.default_role", "unknown role '%s'", c.UI.DefaultRole)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkURL(raw string, schemes ...string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Host == "" {
		return fmt.Sprintf("URL '%s' has no host", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return ""
		}
	}
	return fmt.Sprintf("scheme must be one of: %s", strings.Join(schemes, ", "))
}
