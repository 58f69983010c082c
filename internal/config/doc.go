// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// ssfrontend client.
//
// Configuration is read from ~/.ssfrontend/config.toml (or $SSF_HOME), then
// overridden by environment variables. A .env file in the working directory
// is loaded before the environment is read, so SSF_* values can be kept next
// to a project checkout.
//
// # Key Types
//
//   - Config: root configuration with api, realtime, storage, log and ui
//     sections
//   - ValidationError, ValidateErrors: field level validation failures
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.API.BaseURL, cfg.Realtime.URL)
//
// Reading and writing single keys uses the TOML names:
//
//	v, _ := cfg.Get("api.base_url")
//	_ = cfg.Set("ui.theme", "dark")
//	_ = config.Save(cfg)
//
// # Environment Variables
//
//   - SSF_HOME: config directory (default ~/.ssfrontend)
//   - SSF_API_URL, SSF_API_TIMEOUT, SSF_API_RATE_LIMIT
//   - SSF_SOCKET_URL
//   - SSF_STORE_BACKEND, SSF_STORE_PATH, SSF_STORE_ENCRYPT, SSF_STORE_PASSPHRASE
//   - SSF_LOG_LEVEL, SSF_LOG_FORMAT, SSF_LOG_FILE
//   - SSF_THEME
package config
