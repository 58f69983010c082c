// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the signed-in identity for the lifetime of the client.
//
// A Manager is created once by main and passed to everything that needs the
// current user or the bearer token. It has an explicit lifecycle:
//
//   - Hydrate restores a session persisted by a previous run
//   - Login authenticates and persists
//   - Logout clears both the store and memory
//
// Expired JWT bearer tokens are discarded during Hydrate and refused by
// Token, so views never send a request the server is certain to reject.
//
// # Usage
//
//	mgr := session.NewManager(store, log)
//	if err := mgr.Hydrate(ctx); err != nil {
//	    return err
//	}
//	client := api.NewClient(apiCfg, mgr, log)
//	if _, ok := mgr.Current(); !ok {
//	    err = mgr.Login(ctx, client, email, password)
//	}
package session
