// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the session credential across runs.
//
// The credential store is a tiny key-value table holding two fixed keys:
// KeyUser (the JSON encoded session identity) and KeyToken (the bearer
// token). Backends share the Store interface so the session layer does not
// care where values live.
//
// # Key Types
//
//   - Store: Get/Set/Delete over string keys
//   - FileStore: a single JSON document written atomically with mode 0600
//   - SQLiteStore: a credentials table in a local SQLite database
//   - MemoryStore: process-local, used by tests
//   - SealedStore: wraps a Store and seals KeyToken at rest
//   - Watcher: fires a callback when another process rewrites the file store
//
// # Usage
//
//	store, err := storage.Open(storage.Options{Backend: "file", Path: p})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_ = store.Set(ctx, storage.KeyToken, token)
//	tok, err := store.Get(ctx, storage.KeyToken)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // logged out
//	}
package storage
