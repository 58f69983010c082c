// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
)

// Fixed credential keys.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("credential not found")

// Store is a persistent string key-value store.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clear removes both fixed credential keys.
func Clear(ctx context.Context, s Store) error {
	var errs []error
	for _, k := range []string{KeyToken, KeyUser} {
		if err := s.Delete(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Options selects and configures a backend.
type Options struct {
	// Backend is "file", "sqlite" or "memory".
	Backend string
	Path    string
	// Sealer, when set, seals KeyToken at rest.
	Sealer Sealer
}

// Open builds the backend described by opts.
func Open(opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case "", "file":
		s, err = NewFileStore(opts.Path)
	case "sqlite":
		s, err = NewSQLiteStore(opts.Path)
	case "memory":
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	if opts.Sealer != nil {
		s = NewSealedStore(s, opts.Sealer)
	}
	return s, nil
}
