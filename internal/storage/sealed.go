// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
)

// Sealer encrypts values at rest. security.Sealer satisfies it.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// SealedStore seals KeyToken before it reaches the wrapped Store. Other keys
// pass through untouched.
type SealedStore struct {
	Store
	sealer Sealer
}

// NewSealedStore wraps s.
func NewSealedStore(s Store, sealer Sealer) *SealedStore {
	return &SealedStore{Store: s, sealer: sealer}
}

// Get implements Store.
func (s *SealedStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.Store.Get(ctx, key)
	if err != nil || key != KeyToken {
		return v, err
	}
	plain, err := s.sealer.Open(v)
	if err != nil {
		return "", fmt.Errorf("failed to unseal %s: %w", key, err)
	}
	return plain, nil
}

// Set implements Store.
func (s *SealedStore) Set(ctx context.Context, key, value string) error {
	if key == KeyToken {
		sealed, err := s.sealer.Seal(value)
		if err != nil {
			return fmt.Errorf("failed to seal %s: %w", key, err)
		}
		value = sealed
	}
	return s.Store.Set(ctx, key, value)
}
