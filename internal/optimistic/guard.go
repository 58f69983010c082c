// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package optimistic

import (
	"errors"
	"sync"
)

// ErrInFlight is returned by Acquire while the key is held.
var ErrInFlight = errors.New("an update is already in progress")

// Guard is a set of keys with an outstanding mutation. The zero value is
// ready to use.
type Guard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// Acquire claims key. The returned release function is safe to call more
// than once.
func (g *Guard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys == nil {
		g.keys = make(map[string]struct{})
	}
	if _, busy := g.keys[key]; busy {
		return nil, ErrInFlight
	}
	g.keys[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.keys, key)
			g.mu.Unlock()
		})
	}, nil
}

// InFlight reports whether key is held.
func (g *Guard) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.keys[key]
	return busy
}
