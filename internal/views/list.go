// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nvakumar/ssfrontend/internal/logging"
)

// Fetcher loads the full contents of a list.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// ListState is a snapshot of a ListView.
type ListState[T any] struct {
	Items   []T
	Loading bool
	Loaded  bool
	Err     error
}

// ListView is a list that is fetched whole on mount and on every refresh.
//
// Each fetch is tagged with a generation. Only the response of the latest
// generation is applied; older responses and anything arriving after
// Unmount are discarded.
type ListView[T any] struct {
	fetch Fetcher[T]
	log   *zap.SugaredLogger

	mu       sync.Mutex
	state    ListState[T]
	gen      uint64
	mounted  bool
	scope    context.Context
	cancel   context.CancelFunc
	onChange func(ListState[T])
}

// NewListView returns an unmounted list backed by fetch.
func NewListView[T any](fetch Fetcher[T], log *zap.SugaredLogger) *ListView[T] {
	return &ListView[T]{fetch: fetch, log: logging.OrNop(log)}
}

// OnChange registers fn for state changes. fn runs outside the lock.
func (l *ListView[T]) OnChange(fn func(ListState[T])) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// State returns a snapshot.
func (l *ListView[T]) State() ListState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Items returns the current items.
func (l *ListView[T]) Items() []T {
	return l.State().Items
}

// Mounted reports whether the list is mounted.
func (l *ListView[T]) Mounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted
}

func (l *ListView[T]) snapshotLocked() ListState[T] {
	s := l.state
	s.Items = append([]T(nil), l.state.Items...)
	return s
}

// Mount opens the view's scope under parent and performs the first fetch.
// Mounting an already mounted list only refreshes it.
func (l *ListView[T]) Mount(parent context.Context) error {
	l.Open(parent)
	return l.Refresh(parent)
}

// Open mounts the list without fetching.
func (l *ListView[T]) Open(parent context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		l.scope, l.cancel = context.WithCancel(parent)
		l.mounted = true
	}
}

// Unmount cancels in-flight fetches and stops applying responses.
func (l *ListView[T]) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return
	}
	l.mounted = false
	l.gen++
	l.cancel()
}

// Refresh refetches the list. It returns the fetch error even when the
// response was discarded as stale; a stale success returns nil.
func (l *ListView[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return ErrNotMounted
	}
	l.gen++
	gen, scope := l.gen, l.scope
	l.state.Loading = true
	l.notifyLocked()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(scope, cancel)
	defer stop()

	items, err := l.fetch(ctx)

	l.mu.Lock()
	if gen != l.gen || !l.mounted {
		l.mu.Unlock()
		l.log.Debugw("discarding stale list response", "generation", gen, "error", err)
		return err
	}
	l.state.Loading = false
	if err != nil {
		l.state.Err = err
		l.log.Warnw("list fetch failed", "error", err)
	} else {
		l.state.Items, l.state.Err, l.state.Loaded = items, nil, true
	}
	l.notifyLocked()
	return err
}

// Clear empties the list without fetching and fences off any fetch in
// flight.
func (l *ListView[T]) Clear() {
	l.mu.Lock()
	l.gen++
	l.state = ListState[T]{}
	l.notifyLocked()
}

// Update changes the items in place, for local edits confirmed elsewhere.
func (l *ListView[T]) Update(fn func(items []T) []T) {
	l.mu.Lock()
	l.state.Items = fn(l.state.Items)
	l.notifyLocked()
}

// Remove drops every item matching pred.
func (l *ListView[T]) Remove(pred func(T) bool) {
	l.Update(func(items []T) []T {
		kept := items[:0]
		for _, it := range items {
			if !pred(it) {
				kept = append(kept, it)
			}
		}
		return kept
	})
}

// notifyLocked snapshots the state, releases the lock and runs the callback.
func (l *ListView[T]) notifyLocked() {
	s, fn := l.snapshotLocked(), l.onChange
	l.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
