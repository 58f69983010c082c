// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package optimistic

import (
	"context"
	"sync"
)

// Cell is a mutex-guarded value with change notification. Readers get a copy
// produced by the clone function so they never alias slices the cell may
// later change.
type Cell[T any] struct {
	mu       sync.Mutex
	value    T
	clone    func(T) T
	onChange func(T)
}

// NewCell returns a cell holding v. clone may be nil for values without
// shared references.
func NewCell[T any](v T, clone func(T) T) *Cell[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Cell[T]{value: clone(v), clone: clone}
}

// Get returns a copy of the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clone(c.value)
}

// Set replaces the value.
func (c *Cell[T]) Set(v T) {
	c.Update(func(cur *T) { *cur = c.clone(v) })
}

// Update changes the value in place under the lock.
func (c *Cell[T]) Update(fn func(v *T)) {
	c.mu.Lock()
	fn(&c.value)
	snapshot, notify := c.clone(c.value), c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
}

// OnChange registers fn to receive a copy after every change. fn runs
// outside the lock.
func (c *Cell[T]) OnChange(fn func(T)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Mutation changes *T in place and returns the function that reverts exactly
// that change.
type Mutation[T any] func(v *T) (undo func(v *T))

// Apply runs m immediately, then confirm. When confirm fails the change is
// reverted and the error is returned unchanged.
func Apply[T any](ctx context.Context, c *Cell[T], m Mutation[T], confirm func(context.Context) error) error {
	var undo func(*T)
	c.Update(func(v *T) { undo = m(v) })

	if err := confirm(ctx); err != nil {
		if undo != nil {
			c.Update(undo)
		}
		return err
	}
	return nil
}

// AfterConfirm runs call and, only if it succeeds, applies its result to the
// cell.
func AfterConfirm[T, R any](ctx context.Context, c *Cell[T], call func(context.Context) (R, error), apply func(v *T, result R)) (R, error) {
	res, err := call(ctx)
	if err != nil {
		return res, err
	}
	c.Update(func(v *T) { apply(v, res) })
	return res, nil
}
