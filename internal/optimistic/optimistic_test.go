// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package optimistic

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	liked bool
	count int
	tags  []string
}

func cloneCounter(c counter) counter {
	c.tags = append([]string(nil), c.tags...)
	return c
}

func toggle(v *counter) func(*counter) {
	prevLiked, prevCount := v.liked, v.count
	v.liked = !v.liked
	if v.liked {
		v.count++
	} else {
		v.count--
	}
	return func(v *counter) { v.liked, v.count = prevLiked, prevCount }
}

// =============================================================================
// GUARD TESTS
// =============================================================================

func TestGuard_RejectsSameKey(t *testing.T) {
	var g Guard

	release, err := g.Acquire("p1")
	require.NoError(t, err)

	_, err = g.Acquire("p1")
	if !errors.Is(err, ErrInFlight) {
		t.Errorf("second Acquire = %v, want ErrInFlight", err)
	}

	other, err := g.Acquire("p2")
	require.NoError(t, err, "different keys proceed independently")
	other()

	release()
	release()
	assert.False(t, g.InFlight("p1"))

	again, err := g.Acquire("p1")
	require.NoError(t, err)
	again()
}

func TestGuard_Concurrent(t *testing.T) {
	var g Guard
	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0

	start := make(chan struct{})
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := g.Acquire("k"); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if won != 1 {
		t.Errorf("%d goroutines acquired the key, want 1", won)
	}
}

// =============================================================================
// APPLY TESTS
// =============================================================================

func TestApply_Success(t *testing.T) {
	c := NewCell(counter{}, cloneCounter)
	var seenDuringCall counter

	err := Apply(context.Background(), c, toggle, func(context.Context) error {
		seenDuringCall = c.Get()
		return nil
	})
	require.NoError(t, err)

	assert.True(t, seenDuringCall.liked, "change is visible before confirmation")
	assert.Equal(t, counter{liked: true, count: 1}, c.Get())
}

func TestApply_FailureRestoresExactly(t *testing.T) {
	c := NewCell(counter{liked: true, count: 7}, cloneCounter)
	boom := errors.New("rejected")

	err := Apply(context.Background(), c, toggle, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, counter{liked: true, count: 7}, c.Get())
}

func TestApply_UndoLeavesConcurrentChanges(t *testing.T) {
	c := NewCell(counter{}, cloneCounter)

	err := Apply(context.Background(), c, toggle, func(context.Context) error {
		c.Update(func(v *counter) { v.tags = append(v.tags, "comment") })
		return errors.New("fail")
	})
	require.Error(t, err)

	got := c.Get()
	assert.Equal(t, 0, got.count)
	assert.Equal(t, []string{"comment"}, got.tags)
}

func TestApply_ToggleTwiceRestores(t *testing.T) {
	c := NewCell(counter{count: 3}, cloneCounter)
	ok := func(context.Context) error { return nil }

	require.NoError(t, Apply(context.Background(), c, toggle, ok))
	require.NoError(t, Apply(context.Background(), c, toggle, ok))
	assert.Equal(t, counter{count: 3}, c.Get())
}

func TestAfterConfirm(t *testing.T) {
	c := NewCell(counter{}, cloneCounter)
	var changes int
	c.OnChange(func(counter) { changes++ })

	_, err := AfterConfirm(context.Background(), c,
		func(context.Context) ([]string, error) { return nil, errors.New("nope") },
		func(v *counter, tags []string) { v.tags = tags })
	require.Error(t, err)
	assert.Empty(t, c.Get().tags)
	assert.Equal(t, 0, changes, "failed call must not touch the cell")

	res, err := AfterConfirm(context.Background(), c,
		func(context.Context) ([]string, error) { return []string{"a", "b"}, nil },
		func(v *counter, tags []string) { v.tags = tags })
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res)
	assert.Equal(t, []string{"a", "b"}, c.Get().tags)
	assert.Equal(t, 1, changes)
}

func TestCell_GetReturnsCopy(t *testing.T) {
	c := NewCell(counter{tags: []string{"x"}}, cloneCounter)
	got := c.Get()
	got.tags[0] = "mutated"
	assert.Equal(t, "x", c.Get().tags[0])
}
