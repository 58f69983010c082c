// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package optimistic implements local-first mutations with rollback.
//
// A Cell holds view state behind a mutex. Apply changes the cell at once,
// runs the server call and reverts the change if the call fails.
// AfterConfirm is the pessimistic counterpart: the cell only changes after
// the call succeeds. A Guard rejects a second mutation on the same key while
// the first is still in flight.
//
// # Usage
//
//	release, err := guard.Acquire(postID)
//	if err != nil {
//		return err // ErrInFlight
//	}
//	defer release()
//	err = optimistic.Apply(ctx, cell, toggle, func(ctx context.Context) error {
//		return client.LikePost(ctx, postID)
//	})
package optimistic
