// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package testutil provides an in-process fake of the social backend for
// tests: the REST API on a chi router and the realtime gateway on a gorilla
// WebSocket upgrader, both served by one httptest.Server.
//
// # Key Types
//
//   - Backend: seeded users, posts, groups, conversations and listings, with
//     fault injection (FailNext), request gating (HoldNext) and call counts
//   - Gateway: the realtime side; tracks opened and closed connections and
//     routes sendMessage events to the receiver
//
// # Usage
//
//	b := testutil.NewBackend(t)
//	client := api.NewClient(&api.ClientConfig{BaseURL: b.URL()}, b.Tokens(testutil.Alice), nil)
//	b.FailNext("PUT /api/posts/{id}/like", http.StatusBadRequest, "nope")
package testutil
