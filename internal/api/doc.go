// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the social backend's REST API.
//
// Every authenticated call takes its bearer token from a TokenSource at
// request time, so a logout takes effect immediately. Requests are paced by a
// client-side rate limiter and are never retried.
//
// # Key Types
//
//   - Client: endpoint methods for auth, posts, comments, messages, groups,
//     users, leaderboard and casting calls
//   - ClientConfig: base URL, timeout, rate limit and user agent
//   - ClientError: failure classified by ErrorType (network, timeout,
//     unauthorized, rejected, not found, server, invalid response)
//
// # Usage
//
//	client := api.NewClient(api.DefaultConfig(), sessionManager, log)
//	posts, err := client.ListPosts(ctx)
//	if api.IsUnauthorized(err) {
//	    // prompt for login
//	}
//	if api.IsRejected(err) {
//	    fmt.Println(api.Message(err)) // server supplied text
//	}
package api
