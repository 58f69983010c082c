// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the domain types exchanged with the social backend.
//
// The backend is document oriented: identifiers travel as "_id" and any
// reference to a user may arrive either as a bare id string or as an embedded
// user document. UserRef absorbs that difference so the rest of the client can
// always read an ID.
//
// # Key Types
//
//   - Session: the signed-in identity plus its bearer token
//   - User, UserRef: full user documents and flexible references to them
//   - Conversation, Participant: read-only direct message threads
//   - Message, MessageID: chat messages whose identity is either confirmed
//     by the server or synthesized locally
//   - Post, Comment: feed entries with a liker set and ordered comments
//   - Group: communities with an admin who is always a member
//   - LeaderboardEntry, CastingCall: read-only listings
//
// # Usage
//
//	var post model.Post
//	_ = json.Unmarshal(body, &post)
//	if post.IsLikedBy(sess.UserID) {
//	    fmt.Println("liked,", post.LikeCount(), "total")
//	}
//
//	id := model.NewLocalID()
//	fmt.Println(id.IsLocal()) // true
package model
