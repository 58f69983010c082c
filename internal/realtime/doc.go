// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package realtime connects to the chat gateway over a WebSocket.
//
// Frames are JSON text messages of the form {"event": name, "data": payload}.
// The client emits addUser and sendMessage and listens for getMessage; any
// other inbound event is ignored. There is no reconnect: when the socket
// drops, the Arrivals channel closes and Err reports why.
//
// # Key Types
//
//   - Channel: one open gateway connection, owned by a single chat view
//   - Conn: the frame-level socket, implemented over gorilla/websocket
//   - Arrival: a message pushed by the gateway
//
// # Usage
//
//	ch, err := realtime.Open(ctx, realtime.Config{URL: url, Token: tok}, log)
//	if err != nil {
//		return err
//	}
//	defer ch.Close()
//	_ = ch.AddUser(self)
//	for a := range ch.Arrivals() {
//		...
//	}
package realtime
