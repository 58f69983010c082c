// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// Frame is the realtime envelope exchanged with the gateway.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SentMessage is a sendMessage event as the gateway received it.
type SentMessage struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

type gatewayConn struct {
	ws   *websocket.Conn
	mu   sync.Mutex
	user string
}

func (c *gatewayConn) send(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(time.Second))
	return c.ws.WriteJSON(Frame{Event: event, Data: raw})
}

// Gateway is a fake realtime relay. It registers users on addUser and
// forwards sendMessage events to the receiver as getMessage.
type Gateway struct {
	t        testing.TB
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*gatewayConn]struct{}
	users  map[string]*gatewayConn
	sent   []SentMessage
	opened int
	closed int
	tokens []string
}

func newGateway(t testing.TB) *Gateway {
	return &Gateway{
		t:        t,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:    make(map[*gatewayConn]struct{}),
		users:    make(map[string]*gatewayConn),
	}
}

// ServeHTTP upgrades the request and serves frames until the peer leaves.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &gatewayConn{ws: ws}

	g.mu.Lock()
	g.conns[c] = struct{}{}
	g.opened++
	g.tokens = append(g.tokens, r.Header.Get("Authorization"))
	g.mu.Unlock()

	defer g.drop(c)

	for {
		var f Frame
		if err := ws.ReadJSON(&f); err != nil {
			return
		}
		g.dispatch(c, f)
	}
}

func (g *Gateway) dispatch(c *gatewayConn, f Frame) {
	switch f.Event {
	case "addUser":
		var userID string
		if json.Unmarshal(f.Data, &userID) != nil || userID == "" {
			return
		}
		g.mu.Lock()
		c.user = userID
		g.users[userID] = c
		g.mu.Unlock()

	case "sendMessage":
		var m SentMessage
		if json.Unmarshal(f.Data, &m) != nil {
			return
		}
		g.mu.Lock()
		g.sent = append(g.sent, m)
		target := g.users[m.ReceiverID]
		g.mu.Unlock()
		if target != nil {
			_ = target.send("getMessage", map[string]string{"senderId": m.SenderID, "text": m.Text})
		}
	}
}

func (g *Gateway) drop(c *gatewayConn) {
	_ = c.ws.Close()
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.conns[c]; !ok {
		return
	}
	delete(g.conns, c)
	if c.user != "" && g.users[c.user] == c {
		delete(g.users, c.user)
	}
	g.closed++
}

func (g *Gateway) closeAll() {
	g.mu.Lock()
	conns := make([]*gatewayConn, 0, len(g.conns))
	for c := range g.conns {
		conns = append(conns, c)
	}
	g.mu.Unlock()
	for _, c := range conns {
		_ = c.ws.Close()
	}
}

// Push delivers a getMessage frame to userID as if senderID had sent text.
// It reports whether userID was connected.
func (g *Gateway) Push(userID, senderID, text string) bool {
	g.mu.Lock()
	c := g.users[userID]
	g.mu.Unlock()
	if c == nil {
		return false
	}
	return c.send("getMessage", map[string]string{"senderId": senderID, "text": text}) == nil
}

// PushRaw writes an arbitrary text frame to userID.
func (g *Gateway) PushRaw(userID string, frame []byte) bool {
	g.mu.Lock()
	c := g.users[userID]
	g.mu.Unlock()
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, frame) == nil
}

// Sent returns every sendMessage event received so far.
func (g *Gateway) Sent() []SentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]SentMessage(nil), g.sent...)
}

// Opened counts accepted connections.
func (g *Gateway) Opened() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.opened
}

// Closed counts connections that have gone away.
func (g *Gateway) Closed() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Open counts live connections.
func (g *Gateway) Open() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.conns)
}

// AuthHeaders returns the Authorization header of each handshake.
func (g *Gateway) AuthHeaders() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.tokens...)
}

// Registered reports whether userID has sent addUser on a live connection.
func (g *Gateway) Registered(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.users[userID]
	return ok
}

// WaitFor polls cond until it holds or timeout elapses.
func WaitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// WaitForUser waits until userID is registered with the gateway.
func (g *Gateway) WaitForUser(userID string, timeout time.Duration) bool {
	return WaitFor(timeout, func() bool { return g.Registered(userID) })
}
