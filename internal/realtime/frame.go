// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package realtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fastjson"
)

// Event names on the wire.
const (
	EventAddUser     = "addUser"
	EventSendMessage = "sendMessage"
	EventGetMessage  = "getMessage"
)

var (
	parserPool fastjson.ParserPool
	arenaPool  fastjson.ArenaPool
)

// errIgnored marks a well-formed frame for an event this client does not
// handle.
var errIgnored = errors.New("event ignored")

// Arrival is a message delivered by the gateway.
type Arrival struct {
	SenderID   string
	Text       string
	ReceivedAt time.Time
}

// =============================================================================
// OUTBOUND
// =============================================================================

func encodeAddUser(userID string) []byte {
	a := arenaPool.Get()
	defer arenaPool.Put(a)
	return encodeFrame(a, EventAddUser, a.NewString(userID))
}

func encodeSendMessage(senderID, receiverID, text string) []byte {
	a := arenaPool.Get()
	defer arenaPool.Put(a)
	data := a.NewObject()
	data.Set("senderId", a.NewString(senderID))
	data.Set("receiverId", a.NewString(receiverID))
	data.Set("text", a.NewString(text))
	return encodeFrame(a, EventSendMessage, data)
}

func encodeFrame(a *fastjson.Arena, event string, data *fastjson.Value) []byte {
	f := a.NewObject()
	f.Set("event", a.NewString(event))
	f.Set("data", data)
	return f.MarshalTo(nil)
}

// =============================================================================
// INBOUND
// =============================================================================

// decodeArrival parses a getMessage frame. It returns errIgnored for other
// events. now stamps arrivals that carry no createdAt.
func decodeArrival(frame []byte, now func() time.Time) (Arrival, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(frame)
	if err != nil {
		return Arrival{}, fmt.Errorf("malformed frame: %w", err)
	}
	event := string(v.GetStringBytes("event"))
	if event == "" {
		return Arrival{}, errors.New("malformed frame: missing event")
	}
	if event != EventGetMessage {
		return Arrival{}, errIgnored
	}

	data := v.Get("data")
	if data == nil || data.Type() != fastjson.TypeObject {
		return Arrival{}, errors.New("malformed getMessage: data is not an object")
	}
	sender := data.Get("senderId")
	if sender == nil || sender.Type() != fastjson.TypeString {
		return Arrival{}, errors.New("malformed getMessage: senderId must be a string")
	}
	a := Arrival{
		SenderID:   string(sender.GetStringBytes()),
		Text:       string(data.GetStringBytes("text")),
		ReceivedAt: now(),
	}
	if a.SenderID == "" {
		return Arrival{}, errors.New("malformed getMessage: empty senderId")
	}
	if at, ok := createdAt(data.Get("createdAt")); ok {
		a.ReceivedAt = at
	}
	return a, nil
}

// createdAt accepts epoch milliseconds or an RFC 3339 string.
func createdAt(v *fastjson.Value) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	switch v.Type() {
	case fastjson.TypeNumber:
		ms, err := v.Int64()
		if err != nil || ms <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(ms), true
	case fastjson.TypeString:
		t, err := time.Parse(time.RFC3339Nano, string(v.GetStringBytes()))
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}
