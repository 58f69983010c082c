// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nvakumar/ssfrontend/internal/testutil"
)

// fakeConn feeds frames from a channel and records writes.
type fakeConn struct {
	in     chan []byte
	closed chan struct{}

	mu      sync.Mutex
	written [][]byte
	closes  int
	readErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16), closed: make(chan struct{})}
}

func (f *fakeConn) ReadFrame() ([]byte, error) {
	select {
	case frame, ok := <-f.in:
		if !ok {
			f.mu.Lock()
			defer f.mu.Unlock()
			return nil, f.readErr
		}
		return frame, nil
	case <-f.closed:
		return nil, errors.New("use of closed connection")
	}
}

func (f *fakeConn) WriteFrame(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	if f.closes == 1 {
		close(f.closed)
	}
	return nil
}

func (f *fakeConn) drop(err error) {
	f.mu.Lock()
	f.readErr = err
	f.mu.Unlock()
	close(f.in)
}

func (f *fakeConn) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func recv(t *testing.T, ch <-chan Arrival) Arrival {
	t.Helper()
	select {
	case a, ok := <-ch:
		require.True(t, ok, "arrivals closed")
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for arrival")
	}
	return Arrival{}
}

// =============================================================================
// FRAME TESTS
// =============================================================================

func TestEncodeFrames(t *testing.T) {
	var f struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(encodeAddUser("u1"), &f))
	assert.Equal(t, EventAddUser, f.Event)
	assert.JSONEq(t, `"u1"`, string(f.Data))

	require.NoError(t, json.Unmarshal(encodeSendMessage("a", "b", `say "hi"`), &f))
	assert.Equal(t, EventSendMessage, f.Event)
	assert.JSONEq(t, `{"senderId":"a","receiverId":"b","text":"say \"hi\""}`, string(f.Data))
}

func TestDecodeArrival(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	now := func() time.Time { return fixed }

	tests := []struct {
		name    string
		frame   string
		want    Arrival
		ignored bool
		wantErr bool
	}{
		{
			name:  "basic",
			frame: `{"event":"getMessage","data":{"senderId":"b","text":"hi"}}`,
			want:  Arrival{SenderID: "b", Text: "hi", ReceivedAt: fixed},
		},
		{
			name:  "created at millis",
			frame: `{"event":"getMessage","data":{"senderId":"b","text":"hi","createdAt":1700000000000}}`,
			want:  Arrival{SenderID: "b", Text: "hi", ReceivedAt: time.UnixMilli(1700000000000)},
		},
		{
			name:  "created at string",
			frame: `{"event":"getMessage","data":{"senderId":"b","text":"","createdAt":"2025-05-01T12:00:00Z"}}`,
			want:  Arrival{SenderID: "b", ReceivedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)},
		},
		{name: "other event", frame: `{"event":"getUsers","data":[]}`, ignored: true},
		{name: "not json", frame: `nope`, wantErr: true},
		{name: "no event", frame: `{"data":{}}`, wantErr: true},
		{name: "numeric sender", frame: `{"event":"getMessage","data":{"senderId":7,"text":"x"}}`, wantErr: true},
		{name: "data not object", frame: `{"event":"getMessage","data":"x"}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeArrival([]byte(tc.frame), now)
			switch {
			case tc.ignored:
				if !errors.Is(err, errIgnored) {
					t.Errorf("err = %v, want errIgnored", err)
				}
			case tc.wantErr:
				if err == nil || errors.Is(err, errIgnored) {
					t.Errorf("err = %v, want decode error", err)
				}
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.want.SenderID, got.SenderID)
				assert.Equal(t, tc.want.Text, got.Text)
				assert.True(t, tc.want.ReceivedAt.Equal(got.ReceivedAt), "ReceivedAt = %v", got.ReceivedAt)
			}
		})
	}
}

// =============================================================================
// CHANNEL TESTS
// =============================================================================

func TestChannel_DeliversAndSkipsBadFrames(t *testing.T) {
	conn := newFakeConn()
	ch := NewChannel(conn, 4, zaptest.NewLogger(t).Sugar())
	defer ch.Close()

	conn.in <- []byte(`garbage`)
	conn.in <- []byte(`{"event":"getUsers","data":[]}`)
	conn.in <- []byte(`{"event":"getMessage","data":{"senderId":"b","text":"one"}}`)
	conn.in <- []byte(`{"event":"getMessage","data":{"senderId":"c","text":"two"}}`)

	assert.Equal(t, "one", recv(t, ch.Arrivals()).Text)
	assert.Equal(t, "c", recv(t, ch.Arrivals()).SenderID)
}

func TestChannel_CloseIsIdempotent(t *testing.T) {
	conn := newFakeConn()
	ch := NewChannel(conn, 0, nil)

	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close())

	if n := conn.closeCount(); n != 1 {
		t.Errorf("Conn.Close called %d times, want 1", n)
	}
	if _, ok := <-ch.Arrivals(); ok {
		t.Error("Arrivals should be closed after Close")
	}
	if err := ch.SendMessage("a", "b", "late"); !errors.Is(err, ErrClosed) {
		t.Errorf("SendMessage after Close = %v, want ErrClosed", err)
	}
	assert.NoError(t, ch.Err(), "local close is not a transport error")
}

func TestChannel_TransportFailure(t *testing.T) {
	conn := newFakeConn()
	ch := NewChannel(conn, 0, zaptest.NewLogger(t).Sugar())

	conn.drop(errors.New("reset by peer"))

	select {
	case _, ok := <-ch.Arrivals():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("arrivals not closed after transport failure")
	}
	assert.EqualError(t, ch.Err(), "reset by peer")
	require.NoError(t, ch.Close())
}

func TestChannel_WritesFrames(t *testing.T) {
	conn := newFakeConn()
	ch := NewChannel(conn, 0, nil)
	defer ch.Close()

	require.NoError(t, ch.AddUser("u1"))
	require.NoError(t, ch.SendMessage("u1", "u2", "hey"))

	conn.mu.Lock()
	defer conn.mu.Unlock()
	require.Len(t, conn.written, 2)
	assert.Contains(t, string(conn.written[0]), `"addUser"`)
	assert.Contains(t, string(conn.written[1]), `"receiverId":"u2"`)
}

func TestOpen_DialError(t *testing.T) {
	dialErr := errors.New("refused")
	_, err := Open(context.Background(), Config{
		URL:    "ws://unused",
		Dialer: func(context.Context, string, string) (Conn, error) { return nil, dialErr },
	}, nil)
	assert.ErrorIs(t, err, dialErr)
}

// =============================================================================
// GATEWAY TESTS
// =============================================================================

func TestOpen_AgainstGateway(t *testing.T) {
	b := testutil.NewBackend(t)
	ctx := context.Background()

	alice, err := Open(ctx, Config{URL: b.WSURL(), Token: "tok-a", HandshakeTimeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	defer alice.Close()
	bob, err := Open(ctx, Config{URL: b.WSURL(), Token: "tok-b"}, nil)
	require.NoError(t, err)
	defer bob.Close()

	require.NoError(t, alice.AddUser(testutil.Alice))
	require.NoError(t, bob.AddUser(testutil.Bob))
	require.True(t, b.Gateway.WaitForUser(testutil.Alice, 2*time.Second))
	require.True(t, b.Gateway.WaitForUser(testutil.Bob, 2*time.Second))

	require.NoError(t, bob.SendMessage(testutil.Bob, testutil.Alice, "call me"))

	a := recv(t, alice.Arrivals())
	assert.Equal(t, testutil.Bob, a.SenderID)
	assert.Equal(t, "call me", a.Text)
	assert.Contains(t, b.Gateway.AuthHeaders(), "Bearer tok-a")

	require.NoError(t, alice.Close())
	assert.True(t, testutil.WaitFor(2*time.Second, func() bool { return b.Gateway.Closed() == 1 }))
	assert.Equal(t, 2, b.Gateway.Opened())
}
