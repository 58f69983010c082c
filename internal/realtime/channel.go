// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nvakumar/ssfrontend/internal/logging"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("realtime channel closed")

// DefaultArrivalBuffer is the Arrivals channel capacity when none is set.
const DefaultArrivalBuffer = 64

// Config configures Open.
type Config struct {
	URL   string
	Token string

	// HandshakeTimeout bounds the WebSocket upgrade (default: 10s).
	HandshakeTimeout time.Duration

	// ArrivalBuffer is the capacity of the Arrivals channel.
	ArrivalBuffer int

	// Dialer overrides the gorilla/websocket dialer.
	Dialer Dialer
}

// Channel is a single gateway connection. Writes are serialized; arrivals
// are delivered in order on Arrivals until the connection ends.
type Channel struct {
	conn Conn
	log  *zap.SugaredLogger
	now  func() time.Time

	arrivals chan Arrival
	done     chan struct{}
	loopDone chan struct{}

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error

	mu      sync.Mutex
	readErr error
}

// Open dials the gateway and starts reading.
func Open(ctx context.Context, cfg Config, log *zap.SugaredLogger) (*Channel, error) {
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	dial := cfg.Dialer
	if dial == nil {
		dial = WebSocketDialer(cfg.HandshakeTimeout)
	}
	conn, err := dial(ctx, cfg.URL, cfg.Token)
	if err != nil {
		return nil, err
	}
	return NewChannel(conn, cfg.ArrivalBuffer, log), nil
}

// NewChannel wraps an established connection and starts its read loop.
func NewChannel(conn Conn, buffer int, log *zap.SugaredLogger) *Channel {
	if buffer <= 0 {
		buffer = DefaultArrivalBuffer
	}
	c := &Channel{
		conn:     conn,
		log:      logging.OrNop(log),
		now:      time.Now,
		arrivals: make(chan Arrival, buffer),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// AddUser registers userID with the gateway so it receives messages
// addressed to it.
func (c *Channel) AddUser(userID string) error {
	return c.write(encodeAddUser(userID))
}

// SendMessage relays text to receiverID. Delivery is not acknowledged.
func (c *Channel) SendMessage(senderID, receiverID, text string) error {
	return c.write(encodeSendMessage(senderID, receiverID, text))
}

func (c *Channel) write(frame []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteFrame(frame)
}

// Arrivals yields getMessage deliveries. It is closed when the connection
// ends, whether by Close or by a transport failure.
func (c *Channel) Arrivals() <-chan Arrival {
	return c.arrivals
}

// Done is closed once Close has been called.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Err returns the transport error that ended the read loop, or nil when the
// channel was closed locally or is still running.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// Close shuts the connection down. It is safe to call more than once; the
// underlying Conn is closed exactly once and Close waits for the read loop
// to exit.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.closeErr = c.conn.Close()
	})
	<-c.loopDone
	return c.closeErr
}

func (c *Channel) readLoop() {
	defer close(c.loopDone)
	defer close(c.arrivals)

	for {
		frame, err := c.conn.ReadFrame()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.mu.Lock()
				c.readErr = err
				c.mu.Unlock()
				c.log.Warnw("realtime connection lost", "error", err)
			}
			return
		}

		a, err := decodeArrival(frame, c.now)
		if errors.Is(err, errIgnored) {
			continue
		}
		if err != nil {
			c.log.Debugw("dropping realtime frame", "error", err)
			continue
		}

		select {
		case c.arrivals <- a:
		case <-c.done:
			return
		}
	}
}
