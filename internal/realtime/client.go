// Package realtime implements the display side of the event stream: a
// websocket client that dials the queue service, hands every event to a
// handler, and keeps retrying on a fixed interval when the link drops.
package realtime

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/heryandp/antrian/internal/hub"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Handler receives each valid event in arrival order. It runs on the
// read loop goroutine, so it must not block for long.
type Handler func(event hub.Event)

type Client struct {
	url      string
	interval time.Duration
	handler  Handler
	dialer   *websocket.Dialer

	mu    sync.Mutex
	state State
}

const defaultReconnectInterval = 5 * time.Second

func NewClient(url string, interval time.Duration, handler Handler) *Client {
	if interval <= 0 {
		interval = defaultReconnectInterval
	}
	return &Client{
		url:      url,
		interval: interval,
		handler:  handler,
		dialer:   websocket.DefaultDialer,
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Run connects and re-connects until the context is cancelled. Each
// failed attempt or dropped connection waits one interval before the
// next dial, so a dead server is probed at a steady rate.
func (c *Client) Run(ctx context.Context) {
	defer c.setState(StateDisconnected)

	for {
		if ctx.Err() != nil {
			return
		}

		c.setState(StateConnecting)
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.setState(StateDisconnected)
			log.Printf("realtime dial %s: %v", c.url, err)
			if !c.wait(ctx) {
				return
			}
			continue
		}

		c.setState(StateConnected)
		log.Printf("realtime connected to %s", c.url)
		c.readLoop(ctx, conn)
		c.setState(StateDisconnected)

		if !c.wait(ctx) {
			return
		}
	}
}

// readLoop drains the connection until it errors or the context is
// cancelled. A closer goroutine turns cancellation into a read error so
// the loop never blocks past shutdown.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("realtime read: %v", err)
			}
			return
		}
		event, ok := hub.ParseEvent(data)
		if !ok {
			log.Printf("realtime drop malformed frame: %s", data)
			continue
		}
		if c.handler != nil {
			c.handler(event)
		}
	}
}

func (c *Client) wait(ctx context.Context) bool {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
