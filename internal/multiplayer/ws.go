package multiplayer

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	apperrors "github.com/pverge/blindtest/internal/errors"
)

// broadcastBuffer is how many inbound broadcasts are held for a slow
// consumer before further ones are dropped.
const broadcastBuffer = 32

// outFrame is one outbound message: an intent body addressed to a named
// destination.
type outFrame struct {
	Destination string `json:"destination"`
	Body        any    `json:"body"`
}

// Client is a websocket implementation of Port.
type Client struct {
	playerID string

	logMu sync.Mutex
	logf  func(format string, args ...interface{})

	mu   sync.Mutex
	conn *websocket.Conn

	broadcasts chan Broadcast
	done       chan struct{}
	closeOnce  sync.Once
}

// Dial connects to the multiplayer server and starts consuming the game
// topic.
func Dial(ctx context.Context, serverURL, playerID string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", serverURL, err)
	}

	c := &Client{
		playerID:   playerID,
		conn:       conn,
		broadcasts: make(chan Broadcast, broadcastBuffer),
		done:       make(chan struct{}),
	}
	go c.readLoop(conn)
	return c, nil
}

// SetLogFunc enables diagnostic logging. Safe to call while the read
// loop is running; logf has its own lock because send logs while
// holding the connection lock.
func (c *Client) SetLogFunc(logf func(format string, args ...interface{})) {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	c.logf = logf
}

func (c *Client) log(format string, args ...interface{}) {
	c.logMu.Lock()
	logf := c.logf
	c.logMu.Unlock()
	if logf != nil {
		logf(format, args...)
	}
}

// PlayerID returns the local player's id.
func (c *Client) PlayerID() string {
	return c.playerID
}

// SendStart publishes the start-game intent.
func (c *Client) SendStart() error {
	return c.send(DestStart, startIntent{Type: "START_GAME"})
}

// SendReady publishes the player-ready intent.
func (c *Client) SendReady() error {
	return c.send(DestReady, readyIntent{PlayerID: c.playerID})
}

// SendAnswer publishes an answer submission.
func (c *Client) SendAnswer(answer string) error {
	return c.send(DestSubmit, submitIntent{PlayerID: c.playerID, Answer: answer})
}

// AnnounceStart and AnnounceAnswer satisfy the session's announcer port.
func (c *Client) AnnounceStart() error          { return c.SendStart() }
func (c *Client) AnnounceAnswer(a string) error { return c.SendAnswer(a) }

// Broadcasts returns the inbound broadcast stream. The channel closes
// when the connection is torn down.
func (c *Client) Broadcasts() <-chan Broadcast {
	return c.broadcasts
}

// Close tears down the connection and stops the read loop.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			err = c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()
	})
	return err
}

// send writes an intent frame. Intents are fire-and-forget: while the
// channel is disconnected they are dropped, not queued, and the caller
// gets ErrChannelUnavailable to log.
func (c *Client) send(destination string, body any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		c.log("[sync] dropped intent to %s: disconnected", destination)
		return apperrors.ErrChannelUnavailable
	}

	if err := c.conn.WriteJSON(outFrame{Destination: destination, Body: body}); err != nil {
		c.log("[sync] dropped intent to %s: %v", destination, err)
		return fmt.Errorf("%w: %v", apperrors.ErrChannelUnavailable, err)
	}
	return nil
}

// readLoop consumes the game topic until the connection drops.
func (c *Client) readLoop(conn *websocket.Conn) {
	defer close(c.broadcasts)

	for {
		var b Broadcast
		if err := conn.ReadJSON(&b); err != nil {
			select {
			case <-c.done:
			default:
				c.log("[sync] read loop ended: %v", err)
				c.mu.Lock()
				c.conn = nil
				c.mu.Unlock()
			}
			return
		}

		select {
		case c.broadcasts <- b:
		default:
			c.log("[sync] dropped %s broadcast: consumer too slow", b.Type)
		}
	}
}
