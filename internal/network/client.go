package network

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/amalg/gridroute/internal/grid"
	"github.com/amalg/gridroute/internal/search"
)

const (
	dialTimeout    = 5 * time.Second
	requestTimeout = 10 * time.Second
)

// RemoteError is an error reported by the server for one request.
type RemoteError struct {
	RequestID uint64
	Message   string
}

func (e *RemoteError) Error() string {
	return "server error: " + e.Message
}

// Client queries a route server. Requests are serialized; one is in flight
// at a time.
type Client struct {
	conn      net.Conn
	sessionID string
	grid      *grid.Grid
	pacing    Pacing
	nextID    uint64
	mu        sync.Mutex
}

// NewClient connects to the server and fetches its grid.
func NewClient(addr, name string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	c, err := handshake(conn, name)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func handshake(conn net.Conn, name string) (*Client, error) {
	conn.SetDeadline(time.Now().Add(requestTimeout))
	defer conn.SetDeadline(time.Time{})

	if err := Encode(conn, MsgHello, HelloMsg{Name: name}); err != nil {
		return nil, fmt.Errorf("send hello: %w", err)
	}

	env, err := Decode(conn)
	if err != nil {
		return nil, fmt.Errorf("read welcome: %w", err)
	}

	if env.Type == MsgError {
		var errMsg ErrorMsg
		DecodePayload(env, &errMsg)
		return nil, &RemoteError{Message: errMsg.Message}
	}

	if env.Type != MsgWelcome {
		return nil, fmt.Errorf("expected welcome, got %s", env.Type)
	}

	var welcome WelcomeMsg
	if err := DecodePayload(env, &welcome); err != nil {
		return nil, fmt.Errorf("decode welcome: %w", err)
	}

	g, err := grid.Build(welcome.Matrix)
	if err != nil {
		return nil, fmt.Errorf("welcome grid: %w", err)
	}

	return &Client{
		conn:      conn,
		sessionID: welcome.SessionID,
		grid:      g,
		pacing:    welcome.Pacing,
	}, nil
}

// SessionID returns the ID the server assigned to this connection.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Grid returns the grid the server searches on.
func (c *Client) Grid() *grid.Grid {
	return c.grid
}

// Pacing returns the playback speed the server's scenario asks for.
func (c *Client) Pacing() Pacing {
	return c.pacing
}

// Search asks the server for a route. A failed search on the server side
// is returned as *RemoteError. Result.Scores is not sent and stays nil.
func (c *Client) Search(origin, target grid.Point) (search.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID

	c.conn.SetDeadline(time.Now().Add(requestTimeout))
	defer c.conn.SetDeadline(time.Time{})

	if err := Encode(c.conn, MsgSearch, SearchMsg{RequestID: id, Origin: origin, Target: target}); err != nil {
		return search.Result{}, fmt.Errorf("send search: %w", err)
	}

	env, err := Decode(c.conn)
	if err != nil {
		return search.Result{}, fmt.Errorf("read result: %w", err)
	}

	switch env.Type {
	case MsgResult:
		var msg ResultMsg
		if err := DecodePayload(env, &msg); err != nil {
			return search.Result{}, fmt.Errorf("decode result: %w", err)
		}
		if msg.RequestID != id {
			return search.Result{}, fmt.Errorf("result for request %d, want %d", msg.RequestID, id)
		}
		return msg.Result, nil
	case MsgError:
		var msg ErrorMsg
		DecodePayload(env, &msg)
		return search.Result{}, &RemoteError{RequestID: msg.RequestID, Message: msg.Message}
	default:
		return search.Result{}, fmt.Errorf("unexpected message %s", env.Type)
	}
}

// Close disconnects from the server.
func (c *Client) Close() error {
	return c.conn.Close()
}
