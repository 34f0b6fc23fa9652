package agent

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/habitcanvas/timerd/internal/countdown"
	"github.com/habitcanvas/timerd/internal/protocol"
)

// Client is the controller side of an agent connection. Each Client is used
// by a single goroutine for sending and a single goroutine for receiving.
type Client struct {
	conn   net.Conn
	reader io.Reader
}

// Dial connects to the agent at addr. Besides the listener schemes it
// accepts vsock:<cid>:<port> and hvsock:<uds path>:<port>.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, r, err := dialAddr(ctx, addr)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, r), nil
}

// NewClient wraps an established connection. r may be nil to read from conn.
func NewClient(conn net.Conn, r io.Reader) *Client {
	if r == nil {
		r = conn
	}
	return &Client{conn: conn, reader: r}
}

// Send writes cmd as an inbound frame.
func (c *Client) Send(cmd countdown.Command) error {
	if err := protocol.WriteFrame(c.conn, protocol.NewInbound(cmd)); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Kind, err)
	}
	return nil
}

// Next blocks until the next outbound message arrives.
func (c *Client) Next() (protocol.Outbound, error) {
	var msg protocol.Outbound
	if err := protocol.ReadMessage(c.reader, &msg); err != nil {
		return protocol.Outbound{}, fmt.Errorf("read event: %w", err)
	}
	return msg, nil
}

// Close closes the underlying connection, which discards the remote engine.
func (c *Client) Close() error {
	return c.conn.Close()
}
