package transport

import (
	"fmt"
	"net"
	"sync"

	"github.com/cuemby/burrow/pkg/types"
)

// Client is a thin dialer for injecting packets into a remote node
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to a node's transport listener
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Send writes one packet frame to the connection
func (c *Client) Send(pkt *types.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WritePacket(c.conn, pkt)
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}
