package node

import (
	"sync"

	"github.com/cuemby/burrow/pkg/transport"
	"github.com/cuemby/burrow/pkg/types"
)

// responder delivers response packets to remote callers over cached
// connections. A failed send drops the cached connection so the next
// response redials.
type responder struct {
	mu      sync.Mutex
	clients map[string]*transport.Client
}

func newResponder() *responder {
	return &responder{
		clients: make(map[string]*transport.Client),
	}
}

// Deliver sends a packet to the caller's transport listener
func (r *responder) Deliver(addr types.Address, pkt *types.Packet) error {
	key := addr.String()

	r.mu.Lock()
	client, ok := r.clients[key]
	if !ok {
		var err error
		client, err = transport.Dial(key)
		if err != nil {
			r.mu.Unlock()
			return err
		}
		r.clients[key] = client
	}
	r.mu.Unlock()

	if err := client.Send(pkt); err != nil {
		r.mu.Lock()
		if r.clients[key] == client {
			delete(r.clients, key)
		}
		r.mu.Unlock()
		client.Close()
		return err
	}
	return nil
}

// Close closes every cached connection
func (r *responder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, client := range r.clients {
		client.Close()
		delete(r.clients, key)
	}
}
