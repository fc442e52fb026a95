package chat

import (
	"sync"

	"github.com/blackhat-coder/TcpChat/internal/wire"
)

// Node is one registered peer: its identity plus the connection-scoped state
// every other goroutine may touch. Current room and outbox lifecycle are
// guarded because broadcasts from other sessions race the owning session's
// read loop.
type Node struct {
	ID   string
	Name string

	mu     sync.Mutex
	roomID string
	out    chan *wire.Envelope
	closed bool
}

func newNode(id, name string, outBuffer int) *Node {
	if outBuffer <= 0 {
		outBuffer = 32
	}
	return &Node{
		ID:   id,
		Name: name,
		out:  make(chan *wire.Envelope, outBuffer),
	}
}

// RoomID returns the node's current room id, or "" when not in a room.
func (n *Node) RoomID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.roomID
}

func (n *Node) setRoom(id string) {
	n.mu.Lock()
	n.roomID = id
	n.mu.Unlock()
}

func (n *Node) clearRoom() {
	n.setRoom("")
}

// Send enqueues an envelope for the node's writer goroutine. The send never
// blocks: when the outbox is full or already closed the envelope is dropped
// and false is returned, so a slow or dead peer cannot stall a broadcast.
func (n *Node) Send(env *wire.Envelope) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return false
	}
	select {
	case n.out <- env:
		return true
	default:
		return false
	}
}

// shutdown closes the outbox exactly once, stopping the writer goroutine.
func (n *Node) shutdown() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.out)
	}
	n.mu.Unlock()
}

// NodeRegistry is the global map of registered nodes, shared by every
// session.
type NodeRegistry struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{nodes: make(map[string]*Node)}
}

// Add inserts a node, failing if the id is already registered.
func (r *NodeRegistry) Add(n *Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.nodes[n.ID]; exists {
		return ErrNodeExists
	}
	r.nodes[n.ID] = n
	return nil
}

// Remove drops a node by id. Room member sets are left untouched; only an
// explicit leave command edits those.
func (r *NodeRegistry) Remove(id string) {
	r.mu.Lock()
	delete(r.nodes, id)
	r.mu.Unlock()
}

// Get returns the node with the given id, or nil.
func (r *NodeRegistry) Get(id string) *Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nodes[id]
}

// Snapshot returns the live nodes at this instant. Broadcasts iterate the
// snapshot so the registry lock is never held while room or node locks are
// taken.
func (r *NodeRegistry) Snapshot() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nodes := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// Len returns the number of registered nodes.
func (r *NodeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
