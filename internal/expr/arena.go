package expr

import (
	"sync"

	"github.com/google/uuid"
)

// Arena owns the nodes of one modeling session and hands out their integer
// identities. Keying everything by arena index keeps the memoization cache
// and the registry plain tables and makes the DAG serializable.
//
// The arena is safe for concurrent construction; one compilation pass still
// requires its own cache (see internal/conic).
type Arena struct {
	session uuid.UUID

	mu    sync.Mutex
	next  NodeID
	nodes map[NodeID]Node
}

func NewArena() *Arena {
	// IDs start at 1; 0 is reserved for ConstantID.
	return &Arena{session: uuid.New(), next: 1, nodes: make(map[NodeID]Node)}
}

// Session returns the identity of the modeling session this arena belongs
// to. Nodes capture it at construction, and the compiler refuses caches
// tagged with a different session.
func (a *Arena) Session() uuid.UUID { return a.session }

// NextID reserves a fresh identity. Used by constraints, which have identity
// but are not nodes.
func (a *Arena) NextID() NodeID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	return id
}

// Put records a node under its own ID.
func (a *Arena) Put(n Node) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nodes[n.ID()] = n
}

// Node looks up a node by identity.
func (a *Arena) Node(id NodeID) (Node, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.nodes[id]
	return n, ok
}

// Len returns the number of registered nodes.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nodes)
}

// Clear drops all registered nodes. Identities are not reused.
func (a *Arena) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nodes = make(map[NodeID]Node)
}
