package realtime

import (
	"sync"

	"github.com/example/talent-pass/internal/metrics"
)

// Transport is the writable side of a client connection. *websocket.Conn
// satisfies it; tests substitute in-memory fakes.
type Transport interface {
	WriteJSON(v any) error
	Close() error
}

// Connection is one live client connection and its subscription state. All
// writes to the underlying transport are serialized through the connection.
type Connection struct {
	transport Transport

	writeMu sync.Mutex
	closed  bool

	// Subscription state, guarded by the owning registry's lock.
	passCode string
	linkIDs  map[string]struct{}
}

// send writes one message, fire-and-forget. A connection that is closed or
// fails a write is skipped and marked unwritable.
func (c *Connection) send(msg outboundMessage) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return false
	}
	if err := c.transport.WriteJSON(msg); err != nil {
		c.closed = true
		return false
	}
	return true
}

func (c *Connection) close() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.transport.Close()
}

// ConnectionRegistry tracks live connections and their subscriptions, indexed
// by pass-code and by link-id. It holds no business logic.
type ConnectionRegistry struct {
	mu     sync.RWMutex
	conns  map[*Connection]struct{}
	byPass map[string]map[*Connection]struct{}
	byLink map[string]map[*Connection]struct{}
}

// NewConnectionRegistry returns an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		conns:  make(map[*Connection]struct{}),
		byPass: make(map[string]map[*Connection]struct{}),
		byLink: make(map[string]map[*Connection]struct{}),
	}
}

// Register adds a connection for the given transport and returns its handle.
func (r *ConnectionRegistry) Register(transport Transport) *Connection {
	conn := &Connection{
		transport: transport,
		linkIDs:   make(map[string]struct{}),
	}
	r.mu.Lock()
	r.conns[conn] = struct{}{}
	r.mu.Unlock()
	metrics.ActiveConnections.Inc()
	return conn
}

// Unregister removes the connection from every subscription index and closes
// its transport. After it returns no fan-out call delivers to the connection.
func (r *ConnectionRegistry) Unregister(conn *Connection) {
	r.mu.Lock()
	if _, ok := r.conns[conn]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, conn)
	if conn.passCode != "" {
		r.removeFromIndex(r.byPass, conn.passCode, conn)
	}
	for linkID := range conn.linkIDs {
		r.removeFromIndex(r.byLink, linkID, conn)
	}
	conn.passCode = ""
	conn.linkIDs = make(map[string]struct{})
	r.mu.Unlock()

	metrics.ActiveConnections.Dec()
	conn.close()
}

// SubscribePass subscribes the connection to a pass-code. A connection has at
// most one pass-code subscription; a new one replaces the previous.
func (r *ConnectionRegistry) SubscribePass(conn *Connection, passCode string) {
	if passCode == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[conn]; !ok {
		return
	}
	if conn.passCode != "" {
		r.removeFromIndex(r.byPass, conn.passCode, conn)
	}
	conn.passCode = passCode
	r.addToIndex(r.byPass, passCode, conn)
}

// SubscribeLink adds a link-id subscription to the connection.
func (r *ConnectionRegistry) SubscribeLink(conn *Connection, linkID string) {
	if linkID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[conn]; !ok {
		return
	}
	conn.linkIDs[linkID] = struct{}{}
	r.addToIndex(r.byLink, linkID, conn)
}

// UnsubscribeLink removes a link-id subscription from the connection.
func (r *ConnectionRegistry) UnsubscribeLink(conn *Connection, linkID string) {
	if linkID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[conn]; !ok {
		return
	}
	delete(conn.linkIDs, linkID)
	r.removeFromIndex(r.byLink, linkID, conn)
}

func (r *ConnectionRegistry) addToIndex(index map[string]map[*Connection]struct{}, key string, conn *Connection) {
	set, ok := index[key]
	if !ok {
		set = make(map[*Connection]struct{})
		index[key] = set
	}
	set[conn] = struct{}{}
}

func (r *ConnectionRegistry) removeFromIndex(index map[string]map[*Connection]struct{}, key string, conn *Connection) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(index, key)
	}
}

// connectionsForLink snapshots the subscribers of a link-id.
func (r *ConnectionRegistry) connectionsForLink(linkID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.byLink[linkID])
}

// connectionsForPass snapshots the subscribers of a pass-code.
func (r *ConnectionRegistry) connectionsForPass(passCode string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.byPass[passCode])
}

// connectionsForPassCodes snapshots the subscribers of any of the pass-codes,
// each connection at most once.
func (r *ConnectionRegistry) connectionsForPassCodes(passCodes []string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[*Connection]struct{})
	var out []*Connection
	for _, code := range passCodes {
		for conn := range r.byPass[code] {
			if _, ok := seen[conn]; ok {
				continue
			}
			seen[conn] = struct{}{}
			out = append(out, conn)
		}
	}
	return out
}

// allConnections snapshots every live connection.
func (r *ConnectionRegistry) allConnections() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return collect(r.conns)
}

func collect(set map[*Connection]struct{}) []*Connection {
	if len(set) == 0 {
		return nil
	}
	out := make([]*Connection, 0, len(set))
	for conn := range set {
		out = append(out, conn)
	}
	return out
}
