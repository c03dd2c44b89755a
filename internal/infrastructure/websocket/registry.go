package websocket

import (
	"sync"

	"auction-realtime/pkg/logger"
)

// connState is the registry's bookkeeping for one live connection.
type connState struct {
	conn   ClientConn
	userID string
	rooms  map[string]struct{}
	alive  bool
}

// ConnectionRegistry owns the per-connection state records. Every other
// component holds only non-owning references handed out here.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[string]*connState
	log   logger.Logger
}

func NewConnectionRegistry(log logger.Logger) *ConnectionRegistry {
	return &ConnectionRegistry{
		conns: make(map[string]*connState),
		log:   log,
	}
}

func (r *ConnectionRegistry) Register(conn ClientConn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[conn.ID()] = &connState{
		conn:  conn,
		rooms: make(map[string]struct{}),
		alive: true,
	}
	r.log.Info("Connection registered", "conn_id", conn.ID())
}

// SetPrincipal attaches the authenticated user to the connection.
// Unknown ids mean the connection was already torn down.
func (r *ConnectionRegistry) SetPrincipal(connID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.conns[connID]
	if !exists {
		r.log.Debug("SetPrincipal on unknown connection", "conn_id", connID)
		return
	}
	state.userID = userID
}

// Principal returns the user bound to the connection, if authenticated.
func (r *ConnectionRegistry) Principal(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.conns[connID]
	if !exists || state.userID == "" {
		return "", false
	}
	return state.userID, true
}

func (r *ConnectionRegistry) AddRoom(connID, productID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.conns[connID]
	if !exists {
		r.log.Debug("AddRoom on unknown connection", "conn_id", connID)
		return
	}
	state.rooms[productID] = struct{}{}
}

func (r *ConnectionRegistry) RemoveRoom(connID, productID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, exists := r.conns[connID]; exists {
		delete(state.rooms, productID)
	}
}

// Rooms returns the auction ids the connection is subscribed to.
func (r *ConnectionRegistry) Rooms(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.conns[connID]
	if !exists {
		return nil
	}
	rooms := make([]string, 0, len(state.rooms))
	for productID := range state.rooms {
		rooms = append(rooms, productID)
	}
	return rooms
}

// MarkAlive records that the peer answered the last liveness probe.
func (r *ConnectionRegistry) MarkAlive(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, exists := r.conns[connID]; exists {
		state.alive = true
	}
}

// MarkProbe clears the alive flag ahead of a new probe and reports
// whether the previous one was answered.
func (r *ConnectionRegistry) MarkProbe(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.conns[connID]
	if !exists {
		return false
	}
	wasAlive := state.alive
	state.alive = false
	return wasAlive
}

func (r *ConnectionRegistry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[connID]; !exists {
		return
	}
	delete(r.conns, connID)
	r.log.Info("Connection removed", "conn_id", connID)
}

// Connections returns a snapshot of the live connections, safe to
// iterate without holding the registry lock.
func (r *ConnectionRegistry) Connections() []ClientConn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]ClientConn, 0, len(r.conns))
	for _, state := range r.conns {
		conns = append(conns, state.conn)
	}
	return conns
}

func (r *ConnectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
