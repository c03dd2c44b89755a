package websocket

import (
	"sync"

	"auction-realtime/pkg/logger"
)

// RoomManager maps auction identifiers to the set of subscribed
// connections. Rooms are created lazily on first join and deleted as
// soon as the last member leaves, so an empty room is never observable.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]map[string]ClientConn // productID -> connID -> conn
	log   logger.Logger
}

func NewRoomManager(log logger.Logger) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]map[string]ClientConn),
		log:   log,
	}
}

func (m *RoomManager) Join(productID string, conn ClientConn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rooms[productID] == nil {
		m.rooms[productID] = make(map[string]ClientConn)
	}
	m.rooms[productID][conn.ID()] = conn
	m.log.Info("Joined room", "conn_id", conn.ID(), "product_id", productID)
}

// Leave is idempotent: leaving a room the connection is not in is a
// no-op, not an error.
func (m *RoomManager) Leave(productID, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, exists := m.rooms[productID]
	if !exists {
		return
	}
	if _, member := members[connID]; !member {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(m.rooms, productID)
	}
	m.log.Info("Left room", "conn_id", connID, "product_id", productID)
}

// Members returns a snapshot of the room's connections. Order is
// unspecified; broadcast is unordered fan-out.
func (m *RoomManager) Members(productID string) []ClientConn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, exists := m.rooms[productID]
	if !exists {
		return nil
	}
	conns := make([]ClientConn, 0, len(members))
	for _, conn := range members {
		conns = append(conns, conn)
	}
	return conns
}

func (m *RoomManager) Count(productID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[productID])
}

// HasRoom reports whether a room currently exists for the auction.
func (m *RoomManager) HasRoom(productID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.rooms[productID]
	return exists
}
