package websocket

import (
	"encoding/json"

	"auction-realtime/pkg/logger"
)

// Dispatcher fans an event out to every member of an auction's room.
// Delivery is best-effort, at-most-once per connection per call.
type Dispatcher struct {
	registry *ConnectionRegistry
	rooms    *RoomManager
	log      logger.Logger
}

func NewDispatcher(registry *ConnectionRegistry, rooms *RoomManager, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		rooms:    rooms,
		log:      log,
	}
}

// BroadcastToAuction serializes the payload once and delivers it to
// every open member of the room. Members whose transport is no longer
// open are pruned from the room as a side effect, so broadcast time
// doubles as a cleanup pass alongside the liveness monitor.
func (d *Dispatcher) BroadcastToAuction(productID string, payload interface{}) {
	members := d.rooms.Members(productID)
	if len(members) == 0 {
		// Expected for auctions with no current watchers.
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		d.log.Error("Failed to marshal broadcast payload", "product_id", productID, "error", err)
		return
	}

	for _, conn := range members {
		if !conn.IsOpen() {
			d.prune(productID, conn.ID())
			continue
		}
		if err := conn.Send(data); err != nil {
			d.log.Warn("Failed to deliver broadcast", "conn_id", conn.ID(),
				"product_id", productID, "error", err)
			d.prune(productID, conn.ID())
		}
	}
}

func (d *Dispatcher) prune(productID, connID string) {
	d.rooms.Leave(productID, connID)
	d.registry.RemoveRoom(connID, productID)
	d.log.Info("Pruned stale room member", "conn_id", connID, "product_id", productID)
}
