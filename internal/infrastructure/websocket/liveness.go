package websocket

import (
	"fmt"
	"time"

	"auction-realtime/pkg/logger"

	"github.com/robfig/cron/v3"
)

// LivenessMonitor evicts peers that stop answering probes. Transport
// disconnects are not always observable as close events, so the
// probe/response cycle is what keeps the registry and rooms accurate.
//
// The policy is one-miss-evicts: a connection whose previous probe went
// unanswered is dropped on the next sweep.
type LivenessMonitor struct {
	cron     *cron.Cron
	registry *ConnectionRegistry
	rooms    *RoomManager
	interval time.Duration
	log      logger.Logger
}

func NewLivenessMonitor(registry *ConnectionRegistry, rooms *RoomManager,
	interval time.Duration, log logger.Logger) *LivenessMonitor {
	return &LivenessMonitor{
		cron:     cron.New(cron.WithSeconds()),
		registry: registry,
		rooms:    rooms,
		interval: interval,
		log:      log,
	}
}

func (m *LivenessMonitor) Start() error {
	m.log.Info("Starting liveness monitor", "interval", m.interval)

	_, err := m.cron.AddFunc(fmt.Sprintf("@every %s", m.interval), m.Sweep)
	if err != nil {
		return err
	}

	m.cron.Start()
	return nil
}

func (m *LivenessMonitor) Stop() {
	m.log.Info("Stopping liveness monitor")
	m.cron.Stop()
}

// Sweep runs one probe cycle over every registered connection.
func (m *LivenessMonitor) Sweep() {
	for _, conn := range m.registry.Connections() {
		if !m.registry.MarkProbe(conn.ID()) {
			m.evict(conn)
			continue
		}
		if err := conn.Ping(); err != nil {
			m.log.Warn("Liveness probe failed", "conn_id", conn.ID(), "error", err)
			m.evict(conn)
		}
	}
}

func (m *LivenessMonitor) evict(conn ClientConn) {
	connID := conn.ID()
	m.log.Info("Evicting unresponsive connection", "conn_id", connID)

	conn.Close()
	for _, productID := range m.registry.Rooms(connID) {
		m.rooms.Leave(productID, connID)
	}
	m.registry.Remove(connID)
}
