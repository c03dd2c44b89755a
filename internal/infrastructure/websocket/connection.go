package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"auction-realtime/pkg/logger"

	"github.com/gorilla/websocket"
)

// ClientConn is one accepted transport-level connection. The concrete
// implementation wraps a gorilla conn; tests substitute their own.
type ClientConn interface {
	ID() string
	Send(payload []byte) error
	SendJSON(v interface{}) error
	Ping() error
	Close() error
	IsOpen() bool
}

type wsConn struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration
	log          logger.Logger

	writeMu sync.Mutex

	mu   sync.RWMutex
	open bool
}

func newWSConn(id string, conn *websocket.Conn, writeTimeout time.Duration, log logger.Logger) *wsConn {
	return &wsConn{
		id:           id,
		conn:         conn,
		writeTimeout: writeTimeout,
		log:          log,
		open:         true,
	}
}

func (c *wsConn) ID() string {
	return c.id
}

func (c *wsConn) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		// A failed write leaves the gorilla conn unusable.
		c.markClosed()
		return err
	}
	return nil
}

func (c *wsConn) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Send(data)
}

func (c *wsConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

func (c *wsConn) Close() error {
	c.markClosed()
	return c.conn.Close()
}

func (c *wsConn) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

func (c *wsConn) markClosed() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
}
