package websocket

import (
	"encoding/json"
	"sync"
)

type mockConn struct {
	id      string
	mu      sync.Mutex
	sent    [][]byte
	pings   int
	open    bool
	closed  bool
	sendErr error
	pingErr error
}

func newMockConn(id string) *mockConn {
	return &mockConn{id: id, open: true}
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Send(payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, payload)
	return nil
}

func (m *mockConn) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.Send(data)
}

func (m *mockConn) Ping() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pingErr != nil {
		return m.pingErr
	}
	m.pings++
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.closed = true
	return nil
}

func (m *mockConn) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *mockConn) received() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}

// lastMessage decodes the most recent payload into a generic map.
func (m *mockConn) lastMessage() map[string]interface{} {
	msgs := m.received()
	if len(msgs) == 0 {
		return nil
	}
	var decoded map[string]interface{}
	json.Unmarshal(msgs[len(msgs)-1], &decoded)
	return decoded
}

func (m *mockConn) wasClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockConn) pingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pings
}
