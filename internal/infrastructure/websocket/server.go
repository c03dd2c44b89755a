package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"auction-realtime/internal/config"
	"auction-realtime/internal/domain"
	"auction-realtime/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// RealtimeServer owns the WebSocket listener and wires the registry,
// rooms, dispatcher, liveness monitor and router together. Construct it
// once at process start and pass the handle to whatever triggers
// broadcasts; there is no package-level instance.
type RealtimeServer struct {
	cfg        config.RealtimeConfig
	registry   *ConnectionRegistry
	rooms      *RoomManager
	dispatcher *Dispatcher
	monitor    *LivenessMonitor
	router     *Router
	httpServer *http.Server
	log        logger.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	closeOnce sync.Once
}

func NewRealtimeServer(cfg config.RealtimeConfig, auth domain.Authenticator,
	auctions domain.AuctionReader, log logger.Logger) *RealtimeServer {
	registry := NewConnectionRegistry(log)
	rooms := NewRoomManager(log)

	ctx, cancel := context.WithCancel(context.Background())

	s := &RealtimeServer{
		cfg:        cfg,
		registry:   registry,
		rooms:      rooms,
		dispatcher: NewDispatcher(registry, rooms, log),
		monitor:    NewLivenessMonitor(registry, rooms, cfg.PingInterval, log),
		router:     NewRouter(auth, registry, rooms, auctions, log),
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}

	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleConnection)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: r,
	}

	return s
}

// Start begins listening and starts the liveness monitor. Calling it
// again is a no-op; there is exactly one listener per server.
func (s *RealtimeServer) Start() error {
	var startErr error
	s.startOnce.Do(func() {
		if err := s.monitor.Start(); err != nil {
			startErr = err
			return
		}

		s.log.Info("Starting realtime server", "address", s.httpServer.Addr)
		go func() {
			if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("Realtime server failed", "error", err)
			}
		}()
	})
	return startErr
}

// Close stops the liveness monitor, closes the listener and tears down
// every open connection.
func (s *RealtimeServer) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		s.log.Info("Closing realtime server")
		s.monitor.Stop()
		s.cancel()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		closeErr = s.httpServer.Shutdown(ctx)

		for _, conn := range s.registry.Connections() {
			conn.Close()
			s.cleanup(conn.ID())
		}
	})
	return closeErr
}

// BroadcastBidUpdate is the entry point the bid-placement service calls
// after committing a bid.
func (s *RealtimeServer) BroadcastBidUpdate(productID string, update *domain.BidUpdate) {
	s.dispatcher.BroadcastToAuction(productID, newBidUpdateMessage(productID, update))
}

// BroadcastAuctionStatus notifies subscribers of an auction state change.
func (s *RealtimeServer) BroadcastAuctionStatus(productID string, update *domain.StatusUpdate) {
	s.dispatcher.BroadcastToAuction(productID, newAuctionStatusMessage(productID, update))
}

// ConnectedCount reports the current size of an auction's room.
func (s *RealtimeServer) ConnectedCount(productID string) int {
	return s.rooms.Count(productID)
}

func (s *RealtimeServer) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsc := newWSConn(uuid.NewString(), conn, s.cfg.WriteTimeout, s.log)
	s.registry.Register(wsc)

	conn.SetReadLimit(s.cfg.MaxMessageSize)
	conn.SetPongHandler(func(string) error {
		s.registry.MarkAlive(wsc.ID())
		return nil
	})

	go s.readLoop(wsc, conn)
}

// readLoop processes one connection's inbound messages serially, which
// is what guarantees a join sent right after authenticate is handled
// after authentication completes.
func (s *RealtimeServer) readLoop(wsc *wsConn, conn *websocket.Conn) {
	defer func() {
		wsc.Close()
		s.cleanup(wsc.ID())
	}()

	limiter := rate.NewLimiter(rate.Limit(s.cfg.MessagesPerSec), s.cfg.MessageBurst)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.log.Debug("Read loop ended", "conn_id", wsc.ID(), "error", err)
			return
		}
		if !limiter.Allow() {
			wsc.SendJSON(newErrorMessage("Too many messages"))
			continue
		}
		s.router.HandleMessage(s.ctx, wsc, raw)
	}
}

func (s *RealtimeServer) cleanup(connID string) {
	for _, productID := range s.registry.Rooms(connID) {
		s.rooms.Leave(productID, connID)
	}
	s.registry.Remove(connID)
}

func (s *RealtimeServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"service":     "auction-realtime",
		"connections": s.registry.Count(),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}
