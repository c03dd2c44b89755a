package websocket

import (
	"context"
	"encoding/json"

	"auction-realtime/internal/domain"
	"auction-realtime/pkg/logger"
)

// Router interprets inbound client messages and drives the
// per-connection state machine: unauthenticated, authenticated,
// authenticated and subscribed. Authentication failure is terminal for
// the connection; every other error leaves it open.
type Router struct {
	auth     domain.Authenticator
	registry *ConnectionRegistry
	rooms    *RoomManager
	auctions domain.AuctionReader
	log      logger.Logger
}

func NewRouter(auth domain.Authenticator, registry *ConnectionRegistry,
	rooms *RoomManager, auctions domain.AuctionReader, log logger.Logger) *Router {
	return &Router{
		auth:     auth,
		registry: registry,
		rooms:    rooms,
		auctions: auctions,
		log:      log,
	}
}

func (r *Router) HandleMessage(ctx context.Context, conn ClientConn, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		// One malformed message never terminates the connection.
		conn.SendJSON(newErrorMessage("Invalid message format"))
		return
	}

	switch msg.Type {
	case msgTypeAuthenticate:
		r.handleAuthenticate(ctx, conn, msg.Token)
	case msgTypeJoinAuction:
		r.handleJoin(ctx, conn, msg.ProductID)
	case msgTypeLeaveAuction:
		r.handleLeave(conn, msg.ProductID)
	default:
		conn.SendJSON(newErrorMessage("Unknown message type"))
	}
}

func (r *Router) handleAuthenticate(ctx context.Context, conn ClientConn, token string) {
	if _, authed := r.registry.Principal(conn.ID()); authed {
		// The principal is set exactly once per connection.
		conn.SendJSON(newErrorMessage("Already authenticated"))
		return
	}

	userID, err := r.auth.Authenticate(ctx, token)
	if err != nil {
		r.log.Info("Authentication failed, closing connection", "conn_id", conn.ID())
		conn.SendJSON(newAuthErrorMessage())
		conn.Close()
		return
	}

	r.registry.SetPrincipal(conn.ID(), userID)
	conn.SendJSON(newAuthenticatedMessage(userID))
	r.log.Info("Connection authenticated", "conn_id", conn.ID(), "user_id", userID)
}

func (r *Router) handleJoin(ctx context.Context, conn ClientConn, productID string) {
	if _, authed := r.registry.Principal(conn.ID()); !authed {
		conn.SendJSON(newErrorMessage("Must authenticate first"))
		return
	}
	if productID == "" {
		conn.SendJSON(newErrorMessage("Product ID required"))
		return
	}

	// The snapshot is read live at join time so it reflects the current
	// auction state, not state as of connection start.
	product, err := r.auctions.FindAuction(ctx, productID)
	if err != nil {
		r.log.Error("Failed to load auction", "product_id", productID, "error", err)
		conn.SendJSON(newErrorMessage("Failed to load auction"))
		return
	}
	if product == nil {
		conn.SendJSON(newErrorMessage("Auction not found"))
		return
	}

	r.rooms.Join(productID, conn)
	r.registry.AddRoom(conn.ID(), productID)
	conn.SendJSON(newAuctionJoinedMessage(product))
}

func (r *Router) handleLeave(conn ClientConn, productID string) {
	if _, authed := r.registry.Principal(conn.ID()); !authed {
		conn.SendJSON(newErrorMessage("Must authenticate first"))
		return
	}

	r.rooms.Leave(productID, conn.ID())
	r.registry.RemoveRoom(conn.ID(), productID)
	conn.SendJSON(newAuctionLeftMessage(productID))
}
