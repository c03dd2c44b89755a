package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction-realtime/internal/domain"
	"auction-realtime/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	users map[string]string // token -> userID
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	if userID, ok := s.users[token]; ok {
		return userID, nil
	}
	return "", domain.ErrAuthenticationFailed
}

type stubAuctionReader struct {
	products map[string]*domain.Product
	err      error
}

func (s *stubAuctionReader) FindAuction(_ context.Context, productID string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products[productID], nil
}

func liveProduct(id string) *domain.Product {
	end := time.Now().Add(time.Hour)
	return &domain.Product{
		ID:            id,
		Title:         "Vintage Watch",
		AuctionStatus: domain.AuctionLive,
		CurrentBid:    100,
		BidCount:      5,
		EndTime:       &end,
	}
}

func newRouterFixture(auctions domain.AuctionReader) (*Router, *ConnectionRegistry, *RoomManager) {
	log := logger.NewNop()
	registry := NewConnectionRegistry(log)
	rooms := NewRoomManager(log)
	auth := &stubAuthenticator{users: map[string]string{"good-token": "u1"}}
	return NewRouter(auth, registry, rooms, auctions, log), registry, rooms
}

func TestRouter_MalformedMessage(t *testing.T) {
	router, registry, _ := newRouterFixture(&stubAuctionReader{})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte("{not json"))

	msg := conn.lastMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "Invalid message format", msg["message"])
	assert.False(t, conn.wasClosed(), "a malformed message never terminates the connection")
}

func TestRouter_UnknownMessageType(t *testing.T) {
	router, registry, _ := newRouterFixture(&stubAuctionReader{})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"place_bid"}`))

	msg := conn.lastMessage()
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "Unknown message type", msg["message"])
	assert.False(t, conn.wasClosed())
}

func TestRouter_JoinBeforeAuthenticate(t *testing.T) {
	router, registry, rooms := newRouterFixture(&stubAuctionReader{
		products: map[string]*domain.Product{"p1": liveProduct("p1")},
	})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"join_auction","productId":"p1"}`))

	msg := conn.lastMessage()
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "Must authenticate first", msg["message"])
	assert.False(t, rooms.HasRoom("p1"), "no room membership before authentication")
	assert.False(t, conn.wasClosed())
}

func TestRouter_AuthenticateSuccess(t *testing.T) {
	router, registry, _ := newRouterFixture(&stubAuctionReader{})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"authenticate","token":"good-token"}`))

	msg := conn.lastMessage()
	assert.Equal(t, "authenticated", msg["type"])
	assert.Equal(t, "u1", msg["userId"])
	assert.Equal(t, "Successfully authenticated", msg["message"])

	userID, authed := registry.Principal("c1")
	require.True(t, authed)
	assert.Equal(t, "u1", userID)
}

func TestRouter_AuthenticateFailureIsTerminal(t *testing.T) {
	router, registry, _ := newRouterFixture(&stubAuctionReader{})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"authenticate","token":"bad-token"}`))

	msg := conn.lastMessage()
	assert.Equal(t, "auth_error", msg["type"])
	assert.Equal(t, "Authentication failed", msg["message"])
	assert.True(t, conn.wasClosed(), "failed authentication closes the connection")

	_, authed := registry.Principal("c1")
	assert.False(t, authed)
}

func TestRouter_DuplicateAuthenticate(t *testing.T) {
	router, registry, _ := newRouterFixture(&stubAuctionReader{})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"authenticate","token":"good-token"}`))
	router.HandleMessage(context.Background(), conn, []byte(`{"type":"authenticate","token":"good-token"}`))

	msg := conn.lastMessage()
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "Already authenticated", msg["message"])

	userID, _ := registry.Principal("c1")
	assert.Equal(t, "u1", userID, "principal is set exactly once")
}

func TestRouter_JoinAuction(t *testing.T) {
	router, registry, rooms := newRouterFixture(&stubAuctionReader{
		products: map[string]*domain.Product{"p1": liveProduct("p1")},
	})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"authenticate","token":"good-token"}`))
	router.HandleMessage(context.Background(), conn, []byte(`{"type":"join_auction","productId":"p1"}`))

	msg := conn.lastMessage()
	require.Equal(t, "auction_joined", msg["type"])
	assert.Equal(t, "p1", msg["productId"])
	assert.Equal(t, "Joined auction for Vintage Watch", msg["message"])

	product, ok := msg["product"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Vintage Watch", product["title"])
	assert.Equal(t, "LIVE", product["auctionStatus"])
	assert.Equal(t, float64(100), product["currentBid"])
	assert.Equal(t, float64(5), product["bidCount"])

	assert.Equal(t, 1, rooms.Count("p1"))
	assert.Equal(t, []string{"p1"}, registry.Rooms("c1"))
}

func TestRouter_JoinUnknownAuction(t *testing.T) {
	router, registry, rooms := newRouterFixture(&stubAuctionReader{})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"authenticate","token":"good-token"}`))
	router.HandleMessage(context.Background(), conn, []byte(`{"type":"join_auction","productId":"nope"}`))

	msg := conn.lastMessage()
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "Auction not found", msg["message"])
	assert.False(t, rooms.HasRoom("nope"), "no room is created for an unknown auction")
	assert.False(t, conn.wasClosed())
}

func TestRouter_JoinAuctionLookupError(t *testing.T) {
	router, registry, rooms := newRouterFixture(&stubAuctionReader{err: errors.New("db down")})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"authenticate","token":"good-token"}`))
	router.HandleMessage(context.Background(), conn, []byte(`{"type":"join_auction","productId":"p1"}`))

	msg := conn.lastMessage()
	assert.Equal(t, "error", msg["type"])
	assert.False(t, rooms.HasRoom("p1"))
	assert.False(t, conn.wasClosed())
}

func TestRouter_LeaveAuction(t *testing.T) {
	router, registry, rooms := newRouterFixture(&stubAuctionReader{
		products: map[string]*domain.Product{"p1": liveProduct("p1")},
	})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"authenticate","token":"good-token"}`))
	router.HandleMessage(context.Background(), conn, []byte(`{"type":"join_auction","productId":"p1"}`))
	router.HandleMessage(context.Background(), conn, []byte(`{"type":"leave_auction","productId":"p1"}`))

	msg := conn.lastMessage()
	assert.Equal(t, "auction_left", msg["type"])
	assert.Equal(t, "p1", msg["productId"])
	assert.Equal(t, "Left auction", msg["message"])
	assert.False(t, rooms.HasRoom("p1"))
	assert.Empty(t, registry.Rooms("c1"))
}

func TestRouter_LeaveWithoutJoinIsNoOp(t *testing.T) {
	router, registry, rooms := newRouterFixture(&stubAuctionReader{})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"authenticate","token":"good-token"}`))
	router.HandleMessage(context.Background(), conn, []byte(`{"type":"leave_auction","productId":"p1"}`))

	msg := conn.lastMessage()
	assert.Equal(t, "auction_left", msg["type"], "leaving a never-joined room still succeeds")
	assert.False(t, rooms.HasRoom("p1"))
}

func TestRouter_MultiRoomSubscription(t *testing.T) {
	router, registry, rooms := newRouterFixture(&stubAuctionReader{
		products: map[string]*domain.Product{
			"p1": liveProduct("p1"),
			"p2": liveProduct("p2"),
		},
	})
	conn := newMockConn("c1")
	registry.Register(conn)

	router.HandleMessage(context.Background(), conn, []byte(`{"type":"authenticate","token":"good-token"}`))
	router.HandleMessage(context.Background(), conn, []byte(`{"type":"join_auction","productId":"p1"}`))
	router.HandleMessage(context.Background(), conn, []byte(`{"type":"join_auction","productId":"p2"}`))

	assert.Equal(t, 1, rooms.Count("p1"), "joining a second auction keeps the first membership")
	assert.Equal(t, 1, rooms.Count("p2"))
	assert.ElementsMatch(t, []string{"p1", "p2"}, registry.Rooms("c1"))
}
