package websocket

import (
	"time"

	"auction-realtime/internal/domain"
)

// Inbound message types.
const (
	msgTypeAuthenticate = "authenticate"
	msgTypeJoinAuction  = "join_auction"
	msgTypeLeaveAuction = "leave_auction"
)

// clientMessage is the inbound envelope. A single struct covers the
// closed set of message kinds; the type discriminator decides which
// fields are meaningful.
type clientMessage struct {
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	ProductID string `json:"productId,omitempty"`
}

type authenticatedMessage struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

func newAuthenticatedMessage(userID string) authenticatedMessage {
	return authenticatedMessage{
		Type:    "authenticated",
		UserID:  userID,
		Message: "Successfully authenticated",
	}
}

type authErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newAuthErrorMessage() authErrorMessage {
	return authErrorMessage{
		Type:    "auth_error",
		Message: "Authentication failed",
	}
}

type auctionJoinedMessage struct {
	Type      string          `json:"type"`
	ProductID string          `json:"productId"`
	Product   *domain.Product `json:"product"`
	Message   string          `json:"message"`
}

func newAuctionJoinedMessage(product *domain.Product) auctionJoinedMessage {
	return auctionJoinedMessage{
		Type:      "auction_joined",
		ProductID: product.ID,
		Product:   product,
		Message:   "Joined auction for " + product.Title,
	}
}

type auctionLeftMessage struct {
	Type      string `json:"type"`
	ProductID string `json:"productId"`
	Message   string `json:"message"`
}

func newAuctionLeftMessage(productID string) auctionLeftMessage {
	return auctionLeftMessage{
		Type:      "auction_left",
		ProductID: productID,
		Message:   "Left auction",
	}
}

type bidUpdateMessage struct {
	Type       string     `json:"type"`
	ProductID  string     `json:"productId"`
	Bid        domain.Bid `json:"bid"`
	CurrentBid float64    `json:"currentBid"`
	BidCount   int        `json:"bidCount"`
	Message    string     `json:"message"`
}

func newBidUpdateMessage(productID string, update *domain.BidUpdate) bidUpdateMessage {
	return bidUpdateMessage{
		Type:       "bid_update",
		ProductID:  productID,
		Bid:        update.Bid,
		CurrentBid: update.CurrentBid,
		BidCount:   update.BidCount,
		Message:    update.Message,
	}
}

type auctionStatusMessage struct {
	Type      string               `json:"type"`
	ProductID string               `json:"productId"`
	Status    domain.AuctionStatus `json:"status"`
	EndTime   *time.Time           `json:"endTime,omitempty"`
	Message   string               `json:"message"`
}

func newAuctionStatusMessage(productID string, update *domain.StatusUpdate) auctionStatusMessage {
	return auctionStatusMessage{
		Type:      "auction_status",
		ProductID: productID,
		Status:    update.Status,
		EndTime:   update.EndTime,
		Message:   update.Message,
	}
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newErrorMessage(message string) errorMessage {
	return errorMessage{
		Type:    "error",
		Message: message,
	}
}
