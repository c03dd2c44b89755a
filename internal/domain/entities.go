package domain

import (
	"time"
)

type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "SCHEDULED"
	AuctionLive      AuctionStatus = "LIVE"
	AuctionEnded     AuctionStatus = "ENDED"
)

// Product is the auction read model used to build the join snapshot.
// It is always read live from the repository, never cached here.
type Product struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	AuctionStatus AuctionStatus `json:"auctionStatus"`
	CurrentBid    float64       `json:"currentBid"`
	BidCount      int           `json:"bidCount"`
	EndTime       *time.Time    `json:"endTime"`
}

// User is the user-directory view of a principal. Only existence and
// active status matter to this service.
type User struct {
	ID       string
	IsActive bool
}

// Bid is the committed-bid detail carried inside a bid update. The
// bid-placement service owns its content; we forward it verbatim.
type Bid struct {
	ID         string    `json:"id"`
	Amount     float64   `json:"amount"`
	BidTime    time.Time `json:"bidTime"`
	UserID     string    `json:"userId"`
	BidderName string    `json:"bidderName"`
}

// BidUpdate is the payload broadcast to a room after a bid commits.
type BidUpdate struct {
	Bid        Bid     `json:"bid"`
	CurrentBid float64 `json:"currentBid"`
	BidCount   int     `json:"bidCount"`
	Message    string  `json:"message"`
}

// StatusUpdate is the payload broadcast when an auction changes state.
type StatusUpdate struct {
	Status  AuctionStatus `json:"status"`
	EndTime *time.Time    `json:"endTime,omitempty"`
	Message string        `json:"message"`
}
