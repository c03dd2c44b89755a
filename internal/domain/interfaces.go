package domain

import (
	"context"
	"errors"
)

// ErrAuthenticationFailed is the single outcome for every credential
// failure. The protocol deliberately does not tell clients which check
// failed.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Collaborator interfaces

type UserDirectory interface {
	// FindActiveUser returns (nil, nil) when the user does not exist.
	FindActiveUser(ctx context.Context, userID string) (*User, error)
}

type AuctionReader interface {
	// FindAuction returns (nil, nil) when the product does not exist.
	FindAuction(ctx context.Context, productID string) (*Product, error)
}

// Authenticator verifies a bearer credential and resolves its subject
// to an active principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// AuctionBroadcaster is the entry point the bid-placement service uses
// after committing a bid or changing auction status.
type AuctionBroadcaster interface {
	BroadcastBidUpdate(productID string, update *BidUpdate)
	BroadcastAuctionStatus(productID string, update *StatusUpdate)
	ConnectedCount(productID string) int
}
