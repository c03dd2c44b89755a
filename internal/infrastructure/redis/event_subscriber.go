package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"auction-realtime/internal/domain"
	"auction-realtime/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const auctionEventsChannel = "auction_events"

// auctionEvent is the envelope the bid-placement service publishes
// after a successful commit. Exactly one of Bid or Status is set,
// matching the Kind discriminator.
type auctionEvent struct {
	Kind      string               `json:"kind"`
	ProductID string               `json:"productId"`
	Bid       *domain.BidUpdate    `json:"bid,omitempty"`
	Status    *domain.StatusUpdate `json:"status,omitempty"`
}

const (
	eventKindBid    = "bid"
	eventKindStatus = "status"
)

// RedisEventSubscriber feeds committed-bid and status-change events from
// the bid-placement service into the broadcaster.
type RedisEventSubscriber struct {
	client *redis.Client
	log    logger.Logger
}

func NewRedisEventSubscriber(client *redis.Client, log logger.Logger) *RedisEventSubscriber {
	return &RedisEventSubscriber{
		client: client,
		log:    log,
	}
}

func (s *RedisEventSubscriber) Subscribe(ctx context.Context, broadcaster domain.AuctionBroadcaster) error {
	pubsub := s.client.Subscribe(ctx, auctionEventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	s.log.Info("Subscribed to auction events", "channel", auctionEventsChannel)

	for {
		select {
		case msg := <-ch:
			if err := s.handlePayload(broadcaster, msg.Payload); err != nil {
				s.log.Error("Failed to handle event", "payload", msg.Payload, "error", err)
			}

		case <-ctx.Done():
			s.log.Info("Event subscriber stopped")
			return ctx.Err()
		}
	}
}

func (s *RedisEventSubscriber) handlePayload(broadcaster domain.AuctionBroadcaster, payload string) error {
	var event auctionEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return err
	}
	if event.ProductID == "" {
		return fmt.Errorf("event missing product id")
	}

	switch event.Kind {
	case eventKindBid:
		if event.Bid == nil {
			return fmt.Errorf("bid event missing bid payload")
		}
		broadcaster.BroadcastBidUpdate(event.ProductID, event.Bid)
	case eventKindStatus:
		if event.Status == nil {
			return fmt.Errorf("status event missing status payload")
		}
		broadcaster.BroadcastAuctionStatus(event.ProductID, event.Status)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
	return nil
}
