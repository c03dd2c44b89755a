package handlers

import (
	"net/http"

	"auction-realtime/internal/domain"
	"auction-realtime/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BroadcastHandler exposes the broadcast entry points the bid-placement
// service calls after committing a bid, plus a watcher-count endpoint.
type BroadcastHandler struct {
	broadcaster domain.AuctionBroadcaster
	log         logger.Logger
}

func NewBroadcastHandler(broadcaster domain.AuctionBroadcaster, log logger.Logger) *BroadcastHandler {
	return &BroadcastHandler{
		broadcaster: broadcaster,
		log:         log,
	}
}

func (h *BroadcastHandler) Register(e *echo.Echo) {
	internal := e.Group("/internal")
	internal.POST("/auctions/:id/bid-update", h.PostBidUpdate)
	internal.POST("/auctions/:id/status", h.PostAuctionStatus)

	api := e.Group("/api/v1")
	api.GET("/auctions/:id/watchers", h.GetWatchers)
}

func (h *BroadcastHandler) PostBidUpdate(c echo.Context) error {
	productID := c.Param("id")

	var update domain.BidUpdate
	if err := c.Bind(&update); err != nil {
		h.log.Error("Failed to bind bid update", "product_id", productID, "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	h.broadcaster.BroadcastBidUpdate(productID, &update)

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"product_id": productID,
		"watchers":   h.broadcaster.ConnectedCount(productID),
	})
}

func (h *BroadcastHandler) PostAuctionStatus(c echo.Context) error {
	productID := c.Param("id")

	var update domain.StatusUpdate
	if err := c.Bind(&update); err != nil {
		h.log.Error("Failed to bind status update", "product_id", productID, "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	switch update.Status {
	case domain.AuctionScheduled, domain.AuctionLive, domain.AuctionEnded:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid auction status"})
	}

	h.broadcaster.BroadcastAuctionStatus(productID, &update)

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"product_id": productID,
		"watchers":   h.broadcaster.ConnectedCount(productID),
	})
}

func (h *BroadcastHandler) GetWatchers(c echo.Context) error {
	productID := c.Param("id")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"product_id": productID,
		"watchers":   h.broadcaster.ConnectedCount(productID),
	})
}
