package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"auction-ledger-service/internal/clock"
	"auction-ledger-service/internal/domain/auction"
	"auction-ledger-service/internal/domain/bid"
	"auction-ledger-service/internal/domain/shared"
	"auction-ledger-service/internal/ports/inbound"
	"auction-ledger-service/internal/ports/outbound"
)

// BidService implements the bid use cases
type BidService struct {
	ledger      outbound.BidLedger
	broadcaster outbound.Broadcaster
	clk         clock.Clock
	logger      zerolog.Logger
}

type BidServiceParams struct {
	Ledger      outbound.BidLedger
	Broadcaster outbound.Broadcaster
	Clock       clock.Clock
	Logger      zerolog.Logger
}

// NewBidService creates a new bid service
func NewBidService(params BidServiceParams) *BidService {
	return &BidService{
		ledger:      params.Ledger,
		broadcaster: params.Broadcaster,
		clk:         params.Clock,
		logger:      params.Logger.With().Str("component", "bid_service").Logger(),
	}
}

// PlaceBid places a new bid on an auction. One clock read covers both the
// expiry check and the accepted bid's timestamp.
func (service *BidService) PlaceBid(ctx context.Context, req inbound.PlaceBidRequest) (*bid.Bid, error) {
	service.logger.Info().
		Str("auction_id", req.AuctionID.String()).
		Str("user_id", req.UserID).
		Str("amount", req.Amount.String()).
		Msg("Attempting to place bid")

	if strings.TrimSpace(req.UserID) == "" {
		return nil, shared.ErrBidderRequired
	}
	if !req.Amount.IsPositive() {
		service.logger.Warn().Str("amount", req.Amount.String()).Msg("Invalid bid amount")
		return nil, shared.ErrInvalidBidAmount
	}

	now := service.clk.Now()
	accepted, err := service.ledger.PlaceBid(ctx, req.AuctionID, req.UserID, req.Amount, now)
	if err != nil {
		service.logger.Warn().Err(err).
			Str("auction_id", req.AuctionID.String()).
			Str("user_id", req.UserID).
			Msg("Bid rejected")
		return nil, err
	}

	service.logger.Info().
		Str("auction_id", accepted.AuctionID.String()).
		Int64("bid_id", accepted.Seq).
		Str("user_id", accepted.UserID).
		Str("amount", accepted.Amount.String()).
		Msg("Bid placed successfully")

	if service.broadcaster != nil {
		event := outbound.Event{
			Type:      outbound.EventTypeBidPlaced,
			AuctionID: accepted.AuctionID,
			Data: map[string]interface{}{
				"bid_id":    accepted.Seq,
				"user_id":   accepted.UserID,
				"amount":    accepted.Amount.Float64(),
				"timestamp": accepted.Timestamp.UnixMilli(),
			},
			Timestamp: accepted.Timestamp.Unix(),
		}
		if err := service.broadcaster.Publish(ctx, accepted.AuctionID, event); err != nil {
			// Delivery is best-effort; the bid is already committed.
			service.logger.Error().Err(err).Str("auction_id", accepted.AuctionID.String()).Msg("Failed to broadcast bid event")
		}
	}

	return accepted, nil
}

// GetBidHistory retrieves bids for an auction in acceptance order
func (service *BidService) GetBidHistory(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	return service.ledger.History(ctx, auctionID)
}

// TimeRemaining computes the display-only remaining window for an auction.
// Acceptance decisions never use this; they check status and end time with
// the clock read captured inside PlaceBid.
func (service *BidService) TimeRemaining(a *auction.Auction, now time.Time) time.Duration {
	return a.TimeRemaining(now)
}
