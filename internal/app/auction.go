package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"auction-ledger-service/internal/adapters/scheduler"
	"auction-ledger-service/internal/clock"
	"auction-ledger-service/internal/domain/auction"
	"auction-ledger-service/internal/domain/shared"
	"auction-ledger-service/internal/ports/inbound"
	"auction-ledger-service/internal/ports/outbound"
)

// AuctionService implements the auction lifecycle use cases and
// scheduler.AuctionEndService
type AuctionService struct {
	store       outbound.AuctionStore
	broadcaster outbound.Broadcaster
	clk         clock.Clock
	scheduler   *scheduler.AuctionScheduler
	logger      zerolog.Logger
}

type AuctionServiceParams struct {
	Store       outbound.AuctionStore
	Broadcaster outbound.Broadcaster
	Clock       clock.Clock
	Scheduler   *scheduler.AuctionScheduler
	Logger      zerolog.Logger
}

// NewAuctionService creates a new auction service
func NewAuctionService(params AuctionServiceParams) *AuctionService {
	return &AuctionService{
		store:       params.Store,
		broadcaster: params.Broadcaster,
		clk:         params.Clock,
		scheduler:   params.Scheduler,
		logger:      params.Logger.With().Str("component", "auction_service").Logger(),
	}
}

// CreateAuction validates the request and creates a new active auction
func (service *AuctionService) CreateAuction(ctx context.Context, req inbound.CreateAuctionRequest) (*auction.Auction, error) {
	service.logger.Info().
		Str("item_name", req.ItemName).
		Str("seller_id", req.SellerID).
		Str("base_price", req.BasePrice.String()).
		Int64("duration_minutes", req.DurationMinutes).
		Msg("Attempting to create auction")

	if err := validateCreateRequest(req); err != nil {
		service.logger.Warn().Err(err).Msg("Auction creation rejected")
		return nil, err
	}

	now := service.clk.Now()
	a := &auction.Auction{
		ID:                uuid.New(),
		ItemName:          req.ItemName,
		ItemDescription:   req.ItemDescription,
		Category:          req.Category,
		SellerID:          req.SellerID,
		BasePrice:         req.BasePrice,
		CurrentHighestBid: req.BasePrice,
		StartTime:         now,
		EndTime:           now.Add(time.Duration(req.DurationMinutes) * time.Minute),
		Status:            auction.StatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := service.store.Create(ctx, a); err != nil {
		service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to save auction")
		return nil, err
	}

	service.logger.Info().
		Str("auction_id", a.ID.String()).
		Str("seller_id", a.SellerID).
		Time("end_time", a.EndTime).
		Msg("Auction created successfully")

	if service.scheduler != nil {
		if err := service.scheduler.ScheduleAuction(a.ID, a.EndTime); err != nil {
			// The lazy expiry path keeps reads correct without the sweep.
			service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to schedule auction for expiration")
		}
	}

	if service.broadcaster != nil {
		event := outbound.Event{
			Type:      outbound.EventTypeAuctionCreated,
			AuctionID: a.ID,
			Data: map[string]interface{}{
				"item_name":  a.ItemName,
				"category":   a.Category,
				"base_price": a.BasePrice.Float64(),
				"end_time":   a.EndTime.UnixMilli(),
			},
			Timestamp: now.Unix(),
		}
		if err := service.broadcaster.Publish(ctx, a.ID, event); err != nil {
			service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to broadcast auction created event")
		}
	}

	return a, nil
}

// GetAuction retrieves an auction by ID, applying the expiry rule as of the
// read so the observed status is never ACTIVE past the end time.
func (service *AuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	a, err := service.store.ExpireIfDue(ctx, auctionID, service.clk.Now())
	if err != nil {
		service.logger.Debug().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to retrieve auction")
		return nil, err
	}
	return a, nil
}

// ListAuctions retrieves all auctions with expiry applied as of the read
func (service *AuctionService) ListAuctions(ctx context.Context) ([]*auction.Auction, error) {
	auctions, err := service.store.List(ctx)
	if err != nil {
		service.logger.Error().Err(err).Msg("Failed to list auctions")
		return nil, err
	}

	now := service.clk.Now()
	for i, a := range auctions {
		if a.IsActive() && a.Expired(now) {
			refreshed, err := service.store.ExpireIfDue(ctx, a.ID, now)
			if err != nil {
				service.logger.Error().Err(err).Str("auction_id", a.ID.String()).Msg("Failed to expire auction during list")
				continue
			}
			auctions[i] = refreshed
		}
	}
	return auctions, nil
}

// SetScheduler sets the auction scheduler
func (service *AuctionService) SetScheduler(s *scheduler.AuctionScheduler) {
	service.scheduler = s
}

// CloseAuctionForScheduler implements scheduler.AuctionEndService
func (service *AuctionService) CloseAuctionForScheduler(ctx context.Context, auctionID uuid.UUID) (*shared.AuctionEndResult, error) {
	a, err := service.store.ExpireIfDue(ctx, auctionID, service.clk.Now())
	if err != nil {
		return nil, err
	}

	result := &shared.AuctionEndResult{
		AuctionID: auctionID,
		Status:    string(a.Status),
	}
	if a.HasBids() {
		winner := a.CurrentHighestBidder
		finalPrice := a.CurrentHighestBid
		result.WinnerID = &winner
		result.FinalPrice = &finalPrice

		service.logger.Info().
			Str("auction_id", auctionID.String()).
			Str("winner_id", winner).
			Str("final_price", finalPrice.String()).
			Msg("Auction ended with winner")
	} else {
		service.logger.Info().Str("auction_id", auctionID.String()).Msg("Auction ended with no bids")
	}

	return result, nil
}

func validateCreateRequest(req inbound.CreateAuctionRequest) error {
	switch {
	case strings.TrimSpace(req.ItemName) == "":
		return shared.ErrItemNameRequired
	case strings.TrimSpace(req.ItemDescription) == "":
		return shared.ErrDescriptionRequired
	case strings.TrimSpace(req.Category) == "":
		return shared.ErrCategoryRequired
	case strings.TrimSpace(req.SellerID) == "":
		return shared.ErrSellerRequired
	case !req.BasePrice.IsPositive():
		return shared.ErrInvalidBasePrice
	case req.DurationMinutes <= 0:
		return shared.ErrInvalidDuration
	}
	return nil
}
