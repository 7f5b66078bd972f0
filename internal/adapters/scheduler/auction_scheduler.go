package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"auction-ledger-service/internal/domain/shared"
	"auction-ledger-service/internal/ports/outbound"
)

const expirationKey = "auction:expirations"

// AuctionEndService closes a due auction and reports the final state. The
// transition is idempotent, so a sweep racing a lazy expiry-on-read is safe.
type AuctionEndService interface {
	CloseAuctionForScheduler(ctx context.Context, auctionID uuid.UUID) (*shared.AuctionEndResult, error)
}

// AuctionScheduler closes auctions at their end time and broadcasts the
// result to watchers. Deadlines live in a Redis sorted set scored by the
// auction's end time, so a sweep survives restarts. Reads never depend on the
// sweep: the store applies the expiry rule lazily on every read as well.
type AuctionScheduler struct {
	redis          *redis.Client
	auctionService AuctionEndService
	broadcaster    outbound.Broadcaster
	logger         zerolog.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
}

type AuctionSchedulerParams struct {
	RedisClient    *redis.Client
	AuctionService AuctionEndService
	Broadcaster    outbound.Broadcaster
	Logger         zerolog.Logger
}

func NewAuctionScheduler(params AuctionSchedulerParams) *AuctionScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &AuctionScheduler{
		redis:          params.RedisClient,
		auctionService: params.AuctionService,
		broadcaster:    params.Broadcaster,
		logger:         params.Logger.With().Str("component", "auction_scheduler").Logger(),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// ScheduleAuction adds an auction to the expiration schedule
func (s *AuctionScheduler) ScheduleAuction(auctionID uuid.UUID, endTime time.Time) error {
	err := s.redis.ZAdd(s.ctx, expirationKey, redis.Z{
		Score:  float64(endTime.Unix()),
		Member: auctionID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to schedule auction: %w", err)
	}

	s.logger.Info().
		Str("auction_id", auctionID.String()).
		Time("end_time", endTime).
		Msg("Auction scheduled for expiration")
	return nil
}

// Start begins the scheduler loop
func (s *AuctionScheduler) Start() {
	s.logger.Info().Msg("Starting auction scheduler")
	s.wg.Add(1)
	go s.schedulerLoop()
}

// Stop gracefully stops the scheduler
func (s *AuctionScheduler) Stop() {
	s.logger.Info().Msg("Stopping auction scheduler")
	s.cancel()
	s.wg.Wait()
}

func (s *AuctionScheduler) schedulerLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkExpiredAuctions()
		case <-s.ctx.Done():
			s.logger.Info().Msg("Scheduler loop stopped")
			return
		}
	}
}

// checkExpiredAuctions finds and processes due auctions
func (s *AuctionScheduler) checkExpiredAuctions() {
	now := time.Now().Unix()

	expired, err := s.redis.ZRangeByScore(s.ctx, expirationKey, &redis.ZRangeBy{
		Min:   "0",
		Max:   strconv.FormatInt(now, 10),
		Count: 10,
	}).Result()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get expired auctions")
		return
	}

	for _, auctionIDStr := range expired {
		auctionID, err := uuid.Parse(auctionIDStr)
		if err != nil {
			s.logger.Error().Err(err).Str("auction_id", auctionIDStr).Msg("Invalid auction ID in schedule")
			s.redis.ZRem(s.ctx, expirationKey, auctionIDStr)
			continue
		}

		go s.endAuction(auctionID)
	}
}

func (s *AuctionScheduler) endAuction(auctionID uuid.UUID) {
	defer s.redis.ZRem(s.ctx, expirationKey, auctionID.String())

	result, err := s.auctionService.CloseAuctionForScheduler(s.ctx, auctionID)
	if err != nil {
		s.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to close auction")
		return
	}

	eventData := map[string]interface{}{
		"auction_id": auctionID.String(),
		"status":     result.Status,
	}
	if result.WinnerID != nil {
		eventData["winner_id"] = *result.WinnerID
	}
	if result.FinalPrice != nil {
		eventData["final_price"] = result.FinalPrice.Float64()
	}

	event := outbound.Event{
		Type:      outbound.EventTypeAuctionEnded,
		AuctionID: auctionID,
		Data:      eventData,
		Timestamp: time.Now().Unix(),
	}

	if err := s.broadcaster.Publish(s.ctx, auctionID, event); err != nil {
		s.logger.Error().Err(err).Str("auction_id", auctionID.String()).Msg("Failed to broadcast auction end event")
	}

	s.logger.Info().Str("auction_id", auctionID.String()).Str("status", result.Status).Msg("Auction closed by scheduler")
}
