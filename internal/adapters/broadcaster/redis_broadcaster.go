package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"auction-ledger-service/internal/ports/outbound"
)

// RedisBroadcaster fans auction events out through Redis pub/sub so watchers
// on any node see accepted bids and closures.
type RedisBroadcaster struct {
	client           *redis.Client
	subscribers      map[string]chan outbound.Event // clientID -> local channel
	pubsubs          map[string]*redis.PubSub       // clientID -> pubsub instance
	clientsToAuction map[string]map[string]bool     // clientID -> auctionID -> subscribed
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	logger           zerolog.Logger
}

type RedisBroadcasterParams struct {
	RedisClient *redis.Client
	Logger      zerolog.Logger
}

func NewRedisBroadcaster(params RedisBroadcasterParams) *RedisBroadcaster {
	ctx, cancel := context.WithCancel(context.Background())

	return &RedisBroadcaster{
		client:           params.RedisClient,
		subscribers:      make(map[string]chan outbound.Event),
		pubsubs:          make(map[string]*redis.PubSub),
		clientsToAuction: make(map[string]map[string]bool),
		ctx:              ctx,
		cancel:           cancel,
		logger:           params.Logger.With().Str("component", "redis_broadcaster").Logger(),
	}
}

func channelName(auctionID uuid.UUID) string {
	return fmt.Sprintf("auction:%s", auctionID.String())
}

// Subscribe subscribes a client to events for a specific auction
func (r *RedisBroadcaster) Subscribe(ctx context.Context, auctionID uuid.UUID, clientID string, eventChan chan outbound.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clientsToAuction[clientID] != nil && r.clientsToAuction[clientID][auctionID.String()] {
		r.logger.Debug().
			Str("client_id", clientID).
			Str("auction_id", auctionID.String()).
			Msg("Client already subscribed to auction")
		return nil
	}

	if r.subscribers[clientID] == nil {
		r.subscribers[clientID] = eventChan
	}
	if r.clientsToAuction[clientID] == nil {
		r.clientsToAuction[clientID] = make(map[string]bool)
	}
	r.clientsToAuction[clientID][auctionID.String()] = true

	pubsub, exists := r.pubsubs[clientID]
	if !exists {
		pubsub = r.client.Subscribe(ctx)
		r.pubsubs[clientID] = pubsub
		go r.forwardRedisMessages(pubsub, clientID, eventChan)
	}

	if err := pubsub.Subscribe(ctx, channelName(auctionID)); err != nil {
		r.logger.Error().Err(err).
			Str("client_id", clientID).
			Str("auction_id", auctionID.String()).
			Msg("Failed to subscribe to Redis channel")
		return err
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("auction_id", auctionID.String()).
		Msg("Client subscribed to auction via Redis")
	return nil
}

// Unsubscribe unsubscribes a client from events for a specific auction
func (r *RedisBroadcaster) Unsubscribe(ctx context.Context, auctionID uuid.UUID, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clientAuctions, exists := r.clientsToAuction[clientID]
	if !exists {
		return nil
	}

	delete(clientAuctions, auctionID.String())

	if len(clientAuctions) == 0 {
		delete(r.clientsToAuction, clientID)
		delete(r.subscribers, clientID)

		if pubsub, ok := r.pubsubs[clientID]; ok {
			if err := pubsub.Close(); err != nil {
				r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
			}
			delete(r.pubsubs, clientID)
		}
	} else if pubsub, ok := r.pubsubs[clientID]; ok {
		if err := pubsub.Unsubscribe(ctx, channelName(auctionID)); err != nil {
			r.logger.Error().Err(err).
				Str("client_id", clientID).
				Str("auction_id", auctionID.String()).
				Msg("Error unsubscribing from Redis channel")
		}
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("auction_id", auctionID.String()).
		Msg("Client unsubscribed from auction")
	return nil
}

// Publish publishes an event to all subscribers of an auction via Redis
func (r *RedisBroadcaster) Publish(ctx context.Context, auctionID uuid.UUID, event outbound.Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	result := r.client.Publish(ctx, channelName(auctionID), eventJSON)
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	r.logger.Debug().
		Str("event_type", string(event.Type)).
		Str("auction_id", auctionID.String()).
		Int64("subscriber_count", result.Val()).
		Msg("Published event to auction")
	return nil
}

// forwardRedisMessages forwards Redis pub/sub messages to the client's local
// channel without blocking on a slow consumer.
func (r *RedisBroadcaster) forwardRedisMessages(pubsub *redis.PubSub, clientID string, localChan chan outbound.Event) {
	ch := pubsub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				r.logger.Debug().Str("client_id", clientID).Msg("Redis channel closed for client")
				return
			}

			var event outbound.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Error().Err(err).Str("client_id", clientID).Msg("Failed to unmarshal Redis message")
				continue
			}

			select {
			case localChan <- event:
			default:
				r.logger.Warn().Str("client_id", clientID).Msg("Local channel full for client, dropping event")
			}

		case <-r.ctx.Done():
			return
		}
	}
}

// Close releases all subscriptions and the Redis connection
func (r *RedisBroadcaster) Close() error {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	for clientID, pubsub := range r.pubsubs {
		if err := pubsub.Close(); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
		}
		delete(r.pubsubs, clientID)
	}
	r.subscribers = make(map[string]chan outbound.Event)
	r.clientsToAuction = make(map[string]map[string]bool)

	return r.client.Close()
}
