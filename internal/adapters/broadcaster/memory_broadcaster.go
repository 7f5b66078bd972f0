package broadcaster

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"auction-ledger-service/internal/ports/outbound"
)

// MemoryBroadcaster is an in-process broadcaster for single-node deployments
// and tests. Delivery is non-blocking; a slow subscriber drops events rather
// than stalling the bid path.
type MemoryBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan outbound.Event // auctionID -> clientID -> channel
	logger      zerolog.Logger
}

type MemoryBroadcasterParams struct {
	Logger zerolog.Logger
}

func NewMemoryBroadcaster(params MemoryBroadcasterParams) *MemoryBroadcaster {
	return &MemoryBroadcaster{
		subscribers: make(map[string]map[string]chan outbound.Event),
		logger:      params.Logger.With().Str("component", "memory_broadcaster").Logger(),
	}
}

// Subscribe subscribes a client to events for a specific auction
func (b *MemoryBroadcaster) Subscribe(ctx context.Context, auctionID uuid.UUID, clientID string, eventChan chan outbound.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := auctionID.String()
	if b.subscribers[key] == nil {
		b.subscribers[key] = make(map[string]chan outbound.Event)
	}
	if _, exists := b.subscribers[key][clientID]; exists {
		b.logger.Debug().
			Str("client_id", clientID).
			Str("auction_id", key).
			Msg("Client already subscribed to auction")
		return nil
	}
	b.subscribers[key][clientID] = eventChan

	b.logger.Info().
		Str("client_id", clientID).
		Str("auction_id", key).
		Msg("Client subscribed to auction")
	return nil
}

// Unsubscribe unsubscribes a client from events for a specific auction
func (b *MemoryBroadcaster) Unsubscribe(ctx context.Context, auctionID uuid.UUID, clientID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := auctionID.String()
	if clients, exists := b.subscribers[key]; exists {
		delete(clients, clientID)
		if len(clients) == 0 {
			delete(b.subscribers, key)
		}
	}

	b.logger.Info().
		Str("client_id", clientID).
		Str("auction_id", key).
		Msg("Client unsubscribed from auction")
	return nil
}

// Publish publishes an event to all subscribers of an auction
func (b *MemoryBroadcaster) Publish(ctx context.Context, auctionID uuid.UUID, event outbound.Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for clientID, eventChan := range b.subscribers[auctionID.String()] {
		select {
		case eventChan <- event:
			delivered++
		default:
			b.logger.Warn().Str("client_id", clientID).Msg("Subscriber channel full, dropping event")
		}
	}

	b.logger.Debug().
		Str("event_type", string(event.Type)).
		Str("auction_id", auctionID.String()).
		Int("subscriber_count", delivered).
		Msg("Published event to auction")
	return nil
}

// Close releases all subscriptions
func (b *MemoryBroadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[string]map[string]chan outbound.Event)
	return nil
}
