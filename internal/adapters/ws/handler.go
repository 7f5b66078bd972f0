package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"auction-ledger-service/internal/config"
	"auction-ledger-service/internal/domain/shared"
	"auction-ledger-service/internal/ports/outbound"
)

// WsHandler manages WebSocket connections and routes subscription requests to
// the broadcaster. Mutations go through the REST API; the socket is a
// push-and-subscribe channel only.
type WsHandler struct {
	clients       map[string]*WsClient // clientID -> client
	clientsMu     sync.RWMutex
	eventChannels map[string]chan outbound.Event // clientID -> local event channel
	channelsMu    sync.RWMutex
	upgrader      websocket.Upgrader
	broadcaster   outbound.Broadcaster
	logger        zerolog.Logger
}

type WsHandlerParams struct {
	Config      *config.Config
	Broadcaster outbound.Broadcaster
	Logger      zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(params WsHandlerParams) *WsHandler {
	return &WsHandler{
		clients:       make(map[string]*WsClient),
		eventChannels: make(map[string]chan outbound.Event),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  params.Config.WebSocket.ReadBufferSize,
			WriteBufferSize: params.Config.WebSocket.WriteBufferSize,
		},
		broadcaster: params.Broadcaster,
		logger:      params.Logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleWebSocket handles WebSocket connection upgrades
func (handler *WsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		handler.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := NewClient(WsClientParams{
		UserID:  userID,
		Conn:    conn,
		Handler: handler,
		Logger:  handler.logger,
	})

	handler.registerClient(client)
	handler.createEventChannel(client.id)
	client.Start()

	go handler.listenForClientEvents(client)
	go func() {
		<-client.ctx.Done()
		handler.unregisterClient(client)
	}()

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID).Msg("WebSocket client connected")
}

func (handler *WsHandler) createEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if eventChan, exists := handler.eventChannels[clientID]; exists {
		return eventChan
	}

	eventChan := make(chan outbound.Event, 100)
	handler.eventChannels[clientID] = eventChan
	return eventChan
}

func (handler *WsHandler) getEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.RLock()
	defer handler.channelsMu.RUnlock()
	return handler.eventChannels[clientID]
}

func (handler *WsHandler) removeEventChannel(clientID string) {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if eventChan, exists := handler.eventChannels[clientID]; exists {
		close(eventChan)
		delete(handler.eventChannels, clientID)
	}
}

func (handler *WsHandler) registerClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()
	handler.clients[client.id] = client
}

func (handler *WsHandler) unregisterClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()

	delete(handler.clients, client.id)
	client.Stop()
	handler.removeEventChannel(client.id)

	handler.logger.Info().
		Str("client_id", client.id).
		Str("user_id", client.userID).
		Int("total_clients", len(handler.clients)).
		Msg("WebSocket client disconnected")
}

// listenForClientEvents forwards broadcast events to the client's socket
func (handler *WsHandler) listenForClientEvents(client *WsClient) {
	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client")
		return
	}

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if err := client.Send(convertEventToMessage(event)); err != nil {
				handler.logger.Error().Err(err).Str("client_id", client.id).Msg("Failed to send event to WebSocket client")
			}

		case <-client.ctx.Done():
			return
		}
	}
}

// HandleClientMessage routes a validated client message
func (handler *WsHandler) HandleClientMessage(client *WsClient, msg *ClientMessage) error {
	switch msg.Type {
	case MessageTypeSubscribe:
		return handler.handleSubscribe(client, msg)
	case MessageTypeUnsubscribe:
		return handler.handleUnsubscribe(client, msg)
	default:
		handler.logger.Warn().Str("client_id", client.id).Str("message_type", string(msg.Type)).Msg("Unknown message type from client")
		return shared.ErrUnknownMessageType
	}
}

func (handler *WsHandler) handleSubscribe(client *WsClient, msg *ClientMessage) error {
	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		return shared.ErrBroadcastFailed
	}

	if err := handler.broadcaster.Subscribe(context.Background(), *msg.AuctionID, client.id, eventChan); err != nil {
		handler.logger.Error().Err(err).
			Str("client_id", client.id).
			Str("auction_id", msg.AuctionID.String()).
			Msg("Failed to subscribe to auction")
		return err
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["status"] = "subscribed"
	return client.Send(response)
}

func (handler *WsHandler) handleUnsubscribe(client *WsClient, msg *ClientMessage) error {
	if err := handler.broadcaster.Unsubscribe(context.Background(), *msg.AuctionID, client.id); err != nil {
		return err
	}

	response := NewServerMessage(MessageTypeAuctionUpdate)
	response.AuctionID = msg.AuctionID
	response.Data["status"] = "unsubscribed"
	return client.Send(response)
}

// GetConnectedClients returns the number of connected clients
func (handler *WsHandler) GetConnectedClients() int {
	handler.clientsMu.RLock()
	defer handler.clientsMu.RUnlock()
	return len(handler.clients)
}

func convertEventToMessage(event outbound.Event) *ServerMessage {
	msg := &ServerMessage{
		AuctionID: &event.AuctionID,
		Data:      event.Data,
		Timestamp: event.Timestamp,
	}

	switch event.Type {
	case outbound.EventTypeBidPlaced:
		msg.Type = MessageTypeBidPlaced
	case outbound.EventTypeAuctionEnded:
		msg.Type = MessageTypeAuctionEnded
	case outbound.EventTypeAuctionCreated:
		msg.Type = MessageTypeAuctionCreated
	default:
		msg.Type = MessageTypeAuctionUpdate
	}
	return msg
}
