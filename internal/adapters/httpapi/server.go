package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"auction-ledger-service/internal/adapters/ws"
	"auction-ledger-service/internal/config"
	"auction-ledger-service/internal/ports/inbound"
)

// Server hosts the REST API, the WebSocket push endpoint and the health check
type Server struct {
	httpServer *http.Server
	config     *config.Config
	logger     zerolog.Logger
}

type ServerParams struct {
	Config         *config.Config
	AuctionService inbound.AuctionService
	BidService     inbound.BidService
	WsHandler      *ws.WsHandler
	Logger         zerolog.Logger
}

func NewServer(params ServerParams) *Server {
	handler := NewHandler(HandlerParams{
		AuctionService: params.AuctionService,
		BidService:     params.BidService,
		Logger:         params.Logger,
	})

	mux := http.NewServeMux()
	handler.Register(mux)
	if params.WsHandler != nil {
		mux.HandleFunc("/ws", params.WsHandler.HandleWebSocket)
	}
	mux.HandleFunc("/health", handleHealth)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", params.Config.Server.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Minute,
	}

	return &Server{
		httpServer: httpServer,
		config:     params.Config,
		logger:     params.Logger.With().Str("component", "http_server").Logger(),
	}
}

// Start starts the API server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	return nil
}

// Stop gracefully stops the API server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}

	s.logger.Info().Msg("API server stopped")
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok", "service": "auction-ledger"}`))
}
