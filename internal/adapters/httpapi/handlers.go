package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"auction-ledger-service/internal/domain/shared"
	"auction-ledger-service/internal/ports/inbound"
)

// Handler translates API requests into service calls and maps every domain
// error to the success=false envelope; no domain error escapes unhandled.
type Handler struct {
	auctionService inbound.AuctionService
	bidService     inbound.BidService
	logger         zerolog.Logger
}

type HandlerParams struct {
	AuctionService inbound.AuctionService
	BidService     inbound.BidService
	Logger         zerolog.Logger
}

// NewHandler creates a new API handler
func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		auctionService: params.AuctionService,
		bidService:     params.BidService,
		logger:         params.Logger.With().Str("component", "http_api").Logger(),
	}
}

// Register mounts the API routes on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auctions/list", h.handleListAuctions)
	mux.HandleFunc("POST /api/auctions/create", h.handleCreateAuction)
	mux.HandleFunc("GET /api/auctions/{id}", h.handleGetAuction)
	mux.HandleFunc("POST /api/bids/place", h.handlePlaceBid)
	mux.HandleFunc("GET /api/bids/history", h.handleBidHistory)
}

// handleListAuctions handles GET /api/auctions/list
func (h *Handler) handleListAuctions(w http.ResponseWriter, r *http.Request) {
	auctions, err := h.auctionService.ListAuctions(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toAuctionPayloads(auctions))
}

// handleCreateAuction handles POST /api/auctions/create
func (h *Handler) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	var req inbound.CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.auctionService.CreateAuction(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toAuctionPayload(a))
}

// handleGetAuction handles GET /api/auctions/{id}
func (h *Handler) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid auction id")
		return
	}

	a, err := h.auctionService.GetAuction(r.Context(), auctionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toAuctionPayload(a))
}

// handlePlaceBid handles POST /api/bids/place
func (h *Handler) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	var req inbound.PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AuctionID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "auctionId is required")
		return
	}

	b, err := h.bidService.PlaceBid(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toBidPayload(b))
}

// handleBidHistory handles GET /api/bids/history?auctionId={auctionId}
func (h *Handler) handleBidHistory(w http.ResponseWriter, r *http.Request) {
	auctionIDStr := r.URL.Query().Get("auctionId")
	if auctionIDStr == "" {
		writeError(w, http.StatusBadRequest, "missing auctionId parameter")
		return
	}

	auctionID, err := uuid.Parse(auctionIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid auction id")
		return
	}

	bids, err := h.bidService.GetBidHistory(r.Context(), auctionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toBidPayloads(bids))
}

// writeDomainError maps a domain error to an HTTP status and envelope. The
// logical contract is envelope-first; the status is advisory for transports.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var tooLow *shared.BidTooLowError
	switch {
	case errors.Is(err, shared.ErrAuctionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrAuctionClosed), errors.As(err, &tooLow), shared.IsInvalidSpec(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Internal error handling API request")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
