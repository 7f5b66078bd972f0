package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"auction-ledger-service/internal/adapters/memory"
	"auction-ledger-service/internal/app"
	"auction-ledger-service/internal/clock"
)

type apiFixture struct {
	mux *http.ServeMux
	clk *clock.Manual
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	clk := clock.NewManual(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	store := memory.NewStore(zerolog.Nop())

	auctionService := app.NewAuctionService(app.AuctionServiceParams{
		Store:  store,
		Clock:  clk,
		Logger: zerolog.Nop(),
	})
	bidService := app.NewBidService(app.BidServiceParams{
		Ledger: store,
		Clock:  clk,
		Logger: zerolog.Nop(),
	})

	handler := NewHandler(HandlerParams{
		AuctionService: auctionService,
		BidService:     bidService,
		Logger:         zerolog.Nop(),
	})

	mux := http.NewServeMux()
	handler.Register(mux)
	return &apiFixture{mux: mux, clk: clk}
}

func (f *apiFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func (f *apiFixture) createAuction(t *testing.T) string {
	t.Helper()

	rec, envelope := f.do(t, http.MethodPost, "/api/auctions/create", `{
		"itemName": "Road bike",
		"itemDescription": "Carbon frame, size 56",
		"category": "sports",
		"sellerId": "seller-3",
		"basePrice": 250.00,
		"duration": 60
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, envelope["success"])

	data := envelope["data"].(map[string]interface{})
	return data["auctionId"].(string)
}

func TestCreateAuctionEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	rec, envelope := f.do(t, http.MethodPost, "/api/auctions/create", `{
		"itemName": "Road bike",
		"itemDescription": "Carbon frame, size 56",
		"category": "sports",
		"sellerId": "seller-3",
		"basePrice": 250.00,
		"duration": 60
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, envelope["success"])
	require.NotContains(t, envelope, "error")

	data := envelope["data"].(map[string]interface{})
	require.Equal(t, "Road bike", data["itemName"])
	require.Equal(t, "ACTIVE", data["status"])
	require.Equal(t, 250.0, data["basePrice"])
	require.Equal(t, 250.0, data["currentHighestBid"])
	require.NotContains(t, data, "currentHighestBidder")

	startMillis := f.clk.Now().UnixMilli()
	require.Equal(t, float64(startMillis), data["startTime"])
	require.Equal(t, float64(f.clk.Now().Add(time.Hour).UnixMilli()), data["endTime"])

	_, err := uuid.Parse(data["auctionId"].(string))
	require.NoError(t, err)
}

func TestCreateAuctionEndpoint_Invalid(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec, envelope := f.do(t, http.MethodPost, "/api/auctions/create", `{"itemName": ""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, envelope["success"])
	require.NotEmpty(t, envelope["error"])
	require.NotContains(t, envelope, "data")

	rec, envelope = f.do(t, http.MethodPost, "/api/auctions/create", `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, envelope["success"])
}

func TestGetAuctionEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	auctionID := f.createAuction(t)

	rec, envelope := f.do(t, http.MethodGet, "/api/auctions/"+auctionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]interface{})
	require.Equal(t, auctionID, data["auctionId"])
	require.Equal(t, "ACTIVE", data["status"])

	// A read past the deadline reports ENDED.
	f.clk.Advance(2 * time.Hour)
	rec, envelope = f.do(t, http.MethodGet, "/api/auctions/"+auctionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data = envelope["data"].(map[string]interface{})
	require.Equal(t, "ENDED", data["status"])
}

func TestGetAuctionEndpoint_Errors(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec, envelope := f.do(t, http.MethodGet, "/api/auctions/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, false, envelope["success"])
	require.NotEmpty(t, envelope["error"])

	rec, envelope = f.do(t, http.MethodGet, "/api/auctions/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, envelope["success"])
}

func TestListAuctionsEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec, envelope := f.do(t, http.MethodGet, "/api/auctions/list", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, envelope["success"])
	require.Empty(t, envelope["data"])

	first := f.createAuction(t)
	second := f.createAuction(t)

	_, envelope = f.do(t, http.MethodGet, "/api/auctions/list", "")
	data := envelope["data"].([]interface{})
	require.Len(t, data, 2)
	require.Equal(t, first, data[0].(map[string]interface{})["auctionId"])
	require.Equal(t, second, data[1].(map[string]interface{})["auctionId"])
}

func TestPlaceBidEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	auctionID := f.createAuction(t)

	body := fmt.Sprintf(`{"auctionId": %q, "userId": "alice", "amount": 300.50}`, auctionID)
	rec, envelope := f.do(t, http.MethodPost, "/api/bids/place", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, envelope["success"])

	data := envelope["data"].(map[string]interface{})
	require.Equal(t, float64(1), data["bidId"])
	require.Equal(t, auctionID, data["auctionId"])
	require.Equal(t, "alice", data["userId"])
	require.Equal(t, 300.5, data["amount"])
	require.Equal(t, float64(f.clk.Now().UnixMilli()), data["timestamp"])

	// The auction projection reflects the accepted bid.
	_, envelope = f.do(t, http.MethodGet, "/api/auctions/"+auctionID, "")
	auctionData := envelope["data"].(map[string]interface{})
	require.Equal(t, 300.5, auctionData["currentHighestBid"])
	require.Equal(t, "alice", auctionData["currentHighestBidder"])
}

func TestPlaceBidEndpoint_Rejections(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	auctionID := f.createAuction(t)

	place := func(user string, amount float64) (*httptest.ResponseRecorder, map[string]interface{}) {
		body := fmt.Sprintf(`{"auctionId": %q, "userId": %q, "amount": %v}`, auctionID, user, amount)
		return f.do(t, http.MethodPost, "/api/bids/place", body)
	}

	rec, _ := place("alice", 300)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Equal to the current highest: rejected with the current highest named.
	rec, envelope := place("bob", 300)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, envelope["success"])
	require.Contains(t, envelope["error"], "300.00")

	// Unknown auction.
	body := fmt.Sprintf(`{"auctionId": %q, "userId": "bob", "amount": 500}`, uuid.NewString())
	rec, envelope = f.do(t, http.MethodPost, "/api/bids/place", body)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, false, envelope["success"])

	// Missing auction id.
	rec, envelope = f.do(t, http.MethodPost, "/api/bids/place", `{"userId": "bob", "amount": 500}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, envelope["success"])

	// After the deadline the auction is closed to new bids.
	f.clk.Advance(2 * time.Hour)
	rec, envelope = place("bob", 999)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, envelope["success"])
}

func TestBidHistoryEndpoint(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	auctionID := f.createAuction(t)

	for i, amount := range []float64{260, 280, 305.25} {
		user := fmt.Sprintf("user-%d", i+1)
		body := fmt.Sprintf(`{"auctionId": %q, "userId": %q, "amount": %v}`, auctionID, user, amount)
		rec, _ := f.do(t, http.MethodPost, "/api/bids/place", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, envelope := f.do(t, http.MethodGet, "/api/bids/history?auctionId="+auctionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, envelope["success"])

	data := envelope["data"].([]interface{})
	require.Len(t, data, 3)
	wantAmounts := []float64{260, 280, 305.25}
	for i, entry := range data {
		b := entry.(map[string]interface{})
		require.Equal(t, float64(i+1), b["bidId"])
		require.Equal(t, wantAmounts[i], b["amount"])
		require.Equal(t, fmt.Sprintf("user-%d", i+1), b["userId"])
	}
}

func TestBidHistoryEndpoint_Errors(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec, envelope := f.do(t, http.MethodGet, "/api/bids/history", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, envelope["success"])

	rec, envelope = f.do(t, http.MethodGet, "/api/bids/history?auctionId=nope", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, envelope["success"])

	rec, envelope = f.do(t, http.MethodGet, "/api/bids/history?auctionId="+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, false, envelope["success"])
}
