package httpapi

import (
	"auction-ledger-service/internal/domain/auction"
	"auction-ledger-service/internal/domain/bid"
	"auction-ledger-service/internal/domain/shared"
)

// auctionPayload is the wire form of an auction. Times are epoch-millis,
// prices are dollar numbers.
type auctionPayload struct {
	AuctionID            string       `json:"auctionId"`
	ItemName             string       `json:"itemName"`
	ItemDescription      string       `json:"itemDescription"`
	Category             string       `json:"category"`
	SellerID             string       `json:"sellerId"`
	BasePrice            shared.Money `json:"basePrice"`
	CurrentHighestBid    shared.Money `json:"currentHighestBid"`
	CurrentHighestBidder string       `json:"currentHighestBidder,omitempty"`
	StartTime            int64        `json:"startTime"`
	EndTime              int64        `json:"endTime"`
	Status               string       `json:"status"`
}

type bidPayload struct {
	BidID     int64        `json:"bidId"`
	AuctionID string       `json:"auctionId"`
	UserID    string       `json:"userId"`
	Amount    shared.Money `json:"amount"`
	Timestamp int64        `json:"timestamp"`
}

func toAuctionPayload(a *auction.Auction) auctionPayload {
	return auctionPayload{
		AuctionID:            a.ID.String(),
		ItemName:             a.ItemName,
		ItemDescription:      a.ItemDescription,
		Category:             a.Category,
		SellerID:             a.SellerID,
		BasePrice:            a.BasePrice,
		CurrentHighestBid:    a.CurrentHighestBid,
		CurrentHighestBidder: a.CurrentHighestBidder,
		StartTime:            a.StartTime.UnixMilli(),
		EndTime:              a.EndTime.UnixMilli(),
		Status:               string(a.Status),
	}
}

func toAuctionPayloads(auctions []*auction.Auction) []auctionPayload {
	payloads := make([]auctionPayload, 0, len(auctions))
	for _, a := range auctions {
		payloads = append(payloads, toAuctionPayload(a))
	}
	return payloads
}

func toBidPayload(b *bid.Bid) bidPayload {
	return bidPayload{
		BidID:     b.Seq,
		AuctionID: b.AuctionID.String(),
		UserID:    b.UserID,
		Amount:    b.Amount,
		Timestamp: b.Timestamp.UnixMilli(),
	}
}

func toBidPayloads(bids []*bid.Bid) []bidPayload {
	payloads := make([]bidPayload, 0, len(bids))
	for _, b := range bids {
		payloads = append(payloads, toBidPayload(b))
	}
	return payloads
}
