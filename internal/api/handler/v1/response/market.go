package response

import (
	"time"

	"github.com/vietanh2810/camp-animal-economy/internal/domain"
)

type PricePoint struct {
	Time  time.Time `json:"time"`
	Price string    `json:"price"`
}

type MarketItem struct {
	ID        uint         `json:"id"`
	Type      string       `json:"type"`
	Supply    int          `json:"supply"`
	Demand    int          `json:"demand"`
	Price     string       `json:"price"`
	History   []PricePoint `json:"history"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func NewMarketItem(item domain.MarketItem) MarketItem {
	history := make([]PricePoint, 0, len(item.History))
	for _, p := range item.History {
		history = append(history, PricePoint{Time: p.Time, Price: domain.FormatPrice(p.Price)})
	}

	return MarketItem{
		ID:        item.ID,
		Type:      item.Type,
		Supply:    item.Supply,
		Demand:    item.Demand,
		Price:     domain.FormatPrice(item.Price()),
		History:   history,
		UpdatedAt: item.UpdatedAt,
	}
}

func NewMarketItems(items []domain.MarketItem) []MarketItem {
	res := make([]MarketItem, 0, len(items))
	for _, item := range items {
		res = append(res, NewMarketItem(item))
	}

	return res
}

type CollectResponse struct {
	Receipt domain.CollectedReceipt `json:"receipt"`
	Item    MarketItem              `json:"item"`
}

// ClientConfig is what a browser needs to talk to the store directly. It
// never carries the service key.
type ClientConfig struct {
	StoreURL       string `json:"store_url"`
	StorePublicKey string `json:"store_public_key"`
}

const (
	StreamEventMarket   = "market"
	StreamEventReceipt  = "receipt"
	StreamEventReceipts = "receipts"
)

// Server-to-client websocket frames.
type (
	MarketEvent struct {
		Event string       `json:"event"`
		Items []MarketItem `json:"items"`
	}

	ReceiptEvent struct {
		Event   string                  `json:"event"`
		Receipt domain.CollectedReceipt `json:"receipt"`
	}

	ReceiptsEvent struct {
		Event    string                    `json:"event"`
		Receipts []domain.CollectedReceipt `json:"receipts"`
	}
)

func NewMarketEvent(items []domain.MarketItem) MarketEvent {
	return MarketEvent{Event: StreamEventMarket, Items: NewMarketItems(items)}
}

func NewReceiptEvent(receipt domain.CollectedReceipt) ReceiptEvent {
	return ReceiptEvent{Event: StreamEventReceipt, Receipt: receipt}
}

func NewReceiptsEvent(receipts []domain.CollectedReceipt) ReceiptsEvent {
	if receipts == nil {
		receipts = []domain.CollectedReceipt{}
	}

	return ReceiptsEvent{Event: StreamEventReceipts, Receipts: receipts}
}
