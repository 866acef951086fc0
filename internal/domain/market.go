package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMarketTypes is the catalogue seeded into an empty market.
var DefaultMarketTypes = []string{
	"Mammal",
	"Bird",
	"Amphibian",
	"Reptile",
	"Insect",
	"Arachnid",
	"Fish",
	"Plant",
	"Bundle of Stilt Grass",
}

type MarketItem struct {
	ID        uint         `json:"id"`
	Type      string       `json:"type"`
	Supply    int          `json:"supply"`
	Demand    int          `json:"demand"`
	History   []PricePoint `json:"history"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Price is the item's current price, see Price.
func (m MarketItem) Price() decimal.Decimal {
	return Price(m.Demand, m.Supply)
}

// Collected returns the item after one unit has been collected: supply goes
// up by one and demand goes down by one, never below zero.
func (m MarketItem) Collected() MarketItem {
	next := m
	next.Supply = m.Supply + 1
	next.Demand = max(0, m.Demand-1)

	return next
}

type PricePoint struct {
	Time  time.Time       `json:"time"`
	Price decimal.Decimal `json:"price"`
}

// CollectedReceipt records one successful collection. It lives only as long
// as the session that produced it.
type CollectedReceipt struct {
	Type        string    `json:"type"`
	Value       string    `json:"value"`
	CollectedAt time.Time `json:"collected_at"`
}

// NewReceipt prices a receipt from the post-collection state of item.
func NewReceipt(item MarketItem, at time.Time) CollectedReceipt {
	return CollectedReceipt{
		Type:        item.Type,
		Value:       FormatPrice(item.Price()),
		CollectedAt: at,
	}
}
