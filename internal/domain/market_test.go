package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarketItem_Collected(t *testing.T) {
	item := MarketItem{Type: "Plant", Supply: 3, Demand: 2}

	next := item.Collected()

	assert.Equal(t, 4, next.Supply)
	assert.Equal(t, 1, next.Demand)
	assert.Equal(t, "Plant", next.Type)
	// The original value is untouched.
	assert.Equal(t, 3, item.Supply)
	assert.Equal(t, 2, item.Demand)
}

func TestMarketItem_CollectedClampsDemand(t *testing.T) {
	next := MarketItem{Type: "Fish", Supply: 0, Demand: 0}.Collected()

	assert.Equal(t, 1, next.Supply)
	assert.Equal(t, 0, next.Demand)
}

func TestNewReceipt(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	item := MarketItem{Type: "Bird", Supply: 3, Demand: 2}.Collected()
	receipt := NewReceipt(item, at)

	assert.Equal(t, "Bird", receipt.Type)
	assert.Equal(t, FormatPrice(Price(1, 4)), receipt.Value)
	assert.Equal(t, "0.40", receipt.Value)
	assert.Equal(t, at, receipt.CollectedAt)
}
