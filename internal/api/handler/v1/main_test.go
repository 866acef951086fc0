package v1

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/camp-animal-economy/internal/domain"
	"github.com/vietanh2810/camp-animal-economy/internal/realtime"
	"github.com/vietanh2810/camp-animal-economy/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	errStoreDown = errors.New("store down")
	testClock    = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

// fakeMarketService keeps the market in memory and publishes every write to
// its hub, standing in for the store trigger.
type fakeMarketService struct {
	hub *realtime.Hub

	mu         sync.Mutex
	items      []domain.MarketItem
	increments int
	failAll    bool
}

func newFakeMarketService(items ...domain.MarketItem) *fakeMarketService {
	return &fakeMarketService{hub: realtime.NewHub(8), items: items}
}

func (f *fakeMarketService) find(itemType string) int {
	for i, item := range f.items {
		if item.Type == itemType {
			return i
		}
	}
	return -1
}

func (f *fakeMarketService) ListItems(context.Context) ([]domain.MarketItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return nil, errStoreDown
	}
	return append([]domain.MarketItem(nil), f.items...), nil
}

func (f *fakeMarketService) GetItem(_ context.Context, itemType string) (domain.MarketItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return domain.MarketItem{}, errStoreDown
	}
	i := f.find(itemType)
	if i < 0 {
		return domain.MarketItem{}, service.ErrMarketItemNotFound
	}
	return f.items[i], nil
}

func (f *fakeMarketService) CreateItem(_ context.Context, item domain.MarketItem) (domain.MarketItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.find(item.Type) >= 0 {
		return domain.MarketItem{}, service.ErrMarketItemExists
	}
	item.ID = uint(len(f.items) + 1)
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeMarketService) ApplyCollect(_ context.Context, observed domain.MarketItem) (domain.MarketItem, error) {
	f.mu.Lock()
	if f.failAll {
		f.mu.Unlock()
		return domain.MarketItem{}, errStoreDown
	}
	i := f.find(observed.Type)
	if i < 0 {
		f.mu.Unlock()
		return domain.MarketItem{}, service.ErrMarketItemNotFound
	}
	next := observed.Collected()
	f.items[i] = next
	f.mu.Unlock()

	f.hub.Publish(next)
	return next, nil
}

func (f *fakeMarketService) Collect(ctx context.Context, itemType string) (domain.CollectedReceipt, domain.MarketItem, error) {
	observed, err := f.GetItem(ctx, itemType)
	if err != nil {
		return domain.CollectedReceipt{}, domain.MarketItem{}, err
	}
	updated, err := f.ApplyCollect(ctx, observed)
	if err != nil {
		return domain.CollectedReceipt{}, domain.MarketItem{}, err
	}
	return domain.NewReceipt(updated, testClock), updated, nil
}

func (f *fakeMarketService) IncrementDemand(context.Context) error {
	f.mu.Lock()
	if f.failAll {
		f.mu.Unlock()
		return errStoreDown
	}
	f.increments++
	for i := range f.items {
		f.items[i].Demand++
	}
	updated := append([]domain.MarketItem(nil), f.items...)
	f.mu.Unlock()

	for _, item := range updated {
		f.hub.Publish(item)
	}
	return nil
}

func (f *fakeMarketService) Subscribe() *realtime.Subscription {
	return f.hub.Subscribe()
}
