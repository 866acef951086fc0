package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/camp-animal-economy/internal/config"
	"github.com/vietanh2810/camp-animal-economy/internal/domain"
	"github.com/vietanh2810/camp-animal-economy/internal/realtime"
	"github.com/vietanh2810/camp-animal-economy/internal/repository"
)

var (
	ErrMarketItemNotFound = repository.ErrMarketItemNotFound
	ErrMarketItemExists   = repository.ErrMarketItemExists
)

type MarketRepository interface {
	Create(ctx context.Context, item domain.MarketItem) (domain.MarketItem, error)
	Seed(ctx context.Context, types []string) (int64, error)
	FindAll(ctx context.Context) ([]domain.MarketItem, error)
	FindByType(ctx context.Context, itemType string) (domain.MarketItem, error)
	UpdateSupplyDemand(ctx context.Context, item domain.MarketItem) error
	Collect(ctx context.Context, itemType string) (domain.MarketItem, error)
	IncrementDemand(ctx context.Context) (int64, error)
	AppendHistory(ctx context.Context, itemType string, point domain.PricePoint) error
}

type MarketService struct {
	repo MarketRepository
	hub  *realtime.Hub
	conf *config.MarketConfig
	now  func() time.Time
}

func NewMarketService(repo MarketRepository, hub *realtime.Hub, conf *config.MarketConfig) *MarketService {
	return &MarketService{
		repo: repo,
		hub:  hub,
		conf: conf,
		now:  time.Now,
	}
}

// Seed creates the default catalogue rows that are missing.
func (s *MarketService) Seed(ctx context.Context) error {
	n, err := s.repo.Seed(ctx, domain.DefaultMarketTypes)
	if err != nil {
		return fmt.Errorf("s.repo.Seed -> %w", err)
	}

	zap.L().Info("market seeded", zap.Int64("created", n))

	return nil
}

func (s *MarketService) ListItems(ctx context.Context) ([]domain.MarketItem, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return items, nil
}

func (s *MarketService) GetItem(ctx context.Context, itemType string) (domain.MarketItem, error) {
	item, err := s.repo.FindByType(ctx, itemType)
	if err != nil {
		return domain.MarketItem{}, fmt.Errorf("s.repo.FindByType -> %w", err)
	}

	return item, nil
}

func (s *MarketService) CreateItem(ctx context.Context, item domain.MarketItem) (domain.MarketItem, error) {
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return domain.MarketItem{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// ApplyCollect persists one collection of observed and returns the item as
// written. In blind mode the new counters are computed from observed and
// written without checking the stored row; in atomic mode the store applies
// the transition itself and observed only names the row.
func (s *MarketService) ApplyCollect(ctx context.Context, observed domain.MarketItem) (domain.MarketItem, error) {
	if s.conf.CollectMode == config.CollectModeAtomic {
		updated, err := s.repo.Collect(ctx, observed.Type)
		if err != nil {
			return domain.MarketItem{}, fmt.Errorf("s.repo.Collect -> %w", err)
		}

		return updated, nil
	}

	next := observed.Collected()
	if err := s.repo.UpdateSupplyDemand(ctx, next); err != nil {
		return domain.MarketItem{}, fmt.Errorf("s.repo.UpdateSupplyDemand -> %w", err)
	}

	return next, nil
}

// Collect reads the current row for itemType and collects one unit of it.
func (s *MarketService) Collect(ctx context.Context, itemType string) (domain.CollectedReceipt, domain.MarketItem, error) {
	observed, err := s.repo.FindByType(ctx, itemType)
	if err != nil {
		return domain.CollectedReceipt{}, domain.MarketItem{}, fmt.Errorf("s.repo.FindByType -> %w", err)
	}

	updated, err := s.ApplyCollect(ctx, observed)
	if err != nil {
		return domain.CollectedReceipt{}, domain.MarketItem{}, err
	}

	return domain.NewReceipt(updated, s.now()), updated, nil
}

// IncrementDemand raises demand of every row by one and, when enabled,
// records a price sample for each row afterwards.
func (s *MarketService) IncrementDemand(ctx context.Context) error {
	n, err := s.repo.IncrementDemand(ctx)
	if err != nil {
		return fmt.Errorf("s.repo.IncrementDemand -> %w", err)
	}
	zap.L().Info("demand incremented", zap.Int64("rows", n))

	if !s.conf.RecordHistory {
		return nil
	}

	return s.recordHistory(ctx)
}

func (s *MarketService) recordHistory(ctx context.Context) error {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	at := s.now().UTC()
	var errs []error
	for _, item := range items {
		point := domain.PricePoint{Time: at, Price: item.Price()}
		if err := s.repo.AppendHistory(ctx, item.Type, point); err != nil {
			errs = append(errs, fmt.Errorf("s.repo.AppendHistory(%s) -> %w", item.Type, err))
		}
	}

	return errors.Join(errs...)
}

// Subscribe registers for row updates. The caller must Unsubscribe.
func (s *MarketService) Subscribe() *realtime.Subscription {
	return s.hub.Subscribe()
}

// Publish forwards a changed row to every subscriber.
func (s *MarketService) Publish(item domain.MarketItem) {
	s.hub.Publish(item)
}
