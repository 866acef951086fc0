package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/vietanh2810/camp-animal-economy/internal/domain"
	"github.com/vietanh2810/camp-animal-economy/internal/repository/dao"
)

var (
	ErrMarketItemNotFound = dao.ErrMarketItemNotFound
	ErrMarketItemExists   = dao.ErrMarketItemExists
)

type MarketDAO interface {
	Insert(ctx context.Context, item dao.MarketItem) (dao.MarketItem, error)
	Seed(ctx context.Context, types []string) (int64, error)
	FindAll(ctx context.Context) ([]dao.MarketItem, error)
	FindByType(ctx context.Context, itemType string) (dao.MarketItem, error)
	UpdateSupplyDemand(ctx context.Context, itemType string, supply, demand int) error
	Collect(ctx context.Context, itemType string) (dao.MarketItem, error)
	IncrementDemand(ctx context.Context) (int64, error)
	AppendHistory(ctx context.Context, itemType string, point dao.HistoryPoint) error
}

type MarketRepository struct {
	dao MarketDAO
}

func NewMarketRepository(dao MarketDAO) *MarketRepository {
	return &MarketRepository{
		dao: dao,
	}
}

func (r *MarketRepository) Create(ctx context.Context, item domain.MarketItem) (domain.MarketItem, error) {
	history, err := historyDomainToDao(item.History)
	if err != nil {
		return domain.MarketItem{}, fmt.Errorf("historyDomainToDao -> %w", err)
	}

	created, err := r.dao.Insert(ctx, dao.MarketItem{
		Type:    item.Type,
		Supply:  item.Supply,
		Demand:  item.Demand,
		History: history,
	})
	if err != nil {
		return domain.MarketItem{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return DaoToDomain(created), nil
}

func (r *MarketRepository) Seed(ctx context.Context, types []string) (int64, error) {
	n, err := r.dao.Seed(ctx, types)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Seed -> %w", err)
	}

	return n, nil
}

func (r *MarketRepository) FindAll(ctx context.Context) ([]domain.MarketItem, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	items := make([]domain.MarketItem, len(found))
	for i, item := range found {
		items[i] = DaoToDomain(item)
	}

	return items, nil
}

func (r *MarketRepository) FindByType(ctx context.Context, itemType string) (domain.MarketItem, error) {
	found, err := r.dao.FindByType(ctx, itemType)
	if err != nil {
		return domain.MarketItem{}, fmt.Errorf("r.dao.FindByType -> %w", err)
	}

	return DaoToDomain(found), nil
}

// UpdateSupplyDemand stores item's supply and demand on the row with the same type.
func (r *MarketRepository) UpdateSupplyDemand(ctx context.Context, item domain.MarketItem) error {
	if err := r.dao.UpdateSupplyDemand(ctx, item.Type, item.Supply, item.Demand); err != nil {
		return fmt.Errorf("r.dao.UpdateSupplyDemand -> %w", err)
	}

	return nil
}

func (r *MarketRepository) Collect(ctx context.Context, itemType string) (domain.MarketItem, error) {
	updated, err := r.dao.Collect(ctx, itemType)
	if err != nil {
		return domain.MarketItem{}, fmt.Errorf("r.dao.Collect -> %w", err)
	}

	return DaoToDomain(updated), nil
}

func (r *MarketRepository) IncrementDemand(ctx context.Context) (int64, error) {
	n, err := r.dao.IncrementDemand(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.IncrementDemand -> %w", err)
	}

	return n, nil
}

func (r *MarketRepository) AppendHistory(ctx context.Context, itemType string, point domain.PricePoint) error {
	err := r.dao.AppendHistory(ctx, itemType, dao.HistoryPoint{
		Time:  point.Time,
		Price: domain.FormatPrice(point.Price),
	})
	if err != nil {
		return fmt.Errorf("r.dao.AppendHistory -> %w", err)
	}

	return nil
}

// DaoToDomain converts a stored row. A history column that cannot be decoded
// is logged and rendered as empty; it is display-only.
func DaoToDomain(m dao.MarketItem) domain.MarketItem {
	return domain.MarketItem{
		ID:        m.ID,
		Type:      m.Type,
		Supply:    m.Supply,
		Demand:    m.Demand,
		History:   historyDaoToDomain(m.Type, m.History),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func historyDaoToDomain(itemType string, raw datatypes.JSON) []domain.PricePoint {
	points := []domain.PricePoint{}
	if len(raw) == 0 {
		return points
	}

	var stored []dao.HistoryPoint
	if err := json.Unmarshal(raw, &stored); err != nil {
		zap.L().Warn("unreadable price history", zap.String("type", itemType), zap.Error(err))
		return points
	}

	for _, p := range stored {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			zap.L().Warn("unreadable price sample", zap.String("type", itemType), zap.String("price", p.Price))
			continue
		}
		points = append(points, domain.PricePoint{Time: p.Time, Price: price})
	}

	return points
}

func historyDomainToDao(points []domain.PricePoint) (datatypes.JSON, error) {
	stored := make([]dao.HistoryPoint, len(points))
	for i, p := range points {
		stored[i] = dao.HistoryPoint{Time: p.Time, Price: domain.FormatPrice(p.Price)}
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}

	return raw, nil
}
