package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMarketItemNotFound = errors.New("market item not found")
	ErrMarketItemExists   = errors.New("market item already exists")
)

type MarketItem struct {
	ID      uint           `gorm:"primaryKey"`
	Type    string         `gorm:"type:text;not null;uniqueIndex:uni_market_type"`
	Supply  int            `gorm:"not null;default:0;check:chk_market_supply,supply >= 0"`
	Demand  int            `gorm:"not null;default:0;check:chk_market_demand,demand >= 0"`
	History datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MarketItem) TableName() string {
	return "market"
}

// HistoryPoint is the stored shape of one price sample.
type HistoryPoint struct {
	Time  time.Time `json:"time"`
	Price string    `json:"price"`
}

type MarketDAO struct {
	db *gorm.DB
}

func NewMarketDAO(db *gorm.DB) *MarketDAO {
	return &MarketDAO{
		db: db,
	}
}

func (d *MarketDAO) Insert(ctx context.Context, item MarketItem) (MarketItem, error) {
	if len(item.History) == 0 {
		item.History = datatypes.JSON("[]")
	}

	result := d.db.WithContext(ctx).Create(&item)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			return MarketItem{}, ErrMarketItemExists
		}

		return MarketItem{}, result.Error
	}

	return item, nil
}

// Seed inserts an empty row for every type that does not exist yet and
// returns how many rows were created.
func (d *MarketDAO) Seed(ctx context.Context, types []string) (int64, error) {
	if len(types) == 0 {
		return 0, nil
	}

	items := make([]MarketItem, len(types))
	for i, t := range types {
		items[i] = MarketItem{Type: t, History: datatypes.JSON("[]")}
	}

	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "type"}},
		DoNothing: true,
	}).Create(&items)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (d *MarketDAO) FindAll(ctx context.Context) ([]MarketItem, error) {
	var items []MarketItem

	result := d.db.WithContext(ctx).Order("id").Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}

func (d *MarketDAO) FindByType(ctx context.Context, itemType string) (MarketItem, error) {
	var item MarketItem

	result := d.db.WithContext(ctx).First(&item, "type = ?", itemType)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return MarketItem{}, ErrMarketItemNotFound
		}

		return MarketItem{}, result.Error
	}

	return item, nil
}

// UpdateSupplyDemand overwrites supply and demand of the row with the given
// type. It does not check what the row held before.
func (d *MarketDAO) UpdateSupplyDemand(ctx context.Context, itemType string, supply, demand int) error {
	result := d.db.WithContext(ctx).
		Model(&MarketItem{}).
		Where("type = ?", itemType).
		Updates(map[string]interface{}{
			"supply": supply,
			"demand": demand,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrMarketItemNotFound
	}

	return nil
}

// Collect applies one collection in a single statement and returns the row
// as stored afterwards.
func (d *MarketDAO) Collect(ctx context.Context, itemType string) (MarketItem, error) {
	var item MarketItem

	result := d.db.WithContext(ctx).
		Model(&item).
		Clauses(clause.Returning{}).
		Where("type = ?", itemType).
		Updates(map[string]interface{}{
			"supply": gorm.Expr("supply + 1"),
			"demand": gorm.Expr("GREATEST(demand - 1, 0)"),
		})
	if result.Error != nil {
		return MarketItem{}, result.Error
	}

	if result.RowsAffected == 0 {
		return MarketItem{}, ErrMarketItemNotFound
	}

	return item, nil
}

// IncrementDemand adds one to the demand of every row.
func (d *MarketDAO) IncrementDemand(ctx context.Context) (int64, error) {
	result := d.db.WithContext(ctx).
		Model(&MarketItem{}).
		Where("type <> ?", "").
		Update("demand", gorm.Expr("demand + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// AppendHistory appends one sample to the row's history in place.
func (d *MarketDAO) AppendHistory(ctx context.Context, itemType string, point HistoryPoint) error {
	sample, err := json.Marshal([]HistoryPoint{point})
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	result := d.db.WithContext(ctx).
		Model(&MarketItem{}).
		Where("type = ?", itemType).
		Update("history", gorm.Expr("history || ?::jsonb", string(sample)))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrMarketItemNotFound
	}

	return nil
}
