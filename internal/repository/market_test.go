package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/vietanh2810/camp-animal-economy/internal/domain"
	"github.com/vietanh2810/camp-animal-economy/internal/repository/dao"
)

type fakeMarketDAO struct {
	rows     map[string]dao.MarketItem
	history  []dao.HistoryPoint
	inserted dao.MarketItem
	err      error
}

func (f *fakeMarketDAO) Insert(_ context.Context, item dao.MarketItem) (dao.MarketItem, error) {
	if f.err != nil {
		return dao.MarketItem{}, f.err
	}
	item.ID = 7
	f.inserted = item
	return item, nil
}

func (f *fakeMarketDAO) Seed(context.Context, []string) (int64, error) { return 0, f.err }

func (f *fakeMarketDAO) FindAll(context.Context) ([]dao.MarketItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []dao.MarketItem{f.rows["Mammal"], f.rows["Bird"]}, nil
}

func (f *fakeMarketDAO) FindByType(_ context.Context, itemType string) (dao.MarketItem, error) {
	row, ok := f.rows[itemType]
	if !ok {
		return dao.MarketItem{}, dao.ErrMarketItemNotFound
	}
	return row, nil
}

func (f *fakeMarketDAO) UpdateSupplyDemand(_ context.Context, itemType string, supply, demand int) error {
	row, ok := f.rows[itemType]
	if !ok {
		return dao.ErrMarketItemNotFound
	}
	row.Supply, row.Demand = supply, demand
	f.rows[itemType] = row
	return nil
}

func (f *fakeMarketDAO) Collect(context.Context, string) (dao.MarketItem, error) {
	return dao.MarketItem{}, f.err
}

func (f *fakeMarketDAO) IncrementDemand(context.Context) (int64, error) { return 0, f.err }

func (f *fakeMarketDAO) AppendHistory(_ context.Context, _ string, point dao.HistoryPoint) error {
	f.history = append(f.history, point)
	return nil
}

func newFakeDAO() *fakeMarketDAO {
	return &fakeMarketDAO{rows: map[string]dao.MarketItem{
		"Mammal": {ID: 1, Type: "Mammal", Supply: 3, Demand: 2, History: datatypes.JSON(`[{"time":"2024-06-01T12:00:00Z","price":"0.40"}]`)},
		"Bird":   {ID: 2, Type: "Bird", History: datatypes.JSON(`not json`)},
	}}
}

func TestMarketRepository_FindAll(t *testing.T) {
	repo := NewMarketRepository(newFakeDAO())

	items, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Mammal", items[0].Type)
	require.Len(t, items[0].History, 1)
	assert.Equal(t, "0.40", domain.FormatPrice(items[0].History[0].Price))

	// Unreadable history is rendered empty rather than failing the read.
	assert.Equal(t, "Bird", items[1].Type)
	assert.Empty(t, items[1].History)
	assert.NotNil(t, items[1].History)
}

func TestMarketRepository_WrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	repo := NewMarketRepository(&fakeMarketDAO{err: boom})

	_, err := repo.FindAll(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = repo.Create(context.Background(), domain.MarketItem{Type: "Fish"})
	assert.ErrorIs(t, err, boom)

	_, err = NewMarketRepository(newFakeDAO()).FindByType(context.Background(), "Dragon")
	assert.ErrorIs(t, err, ErrMarketItemNotFound)
}

func TestMarketRepository_UpdateSupplyDemand(t *testing.T) {
	d := newFakeDAO()
	repo := NewMarketRepository(d)

	require.NoError(t, repo.UpdateSupplyDemand(context.Background(), domain.MarketItem{Type: "Mammal", Supply: 4, Demand: 1}))
	assert.Equal(t, 4, d.rows["Mammal"].Supply)
	assert.Equal(t, 1, d.rows["Mammal"].Demand)
}

func TestMarketRepository_CreateAndAppendHistory(t *testing.T) {
	d := newFakeDAO()
	repo := NewMarketRepository(d)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	created, err := repo.Create(context.Background(), domain.MarketItem{
		Type:    "Fish",
		Demand:  3,
		History: []domain.PricePoint{{Time: at, Price: decimal.RequireFromString("0.8")}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 7, created.ID)
	assert.JSONEq(t, `[{"time":"2024-06-01T12:00:00Z","price":"0.80"}]`, string(d.inserted.History))

	require.NoError(t, repo.AppendHistory(context.Background(), "Fish", domain.PricePoint{Time: at, Price: domain.Price(3, 0)}))
	require.Len(t, d.history, 1)
	assert.Equal(t, "0.80", d.history[0].Price)
}

func TestMarketRepository_CreateRejectsUnencodableHistory(t *testing.T) {
	d := newFakeDAO()
	repo := NewMarketRepository(d)

	_, err := repo.Create(context.Background(), domain.MarketItem{
		Type:    "Fish",
		History: []domain.PricePoint{{Time: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), Price: domain.Price(1, 0)}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "historyDomainToDao")
	assert.Empty(t, d.inserted.Type)
}
