package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/tableview"
)

type failingPersister struct {
	JSONFileStore
	fail bool
}

func (f *failingPersister) SavePortfolio(ctx context.Context, p *models.Portfolio) error {
	if f.fail {
		return errors.New("disk full")
	}
	return nil
}

func (f *failingPersister) LoadPortfolio(ctx context.Context) (*models.Portfolio, error) {
	return &models.Portfolio{}, nil
}

func newJSONStore(t *testing.T) (*Store, *JSONFileStore) {
	t.Helper()
	js, err := NewJSONFileStore(filepath.Join(t.TempDir(), "portfolio.json"))
	require.NoError(t, err)
	s, err := Open(context.Background(), js)
	require.NoError(t, err)
	return s, js
}

func sampleStock(symbol string) models.Stock {
	return models.Stock{Name: symbol, Symbol: symbol, Exchange: models.NSE, Units: 10, AvgPrice: 100, Invested: 1000}
}

func TestAddUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s, js := newJSONStore(t)

	i, err := s.Add(ctx, models.ClassStock, sampleStock("TCS.NS"))
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	i, err = s.Add(ctx, models.ClassStock, sampleStock("INFY.NS"))
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	updated := sampleStock("INFY.NS")
	updated.Units = 20
	updated.Invested = 2000
	require.NoError(t, s.Update(ctx, models.ClassStock, 1, &updated))

	removed, err := s.Delete(ctx, models.ClassStock, 0)
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", removed.(models.Stock).Symbol)

	reloaded, err := js.LoadPortfolio(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded.Stocks, 1)
	assert.Equal(t, 20, reloaded.Stocks[0].Units)
	assert.NotNil(t, reloaded.FixedDeposits, "collections are normalized")
}

func TestMutationErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := newJSONStore(t)

	_, err := s.Add(ctx, models.ClassGold, sampleStock("X"))
	assert.True(t, apperrors.Is(err, apperrors.ErrAssetClassMismatch))

	err = s.Update(ctx, models.ClassStock, 3, sampleStock("X"))
	assert.True(t, apperrors.Is(err, apperrors.ErrIndexOutOfRange))

	_, err = s.Delete(ctx, models.ClassFixedDeposit, -1)
	assert.True(t, apperrors.Is(err, apperrors.ErrIndexOutOfRange))

	bad := sampleStock("X")
	bad.Invested = -5
	_, err = s.Add(ctx, models.ClassStock, bad)
	assert.True(t, apperrors.Is(err, apperrors.ErrInputValidation))

	var storeErr *apperrors.StoreError
	require.True(t, apperrors.As(err, &storeErr))
	assert.Equal(t, "add", storeErr.Op)
}

func TestPersistFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	fp := &failingPersister{}
	s, err := Open(ctx, fp)
	require.NoError(t, err)

	_, err = s.Add(ctx, models.ClassStock, sampleStock("TCS.NS"))
	require.NoError(t, err)

	fp.fail = true
	_, err = s.Add(ctx, models.ClassStock, sampleStock("INFY.NS"))
	require.Error(t, err)
	assert.Len(t, s.Portfolio().Stocks, 1)
}

func TestGoldManualValue(t *testing.T) {
	ctx := context.Background()
	s, _ := newJSONStore(t)
	_, err := s.Add(ctx, models.ClassGold, models.Gold{Name: "SGB", Type: models.GoldSGB, Units: 8, PurchasePrice: 4500, Invested: 36000})
	require.NoError(t, err)

	v := 40000.0
	require.NoError(t, s.SetGoldManualValue(ctx, 0, &v))
	v = 1 // caller's variable must not alias stored state
	got := s.Portfolio().Gold[0].ManualCurrentValue
	require.NotNil(t, got)
	assert.Equal(t, 40000.0, *got)

	require.NoError(t, s.SetGoldManualValue(ctx, 0, nil))
	assert.Nil(t, s.Portfolio().Gold[0].ManualCurrentValue)

	assert.Error(t, s.SetGoldManualValue(ctx, 5, nil))
	neg := -1.0
	assert.Error(t, s.SetGoldManualValue(ctx, 0, &neg))
}

func TestPortfolioReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newJSONStore(t)
	_, err := s.Add(ctx, models.ClassStock, sampleStock("TCS.NS"))
	require.NoError(t, err)

	p := s.Portfolio()
	p.Stocks[0].Units = 999
	assert.Equal(t, 10, s.Portfolio().Stocks[0].Units)
}

func TestViewStatesPersistIndependently(t *testing.T) {
	ctx := context.Background()
	s, js := newJSONStore(t)

	states := s.LoadViewStates(ctx)
	states.Update(tableview.TableGold, func(v *tableview.ViewState) {
		v.SetColumnVisible("type", false)
		v.ToggleSort("name")
	})
	require.NoError(t, s.SaveViewStates(ctx, states))

	reopened, err := Open(ctx, js)
	require.NoError(t, err)
	got := reopened.LoadViewStates(ctx).Get(tableview.TableGold)
	assert.False(t, got.IsVisible("type"))
	assert.Equal(t, "name", got.SortCol)
	assert.Empty(t, reopened.Portfolio().Gold)
}

func TestFreshness(t *testing.T) {
	s, _ := newJSONStore(t)
	now := time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)

	f := s.Freshness(SyncTypePrices, now)
	assert.False(t, f.IsFresh)
	assert.Equal(t, "Never synced", FormatFreshness(f))

	require.NoError(t, s.MarkSynced(SyncTypePrices, now.Add(-5*time.Minute)))
	f = s.Freshness(SyncTypePrices, now)
	assert.True(t, f.IsFresh)
	assert.Equal(t, "Updated 5 minutes ago", FormatFreshness(f))

	f = s.Freshness(SyncTypePrices, now.Add(2*time.Hour))
	assert.False(t, f.IsFresh)
	assert.Contains(t, FormatFreshness(f), "Stale")
}

func TestDecodePortfolioShapes(t *testing.T) {
	keyed := []byte(`{"fixedDeposits":[{"bank":"SBI","invested":1000,"rate":7,"startDate":"2024-01-01","maturityDate":"2025-01-01"}],
		"stocks":[{"symbol":"AAPL","exchange":"NASDAQ","units":2,"avgPrice":150,"invested":300}]}`)
	p, err := DecodePortfolio(keyed)
	require.NoError(t, err)
	assert.Len(t, p.FixedDeposits, 1)
	assert.Len(t, p.Stocks, 1)
	assert.NotNil(t, p.Gold)

	flat := []byte(`[{"name":"HDFC","schemeCode":"100179","units":1,"purchaseNAV":10,"invested":10},
		{"symbol":"SGBJUN27","units":1,"purchasePrice":5000,"invested":5000},
		{"symbol":"TCS.NS","avgPrice":3500,"units":1,"invested":3500},
		{"bank":"HDFC","maturityDate":"2026-01-01","invested":1000}]`)
	p, err = DecodePortfolio(flat)
	require.NoError(t, err)
	assert.Len(t, p.MutualFunds, 1)
	assert.Len(t, p.Gold, 1)
	assert.Len(t, p.Stocks, 1)
	assert.Len(t, p.FixedDeposits, 1)

	_, err = DecodePortfolio([]byte(`[{"note":"what am I"}]`))
	assert.Error(t, err)
}

func TestOpenPersisterDrivers(t *testing.T) {
	dir := t.TempDir()
	p, err := OpenPersister(DriverJSON, filepath.Join(dir, "portfolio.json"))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	p, err = OpenPersister(DriverSQLite, filepath.Join(dir, "db", "portfolio.db"))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	_, err = OpenPersister("postgres", "x")
	assert.Error(t, err)
}
