package tableview

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/prices"
	"portfolio-dashboard/internal/valuation"
)

var viewToday = time.Date(2025, 10, 17, 9, 0, 0, 0, time.UTC)

func newModel(cache *prices.Cache) *Model {
	return NewModel(valuation.NewEngine(cache).WithClock(func() time.Time { return viewToday }))
}

func mfPortfolio() *models.Portfolio {
	return &models.Portfolio{
		MutualFunds: []models.MutualFund{
			{Name: "ICICI Pru Bluechip", SchemeCode: "120586", Owner: "Self", Units: 100, PurchaseNAV: 80, Invested: 8000},
			{Name: "HDFC Flexi Cap Fund", SchemeCode: "100179", Owner: "Self", Units: 500, PurchaseNAV: 45.23, Invested: 22615},
			{Name: "Axis Midcap", SchemeCode: "120505", Owner: models.OwnerFamily, Units: 10, PurchaseNAV: 70, Invested: 700},
		},
	}
}

func TestSearchMatchesCaseInsensitive(t *testing.T) {
	m := newModel(prices.NewCache())
	st := DefaultViewState(TableMFPrimary)
	st.Query = "hdfc"

	res := m.Table(TableMFPrimary, mfPortfolio(), st)

	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 1, res.Rows[0].Index)
	assert.Equal(t, "HDFC Flexi Cap Fund", res.Rows[0].Holding.(models.MutualFund).Name)
}

func TestSearchMatchesNumericFields(t *testing.T) {
	m := newModel(prices.NewCache())
	st := DefaultViewState(TableMFPrimary)
	st.Query = "22615"

	res := m.Table(TableMFPrimary, mfPortfolio(), st)
	assert.Equal(t, 1, res.Matched)
}

func TestCategoryLossKeepsOnlyLosers(t *testing.T) {
	cache := prices.NewCache()
	cache.Set("LOSS.NS", prices.Snapshot{Price: 50})
	cache.Set("GAIN.NS", prices.Snapshot{Price: 120})
	p := &models.Portfolio{Stocks: []models.Stock{
		{Name: "Loser", Symbol: "LOSS.NS", Exchange: models.NSE, Units: 10, AvgPrice: 100, Invested: 1000},
		{Name: "Winner", Symbol: "GAIN.NS", Exchange: models.NSE, Units: 10, AvgPrice: 100, Invested: 1000},
	}}
	m := newModel(cache)

	st := DefaultViewState(TableStocksNSE)
	st.Category = CategoryLoss
	res := m.Table(TableStocksNSE, p, st)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Loser", res.Rows[0].Holding.(models.Stock).Name)
	assert.Equal(t, -500.0, res.Rows[0].Valuation.GainLoss)

	st.Category = CategoryGain
	res = m.Table(TableStocksNSE, p, st)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Winner", res.Rows[0].Holding.(models.Stock).Name)
}

func TestGainFilterKeepsBreakEven(t *testing.T) {
	m := newModel(prices.NewCache())
	st := DefaultViewState(TableMFPrimary)
	st.Category = CategoryGain

	res := m.Table(TableMFPrimary, mfPortfolio(), st)
	assert.Equal(t, 2, res.Matched, "zero gain counts as gain")
}

func TestDefaultSortOrders(t *testing.T) {
	m := newModel(prices.NewCache())

	res := m.Table(TableMFPrimary, mfPortfolio(), DefaultViewState(TableMFPrimary))
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 1, res.Rows[0].Index, "largest invested first")

	p := &models.Portfolio{FixedDeposits: []models.FixedDeposit{
		{Bank: "SBI", Invested: 1000, Rate: 7, StartDate: "2024-01-01", MaturityDate: "2027-03-01"},
		{Bank: "HDFC", Invested: 1000, Rate: 7, StartDate: "2024-01-01", MaturityDate: "2026-01-15"},
		{Bank: "Axis", Invested: 1000, Rate: 7, StartDate: "2024-01-01", MaturityDate: "2026-11-30"},
	}}
	res = m.Table(TableFD, p, DefaultViewState(TableFD))
	var banks []string
	for _, r := range res.Rows {
		banks = append(banks, r.Holding.(models.FixedDeposit).Bank)
	}
	assert.Equal(t, []string{"HDFC", "Axis", "SBI"}, banks)
}

func TestSortByVirtualColumn(t *testing.T) {
	cache := prices.NewCache()
	cache.Set("120586", prices.Snapshot{Price: 100}) // +2000
	cache.Set("100179", prices.Snapshot{Price: 40})  // -2615
	m := newModel(cache)

	st := DefaultViewState(TableMFPrimary)
	st.ToggleSort(ColGainLoss)
	res := m.Table(TableMFPrimary, mfPortfolio(), st)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 1, res.Rows[0].Index)
	assert.Equal(t, 0, res.Rows[1].Index)
}

func TestSortTextUsesCollation(t *testing.T) {
	m := newModel(prices.NewCache())
	p := &models.Portfolio{Gold: []models.Gold{
		{Name: "sgb 2030", Invested: 1},
		{Name: "Gold ETF", Invested: 2},
		{Name: "Coins", Invested: 3},
	}}
	st := DefaultViewState(TableGold)
	st.ToggleSort("name")

	res := m.Table(TableGold, p, st)
	var names []string
	for _, r := range res.Rows {
		names = append(names, r.Holding.(models.Gold).Name)
	}
	assert.Equal(t, []string{"Coins", "Gold ETF", "sgb 2030"}, names)
}

func TestProjectionKeepsActions(t *testing.T) {
	m := newModel(prices.NewCache())
	st := DefaultViewState(TableMFPrimary)
	st.SetColumnVisible("schemeCode", false)
	st.SetColumnVisible(ColActions, false)

	res := m.Table(TableMFPrimary, mfPortfolio(), st)
	var keys []string
	for _, c := range res.Columns {
		keys = append(keys, c.Key)
	}
	assert.NotContains(t, keys, "schemeCode")
	assert.Contains(t, keys, ColActions)
	require.NotEmpty(t, res.Rows)
	assert.Len(t, res.Rows[0].Cells, len(res.Columns))
}

func TestEmptyStates(t *testing.T) {
	m := newModel(prices.NewCache())

	res := m.Table(TableGold, &models.Portfolio{}, DefaultViewState(TableGold))
	assert.True(t, res.NoData())
	assert.False(t, res.NoResults())

	st := DefaultViewState(TableMFPrimary)
	st.Query = "no such fund"
	res = m.Table(TableMFPrimary, mfPortfolio(), st)
	assert.False(t, res.NoData())
	assert.True(t, res.NoResults())
}

func TestGoldManualColumnAbsentWhenUnset(t *testing.T) {
	m := newModel(prices.NewCache())
	manual := 500.0
	p := &models.Portfolio{Gold: []models.Gold{
		{Name: "Coins", Units: 1, PurchasePrice: 400, Invested: 400},
		{Name: "SGB", Units: 1, PurchasePrice: 400, Invested: 400, ManualCurrentValue: &manual},
	}}
	rows := TableGold.Rows(p)

	_, ok := m.Value(ColManualVal, rows[0])
	assert.False(t, ok)
	v, ok := m.Value(ColManualVal, rows[1])
	assert.True(t, ok)
	assert.Equal(t, 500.0, v)
}

func TestUSTableINRColumns(t *testing.T) {
	cache := prices.NewCache()
	cache.Set(models.USDINRKey, prices.Snapshot{Price: 85})
	cache.Set("AAPL", prices.Snapshot{Price: 200})
	m := newModel(cache)
	p := &models.Portfolio{Stocks: []models.Stock{
		{Name: "Apple", Symbol: "AAPL", Exchange: models.NASDAQ, Units: 10, AvgPrice: 150, Invested: 1500},
		{Name: "TCS", Symbol: "TCS.NS", Exchange: models.NSE, Units: 1, AvgPrice: 3500, Invested: 3500},
	}}

	rows := TableStocksNAS.Rows(p)
	require.Len(t, rows, 1)
	v, _ := m.Value(ColINR, rows[0])
	assert.Equal(t, 127500.0, v)
	v, _ = m.Value(ColLiveINR, rows[0])
	assert.Equal(t, 170000.0, v)
}

func TestPointerRowsResolveComputedColumns(t *testing.T) {
	cache := prices.NewCache()
	cache.Set(models.USDINRKey, prices.Snapshot{Price: 85})
	cache.Set("AAPL", prices.Snapshot{Price: 200})
	m := newModel(cache)
	row := Row{Holding: &models.Stock{Name: "Apple", Symbol: "AAPL", Exchange: models.NASDAQ, Units: 10, AvgPrice: 150, Invested: 1500}}

	v, ok := m.Value(ColINR, row)
	require.True(t, ok)
	assert.Equal(t, 127500.0, v)
	v, ok = m.Value(ColLivePrice, row)
	require.True(t, ok)
	assert.Equal(t, 200.0, v)
}

func TestApplyIsIdempotent(t *testing.T) {
	m := newModel(prices.NewCache())
	st := DefaultViewState(TableMFPrimary)
	st.Query = "fund"
	st.ToggleSort("name")

	a := m.Table(TableMFPrimary, mfPortfolio(), st)
	b := m.Table(TableMFPrimary, mfPortfolio(), st)
	assert.True(t, reflect.DeepEqual(a, b))
}

func TestRowsPartitionByOwnerAndExchange(t *testing.T) {
	p := mfPortfolio()
	assert.Len(t, TableMFPrimary.Rows(p), 2)
	family := TableMFFamily.Rows(p)
	require.Len(t, family, 1)
	assert.Equal(t, 2, family[0].Index)
}

func TestCompareMixedKeys(t *testing.T) {
	c := newComparator(defaultTag())
	assert.Equal(t, -1, c.compare(2.0, 10.0))
	assert.Equal(t, -1, c.compare("2", "10"), "numeric strings compare as numbers")
	assert.Equal(t, -1, c.compare("2024-01-05", "2024-11-05"), "dates collate as text")
	assert.Equal(t, 0, c.compare(nil, nil))
	assert.Equal(t, 1, c.compare(5, nil))
	assert.Equal(t, -1, c.compare("abc", 3.0), "non numbers count as zero")
}
