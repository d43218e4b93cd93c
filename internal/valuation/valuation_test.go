package valuation

import (
	"math"
	"testing"
	"time"

	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/prices"
)

var testToday = time.Date(2025, 10, 17, 10, 30, 0, 0, time.UTC)

func newTestEngine(cache *prices.Cache) *Engine {
	return NewEngine(cache).WithClock(func() time.Time { return testToday })
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestFixedDepositOneYear(t *testing.T) {
	e := newTestEngine(prices.NewCache())
	fd := models.FixedDeposit{
		Bank:         "HDFC",
		Invested:     100000,
		Rate:         7.3,
		StartDate:    testToday.AddDate(0, 0, -365).Format(models.DateLayout),
		MaturityDate: testToday.AddDate(0, 0, 30).Format(models.DateLayout),
		Status:       models.FDActive,
	}

	r := e.FixedDeposit(fd)
	if r.ElapsedDays != 365 {
		t.Errorf("ElapsedDays = %d, want 365", r.ElapsedDays)
	}
	if !approx(r.Accrued, 7300, 0.01) {
		t.Errorf("Accrued = %v, want 7300", r.Accrued)
	}
	if !approx(r.CurrentValue, 107300, 0.01) {
		t.Errorf("CurrentValue = %v, want 107300", r.CurrentValue)
	}
	if !approx(r.GainLoss, 7300, 0.01) {
		t.Errorf("GainLoss = %v, want 7300", r.GainLoss)
	}
	if !approx(r.ReturnPct, 7.3, 1e-9) {
		t.Errorf("ReturnPct = %v, want 7.3", r.ReturnPct)
	}
	if r.DaysLeft != 30 {
		t.Errorf("DaysLeft = %d, want 30", r.DaysLeft)
	}
}

func TestFixedDepositClampsDays(t *testing.T) {
	e := newTestEngine(nil)

	future := models.FixedDeposit{
		Invested:     50000,
		Rate:         7,
		StartDate:    testToday.AddDate(0, 1, 0).Format(models.DateLayout),
		MaturityDate: testToday.AddDate(1, 0, 0).Format(models.DateLayout),
	}
	r := e.FixedDeposit(future)
	if r.ElapsedDays != 0 || r.Accrued != 0 || r.GainLoss != 0 {
		t.Errorf("not yet started fd should accrue nothing: %+v", r)
	}

	matured := models.FixedDeposit{
		Invested:     50000,
		Rate:         7,
		StartDate:    "2020-01-01",
		MaturityDate: "2021-01-01",
	}
	if r := e.FixedDeposit(matured); r.DaysLeft != 0 {
		t.Errorf("DaysLeft = %d, want 0 for matured fd", r.DaysLeft)
	}
}

func TestFixedDepositMalformedDates(t *testing.T) {
	e := newTestEngine(nil)
	r := e.FixedDeposit(models.FixedDeposit{Invested: 1000, Rate: 5, StartDate: "soon", MaturityDate: ""})
	if r.CurrentValue != 1000 || r.ElapsedDays != 0 || r.DaysLeft != 0 {
		t.Errorf("malformed dates should degrade to no accrual: %+v", r)
	}
}

func TestMutualFundCostBasisFallback(t *testing.T) {
	e := newTestEngine(prices.NewCache())
	mf := models.MutualFund{Name: "HDFC Flexi Cap Fund", SchemeCode: "100179", Units: 500, PurchaseNAV: 45.23, Invested: 22615}

	r := e.MutualFund(mf)
	if !approx(r.CurrentValue, 22615, 1e-6) {
		t.Errorf("CurrentValue = %v, want 22615", r.CurrentValue)
	}
	if !approx(r.GainLoss, 0, 1e-6) || !approx(r.ReturnPct, 0, 1e-6) {
		t.Errorf("expected zero gain, got %+v", r)
	}
	if r.IsLive || r.CurrentPrice != 45.23 {
		t.Errorf("expected cost basis price, got %+v", r)
	}
}

func TestMutualFundLivePrice(t *testing.T) {
	cache := prices.NewCache()
	cache.Set("100179", prices.Snapshot{Price: 50.00, Source: prices.SourceAMFI})
	e := newTestEngine(cache)
	mf := models.MutualFund{Name: "HDFC Flexi Cap Fund", SchemeCode: "100179", Units: 500, PurchaseNAV: 45.23, Invested: 22615}

	r := e.MutualFund(mf)
	if r.CurrentValue != 25000 {
		t.Errorf("CurrentValue = %v, want 25000", r.CurrentValue)
	}
	if r.GainLoss != 2385 {
		t.Errorf("GainLoss = %v, want 2385", r.GainLoss)
	}
	if !approx(r.ReturnPct, 2385.0/22615*100, 1e-9) {
		t.Errorf("ReturnPct = %v, want ~10.546", r.ReturnPct)
	}
	if !r.IsLive {
		t.Errorf("expected live price")
	}
}

func TestStockStaysInNativeCurrency(t *testing.T) {
	cache := prices.NewCache()
	cache.Set("AAPL", prices.Snapshot{Price: 200})
	cache.Set(models.USDINRKey, prices.Snapshot{Price: 85})
	e := newTestEngine(cache)
	s := models.Stock{Name: "Apple", Symbol: "AAPL", Exchange: models.NASDAQ, Units: 10, AvgPrice: 150, Invested: 1500}

	r := e.Stock(s)
	if r.CurrentValue != 2000 || r.GainLoss != 500 {
		t.Errorf("unexpected native valuation %+v", r)
	}
	if got := e.ToReporting(s, r.CurrentValue); got != 170000 {
		t.Errorf("ToReporting = %v, want 170000", got)
	}
	if got := e.ToReporting(&s, r.CurrentValue); got != 170000 {
		t.Errorf("ToReporting(pointer) = %v, want 170000", got)
	}
	if s.Invested != 1500 {
		t.Errorf("stored record must not change")
	}

	nse := models.Stock{Symbol: "TCS.NS", Exchange: models.NSE}
	if got := e.ToReporting(nse, 1000); got != 1000 {
		t.Errorf("INR holdings must not be converted, got %v", got)
	}
}

func TestGoldManualOverride(t *testing.T) {
	cache := prices.NewCache()
	cache.Set("GOLDBEES.NS", prices.Snapshot{Price: 60})
	e := newTestEngine(cache)

	manual := 40000.0
	g := models.Gold{Name: "SGB", Type: models.GoldSGB, Symbol: "GOLDBEES.NS", Units: 8, PurchasePrice: 4500, Invested: 36000, ManualCurrentValue: &manual}

	r := e.Gold(g)
	if !r.IsManual || r.CurrentValue != 40000 {
		t.Fatalf("manual override not applied: %+v", r)
	}
	if r.GainLoss != 4000 {
		t.Errorf("GainLoss = %v, want 4000", r.GainLoss)
	}
	if !approx(r.ReturnPct, 11.1111, 0.001) {
		t.Errorf("ReturnPct = %v", r.ReturnPct)
	}
	if !r.IsLive || r.CurrentPrice != 60 {
		t.Errorf("live price should still be reported: %+v", r)
	}

	g.ManualCurrentValue = nil
	if r := e.Gold(g); r.IsManual || r.CurrentValue != 480 {
		t.Errorf("without override value = units*price, got %+v", r)
	}
}

func TestZeroInvestedReturnIsZero(t *testing.T) {
	cache := prices.NewCache()
	cache.Set("X", prices.Snapshot{Price: 10})
	e := newTestEngine(cache)

	holdings := []models.Holding{
		models.FixedDeposit{Invested: 0, Rate: 7, StartDate: "2024-01-01"},
		models.MutualFund{SchemeCode: "X", Units: 5},
		models.Stock{Symbol: "X", Units: 5, AvgPrice: 1},
		models.Gold{Symbol: "X", Units: 5},
	}
	for _, h := range holdings {
		r := e.Value(h)
		if r.ReturnPct != 0 || math.IsNaN(r.ReturnPct) || math.IsInf(r.ReturnPct, 0) {
			t.Errorf("%s: ReturnPct = %v, want 0", h.AssetClass(), r.ReturnPct)
		}
	}
}

func TestNilEngineReader(t *testing.T) {
	e := NewEngine(nil)
	r := e.Value(models.Stock{Symbol: "INFY.NS", Units: 2, AvgPrice: 1500, Invested: 3000})
	if r.IsLive || r.CurrentValue != 3000 {
		t.Errorf("nil reader should fall back to cost basis: %+v", r)
	}
	if e.USDINR() != prices.DefaultUSDINR {
		t.Errorf("nil reader should use default FX rate")
	}
}

func TestValueDispatchesPointers(t *testing.T) {
	e := newTestEngine(nil)
	mf := &models.MutualFund{Units: 2, PurchaseNAV: 10, Invested: 20}
	if r := e.Value(mf); r.CurrentValue != 20 {
		t.Errorf("pointer dispatch failed: %+v", r)
	}
}
