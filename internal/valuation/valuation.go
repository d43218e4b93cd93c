// Package valuation converts holding records and live prices into current
// value, gain/loss, and return metrics.
package valuation

import (
	"math"
	"time"

	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/prices"
)

const daysPerYear = 365.0

// Result is the valuation of one holding. Amounts are in the holding's
// native currency.
type Result struct {
	CurrentPrice float64
	CurrentValue float64
	GainLoss     float64
	ReturnPct    float64
	IsLive       bool
	IsManual     bool

	// Fixed deposits only.
	ElapsedDays int
	DaysLeft    int
	Accrued     float64
}

// Engine values holdings against a price cache and a clock.
type Engine struct {
	prices prices.Reader
	now    func() time.Time
}

// NewEngine creates an engine reading live prices from p. A nil reader
// behaves like an empty cache.
func NewEngine(p prices.Reader) *Engine {
	return &Engine{prices: p, now: time.Now}
}

// WithClock replaces the engine clock. Used by tests and the CLI --as-of flag.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Now returns the engine's notion of today.
func (e *Engine) Now() time.Time {
	return e.now()
}

// USDINR returns the reporting exchange rate.
func (e *Engine) USDINR() float64 {
	if e.prices == nil {
		return prices.DefaultUSDINR
	}
	return e.prices.USDINR()
}

// Value dispatches on the holding's asset class.
func (e *Engine) Value(h models.Holding) Result {
	switch v := h.(type) {
	case models.FixedDeposit:
		return e.FixedDeposit(v)
	case models.MutualFund:
		return e.MutualFund(v)
	case models.Stock:
		return e.Stock(v)
	case models.Gold:
		return e.Gold(v)
	case *models.FixedDeposit:
		return e.FixedDeposit(*v)
	case *models.MutualFund:
		return e.MutualFund(*v)
	case *models.Stock:
		return e.Stock(*v)
	case *models.Gold:
		return e.Gold(*v)
	}
	return Result{}
}

// FixedDeposit accrues simple interest by elapsed days since the start date.
func (e *Engine) FixedDeposit(fd models.FixedDeposit) Result {
	today := e.now()
	invested := finite(fd.Invested)

	var elapsed, left int
	if start, ok := fd.Start(); ok {
		elapsed = daysBetween(start, today)
	}
	if maturity, ok := fd.Maturity(); ok {
		left = daysBetween(today, maturity)
	}

	accrued := finite(invested * (finite(fd.Rate) / 100) * (float64(elapsed) / daysPerYear))
	current := invested + accrued
	gain := current - invested

	return Result{
		CurrentPrice: current,
		CurrentValue: current,
		GainLoss:     gain,
		ReturnPct:    returnPct(gain, invested),
		ElapsedDays:  elapsed,
		DaysLeft:     left,
		Accrued:      accrued,
	}
}

// MutualFund values units at the live NAV, falling back to the purchase NAV.
func (e *Engine) MutualFund(mf models.MutualFund) Result {
	return e.unitValue(mf.SchemeCode, mf.PurchaseNAV, mf.Units, mf.Invested)
}

// Stock values units at the live price, falling back to the average buy
// price. The result stays in the exchange's currency.
func (e *Engine) Stock(s models.Stock) Result {
	return e.unitValue(s.Symbol, s.AvgPrice, float64(s.Units), s.Invested)
}

// Gold values units at the live price unless a manual current value was
// entered, in which case that value wins and gain/return derive from it.
func (e *Engine) Gold(g models.Gold) Result {
	r := e.unitValue(g.Symbol, g.PurchasePrice, g.Units, g.Invested)
	if g.ManualCurrentValue != nil {
		invested := finite(g.Invested)
		r.CurrentValue = finite(*g.ManualCurrentValue)
		r.GainLoss = r.CurrentValue - invested
		r.ReturnPct = returnPct(r.GainLoss, invested)
		r.IsManual = true
	}
	return r
}

func (e *Engine) unitValue(key string, costBasis, units, invested float64) Result {
	price := finite(costBasis)
	live := false
	if e.prices != nil {
		if snap, ok := e.prices.Get(key); ok {
			price = finite(snap.Price)
			live = true
		}
	}
	invested = finite(invested)
	current := finite(price * finite(units))
	gain := current - invested
	return Result{
		CurrentPrice: price,
		CurrentValue: current,
		GainLoss:     gain,
		ReturnPct:    returnPct(gain, invested),
		IsLive:       live,
	}
}

// ToReporting converts an amount denominated in h's currency to INR.
func (e *Engine) ToReporting(h models.Holding, amount float64) float64 {
	if s, ok := models.Deref(h).(models.Stock); ok && s.Exchange.IsForeign() {
		return amount * e.USDINR()
	}
	return amount
}

// ReturnPct is gain over invested as a percentage, 0 when nothing was invested.
func ReturnPct(gain, invested float64) float64 {
	return returnPct(gain, invested)
}

func returnPct(gain, invested float64) float64 {
	if invested == 0 {
		return 0
	}
	return finite(gain / invested * 100)
}

// daysBetween returns whole days from a to b rounded to nearest, floored at 0.
func daysBetween(a, b time.Time) int {
	days := math.Round(b.Sub(a).Hours() / 24)
	if days < 0 || math.IsNaN(days) {
		return 0
	}
	return int(days)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
