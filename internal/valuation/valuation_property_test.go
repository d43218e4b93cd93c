package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/prices"
)

// Property: fixed deposit accrual grows with elapsed time and is zero on
// the start date.
func TestProperty_FixedDepositAccrualMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	start := time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("accrual is non-decreasing in elapsed days", prop.ForAll(
		func(invested, rate float64, d1, d2 int) bool {
			if d1 > d2 {
				d1, d2 = d2, d1
			}
			fd := models.FixedDeposit{
				Invested:     invested,
				Rate:         rate,
				StartDate:    start.Format(models.DateLayout),
				MaturityDate: start.AddDate(10, 0, 0).Format(models.DateLayout),
			}
			at := func(days int) Result {
				return NewEngine(nil).WithClock(func() time.Time {
					return start.AddDate(0, 0, days)
				}).FixedDeposit(fd)
			}
			r1, r2 := at(d1), at(d2)
			if r1.Accrued > r2.Accrued+1e-9 {
				t.Logf("accrual decreased: %d days=%v, %d days=%v", d1, r1.Accrued, d2, r2.Accrued)
				return false
			}
			return r1.CurrentValue >= invested-1e-9
		},
		gen.Float64Range(1000, 10000000),
		gen.Float64Range(0.1, 12),
		gen.IntRange(0, 3650),
		gen.IntRange(0, 3650),
	))

	properties.Property("accrual is zero on the start date", prop.ForAll(
		func(invested, rate float64) bool {
			fd := models.FixedDeposit{Invested: invested, Rate: rate, StartDate: start.Format(models.DateLayout)}
			r := NewEngine(nil).WithClock(func() time.Time { return start }).FixedDeposit(fd)
			return r.ElapsedDays == 0 && r.Accrued == 0 && r.GainLoss == 0
		},
		gen.Float64Range(1000, 10000000),
		gen.Float64Range(0.1, 12),
	))

	properties.TestingRun(t)
}

// Property: return percent is exactly zero whenever nothing was invested.
func TestProperty_ZeroInvestedReturn(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("returnPct == 0 when invested == 0", prop.ForAll(
		func(units, price, live float64, hasLive bool) bool {
			cache := prices.NewCache()
			if hasLive {
				cache.Set("KEY", prices.Snapshot{Price: live})
			}
			e := NewEngine(cache)
			for _, h := range []models.Holding{
				models.MutualFund{SchemeCode: "KEY", Units: units, PurchaseNAV: price},
				models.Stock{Symbol: "KEY", Units: int(units), AvgPrice: price},
				models.Gold{Symbol: "KEY", Units: units, PurchasePrice: price},
			} {
				r := e.Value(h)
				if r.ReturnPct != 0 || math.IsNaN(r.ReturnPct) {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 10000),
		gen.Float64Range(0, 10000),
		gen.Float64Range(0, 10000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property: with no live snapshot the cost basis price is used.
func TestProperty_CostBasisFallback(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("no snapshot means cost basis and not live", prop.ForAll(
		func(units, price, invested float64) bool {
			cache := prices.NewCache()
			cache.Set("OTHER", prices.Snapshot{Price: 1})
			e := NewEngine(cache)

			mf := e.MutualFund(models.MutualFund{SchemeCode: "MISSING", Units: units, PurchaseNAV: price, Invested: invested})
			st := e.Stock(models.Stock{Symbol: "MISSING", Units: int(units), AvgPrice: price, Invested: invested})
			gd := e.Gold(models.Gold{Symbol: "MISSING", Units: units, PurchasePrice: price, Invested: invested})

			for _, r := range []Result{mf, st, gd} {
				if r.IsLive || r.CurrentPrice != price {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 10000),
		gen.Float64Range(0.01, 10000),
		gen.Float64Range(1, 1000000),
	))

	properties.TestingRun(t)
}
