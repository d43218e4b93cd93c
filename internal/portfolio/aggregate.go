// Package portfolio groups holdings into asset class buckets and derives
// bucket and portfolio level totals.
package portfolio

import (
	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/valuation"
)

// BucketKind identifies one of the fixed dashboard buckets.
type BucketKind string

const (
	BucketFixedDeposits BucketKind = "fd"
	BucketMFPrimary     BucketKind = "mf-primary"
	BucketMFFamily      BucketKind = "mf-family"
	BucketIndianEquity  BucketKind = "stocks-nse"
	BucketUSEquity      BucketKind = "stocks-nas"
	BucketGold          BucketKind = "gold"
)

// BucketOrder is the fixed chart and legend order.
var BucketOrder = []BucketKind{
	BucketFixedDeposits,
	BucketMFPrimary,
	BucketMFFamily,
	BucketIndianEquity,
	BucketUSEquity,
	BucketGold,
}

// DefaultPrimaryOwner labels the non-family mutual fund bucket when no
// owner name is configured.
const DefaultPrimaryOwner = "Self"

// Bucket is a derived grouping of holdings. Amounts are in INR.
type Bucket struct {
	Kind      BucketKind       `json:"kind"`
	Label     string           `json:"label"`
	Icon      string           `json:"icon"`
	Members   []models.Holding `json:"-"`
	Count     int              `json:"count"`
	Invested  float64          `json:"invested"`
	Current   float64          `json:"current"`
	GainLoss  float64          `json:"gainLoss"`
	ReturnPct float64          `json:"returnPct"`
}

// Total is the portfolio wide sum over all buckets.
type Total struct {
	Invested  float64 `json:"invested"`
	Current   float64 `json:"current"`
	GainLoss  float64 `json:"gainLoss"`
	ReturnPct float64 `json:"returnPct"`
}

// Aggregator computes buckets from a portfolio. It keeps no results
// between calls; every call recomputes from the portfolio and the engine's
// current prices.
type Aggregator struct {
	engine       *valuation.Engine
	primaryOwner string
}

// NewAggregator creates an aggregator. primaryOwner names the non-family
// mutual fund bucket.
func NewAggregator(engine *valuation.Engine, primaryOwner string) *Aggregator {
	if primaryOwner == "" {
		primaryOwner = DefaultPrimaryOwner
	}
	return &Aggregator{engine: engine, primaryOwner: primaryOwner}
}

// PrimaryOwner returns the configured primary owner name.
func (a *Aggregator) PrimaryOwner() string {
	return a.primaryOwner
}

// Label returns the display label of a bucket kind.
func (a *Aggregator) Label(kind BucketKind) string {
	switch kind {
	case BucketFixedDeposits:
		return "Fixed Deposits"
	case BucketMFPrimary:
		return "MF — " + a.primaryOwner
	case BucketMFFamily:
		return "MF — Family"
	case BucketIndianEquity:
		return "Indian Equity"
	case BucketUSEquity:
		return "US Equity"
	case BucketGold:
		return "Gold / SGB"
	}
	return string(kind)
}

// Icon returns the display icon of a bucket kind.
func Icon(kind BucketKind) string {
	switch kind {
	case BucketFixedDeposits:
		return "🏛"
	case BucketMFPrimary:
		return "📈"
	case BucketMFFamily:
		return "👨‍👩‍👧"
	case BucketIndianEquity:
		return "📊"
	case BucketUSEquity:
		return "🇺🇸"
	case BucketGold:
		return "🥇"
	}
	return ""
}

// Members partitions the portfolio for one bucket kind. The partition is
// exhaustive: every holding lands in exactly one bucket.
func Members(p *models.Portfolio, kind BucketKind) []models.Holding {
	var out []models.Holding
	switch kind {
	case BucketFixedDeposits:
		for _, h := range p.FixedDeposits {
			out = append(out, h)
		}
	case BucketMFPrimary, BucketMFFamily:
		family := kind == BucketMFFamily
		for _, h := range p.MutualFunds {
			if h.Owner.IsFamily() == family {
				out = append(out, h)
			}
		}
	case BucketIndianEquity, BucketUSEquity:
		foreign := kind == BucketUSEquity
		for _, h := range p.Stocks {
			if h.Exchange.IsForeign() == foreign {
				out = append(out, h)
			}
		}
	case BucketGold:
		for _, h := range p.Gold {
			out = append(out, h)
		}
	}
	return out
}

// Buckets returns the non-empty buckets in BucketOrder.
func (a *Aggregator) Buckets(p *models.Portfolio) []Bucket {
	buckets := make([]Bucket, 0, len(BucketOrder))
	for _, kind := range BucketOrder {
		members := Members(p, kind)
		if len(members) == 0 {
			continue
		}
		buckets = append(buckets, a.bucket(kind, members))
	}
	return buckets
}

func (a *Aggregator) bucket(kind BucketKind, members []models.Holding) Bucket {
	b := Bucket{
		Kind:    kind,
		Label:   a.Label(kind),
		Icon:    Icon(kind),
		Members: members,
		Count:   len(members),
	}
	for _, h := range members {
		r := a.engine.Value(h)
		b.Invested += a.engine.ToReporting(h, h.InvestedAmount())
		b.Current += a.engine.ToReporting(h, r.CurrentValue)
	}
	b.GainLoss = b.Current - b.Invested
	b.ReturnPct = valuation.ReturnPct(b.GainLoss, b.Invested)
	return b
}

// Sum totals the given buckets.
func Sum(buckets []Bucket) Total {
	var t Total
	for _, b := range buckets {
		t.Invested += b.Invested
		t.Current += b.Current
		t.GainLoss += b.GainLoss
	}
	t.ReturnPct = valuation.ReturnPct(t.GainLoss, t.Invested)
	return t
}

// Total computes the portfolio total.
func (a *Aggregator) Total(p *models.Portfolio) Total {
	return Sum(a.Buckets(p))
}
