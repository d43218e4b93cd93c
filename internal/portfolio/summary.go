package portfolio

import (
	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/valuation"
)

// Card is one dashboard summary card.
type Card struct {
	Title     string  `json:"title"`
	Icon      string  `json:"icon"`
	Invested  float64 `json:"invested"`
	Current   float64 `json:"current"`
	GainLoss  float64 `json:"gainLoss"`
	ReturnPct float64 `json:"returnPct"`
	Present   bool    `json:"present"`
}

// Summary is everything the dashboard shows above the tables.
type Summary struct {
	Buckets []Bucket `json:"buckets"`
	Total   Total    `json:"total"`
	Cards   []Card   `json:"cards"`
	USDINR  float64  `json:"usdInr"`
}

// Summary computes buckets, the total, and the per asset class cards.
// Mutual fund and stock cards combine their two buckets.
func (a *Aggregator) Summary(p *models.Portfolio) Summary {
	buckets := a.Buckets(p)
	byKind := make(map[BucketKind]Bucket, len(buckets))
	for _, b := range buckets {
		byKind[b.Kind] = b
	}

	total := Sum(buckets)
	cards := []Card{
		{Title: "Total Portfolio", Icon: "💼", Invested: total.Invested, Current: total.Current, GainLoss: total.GainLoss, ReturnPct: total.ReturnPct, Present: len(buckets) > 0},
		combine("Fixed Deposits", "🏛", byKind, BucketFixedDeposits),
		combine("Mutual Funds", "📈", byKind, BucketMFPrimary, BucketMFFamily),
		combine("Stocks", "📊", byKind, BucketIndianEquity, BucketUSEquity),
		combine("Gold / SGB", "🥇", byKind, BucketGold),
	}

	return Summary{
		Buckets: buckets,
		Total:   total,
		Cards:   cards,
		USDINR:  a.engine.USDINR(),
	}
}

func combine(title, icon string, byKind map[BucketKind]Bucket, kinds ...BucketKind) Card {
	c := Card{Title: title, Icon: icon}
	for _, k := range kinds {
		b, ok := byKind[k]
		if !ok {
			continue
		}
		c.Present = true
		c.Invested += b.Invested
		c.Current += b.Current
	}
	c.GainLoss = c.Current - c.Invested
	c.ReturnPct = valuation.ReturnPct(c.GainLoss, c.Invested)
	return c
}
