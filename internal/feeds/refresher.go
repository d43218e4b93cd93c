package feeds

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/internal/logging"
	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/prices"
	"portfolio-dashboard/internal/resilience"
	"portfolio-dashboard/pkg/utils"
)

// Provider names, used for circuit breakers and status reporting.
const (
	ProviderAMFI  = "amfi"
	ProviderYahoo = "yahoo"
)

// DefaultConcurrency bounds simultaneous Yahoo requests.
const DefaultConcurrency = 8

// Report is the outcome of one refresh pass. Every lookup key appears in
// exactly one of Updated or Failed.
type Report struct {
	Updated  []string         `json:"updated"`
	Failed   map[string]error `json:"-"`
	Duration time.Duration    `json:"duration"`
}

// FailedKeys returns the failed lookup keys in sorted order.
func (r Report) FailedKeys() []string {
	keys := make([]string, 0, len(r.Failed))
	for k := range r.Failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Refresher fans price lookups out to the feeds and writes every success
// into the cache. One failing lookup never affects another.
type Refresher struct {
	amfi        *AMFIFetcher
	yahoo       *YahooFetcher
	cache       *prices.Cache
	breakers    *resilience.CircuitBreakerRegistry
	monitor     *resilience.ServiceMonitor
	retry       utils.RetryConfig
	concurrency int
	logger      zerolog.Logger
}

// NewRefresher wires fetchers to a cache with default retry and circuit
// breaker settings.
func NewRefresher(amfi *AMFIFetcher, yahoo *YahooFetcher, cache *prices.Cache) *Refresher {
	retry := utils.DefaultRetryConfig()
	retry.Retryable = Retryable
	return &Refresher{
		amfi:        amfi,
		yahoo:       yahoo,
		cache:       cache,
		breakers:    resilience.NewCircuitBreakerRegistry(resilience.DefaultCircuitBreakerConfig()),
		monitor:     resilience.NewServiceMonitor(),
		retry:       retry,
		concurrency: DefaultConcurrency,
		logger:      zerolog.Nop(),
	}
}

// WithConcurrency sets the maximum number of simultaneous lookups.
func (r *Refresher) WithConcurrency(n int) *Refresher {
	if n > 0 {
		r.concurrency = n
	}
	return r
}

// WithRetry replaces the retry policy.
func (r *Refresher) WithRetry(cfg utils.RetryConfig) *Refresher {
	if cfg.Retryable == nil {
		cfg.Retryable = Retryable
	}
	r.retry = cfg
	return r
}

// WithLogger sets the logger for fetch events.
func (r *Refresher) WithLogger(logger zerolog.Logger) *Refresher {
	r.logger = logger
	return r
}

// Monitor exposes provider availability from past refreshes.
func (r *Refresher) Monitor() *resilience.ServiceMonitor {
	return r.monitor
}

// Breakers exposes the per-provider circuit breakers.
func (r *Refresher) Breakers() *resilience.CircuitBreakerRegistry {
	return r.breakers
}

// Keys lists the lookup keys a refresh of p covers: every mutual fund
// scheme code, every stock and gold symbol, and USDINR. Duplicates and
// empty keys are dropped.
func Keys(p *models.Portfolio) (schemes, symbols []string) {
	seen := make(map[string]bool)
	add := func(dst *[]string, key string) {
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		*dst = append(*dst, key)
	}
	for _, mf := range p.MutualFunds {
		add(&schemes, mf.SchemeCode)
	}
	for _, s := range p.Stocks {
		add(&symbols, s.Symbol)
	}
	for _, g := range p.Gold {
		add(&symbols, g.Symbol)
	}
	add(&symbols, models.USDINRKey)
	return schemes, symbols
}

type outcome struct {
	key  string
	snap prices.Snapshot
	err  error
}

// Refresh fetches every price p needs. It waits for all lookups to settle,
// then reports which keys were updated and why the others failed.
func (r *Refresher) Refresh(ctx context.Context, p *models.Portfolio) Report {
	start := time.Now()
	schemes, symbols := Keys(p)

	results := pool.NewWithResults[[]outcome]().WithMaxGoroutines(r.concurrency)
	if len(schemes) > 0 && r.amfi != nil {
		results.Go(func() []outcome {
			return r.fetchNAVs(ctx, schemes)
		})
	}
	if r.yahoo != nil {
		for _, sym := range symbols {
			sym := sym
			results.Go(func() []outcome {
				return []outcome{r.fetchQuote(ctx, sym)}
			})
		}
	}

	report := Report{Failed: make(map[string]error)}
	for _, batch := range results.Wait() {
		for _, o := range batch {
			if o.err != nil {
				report.Failed[o.key] = o.err
				continue
			}
			r.cache.Set(o.key, o.snap)
			report.Updated = append(report.Updated, o.key)
		}
	}
	sort.Strings(report.Updated)
	report.Duration = time.Since(start)

	logging.LogRefresh(r.logger, len(report.Updated), len(report.Failed), report.Duration)
	return report
}

func (r *Refresher) fetchNAVs(ctx context.Context, schemes []string) []outcome {
	start := time.Now()
	navs, err := resilience.ExecuteWithResult(r.breakers.Get(ProviderAMFI), ctx,
		func(ctx context.Context) (map[string]decimal.Decimal, error) {
			return utils.RetryWithResult(ctx, r.retry, func() (map[string]decimal.Decimal, error) {
				return r.amfi.FetchNAVs(ctx)
			})
		})
	r.monitor.UpdateStatus(ProviderAMFI, err == nil, time.Since(start), err)

	out := make([]outcome, 0, len(schemes))
	for _, code := range schemes {
		if err != nil {
			out = append(out, outcome{key: code, err: apperrors.NewFetchError(ProviderAMFI, code, err)})
			continue
		}
		nav, ok := navs[code]
		if !ok {
			out = append(out, outcome{key: code, err: apperrors.NewFetchError(ProviderAMFI, code, apperrors.ErrPriceUnavailable)})
			continue
		}
		price, _ := nav.Float64()
		out = append(out, outcome{key: code, snap: prices.Snapshot{Price: price, Source: prices.SourceAMFI}})
	}
	logging.LogPriceFetch(r.logger, ProviderAMFI, "", float64(len(navs)), time.Since(start), err)
	return out
}

func (r *Refresher) fetchQuote(ctx context.Context, symbol string) outcome {
	start := time.Now()
	// An unknown symbol is the symbol's fault, not the provider's, so it
	// does not count against the breaker.
	var rejected error
	snap, err := resilience.ExecuteWithResult(r.breakers.Get(ProviderYahoo), ctx,
		func(ctx context.Context) (prices.Snapshot, error) {
			s, err := utils.RetryWithResult(ctx, r.retry, func() (prices.Snapshot, error) {
				return r.yahoo.Fetch(ctx, symbol)
			})
			if err != nil && !Retryable(err) && ctx.Err() == nil {
				rejected = err
				return s, nil
			}
			return s, err
		})
	r.monitor.UpdateStatus(ProviderYahoo, err == nil, time.Since(start), err)
	if err == nil && rejected != nil {
		err = rejected
	}
	logging.LogPriceFetch(logging.WithSymbol(r.logger, symbol), ProviderYahoo, symbol, snap.Price, time.Since(start), err)

	if err != nil {
		return outcome{key: symbol, err: apperrors.NewFetchError(ProviderYahoo, symbol, err)}
	}
	return outcome{key: symbol, snap: snap}
}
