package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("transient")
var errFatal = errors.New("fatal")

func quick() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2}
}

func TestRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	v, err := RetryWithResult(context.Background(), quick(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errTransient
		}
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	cfg := quick()
	cfg.Retryable = func(err error) bool { return !errors.Is(err, errFatal) }
	calls := 0
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return errFatal
	})
	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
}

func TestRetryRespectsContext(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, BackoffFactor: 1}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Retry(ctx, cfg, func() error { return errTransient })
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProperty_BackoffBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("backoff never exceeds max delay", prop.ForAll(
		func(attempt int) bool {
			d := CalculateBackoff(attempt, 100*time.Millisecond, 5*time.Second, 2)
			return d > 0 && d <= 5*time.Second
		},
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

func TestMarketStatus(t *testing.T) {
	ist := IndiaLocation
	// Friday 17 Oct 2025
	assert.Equal(t, MarketPreOpen, IndianMarketStatus(time.Date(2025, 10, 17, 9, 5, 0, 0, ist)))
	assert.Equal(t, MarketOpen, IndianMarketStatus(time.Date(2025, 10, 17, 11, 0, 0, 0, ist)))
	assert.Equal(t, MarketClosed, IndianMarketStatus(time.Date(2025, 10, 17, 15, 30, 0, 0, ist)))
	assert.Equal(t, MarketClosed, IndianMarketStatus(time.Date(2025, 10, 18, 11, 0, 0, 0, ist)))

	ny := NewYorkLocation
	assert.Equal(t, MarketOpen, USMarketStatus(time.Date(2025, 10, 17, 10, 0, 0, 0, ny)))
	assert.True(t, AnyMarketOpen(time.Date(2025, 10, 17, 10, 0, 0, 0, ny)))
	assert.False(t, AnyMarketOpen(time.Date(2025, 10, 19, 10, 0, 0, 0, ny)))
}

func TestNextIndianMarketOpen(t *testing.T) {
	ist := IndiaLocation
	next := NextIndianMarketOpen(time.Date(2025, 10, 17, 16, 0, 0, 0, ist))
	assert.Equal(t, time.Date(2025, 10, 20, 9, 15, 0, 0, ist), next)

	next = NextIndianMarketOpen(time.Date(2025, 10, 20, 8, 0, 0, 0, ist))
	assert.Equal(t, time.Date(2025, 10, 20, 9, 15, 0, 0, ist), next)
}
