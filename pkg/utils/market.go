package utils

import (
	"time"
)

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

// NewYorkLocation is the timezone for US markets.
var NewYorkLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
	NewYorkLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// No DST fallback; off by an hour in summer.
		NewYorkLocation = time.FixedZone("EST", -5*60*60)
	}
}

// MarketStatus is the trading session state of an exchange.
type MarketStatus string

const (
	MarketClosed  MarketStatus = "CLOSED"
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketOpen    MarketStatus = "OPEN"
)

type session struct {
	preOpen, open, close int // minutes after midnight, local time
}

var (
	indiaSession = session{preOpen: 9 * 60, open: 9*60 + 15, close: 15*60 + 30}
	usSession    = session{preOpen: 4 * 60, open: 9*60 + 30, close: 16 * 60}
)

func (s session) status(t time.Time, loc *time.Location) MarketStatus {
	local := t.In(loc)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return MarketClosed
	}
	m := local.Hour()*60 + local.Minute()
	switch {
	case m >= s.preOpen && m < s.open:
		return MarketPreOpen
	case m >= s.open && m < s.close:
		return MarketOpen
	}
	return MarketClosed
}

// IndianMarketStatus returns the NSE/BSE session state at t.
func IndianMarketStatus(t time.Time) MarketStatus {
	return indiaSession.status(t, IndiaLocation)
}

// USMarketStatus returns the NASDAQ session state at t.
func USMarketStatus(t time.Time) MarketStatus {
	return usSession.status(t, NewYorkLocation)
}

// AnyMarketOpen reports whether prices can move at t: either the Indian or
// the US market is in session. Mutual fund NAVs are published once a day
// and do not count.
func AnyMarketOpen(t time.Time) bool {
	return IndianMarketStatus(t) == MarketOpen || USMarketStatus(t) == MarketOpen
}

// NextIndianMarketOpen returns the next NSE opening time after t.
func NextIndianMarketOpen(t time.Time) time.Time {
	now := t.In(IndiaLocation)

	next := time.Date(now.Year(), now.Month(), now.Day(), 9, 15, 0, 0, IndiaLocation)
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
