// Package models provides domain models for the portfolio dashboard.
package models

// AssetClass discriminates the four holding collections of a portfolio.
type AssetClass string

const (
	ClassFixedDeposit AssetClass = "fd"
	ClassMutualFund   AssetClass = "mf"
	ClassStock        AssetClass = "stock"
	ClassGold         AssetClass = "gold"
)

// AssetClasses lists every asset class in portfolio order.
var AssetClasses = []AssetClass{ClassFixedDeposit, ClassMutualFund, ClassStock, ClassGold}

// Valid reports whether c is a known asset class.
func (c AssetClass) Valid() bool {
	switch c {
	case ClassFixedDeposit, ClassMutualFund, ClassStock, ClassGold:
		return true
	}
	return false
}

// Label returns a human readable name for the asset class.
func (c AssetClass) Label() string {
	switch c {
	case ClassFixedDeposit:
		return "Fixed Deposit"
	case ClassMutualFund:
		return "Mutual Fund"
	case ClassStock:
		return "Stock"
	case ClassGold:
		return "Gold"
	}
	return string(c)
}

// ParseAssetClass accepts the short codes plus a few common spellings.
func ParseAssetClass(s string) (AssetClass, bool) {
	switch s {
	case "fd", "fixed-deposit", "fixedDeposits":
		return ClassFixedDeposit, true
	case "mf", "mutual-fund", "mutualFunds":
		return ClassMutualFund, true
	case "stock", "stocks":
		return ClassStock, true
	case "gold":
		return ClassGold, true
	}
	return "", false
}

// Exchange represents a stock exchange.
type Exchange string

const (
	NSE    Exchange = "NSE"
	BSE    Exchange = "BSE"
	NASDAQ Exchange = "NASDAQ" // USD denominated
)

// IsForeign reports whether holdings on the exchange are priced in USD.
func (e Exchange) IsForeign() bool {
	return e == NASDAQ
}

// Currency returns the ISO code of the exchange's native currency.
func (e Exchange) Currency() string {
	if e.IsForeign() {
		return "USD"
	}
	return "INR"
}

// FDStatus is the lifecycle status of a fixed deposit.
type FDStatus string

const (
	FDActive  FDStatus = "Active"
	FDMatured FDStatus = "Matured"
	FDClosed  FDStatus = "Closed"
)

// GoldType is the kind of gold instrument held.
type GoldType string

const (
	GoldSGB      GoldType = "SGB"
	GoldETF      GoldType = "ETF"
	GoldPhysical GoldType = "Physical"
)

// Owner tags a mutual fund holding. Anything other than OwnerFamily
// belongs to the primary owner, whose display name is configurable.
type Owner string

// OwnerFamily is the shared family owner tag.
const OwnerFamily Owner = "Family"

// IsFamily reports whether the holding belongs to the family bucket.
func (o Owner) IsFamily() bool {
	return o == OwnerFamily
}

// USDINRKey is the price cache key of the USD to INR exchange rate.
const USDINRKey = "USDINR=X"
