package tableview

import "strings"

// Virtual column keys. Virtual columns are computed from a valuation
// instead of being read from a stored field.
const (
	ColActions   = "_actions"
	ColCurVal    = "_curVal"
	ColGainLoss  = "_gl"
	ColReturn    = "_ret"
	ColCurNAV    = "_curNAV"
	ColLivePrice = "_liveP"
	ColDaysLeft  = "_daysLeft"
	ColINR       = "_inr"
	ColLiveINR   = "_liveINR"
	ColManualVal = "_manualVal"
)

// Kind tells the presentation layer how to format a column's values.
type Kind int

const (
	KindText Kind = iota
	KindMono
	KindAmount    // in the table's native currency
	KindAmountINR // always INR
	KindPercent
	KindRate
	KindUnits
	KindDays
	KindLivePrice
	KindGainLoss
	KindActions
)

// Column describes one table column.
type Column struct {
	Key   string
	Label string
	Kind  Kind
}

// Virtual reports whether the column is computed.
func (c Column) Virtual() bool {
	return IsVirtual(c.Key)
}

// IsVirtual reports whether key names a computed column.
func IsVirtual(key string) bool {
	return strings.HasPrefix(key, "_")
}

// ColumnsFor returns the full column set of a table, before projection.
func ColumnsFor(id TableID) []Column {
	switch id {
	case TableFD:
		return []Column{
			{"bank", "Bank", KindMono},
			{"fdNumber", "FD No.", KindMono},
			{"invested", "Invested", KindAmount},
			{"rate", "Rate", KindRate},
			{"startDate", "Start", KindMono},
			{"maturityDate", "Maturity", KindMono},
			{ColDaysLeft, "Days Left", KindDays},
			{"maturityValue", "Maturity Val", KindAmount},
			{ColCurVal, "Current Value", KindAmount},
			{ColGainLoss, "Gain", KindGainLoss},
			{ColReturn, "Return", KindPercent},
			{"status", "Status", KindText},
			{ColActions, "Actions", KindActions},
		}
	case TableMFPrimary, TableMFFamily:
		return []Column{
			{"name", "Fund Name", KindText},
			{"schemeCode", "Scheme Code", KindMono},
			{"units", "Units", KindUnits},
			{"purchaseNAV", "Buy NAV", KindAmount},
			{"invested", "Invested", KindAmount},
			{ColCurNAV, "Live NAV", KindLivePrice},
			{ColCurVal, "Current Value", KindAmount},
			{ColGainLoss, "Gain / Loss", KindGainLoss},
			{ColReturn, "Return %", KindPercent},
			{ColActions, "Actions", KindActions},
		}
	case TableStocksNSE:
		return []Column{
			{"name", "Company", KindText},
			{"symbol", "Symbol", KindMono},
			{"units", "Qty", KindUnits},
			{"avgPrice", "Avg Buy", KindAmount},
			{"invested", "Invested", KindAmount},
			{ColLivePrice, "Live Price", KindLivePrice},
			{ColCurVal, "Current Value", KindAmount},
			{ColGainLoss, "Gain / Loss", KindGainLoss},
			{ColReturn, "Return %", KindPercent},
			{ColActions, "Actions", KindActions},
		}
	case TableStocksNAS:
		return []Column{
			{"name", "Company", KindText},
			{"symbol", "Symbol", KindMono},
			{"units", "Qty", KindUnits},
			{"avgPrice", "Avg Buy (USD)", KindAmount},
			{"invested", "Invested (USD)", KindAmount},
			{ColINR, "Invested (INR)", KindAmountINR},
			{ColLivePrice, "Live Price (USD)", KindLivePrice},
			{ColLiveINR, "Live Value (INR)", KindAmountINR},
			{ColCurVal, "Current Value (USD)", KindAmount},
			{ColGainLoss, "Gain / Loss", KindGainLoss},
			{ColReturn, "Return %", KindPercent},
			{ColActions, "Actions", KindActions},
		}
	case TableGold:
		return []Column{
			{"name", "Instrument", KindText},
			{"type", "Type", KindText},
			{"units", "Units", KindUnits},
			{"purchasePrice", "Buy Price", KindAmount},
			{"invested", "Invested", KindAmount},
			{ColLivePrice, "Live Price", KindLivePrice},
			{ColManualVal, "Current Value (Manual)", KindAmount},
			{ColCurVal, "Calculated Value", KindAmount},
			{ColGainLoss, "Gain / Loss", KindGainLoss},
			{ColReturn, "Return %", KindPercent},
			{ColActions, "Actions", KindActions},
		}
	}
	return nil
}

// Project drops hidden columns. The actions column is always kept.
func Project(cols []Column, state ViewState) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if state.IsVisible(c.Key) {
			out = append(out, c)
		}
	}
	return out
}
