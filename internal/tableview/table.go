// Package tableview turns a holding collection plus per-table view state
// into the filtered, sorted, and projected rows the dashboard displays.
package tableview

import (
	"portfolio-dashboard/internal/models"
)

// TableID identifies one dashboard table.
type TableID string

const (
	TableFD        TableID = "fd"
	TableMFPrimary TableID = "mf-primary"
	TableMFFamily  TableID = "mf-family"
	TableStocksNSE TableID = "stocks-nse"
	TableStocksNAS TableID = "stocks-nas"
	TableGold      TableID = "gold"
)

// TableIDs lists every table in navigation order.
var TableIDs = []TableID{TableFD, TableMFPrimary, TableMFFamily, TableStocksNSE, TableStocksNAS, TableGold}

// ParseTableID validates a table identifier.
func ParseTableID(s string) (TableID, bool) {
	for _, id := range TableIDs {
		if string(id) == s {
			return id, true
		}
	}
	return "", false
}

// AssetClass returns the collection the table reads from.
func (id TableID) AssetClass() models.AssetClass {
	switch id {
	case TableFD:
		return models.ClassFixedDeposit
	case TableMFPrimary, TableMFFamily:
		return models.ClassMutualFund
	case TableStocksNSE, TableStocksNAS:
		return models.ClassStock
	case TableGold:
		return models.ClassGold
	}
	return ""
}

// Foreign reports whether the table's amounts are USD denominated.
func (id TableID) Foreign() bool {
	return id == TableStocksNAS
}

// Row is one holding together with its position in its asset class
// collection, which is what update and delete address.
type Row struct {
	Index   int
	Holding models.Holding
}

// Rows selects the table's rows from the portfolio in collection order.
func (id TableID) Rows(p *models.Portfolio) []Row {
	var rows []Row
	switch id {
	case TableFD:
		for i, h := range p.FixedDeposits {
			rows = append(rows, Row{Index: i, Holding: h})
		}
	case TableMFPrimary, TableMFFamily:
		family := id == TableMFFamily
		for i, h := range p.MutualFunds {
			if h.Owner.IsFamily() == family {
				rows = append(rows, Row{Index: i, Holding: h})
			}
		}
	case TableStocksNSE, TableStocksNAS:
		foreign := id == TableStocksNAS
		for i, h := range p.Stocks {
			if h.Exchange.IsForeign() == foreign {
				rows = append(rows, Row{Index: i, Holding: h})
			}
		}
	case TableGold:
		for i, h := range p.Gold {
			rows = append(rows, Row{Index: i, Holding: h})
		}
	}
	return rows
}
