package tableview

import (
	"sort"
	"strings"

	"golang.org/x/text/language"

	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/valuation"
)

// Cell is one projected value. Present is false when the holding has no
// value for the column, which renders as a placeholder.
type Cell struct {
	Key     string `json:"key"`
	Value   any    `json:"value"`
	Present bool   `json:"present"`
}

// ResultRow is one displayed row.
type ResultRow struct {
	Index     int              `json:"index"`
	Holding   models.Holding   `json:"holding"`
	Valuation valuation.Result `json:"valuation"`
	Cells     []Cell           `json:"cells"`
}

// Result is the output of a view pass over one table.
type Result struct {
	Table   TableID     `json:"table"`
	Columns []Column    `json:"columns"`
	Rows    []ResultRow `json:"rows"`
	Matched int         `json:"matched"`
	Total   int         `json:"total"`
}

// NoData reports that the table has no holdings at all.
func (r Result) NoData() bool { return r.Total == 0 }

// NoResults reports that holdings exist but none survived search and filter.
func (r Result) NoResults() bool { return r.Total > 0 && r.Matched == 0 }

// Model applies view state to table rows. A Model holds no per-call state
// and may be shared.
type Model struct {
	engine *valuation.Engine
	lang   language.Tag
}

// NewModel creates a model valuing rows with engine and collating text in
// English order.
func NewModel(engine *valuation.Engine) *Model {
	return &Model{engine: engine, lang: language.English}
}

// WithLanguage changes the collation language used for text sorting.
func (m *Model) WithLanguage(tag language.Tag) *Model {
	m.lang = tag
	return m
}

// Engine returns the valuation engine backing virtual columns.
func (m *Model) Engine() *valuation.Engine {
	return m.engine
}

// Table runs a full view pass over one table of the portfolio.
func (m *Model) Table(id TableID, p *models.Portfolio, state ViewState) Result {
	res := m.Apply(id.Rows(p), ColumnsFor(id), state)
	res.Table = id
	return res
}

// Apply searches, filters, sorts, and projects rows. The same inputs always
// produce the same output; rows that compare equal keep their input order.
func (m *Model) Apply(rows []Row, cols []Column, state ViewState) Result {
	type valued struct {
		row Row
		val valuation.Result
	}

	query := strings.ToLower(strings.TrimSpace(state.Query))
	kept := make([]valued, 0, len(rows))
	for _, r := range rows {
		if query != "" && !matches(r.Holding, query) {
			continue
		}
		v, ok := m.value(r.Holding)
		if !ok || keepCategory(state.Category, v) {
			kept = append(kept, valued{row: r, val: v})
		}
	}

	if state.SortCol != "" {
		cmp := newComparator(m.lang)
		keys := make([]any, len(kept))
		for i, k := range kept {
			keys[i], _ = m.cellValue(state.SortCol, k.row, k.val)
		}
		idx := make([]int, len(kept))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			c := cmp.compare(keys[idx[a]], keys[idx[b]])
			if !state.Asc {
				c = -c
			}
			return c < 0
		})
		sorted := make([]valued, len(kept))
		for i, j := range idx {
			sorted[i] = kept[j]
		}
		kept = sorted
	}

	visible := Project(cols, state)
	out := Result{
		Columns: visible,
		Rows:    make([]ResultRow, 0, len(kept)),
		Matched: len(kept),
		Total:   len(rows),
	}
	for _, k := range kept {
		cells := make([]Cell, len(visible))
		for i, c := range visible {
			v, ok := m.cellValue(c.Key, k.row, k.val)
			cells[i] = Cell{Key: c.Key, Value: v, Present: ok}
		}
		out.Rows = append(out.Rows, ResultRow{
			Index:     k.row.Index,
			Holding:   k.row.Holding,
			Valuation: k.val,
			Cells:     cells,
		})
	}
	return out
}

// Value resolves one column for one row, stored or computed.
func (m *Model) Value(key string, r Row) (any, bool) {
	v, _ := m.value(r.Holding)
	return m.cellValue(key, r, v)
}

// value is fail-open: a holding that cannot be valued is kept by the
// category filter and sorts with zero computed values.
func (m *Model) value(h models.Holding) (res valuation.Result, ok bool) {
	defer func() {
		if recover() != nil {
			res, ok = valuation.Result{}, false
		}
	}()
	if m.engine == nil {
		return valuation.Result{}, false
	}
	return m.engine.Value(h), true
}

func (m *Model) cellValue(key string, r Row, v valuation.Result) (any, bool) {
	if !IsVirtual(key) {
		if r.Holding == nil {
			return nil, false
		}
		return r.Holding.Field(key)
	}
	if key == ColActions {
		return r.Index, true
	}
	return m.virtual(key, r.Holding, v)
}

func (m *Model) virtual(key string, h models.Holding, v valuation.Result) (any, bool) {
	switch key {
	case ColCurVal:
		return v.CurrentValue, true
	case ColGainLoss:
		return v.GainLoss, true
	case ColReturn:
		return v.ReturnPct, true
	}

	switch x := models.Deref(h).(type) {
	case models.FixedDeposit:
		if key == ColDaysLeft {
			return v.DaysLeft, true
		}
	case models.MutualFund:
		if key == ColCurNAV {
			return v.CurrentPrice, true
		}
	case models.Stock:
		switch key {
		case ColLivePrice:
			return v.CurrentPrice, true
		case ColINR:
			return m.toINR(x, x.Invested), true
		case ColLiveINR:
			return m.toINR(x, v.CurrentValue), true
		}
	case models.Gold:
		switch key {
		case ColLivePrice:
			return v.CurrentPrice, true
		case ColManualVal:
			if x.ManualCurrentValue == nil {
				return nil, false
			}
			return *x.ManualCurrentValue, true
		}
	}
	return nil, false
}

func (m *Model) toINR(h models.Holding, amount float64) float64 {
	if m.engine == nil {
		return amount
	}
	return m.engine.ToReporting(h, amount)
}

func matches(h models.Holding, query string) bool {
	if h == nil {
		return false
	}
	for _, f := range h.Fields() {
		if strings.Contains(strings.ToLower(models.FormatValue(f.Value)), query) {
			return true
		}
	}
	return false
}

func keepCategory(c Category, v valuation.Result) bool {
	switch c {
	case CategoryGain:
		return v.GainLoss >= 0
	case CategoryLoss:
		return v.GainLoss < 0
	}
	return true
}
