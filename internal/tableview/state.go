package tableview

import (
	"sync"
)

// Category filters rows by the sign of their gain/loss.
type Category string

const (
	CategoryAll  Category = "all"
	CategoryGain Category = "gain"
	CategoryLoss Category = "loss"
)

// ParseCategory validates a category filter value.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case "", CategoryAll:
		return CategoryAll, true
	case CategoryGain:
		return CategoryGain, true
	case CategoryLoss:
		return CategoryLoss, true
	}
	return "", false
}

// ViewState is the per-table sort, search, filter, and column visibility.
type ViewState struct {
	SortCol  string          `json:"sortCol,omitempty"`
	Asc      bool            `json:"asc"`
	Query    string          `json:"query,omitempty"`
	Category Category        `json:"category,omitempty"`
	Columns  map[string]bool `json:"columns,omitempty"` // key -> shown; absent means shown
}

// DefaultViewState returns the initial state of a table: fixed deposits
// sort by maturity ascending, everything else by invested descending.
func DefaultViewState(id TableID) ViewState {
	if id == TableFD {
		return ViewState{SortCol: "maturityDate", Asc: true, Category: CategoryAll}
	}
	return ViewState{SortCol: "invested", Asc: false, Category: CategoryAll}
}

// ToggleSort applies a header click: the same column flips direction, a
// new column sorts ascending.
func (s *ViewState) ToggleSort(col string) {
	if s.SortCol == col {
		s.Asc = !s.Asc
	} else {
		s.Asc = true
	}
	s.SortCol = col
}

// SetColumnVisible records an explicit visibility override.
func (s *ViewState) SetColumnVisible(key string, visible bool) {
	if s.Columns == nil {
		s.Columns = make(map[string]bool)
	}
	s.Columns[key] = visible
}

// IsVisible reports whether a column is shown. Columns without an
// override are shown; the actions column is always shown.
func (s ViewState) IsVisible(key string) bool {
	if key == ColActions {
		return true
	}
	shown, ok := s.Columns[key]
	return !ok || shown
}

// Clone returns a copy that shares no maps with s.
func (s ViewState) Clone() ViewState {
	c := s
	if s.Columns != nil {
		c.Columns = make(map[string]bool, len(s.Columns))
		for k, v := range s.Columns {
			c.Columns[k] = v
		}
	}
	return c
}

// States holds the view state of every table. It is built once at startup
// and passed to whoever needs it.
type States struct {
	mu     sync.RWMutex
	states map[TableID]ViewState
}

// NewStates creates a registry with defaults for every table.
func NewStates() *States {
	s := &States{states: make(map[TableID]ViewState, len(TableIDs))}
	for _, id := range TableIDs {
		s.states[id] = DefaultViewState(id)
	}
	return s
}

// Get returns a copy of the table's state.
func (s *States) Get(id TableID) ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[id]
	if !ok {
		return DefaultViewState(id)
	}
	return st.Clone()
}

// Update applies fn to the table's state and stores the result.
func (s *States) Update(id TableID, fn func(*ViewState)) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	if !ok {
		st = DefaultViewState(id)
	}
	st = st.Clone()
	fn(&st)
	s.states[id] = st
	return st.Clone()
}

// Snapshot returns a copy of every state for persistence.
func (s *States) Snapshot() map[TableID]ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[TableID]ViewState, len(s.states))
	for id, st := range s.states {
		out[id] = st.Clone()
	}
	return out
}

// Restore replaces states for known tables. Unknown table ids are ignored.
func (s *States) Restore(saved map[TableID]ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range saved {
		if _, ok := ParseTableID(string(id)); !ok {
			continue
		}
		if _, ok := ParseCategory(string(st.Category)); !ok {
			st.Category = CategoryAll
		}
		s.states[id] = st.Clone()
	}
}
