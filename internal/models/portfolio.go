package models

import (
	"encoding/json"
	"fmt"

	apperrors "portfolio-dashboard/internal/errors"
)

// Portfolio is the aggregate root: four independently ordered collections.
type Portfolio struct {
	FixedDeposits []FixedDeposit `json:"fixedDeposits"`
	MutualFunds   []MutualFund   `json:"mutualFunds"`
	Stocks        []Stock        `json:"stocks"`
	Gold          []Gold         `json:"gold"`
}

// Len returns the number of holdings in the collection for class.
func (p *Portfolio) Len(class AssetClass) int {
	switch class {
	case ClassFixedDeposit:
		return len(p.FixedDeposits)
	case ClassMutualFund:
		return len(p.MutualFunds)
	case ClassStock:
		return len(p.Stocks)
	case ClassGold:
		return len(p.Gold)
	}
	return 0
}

// Holdings returns the collection for class as a Holding slice, preserving
// order so that the slice index equals the record's position.
func (p *Portfolio) Holdings(class AssetClass) []Holding {
	var out []Holding
	switch class {
	case ClassFixedDeposit:
		out = make([]Holding, len(p.FixedDeposits))
		for i, h := range p.FixedDeposits {
			out[i] = h
		}
	case ClassMutualFund:
		out = make([]Holding, len(p.MutualFunds))
		for i, h := range p.MutualFunds {
			out[i] = h
		}
	case ClassStock:
		out = make([]Holding, len(p.Stocks))
		for i, h := range p.Stocks {
			out[i] = h
		}
	case ClassGold:
		out = make([]Holding, len(p.Gold))
		for i, h := range p.Gold {
			out[i] = h
		}
	}
	return out
}

// All returns every holding in portfolio order.
func (p *Portfolio) All() []Holding {
	var out []Holding
	for _, class := range AssetClasses {
		out = append(out, p.Holdings(class)...)
	}
	return out
}

// Clone returns a deep copy, including gold manual value pointers.
func (p *Portfolio) Clone() *Portfolio {
	c := &Portfolio{
		FixedDeposits: append([]FixedDeposit(nil), p.FixedDeposits...),
		MutualFunds:   append([]MutualFund(nil), p.MutualFunds...),
		Stocks:        append([]Stock(nil), p.Stocks...),
		Gold:          make([]Gold, len(p.Gold)),
	}
	for i, g := range p.Gold {
		if g.ManualCurrentValue != nil {
			v := *g.ManualCurrentValue
			g.ManualCurrentValue = &v
		}
		c.Gold[i] = g
	}
	return c
}

// Normalize replaces nil collections with empty ones so serialized output
// always carries all four keys.
func (p *Portfolio) Normalize() {
	if p.FixedDeposits == nil {
		p.FixedDeposits = []FixedDeposit{}
	}
	if p.MutualFunds == nil {
		p.MutualFunds = []MutualFund{}
	}
	if p.Stocks == nil {
		p.Stocks = []Stock{}
	}
	if p.Gold == nil {
		p.Gold = []Gold{}
	}
}

// DecodeHolding converts an untyped record (for example one row of an
// imported JSON array) into a typed holding of the detected asset class.
func DecodeHolding(raw map[string]any) (Holding, error) {
	class, ok := DetectAssetClass(raw)
	if !ok {
		return nil, fmt.Errorf("cannot determine asset class of record with %d fields", len(raw))
	}
	return DecodeAs(class, raw)
}

// DecodeAs converts an untyped record into a holding of the given class.
func DecodeAs(class AssetClass, raw map[string]any) (Holding, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	switch class {
	case ClassFixedDeposit:
		var h FixedDeposit
		err = json.Unmarshal(data, &h)
		return h, err
	case ClassMutualFund:
		var h MutualFund
		err = json.Unmarshal(data, &h)
		return h, err
	case ClassStock:
		var h Stock
		err = json.Unmarshal(data, &h)
		return h, err
	case ClassGold:
		var h Gold
		err = json.Unmarshal(data, &h)
		return h, err
	}
	return nil, fmt.Errorf("unknown asset class %q", class)
}

// DetectAssetClass identifies the shape of an untyped record. The checks run
// in a fixed order because stocks and gold both carry a symbol:
// schemeCode, then symbol with avgPrice, then symbol, then maturityDate.
func DetectAssetClass(raw map[string]any) (AssetClass, bool) {
	switch {
	case truthy(raw["schemeCode"]):
		return ClassMutualFund, true
	case truthy(raw["symbol"]) && truthy(raw["avgPrice"]):
		return ClassStock, true
	case truthy(raw["symbol"]):
		return ClassGold, true
	case truthy(raw["maturityDate"]):
		return ClassFixedDeposit, true
	}
	return "", false
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0 && x == x
	case int:
		return x != 0
	case bool:
		return x
	}
	return true
}

// Deref returns the value form of a holding passed by pointer.
func Deref(h Holding) Holding {
	switch v := h.(type) {
	case *FixedDeposit:
		if v != nil {
			return *v
		}
	case *MutualFund:
		if v != nil {
			return *v
		}
	case *Stock:
		if v != nil {
			return *v
		}
	case *Gold:
		if v != nil {
			return *v
		}
	default:
		return h
	}
	return nil
}

// Append adds h to the end of its collection and returns its index.
func (p *Portfolio) Append(h Holding) (int, error) {
	switch v := Deref(h).(type) {
	case FixedDeposit:
		p.FixedDeposits = append(p.FixedDeposits, v)
		return len(p.FixedDeposits) - 1, nil
	case MutualFund:
		p.MutualFunds = append(p.MutualFunds, v)
		return len(p.MutualFunds) - 1, nil
	case Stock:
		p.Stocks = append(p.Stocks, v)
		return len(p.Stocks) - 1, nil
	case Gold:
		p.Gold = append(p.Gold, v)
		return len(p.Gold) - 1, nil
	}
	return -1, apperrors.ErrUnknownAssetClass
}

// Set replaces the holding at index in h's collection.
func (p *Portfolio) Set(index int, h Holding) error {
	h = Deref(h)
	if h == nil {
		return apperrors.ErrUnknownAssetClass
	}
	if index < 0 || index >= p.Len(h.AssetClass()) {
		return apperrors.ErrIndexOutOfRange
	}
	switch v := h.(type) {
	case FixedDeposit:
		p.FixedDeposits[index] = v
	case MutualFund:
		p.MutualFunds[index] = v
	case Stock:
		p.Stocks[index] = v
	case Gold:
		p.Gold[index] = v
	default:
		return apperrors.ErrUnknownAssetClass
	}
	return nil
}

// Remove deletes the holding at index from class's collection, shifting
// later holdings down by one, and returns the removed holding.
func (p *Portfolio) Remove(class AssetClass, index int) (Holding, error) {
	if !class.Valid() {
		return nil, apperrors.ErrUnknownAssetClass
	}
	if index < 0 || index >= p.Len(class) {
		return nil, apperrors.ErrIndexOutOfRange
	}
	var removed Holding
	switch class {
	case ClassFixedDeposit:
		removed = p.FixedDeposits[index]
		p.FixedDeposits = append(p.FixedDeposits[:index], p.FixedDeposits[index+1:]...)
	case ClassMutualFund:
		removed = p.MutualFunds[index]
		p.MutualFunds = append(p.MutualFunds[:index], p.MutualFunds[index+1:]...)
	case ClassStock:
		removed = p.Stocks[index]
		p.Stocks = append(p.Stocks[:index], p.Stocks[index+1:]...)
	case ClassGold:
		removed = p.Gold[index]
		p.Gold = append(p.Gold[:index], p.Gold[index+1:]...)
	}
	return removed, nil
}
