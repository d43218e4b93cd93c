package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"portfolio-dashboard/internal/models"
)

// DecodePortfolio reads a portfolio document. It accepts the keyed shape
// ({"fixedDeposits": [...], ...}) and a flat array of untyped records,
// whose asset class is detected from the fields each record carries.
func DecodePortfolio(data []byte) (*models.Portfolio, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &models.Portfolio{}, nil
	}

	p := &models.Portfolio{}
	if data[0] == '[' {
		var rows []map[string]any
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
		for i, raw := range rows {
			h, err := models.DecodeHolding(raw)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			if _, err := p.Append(h); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
		}
		p.Normalize()
		return p, nil
	}

	var doc map[string][]map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio: %w", err)
	}
	for _, c := range []struct {
		key   string
		class models.AssetClass
	}{
		{"fixedDeposits", models.ClassFixedDeposit},
		{"mutualFunds", models.ClassMutualFund},
		{"stocks", models.ClassStock},
		{"gold", models.ClassGold},
	} {
		for i, raw := range doc[c.key] {
			h, err := models.DecodeAs(c.class, raw)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", c.key, i, err)
			}
			if _, err := p.Append(h); err != nil {
				return nil, err
			}
		}
	}
	p.Normalize()
	return p, nil
}

// ImportJSON replaces the stored portfolio with a decoded document.
func (s *Store) ImportJSON(ctx context.Context, data []byte) error {
	p, err := DecodePortfolio(data)
	if err != nil {
		return err
	}
	return s.Replace(ctx, p)
}
