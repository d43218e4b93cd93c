package models

import (
	apperrors "portfolio-dashboard/internal/errors"
)

// Validate checks the invariants of a fixed deposit entered by the user.
func (f FixedDeposit) Validate() error {
	if f.Invested <= 0 {
		return apperrors.NewValidationError("invested", f.Invested, "must be greater than zero")
	}
	if f.Rate < 0 {
		return apperrors.NewValidationError("rate", f.Rate, "must not be negative")
	}
	start, ok := f.Start()
	if !ok {
		return apperrors.NewValidationError("startDate", f.StartDate, "expected YYYY-MM-DD")
	}
	maturity, ok := f.Maturity()
	if !ok {
		return apperrors.NewValidationError("maturityDate", f.MaturityDate, "expected YYYY-MM-DD")
	}
	if maturity.Before(start) {
		return apperrors.NewValidationError("maturityDate", f.MaturityDate, "must not be before start date")
	}
	switch f.Status {
	case FDActive, FDMatured, FDClosed:
	default:
		return apperrors.NewValidationError("status", f.Status, "must be Active, Matured or Closed")
	}
	return nil
}

// Validate checks a mutual fund entered by the user.
func (m MutualFund) Validate() error {
	if m.Name == "" {
		return apperrors.NewValidationError("name", m.Name, "required")
	}
	if m.Units < 0 {
		return apperrors.NewValidationError("units", m.Units, "must not be negative")
	}
	if m.Invested < 0 {
		return apperrors.NewValidationError("invested", m.Invested, "must not be negative")
	}
	return nil
}

// Validate checks a stock entered by the user.
func (s Stock) Validate() error {
	if s.Symbol == "" {
		return apperrors.NewValidationError("symbol", s.Symbol, "required")
	}
	switch s.Exchange {
	case NSE, BSE, NASDAQ:
	default:
		return apperrors.NewValidationError("exchange", s.Exchange, "must be NSE, BSE or NASDAQ")
	}
	if s.Units < 0 {
		return apperrors.NewValidationError("units", s.Units, "must not be negative")
	}
	if s.Invested < 0 {
		return apperrors.NewValidationError("invested", s.Invested, "must not be negative")
	}
	return nil
}

// Validate checks a gold holding entered by the user.
func (g Gold) Validate() error {
	if g.Name == "" {
		return apperrors.NewValidationError("name", g.Name, "required")
	}
	switch g.Type {
	case GoldSGB, GoldETF, GoldPhysical:
	default:
		return apperrors.NewValidationError("type", g.Type, "must be SGB, ETF or Physical")
	}
	if g.Units < 0 {
		return apperrors.NewValidationError("units", g.Units, "must not be negative")
	}
	if g.Invested < 0 {
		return apperrors.NewValidationError("invested", g.Invested, "must not be negative")
	}
	return nil
}

// ValidateHolding dispatches to the holding's own Validate.
func ValidateHolding(h Holding) error {
	switch v := h.(type) {
	case FixedDeposit:
		return v.Validate()
	case MutualFund:
		return v.Validate()
	case Stock:
		return v.Validate()
	case Gold:
		return v.Validate()
	}
	return apperrors.ErrUnknownAssetClass
}
