// Package store holds the portfolio in memory and persists it after every
// mutation.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/internal/logging"
	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/tableview"
)

// Persister loads and saves the portfolio and the per-table view state.
// View state is stored independently of portfolio data.
type Persister interface {
	LoadPortfolio(ctx context.Context) (*models.Portfolio, error)
	SavePortfolio(ctx context.Context, p *models.Portfolio) error
	LoadViewStates(ctx context.Context) (map[tableview.TableID]tableview.ViewState, error)
	SaveViewStates(ctx context.Context, states map[tableview.TableID]tableview.ViewState) error
	Close() error
}

// Store is the single writer of the portfolio. Every mutation validates,
// applies, and persists; if persisting fails the in-memory portfolio is
// rolled back so memory and storage never diverge.
type Store struct {
	mu        sync.Mutex
	portfolio *models.Portfolio
	persister Persister
	logger    zerolog.Logger
	stale     map[SyncDataType]time.Duration
}

// New creates a store over an already loaded portfolio. A nil persister
// keeps everything in memory.
func New(p *models.Portfolio, persister Persister) *Store {
	if p == nil {
		p = &models.Portfolio{}
	}
	p = p.Clone()
	p.Normalize()
	return &Store{portfolio: p, persister: persister, logger: zerolog.Nop()}
}

// Open loads the portfolio from persister.
func Open(ctx context.Context, persister Persister) (*Store, error) {
	p, err := persister.LoadPortfolio(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("load", "portfolio", -1, err)
	}
	s := New(p, persister)
	s.logger = logging.FromContext(ctx)
	return s, nil
}

// WithLogger sets the logger used for mutation events.
func (s *Store) WithLogger(logger zerolog.Logger) *Store {
	s.logger = logger
	return s
}

// Portfolio returns a deep copy of the current portfolio.
func (s *Store) Portfolio() *models.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portfolio.Clone()
}

// Add validates h and appends it to the collection for class.
func (s *Store) Add(ctx context.Context, class models.AssetClass, h models.Holding) (int, error) {
	h, err := checkHolding(class, h)
	if err != nil {
		return -1, apperrors.NewStoreError("add", string(class), -1, err)
	}

	var index int
	err = s.mutate(ctx, func(p *models.Portfolio) error {
		var err error
		index, err = p.Append(h)
		return err
	})
	if err != nil {
		return -1, apperrors.NewStoreError("add", string(class), -1, err)
	}
	logging.LogMutation(s.logger, "add", string(class), index)
	return index, nil
}

// Update replaces the holding at index of class with h.
func (s *Store) Update(ctx context.Context, class models.AssetClass, index int, h models.Holding) error {
	h, err := checkHolding(class, h)
	if err != nil {
		return apperrors.NewStoreError("update", string(class), index, err)
	}

	if err := s.mutate(ctx, func(p *models.Portfolio) error {
		return p.Set(index, h)
	}); err != nil {
		return apperrors.NewStoreError("update", string(class), index, err)
	}
	logging.LogMutation(s.logger, "update", string(class), index)
	return nil
}

// Delete removes the holding at index of class. Later holdings shift down.
func (s *Store) Delete(ctx context.Context, class models.AssetClass, index int) (models.Holding, error) {
	var removed models.Holding
	err := s.mutate(ctx, func(p *models.Portfolio) error {
		var err error
		removed, err = p.Remove(class, index)
		return err
	})
	if err != nil {
		return nil, apperrors.NewStoreError("delete", string(class), index, err)
	}
	logging.LogMutation(s.logger, "delete", string(class), index)
	return removed, nil
}

// SetGoldManualValue sets or, with a nil value, clears the manual current
// value of the gold holding at index.
func (s *Store) SetGoldManualValue(ctx context.Context, index int, value *float64) error {
	if value != nil && *value < 0 {
		err := apperrors.NewValidationError("manualCurrentValue", *value, "must not be negative")
		return apperrors.NewStoreError("gold-value", string(models.ClassGold), index, err)
	}
	err := s.mutate(ctx, func(p *models.Portfolio) error {
		if index < 0 || index >= len(p.Gold) {
			return apperrors.ErrIndexOutOfRange
		}
		if value == nil {
			p.Gold[index].ManualCurrentValue = nil
		} else {
			v := *value
			p.Gold[index].ManualCurrentValue = &v
		}
		return nil
	})
	if err != nil {
		return apperrors.NewStoreError("gold-value", string(models.ClassGold), index, err)
	}
	logging.LogMutation(s.logger, "gold-value", string(models.ClassGold), index)
	return nil
}

// Replace swaps in a whole portfolio, for example after an import.
func (s *Store) Replace(ctx context.Context, p *models.Portfolio) error {
	if p == nil {
		p = &models.Portfolio{}
	}
	next := p.Clone()
	next.Normalize()
	err := s.mutate(ctx, func(cur *models.Portfolio) error {
		*cur = *next
		return nil
	})
	if err != nil {
		return apperrors.NewStoreError("replace", "portfolio", -1, err)
	}
	logging.LogMutation(s.logger, "replace", "portfolio", -1)
	return nil
}

// SaveViewStates persists the table view states.
func (s *Store) SaveViewStates(ctx context.Context, states *tableview.States) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.SaveViewStates(ctx, states.Snapshot()); err != nil {
		return apperrors.NewStoreError("save", "view-state", -1, err)
	}
	return nil
}

// LoadViewStates restores persisted view states into a fresh registry.
// Missing or unreadable state falls back to the defaults.
func (s *Store) LoadViewStates(ctx context.Context) *tableview.States {
	states := tableview.NewStates()
	if s.persister == nil {
		return states
	}
	saved, err := s.persister.LoadViewStates(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Ignoring unreadable view state")
		return states
	}
	states.Restore(saved)
	return states
}

// Close closes the persister.
func (s *Store) Close() error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Close()
}

func (s *Store) mutate(ctx context.Context, fn func(p *models.Portfolio) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.portfolio.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if s.persister != nil {
		if err := s.persister.SavePortfolio(ctx, next); err != nil {
			return apperrors.Wrap(err, "persist portfolio")
		}
	}
	s.portfolio = next
	return nil
}

func checkHolding(class models.AssetClass, h models.Holding) (models.Holding, error) {
	if !class.Valid() {
		return nil, apperrors.ErrUnknownAssetClass
	}
	h = models.Deref(h)
	if h == nil {
		return nil, apperrors.ErrUnknownAssetClass
	}
	if h.AssetClass() != class {
		return nil, apperrors.ErrAssetClassMismatch
	}
	if err := models.ValidateHolding(h); err != nil {
		return nil, err
	}
	return h, nil
}
