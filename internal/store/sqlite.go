package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "portfolio-dashboard/internal/errors"
	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/tableview"
)

// SQLiteStore persists the portfolio in SQLite. Each holding is one row
// keyed by asset class and position, so the collection order survives a
// round trip.
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.RWMutex
	syncTimes map[string]time.Time
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:        db,
		syncTimes: make(map[string]time.Time),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS holdings (
		class TEXT NOT NULL,
		position INTEGER NOT NULL,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (class, position)
	);

	CREATE TABLE IF NOT EXISTS view_states (
		table_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sync_status (
		data_type TEXT PRIMARY KEY,
		last_sync DATETIME NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadPortfolio reads every holding in collection order.
func (s *SQLiteStore) LoadPortfolio(ctx context.Context) (*models.Portfolio, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT class, data FROM holdings ORDER BY class, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query holdings: %v", apperrors.ErrDatabaseError, err)
	}
	defer rows.Close()

	p := &models.Portfolio{}
	for rows.Next() {
		var class, data string
		if err := rows.Scan(&class, &data); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		h, err := decodeRow(models.AssetClass(class), []byte(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s holding: %w", class, err)
		}
		if _, err := p.Append(h); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	p.Normalize()
	return p, nil
}

// SavePortfolio replaces all stored holdings in one transaction.
func (s *SQLiteStore) SavePortfolio(ctx context.Context, p *models.Portfolio) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM holdings`); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO holdings (class, position, data, updated_at) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, class := range models.AssetClasses {
		for i, h := range p.Holdings(class) {
			data, err := json.Marshal(h)
			if err != nil {
				return fmt.Errorf("failed to encode holding: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, string(class), i, string(data), now); err != nil {
				return fmt.Errorf("failed to insert holding: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadViewStates reads all saved view states.
func (s *SQLiteStore) LoadViewStates(ctx context.Context) (map[tableview.TableID]tableview.ViewState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT table_id, state FROM view_states`)
	if err != nil {
		return nil, fmt.Errorf("failed to query view states: %w", err)
	}
	defer rows.Close()

	states := make(map[tableview.TableID]tableview.ViewState)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan view state: %w", err)
		}
		var st tableview.ViewState
		if err := json.Unmarshal([]byte(data), &st); err != nil {
			return nil, fmt.Errorf("failed to decode view state %s: %w", id, err)
		}
		states[tableview.TableID(id)] = st
	}
	return states, rows.Err()
}

// SaveViewStates upserts every given view state.
func (s *SQLiteStore) SaveViewStates(ctx context.Context, states map[tableview.TableID]tableview.ViewState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for id, st := range states {
		data, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("failed to encode view state: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO view_states (table_id, state, updated_at) VALUES (?, ?, ?)
		`, string(id), string(data), time.Now()); err != nil {
			return fmt.Errorf("failed to save view state: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLastSync returns the last time dataType was synced, or the zero time.
func (s *SQLiteStore) GetLastSync(dataType string) time.Time {
	s.mu.RLock()
	if t, ok := s.syncTimes[dataType]; ok {
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	var lastSync time.Time
	err := s.db.QueryRow(`
		SELECT last_sync FROM sync_status WHERE data_type = ?
	`, dataType).Scan(&lastSync)
	if err != nil {
		return time.Time{}
	}

	s.mu.Lock()
	s.syncTimes[dataType] = lastSync
	s.mu.Unlock()

	return lastSync
}

// SetLastSync records the last sync time for dataType.
func (s *SQLiteStore) SetLastSync(dataType string, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sync_status (data_type, last_sync, updated_at)
		VALUES (?, ?, ?)
	`, dataType, t, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set last sync: %w", err)
	}

	s.mu.Lock()
	s.syncTimes[dataType] = t
	s.mu.Unlock()

	return nil
}

func decodeRow(class models.AssetClass, data []byte) (models.Holding, error) {
	switch class {
	case models.ClassFixedDeposit:
		var h models.FixedDeposit
		err := json.Unmarshal(data, &h)
		return h, err
	case models.ClassMutualFund:
		var h models.MutualFund
		err := json.Unmarshal(data, &h)
		return h, err
	case models.ClassStock:
		var h models.Stock
		err := json.Unmarshal(data, &h)
		return h, err
	case models.ClassGold:
		var h models.Gold
		err := json.Unmarshal(data, &h)
		return h, err
	}
	return nil, apperrors.ErrUnknownAssetClass
}
