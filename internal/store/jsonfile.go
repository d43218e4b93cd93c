package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"portfolio-dashboard/internal/models"
	"portfolio-dashboard/internal/tableview"
)

// ViewStateFile is the name of the view state file kept next to the
// portfolio file.
const ViewStateFile = "view_state.json"

// JSONFileStore persists the portfolio as one JSON document, in the same
// shape the remote sync pushes.
type JSONFileStore struct {
	mu        sync.Mutex
	path      string
	statePath string
}

// NewJSONFileStore creates a store writing the portfolio to path and view
// state to view_state.json in the same directory.
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &JSONFileStore{
		path:      path,
		statePath: filepath.Join(filepath.Dir(path), ViewStateFile),
	}, nil
}

// Path returns the portfolio file path.
func (s *JSONFileStore) Path() string {
	return s.path
}

// LoadPortfolio reads the portfolio. A missing file is an empty portfolio.
func (s *JSONFileStore) LoadPortfolio(ctx context.Context) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &models.Portfolio{}
	found, err := readJSON(s.path, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio: %w", err)
	}
	if !found {
		p = &models.Portfolio{}
	}
	p.Normalize()
	return p, nil
}

// SavePortfolio writes the portfolio atomically.
func (s *JSONFileStore) SavePortfolio(ctx context.Context, p *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := p.Clone()
	out.Normalize()
	return writeJSON(s.path, out)
}

// LoadViewStates reads saved view states. A missing file yields none.
func (s *JSONFileStore) LoadViewStates(ctx context.Context) (map[tableview.TableID]tableview.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make(map[tableview.TableID]tableview.ViewState)
	if _, err := readJSON(s.statePath, &states); err != nil {
		return nil, fmt.Errorf("failed to read view state: %w", err)
	}
	return states, nil
}

// SaveViewStates writes the view states atomically.
func (s *JSONFileStore) SaveViewStates(ctx context.Context, states map[tableview.TableID]tableview.ViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.statePath, states)
}

// Close is a no-op; files are not held open.
func (s *JSONFileStore) Close() error {
	return nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
