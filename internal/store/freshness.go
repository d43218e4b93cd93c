package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SyncDataType names something that is refreshed or pushed periodically.
type SyncDataType string

const (
	SyncTypePrices SyncDataType = "prices"
	SyncTypeRemote SyncDataType = "remote"
)

// SyncTracker is implemented by persisters that remember when each data
// type was last synced.
type SyncTracker interface {
	GetLastSync(dataType string) time.Time
	SetLastSync(dataType string, t time.Time) error
}

// DataFreshness describes how old a data type is.
type DataFreshness struct {
	DataType    SyncDataType  `json:"dataType"`
	LastUpdated time.Time     `json:"lastUpdated"`
	IsFresh     bool          `json:"isFresh"`
	Age         time.Duration `json:"age"`
}

// DefaultStaleThresholds are the ages after which data counts as stale.
var DefaultStaleThresholds = map[SyncDataType]time.Duration{
	SyncTypePrices: 15 * time.Minute,
	SyncTypeRemote: 24 * time.Hour,
}

// SetStaleThreshold overrides the default age after which dataType is
// reported stale.
func (s *Store) SetStaleThreshold(dataType SyncDataType, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale == nil {
		s.stale = make(map[SyncDataType]time.Duration)
	}
	s.stale[dataType] = d
}

func (s *Store) staleThreshold(dataType SyncDataType) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.stale[dataType]; ok && d > 0 {
		return d
	}
	if d, ok := DefaultStaleThresholds[dataType]; ok {
		return d
	}
	return time.Hour
}

// MarkSynced records that dataType was synced at t, when the persister
// can remember it.
func (s *Store) MarkSynced(dataType SyncDataType, t time.Time) error {
	tracker, ok := s.persister.(SyncTracker)
	if !ok {
		return nil
	}
	if err := tracker.SetLastSync(string(dataType), t); err != nil {
		return fmt.Errorf("failed to mark %s as synced: %w", dataType, err)
	}
	return nil
}

// Freshness reports the age of dataType at now. Data never synced, or a
// persister that does not track syncs, is reported stale with a zero time.
func (s *Store) Freshness(dataType SyncDataType, now time.Time) DataFreshness {
	f := DataFreshness{DataType: dataType}
	tracker, ok := s.persister.(SyncTracker)
	if !ok {
		return f
	}
	f.LastUpdated = tracker.GetLastSync(string(dataType))
	if f.LastUpdated.IsZero() {
		return f
	}

	f.Age = now.Sub(f.LastUpdated)
	f.IsFresh = f.Age < s.staleThreshold(dataType)
	return f
}

// FormatFreshness returns a human-readable freshness string.
func FormatFreshness(freshness DataFreshness) string {
	if freshness.LastUpdated.IsZero() {
		return "Never synced"
	}

	age := freshness.Age
	var ageStr string

	switch {
	case age < time.Minute:
		ageStr = "just now"
	case age < time.Hour:
		ageStr = fmt.Sprintf("%d minutes ago", int(age.Minutes()))
	case age < 24*time.Hour:
		ageStr = fmt.Sprintf("%d hours ago", int(age.Hours()))
	default:
		ageStr = fmt.Sprintf("%d days ago", int(age.Hours()/24))
	}

	if freshness.IsFresh {
		return fmt.Sprintf("Updated %s", ageStr)
	}
	return fmt.Sprintf("⚠️ Stale data - Updated %s", ageStr)
}

// SyncStatusFile holds last sync times for the JSON file store.
const SyncStatusFile = "sync_status.json"

// GetLastSync returns the last sync time for dataType, or the zero time.
func (s *JSONFileStore) GetLastSync(dataType string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	times := make(map[string]time.Time)
	if _, err := readJSON(s.syncPath(), &times); err != nil {
		return time.Time{}
	}
	return times[dataType]
}

// SetLastSync records the last sync time for dataType.
func (s *JSONFileStore) SetLastSync(dataType string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	times := make(map[string]time.Time)
	if _, err := readJSON(s.syncPath(), &times); err != nil {
		times = make(map[string]time.Time)
	}
	times[dataType] = t
	return writeJSON(s.syncPath(), times)
}

func (s *JSONFileStore) syncPath() string {
	return filepath.Join(filepath.Dir(s.path), SyncStatusFile)
}

// Driver names accepted by OpenPersister.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// OpenPersister opens the configured storage backend at path.
func OpenPersister(driver, path string) (Persister, error) {
	switch driver {
	case "", DriverJSON:
		return NewJSONFileStore(path)
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return NewSQLiteStore(path)
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}
