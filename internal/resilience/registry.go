package resilience

import (
	"sort"
	"sync"
	"time"
)

// CircuitBreakerRegistry hands out one circuit breaker per provider.
type CircuitBreakerRegistry struct {
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
	config   CircuitBreakerConfig
}

// NewCircuitBreakerRegistry creates a registry whose breakers share config.
func NewCircuitBreakerRegistry(config CircuitBreakerConfig) *CircuitBreakerRegistry {
	return &CircuitBreakerRegistry{
		breakers: make(map[string]*CircuitBreaker),
		config:   config,
	}
}

// Get returns or creates a circuit breaker for the given name.
func (r *CircuitBreakerRegistry) Get(name string) *CircuitBreaker {
	r.mu.RLock()
	if cb, ok := r.breakers[name]; ok {
		r.mu.RUnlock()
		return cb
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if cb, ok := r.breakers[name]; ok {
		return cb
	}

	cb := NewCircuitBreaker(name, r.config)
	r.breakers[name] = cb
	return cb
}

// AllStats returns statistics for all circuit breakers, sorted by name.
func (r *CircuitBreakerRegistry) AllStats() []CircuitBreakerStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]CircuitBreakerStats, 0, len(r.breakers))
	for _, cb := range r.breakers {
		stats = append(stats, cb.Stats())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// ResetAll resets all circuit breakers.
func (r *CircuitBreakerRegistry) ResetAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cb := range r.breakers {
		cb.Reset()
	}
}

// ServiceStatus represents the status of an external provider.
type ServiceStatus struct {
	Name        string
	Available   bool
	LastCheck   time.Time
	LastSuccess time.Time
	LastError   error
	Latency     time.Duration
}

// ServiceMonitor tracks provider availability across refreshes.
type ServiceMonitor struct {
	mu       sync.RWMutex
	services map[string]*ServiceStatus
}

// NewServiceMonitor creates a new service monitor.
func NewServiceMonitor() *ServiceMonitor {
	return &ServiceMonitor{
		services: make(map[string]*ServiceStatus),
	}
}

// UpdateStatus records the outcome of one call to a provider.
func (m *ServiceMonitor) UpdateStatus(name string, available bool, latency time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, ok := m.services[name]
	if !ok {
		status = &ServiceStatus{Name: name}
		m.services[name] = status
	}

	status.Available = available
	status.LastCheck = time.Now()
	status.Latency = latency
	status.LastError = err

	if available {
		status.LastSuccess = status.LastCheck
	}
}

// GetStatus returns a copy of a provider's status.
func (m *ServiceMonitor) GetStatus(name string) (ServiceStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if status, ok := m.services[name]; ok {
		return *status, true
	}
	return ServiceStatus{}, false
}

// AllStatuses returns every provider status, sorted by name.
func (m *ServiceMonitor) AllStatuses() []ServiceStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]ServiceStatus, 0, len(m.services))
	for _, s := range m.services {
		statuses = append(statuses, *s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// IsAvailable checks if a provider answered its last call.
func (m *ServiceMonitor) IsAvailable(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if status, ok := m.services[name]; ok {
		return status.Available
	}
	return false
}
