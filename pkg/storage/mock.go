package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/pkg/scenario"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu          sync.RWMutex
	worldstates map[uuid.UUID][]byte
	scenarios   map[string]*scenario.Scenario
	pingError   error
	saveError   error
	saves       int
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		worldstates: make(map[uuid.UUID][]byte),
		scenarios:   make(map[string]*scenario.Scenario),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every following save fail with err.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveWorldState stores a JSON copy so later mutations of ws are not visible.
func (m *MockStorage) SaveWorldState(ctx context.Context, id uuid.UUID, ws *state.WorldState) error {
	if ws == nil {
		return errors.New("world state cannot be nil")
	}
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to marshal world state: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.worldstates[id] = data
	m.saves++
	return nil
}

// LoadWorldState mocks loading a world state
func (m *MockStorage) LoadWorldState(ctx context.Context, id uuid.UUID) (*state.WorldState, error) {
	m.mu.RLock()
	data, exists := m.worldstates[id]
	m.mu.RUnlock()
	if !exists {
		return nil, nil
	}
	var ws state.WorldState
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("failed to unmarshal world state: %w", err)
	}
	return &ws, nil
}

// DeleteWorldState mocks deleting a world state
func (m *MockStorage) DeleteWorldState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.worldstates, id)
	return nil
}

// Saves returns how many saves succeeded.
func (m *MockStorage) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// ListScenarios mocks listing scenarios
func (m *MockStorage) ListScenarios(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string)
	for filename, s := range m.scenarios {
		result[s.Name] = filename
	}
	return result, nil
}

// GetScenario mocks getting a scenario by filename
func (m *MockStorage) GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.scenarios[filename]
	if !exists {
		return nil, fmt.Errorf("scenario not found: %s", filename)
	}
	return s, nil
}

// AddScenario adds a scenario to the mock storage (for testing)
func (m *MockStorage) AddScenario(filename string, s *scenario.Scenario) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios[filename] = s
}
