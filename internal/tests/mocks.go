package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"trucklog/internal/domain"
	"trucklog/internal/repository"
	"trucklog/internal/route"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		out = append(out, &copy)
	}
	return out, nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	UpdateCallCount int32
	UpdateError     error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		copy := *t
		out = append(out, &copy)
	}
	return out, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.DriverID != driverID {
			continue
		}
		if t.Status == domain.TripStatusPlanned || t.Status == domain.TripStatusInProgress {
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil
}

// ──────────────────────────────────────────────
// MOCK PERIOD REPOSITORY
// ──────────────────────────────────────────────

// MockPeriodRepository is a mock implementation of PeriodRepository.
type MockPeriodRepository struct {
	mu      sync.RWMutex
	periods map[string][]domain.DutyPeriod // keyed by trip ID
}

// NewMockPeriodRepository creates a new mock period repository.
func NewMockPeriodRepository() *MockPeriodRepository {
	return &MockPeriodRepository{
		periods: make(map[string][]domain.DutyPeriod),
	}
}

func (m *MockPeriodRepository) CreateBatch(ctx context.Context, periods []domain.DutyPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range periods {
		m.periods[p.TripID] = append(m.periods[p.TripID], p)
	}
	return nil
}

func (m *MockPeriodRepository) GetByTripID(ctx context.Context, tripID string) ([]domain.DutyPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.DutyPeriod, len(m.periods[tripID]))
	copy(out, m.periods[tripID])
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *MockPeriodRepository) DeleteByTripID(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.periods, tripID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK STOP REPOSITORY
// ──────────────────────────────────────────────

// MockStopRepository is a mock implementation of StopRepository.
type MockStopRepository struct {
	mu    sync.RWMutex
	stops map[string][]domain.Stop
}

// NewMockStopRepository creates a new mock stop repository.
func NewMockStopRepository() *MockStopRepository {
	return &MockStopRepository{
		stops: make(map[string][]domain.Stop),
	}
}

func (m *MockStopRepository) CreateBatch(ctx context.Context, stops []domain.Stop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range stops {
		m.stops[s.TripID] = append(m.stops[s.TripID], s)
	}
	return nil
}

func (m *MockStopRepository) GetByTripID(ctx context.Context, tripID string) ([]domain.Stop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Stop, len(m.stops[tripID]))
	copy(out, m.stops[tripID])
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (m *MockStopRepository) DeleteByTripID(ctx context.Context, tripID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stops, tripID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK CYCLE REPOSITORY
// ──────────────────────────────────────────────

// MockCycleRepository is a mock implementation of CycleRepository.
type MockCycleRepository struct {
	mu      sync.RWMutex
	states  map[string]*domain.CycleState
	records map[string][]domain.DailyRecord

	SaveCallCount int32
	SaveError     error
}

// NewMockCycleRepository creates a new mock cycle repository.
func NewMockCycleRepository() *MockCycleRepository {
	return &MockCycleRepository{
		states:  make(map[string]*domain.CycleState),
		records: make(map[string][]domain.DailyRecord),
	}
}

// AddState seeds a driver's cycle state.
func (m *MockCycleRepository) AddState(state *domain.CycleState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *state
	m.states[state.DriverID] = &copy
}

func (m *MockCycleRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.CycleState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[driverID]
	if !ok {
		return nil, nil
	}
	copy := *state
	return &copy, nil
}

func (m *MockCycleRepository) Save(ctx context.Context, state *domain.CycleState) error {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *state
	m.states[state.DriverID] = &copy
	return nil
}

func (m *MockCycleRepository) CreateDailyRecord(ctx context.Context, record *domain.DailyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.DriverID] = append(m.records[record.DriverID], *record)
	return nil
}

func (m *MockCycleRepository) GetDailyRecords(ctx context.Context, driverID string, since time.Time) ([]domain.DailyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.DailyRecord
	for _, r := range m.records[driverID] {
		if !r.Date.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// DailyRecordCount returns how many days have been archived for a driver.
func (m *MockCycleRepository) DailyRecordCount(driverID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records[driverID])
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of the driver lock store.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// HoldLocks makes every acquisition fail, simulating a contended driver.
	HoldLocks bool

	AcquireCallCount int32
	ReleaseCallCount int32
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HoldLocks || m.locks[driverID] {
		return false, nil
	}
	m.locks[driverID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, driverID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK ROUTE PROVIDER
// ──────────────────────────────────────────────

// MockRouteProvider returns scripted route results in call order.
type MockRouteProvider struct {
	mu      sync.Mutex
	Results []*route.Result
	Err     error
	calls   int32
}

// NewMockRouteProvider creates a provider that replays the given results.
func NewMockRouteProvider(results ...*route.Result) *MockRouteProvider {
	return &MockRouteProvider{Results: results}
}

func (m *MockRouteProvider) GetRoute(ctx context.Context, origin, destination domain.Location) (*route.Result, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := int(m.calls) - 1
	if idx >= len(m.Results) {
		idx = len(m.Results) - 1
	}
	r := *m.Results[idx]
	r.Waypoints = append([]domain.Location{}, m.Results[idx].Waypoints...)
	return &r, nil
}

// Calls returns the number of GetRoute invocations.
func (m *MockRouteProvider) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}
