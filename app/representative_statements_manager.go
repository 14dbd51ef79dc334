package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"gorepness/domain/core"
	"gorepness/domain/stats"
	"gorepness/domain/votes"
	"gorepness/internal"
)

// CalculationState is the manager's lifecycle state
type CalculationState int32

const (
	StateIdle CalculationState = iota
	StateRunning
	StateDone
	StateFailed
)

func (s CalculationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state by name
func (s CalculationState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Calculator computes representative statements; AnalysisService implements it
type Calculator interface {
	CalculateRepresentativeStatements(ctx context.Context, labels []votes.GroupLabel, participantIDs []core.ParticipantID, catalog votes.StatementCatalog, opts stats.AnalysisOptions) (*stats.AnalysisResult, error)
}

// CalculationResult is one completed run
type CalculationResult struct {
	RunID       core.RunID     `json:"run_id"`
	StartedAt   core.Timestamp `json:"started_at"`
	FinishedAt  core.Timestamp `json:"finished_at"`
	Fingerprint core.Hash      `json:"fingerprint"`
	*stats.AnalysisResult
}

// CalculationEvent reports a state transition of the manager
type CalculationEvent struct {
	RunID       core.RunID       `json:"run_id"`
	State       CalculationState `json:"state"`
	Fingerprint core.Hash        `json:"fingerprint,omitempty"`
	Error       string           `json:"error,omitempty"`
	At          core.Timestamp   `json:"at"`
}

// CalculationListener is notified synchronously of every transition
type CalculationListener interface {
	CalculationChanged(event CalculationEvent)
}

// RepresentativeStatementsManager allows one calculation at a time and
// remembers the last outcome. A second Calculate while one is running fails
// with core.ErrCalculationInProgress instead of queueing.
type RepresentativeStatementsManager struct {
	calc   Calculator
	state  atomic.Int32
	mu     sync.RWMutex
	last   *CalculationResult
	err    error
	logger *internal.Logger

	listeners []CalculationListener
}

// NewRepresentativeStatementsManager creates an idle manager
func NewRepresentativeStatementsManager(calc Calculator) *RepresentativeStatementsManager {
	return &RepresentativeStatementsManager{
		calc:   calc,
		logger: internal.DefaultLogger.Component("Manager"),
	}
}

// Calculate runs one calculation if none is in flight
func (m *RepresentativeStatementsManager) Calculate(ctx context.Context, labels []votes.GroupLabel, participantIDs []core.ParticipantID, catalog votes.StatementCatalog, opts stats.AnalysisOptions) (*CalculationResult, error) {
	if !m.acquire() {
		return nil, core.ErrCalculationInProgress
	}
	runID := core.NewRunID()
	defer func() {
		if r := recover(); r != nil {
			m.fail(runID, fmt.Errorf("calculation panicked: %v", r))
			panic(r)
		}
	}()

	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()

	started := core.Now()
	m.logger.Debug("run %s started", runID)
	m.notify(CalculationEvent{RunID: runID, State: StateRunning, At: started})

	result, err := m.calc.CalculateRepresentativeStatements(ctx, labels, participantIDs, catalog, opts)
	if err != nil {
		m.fail(runID, err)
		return nil, err
	}

	out := &CalculationResult{
		RunID:          runID,
		StartedAt:      started,
		FinishedAt:     core.Now(),
		Fingerprint:    Fingerprint(result),
		AnalysisResult: result,
	}

	m.mu.Lock()
	m.last = out
	m.mu.Unlock()
	m.state.Store(int32(StateDone))
	m.logger.Debug("run %s done", runID)
	m.notify(CalculationEvent{RunID: runID, State: StateDone, Fingerprint: out.Fingerprint, At: out.FinishedAt})
	return out, nil
}

// fail records err and releases the slot as Failed
func (m *RepresentativeStatementsManager) fail(runID core.RunID, err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	m.state.Store(int32(StateFailed))
	m.logger.Warn("run %s failed: %v", runID, err)
	m.notify(CalculationEvent{RunID: runID, State: StateFailed, Error: err.Error(), At: core.Now()})
}

// AddListener registers l for state transitions
func (m *RepresentativeStatementsManager) AddListener(l CalculationListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *RepresentativeStatementsManager) notify(event CalculationEvent) {
	m.mu.RLock()
	listeners := m.listeners
	m.mu.RUnlock()
	for _, l := range listeners {
		l.CalculationChanged(event)
	}
}

func (m *RepresentativeStatementsManager) acquire() bool {
	for {
		cur := m.state.Load()
		if CalculationState(cur) == StateRunning {
			return false
		}
		if m.state.CompareAndSwap(cur, int32(StateRunning)) {
			return true
		}
	}
}

// State returns the current lifecycle state
func (m *RepresentativeStatementsManager) State() CalculationState {
	return CalculationState(m.state.Load())
}

// IsCalculating reports whether a calculation is in flight
func (m *RepresentativeStatementsManager) IsCalculating() bool {
	return m.State() == StateRunning
}

// LastResult returns the most recent successful result, or nil
func (m *RepresentativeStatementsManager) LastResult() *CalculationResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Err returns the error of the most recent calculation, or nil
func (m *RepresentativeStatementsManager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Reset forgets the last result and error. An in-flight calculation is not
// cancelled and still records its outcome when it finishes.
func (m *RepresentativeStatementsManager) Reset() {
	m.mu.Lock()
	m.last = nil
	m.err = nil
	m.mu.Unlock()

	for {
		cur := m.state.Load()
		if CalculationState(cur) == StateRunning || m.state.CompareAndSwap(cur, int32(StateIdle)) {
			return
		}
	}
}

// Fingerprint hashes the JSON form of a result. encoding/json sorts map
// keys, so identical results hash identically.
func Fingerprint(result *stats.AnalysisResult) core.Hash {
	data, err := json.Marshal(result)
	if err != nil {
		return ""
	}
	return core.NewHash(data)
}
