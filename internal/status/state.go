package status

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/wppmcp/internal/bridge"
	"github.com/matheus3301/wppmcp/internal/bus"
)

// State is the last known reachability of the bridge.
type State string

const (
	Unknown     State = "UNKNOWN"
	Reachable   State = "REACHABLE"
	Unreachable State = "UNREACHABLE"
)

// KindBridgeStatus is published whenever the state changes.
const KindBridgeStatus = "bridge.status_changed"

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	Unknown:     {Reachable, Unreachable},
	Reachable:   {Unreachable},
	Unreachable: {Reachable},
}

// Machine tracks bridge reachability from the outcome of real calls; it
// never probes on its own.
type Machine struct {
	mu        sync.RWMutex
	current   State
	since     time.Time
	lastError string
	bus       *bus.Bus
	now       func() time.Time
}

// NewMachine creates a machine in the Unknown state.
func NewMachine(b *bus.Bus) *Machine {
	m := &Machine{
		current: Unknown,
		bus:     b,
		now:     time.Now,
	}
	m.since = m.now()
	return m
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Snapshot returns the state, when it was entered and the last failure.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.current, Since: m.since, LastError: m.lastError}
}

// Snapshot is a point-in-time view of the machine.
type Snapshot struct {
	State     State
	Since     time.Time
	LastError string
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(to)
}

func (m *Machine) transitionLocked(to State) error {
	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.since = m.now()
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      KindBridgeStatus,
			Timestamp: m.since,
			Payload: StatusChange{
				From: from,
				To:   to,
			},
		})
	}
	return nil
}

// ObserveBridge implements bridge.Observer. Any HTTP response, even an
// error status, proves the bridge is up; only transport failures mark it
// unreachable.
func (m *Machine) ObserveBridge(op string, err error) {
	to := Reachable
	var be *bridge.Error
	if errors.As(err, &be) && be.Unreachable() {
		to = Unreachable
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if to == Unreachable {
		m.lastError = fmt.Sprintf("%s: %v", op, err)
	}
	if m.current == to {
		return
	}
	_ = m.transitionLocked(to)
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State `json:"from"`
	To   State `json:"to"`
}
