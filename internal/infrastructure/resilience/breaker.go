package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("circuit breaker is probing; request rejected")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the breaker
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold uint32
	// Cooldown is how long the circuit stays open before probing
	Cooldown time.Duration
	// HalfOpenProbes is how many successful probes close the circuit again
	HalfOpenProbes uint32
	// IsFailure decides whether an error counts against the remote
	IsFailure func(err error) bool
	// OnStateChange is invoked outside the breaker lock
	OnStateChange func(name string, from, to State)
}

// Snapshot is a point-in-time view for stats endpoints
type Snapshot struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	ConsecutiveFailures uint32 `json:"consecutiveFailures"`
	TotalFailures       uint64 `json:"totalFailures"`
	TotalSuccesses      uint64 `json:"totalSuccesses"`
	Rejected            uint64 `json:"rejected"`
}

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu        sync.Mutex
	state     State
	failures  uint32
	probes    uint32
	inFlight  uint32
	openedAt  time.Time
	epoch     uint64
	totalFail uint64
	totalOK   uint64
	rejected  uint64
}

// FailureError lets callers mark a non-error outcome, such as an HTTP 503,
// as a remote failure
type FailureError struct {
	Err error
}

func (e *FailureError) Error() string { return e.Err.Error() }
func (e *FailureError) Unwrap() error { return e.Err }

// New creates a breaker with defaults for unset settings
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.HalfOpenProbes == 0 {
		settings.HalfOpenProbes = 1
	}
	if settings.IsFailure == nil {
		settings.IsFailure = func(err error) bool { return err != nil }
	}
	return &Breaker{name: name, settings: settings, now: time.Now}
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, accounting for an elapsed cooldown
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, _ := b.advance()
	return state
}

// Do runs fn unless the circuit is open. The error returned by fn is passed
// through unchanged.
func (b *Breaker) Do(fn func() error) error {
	epoch, err := b.admit()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			b.record(epoch, true)
			panic(r)
		}
	}()

	err = fn()
	b.record(epoch, b.settings.IsFailure(err))
	return err
}

// Reset closes the circuit and clears counters
func (b *Breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = StateClosed
	b.failures, b.probes, b.inFlight = 0, 0, 0
	b.epoch++
	b.mu.Unlock()
	b.notify(from, StateClosed)
}

// Snapshot reports counters and state
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, _ := b.advance()
	return Snapshot{
		Name:                b.name,
		State:               state.String(),
		ConsecutiveFailures: b.failures,
		TotalFailures:       b.totalFail,
		TotalSuccesses:      b.totalOK,
		Rejected:            b.rejected,
	}
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	state, epoch := b.advance()
	switch {
	case state == StateOpen:
		b.rejected++
		b.mu.Unlock()
		return epoch, ErrCircuitOpen
	case state == StateHalfOpen && b.inFlight >= b.settings.HalfOpenProbes:
		b.rejected++
		b.mu.Unlock()
		return epoch, ErrTooManyRequests
	}
	b.inFlight++
	b.mu.Unlock()
	return epoch, nil
}

func (b *Breaker) record(epoch uint64, failed bool) {
	b.mu.Lock()
	state, current := b.advance()
	if current != epoch {
		// Outcome of a call admitted before the last transition.
		b.mu.Unlock()
		return
	}
	if b.inFlight > 0 {
		b.inFlight--
	}

	from := state
	to := state
	if failed {
		b.totalFail++
		b.failures++
		if state == StateHalfOpen || b.failures >= b.settings.FailureThreshold {
			to = StateOpen
		}
	} else {
		b.totalOK++
		b.failures = 0
		if state == StateHalfOpen {
			b.probes++
			if b.probes >= b.settings.HalfOpenProbes {
				to = StateClosed
			}
		}
	}
	if to != from {
		b.transition(to)
	}
	b.mu.Unlock()

	if to != from {
		b.notify(from, to)
	}
}

// advance moves an open circuit to half-open once the cooldown elapses.
// Caller holds mu.
func (b *Breaker) advance() (State, uint64) {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.Cooldown {
		from := b.state
		b.transition(StateHalfOpen)
		if b.settings.OnStateChange != nil {
			go b.settings.OnStateChange(b.name, from, StateHalfOpen)
		}
	}
	return b.state, b.epoch
}

// transition changes state and starts a new epoch. Caller holds mu.
func (b *Breaker) transition(to State) {
	b.state = to
	b.epoch++
	b.failures, b.probes, b.inFlight = 0, 0, 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
