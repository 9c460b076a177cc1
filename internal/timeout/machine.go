// Package timeout implements the inactivity lifecycle of a portal
// session: Active until the idle threshold passes, then Warning with a
// countdown, then Expired, which forces logout.
//
// The machine itself is pure state plus a Tick method; nothing in this
// file touches timers or the wall clock, so the transition rules can be
// tested without real waits.
package timeout

import (
	"time"
)

// Phase is the current position in the inactivity lifecycle.
type Phase int

const (
	// PhaseActive is the initial phase; qualifying activity keeps the
	// session here.
	PhaseActive Phase = iota
	// PhaseWarning begins once the idle threshold elapses. Only the
	// explicit extend control or deadline expiry leaves this phase.
	PhaseWarning
	// PhaseExpired is terminal; entering it forces logout.
	PhaseExpired
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseWarning:
		return "warning"
	case PhaseExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Config carries the three durations of the lifecycle, all measured from
// the last reset of the idle clock.
type Config struct {
	// IdleThreshold is how long without qualifying activity before the
	// warning phase begins.
	IdleThreshold time.Duration
	// WarningDuration is the countdown length once warning has begun.
	WarningDuration time.Duration
	// HardDeadline is the absolute idle duration after which the session
	// expires regardless of the countdown.
	HardDeadline time.Duration
}

// DefaultConfig returns the product timings: warn at 25 minutes idle,
// 5 minute countdown, hard logout at 30 minutes.
func DefaultConfig() Config {
	return Config{
		IdleThreshold:   25 * time.Minute,
		WarningDuration: 5 * time.Minute,
		HardDeadline:    30 * time.Minute,
	}
}

// Machine is the per-session inactivity state machine. It is not safe
// for concurrent use; the Tracker serializes access.
type Machine struct {
	cfg       Config
	phase     Phase
	lastReset time.Time
	// warningAt is the nominal instant the warning phase began:
	// lastReset + IdleThreshold, not the tick that observed it. The
	// countdown derives from this value so it never drifts with tick
	// granularity.
	warningAt time.Time
}

// NewMachine starts a machine in the Active phase with the idle clock
// reset to now.
func NewMachine(cfg Config, now time.Time) *Machine {
	return &Machine{cfg: cfg, phase: PhaseActive, lastReset: now}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// LastReset returns the start of the current idle window.
func (m *Machine) LastReset() time.Time { return m.lastReset }

// Touch registers a qualifying activity event. Activity resets the idle
// clock only in the Active phase; once the warning has begun, activity
// is ignored and only Extend or expiry leaves the phase.
func (m *Machine) Touch(now time.Time) {
	if m.phase != PhaseActive {
		return
	}
	m.lastReset = now
}

// Extend is the single designated control that dismisses the warning.
// It returns the machine to Active with a fresh idle window. Extending
// an expired machine has no effect.
func (m *Machine) Extend(now time.Time) bool {
	if m.phase == PhaseExpired {
		return false
	}
	m.phase = PhaseActive
	m.lastReset = now
	m.warningAt = time.Time{}
	return true
}

// Tick advances the machine to the phase implied by now and reports
// whether the phase changed. A single tick may cross both boundaries,
// e.g. a machine that slept past the hard deadline expires directly
// from Active.
func (m *Machine) Tick(now time.Time) (Phase, bool) {
	if m.phase == PhaseExpired {
		return m.phase, false
	}

	prev := m.phase

	if m.phase == PhaseActive && !now.Before(m.lastReset.Add(m.cfg.IdleThreshold)) {
		m.phase = PhaseWarning
		m.warningAt = m.lastReset.Add(m.cfg.IdleThreshold)
	}

	if m.expired(now) {
		m.phase = PhaseExpired
	}

	return m.phase, m.phase != prev
}

// expired reports whether either deadline has elapsed: the warning
// countdown or the independent hard deadline, whichever comes first.
func (m *Machine) expired(now time.Time) bool {
	if !now.Before(m.lastReset.Add(m.cfg.HardDeadline)) {
		return true
	}
	if m.phase == PhaseWarning && !now.Before(m.warningAt.Add(m.cfg.WarningDuration)) {
		return true
	}
	return false
}

// Remaining returns the warning countdown in whole seconds, rounded up.
// It is meaningful only in the Warning phase and reports 0 otherwise.
func (m *Machine) Remaining(now time.Time) int {
	if m.phase != PhaseWarning {
		return 0
	}

	deadline := m.warningAt.Add(m.cfg.WarningDuration)
	if hard := m.lastReset.Add(m.cfg.HardDeadline); hard.Before(deadline) {
		deadline = hard
	}

	left := deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// ExpiryReason classifies which deadline ended the session. Valid only
// once the machine has expired.
func (m *Machine) ExpiryReason(now time.Time) string {
	if !m.warningAt.IsZero() && !now.Before(m.warningAt.Add(m.cfg.WarningDuration)) {
		if m.lastReset.Add(m.cfg.HardDeadline).Before(m.warningAt.Add(m.cfg.WarningDuration)) {
			return "hard_deadline"
		}
		return "countdown"
	}
	return "hard_deadline"
}
