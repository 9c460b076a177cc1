package timeout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func at(minutes float64) time.Time {
	return t0.Add(time.Duration(minutes * float64(time.Minute)))
}

func TestMachine_StartsActive(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)
	assert.Equal(t, PhaseActive, m.Phase())
}

func TestMachine_WarningAtIdleThreshold(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)

	phase, changed := m.Tick(at(24.99))
	assert.Equal(t, PhaseActive, phase)
	assert.False(t, changed)

	phase, changed = m.Tick(at(25))
	assert.Equal(t, PhaseWarning, phase)
	assert.True(t, changed)
}

func TestMachine_ExpiresAtHardDeadline(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)

	phase, _ := m.Tick(at(25))
	require.Equal(t, PhaseWarning, phase)

	phase, changed := m.Tick(at(29.99))
	assert.Equal(t, PhaseWarning, phase)
	assert.False(t, changed)

	// no activity and no extend: expired at exactly 30 minutes from last reset
	phase, changed = m.Tick(at(30))
	assert.Equal(t, PhaseExpired, phase)
	assert.True(t, changed)
}

func TestMachine_SleptPastDeadlineExpiresDirectly(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)

	// first tick observed long after both boundaries
	phase, changed := m.Tick(at(45))
	assert.Equal(t, PhaseExpired, phase)
	assert.True(t, changed)
}

func TestMachine_TouchResetsIdleClockWhileActive(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)

	m.Touch(at(10))
	phase, _ := m.Tick(at(30))
	assert.Equal(t, PhaseActive, phase, "25 minutes have not passed since the reset at minute 10")

	phase, _ = m.Tick(at(35))
	assert.Equal(t, PhaseWarning, phase)
}

func TestMachine_TouchIgnoredDuringWarning(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)

	phase, _ := m.Tick(at(25))
	require.Equal(t, PhaseWarning, phase)

	// resumed typing does not dismiss the warning
	m.Touch(at(26))

	phase, _ = m.Tick(at(30))
	assert.Equal(t, PhaseExpired, phase)
}

func TestMachine_ExtendDuringWarningReturnsToActive(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)

	phase, _ := m.Tick(at(25))
	require.Equal(t, PhaseWarning, phase)

	require.True(t, m.Extend(at(27)))
	assert.Equal(t, PhaseActive, m.Phase())

	// fresh 25-minute window from the extend
	phase, _ = m.Tick(at(51.99))
	assert.Equal(t, PhaseActive, phase)
	phase, _ = m.Tick(at(52))
	assert.Equal(t, PhaseWarning, phase)
}

func TestMachine_ExtendAfterExpiryFails(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)

	phase, _ := m.Tick(at(30))
	require.Equal(t, PhaseExpired, phase)

	assert.False(t, m.Extend(at(31)))
	assert.Equal(t, PhaseExpired, m.Phase())
}

func TestMachine_RemainingCountdown(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)

	assert.Equal(t, 0, m.Remaining(at(10)), "no countdown outside warning")

	phase, _ := m.Tick(at(25))
	require.Equal(t, PhaseWarning, phase)

	// 5-minute countdown, derived from the nominal warning entry at 25:00
	assert.Equal(t, 300, m.Remaining(at(25)))
	assert.Equal(t, 240, m.Remaining(at(26)))
	assert.Equal(t, 1, m.Remaining(at(25).Add(4*time.Minute+59*time.Second)))
	assert.Equal(t, 0, m.Remaining(at(30)))
}

func TestMachine_RemainingDoesNotDriftWithLateTicks(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)

	// warning observed 30 seconds late; countdown is still anchored to 25:00
	phase, _ := m.Tick(at(25.5))
	require.Equal(t, PhaseWarning, phase)
	assert.Equal(t, 270, m.Remaining(at(25.5)))
}

func TestMachine_HardDeadlineWinsOverCountdown(t *testing.T) {
	// shorter hard deadline than threshold+warning: expiry takes whichever
	// comes first
	cfg := Config{
		IdleThreshold:   10 * time.Minute,
		WarningDuration: 10 * time.Minute,
		HardDeadline:    15 * time.Minute,
	}
	m := NewMachine(cfg, t0)

	phase, _ := m.Tick(at(10))
	require.Equal(t, PhaseWarning, phase)
	assert.Equal(t, 300, m.Remaining(at(10)), "countdown capped by the hard deadline")

	phase, _ = m.Tick(at(15))
	assert.Equal(t, PhaseExpired, phase)
}

func TestMachine_TickAfterExpiryIsStable(t *testing.T) {
	m := NewMachine(DefaultConfig(), t0)

	phase, _ := m.Tick(at(30))
	require.Equal(t, PhaseExpired, phase)

	phase, changed := m.Tick(at(60))
	assert.Equal(t, PhaseExpired, phase)
	assert.False(t, changed)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "active", PhaseActive.String())
	assert.Equal(t, "warning", PhaseWarning.String())
	assert.Equal(t, "expired", PhaseExpired.String())
}
